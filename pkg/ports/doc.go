/*
Package ports defines the driven ports (interfaces) of the Agave host.

These interfaces decouple node execution from the storage that backs it, so
the same host runs with an in-process cache during development and a shared
Redis cache in production.

# Key Interfaces

  - ResultCache: stores node outputs by execution fingerprint.
  - DistributedLocker: coordinates concurrent executions of the same fingerprint.

RunResultCacheContract and RunLockerContract verify adapters against the
behaviour the host relies on.
*/
package ports
