/*
Package domain contains the core models shared by the node catalogue and the host runtime.

It is kept free of I/O and persistence concerns.

# Key Entities

  - Spec: the static declaration of a node class (sockets, widgets, return types).
  - Node: a node class that can be executed with a Request.
  - Output: the per-socket results plus the UI payload of one execution.
  - Blocker: a result value that stops everything downstream of its socket.
  - LifecycleHooks: callbacks fired around node executions.
*/
package domain
