// Package nodes implements the AgaveSunset node classes.
//
// Each node declares its sockets and widgets through Spec and runs through
// Execute. Inputs arrive as decoded JSON and are copied into typed structs
// with weak conversion, so a FLOAT widget accepts 1, 1.0 or "1".
//
// Math wraps the restricted evaluator of package expr. calculate_AgaveSunset
// keeps the legacy operation drop-down and runs free-form expressions in a
// Starlark sandbox limited to math functions.
package nodes
