// Package schema provides the parameter type system used by the action
// catalog. A command declares a Schema (field name -> Type); the compiler
// validates every routine command invocation against it, and the engine
// trusts validated parameters at dispatch time.
//
// Supported types: string, int, float, bool, enum, and custom validators.
package schema
