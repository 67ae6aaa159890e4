// Package validation defines the pluggable payload-validation backend
// contract consumed by handler code.
//
// A Backend compiles a schema once into a reusable Compiled validator;
// the compiled artifact then validates many payloads without recompiling.
// Compilation failures are schema errors, a server misconfiguration;
// validation failures are structured client errors carrying one or more
// human-readable messages.
//
// The JSONSchema backend, built on github.com/xeipuuv/gojsonschema, is
// registered by default. Additional backends register themselves via
// Register and are discovered by name through Backends.
package validation
