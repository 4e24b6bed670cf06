// Package domain contains the core types of the rover engine: normalized
// positions, the routine component variants, the compiled Routine, and the
// settings mapping that routines may mutate at run time.
//
// Types here are plain data. Behavior lives in internal/compiler,
// internal/layout and internal/runtime; external collaborators are described
// by the interfaces in pkg/ports.
package domain
