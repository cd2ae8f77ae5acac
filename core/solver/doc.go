// Package solver defines the declarative interface between the model builder
// and a combinatorial solving engine: variables, a linear objective and linear
// constraints go in; a status and an assignment come out.
//
// Engines live in infra packages. The scheduling core only depends on this
// package, so the search procedure can be swapped without touching it.
package solver
