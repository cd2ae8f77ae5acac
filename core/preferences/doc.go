// Package preferences turns the coarse day-portion preferences collected from
// players into per-slot values used by the scheduling objective.
//
// A preference stated for a day portion applies to every slot whose time
// block lies in that portion. Missing preferences are neutral (0).
package preferences
