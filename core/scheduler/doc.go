// Package scheduler turns a validated roster into a round-robin match
// schedule. It builds groups and matches, expresses the match-to-slot
// assignment as a binary linear program, hands it to a solver.Engine and maps
// the assignment back onto matches and slots.
package scheduler
