// Package lp implements solver.Engine with a depth-first branch-and-bound over
// linear relaxations solved by gonum's simplex.
//
// Binary variables are branched on by fixing them to 1 and then 0; a fixed
// variable is removed from the relaxation and its contribution moved to the
// right-hand side. The time budget is checked between relaxations, so a single
// relaxation always runs to completion.
package lp
