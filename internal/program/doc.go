// Package program implements the program table (spec §4.3): the
// compile-time catalogue of compiled Programs, the inverted index from
// event id to the programs that event may install, and the optimiser
// that relinks a program's key event when its current key is too
// frequent to be a useful trigger.
package program
