// Package compiler is C5 of the matching engine (spec §4.6): the
// program compiler. It translates a compositional expression tree,
// built one stack-machine operation at a time (push_term, push_pattern,
// push_expression, attach_variable, define_pattern), into programs and
// triggers inside an internal/program.Table. Two front ends drive the
// stack machine: CompileCUEBundle for a structured CUE document, and
// LoadGrammar for the free-form text program language of spec §6.
package compiler
