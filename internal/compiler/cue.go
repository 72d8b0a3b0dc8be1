package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
)

// CompileCUEBundle compiles a structured CUE program bundle directly
// into c (spec §6 "structured bundle" front end). The expected shape:
//
//	options: {
//		stopword_factor?: float
//		weight_factor?:   float
//		max_range?:       int
//	}
//	patterns: {
//		"pattern-name": {
//			visible?: bool        // defaults to true
//			expr: <expr>
//		}
//	}
//
// where <expr> is one of:
//
//	{term: <uint>}                          // a lexer token id leaf
//	{ref: "<name>"}                         // a named pattern reference
//	{
//		op:      "sequence" | "sequence_imm" | "sequence_struct" |
//		         "within" | "within_struct" | "any" | "and"
//		range?:  <int>                       // position_range; 0 defaults only for sequence_imm
//		count?:  <int>                       // cardinality; 0 defers to the per-operator default
//		args:    [<expr>, ...]
//		variable?: "<name>"                  // attach_variable on the reduced node
//		weight?: <float>                     // document-frequency hint for attach_variable
//	}
//
// CompileCUEBundle walks the patterns in CUE's own field order; forward
// references across patterns resolve the same way the textual grammar
// loader's do, through PushPattern's refIndex.
func CompileCUEBundle(c *Compiler, v cue.Value) error {
	if err := v.Err(); err != nil {
		return formatCUEError(err)
	}

	optsVal := v.LookupPath(cue.ParsePath("options"))
	if optsVal.Exists() {
		if err := applyCUEOptions(c, optsVal); err != nil {
			return err
		}
	}

	patternsVal := v.LookupPath(cue.ParsePath("patterns"))
	if !patternsVal.Exists() {
		return &CompileError{Field: "patterns", Message: "at least one pattern is required", Pos: v.Pos()}
	}

	iter, err := patternsVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	count := 0
	for iter.Next() {
		count++
		name := iter.Label()
		entry := iter.Value()

		visible := true
		visVal := entry.LookupPath(cue.ParsePath("visible"))
		if visVal.Exists() {
			visible, err = visVal.Bool()
			if err != nil {
				return formatCUEError(err)
			}
		}

		exprVal := entry.LookupPath(cue.ParsePath("expr"))
		if !exprVal.Exists() {
			return &CompileError{Field: fmt.Sprintf("patterns.%s.expr", name), Message: "expr is required", Pos: entry.Pos()}
		}
		if err := compileCUEExpr(c, exprVal); err != nil {
			return err
		}
		if err := c.DefinePattern(name, visible); err != nil {
			return err
		}
	}
	if count == 0 {
		return &CompileError{Field: "patterns", Message: "at least one pattern is required", Pos: patternsVal.Pos()}
	}

	return nil
}

func applyCUEOptions(c *Compiler, v cue.Value) error {
	if sf := v.LookupPath(cue.ParsePath("stopword_factor")); sf.Exists() {
		f, err := sf.Float64()
		if err != nil {
			return formatCUEError(err)
		}
		c.options.StopwordOccurrenceFactor = f
	}
	if wf := v.LookupPath(cue.ParsePath("weight_factor")); wf.Exists() {
		f, err := wf.Float64()
		if err != nil {
			return formatCUEError(err)
		}
		c.options.WeightFactor = f
	}
	if mr := v.LookupPath(cue.ParsePath("max_range")); mr.Exists() {
		n, err := mr.Int64()
		if err != nil {
			return formatCUEError(err)
		}
		c.options.MaxRange = n
	}
	return nil
}

var cueOperators = map[string]Operator{
	"sequence":        OpSequence,
	"sequence_imm":     OpSequenceImm,
	"sequence_struct":  OpSequenceStruct,
	"within":           OpWithin,
	"within_struct":    OpWithinStruct,
	"any":              OpAny,
	"and":              OpAnd,
}

// compileCUEExpr recursively compiles one expr node, leaving exactly
// one node on c's stack.
func compileCUEExpr(c *Compiler, v cue.Value) error {
	if termVal := v.LookupPath(cue.ParsePath("term")); termVal.Exists() {
		id, err := termVal.Uint64()
		if err != nil {
			return formatCUEError(err)
		}
		return c.PushTerm(uint32(id))
	}

	if refVal := v.LookupPath(cue.ParsePath("ref")); refVal.Exists() {
		name, err := refVal.String()
		if err != nil {
			return formatCUEError(err)
		}
		return c.PushPattern(name)
	}

	opVal := v.LookupPath(cue.ParsePath("op"))
	if !opVal.Exists() {
		return &CompileError{Field: "expr", Message: "expr must set term, ref, or op", Pos: v.Pos()}
	}
	opName, err := opVal.String()
	if err != nil {
		return formatCUEError(err)
	}
	op, ok := cueOperators[opName]
	if !ok {
		return &CompileError{Field: "op", Message: fmt.Sprintf("unknown operator %q", opName), Pos: opVal.Pos()}
	}

	argsVal := v.LookupPath(cue.ParsePath("args"))
	if !argsVal.Exists() {
		return &CompileError{Field: "args", Message: "args is required", Pos: v.Pos()}
	}
	argIter, err := argsVal.List()
	if err != nil {
		return formatCUEError(err)
	}
	argc := 0
	for argIter.Next() {
		if err := compileCUEExpr(c, argIter.Value()); err != nil {
			return err
		}
		argc++
	}

	var posRange int64
	if r := v.LookupPath(cue.ParsePath("range")); r.Exists() {
		posRange, err = r.Int64()
		if err != nil {
			return formatCUEError(err)
		}
	}
	var cardinality int32
	if cnt := v.LookupPath(cue.ParsePath("count")); cnt.Exists() {
		n, err := cnt.Int64()
		if err != nil {
			return formatCUEError(err)
		}
		cardinality = int32(n)
	}

	if err := c.PushExpression(op, argc, posRange, cardinality); err != nil {
		return err
	}

	if varVal := v.LookupPath(cue.ParsePath("variable")); varVal.Exists() {
		name, err := varVal.String()
		if err != nil {
			return formatCUEError(err)
		}
		weight := 0.0
		if wv := v.LookupPath(cue.ParsePath("weight")); wv.Exists() {
			weight, err = wv.Float64()
			if err != nil {
				return formatCUEError(err)
			}
		}
		if err := c.AttachVariable(name, weight); err != nil {
			return err
		}
	}

	return nil
}
