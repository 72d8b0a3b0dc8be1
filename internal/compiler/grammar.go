package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/lexpattern/engine/internal/ir"
)

// programLexer tokenizes the free-form text grammar of spec §6: regex
// lexer-pattern declarations, `%Name = Value;` option statements, and
// `Name = expr;` token-pattern declarations.
var programLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Regex", Pattern: `/(\\.|[^/\\])*/`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `\d+(\.\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_-]*`},
	{Name: "Arrow", Pattern: `->`},
	{Name: "Punct", Pattern: `[%.=:;(),|^\[\]{}]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// astDocument is the root of a parsed program-language source file.
type astDocument struct {
	Statements []*astStatement `@@*`
}

type astStatement struct {
	Option       *astOptionStmt       `  @@`
	LexerPattern *astLexerPatternStmt `| @@`
	Pattern      *astPatternStmt      `| @@`
}

// astOptionStmt is a `%Name = Value;` compile-option statement.
type astOptionStmt struct {
	Name  string  `"%" @Ident "="`
	Value float64 `@Number ";"`
}

// astLexerPatternStmt is a `Name : /regex/ [i] [subidx] -> BindKind ;`
// declaration. It describes the lexer (outside this package's scope);
// the grammar loader only records it for a future lexer front end to
// consume, it never drives the compiler stack machine.
type astLexerPatternStmt struct {
	Name            string  `@Ident ":"`
	Regex           string  `@Regex`
	CaseInsensitive bool    `@"i"?`
	SubIndex        *int64  `@Number?`
	BindKind        string  `"->" @Ident ";"`
}

// astPatternStmt is a `[.]Name = expr;` token-pattern declaration.
type astPatternStmt struct {
	Invisible bool     `@"."?`
	Name      string   `@Ident "="`
	Expr      *astExpr `@@ ";"`
}

// astExpr is one node of the expression grammar: a variable binding, a
// brace-enclosed sub-expression, a join operator, a numeric term, a
// quoted symbol, or a bare pattern-name reference.
type astExpr struct {
	Variable *astVarBinding `  @@`
	Sub      *astExpr       `| "{" @@ "}"`
	Op       *astOpExpr     `| @@`
	Term     *int64         `| @Number`
	Symbol   *string        `| @String`
	Ref      *string        `| @Ident`
}

type astVarBinding struct {
	Name string   `"[" @Ident "]"`
	Expr *astExpr `@@`
}

// astOpExpr is `op(args... )` or `op(args... | range ^cardinality)`.
type astOpExpr struct {
	Op          string     `@Ident "("`
	Args        []*astExpr `@@ ("," @@)*`
	Range       *int64     `("|" @Number`
	Cardinality *int64     `  ("^" @Number)? )? ")"`
}

var programParser = participle.MustBuild[astDocument](
	participle.Lexer(programLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
)

// LoadGrammar parses source (the program language of spec §6) and
// drives c's stack machine to compile every statement it declares.
// Lexer-pattern declarations are returned separately for a front end
// that owns the actual lexer to consume; this package only compiles
// token patterns.
func LoadGrammar(c *Compiler, source string) ([]LexerPatternDecl, error) {
	doc, err := programParser.ParseString("", source)
	if err != nil {
		return nil, &CompileError{Field: "grammar", Message: err.Error()}
	}

	var lexerPatterns []LexerPatternDecl
	for _, stmt := range doc.Statements {
		switch {
		case stmt.Option != nil:
			if err := applyGrammarOption(c, stmt.Option); err != nil {
				return nil, err
			}
		case stmt.LexerPattern != nil:
			lexerPatterns = append(lexerPatterns, lexerPatternFromAST(stmt.LexerPattern))
		case stmt.Pattern != nil:
			if err := compileGrammarExpr(c, stmt.Pattern.Expr); err != nil {
				return nil, err
			}
			if err := c.DefinePattern(stmt.Pattern.Name, !stmt.Pattern.Invisible); err != nil {
				return nil, err
			}
		}
	}

	return lexerPatterns, nil
}

// LexerPatternDecl is a parsed `Name : /regex/ -> BindKind ;` statement,
// handed to a lexer front end outside this package.
type LexerPatternDecl struct {
	Name            string
	Regex           string
	CaseInsensitive bool
	SubIndex        int
	BindKind        string
}

func lexerPatternFromAST(s *astLexerPatternStmt) LexerPatternDecl {
	d := LexerPatternDecl{
		Name:            s.Name,
		Regex:           strings.Trim(s.Regex, "/"),
		CaseInsensitive: s.CaseInsensitive,
		BindKind:        s.BindKind,
	}
	if s.SubIndex != nil {
		d.SubIndex = int(*s.SubIndex)
	}
	return d
}

func applyGrammarOption(c *Compiler, opt *astOptionStmt) error {
	switch opt.Name {
	case "stopwordOccurrenceFactor":
		c.options.StopwordOccurrenceFactor = opt.Value
	case "weightFactor":
		c.options.WeightFactor = opt.Value
	case "maxRange":
		c.options.MaxRange = int64(opt.Value)
	default:
		return &CompileError{Field: "option", Message: fmt.Sprintf("unrecognised compile option %q", opt.Name)}
	}
	return nil
}

// compileGrammarExpr recursively compiles an astExpr, leaving exactly
// one node on c's stack (mirrors compileCUEExpr's contract).
func compileGrammarExpr(c *Compiler, e *astExpr) error {
	switch {
	case e.Variable != nil:
		if err := compileGrammarExpr(c, e.Variable.Expr); err != nil {
			return err
		}
		return c.AttachVariable(e.Variable.Name, 0)
	case e.Sub != nil:
		return compileGrammarExpr(c, e.Sub)
	case e.Op != nil:
		return compileGrammarOp(c, e.Op)
	case e.Term != nil:
		return c.PushTerm(uint32(*e.Term))
	case e.Symbol != nil:
		id, err := symbolTermID(*e.Symbol)
		if err != nil {
			return err
		}
		return c.PushTerm(id)
	case e.Ref != nil:
		return c.PushPattern(*e.Ref)
	default:
		return &CompileError{Field: "expr", Message: "empty expression"}
	}
}

// symbolTermID maps a quoted "symbol" leaf to a term id. The grammar
// itself carries no symbol table for lexer-declared token names; this
// package treats a quoted symbol as its own term id hashed from the
// text, matching how push_term identifies terms by lexer token id
// rather than name.
func symbolTermID(symbol string) (uint32, error) {
	if n, err := strconv.ParseUint(symbol, 10, 32); err == nil {
		return uint32(n), nil
	}
	var h uint32 = 2166136261
	for i := 0; i < len(symbol); i++ {
		h ^= uint32(symbol[i])
		h *= 16777619
	}
	return h & (ir.MaxEventIndex), nil
}

func compileGrammarOp(c *Compiler, op *astOpExpr) error {
	operator, ok := grammarOperators[strings.ToLower(op.Op)]
	if !ok {
		return &CompileError{Field: "op", Message: fmt.Sprintf("unknown operator %q", op.Op)}
	}
	for _, arg := range op.Args {
		if err := compileGrammarExpr(c, arg); err != nil {
			return err
		}
	}
	var posRange int64
	if op.Range != nil {
		posRange = *op.Range
	}
	var cardinality int32
	if op.Cardinality != nil {
		cardinality = int32(*op.Cardinality)
	}
	return c.PushExpression(operator, len(op.Args), posRange, cardinality)
}

var grammarOperators = map[string]Operator{
	"sequence":        OpSequence,
	"sequence_imm":    OpSequenceImm,
	"sequence_struct": OpSequenceStruct,
	"within":          OpWithin,
	"within_struct":   OpWithinStruct,
	"any":             OpAny,
	"and":             OpAnd,
}
