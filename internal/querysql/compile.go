package querysql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lexpattern/engine/internal/ir"
	"github.com/lexpattern/engine/internal/queryir"
)

// SQLCompiler compiles a queryir.Select to parameterized SQL for
// SQLite, for read-only stats queries over internal/store's tables.
//
// CRITICAL: every query includes ORDER BY for deterministic results.
// CRITICAL: all values are parameterized (never interpolated).
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a queryir.Query to parameterized SQL. Returns
// (sql, params, error).
func (c *SQLCompiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

// compileSelect compiles a queryir.Select to SQL. Always includes
// ORDER BY.
func (c *SQLCompiler) compileSelect(q queryir.Select) (string, []any, error) {
	selectClause := c.compileBindings(q.Bindings)
	fromClause := q.From

	var whereClause string
	var params []any
	if q.Filter != nil {
		filterSQL, filterParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		whereClause = " WHERE " + filterSQL
		params = filterParams
	}

	orderByClause := " ORDER BY " + c.stableOrderKey()

	sql := fmt.Sprintf("SELECT %s FROM %s%s%s",
		selectClause,
		fromClause,
		whereClause,
		orderByClause)

	return sql, params, nil
}

// compileBindings converts a bindings map to a SELECT column list.
// Example: {"event_id": "eventID"} -> "event_id AS eventID". Keys are
// sorted for deterministic output.
func (c *SQLCompiler) compileBindings(bindings map[string]string) string {
	if len(bindings) == 0 {
		return "*"
	}

	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, sourceField := range keys {
		boundVar := bindings[sourceField]
		if sourceField == boundVar {
			parts = append(parts, sourceField)
		} else {
			parts = append(parts, fmt.Sprintf("%s AS %s", sourceField, boundVar))
		}
	}

	return strings.Join(parts, ", ")
}

// stableOrderKey returns the ORDER BY clause every compiled query
// must carry. internal/store's tables all key on an autoincrement
// "id" column, so ordering on it is always available.
func (c *SQLCompiler) stableOrderKey() string {
	return "id ASC COLLATE BINARY"
}

// compilePredicate compiles a queryir.Predicate to a SQL WHERE clause
// fragment. CRITICAL: values are never interpolated, always ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "1 = 1", nil, nil
	}

	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileEquals(pred)
	case *queryir.Equals:
		return c.compileEquals(*pred)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileEquals compiles an Equals predicate to "field = ?".
func (c *SQLCompiler) compileEquals(eq queryir.Equals) (string, []any, error) {
	param, err := valueToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}

	sql := fmt.Sprintf("%s = ?", eq.Field)
	return sql, []any{param}, nil
}

// compileAnd compiles an And predicate to a conjunction joined by AND.
func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	var sqlParts []string
	var allParams []any

	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}

// valueToParam converts an ir.Value to a Go native type for an SQL
// parameter. Supports string, int, bool; arrays and objects are not
// directly supported as SQL parameters.
func valueToParam(v ir.Value) (any, error) {
	switch val := v.(type) {
	case ir.StringValue:
		return string(val), nil
	case ir.IntValue:
		return int64(val), nil
	case ir.BoolValue:
		return bool(val), nil
	case ir.NullValue:
		return nil, nil
	case ir.ArrayValue:
		return nil, fmt.Errorf("ArrayValue cannot be used as SQL parameter directly")
	case ir.ObjectValue:
		return nil, fmt.Errorf("ObjectValue cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported Value type for SQL parameter: %T", v)
	}
}
