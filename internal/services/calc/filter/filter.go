// Package filter translates AIP-160 filter expressions over calculator tape
// entries into parameterized SQL conditions.
package filter

import (
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// SQLCondition is a WHERE clause fragment with positional parameters.
type SQLCondition struct {
	Clause string
	Params []any
}

// Empty reports whether the condition constrains nothing.
func (c SQLCondition) Empty() bool {
	return strings.TrimSpace(c.Clause) == ""
}

type field struct {
	typ    *expr.Type
	column string
}

// tapeFields are the identifiers a tape filter may reference.
var tapeFields = map[string]field{
	"operator": {typ: filtering.TypeString, column: "operator"},
	"first":    {typ: filtering.TypeString, column: "first_operand"},
	"second":   {typ: filtering.TypeString, column: "second_operand"},
	"result":   {typ: filtering.TypeString, column: "result"},
	"seq":      {typ: filtering.TypeInt, column: "seq"},
	"ts":       {typ: filtering.TypeTimestamp, column: "created_at"},
}

var comparisons = map[string]string{
	filtering.FunctionEquals:        "=",
	filtering.FunctionNotEquals:     "!=",
	filtering.FunctionLessThan:      "<",
	filtering.FunctionLessEquals:    "<=",
	filtering.FunctionGreaterThan:   ">",
	filtering.FunctionGreaterEquals: ">=",
}

// TapeDeclarations returns the identifier declarations for tape filters.
func TapeDeclarations() (*filtering.Declarations, error) {
	opts := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	for name, f := range tapeFields {
		opts = append(opts, filtering.DeclareIdent(name, f.typ))
	}
	return filtering.NewDeclarations(opts...)
}

// ParseTapeFilter parses an AIP-160 expression such as
// `operator = "/" AND result = "Error"`. An empty expression yields an empty
// condition.
func ParseTapeFilter(raw string) (SQLCondition, error) {
	if strings.TrimSpace(raw) == "" {
		return SQLCondition{}, nil
	}
	decls, err := TapeDeclarations()
	if err != nil {
		return SQLCondition{}, fmt.Errorf("create declarations: %w", err)
	}
	parsed, err := filtering.ParseFilterString(raw, decls)
	if err != nil {
		return SQLCondition{}, fmt.Errorf("parse filter: %w", err)
	}
	return translate(parsed.CheckedExpr.GetExpr())
}

func translate(e *expr.Expr) (SQLCondition, error) {
	if e == nil {
		return SQLCondition{}, nil
	}
	call, ok := e.GetExprKind().(*expr.Expr_CallExpr)
	if !ok {
		return SQLCondition{}, fmt.Errorf("unsupported expression type: %T", e.GetExprKind())
	}
	fn := call.CallExpr.GetFunction()
	args := call.CallExpr.GetArgs()

	switch fn {
	case filtering.FunctionAnd, filtering.FunctionFuzzyAnd, filtering.FunctionOr:
		return translateLogical(fn, args)
	case filtering.FunctionNot:
		if len(args) != 1 {
			return SQLCondition{}, fmt.Errorf("NOT requires 1 argument")
		}
		inner, err := translate(args[0])
		if err != nil {
			return SQLCondition{}, err
		}
		return SQLCondition{Clause: "(NOT " + inner.Clause + ")", Params: inner.Params}, nil
	}
	if op, ok := comparisons[fn]; ok {
		return translateComparison(op, args)
	}
	return SQLCondition{}, fmt.Errorf("unsupported function: %s", fn)
}

func translateLogical(fn string, args []*expr.Expr) (SQLCondition, error) {
	if len(args) < 2 {
		return SQLCondition{}, fmt.Errorf("%s requires at least 2 arguments", fn)
	}
	joiner := " AND "
	if fn == filtering.FunctionOr {
		joiner = " OR "
	}
	clauses := make([]string, 0, len(args))
	var params []any
	for _, arg := range args {
		cond, err := translate(arg)
		if err != nil {
			return SQLCondition{}, err
		}
		clauses = append(clauses, cond.Clause)
		params = append(params, cond.Params...)
	}
	return SQLCondition{Clause: "(" + strings.Join(clauses, joiner) + ")", Params: params}, nil
}

func translateComparison(op string, args []*expr.Expr) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("comparison requires 2 arguments")
	}
	ident, ok := args[0].GetExprKind().(*expr.Expr_IdentExpr)
	if !ok {
		return SQLCondition{}, fmt.Errorf("expected identifier, got %T", args[0].GetExprKind())
	}
	name := ident.IdentExpr.GetName()
	f, ok := tapeFields[name]
	if !ok {
		return SQLCondition{}, fmt.Errorf("unknown field: %s", name)
	}

	var value any
	var err error
	if name == "ts" {
		value, err = timestampMillis(args[1])
	} else {
		value, err = constant(args[1])
	}
	if err != nil {
		return SQLCondition{}, fmt.Errorf("field %s: %w", name, err)
	}
	return SQLCondition{Clause: f.column + " " + op + " ?", Params: []any{value}}, nil
}

func constant(e *expr.Expr) (any, error) {
	c, ok := e.GetExprKind().(*expr.Expr_ConstExpr)
	if !ok {
		return nil, fmt.Errorf("expected constant, got %T", e.GetExprKind())
	}
	switch v := c.ConstExpr.GetConstantKind().(type) {
	case *expr.Constant_StringValue:
		return v.StringValue, nil
	case *expr.Constant_Int64Value:
		return v.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return int64(v.Uint64Value), nil
	case *expr.Constant_DoubleValue:
		return v.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return v.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", v)
	}
}

// timestampMillis accepts timestamp("RFC3339") or a bare RFC3339 string and
// returns Unix milliseconds, the storage representation of created_at.
func timestampMillis(e *expr.Expr) (int64, error) {
	if call, ok := e.GetExprKind().(*expr.Expr_CallExpr); ok {
		if call.CallExpr.GetFunction() != filtering.FunctionTimestamp || len(call.CallExpr.GetArgs()) != 1 {
			return 0, fmt.Errorf("unsupported function in value position: %s", call.CallExpr.GetFunction())
		}
		e = call.CallExpr.GetArgs()[0]
	}
	value, err := constant(e)
	if err != nil {
		return 0, err
	}
	text, ok := value.(string)
	if !ok {
		return 0, fmt.Errorf("timestamp must be a string")
	}
	ts, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", text)
	}
	return ts.UTC().UnixMilli(), nil
}
