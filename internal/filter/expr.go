package filter

import (
	"github.com/google/cel-go/cel"

	deckerrors "github.com/chazuruo/agentdeck/internal/errors"
)

// RecordVar is the CEL variable holding the full field map of a record.
const RecordVar = "r"

// ExprRecord is a Record that exposes its fields to CEL expressions.
type ExprRecord interface {
	Record
	ExprFields() map[string]any
}

// Expression is a compiled CEL predicate such as
// `downloads > 1000 && "support" in tags`.
type Expression struct {
	source  string
	fields  []string
	program cel.Program
}

// CompileExpression parses and type-checks src. Each name in fields is
// declared as a top-level dynamic variable, and the whole field map is
// available as r. Compilation problems wrap errors.ErrInvalid.
func CompileExpression(src string, fields ...string) (*Expression, error) {
	opts := []cel.EnvOption{
		cel.Variable(RecordVar, cel.MapType(cel.StringType, cel.DynType)),
	}
	for _, f := range fields {
		if f == RecordVar {
			continue
		}
		opts = append(opts, cel.Variable(f, cel.DynType))
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, deckerrors.Invalidf("expression environment: %v", err)
	}

	ast, issues := env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, deckerrors.Invalidf("expression %q: %v", src, issues.Err())
	}

	switch ast.OutputType().String() {
	case "bool", "dyn":
	default:
		return nil, deckerrors.Invalidf("expression %q must be boolean, got %s", src, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, deckerrors.Invalidf("expression %q: %v", src, err)
	}

	return &Expression{source: src, fields: fields, program: program}, nil
}

// String returns the expression source.
func (e *Expression) String() string {
	if e == nil {
		return ""
	}
	return e.source
}

// Matches evaluates the expression against r. Records that don't expose
// fields, evaluation errors and non-boolean results are all "no match".
func (e *Expression) Matches(r Record) bool {
	er, ok := r.(ExprRecord)
	if !ok {
		return false
	}

	fields := er.ExprFields()
	activation := make(map[string]any, len(e.fields)+1)
	activation[RecordVar] = fields
	for _, f := range e.fields {
		if v, ok := fields[f]; ok {
			activation[f] = v
		}
	}

	out, _, err := e.program.Eval(activation)
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
