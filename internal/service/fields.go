package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"platform-service/internal/apperror"

	"github.com/hashicorp/go-multierror"
)

// Fields holds accepted column values keyed by column name
type Fields map[string]interface{}

// Kind is the JSON value type a column accepts
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindNumber
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "an integer"
	case KindNumber:
		return "a number"
	case KindBoolean:
		return "a boolean"
	default:
		return "a string"
	}
}

// Column describes one writable column of a resource
type Column struct {
	Name        string
	Kind        Kind
	Required    bool
	Default     interface{}
	OneOf       []string
	NonNegative bool
}

// Accept validates a decoded JSON body against the resource columns and
// returns the values to insert, defaults applied. Unknown keys are ignored.
// All problems are reported together in one validation error.
func (r *Resource) Accept(body map[string]interface{}) (Fields, error) {
	var problems *multierror.Error
	fields := make(Fields, len(r.Columns))

	for _, col := range r.Columns {
		raw, ok := body[col.Name]
		if !ok || raw == nil {
			if col.Required {
				problems = multierror.Append(problems, fmt.Errorf("%s is required", col.Name))
				continue
			}
			fields[col.Name] = col.Default
			continue
		}

		val, err := col.coerce(raw)
		if err != nil {
			problems = multierror.Append(problems, err)
			continue
		}
		fields[col.Name] = val
	}

	if problems == nil && r.check != nil {
		if err := r.check(fields); err != nil {
			problems = multierror.Append(problems, err)
		}
	}

	if problems != nil {
		problems.ErrorFormat = joinProblems
		return nil, apperror.Validation("%s", problems.Error())
	}
	return fields, nil
}

// row lays the fields out in column order for an insert
func (r *Resource) row(fields Fields) ([]string, []interface{}) {
	columns := make([]string, len(r.Columns))
	values := make([]interface{}, len(r.Columns))
	for i, col := range r.Columns {
		columns[i] = col.Name
		values[i] = fields[col.Name]
	}
	return columns, values
}

func (c Column) coerce(raw interface{}) (interface{}, error) {
	switch c.Kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, c.typeError()
		}
		if len(c.OneOf) > 0 && !contains(c.OneOf, s) {
			return nil, fmt.Errorf("%s must be one of %s, got %q", c.Name, strings.Join(c.OneOf, ", "), s)
		}
		return s, nil

	case KindInteger:
		f, ok := toFloat(raw)
		if !ok || f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil, c.typeError()
		}
		// INTEGER and SERIAL columns
		if f < math.MinInt32 || f > math.MaxInt32 {
			return nil, fmt.Errorf("%s is out of range", c.Name)
		}
		return int64(f), nil

	case KindNumber:
		f, ok := toFloat(raw)
		if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, c.typeError()
		}
		if c.NonNegative && f < 0 {
			return nil, fmt.Errorf("%s must not be negative", c.Name)
		}
		return f, nil

	case KindBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, c.typeError()
		}
		return b, nil
	}
	return nil, fmt.Errorf("%s has unsupported kind", c.Name)
}

func (c Column) typeError() error {
	return fmt.Errorf("%s must be %s", c.Name, c.Kind)
}

func toFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

func joinProblems(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
