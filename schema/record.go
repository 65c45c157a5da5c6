package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
)

// Record is one decoded request: wire field name to value.
type Record map[string]float64

// FieldError describes one rejected field, shaped after the usual
// {"loc": [...], "msg": ..., "type": ...} validation detail.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationErrors is returned by Decode when the payload does not satisfy
// the schema. No partial record is ever produced.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = strings.Join(e.Loc, ".") + ": " + e.Msg
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// Decode reads a JSON object and extracts every declared field. Keys the
// schema does not declare are ignored.
func (s *Schema) Decode(r io.Reader) (Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, ValidationErrors{{
			Loc:  []string{"body"},
			Msg:  "JSON decode error: " + err.Error(),
			Type: "value_error.jsondecode",
		}}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, ValidationErrors{{
			Loc:  []string{"body"},
			Msg:  "JSON decode error: unexpected data after top-level value",
			Type: "value_error.jsondecode",
		}}
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, ValidationErrors{{
			Loc:  []string{"body"},
			Msg:  "value is not a valid dict",
			Type: "type_error.dict",
		}}
	}

	rec := make(Record, len(s.Fields))
	var errs ValidationErrors
	for _, f := range s.Fields {
		v, present := obj[f.Name]
		if !present {
			errs = append(errs, FieldError{
				Loc:  []string{"body", f.Name},
				Msg:  "field required",
				Type: "value_error.missing",
			})
			continue
		}
		x, ok := toFloat(v)
		if !ok {
			errs = append(errs, FieldError{
				Loc:  []string{"body", f.Name},
				Msg:  "value is not a valid float",
				Type: "type_error.float",
			})
			continue
		}
		rec[f.Name] = x
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return rec, nil
}

func toFloat(v interface{}) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	x, err := n.Float64()
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	return x, true
}

// Vector arranges a record into the schema's column order.
func (s *Schema) Vector(rec Record) ([]float64, error) {
	vec := make([]float64, len(s.Fields))
	for i, f := range s.Fields {
		v, ok := rec[f.Name]
		if !ok {
			return nil, fmt.Errorf("record has no value for %q", f.Name)
		}
		vec[i] = v
	}
	return vec, nil
}
