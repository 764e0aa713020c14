package meal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/calcam/internal/core/history"
)

// FormatError reports a model response that does not match the expected shape.
// Err is usually a criterio.FieldErrors naming each offending field.
type FormatError struct {
	Op  string // estimate, accompaniments, analysis
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s response: %v", e.Op, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ParseEstimate decodes {"foodItems":[{"name":string,"estimatedCalories":number}]}.
func ParseEstimate(data []byte) (Estimate, error) {
	const op = "estimate"

	obj, err := decodeObject(data)
	if err != nil {
		return Estimate{}, &FormatError{Op: op, Err: err}
	}

	raws, err := requireArray(obj, "foodItems")
	if err != nil {
		return Estimate{}, &FormatError{Op: op, Err: criterio.NewFieldErrors("foodItems", err)}
	}

	var errs criterio.FieldErrorsBuilder
	items := make([]history.FoodItem, 0, len(raws))

	for i, raw := range raws {
		field := fmt.Sprintf("foodItems[%d]", i)

		item, err := decodeObject(raw)
		if err != nil {
			errs = errs.Append(field, err)
			continue
		}

		name, err := requireString(item, "name")
		if err != nil {
			errs = errs.Append(field+".name", err)
		}

		calories, err := requireNumber(item, "estimatedCalories")
		if err != nil {
			errs = errs.Append(field+".estimatedCalories", err)
		}

		items = append(items, history.FoodItem{Name: name, EstimatedCalories: calories})
	}

	if err := errs.ToError(); err != nil {
		return Estimate{}, &FormatError{Op: op, Err: err}
	}

	return Estimate{FoodItems: items}, nil
}

// ParseAccompaniments decodes {"accompaniments":[string]}. Blank entries are dropped.
func ParseAccompaniments(data []byte) ([]string, error) {
	const op = "accompaniments"

	obj, err := decodeObject(data)
	if err != nil {
		return nil, &FormatError{Op: op, Err: err}
	}

	raws, err := requireArray(obj, "accompaniments")
	if err != nil {
		return nil, &FormatError{Op: op, Err: criterio.NewFieldErrors("accompaniments", err)}
	}

	var errs criterio.FieldErrorsBuilder
	out := make([]string, 0, len(raws))

	for i, raw := range raws {
		var s string
		if isNull(raw) || json.Unmarshal(raw, &s) != nil {
			errs = errs.Append(fmt.Sprintf("accompaniments[%d]", i), errors.New("must be a string"))
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	if err := errs.ToError(); err != nil {
		return nil, &FormatError{Op: op, Err: err}
	}

	return out, nil
}

// ParseAnalysis decodes {"lackingNutrients":[{"nutrient","suggestion"}],"generalFeedback"?}.
func ParseAnalysis(data []byte) (Analysis, error) {
	const op = "analysis"

	obj, err := decodeObject(data)
	if err != nil {
		return Analysis{}, &FormatError{Op: op, Err: err}
	}

	raws, err := requireArray(obj, "lackingNutrients")
	if err != nil {
		return Analysis{}, &FormatError{Op: op, Err: criterio.NewFieldErrors("lackingNutrients", err)}
	}

	var errs criterio.FieldErrorsBuilder
	analysis := Analysis{LackingNutrients: make([]LackingNutrient, 0, len(raws))}

	for i, raw := range raws {
		field := fmt.Sprintf("lackingNutrients[%d]", i)

		item, err := decodeObject(raw)
		if err != nil {
			errs = errs.Append(field, err)
			continue
		}

		nutrient, err := requireString(item, "nutrient")
		if err != nil {
			errs = errs.Append(field+".nutrient", err)
		}

		suggestion, err := requireString(item, "suggestion")
		if err != nil {
			errs = errs.Append(field+".suggestion", err)
		}

		analysis.LackingNutrients = append(analysis.LackingNutrients, LackingNutrient{
			Nutrient:   nutrient,
			Suggestion: suggestion,
		})
	}

	if raw, ok := obj["generalFeedback"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &analysis.GeneralFeedback); err != nil {
			errs = errs.Append("generalFeedback", errors.New("must be a string"))
		}
	}

	if err := errs.ToError(); err != nil {
		return Analysis{}, &FormatError{Op: op, Err: err}
	}

	return analysis, nil
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, errors.New("must be a JSON object")
	}
	return obj, nil
}

func requireArray(obj map[string]json.RawMessage, key string) ([]json.RawMessage, error) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return nil, errors.New("is required")
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, errors.New("must be an array")
	}
	return arr, nil
}

func requireString(obj map[string]json.RawMessage, key string) (string, error) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return "", errors.New("is required")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errors.New("must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return "", errors.New("cannot be empty")
	}
	return s, nil
}

func requireNumber(obj map[string]json.RawMessage, key string) (float64, error) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return 0, errors.New("is required")
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, errors.New("must be a number")
	}
	if n < 0 || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0, fmt.Errorf("must be a non-negative number, got %v", n)
	}
	return n, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
