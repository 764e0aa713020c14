// Package tmpl provides template rendering utilities for model prompts.
package tmpl

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

// oneLine collapses runs of whitespace, including newlines, into single
// spaces so user text cannot break out of a prompt list item.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// kcal formats a calorie count without trailing zeros.
func kcal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var funcs = template.FuncMap{
	"oneline": oneLine,
	"kcal":    kcal,
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - oneline: Collapse whitespace and newlines into single spaces
//   - kcal: Format a float64 calorie count
func Render(tmpl string, data any) (string, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
