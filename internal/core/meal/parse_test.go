package meal

import (
	"errors"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/calcam/internal/core/history"
)

func TestParseEstimate(t *testing.T) {
	got, err := ParseEstimate([]byte(`{"foodItems":[
		{"name":"Pizza","estimatedCalories":500},
		{"name":"Salad","estimatedCalories":120.5},
		{"name":"Pizza","estimatedCalories":480}
	]}`))
	require.NoError(t, err)

	assert.Equal(t, []history.FoodItem{
		{Name: "Pizza", EstimatedCalories: 500},
		{Name: "Salad", EstimatedCalories: 120.5},
		{Name: "Pizza", EstimatedCalories: 480},
	}, got.FoodItems)
}

func TestParseEstimate_Empty(t *testing.T) {
	got, err := ParseEstimate([]byte(`{"foodItems":[]}`))
	require.NoError(t, err)
	assert.Empty(t, got.FoodItems)
}

func TestParseEstimate_FormatErrors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantField string
	}{
		{name: "not json", input: `pizza`, wantField: ""},
		{name: "array root", input: `[]`, wantField: ""},
		{name: "missing items", input: `{}`, wantField: "foodItems"},
		{name: "items not array", input: `{"foodItems":"pizza"}`, wantField: "foodItems"},
		{name: "item not object", input: `{"foodItems":[1]}`, wantField: "foodItems[0]"},
		{name: "missing name", input: `{"foodItems":[{"estimatedCalories":1}]}`, wantField: "foodItems[0].name"},
		{name: "numeric name", input: `{"foodItems":[{"name":3,"estimatedCalories":1}]}`, wantField: "foodItems[0].name"},
		{name: "calories as string", input: `{"foodItems":[{"name":"Pizza","estimatedCalories":"500 kcal"}]}`, wantField: "foodItems[0].estimatedCalories"},
		{name: "null calories", input: `{"foodItems":[{"name":"Pizza","estimatedCalories":null}]}`, wantField: "foodItems[0].estimatedCalories"},
		{name: "negative calories", input: `{"foodItems":[{"name":"Pizza","estimatedCalories":-5}]}`, wantField: "foodItems[0].estimatedCalories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEstimate([]byte(tt.input))

			var formatErr *FormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, "estimate", formatErr.Op)

			if tt.wantField == "" {
				return
			}

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			assert.Equal(t, tt.wantField, fieldErrs[0].Field)
		})
	}
}

func TestParseEstimate_ReportsEveryBadField(t *testing.T) {
	_, err := ParseEstimate([]byte(`{"foodItems":[
		{"name":"ok","estimatedCalories":1},
		{"name":"","estimatedCalories":"x"}
	]}`))

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
}

func TestParseAccompaniments(t *testing.T) {
	got, err := ParseAccompaniments([]byte(`{"accompaniments":["Garlic bread"," ","Caesar salad"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Garlic bread", "Caesar salad"}, got)

	_, err = ParseAccompaniments([]byte(`{"accompaniments":["ok", 2]}`))
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "accompaniments", formatErr.Op)

	_, err = ParseAccompaniments([]byte(`{"suggestions":[]}`))
	require.ErrorAs(t, err, &formatErr)
}

func TestParseAnalysis(t *testing.T) {
	got, err := ParseAnalysis([]byte(`{
		"lackingNutrients":[{"nutrient":"Vitamin C","suggestion":"Add citrus fruits."}],
		"generalFeedback":"Mostly carbohydrates."
	}`))
	require.NoError(t, err)

	assert.Equal(t, []LackingNutrient{{Nutrient: "Vitamin C", Suggestion: "Add citrus fruits."}}, got.LackingNutrients)
	assert.Equal(t, "Mostly carbohydrates.", got.GeneralFeedback)
}

func TestParseAnalysis_OptionalFeedback(t *testing.T) {
	got, err := ParseAnalysis([]byte(`{"lackingNutrients":[],"generalFeedback":null}`))
	require.NoError(t, err)
	assert.Empty(t, got.LackingNutrients)
	assert.Empty(t, got.GeneralFeedback)
}

func TestParseAnalysis_FormatErrors(t *testing.T) {
	_, err := ParseAnalysis([]byte(`{"lackingNutrients":[{"nutrient":"Iron"}],"generalFeedback":7}`))

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 2)
	assert.Equal(t, "lackingNutrients[0].suggestion", fieldErrs[0].Field)
	assert.Equal(t, "generalFeedback", fieldErrs[1].Field)
}

func TestFormatError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &FormatError{Op: "estimate", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "invalid estimate response: boom", err.Error())
}
