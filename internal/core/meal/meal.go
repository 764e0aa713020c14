// Package meal defines the contracts for the AI collaborators that estimate
// calories, suggest accompaniments, and analyze nutrient gaps, along with the
// typed decoding of their responses.
package meal

import (
	"context"

	"github.com/hay-kot/calcam/internal/core/history"
)

// Estimate is the result of a calorie estimation, in model response order.
type Estimate struct {
	FoodItems []history.FoodItem `json:"foodItems"`
}

// AnalysisItem is one consumed food passed to nutrient analysis.
type AnalysisItem struct {
	Name     string   `json:"name"`
	Quantity string   `json:"quantity,omitempty"`
	Calories *float64 `json:"calories,omitempty"`
}

// LackingNutrient is a nutrient the analysis flagged, with a suggestion.
type LackingNutrient struct {
	Nutrient   string `json:"nutrient"`
	Suggestion string `json:"suggestion"`
}

// Analysis is the nutrient-gap report.
type Analysis struct {
	LackingNutrients []LackingNutrient `json:"lackingNutrients"`
	GeneralFeedback  string            `json:"generalFeedback,omitempty"`
}

// Estimator identifies food items in a meal photo.
type Estimator interface {
	EstimateCalories(ctx context.Context, photoDataURI string) (Estimate, error)
}

// Suggester lists typical accompaniments for a food.
type Suggester interface {
	SuggestAccompaniments(ctx context.Context, food string) ([]string, error)
}

// Analyzer reports nutrients that may be lacking from a list of foods.
type Analyzer interface {
	AnalyzeNutrients(ctx context.Context, items []AnalysisItem) (Analysis, error)
}

// Model is a collaborator that provides all three operations.
type Model interface {
	Estimator
	Suggester
	Analyzer
}
