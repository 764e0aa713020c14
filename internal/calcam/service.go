// Package calcam orchestrates calorie estimation, accompaniment suggestions,
// nutrient analysis, and the meal history.
package calcam

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hay-kot/calcam/internal/core/config"
	"github.com/hay-kot/calcam/internal/core/history"
	"github.com/hay-kot/calcam/internal/core/meal"
	"github.com/hay-kot/calcam/internal/core/validate"
)

var (
	// ErrNoFoodItems is returned when an estimate identifies no food. Nothing
	// is recorded in history.
	ErrNoFoodItems = errors.New("no food items were identified in the image")
	// ErrNoMeals is returned when analysis is requested with an empty history.
	ErrNoMeals = errors.New("no meals logged yet; estimate a meal first")
)

// EmptyAnalysisFeedback is returned instead of calling the model when there
// is nothing to analyze.
const EmptyAnalysisFeedback = "No meal data provided to analyze. Please log some meals first."

// servingQuantity is the portion reported for every analyzed item.
const servingQuantity = "1 serving"

// HistoryStore is the subset of history.Store the service needs.
type HistoryStore interface {
	Hydrate(ctx context.Context)
	Entries() []history.Entry
	Append(ctx context.Context, c history.Candidate) history.Entry
}

// Service orchestrates calcam operations.
type Service struct {
	model   meal.Model
	history HistoryStore
	config  *config.Config
	log     zerolog.Logger
}

// New creates a new Service.
func New(model meal.Model, hist HistoryStore, cfg *config.Config, log zerolog.Logger) *Service {
	return &Service{
		model:   model,
		history: hist,
		config:  cfg,
		log:     log,
	}
}

// Estimate identifies the food in image, records the result in history, and
// returns the new entry. An estimate without food items returns
// ErrNoFoodItems and records nothing.
func (s *Service) Estimate(ctx context.Context, image []byte) (history.Entry, error) {
	uri, err := meal.EncodeImage(image)
	if err != nil {
		return history.Entry{}, err
	}

	est, err := s.model.EstimateCalories(ctx, uri)
	if err != nil {
		return history.Entry{}, err
	}

	if len(est.FoodItems) == 0 {
		s.log.Info().Msg("estimate returned no food items")
		return history.Entry{}, ErrNoFoodItems
	}

	entry := s.history.Append(ctx, history.NewCandidate(uri, est.FoodItems))
	s.log.Info().
		Str("id", entry.ID).
		Int("items", len(entry.FoodItems)).
		Float64("total_calories", entry.TotalCalories).
		Msg("recorded estimate")

	return entry, nil
}

// EstimateFile reads path and estimates it.
func (s *Service) EstimateFile(ctx context.Context, path string) (history.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return history.Entry{}, fmt.Errorf("read image: %w", err)
	}

	entry, err := s.Estimate(ctx, data)
	if err != nil {
		return history.Entry{}, fmt.Errorf("%s: %w", path, err)
	}
	return entry, nil
}

// Suggest returns typical accompaniments for food.
func (s *Service) Suggest(ctx context.Context, food string) ([]string, error) {
	if err := validate.FoodName(food); err != nil {
		return nil, err
	}
	return s.model.SuggestAccompaniments(ctx, strings.TrimSpace(food))
}

// AnalyzeRecent analyzes the most recent meals in history. Every food item of
// those meals is sent as one serving with its estimated calories.
func (s *Service) AnalyzeRecent(ctx context.Context) (meal.Analysis, error) {
	s.history.Hydrate(ctx)

	entries := s.history.Entries()
	if len(entries) == 0 {
		return meal.Analysis{}, ErrNoMeals
	}

	if n := s.config.Analysis.RecentMeals; len(entries) > n {
		entries = entries[:n]
	}

	var items []meal.AnalysisItem
	for _, e := range entries {
		for _, fi := range e.FoodItems {
			calories := fi.EstimatedCalories
			items = append(items, meal.AnalysisItem{
				Name:     fi.Name,
				Quantity: servingQuantity,
				Calories: &calories,
			})
		}
	}

	return s.analyze(ctx, items)
}

// AnalyzeManual analyzes free text with one food per non-blank line.
func (s *Service) AnalyzeManual(ctx context.Context, text string) (meal.Analysis, error) {
	var items []meal.AnalysisItem
	for _, line := range strings.Split(text, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			items = append(items, meal.AnalysisItem{Name: name, Quantity: servingQuantity})
		}
	}

	return s.analyze(ctx, items)
}

func (s *Service) analyze(ctx context.Context, items []meal.AnalysisItem) (meal.Analysis, error) {
	if len(items) == 0 {
		return meal.Analysis{
			LackingNutrients: []meal.LackingNutrient{},
			GeneralFeedback:  EmptyAnalysisFeedback,
		}, nil
	}

	s.log.Debug().Int("items", len(items)).Msg("analyzing nutrients")
	return s.model.AnalyzeNutrients(ctx, items)
}
