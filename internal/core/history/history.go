// Package history holds the meal estimation history: its entry types and the
// capacity-bounded store that persists them.
package history

import (
	"strings"
	"time"
)

// Placeholder replaces the uploaded image in persisted entries.
const Placeholder = "placeholder"

// FoodItem is a single identified food with its calorie estimate.
type FoodItem struct {
	Name              string  `json:"name"`
	EstimatedCalories float64 `json:"estimatedCalories"`
}

// Entry is one recorded meal estimation result.
type Entry struct {
	ID            string     `json:"id"`
	Date          time.Time  `json:"date"`
	UploadedImage string     `json:"uploadedImage"` // data URI, or Placeholder
	FoodItems     []FoodItem `json:"foodItems"`
	TotalCalories float64    `json:"totalCalories"`
}

// HasImage reports whether the entry still carries the real uploaded image.
func (e Entry) HasImage() bool {
	return e.UploadedImage != "" && e.UploadedImage != Placeholder
}

// ItemNames returns the food item names joined by ", ".
func (e Entry) ItemNames() string {
	names := make([]string, len(e.FoodItems))
	for i, item := range e.FoodItems {
		names[i] = item.Name
	}
	return strings.Join(names, ", ")
}

// Candidate is an entry that has not been assigned an ID or date yet.
type Candidate struct {
	UploadedImage string
	FoodItems     []FoodItem
	TotalCalories float64
}

// NewCandidate builds a candidate whose total is the sum of its items.
func NewCandidate(image string, items []FoodItem) Candidate {
	return Candidate{
		UploadedImage: image,
		FoodItems:     items,
		TotalCalories: SumCalories(items),
	}
}

// SumCalories totals the estimated calories of items.
func SumCalories(items []FoodItem) float64 {
	var total float64
	for _, item := range items {
		total += item.EstimatedCalories
	}
	return total
}

// Persisted returns a copy of entries with every image replaced by Placeholder.
func Persisted(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		e.UploadedImage = Placeholder
		out[i] = e
	}
	return out
}
