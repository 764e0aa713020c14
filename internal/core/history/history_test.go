package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCandidate(t *testing.T) {
	c := NewCandidate("data:image/jpeg;base64,AAA", []FoodItem{
		{Name: "Rice", EstimatedCalories: 200},
		{Name: "Chicken", EstimatedCalories: 250.5},
		{Name: "Rice", EstimatedCalories: 200},
	})

	assert.Equal(t, 650.5, c.TotalCalories)
	assert.Len(t, c.FoodItems, 3, "duplicate names are kept")
}

func TestPersisted(t *testing.T) {
	live := []Entry{
		{ID: "1", UploadedImage: "data:image/png;base64,XYZ"},
		{ID: "2", UploadedImage: Placeholder},
		{ID: "3"},
	}

	out := Persisted(live)

	for _, e := range out {
		assert.Equal(t, Placeholder, e.UploadedImage)
	}
	assert.Equal(t, "data:image/png;base64,XYZ", live[0].UploadedImage, "input must not be modified")
}

func TestEntry_HasImage(t *testing.T) {
	assert.True(t, Entry{UploadedImage: "data:image/png;base64,XYZ"}.HasImage())
	assert.False(t, Entry{UploadedImage: Placeholder}.HasImage())
	assert.False(t, Entry{}.HasImage())
}

func TestEntry_ItemNames(t *testing.T) {
	e := Entry{FoodItems: []FoodItem{{Name: "Pizza"}, {Name: "Salad"}}}
	assert.Equal(t, "Pizza, Salad", e.ItemNames())
}
