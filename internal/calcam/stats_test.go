package calcam

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/calcam/internal/core/config"
	"github.com/hay-kot/calcam/internal/core/history"
)

// staticHistory implements HistoryStore over a fixed slice.
type staticHistory struct {
	entries []history.Entry
}

func (h *staticHistory) Hydrate(context.Context)   {}
func (h *staticHistory) Entries() []history.Entry { return h.entries }
func (h *staticHistory) Append(context.Context, history.Candidate) history.Entry {
	panic("not used")
}

func TestService_Stats(t *testing.T) {
	now := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)
	at := func(days, hour int) time.Time {
		return time.Date(2026, 5, 10-days, hour, 0, 0, 0, time.UTC)
	}

	hist := &staticHistory{entries: []history.Entry{
		{Date: at(0, 12), TotalCalories: 700},
		{Date: at(0, 8), TotalCalories: 300},
		{Date: at(3, 12), TotalCalories: 400},
		{Date: at(6, 1), TotalCalories: 700},
		{Date: at(7, 23), TotalCalories: 1000}, // outside the week
	}}

	cfg := config.DefaultConfig()
	svc := New(&fakeModel{}, hist, &cfg, zerolog.Nop())

	st := svc.Stats(context.Background(), now)
	assert.InDelta(t, 1000, st.CaloriesToday, 0.001)
	assert.InDelta(t, 300, st.DailyAverageWeek, 0.001)
	assert.Equal(t, 5, st.MealsLogged)
	assert.InDelta(t, 3100, st.TotalCalories, 0.001)
}

func TestService_Stats_Empty(t *testing.T) {
	cfg := config.DefaultConfig()
	svc := New(&fakeModel{}, &staticHistory{}, &cfg, zerolog.Nop())

	assert.Equal(t, Stats{}, svc.Stats(context.Background(), time.Now()))
}
