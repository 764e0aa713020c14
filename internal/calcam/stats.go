package calcam

import (
	"context"
	"time"
)

// Stats summarizes the meal history for the dashboard.
type Stats struct {
	CaloriesToday    float64 `json:"caloriesToday"`
	DailyAverageWeek float64 `json:"dailyAverageWeek"`
	MealsLogged      int     `json:"mealsLogged"`
	TotalCalories    float64 `json:"totalCalories"`
}

// statsWindowDays is the window the daily average is taken over.
const statsWindowDays = 7

// Stats computes history statistics relative to now, in now's location.
// Today is the calendar day containing now. The weekly average divides the
// calories of the last seven calendar days, today included, by seven.
func (s *Service) Stats(ctx context.Context, now time.Time) Stats {
	s.history.Hydrate(ctx)

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	weekStart := today.AddDate(0, 0, -(statsWindowDays - 1))

	var st Stats
	var week float64
	for _, e := range s.history.Entries() {
		st.MealsLogged++
		st.TotalCalories += e.TotalCalories

		date := e.Date.In(now.Location())
		if date.After(now) {
			continue
		}
		if !date.Before(today) {
			st.CaloriesToday += e.TotalCalories
		}
		if !date.Before(weekStart) {
			week += e.TotalCalories
		}
	}

	st.DailyAverageWeek = week / statsWindowDays
	return st
}
