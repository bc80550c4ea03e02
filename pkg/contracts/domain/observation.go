package domain

import (
	"time"
)

// Observation is a single timestamped self-monitoring entry. Every field
// except Timestamp is optional: a nil pointer means the value was not
// recorded, which is distinct from a recorded zero (e.g. zero units of
// insulin). Observations are immutable once parsed.
type Observation struct {
	Timestamp    time.Time `json:"timestamp"`
	Glucose      *float64  `json:"glucose,omitempty"`       // mg/dL
	FastInsulin  *float64  `json:"fast_insulin,omitempty"`  // units
	BasalInsulin *float64  `json:"basal_insulin,omitempty"` // units
	Carbs        *float64  `json:"carbs,omitempty"`         // grams
}

// Day returns the calendar date the observation falls on.
func (o Observation) Day() string {
	return o.Timestamp.Format("2006-01-02")
}

// Float returns a pointer to v. Convenience for building observations.
func Float(v float64) *float64 {
	return &v
}
