package domain

// DaySummary holds the aggregated values for all observations sharing one
// calendar date. Sums treat missing values as zero contribution, but a metric
// with no recorded value at all stays nil so the report can render it as
// empty rather than implying a recorded zero.
type DaySummary struct {
	Date         string   `json:"date"` // YYYY-MM-DD
	EntryCount   int      `json:"entry_count"`
	GlucoseCount int      `json:"glucose_count"`
	MeanGlucose  *float64 `json:"mean_glucose,omitempty"`
	FastInsulin  *float64 `json:"fast_insulin,omitempty"`
	BasalInsulin *float64 `json:"basal_insulin,omitempty"`
	Carbs        *float64 `json:"carbs,omitempty"`
}

// ReportStats holds whole-dataset statistics. Fractions are in [0, 1] and are
// computed over the glucose readings present in the dataset; the per-hour
// series are indexed by hour of day.
type ReportStats struct {
	HbA1c                     *float64    `json:"hba1c,omitempty"`
	TotalEntryCount           int         `json:"total_entry_count"`
	GlucoseEntryCount         int         `json:"glucose_entry_count"`
	MeanDailyGlucoseEntryRate float64     `json:"mean_daily_glucose_entry_rate"`
	LowCount                  int         `json:"low_count"`
	VeryLowCount              int         `json:"very_low_count"`
	MeanFastInsulinPerDay     float64     `json:"mean_fast_insulin_per_day"`
	TimeInRange               float64     `json:"time_in_range"`
	TimeBelowRange            float64     `json:"time_below_range"`
	TimeAboveRange            float64     `json:"time_above_range"`
	TimeInRangeByHour         [24]float64 `json:"time_in_range_by_hour"`
	TimeBelowRangeByHour      [24]float64 `json:"time_below_range_by_hour"`
	TimeAboveRangeByHour      [24]float64 `json:"time_above_range_by_hour"`
	MeanGlucoseByHour         [24]float64 `json:"mean_glucose_by_hour"`
}

// ReportData is everything the report renderer consumes: day summaries in
// chronological order plus the whole-dataset statistics.
type ReportData struct {
	Days  []DaySummary `json:"days"`
	Stats ReportStats  `json:"stats"`
}
