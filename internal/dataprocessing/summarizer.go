package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"glikoz/pkg/contracts/domain"
)

// Summarizer aggregates parsed observations into the report data model: day
// groups with per-day summaries, plus whole-dataset statistics.
type Summarizer struct {
	logger *slog.Logger
	config SummarizerConfig
}

// SummarizerConfig holds the clinical thresholds and windows the statistics
// are computed against.
type SummarizerConfig struct {
	LowThreshold     float64 // mg/dL, readings below count as low
	VeryLowThreshold float64 // mg/dL, readings below count as very low
	HighThreshold    float64 // mg/dL, readings at or above count as high
	HbA1cWindowDays  int     // trailing window for the HbA1c estimate
	DateFormat       string  // format for day-group date strings
}

// DefaultSummarizerConfig returns the ADA consensus thresholds and the
// standard 90-day HbA1c window.
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{
		LowThreshold:     70,
		VeryLowThreshold: 54,
		HighThreshold:    180,
		HbA1cWindowDays:  90,
		DateFormat:       "2006-01-02",
	}
}

// NewSummarizer creates a summarizer. Zero config values fall back to the
// defaults.
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultSummarizerConfig()
	if config.LowThreshold <= 0 {
		config.LowThreshold = def.LowThreshold
	}
	if config.VeryLowThreshold <= 0 {
		config.VeryLowThreshold = def.VeryLowThreshold
	}
	if config.HighThreshold <= 0 {
		config.HighThreshold = def.HighThreshold
	}
	if config.HbA1cWindowDays <= 0 {
		config.HbA1cWindowDays = def.HbA1cWindowDays
	}
	if config.DateFormat == "" {
		config.DateFormat = def.DateFormat
	}
	return &Summarizer{logger: logger, config: config}
}

// Build consumes the ordered observation sequence and produces the report
// data. An empty sequence is valid and yields zero day groups and zeroed
// statistics; the renderer turns that into a "no data" report.
func (s *Summarizer) Build(ctx context.Context, observations []domain.Observation) *domain.ReportData {
	data := &domain.ReportData{
		Days:  s.buildDaySummaries(observations),
		Stats: s.buildStats(observations),
	}

	s.logger.InfoContext(ctx, "built report data",
		slog.Int("observation_count", len(observations)),
		slog.Int("day_count", len(data.Days)))

	return data
}

// buildDaySummaries partitions observations by calendar date and aggregates
// each group. Groups come out in chronological order; observations keep
// their original relative order within a group.
func (s *Summarizer) buildDaySummaries(observations []domain.Observation) []domain.DaySummary {
	groups := make(map[string][]domain.Observation)
	var dates []string
	for _, obs := range observations {
		date := obs.Timestamp.Format(s.config.DateFormat)
		if _, seen := groups[date]; !seen {
			dates = append(dates, date)
		}
		groups[date] = append(groups[date], obs)
	}
	sort.Strings(dates)

	summaries := make([]domain.DaySummary, 0, len(dates))
	for _, date := range dates {
		summaries = append(summaries, s.summarizeDay(date, groups[date]))
	}
	return summaries
}

func (s *Summarizer) summarizeDay(date string, group []domain.Observation) domain.DaySummary {
	summary := domain.DaySummary{
		Date:       date,
		EntryCount: len(group),
	}

	var glucoseSum float64
	fast := newAccumulator()
	basal := newAccumulator()
	carbs := newAccumulator()

	for _, obs := range group {
		if obs.Glucose != nil {
			summary.GlucoseCount++
			glucoseSum += *obs.Glucose
		}
		fast.add(obs.FastInsulin)
		basal.add(obs.BasalInsulin)
		carbs.add(obs.Carbs)
	}

	if summary.GlucoseCount > 0 {
		mean := glucoseSum / float64(summary.GlucoseCount)
		summary.MeanGlucose = &mean
	}
	summary.FastInsulin = fast.total()
	summary.BasalInsulin = basal.total()
	summary.Carbs = carbs.total()

	return summary
}

// accumulator sums optional values while remembering whether any value was
// recorded at all, so an all-absent metric can render as empty rather than 0.
type accumulator struct {
	sum     float64
	present bool
}

func newAccumulator() accumulator { return accumulator{} }

func (a *accumulator) add(v *float64) {
	if v != nil {
		a.sum += *v
		a.present = true
	}
}

func (a *accumulator) total() *float64 {
	if !a.present {
		return nil
	}
	sum := a.sum
	return &sum
}

func (s *Summarizer) buildStats(observations []domain.Observation) domain.ReportStats {
	stats := domain.ReportStats{
		TotalEntryCount: len(observations),
	}
	if len(observations) == 0 {
		return stats
	}

	days := make(map[string]struct{})
	var fastInsulinTotal float64
	var inRange, belowRange, aboveRange int

	type hourBucket struct {
		glucoseSum              float64
		count, in, below, above int
	}
	var hours [24]hourBucket

	for _, obs := range observations {
		days[obs.Timestamp.Format(s.config.DateFormat)] = struct{}{}
		if obs.FastInsulin != nil {
			fastInsulinTotal += *obs.FastInsulin
		}
		if obs.Glucose == nil {
			continue
		}
		g := *obs.Glucose
		stats.GlucoseEntryCount++
		if g < s.config.LowThreshold {
			stats.LowCount++
			belowRange++
		} else if g < s.config.HighThreshold {
			inRange++
		} else {
			aboveRange++
		}
		if g < s.config.VeryLowThreshold {
			stats.VeryLowCount++
		}

		h := obs.Timestamp.Hour()
		hours[h].glucoseSum += g
		hours[h].count++
		switch {
		case g < s.config.LowThreshold:
			hours[h].below++
		case g < s.config.HighThreshold:
			hours[h].in++
		default:
			hours[h].above++
		}
	}

	dayCount := float64(len(days))
	stats.MeanDailyGlucoseEntryRate = float64(stats.GlucoseEntryCount) / dayCount
	stats.MeanFastInsulinPerDay = fastInsulinTotal / dayCount

	if stats.GlucoseEntryCount > 0 {
		total := float64(stats.GlucoseEntryCount)
		stats.TimeInRange = float64(inRange) / total
		stats.TimeBelowRange = float64(belowRange) / total
		stats.TimeAboveRange = float64(aboveRange) / total
	}

	for h, bucket := range hours {
		if bucket.count == 0 {
			continue
		}
		n := float64(bucket.count)
		stats.MeanGlucoseByHour[h] = bucket.glucoseSum / n
		stats.TimeInRangeByHour[h] = float64(bucket.in) / n
		stats.TimeBelowRangeByHour[h] = float64(bucket.below) / n
		stats.TimeAboveRangeByHour[h] = float64(bucket.above) / n
	}

	stats.HbA1c = s.estimateHbA1c(observations)

	return stats
}

// estimateHbA1c estimates HbA1c from the mean glucose over the trailing
// window ending at the newest entry, as described in Nathan et al. 2008,
// "Translating the A1C assay into estimated average glucose values"
// (Diabetes Care 31(8):1473-78).
func (s *Summarizer) estimateHbA1c(observations []domain.Observation) *float64 {
	var newest time.Time
	for _, obs := range observations {
		if obs.Timestamp.After(newest) {
			newest = obs.Timestamp
		}
	}
	if newest.IsZero() {
		return nil
	}
	cutoff := newest.AddDate(0, 0, -s.config.HbA1cWindowDays)

	var sum float64
	var count int
	for _, obs := range observations {
		if obs.Glucose == nil || obs.Timestamp.Before(cutoff) {
			continue
		}
		sum += *obs.Glucose
		count++
	}
	if count == 0 {
		return nil
	}

	hba1c := (sum/float64(count) + 46.7) / 28.7
	return &hba1c
}
