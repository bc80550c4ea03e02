package dataprocessing

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"glikoz/internal/errors"
	"glikoz/pkg/contracts/domain"
)

// Diaguard backups mix record kinds in one semicolon-separated file: "food"
// lines declare carbs per 100g, "entry" lines open an entry whose
// measurement/foodEaten/entryTag lines follow until the next non-detail line.
const (
	diaguardFood      = "food"
	diaguardEntry     = "entry"
	diaguardMeasure   = "measurement"
	diaguardFoodEaten = "foodEaten"
	diaguardEntryTag  = "entryTag"
)

// diaguard timestamps carry seconds, unlike the standard CSV export
var diaguardLayouts = []string{"2006-01-02 15:04:05", "2006-01-02 15:04"}

// ParseDiaguardBackup reads a Diaguard CSV backup into observations. Blood
// sugar maps to glucose, the insulin triple maps to fast (bolus + correction)
// and basal doses, and carbs are the meal value plus each eaten food's weight
// scaled by its per-100g carb ratio.
func (p *Parser) ParseDiaguardBackup(ctx context.Context, r io.Reader) ([]domain.Observation, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewParsingError("failed to read backup", err)
	}

	foods := make(map[string]float64) // carbs per 100g by lowercase food name
	var observations []domain.Observation

	for i := 0; i < len(lines); {
		name, values := splitBackupLine(lines[i])
		switch name {
		case diaguardFood:
			if len(values) > 0 {
				carbs, err := strconv.ParseFloat(values[len(values)-1], 64)
				if err != nil {
					return nil, errors.NewRowError(i+1, fmt.Sprintf("invalid food carb ratio %q", values[len(values)-1]), err)
				}
				foods[strings.ToLower(values[0])] = carbs
			}
			i++
		case diaguardEntry:
			if len(values) == 0 {
				return nil, errors.NewRowError(i+1, "entry has no date", nil)
			}
			obs, next, err := p.parseBackupEntry(lines, i+1, values[0], foods)
			if err != nil {
				return nil, err
			}
			observations = append(observations, obs)
			i = next
		default:
			i++
		}
	}

	p.logger.InfoContext(ctx, "parsed diaguard backup",
		slog.Int("food_count", len(foods)),
		slog.Int("observation_count", len(observations)))

	return observations, nil
}

// parseBackupEntry consumes the detail lines following an "entry" line and
// returns the observation plus the index of the first unconsumed line.
func (p *Parser) parseBackupEntry(lines []string, start int, rawDate string, foods map[string]float64) (domain.Observation, int, error) {
	var obs domain.Observation

	ts, err := parseDiaguardTime(rawDate)
	if err != nil {
		return obs, 0, errors.NewRowError(start, fmt.Sprintf("invalid entry date %q", rawDate), err)
	}
	obs.Timestamp = ts

	var carbs float64
	var hasCarbs bool

	i := start
	for ; i < len(lines); i++ {
		field, values := splitBackupLine(lines[i])
		switch field {
		case diaguardMeasure:
			if len(values) < 2 {
				continue
			}
			switch values[0] {
			case "bloodsugar":
				v, err := strconv.ParseFloat(values[1], 64)
				if err != nil {
					return obs, 0, errors.NewRowError(i+1, fmt.Sprintf("invalid bloodsugar value %q", values[1]), err)
				}
				obs.Glucose = &v
			case "insulin":
				if len(values) < 4 {
					return obs, 0, errors.NewRowError(i+1, "insulin measurement needs bolus, correction and basal values", nil)
				}
				doses := make([]float64, 3)
				for j := 0; j < 3; j++ {
					doses[j], err = strconv.ParseFloat(values[j+1], 64)
					if err != nil {
						return obs, 0, errors.NewRowError(i+1, fmt.Sprintf("invalid insulin value %q", values[j+1]), err)
					}
				}
				fast := doses[0] + doses[1]
				obs.FastInsulin = &fast
				obs.BasalInsulin = &doses[2]
			case "meal":
				v, err := strconv.ParseFloat(values[1], 64)
				if err != nil {
					return obs, 0, errors.NewRowError(i+1, fmt.Sprintf("invalid meal value %q", values[1]), err)
				}
				carbs += v
				hasCarbs = true
			}
		case diaguardFoodEaten:
			if len(values) < 2 {
				continue
			}
			food := strings.ToLower(values[0])
			ratio, ok := foods[food]
			if !ok {
				return obs, 0, errors.NewRowError(i+1, fmt.Sprintf("unknown food %q", values[0]), nil)
			}
			weight, err := strconv.ParseFloat(values[1], 64)
			if err != nil {
				return obs, 0, errors.NewRowError(i+1, fmt.Sprintf("invalid food weight %q", values[1]), err)
			}
			carbs += weight * ratio / 100
			hasCarbs = true
		case diaguardEntryTag:
			// tags carry no report data
		default:
			// next top-level record
			if hasCarbs {
				obs.Carbs = &carbs
			}
			return obs, i, nil
		}
	}

	if hasCarbs {
		obs.Carbs = &carbs
	}
	return obs, i, nil
}

// splitBackupLine splits a backup line on semicolons and strips the
// surrounding double quotes from each field.
func splitBackupLine(line string) (string, []string) {
	fields := strings.Split(line, ";")
	for i, f := range fields {
		fields[i] = strings.TrimSuffix(strings.TrimPrefix(f, `"`), `"`)
	}
	return fields[0], fields[1:]
}

func parseDiaguardTime(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range diaguardLayouts {
		ts, err := time.Parse(layout, raw)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
