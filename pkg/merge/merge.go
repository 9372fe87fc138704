package merge

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"f1lapdata/pkg/laptime"
	"f1lapdata/pkg/model"
)

// Wide pivots per-session long tables into one wide table keyed by
// (year, track, team, driver, lap number). The output covers the union of
// keys across all inputs: a lap present in only one session still appears,
// with the other session columns left as NaN. Position is carried from the
// race input only. A duplicate key within one input is a contract
// violation and is rejected rather than resolved by arbitrary pick.
func Wide(tables map[model.SessionType][]model.LapRecord) ([]model.WideLapRow, error) {
	byKey := map[model.WideKey]*model.WideLapRow{}
	order := []model.WideKey{}

	for _, session := range model.SessionOrder {
		seen := map[model.WideKey]bool{}
		for _, lap := range tables[session] {
			key := lap.WideKey()
			if seen[key] {
				return nil, errors.Errorf("duplicate key in %s input: %d %s %s %s lap %d",
					session, key.Year, key.Track, key.Team, key.Driver, key.LapNumber)
			}
			seen[key] = true

			row, ok := byKey[key]
			if !ok {
				row = &model.WideLapRow{
					Year:             key.Year,
					Track:            key.Track,
					Team:             key.Team,
					Driver:           key.Driver,
					LapNumber:        key.LapNumber,
					FP1Time:          math.NaN(),
					FP2Time:          math.NaN(),
					FP3Time:          math.NaN(),
					RaceTime:         math.NaN(),
					TrackTemperature: math.NaN(),
				}
				byKey[key] = row
				order = append(order, key)
			}

			row.SetSessionTime(session, lap.LapTime)
			if session.IsRace() {
				row.Position = lap.Position
			}
			// weather comes from the first session that has it; the fixed
			// session order keeps this deterministic
			if laptime.IsMissing(row.TrackTemperature) && !laptime.IsMissing(lap.TrackTemperature) {
				row.TrackTemperature = lap.TrackTemperature
			}
			if row.Rainfall == nil && lap.Rainfall != nil {
				row.Rainfall = lap.Rainfall
			}
		}
	}

	rows := make([]model.WideLapRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, *byKey[key])
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Track != b.Track {
			return a.Track < b.Track
		}
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		if a.Driver != b.Driver {
			return a.Driver < b.Driver
		}
		return a.LapNumber < b.LapNumber
	})
	return rows, nil
}

// SplitBySession splits a long table into per-session tables, ready for
// Wide.
func SplitBySession(laps []model.LapRecord) map[model.SessionType][]model.LapRecord {
	tables := map[model.SessionType][]model.LapRecord{}
	for _, lap := range laps {
		tables[lap.Session] = append(tables[lap.Session], lap)
	}
	return tables
}
