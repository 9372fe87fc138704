package aggregate

import (
	"math"
	"sort"

	"f1lapdata/pkg/laptime"
	"f1lapdata/pkg/model"
)

const (
	Mean   Stat = "mean"
	Median Stat = "median"
)

type Stat string

type groupKey struct {
	Year   int
	Track  string
	Team   string
	Driver string
}

type group struct {
	year     int
	track    string
	team     string
	driver   string
	times    map[model.SessionType][]float64
	position int
	posLap   int
}

// Reduce groups wide rows by (year, track, team, driver) and reduces each
// session's lap-time column with the chosen statistic, ignoring missing
// values; an all-missing group reduces to NaN. With byYear false the year
// is dropped from the group key (single-year view) and the first observed
// year is reported. Position comes from the lowest-numbered lap that
// carries one, so the result does not depend on input order. Reduced
// durations are rounded to millisecond precision.
func Reduce(rows []model.WideLapRow, stat Stat, byYear bool) []model.AggregatedRow {
	groups := map[groupKey]*group{}
	order := []groupKey{}

	for _, row := range rows {
		key := groupKey{Track: row.Track, Team: row.Team, Driver: row.Driver}
		if byYear {
			key.Year = row.Year
		}

		g, ok := groups[key]
		if !ok {
			g = &group{
				year:   row.Year,
				track:  row.Track,
				team:   row.Team,
				driver: row.Driver,
				times:  map[model.SessionType][]float64{},
			}
			groups[key] = g
			order = append(order, key)
		}

		for _, session := range model.SessionOrder {
			if t := row.SessionTime(session); !laptime.IsMissing(t) {
				g.times[session] = append(g.times[session], t)
			}
		}
		if row.Position > 0 && (g.position == 0 || row.LapNumber < g.posLap) {
			g.position = row.Position
			g.posLap = row.LapNumber
		}
	}

	out := make([]model.AggregatedRow, 0, len(order))
	for _, key := range order {
		g := groups[key]
		row := model.AggregatedRow{
			Year:     g.year,
			Track:    g.track,
			Team:     g.team,
			Driver:   g.driver,
			Position: g.position,
		}
		for _, session := range model.SessionOrder {
			row.SetSessionStat(session, laptime.Round3(reduce(g.times[session], stat)))
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Track != b.Track {
			return a.Track < b.Track
		}
		if a.Team != b.Team {
			return a.Team < b.Team
		}
		return a.Driver < b.Driver
	})
	return out
}

func reduce(values []float64, stat Stat) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	if stat == Median {
		return median(values)
	}
	return mean(values)
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
