package calendar

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Calendar holds the per-season event allow-lists. Events not listed for a
// year are skipped during collection. The data is configuration, not logic:
// season updates come from a JSON file, not a code change.
type Calendar map[int][]string

// Load reads a calendar from a JSON file of the form
// {"2024": ["Bahrain Grand Prix", ...], ...}.
func Load(path string) (Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading calendar file %s", path)
	}
	var c Calendar
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "parsing calendar file %s", path)
	}
	return c, nil
}

// Allowed reports whether an event is in the year's allow-list.
func (c Calendar) Allowed(year int, event string) bool {
	for _, name := range c[year] {
		if name == event {
			return true
		}
	}
	return false
}

func (c Calendar) Events(year int) []string {
	return c[year]
}

// Default returns the built-in 2020-2024 season calendars.
func Default() Calendar {
	return Calendar{
		2020: {
			"Austrian Grand Prix",
			"Styrian Grand Prix",
			"Hungarian Grand Prix",
			"British Grand Prix",
			"70th Anniversary Grand Prix",
			"Spanish Grand Prix",
			"Belgian Grand Prix",
			"Italian Grand Prix",
			"Tuscan Grand Prix",
			"Russian Grand Prix",
			"Eifel Grand Prix",
			"Portuguese Grand Prix",
			"Emilia Romagna Grand Prix",
			"Turkish Grand Prix",
			"Bahrain Grand Prix",
			"Sakhir Grand Prix",
			"Abu Dhabi Grand Prix",
		},
		2021: {
			"Bahrain Grand Prix",
			"Emilia Romagna Grand Prix",
			"Portuguese Grand Prix",
			"Spanish Grand Prix",
			"Monaco Grand Prix",
			"Azerbaijan Grand Prix",
			"French Grand Prix",
			"Styrian Grand Prix",
			"Austrian Grand Prix",
			"British Grand Prix",
			"Hungarian Grand Prix",
			"Belgian Grand Prix",
			"Dutch Grand Prix",
			"Italian Grand Prix",
			"Russian Grand Prix",
			"Turkish Grand Prix",
			"United States Grand Prix",
			"Mexico City Grand Prix",
			"São Paulo Grand Prix",
			"Qatar Grand Prix",
			"Saudi Arabian Grand Prix",
			"Abu Dhabi Grand Prix",
		},
		2022: {
			"Bahrain Grand Prix",
			"Saudi Arabian Grand Prix",
			"Australian Grand Prix",
			"Emilia Romagna Grand Prix",
			"Miami Grand Prix",
			"Spanish Grand Prix",
			"Monaco Grand Prix",
			"Azerbaijan Grand Prix",
			"Canadian Grand Prix",
			"British Grand Prix",
			"Austrian Grand Prix",
			"French Grand Prix",
			"Hungarian Grand Prix",
			"Belgian Grand Prix",
			"Dutch Grand Prix",
			"Italian Grand Prix",
			"Singapore Grand Prix",
			"Japanese Grand Prix",
			"United States Grand Prix",
			"Mexico City Grand Prix",
			"São Paulo Grand Prix",
			"Abu Dhabi Grand Prix",
		},
		2023: {
			"Bahrain Grand Prix",
			"Saudi Arabian Grand Prix",
			"Australian Grand Prix",
			"Azerbaijan Grand Prix",
			"Miami Grand Prix",
			"Monaco Grand Prix",
			"Spanish Grand Prix",
			"Canadian Grand Prix",
			"Austrian Grand Prix",
			"British Grand Prix",
			"Hungarian Grand Prix",
			"Belgian Grand Prix",
			"Dutch Grand Prix",
			"Italian Grand Prix",
			"Singapore Grand Prix",
			"Japanese Grand Prix",
			"Qatar Grand Prix",
			"United States Grand Prix",
			"Mexico City Grand Prix",
			"São Paulo Grand Prix",
			"Las Vegas Grand Prix",
			"Abu Dhabi Grand Prix",
		},
		2024: {
			"Bahrain Grand Prix",
			"Saudi Arabian Grand Prix",
			"Australian Grand Prix",
			"Japanese Grand Prix",
			"Chinese Grand Prix",
			"Miami Grand Prix",
			"Emilia Romagna Grand Prix",
			"Monaco Grand Prix",
			"Canadian Grand Prix",
			"Spanish Grand Prix",
			"Austrian Grand Prix",
			"British Grand Prix",
			"Hungarian Grand Prix",
			"Belgian Grand Prix",
			"Dutch Grand Prix",
			"Italian Grand Prix",
			"Azerbaijan Grand Prix",
			"Singapore Grand Prix",
			"United States Grand Prix",
			"Mexico City Grand Prix",
			"São Paulo Grand Prix",
			"Las Vegas Grand Prix",
			"Qatar Grand Prix",
			"Abu Dhabi Grand Prix",
		},
	}
}
