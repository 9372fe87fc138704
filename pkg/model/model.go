package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	FP1  SessionType = "FP1"
	FP2  SessionType = "FP2"
	FP3  SessionType = "FP3"
	Race SessionType = "Race"
)

type SessionType string

// SessionOrder is the fixed order in which session columns appear in the
// wide table and in which per-session inputs are merged.
var SessionOrder = []SessionType{FP1, FP2, FP3, Race}

func PracticeSessions() []SessionType {
	return []SessionType{FP1, FP2, FP3}
}

func RaceSessions() []SessionType {
	return []SessionType{Race}
}

func (s SessionType) IsRace() bool {
	return s == Race
}

// LapRecord is one driver's timing for one lap of one session, tagged with
// its provenance. LapTime and TrackTemperature use NaN for missing values;
// Position uses 0 (positions are 1-based and only set for race sessions).
type LapRecord struct {
	Year             int         `json:"year"`
	Track            string      `json:"track"`
	Session          SessionType `json:"session"`
	Team             string      `json:"team"`
	Driver           string      `json:"driver"`
	LapNumber        int         `json:"lapNumber"`
	LapTime          float64     `json:"lapTime"`
	Position         int         `json:"position,omitempty"`
	TrackTemperature float64     `json:"trackTemperature"`
	Rainfall         *bool       `json:"rainfall,omitempty"`
}

// LapKey is the identity key of a LapRecord within one collection run.
type LapKey struct {
	Year      int
	Track     string
	Session   SessionType
	Driver    string
	LapNumber int
}

func (r LapRecord) Key() LapKey {
	return LapKey{
		Year:      r.Year,
		Track:     r.Track,
		Session:   r.Session,
		Driver:    r.Driver,
		LapNumber: r.LapNumber,
	}
}

// WideKey is the merge key shared by all per-session tables.
type WideKey struct {
	Year      int
	Track     string
	Team      string
	Driver    string
	LapNumber int
}

func (r LapRecord) WideKey() WideKey {
	return WideKey{
		Year:      r.Year,
		Track:     r.Track,
		Team:      r.Team,
		Driver:    r.Driver,
		LapNumber: r.LapNumber,
	}
}

// WideLapRow is one row of the merged table: one lap-time column per
// session type. Missing session times are NaN, never dropped.
type WideLapRow struct {
	Year             int
	Track            string
	Team             string
	Driver           string
	LapNumber        int
	FP1Time          float64
	FP2Time          float64
	FP3Time          float64
	RaceTime         float64
	Position         int
	TrackTemperature float64
	Rainfall         *bool
}

func (w WideLapRow) Key() WideKey {
	return WideKey{
		Year:      w.Year,
		Track:     w.Track,
		Team:      w.Team,
		Driver:    w.Driver,
		LapNumber: w.LapNumber,
	}
}

func (w WideLapRow) SessionTime(s SessionType) float64 {
	switch s {
	case FP1:
		return w.FP1Time
	case FP2:
		return w.FP2Time
	case FP3:
		return w.FP3Time
	default:
		return w.RaceTime
	}
}

func (w *WideLapRow) SetSessionTime(s SessionType, seconds float64) {
	switch s {
	case FP1:
		w.FP1Time = seconds
	case FP2:
		w.FP2Time = seconds
	case FP3:
		w.FP3Time = seconds
	default:
		w.RaceTime = seconds
	}
}

// AggregatedRow is one reduced row per (year, track, team, driver) group.
// The *Stat fields are seconds, rounded to millisecond precision.
type AggregatedRow struct {
	Year     int
	Track    string
	Team     string
	Driver   string
	FP1Stat  float64
	FP2Stat  float64
	FP3Stat  float64
	RaceStat float64
	Position int
}

func (a AggregatedRow) SessionStat(s SessionType) float64 {
	switch s {
	case FP1:
		return a.FP1Stat
	case FP2:
		return a.FP2Stat
	case FP3:
		return a.FP3Stat
	default:
		return a.RaceStat
	}
}

func (a *AggregatedRow) SetSessionStat(s SessionType, seconds float64) {
	switch s {
	case FP1:
		a.FP1Stat = seconds
	case FP2:
		a.FP2Stat = seconds
	case FP3:
		a.FP3Stat = seconds
	default:
		a.RaceStat = seconds
	}
}

// SkipEntry records one skipped fetch with its causing message.
type SkipEntry struct {
	Year    int         `json:"year"`
	Event   string      `json:"event"`
	Session SessionType `json:"session"`
	Reason  string      `json:"reason"`
}

func (e SkipEntry) String() string {
	return fmt.Sprintf("%d %s %s: %s", e.Year, e.Event, e.Session, e.Reason)
}

// RunResult is the accounting of one collection run. It is returned by the
// collector and published when the run finishes; there is no module-level
// success/failure state.
type RunResult struct {
	Years            []int         `json:"years"`
	Sessions         []SessionType `json:"sessions"`
	SuccessfulEvents []string      `json:"successfulEvents"`
	FailedEvents     []string      `json:"failedEvents"`
	Skipped          []SkipEntry   `json:"skipped,omitempty"`
	LapCount         int           `json:"lapCount"`
	StartedAt        time.Time     `json:"startedAt"`
	FinishedAt       time.Time     `json:"finishedAt"`
}

func (r RunResult) String() string {
	lines := []string{
		fmt.Sprintf("  ▸ Laps collected: %d", r.LapCount),
		fmt.Sprintf("  ▸ Successful events: %d", len(r.SuccessfulEvents)),
		fmt.Sprintf("  ▸ Failed events: %d", len(r.FailedEvents)),
	}
	if len(r.FailedEvents) > 0 {
		lines = append(lines, "  ▸ Failed: "+strings.Join(r.FailedEvents, ", "))
	}
	if len(r.Skipped) > 0 {
		lines = append(lines, fmt.Sprintf("  ▸ Skipped fetches: %d", len(r.Skipped)))
	}
	lines = append(lines, fmt.Sprintf("  ▸ Duration: %s", r.FinishedAt.Sub(r.StartedAt).Round(time.Second)))
	return strings.Join(lines, "\n")
}
