package telemetry

// ScheduleEvent is one entry of a season schedule as served by the timing
// API. Testing events are never included.
type ScheduleEvent struct {
	Round    int    `json:"round"`
	Name     string `json:"name"`
	Country  string `json:"country"`
	Location string `json:"location"`
}

type scheduleResponse struct {
	Year   int             `json:"year"`
	Events []ScheduleEvent `json:"events"`
}

type lapRow struct {
	Driver    string  `json:"driver"`
	Team      string  `json:"team"`
	LapNumber int     `json:"lapNumber"`
	LapTime   string  `json:"lapTime"`
	StartTime float64 `json:"startTime"`
}

type lapsResponse struct {
	Laps []lapRow `json:"laps"`
}

type weatherSample struct {
	Time             float64 `json:"time"`
	TrackTemperature float64 `json:"trackTemp"`
	Rainfall         bool    `json:"rainfall"`
}

type weatherResponse struct {
	Samples []weatherSample `json:"samples"`
}

type resultRow struct {
	Driver   string `json:"driver"`
	Position int    `json:"position"`
}

type resultsResponse struct {
	Results []resultRow `json:"results"`
}
