package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"sort"

	"github.com/pkg/errors"

	"f1lapdata/pkg/laptime"
	"f1lapdata/pkg/model"
)

// Manager is the client for the timing API. It is an opaque collaborator
// from the pipeline's point of view: callers ask for laps by
// (year, event, session type) and get back tagged LapRecords; response
// caching is this package's own concern.
type Manager struct {
	ctx       context.Context
	apiDomain string
	cache     *Cache
}

func NewManager(ctx context.Context, domain, cacheDir string) (*Manager, error) {
	cache, err := NewCache(cacheDir)
	if err != nil {
		return nil, err
	}

	return &Manager{
		ctx:       ctx,
		apiDomain: domain,
		cache:     cache,
	}, nil
}

func (m *Manager) Close() error {
	return m.cache.Close()
}

// GetSchedule returns the season schedule for a year.
func (m *Manager) GetSchedule(year int) ([]ScheduleEvent, error) {
	body, err := m.fetch(fmt.Sprintf("%s/v1/schedule?year=%d", m.apiDomain, year))
	if err != nil {
		return nil, err
	}

	var schedule scheduleResponse
	if err := json.Unmarshal(body, &schedule); err != nil {
		return nil, errors.Wrapf(err, "decoding schedule for %d", year)
	}
	return schedule.Events, nil
}

// GetSessionLaps returns one LapRecord per (driver, lap) of a session,
// tagged with year, track and session type. Weather samples are joined by
// the latest sample at or before each lap's start; race laps additionally
// carry the driver's finishing position.
func (m *Manager) GetSessionLaps(year int, event string, session model.SessionType) ([]model.LapRecord, error) {
	body, err := m.fetch(m.sessionURL("laps", year, event, session))
	if err != nil {
		return nil, err
	}

	var laps lapsResponse
	if err := json.Unmarshal(body, &laps); err != nil {
		return nil, errors.Wrapf(err, "decoding laps for %d %s %s", year, event, session)
	}
	if len(laps.Laps) == 0 {
		return nil, nil
	}

	samples, err := m.getWeather(year, event, session)
	if err != nil {
		// weather is optional upstream; laps without it are still laps
		log.Printf("No weather data for %d %s %s: %s\n", year, event, session, err)
		samples = nil
	}

	positions := map[string]int{}
	if session.IsRace() {
		positions, err = m.getResults(year, event)
		if err != nil {
			log.Printf("No results for %d %s: %s\n", year, event, err)
			positions = map[string]int{}
		}
	}

	records := make([]model.LapRecord, 0, len(laps.Laps))
	for _, lap := range laps.Laps {
		record := model.LapRecord{
			Year:             year,
			Track:            event,
			Session:          session,
			Team:             lap.Team,
			Driver:           lap.Driver,
			LapNumber:        lap.LapNumber,
			LapTime:          laptime.Parse(lap.LapTime),
			Position:         positions[lap.Driver],
			TrackTemperature: math.NaN(),
		}
		if sample, ok := sampleAtOrBefore(samples, lap.StartTime); ok {
			rainfall := sample.Rainfall
			record.TrackTemperature = sample.TrackTemperature
			record.Rainfall = &rainfall
		}
		records = append(records, record)
	}
	return records, nil
}

func (m *Manager) getWeather(year int, event string, session model.SessionType) ([]weatherSample, error) {
	body, err := m.fetch(m.sessionURL("weather", year, event, session))
	if err != nil {
		return nil, err
	}

	var weather weatherResponse
	if err := json.Unmarshal(body, &weather); err != nil {
		return nil, errors.Wrap(err, "decoding weather")
	}
	sort.Slice(weather.Samples, func(i, j int) bool {
		return weather.Samples[i].Time < weather.Samples[j].Time
	})
	return weather.Samples, nil
}

func (m *Manager) getResults(year int, event string) (map[string]int, error) {
	body, err := m.fetch(fmt.Sprintf("%s/v1/results?year=%d&event=%s", m.apiDomain, year, url.QueryEscape(event)))
	if err != nil {
		return nil, err
	}

	var results resultsResponse
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, errors.Wrap(err, "decoding results")
	}

	positions := make(map[string]int, len(results.Results))
	for _, result := range results.Results {
		positions[result.Driver] = result.Position
	}
	return positions, nil
}

func (m *Manager) sessionURL(endpoint string, year int, event string, session model.SessionType) string {
	return fmt.Sprintf("%s/v1/%s?year=%d&event=%s&session=%s",
		m.apiDomain, endpoint, year, url.QueryEscape(event), url.QueryEscape(string(session)))
}

// fetch returns the body for a URL, serving from the response cache when
// possible and caching fresh responses on the way out.
func (m *Manager) fetch(fetchURL string) ([]byte, error) {
	body, found, err := m.cache.Get(fetchURL)
	if err != nil {
		log.Printf("Error reading cache for %s: %s\n", fetchURL, err)
	}
	if found {
		return body, nil
	}

	req, err := http.NewRequestWithContext(m.ctx, "GET", fetchURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s", fetchURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetching %s: %s", fetchURL, resp.Status)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", fetchURL)
	}

	if err := m.cache.Put(fetchURL, body); err != nil {
		log.Printf("Error caching %s: %s\n", fetchURL, err)
	}
	return body, nil
}

func sampleAtOrBefore(samples []weatherSample, t float64) (weatherSample, bool) {
	found := weatherSample{}
	ok := false
	for _, sample := range samples {
		if sample.Time > t {
			break
		}
		found = sample
		ok = true
	}
	return found, ok
}
