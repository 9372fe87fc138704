package collector

import (
	"context"
	"testing"

	"f1lapdata/pkg/calendar"
	"f1lapdata/pkg/caster"
	"f1lapdata/pkg/model"
	"f1lapdata/pkg/pubsub"
	"f1lapdata/pkg/telemetry"

	"github.com/pkg/errors"
)

type fetchCall struct {
	Year    int
	Event   string
	Session model.SessionType
}

type fakeFetcher struct {
	schedules map[int][]telemetry.ScheduleEvent
	laps      map[fetchCall][]model.LapRecord
	failures  map[fetchCall]error
	calls     []fetchCall
}

func (f *fakeFetcher) GetSchedule(year int) ([]telemetry.ScheduleEvent, error) {
	events, ok := f.schedules[year]
	if !ok {
		return nil, errors.Errorf("no schedule for %d", year)
	}
	return events, nil
}

func (f *fakeFetcher) GetSessionLaps(year int, event string, session model.SessionType) ([]model.LapRecord, error) {
	call := fetchCall{Year: year, Event: event, Session: session}
	f.calls = append(f.calls, call)
	if err, ok := f.failures[call]; ok {
		return nil, err
	}
	return f.laps[call], nil
}

func schedule(names ...string) []telemetry.ScheduleEvent {
	events := make([]telemetry.ScheduleEvent, len(names))
	for i, name := range names {
		events[i] = telemetry.ScheduleEvent{Round: i + 1, Name: name}
	}
	return events
}

func someLaps(year int, event string, session model.SessionType, n int) []model.LapRecord {
	laps := make([]model.LapRecord, n)
	for i := range laps {
		laps[i] = model.LapRecord{
			Year: year, Track: event, Session: session,
			Team: "Ferrari", Driver: "LEC", LapNumber: i + 1, LapTime: 81.0,
		}
	}
	return laps
}

func newTestManager(fetcher Fetcher, cal calendar.Calendar) *Manager {
	return NewManager(context.Background(), fetcher, cal, 0, nil)
}

func TestCollect_AllowListSkips(t *testing.T) {
	fetcher := &fakeFetcher{
		schedules: map[int][]telemetry.ScheduleEvent{
			2024: schedule("Bahrain Grand Prix", "Pre-Season Testing"),
		},
		laps: map[fetchCall][]model.LapRecord{
			{2024, "Bahrain Grand Prix", model.Race}: someLaps(2024, "Bahrain Grand Prix", model.Race, 3),
		},
	}
	cal := calendar.Calendar{2024: {"Bahrain Grand Prix"}}

	laps, result := newTestManager(fetcher, cal).Collect([]int{2024}, model.RaceSessions())

	if len(laps) != 3 {
		t.Errorf("collected %d laps, want 3", len(laps))
	}
	for _, call := range fetcher.calls {
		if call.Event == "Pre-Season Testing" {
			t.Error("event outside the allow-list was fetched")
		}
	}
	if len(result.SuccessfulEvents) != 1 {
		t.Errorf("successful events = %v, want one entry", result.SuccessfulEvents)
	}
	if len(result.Skipped) != 0 {
		t.Errorf("allow-list skip ended up in the skip log: %v", result.Skipped)
	}
}

func TestCollect_FetchFailureIsRecordedNotFatal(t *testing.T) {
	fetcher := &fakeFetcher{
		schedules: map[int][]telemetry.ScheduleEvent{
			2024: schedule("Bahrain Grand Prix", "Italian Grand Prix"),
		},
		laps: map[fetchCall][]model.LapRecord{
			{2024, "Italian Grand Prix", model.Race}: someLaps(2024, "Italian Grand Prix", model.Race, 2),
		},
		failures: map[fetchCall]error{
			{2024, "Bahrain Grand Prix", model.Race}: errors.New("boom"),
		},
	}
	cal := calendar.Calendar{2024: {"Bahrain Grand Prix", "Italian Grand Prix"}}

	laps, result := newTestManager(fetcher, cal).Collect([]int{2024}, model.RaceSessions())

	if len(laps) != 2 {
		t.Errorf("collected %d laps, want 2 from the surviving event", len(laps))
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Reason != "boom" {
		t.Errorf("skip log = %v, want one entry with the causing message", result.Skipped)
	}
	if len(result.FailedEvents) != 1 {
		t.Errorf("failed events = %v, want one entry", result.FailedEvents)
	}
	if len(result.SuccessfulEvents) != 1 {
		t.Errorf("successful events = %v, want one entry", result.SuccessfulEvents)
	}
}

func TestCollect_CircuitBreakerAbortsYear(t *testing.T) {
	events := []string{"A Grand Prix", "B Grand Prix", "C Grand Prix", "D Grand Prix"}
	failures := map[fetchCall]error{}
	for _, event := range events[:3] {
		failures[fetchCall{2024, event, model.Race}] = errors.New("down")
	}
	fetcher := &fakeFetcher{
		schedules: map[int][]telemetry.ScheduleEvent{2024: schedule(events...)},
		laps: map[fetchCall][]model.LapRecord{
			{2024, "D Grand Prix", model.Race}: someLaps(2024, "D Grand Prix", model.Race, 1),
		},
		failures: failures,
	}
	cal := calendar.Calendar{2024: events}

	laps, result := newTestManager(fetcher, cal).Collect([]int{2024}, model.RaceSessions())

	if len(laps) != 0 {
		t.Errorf("collected %d laps, want 0: the year should abort before D", len(laps))
	}
	for _, call := range fetcher.calls {
		if call.Event == "D Grand Prix" {
			t.Error("event after the circuit breaker tripped was fetched")
		}
	}
	if len(result.FailedEvents) != 3 {
		t.Errorf("failed events = %v, want 3", result.FailedEvents)
	}
}

func TestCollect_BreakerResetsOnSuccess(t *testing.T) {
	events := []string{"A Grand Prix", "B Grand Prix", "C Grand Prix", "D Grand Prix", "E Grand Prix"}
	fetcher := &fakeFetcher{
		schedules: map[int][]telemetry.ScheduleEvent{2024: schedule(events...)},
		laps: map[fetchCall][]model.LapRecord{
			{2024, "C Grand Prix", model.Race}: someLaps(2024, "C Grand Prix", model.Race, 1),
			{2024, "E Grand Prix", model.Race}: someLaps(2024, "E Grand Prix", model.Race, 1),
		},
		failures: map[fetchCall]error{
			{2024, "A Grand Prix", model.Race}: errors.New("down"),
			{2024, "B Grand Prix", model.Race}: errors.New("down"),
			{2024, "D Grand Prix", model.Race}: errors.New("down"),
		},
	}
	cal := calendar.Calendar{2024: events}

	laps, _ := newTestManager(fetcher, cal).Collect([]int{2024}, model.RaceSessions())

	if len(laps) != 2 {
		t.Errorf("collected %d laps, want 2: two failures then a success must not trip the breaker", len(laps))
	}
}

func TestCollect_EmptySessionIsSoftSkip(t *testing.T) {
	fetcher := &fakeFetcher{
		schedules: map[int][]telemetry.ScheduleEvent{
			2024: schedule("Bahrain Grand Prix"),
		},
	}
	cal := calendar.Calendar{2024: {"Bahrain Grand Prix"}}

	laps, result := newTestManager(fetcher, cal).Collect([]int{2024}, model.RaceSessions())

	if len(laps) != 0 {
		t.Errorf("collected %d laps, want 0", len(laps))
	}
	if len(result.Skipped) != 0 {
		t.Errorf("empty result set ended up in the skip log: %v", result.Skipped)
	}
	if len(result.FailedEvents) != 1 {
		t.Errorf("failed events = %v, want the empty event counted as failed", result.FailedEvents)
	}
}

func TestCollect_MissingScheduleSkipsYear(t *testing.T) {
	fetcher := &fakeFetcher{
		schedules: map[int][]telemetry.ScheduleEvent{
			2024: schedule("Bahrain Grand Prix"),
		},
		laps: map[fetchCall][]model.LapRecord{
			{2024, "Bahrain Grand Prix", model.Race}: someLaps(2024, "Bahrain Grand Prix", model.Race, 1),
		},
	}
	cal := calendar.Calendar{
		2023: {"Bahrain Grand Prix"},
		2024: {"Bahrain Grand Prix"},
	}

	laps, result := newTestManager(fetcher, cal).Collect([]int{2023, 2024}, model.RaceSessions())

	if len(laps) != 1 {
		t.Errorf("collected %d laps, want 1 from the year that has a schedule", len(laps))
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Year != 2023 {
		t.Errorf("skip log = %v, want one entry for 2023", result.Skipped)
	}
}

func TestCollect_PublishesRunResult(t *testing.T) {
	fetcher := &fakeFetcher{
		schedules: map[int][]telemetry.ScheduleEvent{
			2024: schedule("Bahrain Grand Prix"),
		},
		laps: map[fetchCall][]model.LapRecord{
			{2024, "Bahrain Grand Prix", model.Race}: someLaps(2024, "Bahrain Grand Prix", model.Race, 2),
		},
	}
	cal := calendar.Calendar{2024: {"Bahrain Grand Prix"}}

	pubsubMgr := pubsub.NewPubSub[string]()
	finishedChan := pubsubMgr.Subscribe(PubSubRunFinishedTopic)
	cm := NewManager(context.Background(), fetcher, cal, 0, pubsubMgr)

	go cm.Collect([]int{2024}, model.RaceSessions())

	payload := <-finishedChan
	result, err := caster.JSONChannelCaster[model.RunResult]{}.From(payload)
	if err != nil {
		t.Fatalf("decoding published run result: %v", err)
	}
	if result.LapCount != 2 {
		t.Errorf("published LapCount = %d, want 2", result.LapCount)
	}
}
