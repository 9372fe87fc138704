package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"f1lapdata/pkg/calendar"
	"f1lapdata/pkg/caster"
	"f1lapdata/pkg/model"
	"f1lapdata/pkg/pubsub"
	"f1lapdata/pkg/queues"
	"f1lapdata/pkg/telemetry"
)

const (
	PubSubRunFinishedTopic = "collection-run-finished"

	// after this many events in a row with no usable session, the rest of
	// the year is abandoned
	maxConsecutiveEventFailures = 3
)

// Fetcher is the slice of the telemetry client the collector needs.
type Fetcher interface {
	GetSchedule(year int) ([]telemetry.ScheduleEvent, error)
	GetSessionLaps(year int, event string, session model.SessionType) ([]model.LapRecord, error)
}

// Manager walks the configured (year, event, session) triples strictly
// sequentially, with a fixed courtesy delay after every fetch. All run
// accounting lives in the returned RunResult.
type Manager struct {
	ctx          context.Context
	fetcher      Fetcher
	cal          calendar.Calendar
	delay        time.Duration
	pubsubMgr    *pubsub.PubSub[string]
	resultCaster caster.ChannelCaster[model.RunResult]
}

func NewManager(ctx context.Context, fetcher Fetcher, cal calendar.Calendar, delay time.Duration, pubsubMgr *pubsub.PubSub[string]) *Manager {
	return &Manager{
		ctx:          ctx,
		fetcher:      fetcher,
		cal:          cal,
		delay:        delay,
		pubsubMgr:    pubsubMgr,
		resultCaster: caster.JSONChannelCaster[model.RunResult]{},
	}
}

// Collect fetches every allowed (year, event, session) triple and returns
// the collected laps together with the run's accounting. Fetch failures are
// recorded and skipped, never fatal.
func (cm *Manager) Collect(years []int, sessions []model.SessionType) ([]model.LapRecord, model.RunResult) {
	result := model.RunResult{
		Years:            years,
		Sessions:         sessions,
		SuccessfulEvents: []string{},
		FailedEvents:     []string{},
		StartedAt:        time.Now(),
	}

	allLaps := []model.LapRecord{}
	for _, year := range years {
		if cm.ctx.Err() != nil {
			break
		}
		allLaps = append(allLaps, cm.collectYear(year, sessions, &result)...)
	}

	result.LapCount = len(allLaps)
	result.FinishedAt = time.Now()
	cm.publishResult(result)
	return allLaps, result
}

func (cm *Manager) collectYear(year int, sessions []model.SessionType, result *model.RunResult) []model.LapRecord {
	schedule, err := cm.fetcher.GetSchedule(year)
	if err != nil {
		log.Printf("⚠️ Skipped year %d: %s\n", year, err)
		result.Skipped = append(result.Skipped, model.SkipEntry{
			Year:   year,
			Reason: err.Error(),
		})
		cm.pause()
		return nil
	}

	q := queues.NewQueue[telemetry.ScheduleEvent]()
	for _, event := range schedule {
		if !cm.cal.Allowed(year, event.Name) {
			fmt.Printf("⚠️ Skipping %s as it's not in the %d race list\n", event.Name, year)
			continue
		}
		q.Push(event)
	}

	laps := []model.LapRecord{}
	consecutiveFailures := 0
	for !q.IsEmpty() {
		if cm.ctx.Err() != nil {
			return laps
		}
		event := q.Pop()
		eventLabel := fmt.Sprintf("%d %s", year, event.Name)

		eventSuccess := false
		for _, session := range sessions {
			records, err := cm.fetcher.GetSessionLaps(year, event.Name, session)
			switch {
			case err != nil:
				log.Printf("⚠️ Skipped %s %s: %s\n", eventLabel, session, err)
				result.Skipped = append(result.Skipped, model.SkipEntry{
					Year:    year,
					Event:   event.Name,
					Session: session,
					Reason:  err.Error(),
				})
			case len(records) == 0:
				fmt.Printf("No laps for %s %s\n", eventLabel, session)
			default:
				laps = append(laps, records...)
				fmt.Printf("✅ Added: %s %s - %d laps\n", eventLabel, session, len(records))
				eventSuccess = true
			}
			cm.pause()
		}

		if eventSuccess {
			result.SuccessfulEvents = append(result.SuccessfulEvents, eventLabel)
			consecutiveFailures = 0
		} else {
			result.FailedEvents = append(result.FailedEvents, eventLabel)
			consecutiveFailures++
			if consecutiveFailures >= maxConsecutiveEventFailures {
				log.Printf("Aborting remaining %d events after %d consecutive failures\n", year, consecutiveFailures)
				break
			}
		}
	}
	return laps
}

// pause is the rate-limit courtesy delay between external fetches. It is
// imposed regardless of the fetch outcome.
func (cm *Manager) pause() {
	if cm.delay <= 0 {
		return
	}
	select {
	case <-cm.ctx.Done():
	case <-time.After(cm.delay):
	}
}

func (cm *Manager) publishResult(result model.RunResult) {
	if cm.pubsubMgr == nil {
		return
	}
	payload, err := cm.resultCaster.To(result)
	if err != nil {
		log.Printf("Error casting run result to json: %s", err.Error())
		return
	}
	cm.pubsubMgr.Publish(PubSubRunFinishedTopic, payload)
}
