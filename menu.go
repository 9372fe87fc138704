package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"

	"f1lapdata/pkg/aggregate"
	"f1lapdata/pkg/collector"
	"f1lapdata/pkg/laptime"
	"f1lapdata/pkg/lapstore"
	"f1lapdata/pkg/livetiming"
	"f1lapdata/pkg/merge"
	"f1lapdata/pkg/model"
	"f1lapdata/pkg/pubsub"
	"f1lapdata/pkg/teams"
)

const previewRows = 10

// Menu drives the interactive numbered prompts on standard input. There is
// no flag or non-interactive mode.
type Menu struct {
	ctx          context.Context
	lines        chan string
	collectorMgr *collector.Manager
	store        *lapstore.Store
	recorder     *livetiming.Recorder
	pubsubMgr    *pubsub.PubSub[string]
}

func NewMenu(ctx context.Context, collectorMgr *collector.Manager, store *lapstore.Store, recorder *livetiming.Recorder, pubsubMgr *pubsub.PubSub[string]) *Menu {
	return newMenu(ctx, os.Stdin, collectorMgr, store, recorder, pubsubMgr)
}

func newMenu(ctx context.Context, input io.Reader, collectorMgr *collector.Manager, store *lapstore.Store, recorder *livetiming.Recorder, pubsubMgr *pubsub.PubSub[string]) *Menu {
	m := &Menu{
		ctx:          ctx,
		lines:        make(chan string),
		collectorMgr: collectorMgr,
		store:        store,
		recorder:     recorder,
		pubsubMgr:    pubsubMgr,
	}
	go m.readInput(input)
	go m.trackFrames()
	return m
}

// readInput is the sole reader of the interactive input. Everything that
// consumes a line takes it from the channel, so the recording stop prompt
// and the menu never issue competing reads.
func (m *Menu) readInput(input io.Reader) {
	defer close(m.lines)
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		select {
		case m.lines <- strings.TrimSpace(scanner.Text()):
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Menu) Run() error {
	for {
		if m.ctx.Err() != nil {
			return nil
		}

		fmt.Println()
		fmt.Println("=== F1 Lap Data ===")
		fmt.Println(" 1) Collect session data")
		fmt.Println(" 2) Combine collected files into wide table")
		fmt.Println(" 3) Aggregate wide table")
		fmt.Println(" 4) Record live timing")
		fmt.Println(" 0) Exit")

		choice, ok := m.readLine("Choose an option: ")
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			if err := m.handleCollect(); err != nil {
				return err
			}
		case "2":
			m.handleCombine()
		case "3":
			if err := m.handleAggregate(); err != nil {
				return err
			}
		case "4":
			m.handleRecord()
		case "0":
			fmt.Println("Bye")
			return nil
		default:
			fmt.Printf("Unknown option %q\n", choice)
		}
	}
}

func (m *Menu) handleCollect() error {
	sessions, err := m.promptSessions()
	if err != nil {
		return err
	}
	years, err := m.promptYears()
	if err != nil {
		return err
	}

	laps, result := m.collectorMgr.Collect(years, sessions)
	if len(laps) == 0 {
		fmt.Println("\n❌ No lap data was collected.")
	} else {
		file := lapstore.LongFileForSessions(sessions)
		count, err := m.store.AppendLaps(file, laps)
		if err != nil {
			log.Printf("Error saving laps to %s: %s\n", file, err)
		} else {
			fmt.Printf("\n✅ Data saved to %s (%d rows)\n", file, count)
		}
	}

	m.renderRunSummary(result)
	return nil
}

func (m *Menu) handleCombine() {
	practice := m.loadLongTable(lapstore.PracticeLapsFile)
	race := m.loadLongTable(lapstore.RaceLapsFile)
	if len(practice) == 0 && len(race) == 0 {
		fmt.Println("Nothing to combine.")
		return
	}

	all := append(practice, race...)
	// one rename table over every input, or merge keys diverge across eras
	for i := range all {
		all[i].Team = teams.Normalize(all[i].Team)
	}
	all = lapstore.DedupeLaps(all)

	wide, err := merge.Wide(merge.SplitBySession(all))
	if err != nil {
		log.Printf("Error merging lap tables: %s\n", err)
		return
	}

	minYear, maxYear := wideYearRange(wide)
	file := lapstore.WideFile(minYear, maxYear)
	if err := m.store.WriteWide(file, wide); err != nil {
		log.Printf("Error saving %s: %s\n", file, err)
		return
	}
	fmt.Printf("✅ Combined %d lap rows into %s\n", len(wide), file)
}

func (m *Menu) handleAggregate() error {
	files, err := m.store.WideFiles()
	if err != nil {
		log.Printf("Error listing combined files: %s\n", err)
		return nil
	}
	if len(files) == 0 {
		fmt.Println("No combined lap file found. Run the combine step first.")
		return nil
	}

	file := files[0]
	if len(files) > 1 {
		file, err = m.promptFileChoice(files)
		if err != nil {
			return err
		}
	}

	stat, err := m.promptStat()
	if err != nil {
		return err
	}

	rows, err := m.store.LoadWide(file)
	if err != nil {
		if lapstore.IsNotExist(err) {
			fmt.Printf("%s not found.\n", file)
			return nil
		}
		log.Printf("Error loading %s: %s\n", file, err)
		return nil
	}
	if len(rows) == 0 {
		fmt.Printf("%s has no rows to aggregate.\n", file)
		return nil
	}

	aggregated := aggregate.Reduce(rows, stat, true)
	minYear, maxYear := aggregatedYearRange(aggregated)
	outFile := lapstore.SummaryFile(minYear, maxYear)
	if err := m.store.WriteSummary(outFile, aggregated); err != nil {
		log.Printf("Error saving %s: %s\n", outFile, err)
		return nil
	}

	fmt.Printf("✅ Aggregated %d groups (%s) into %s\n", len(aggregated), stat, outFile)
	m.renderAggregatedPreview(aggregated)
	return nil
}

func (m *Menu) handleRecord() {
	fmt.Println("Recording live timing. Press Enter to stop.")

	recCtx, recCancel := context.WithCancel(m.ctx)
	defer recCancel()

	type recordResult struct {
		file string
		err  error
	}
	done := make(chan recordResult, 1)
	go func() {
		file, err := m.recorder.Record(recCtx)
		done <- recordResult{file: file, err: err}
	}()

	// when the stream closes on its own no line is consumed, so the next
	// menu choice is not swallowed
	var res recordResult
	select {
	case <-m.lines:
		recCancel()
		res = <-done
	case res = <-done:
	}

	if res.err != nil {
		log.Printf("Error recording live timing: %s\n", res.err)
		return
	}
	fmt.Printf("✅ Recording saved to %s\n", res.file)
}

// loadLongTable reads one long-form file; a missing file is reported and
// yields a nil table, not an error.
func (m *Menu) loadLongTable(file string) []model.LapRecord {
	laps, err := m.store.LoadLaps(file)
	if err != nil {
		if lapstore.IsNotExist(err) {
			fmt.Printf("%s not found, skipping.\n", file)
		} else {
			log.Printf("Error loading %s: %s\n", file, err)
		}
		return nil
	}
	return laps
}

func (m *Menu) promptSessions() ([]model.SessionType, error) {
	fmt.Println("Which sessions do you want to collect?")
	fmt.Println(" 1) Practice (FP1, FP2, FP3)")
	fmt.Println(" 2) Race")
	choice, ok := m.readLine("Choose an option: ")
	if !ok {
		return nil, errors.New("input closed")
	}
	switch choice {
	case "1":
		return model.PracticeSessions(), nil
	case "2":
		return model.RaceSessions(), nil
	default:
		return nil, errors.Errorf("unknown session choice %q", choice)
	}
}

func (m *Menu) promptYears() ([]int, error) {
	line, ok := m.readLine("Which years? (e.g. \"2021 2022\" or \"2021-2024\"): ")
	if !ok {
		return nil, errors.New("input closed")
	}

	years := []int{}
	for _, field := range strings.Fields(line) {
		if from, to, found := strings.Cut(field, "-"); found {
			start, err := strconv.Atoi(from)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing year range %q", field)
			}
			end, err := strconv.Atoi(to)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing year range %q", field)
			}
			for year := start; year <= end; year++ {
				years = append(years, year)
			}
			continue
		}
		year, err := strconv.Atoi(field)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing year %q", field)
		}
		years = append(years, year)
	}
	if len(years) == 0 {
		return nil, errors.New("no years given")
	}
	return years, nil
}

func (m *Menu) promptStat() (aggregate.Stat, error) {
	fmt.Println("Which statistic?")
	fmt.Println(" 1) Mean")
	fmt.Println(" 2) Median")
	choice, ok := m.readLine("Choose an option [1]: ")
	if !ok {
		return "", errors.New("input closed")
	}
	switch choice {
	case "", "1":
		return aggregate.Mean, nil
	case "2":
		return aggregate.Median, nil
	default:
		return "", errors.Errorf("unknown statistic choice %q", choice)
	}
}

func (m *Menu) promptFileChoice(files []string) (string, error) {
	fmt.Println("Which combined file?")
	for i, file := range files {
		fmt.Printf(" %d) %s\n", i+1, file)
	}
	choice, ok := m.readLine("Choose an option: ")
	if !ok {
		return "", errors.New("input closed")
	}
	idx, err := strconv.Atoi(choice)
	if err != nil {
		return "", errors.Wrapf(err, "parsing file choice %q", choice)
	}
	if idx < 1 || idx > len(files) {
		return "", errors.Errorf("file choice %d out of range", idx)
	}
	return files[idx-1], nil
}

func (m *Menu) readLine(prompt string) (string, bool) {
	fmt.Print(prompt)
	select {
	case <-m.ctx.Done():
		return "", false
	case line, ok := <-m.lines:
		return line, ok
	}
}

func (m *Menu) renderRunSummary(result model.RunResult) {
	fmt.Println("\n=== Data Collection Summary ===")

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendSeparator()
	t.AppendHeader(table.Row{"", "Count"})
	t.AppendRow([]interface{}{"Laps collected", result.LapCount})
	t.AppendRow([]interface{}{"Successful events", len(result.SuccessfulEvents)})
	t.AppendRow([]interface{}{"Failed events", len(result.FailedEvents)})
	t.AppendRow([]interface{}{"Skipped fetches", len(result.Skipped)})
	t.Render()

	if len(result.Skipped) > 0 {
		s := table.NewWriter()
		s.SetOutputMirror(os.Stdout)
		s.SetStyle(table.StyleRounded)
		s.AppendSeparator()
		s.AppendHeader(table.Row{"Year", "Event", "Session", "Reason"})
		for _, entry := range result.Skipped {
			s.AppendRow([]interface{}{entry.Year, entry.Event, entry.Session, entry.Reason})
		}
		s.Render()
	}
}

func (m *Menu) renderAggregatedPreview(rows []model.AggregatedRow) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendSeparator()
	t.AppendHeader(table.Row{"Year", "Track", "Team", "Driver", "FP1", "FP2", "FP3", "Race", "Pos"})
	for i, row := range rows {
		if i == previewRows {
			break
		}
		t.AppendRow([]interface{}{
			row.Year,
			row.Track,
			row.Team,
			row.Driver,
			laptime.Format(row.FP1Stat),
			laptime.Format(row.FP2Stat),
			laptime.Format(row.FP3Stat),
			laptime.Format(row.RaceStat),
			row.Position,
		})
	}
	t.Render()
}

func (m *Menu) trackFrames() {
	framesChan := m.pubsubMgr.Subscribe(livetiming.PubSubFramesTopic)
	count := 0
	for {
		select {
		case <-m.ctx.Done():
			return
		case <-framesChan:
			count++
			if count%200 == 0 {
				fmt.Printf("... %d frames recorded\n", count)
			}
		}
	}
}

func wideYearRange(rows []model.WideLapRow) (int, int) {
	minYear, maxYear := 0, 0
	for _, row := range rows {
		if minYear == 0 || row.Year < minYear {
			minYear = row.Year
		}
		if row.Year > maxYear {
			maxYear = row.Year
		}
	}
	return minYear, maxYear
}

func aggregatedYearRange(rows []model.AggregatedRow) (int, int) {
	minYear, maxYear := 0, 0
	for _, row := range rows {
		if minYear == 0 || row.Year < minYear {
			minYear = row.Year
		}
		if row.Year > maxYear {
			maxYear = row.Year
		}
	}
	return minYear, maxYear
}
