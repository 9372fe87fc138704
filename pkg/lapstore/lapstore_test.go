package lapstore

import (
	"math"
	"testing"

	"f1lapdata/pkg/model"
)

func testLap(driver string, lapNumber int, seconds float64) model.LapRecord {
	return model.LapRecord{
		Year:             2024,
		Track:            "Monza",
		Session:          model.Race,
		Team:             "Ferrari",
		Driver:           driver,
		LapNumber:        lapNumber,
		LapTime:          seconds,
		Position:         3,
		TrackTemperature: 38.5,
	}
}

func TestAppendLaps_DedupeIdempotence(t *testing.T) {
	store := NewStore(t.TempDir())
	laps := []model.LapRecord{
		testLap("LEC", 1, 81.0),
		testLap("LEC", 2, 82.0),
		testLap("HAM", 1, 83.0),
	}

	count, err := store.AppendLaps(RaceLapsFile, laps)
	if err != nil {
		t.Fatalf("AppendLaps() error = %v, want nil", err)
	}
	if count != 3 {
		t.Fatalf("AppendLaps() count = %d, want 3", count)
	}

	// appending the file's own rows again must not grow it
	count, err = store.AppendLaps(RaceLapsFile, laps)
	if err != nil {
		t.Fatalf("AppendLaps() error = %v, want nil", err)
	}
	if count != 3 {
		t.Errorf("AppendLaps() count after re-append = %d, want 3", count)
	}
}

func TestLoadLaps_RoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	rain := false
	lap := testLap("LEC", 1, 81.5)
	lap.Rainfall = &rain

	missing := testLap("HAM", 2, math.NaN())
	missing.Position = 0
	missing.TrackTemperature = math.NaN()

	if _, err := store.AppendLaps(RaceLapsFile, []model.LapRecord{lap, missing}); err != nil {
		t.Fatalf("AppendLaps() error = %v, want nil", err)
	}

	loaded, err := store.LoadLaps(RaceLapsFile)
	if err != nil {
		t.Fatalf("LoadLaps() error = %v, want nil", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("LoadLaps() returned %d rows, want 2", len(loaded))
	}

	got := loaded[0]
	if got.Key() != lap.Key() {
		t.Errorf("key = %+v, want %+v", got.Key(), lap.Key())
	}
	if got.LapTime != 81.5 {
		t.Errorf("LapTime = %v, want 81.5", got.LapTime)
	}
	if got.Position != 3 {
		t.Errorf("Position = %d, want 3", got.Position)
	}
	if got.TrackTemperature != 38.5 {
		t.Errorf("TrackTemperature = %v, want 38.5", got.TrackTemperature)
	}
	if got.Rainfall == nil || *got.Rainfall {
		t.Error("Rainfall did not round-trip as False")
	}

	gotMissing := loaded[1]
	if !math.IsNaN(gotMissing.LapTime) {
		t.Errorf("missing LapTime = %v, want NaN", gotMissing.LapTime)
	}
	if gotMissing.Position != 0 {
		t.Errorf("missing Position = %d, want 0", gotMissing.Position)
	}
	if !math.IsNaN(gotMissing.TrackTemperature) {
		t.Errorf("missing TrackTemperature = %v, want NaN", gotMissing.TrackTemperature)
	}
	if gotMissing.Rainfall != nil {
		t.Error("missing Rainfall should load as nil")
	}
}

func TestLoadLaps_MissingFile(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.LoadLaps(RaceLapsFile)
	if err == nil {
		t.Fatal("LoadLaps() on a missing file should error")
	}
	if !IsNotExist(err) {
		t.Errorf("IsNotExist(%v) = false, want true", err)
	}
}

func TestWideRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	rain := true
	rows := []model.WideLapRow{
		{
			Year: 2024, Track: "Monza", Team: "Ferrari", Driver: "LEC", LapNumber: 1,
			FP1Time: 80.5, FP2Time: math.NaN(), FP3Time: math.NaN(), RaceTime: 81.0,
			Position: 3, TrackTemperature: 38.5, Rainfall: &rain,
		},
	}

	name := WideFile(2024, 2024)
	if err := store.WriteWide(name, rows); err != nil {
		t.Fatalf("WriteWide() error = %v, want nil", err)
	}

	loaded, err := store.LoadWide(name)
	if err != nil {
		t.Fatalf("LoadWide() error = %v, want nil", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("LoadWide() returned %d rows, want 1", len(loaded))
	}
	got := loaded[0]
	if got.FP1Time != 80.5 || got.RaceTime != 81.0 {
		t.Errorf("times = %v/%v, want 80.5/81.0", got.FP1Time, got.RaceTime)
	}
	if !math.IsNaN(got.FP2Time) {
		t.Errorf("FP2Time = %v, want NaN", got.FP2Time)
	}
	if got.Position != 3 {
		t.Errorf("Position = %d, want 3", got.Position)
	}

	files, err := store.WideFiles()
	if err != nil {
		t.Fatalf("WideFiles() error = %v, want nil", err)
	}
	if len(files) != 1 || files[0] != name {
		t.Errorf("WideFiles() = %v, want [%s]", files, name)
	}
}

func TestFileNames(t *testing.T) {
	if got := WideFile(2021, 2024); got != "f1_lapData_2021-2024.csv" {
		t.Errorf("WideFile(2021, 2024) = %q", got)
	}
	if got := WideFile(2024, 2024); got != "f1_lapData_2024.csv" {
		t.Errorf("WideFile(2024, 2024) = %q", got)
	}
	if got := SummaryFile(2021, 2024); got != "f1_lapSummary_2021-2024.csv" {
		t.Errorf("SummaryFile(2021, 2024) = %q", got)
	}
	if got := LongFileForSessions([]model.SessionType{model.FP1, model.FP2}); got != PracticeLapsFile {
		t.Errorf("LongFileForSessions(practice) = %q", got)
	}
	if got := LongFileForSessions([]model.SessionType{model.Race}); got != RaceLapsFile {
		t.Errorf("LongFileForSessions(race) = %q", got)
	}
}
