package lapstore

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"f1lapdata/pkg/laptime"
	"f1lapdata/pkg/model"
)

const (
	PracticeLapsFile = "f1_practice_laps.csv"
	RaceLapsFile     = "f1_race_laps.csv"
)

// Store reads and writes the pipeline's CSV files under one directory. It
// assumes single-writer access to its own files; concurrent invocations
// against the same directory are unsupported.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// LongFileForSessions picks the long-form output file for a session group.
func LongFileForSessions(sessions []model.SessionType) string {
	for _, session := range sessions {
		if session.IsRace() {
			return RaceLapsFile
		}
	}
	return PracticeLapsFile
}

// WideFile names the merged file for the years it covers.
func WideFile(minYear, maxYear int) string {
	if minYear == maxYear {
		return fmt.Sprintf("f1_lapData_%d.csv", minYear)
	}
	return fmt.Sprintf("f1_lapData_%d-%d.csv", minYear, maxYear)
}

// SummaryFile names the aggregated file for the years it covers.
func SummaryFile(minYear, maxYear int) string {
	if minYear == maxYear {
		return fmt.Sprintf("f1_lapSummary_%d.csv", minYear)
	}
	return fmt.Sprintf("f1_lapSummary_%d-%d.csv", minYear, maxYear)
}

// WideFiles lists the merged files already present in the store.
func (s *Store) WideFiles() ([]string, error) {
	matches, err := filepath.Glob(s.Path("f1_lapData_*.csv"))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(matches))
	for i, match := range matches {
		names[i] = filepath.Base(match)
	}
	return names, nil
}

// DedupeLaps drops exact-duplicate records by identity key, keeping the
// first occurrence and preserving order.
func DedupeLaps(laps []model.LapRecord) []model.LapRecord {
	seen := map[model.LapKey]bool{}
	out := make([]model.LapRecord, 0, len(laps))
	for _, lap := range laps {
		key := lap.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, lap)
	}
	return out
}

// AppendLaps concatenates new laps onto an existing file's rows,
// deduplicates by identity key and rewrites the file. It returns the row
// count of the rewritten file.
func (s *Store) AppendLaps(name string, laps []model.LapRecord) (int, error) {
	existing, err := s.LoadLaps(name)
	if err != nil && !IsNotExist(err) {
		return 0, err
	}

	combined := DedupeLaps(append(existing, laps...))
	if err := s.writeLaps(name, combined); err != nil {
		return 0, err
	}
	return len(combined), nil
}

// LoadLaps reads a long-form lap file. A missing file yields an error for
// which IsNotExist is true; callers report it and carry on.
func (s *Store) LoadLaps(name string) ([]model.LapRecord, error) {
	rows, err := s.readAll(name)
	if err != nil {
		return nil, err
	}

	laps := make([]model.LapRecord, 0, len(rows))
	for i, row := range rows {
		lap, err := decodeLapRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "%s row %d", name, i+2)
		}
		laps = append(laps, lap)
	}
	return laps, nil
}

func (s *Store) writeLaps(name string, laps []model.LapRecord) error {
	rows := make([][]string, 0, len(laps)+1)
	rows = append(rows, longHeader())
	for _, lap := range laps {
		rows = append(rows, encodeLapRow(lap))
	}
	return s.writeAll(name, rows)
}

// WriteWide writes the merged wide-form table.
func (s *Store) WriteWide(name string, wide []model.WideLapRow) error {
	rows := make([][]string, 0, len(wide)+1)
	rows = append(rows, wideHeader())
	for _, row := range wide {
		rows = append(rows, encodeWideRow(row))
	}
	return s.writeAll(name, rows)
}

// LoadWide reads a merged wide-form table back.
func (s *Store) LoadWide(name string) ([]model.WideLapRow, error) {
	rows, err := s.readAll(name)
	if err != nil {
		return nil, err
	}

	wide := make([]model.WideLapRow, 0, len(rows))
	for i, row := range rows {
		w, err := decodeWideRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "%s row %d", name, i+2)
		}
		wide = append(wide, w)
	}
	return wide, nil
}

// WriteSummary writes the aggregated statistics table.
func (s *Store) WriteSummary(name string, aggregated []model.AggregatedRow) error {
	rows := make([][]string, 0, len(aggregated)+1)
	rows = append(rows, summaryHeader())
	for _, row := range aggregated {
		rows = append(rows, encodeSummaryRow(row))
	}
	return s.writeAll(name, rows)
}

// IsNotExist reports whether an error from the store means the file is not
// there yet.
func IsNotExist(err error) bool {
	return os.IsNotExist(errors.Cause(err))
}

func (s *Store) readAll(name string) ([][]string, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", name)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	// skip header line
	return rows[1:], nil
}

func (s *Store) writeAll(name string, rows [][]string) error {
	f, err := os.Create(s.Path(name))
	if err != nil {
		return errors.Wrapf(err, "creating %s", name)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.WriteAll(rows); err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	writer.Flush()
	return errors.Wrapf(writer.Error(), "flushing %s", name)
}

func longHeader() []string {
	return []string{"Year", "Track", "Session", "Team", "Driver", "Rainfall", "TrackTemperature", "LapNumber", "LapTime", "Position"}
}

func wideHeader() []string {
	header := []string{"Year", "Track", "Team", "Driver", "LapNumber"}
	for _, session := range model.SessionOrder {
		header = append(header, fmt.Sprintf("%s Lap Time", session))
	}
	return append(header, "Position", "TrackTemperature", "Rainfall")
}

func summaryHeader() []string {
	header := []string{"Year", "Track", "Team", "Driver"}
	for _, session := range model.SessionOrder {
		header = append(header, fmt.Sprintf("%s Lap Time", session))
	}
	return append(header, "Position")
}

func encodeLapRow(lap model.LapRecord) []string {
	return []string{
		strconv.Itoa(lap.Year),
		lap.Track,
		string(lap.Session),
		lap.Team,
		lap.Driver,
		encodeBoolCell(lap.Rainfall),
		encodeFloatCell(lap.TrackTemperature, 1),
		strconv.Itoa(lap.LapNumber),
		laptime.Format(lap.LapTime),
		encodeIntCell(lap.Position),
	}
}

func decodeLapRow(row []string) (model.LapRecord, error) {
	lap := model.LapRecord{}
	if len(row) < 10 {
		return lap, errors.Errorf("expected 10 columns, got %d", len(row))
	}

	year, err := strconv.Atoi(row[0])
	if err != nil {
		return lap, errors.Wrap(err, "year")
	}
	lapNumber, err := strconv.Atoi(row[7])
	if err != nil {
		return lap, errors.Wrap(err, "lap number")
	}
	position, err := decodeIntCell(row[9])
	if err != nil {
		return lap, errors.Wrap(err, "position")
	}

	lap.Year = year
	lap.Track = row[1]
	lap.Session = model.SessionType(row[2])
	lap.Team = row[3]
	lap.Driver = row[4]
	lap.Rainfall = decodeBoolCell(row[5])
	lap.TrackTemperature = decodeFloatCell(row[6])
	lap.LapNumber = lapNumber
	lap.LapTime = laptime.Parse(row[8])
	lap.Position = position
	return lap, nil
}

func encodeWideRow(row model.WideLapRow) []string {
	cells := []string{
		strconv.Itoa(row.Year),
		row.Track,
		row.Team,
		row.Driver,
		strconv.Itoa(row.LapNumber),
	}
	for _, session := range model.SessionOrder {
		cells = append(cells, encodeFloatCell(row.SessionTime(session), 3))
	}
	return append(cells,
		encodeIntCell(row.Position),
		encodeFloatCell(row.TrackTemperature, 1),
		encodeBoolCell(row.Rainfall),
	)
}

func decodeWideRow(row []string) (model.WideLapRow, error) {
	w := model.WideLapRow{}
	if len(row) < 12 {
		return w, errors.Errorf("expected 12 columns, got %d", len(row))
	}

	year, err := strconv.Atoi(row[0])
	if err != nil {
		return w, errors.Wrap(err, "year")
	}
	lapNumber, err := strconv.Atoi(row[4])
	if err != nil {
		return w, errors.Wrap(err, "lap number")
	}
	position, err := decodeIntCell(row[9])
	if err != nil {
		return w, errors.Wrap(err, "position")
	}

	w.Year = year
	w.Track = row[1]
	w.Team = row[2]
	w.Driver = row[3]
	w.LapNumber = lapNumber
	for i, session := range model.SessionOrder {
		w.SetSessionTime(session, laptime.Parse(row[5+i]))
	}
	w.Position = position
	w.TrackTemperature = decodeFloatCell(row[10])
	w.Rainfall = decodeBoolCell(row[11])
	return w, nil
}

func encodeSummaryRow(row model.AggregatedRow) []string {
	cells := []string{
		strconv.Itoa(row.Year),
		row.Track,
		row.Team,
		row.Driver,
	}
	for _, session := range model.SessionOrder {
		cells = append(cells, encodeFloatCell(row.SessionStat(session), 3))
	}
	return append(cells, encodeIntCell(row.Position))
}

func encodeFloatCell(v float64, precision int) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

func decodeFloatCell(cell string) float64 {
	if cell == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func encodeIntCell(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func decodeIntCell(cell string) (int, error) {
	if cell == "" {
		return 0, nil
	}
	return strconv.Atoi(cell)
}

func encodeBoolCell(v *bool) string {
	if v == nil {
		return ""
	}
	if *v {
		return "True"
	}
	return "False"
}

func decodeBoolCell(cell string) *bool {
	switch cell {
	case "True", "true":
		v := true
		return &v
	case "False", "false":
		v := false
		return &v
	default:
		return nil
	}
}
