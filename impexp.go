package kitefolio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/rachitg/kitefolio/date"
)

// Store keeps one date-stamped CSV file per holdings capture under a single
// directory. It is the system's source of record: analysis runs read every
// stored file back as raw rows and rebuild all snapshots from scratch.
type Store struct {
	Dir string
}

var holdingsFileRe = regexp.MustCompile(`^holdings_(\d{4})(\d{2})(\d{2})_\d{6}\.csv$`)

// Save writes the holdings to a new timestamped CSV file and returns its
// path. The directory is created if needed.
func (s Store) Save(holdings []Holding, now time.Time) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating store directory %q: %w", s.Dir, err)
	}
	path := filepath.Join(s.Dir, fmt.Sprintf("holdings_%s.csv", now.UTC().Format("20060102_150405")))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating holdings file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(HoldingCSVHeader); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}
	for _, h := range holdings {
		if err := w.Write(h.CSVRow()); err != nil {
			return "", fmt.Errorf("writing holding %s: %w", h.Instrument, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing holdings file: %w", err)
	}
	return path, nil
}

// Load reads a single holdings CSV file (with header).
func Load(path string) ([]Holding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening holdings file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // older files may omit the exchange column
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading holdings file %q: %w", path, err)
	}
	if len(records) <= 1 {
		return nil, nil
	}
	holdings := make([]Holding, 0, len(records)-1)
	for _, rec := range records[1:] { // skip header
		h, err := ParseHolding(rec)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

// FileDate extracts the capture date from a holdings filename like
// holdings_20250115_120000.csv, falling back to today when the name does
// not match.
func FileDate(path string) date.Date {
	m := holdingsFileRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return date.Today()
	}
	d, err := date.Parse(fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]))
	if err != nil {
		return date.Today()
	}
	return d
}

// Rows reads every stored holdings file and returns the raw snapshot rows,
// each prefixed with the file's capture date, in filename order. This is
// the row source the analysis pipeline consumes.
func (s Store) Rows() ([][]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store directory %q: %w", s.Dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && holdingsFileRe.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var rows [][]string
	for _, name := range names {
		path := filepath.Join(s.Dir, name)
		holdings, err := Load(path)
		if err != nil {
			return nil, err
		}
		on := FileDate(path).String()
		for _, h := range holdings {
			rows = append(rows, append([]string{on}, h.CSVRow()...))
		}
	}
	return rows, nil
}
