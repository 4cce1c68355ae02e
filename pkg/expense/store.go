package expense

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCategories seeds the known-category set. It is advisory only.
var DefaultCategories = []string{
	"food", "transport", "entertainment", "shopping", "medical",
	"education", "rent", "utilities", "other",
}

// Store owns the ordered collection of Records and its backing file.
// It is not safe for concurrent use.
type Store struct {
	path       string
	logger     *log.Logger
	records    []Record
	categories map[string]struct{}
	now        func() time.Time
	newID      func() string
}

// Option configures a Store
type Option func(*Store)

// WithClock sets the clock used to default the date of new records
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithCategories replaces the default known-category seed
func WithCategories(categories ...string) Option {
	return func(s *Store) {
		s.categories = make(map[string]struct{}, len(categories))
		for _, c := range categories {
			s.categories[c] = struct{}{}
		}
	}
}

// WithIDGenerator sets the function used to assign ids to new records
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore creates a Store backed by path and loads any existing records.
// A missing file yields an empty store; an unreadable or malformed file is
// logged and also yields an empty store.
func NewStore(path string, logger *log.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Store{
		path:   path,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	WithCategories(DefaultCategories...)(s)
	for _, opt := range opts {
		opt(s)
	}

	s.load()
	s.logger.Info("expense store ready", "path", s.path, "records", len(s.records))
	return s
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Add validates and appends a new record, then rewrites the backing file.
// A zero date means today. Validation failures leave the store unchanged.
// If the write fails the record stays in memory and the returned error
// wraps ErrPersist.
func (s *Store) Add(amount decimal.Decimal, category, description string, date Date) (Record, error) {
	if date.IsZero() {
		date = DateOf(s.now())
	}

	rec, err := NewRecord(amount, category, description, date, s.newID())
	if err != nil {
		s.logger.Error("rejected expense", "error", err, "amount", amount.String(), "category", category)
		return Record{}, err
	}

	s.records = append(s.records, rec)
	s.categories[rec.Category] = struct{}{}
	s.logger.Info("added expense", "id", rec.ID, "amount", rec.Amount.String(), "category", rec.Category, "description", rec.Description)

	if err := s.save(); err != nil {
		return rec, err
	}
	return rec, nil
}

// Remove deletes the first record with the given id. It reports false when
// no record matches, in which case the file is not rewritten.
func (s *Store) Remove(id string) (bool, error) {
	for i, r := range s.records {
		if r.ID != id {
			continue
		}
		s.records = append(s.records[:i:i], s.records[i+1:]...)
		s.logger.Info("removed expense", "id", id)
		return true, s.save()
	}
	s.logger.Warn("expense not found", "id", id)
	return false, nil
}

// Get returns the record with the given id
func (s *Store) Get(id string) (Record, bool) {
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Records returns a copy of all records in insertion order
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of stored records
func (s *Store) Len() int {
	return len(s.records)
}

// Categories returns the known-category set, sorted
func (s *Store) Categories() []string {
	out := make([]string, 0, len(s.categories))
	for c := range s.categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// FilterByCategory returns all records in category, in insertion order
func (s *Store) FilterByCategory(category string) []Record {
	return s.filter(func(r Record) bool { return r.Category == category })
}

// FilterByDateRange returns all records dated within [start, end]
func (s *Store) FilterByDateRange(start, end Date) []Record {
	return s.filter(func(r Record) bool { return r.Date.Within(start, end) })
}

func (s *Store) filter(keep func(Record) bool) []Record {
	var filtered []Record
	for _, r := range s.records {
		if keep(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// TotalsByCategory sums amounts per category over all records
func (s *Store) TotalsByCategory() map[string]decimal.Decimal {
	return sumByCategory(s.records)
}

// MonthlySummary aggregates the records of one calendar month
func (s *Store) MonthlySummary(year int, month time.Month) MonthSummary {
	return summarize(year, month, s.filter(func(r Record) bool {
		return r.Date.InMonth(year, month)
	}))
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("data file does not exist, starting empty", "path", s.path)
		return
	}
	if err != nil {
		s.logger.Error("failed to read data file, starting empty", "path", s.path, "error", err)
		return
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Error("failed to parse data file, starting empty", "path", s.path, "error", err)
		return
	}

	s.records = records
	for _, r := range records {
		s.categories[r.Category] = struct{}{}
	}
	s.logger.Info("loaded expenses", "path", s.path, "records", len(records))
}

func (s *Store) save() error {
	if err := s.write(); err != nil {
		s.logger.Error("failed to save expenses", "path", s.path, "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.logger.Info("saved expenses", "path", s.path, "records", len(s.records))
	return nil
}

func (s *Store) write() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	records := s.records
	if records == nil {
		records = []Record{}
	}
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode expenses: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	return nil
}
