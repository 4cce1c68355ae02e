package expense

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without a time-of-day component
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD)
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, invalid("date", fmt.Errorf("%w: %q", ErrInvalidDate, s))
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// Within reports whether start <= d <= end
func (d Date) Within(start, end Date) bool {
	return !d.Before(start.Time) && !d.After(end.Time)
}

// InMonth reports whether d falls in the given year and month
func (d Date) InMonth(year int, month time.Month) bool {
	return d.Year() == year && d.Month() == month
}

// Record represents a single expense. Records are not modified once stored.
type Record struct {
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        Date
	ID          string
}

// NewRecord validates its input and builds a Record. The description is
// trimmed and an empty id is replaced by a random UUID.
func NewRecord(amount decimal.Decimal, category, description string, date Date, id string) (Record, error) {
	r := Record{
		Amount:      amount,
		Category:    category,
		Description: strings.TrimSpace(description),
		Date:        date,
		ID:          id,
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return r, nil
}

// Validate checks the amount, description and date invariants
func (r Record) Validate() error {
	if !r.Amount.IsPositive() {
		return invalid("amount", ErrNonPositiveAmount)
	}
	if strings.TrimSpace(r.Description) == "" {
		return invalid("description", ErrEmptyDescription)
	}
	if r.Date.IsZero() {
		return invalid("date", ErrInvalidDate)
	}
	return nil
}

// recordJSON is the on-disk layout; field order is the serialized order.
type recordJSON struct {
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
	ID          string      `json:"id"`
}

// rawRecord is used when decoding so that absent fields can be told apart
// from empty ones.
type rawRecord struct {
	Amount      *json.Number `json:"amount"`
	Category    *string      `json:"category"`
	Description *string      `json:"description"`
	Date        *string      `json:"date"`
	ID          *string      `json:"id"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(recordJSON{
		Amount:      json.Number(r.Amount.String()),
		Category:    r.Category,
		Description: r.Description,
		Date:        r.Date.String(),
		ID:          r.ID,
	})
	if err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.Amount == nil:
		return invalid("amount", ErrMissingField)
	case raw.Category == nil:
		return invalid("category", ErrMissingField)
	case raw.Description == nil:
		return invalid("description", ErrMissingField)
	case raw.Date == nil:
		return invalid("date", ErrMissingField)
	}

	amount, err := decimal.NewFromString(raw.Amount.String())
	if err != nil {
		return invalid("amount", err)
	}
	date, err := ParseDate(*raw.Date)
	if err != nil {
		return err
	}
	var id string
	if raw.ID != nil {
		id = *raw.ID
	}

	rec, err := NewRecord(amount, *raw.Category, *raw.Description, date, id)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}
