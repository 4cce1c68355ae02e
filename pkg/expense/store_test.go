package expense

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	today     = NewDate(2024, time.June, 20)
	yesterday = NewDate(2024, time.June, 19)
)

func fixedClock() time.Time {
	return time.Date(2024, time.June, 20, 15, 30, 0, 0, time.UTC)
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "expenses.json")
	return NewStore(path, log.New(io.Discard), WithClock(fixedClock)), path
}

func mustAdd(t *testing.T, s *Store, amount, category, description string, date Date) Record {
	t.Helper()
	rec, err := s.Add(dec(amount), category, description, date)
	require.NoError(t, err)
	return rec
}

func assertTotals(t *testing.T, want map[string]string, got map[string]decimal.Decimal) {
	t.Helper()
	require.Len(t, got, len(want))
	for category, amount := range want {
		sum, ok := got[category]
		require.True(t, ok, "missing category %q", category)
		assert.True(t, dec(amount).Equal(sum), "category %q: want %s, got %s", category, amount, sum)
	}
}

func TestStore_AddValidExpense(t *testing.T) {
	s, _ := newTestStore(t)

	rec, err := s.Add(dec("50"), "food", "breakfast", today)
	require.NoError(t, err)

	require.Equal(t, 1, s.Len())
	got := s.Records()[0]
	assert.Equal(t, rec, got)
	assert.True(t, dec("50").Equal(got.Amount))
	assert.Equal(t, "food", got.Category)
	assert.Equal(t, "breakfast", got.Description)
	assert.Equal(t, today, got.Date)
}

func TestStore_AddInvalidAmount(t *testing.T) {
	s, path := newTestStore(t)
	mustAdd(t, s, "10", "food", "existing", today)
	before := s.Records()

	for _, amount := range []string{"-10", "0"} {
		_, err := s.Add(dec(amount), "food", "test", today)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNonPositiveAmount)

		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	}

	assert.Equal(t, before, s.Records())

	reloaded := NewStore(path, log.New(io.Discard))
	assert.Equal(t, 1, reloaded.Len())
}

func TestStore_AddEmptyDescription(t *testing.T) {
	s, path := newTestStore(t)

	_, err := s.Add(dec("50"), "food", "", today)
	assert.ErrorIs(t, err, ErrEmptyDescription)

	_, err = s.Add(dec("50"), "food", "   ", today)
	assert.ErrorIs(t, err, ErrEmptyDescription)

	assert.Equal(t, 0, s.Len())
	assert.NoFileExists(t, path)
}

func TestStore_AddDefaultsToToday(t *testing.T) {
	s, _ := newTestStore(t)

	rec := mustAdd(t, s, "5", "food", "coffee", Date{})
	assert.Equal(t, today, rec.Date)
}

func TestStore_AddRegistersCategory(t *testing.T) {
	s, _ := newTestStore(t)
	assert.NotContains(t, s.Categories(), "pets")

	mustAdd(t, s, "30", "pets", "cat food", today)
	assert.Contains(t, s.Categories(), "pets")
	assert.Contains(t, s.Categories(), "food")
}

func TestStore_WithCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.json")
	s := NewStore(path, nil, WithCategories("b", "a"))
	assert.Equal(t, []string{"a", "b"}, s.Categories())
}

func TestStore_WithIDGenerator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.json")
	n := 0
	s := NewStore(path, nil, WithIDGenerator(func() string {
		n++
		return "id-" + string(rune('0'+n))
	}))

	a := mustAdd(t, s, "1", "food", "a", today)
	b := mustAdd(t, s, "2", "food", "b", today)
	assert.Equal(t, "id-1", a.ID)
	assert.Equal(t, "id-2", b.ID)
}

func TestStore_RemoveExisting(t *testing.T) {
	s, path := newTestStore(t)
	keep1 := mustAdd(t, s, "100", "shopping", "books", today)
	gone := mustAdd(t, s, "20", "food", "lunch", today)
	keep2 := mustAdd(t, s, "30", "food", "dinner", today)

	removed, err := s.Remove(gone.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	assert.Equal(t, []Record{keep1, keep2}, s.Records())
	_, ok := s.Get(gone.ID)
	assert.False(t, ok)

	reloaded := NewStore(path, log.New(io.Discard))
	assert.Equal(t, 2, reloaded.Len())
}

func TestStore_RemoveNonexistent(t *testing.T) {
	s, path := newTestStore(t)

	removed, err := s.Remove("nonexistent_id")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.NoFileExists(t, path)

	mustAdd(t, s, "10", "food", "snack", today)
	removed, err = s.Remove("nonexistent_id")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 1, s.Len())
}

func TestStore_FilterByCategory(t *testing.T) {
	s, _ := newTestStore(t)
	lunch := mustAdd(t, s, "30", "food", "lunch", today)
	mustAdd(t, s, "120", "transport", "taxi", today)
	dinner := mustAdd(t, s, "45", "food", "dinner", yesterday)

	food := s.FilterByCategory("food")
	assert.Equal(t, []Record{lunch, dinner}, food)

	assert.Empty(t, s.FilterByCategory("rent"))
}

func TestStore_FilterByDateRange(t *testing.T) {
	s, _ := newTestStore(t)
	past := NewDate(2024, time.June, 15)
	future := NewDate(2024, time.June, 22)

	mustAdd(t, s, "100", "food", "past", past)
	now := mustAdd(t, s, "200", "food", "today", today)
	later := mustAdd(t, s, "150", "food", "future", future)
	mustAdd(t, s, "150", "food", "too late", NewDate(2024, time.June, 23))

	got := s.FilterByDateRange(today, future)
	assert.Equal(t, []Record{now, later}, got)
}

func TestStore_TotalsByCategory(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "50", "food", "breakfast", today)
	mustAdd(t, s, "120", "food", "lunch", today)
	mustAdd(t, s, "80", "transit", "metro", today)
	mustAdd(t, s, "200", "fun", "movie", today)
	mustAdd(t, s, "60", "transit", "bus", yesterday)

	assertTotals(t, map[string]string{
		"food":    "170",
		"transit": "140",
		"fun":     "200",
	}, s.TotalsByCategory())
}

func TestStore_TotalsByCategory_Empty(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Empty(t, s.TotalsByCategory())
}

func TestStore_MonthlySummary(t *testing.T) {
	s, _ := newTestStore(t)
	june := NewDate(2024, time.June, 15)

	mustAdd(t, s, "100", "food", "restaurant", june)
	mustAdd(t, s, "200", "shopping", "clothes", june)
	mustAdd(t, s, "80", "food", "supermarket", june)
	mustAdd(t, s, "50", "food", "other month", NewDate(2024, time.May, 15))

	summary := s.MonthlySummary(2024, time.June)

	assert.True(t, dec("380").Equal(summary.Total))
	assert.Equal(t, 3, summary.Count)
	assert.True(t, dec("126.67").Equal(summary.Average), "average %s", summary.Average)
	assertTotals(t, map[string]string{
		"food":     "180",
		"shopping": "200",
	}, summary.Categories)
}

func TestStore_MonthlySummary_Rounding(t *testing.T) {
	s, _ := newTestStore(t)
	d := NewDate(2024, time.July, 1)
	mustAdd(t, s, "0.333", "food", "a", d)
	mustAdd(t, s, "0.333", "food", "b", d)

	summary := s.MonthlySummary(2024, time.July)
	assert.Equal(t, "0.67", summary.Total.String())
	assert.Equal(t, "0.33", summary.Average.String())
	assert.Equal(t, "0.666", summary.Categories["food"].String())
}

func TestStore_MonthlySummary_EmptyMonth(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "10", "food", "lunch", today)

	summary := s.MonthlySummary(2024, time.December)

	assert.True(t, summary.Total.IsZero())
	assert.Equal(t, 0, summary.Count)
	assert.True(t, summary.Average.IsZero())
	assert.NotNil(t, summary.Categories)
	assert.Empty(t, summary.Categories)
}

func TestStore_Persistence(t *testing.T) {
	s, path := newTestStore(t)
	mustAdd(t, s, "100", "test", "persistence test", today)
	mustAdd(t, s, "12.5", "食物", "午餐 & 飲料", yesterday)
	mustAdd(t, s, "7", "transport", "bus", today)

	reloaded := NewStore(path, log.New(io.Discard))

	want := s.Records()
	got := reloaded.Records()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Amount.Equal(got[i].Amount))
		assert.Equal(t, want[i].Category, got[i].Category)
		assert.Equal(t, want[i].Description, got[i].Description)
		assert.Equal(t, want[i].Date, got[i].Date)
		assert.Equal(t, want[i].ID, got[i].ID)
	}
	assert.Contains(t, reloaded.Categories(), "食物")
}

func TestStore_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.json")
	s := NewStore(path, nil, WithIDGenerator(func() string { return "abc" }))
	mustAdd(t, s, "12.5", "食物", "午餐 & 飲料", NewDate(2024, time.June, 15))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := `[
  {
    "amount": 12.5,
    "category": "食物",
    "description": "午餐 & 飲料",
    "date": "2024-06-15",
    "id": "abc"
  }
]
`
	assert.Equal(t, want, string(data))
}

func TestStore_RemoveLastWritesEmptyArray(t *testing.T) {
	s, path := newTestStore(t)
	rec := mustAdd(t, s, "1", "food", "gum", today)

	removed, err := s.Remove(rec.ID)
	require.NoError(t, err)
	require.True(t, removed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestStore_LoadMissingFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "missing.json")

	s := NewStore(path, log.New(&buf))

	assert.Equal(t, 0, s.Len())
	assert.Contains(t, buf.String(), "data file does not exist")
}

func TestStore_LoadMalformedFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", `[{"amount": 1,`},
		{"not an array", `{"amount": 1}`},
		{"one bad record", `[
  {"amount": 10, "category": "food", "description": "ok", "date": "2024-06-15", "id": "a"},
  {"amount": 10, "category": "food", "description": "bad", "date": "2024-06-31", "id": "b"}
]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "expenses.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			var buf bytes.Buffer
			s := NewStore(path, log.New(&buf))

			assert.Equal(t, 0, s.Len())
			assert.Contains(t, buf.String(), "failed to parse data file")
		})
	}
}

func TestStore_SaveFailureKeepsRecordInMemory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0644))

	var buf bytes.Buffer
	s := NewStore(filepath.Join(blocker, "expenses.json"), log.New(&buf))
	assert.Contains(t, buf.String(), "failed to read data file")

	rec, err := s.Add(dec("42"), "food", "pizza", today)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersist)
	assert.Equal(t, "pizza", rec.Description)

	assert.Equal(t, 1, s.Len())
	assert.Contains(t, buf.String(), "failed to save expenses")
}

func TestStore_CreatesDataDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "expenses.json")
	s := NewStore(path, nil)

	mustAdd(t, s, "3", "food", "tea", today)
	assert.FileExists(t, path)
}
