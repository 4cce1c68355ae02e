package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/example/expense-tracker/pkg/expense"
)

func (a *app) newAddCmd() *cobra.Command {
	var category, date string

	cmd := &cobra.Command{
		Use:   "add <amount> <description>",
		Short: "Add an expense",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			var day expense.Date
			if date != "" {
				if day, err = expense.ParseDate(date); err != nil {
					return err
				}
			}

			rec, err := a.store.Add(amount, category, args[1], day)
			if err != nil && !errors.Is(err, expense.ErrPersist) {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s: %s %s %s (%s)\n",
				rec.ID, rec.Date, rec.Amount.StringFixed(2), rec.Category, rec.Description)
			return err
		},
	}

	cmd.Flags().StringVarP(&category, "category", "k", "other", "Expense category")
	cmd.Flags().StringVar(&date, "date", "", "Expense date (YYYY-MM-DD, default today)")
	return cmd
}

func (a *app) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an expense by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.store.Remove(args[0])
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "no expense with id %s\n", args[0])
			}
			return err
		},
	}
}

// recordFilter selects records by category and inclusive date range
type recordFilter struct {
	category string
	from     string
	to       string
}

func (f *recordFilter) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.category, "category", "", "Only expenses in this category")
	cmd.Flags().StringVar(&f.from, "from", "", "Start date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "End date, inclusive (YYYY-MM-DD)")
}

func (f *recordFilter) apply(s *expense.Store) ([]expense.Record, error) {
	records := s.Records()
	if f.category != "" {
		records = s.FilterByCategory(f.category)
	}
	if f.from == "" && f.to == "" {
		return records, nil
	}

	start := expense.NewDate(1, time.January, 1)
	end := expense.NewDate(9999, time.December, 31)
	var err error
	if f.from != "" {
		if start, err = expense.ParseDate(f.from); err != nil {
			return nil, err
		}
	}
	if f.to != "" {
		if end, err = expense.ParseDate(f.to); err != nil {
			return nil, err
		}
	}

	if f.category == "" {
		return s.FilterByDateRange(start, end), nil
	}
	var filtered []expense.Record
	for _, r := range records {
		if r.Date.Within(start, end) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func (a *app) newListCmd() *cobra.Command {
	var filter recordFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := filter.apply(a.store)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no expenses")
				return nil
			}

			t := newTable("ID", "DATE", "AMOUNT", "CATEGORY", "DESCRIPTION")
			for _, r := range records {
				t.Row(r.ID, r.Date.String(), r.Amount.StringFixed(2), r.Category, r.Description)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	filter.register(cmd)
	return cmd
}

func (a *app) newTotalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show the total spent per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), categoryTable(a.store.TotalsByCategory()).Render())
			return nil
		},
	}
}

func (a *app) newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <year> <month>",
		Short: "Summarize the expenses of one month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q: %w", args[0], err)
			}
			month, err := strconv.Atoi(args[1])
			if err != nil || month < 1 || month > 12 {
				return fmt.Errorf("invalid month %q: must be between 1 and 12", args[1])
			}

			s := a.store.MonthlySummary(year, time.Month(month))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%04d-%02d: total %s, count %d, average %s\n",
				s.Year, int(s.Month), s.Total.StringFixed(2), s.Count, s.Average.StringFixed(2))
			if len(s.Categories) > 0 {
				fmt.Fprintln(out, categoryTable(s.Categories).Render())
			}
			return nil
		},
	}
}

func (a *app) newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List known categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, c := range a.store.Categories() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func (a *app) newExportCmd() *cobra.Command {
	var (
		filter recordFilter
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export expenses as JSON, YAML or CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc, err := expense.EncoderFor(format)
			if err != nil {
				return err
			}
			records, err := filter.apply(a.store)
			if err != nil {
				return err
			}
			data, err := enc.EncodeRecords(records)
			if err != nil {
				return fmt.Errorf("failed to encode expenses: %w", err)
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write export file: %w", err)
			}
			a.logger.Info("exported expenses", "path", output, "format", format, "records", len(records))
			return nil
		},
	}

	filter.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Export format: json, yaml or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func categoryTable(totals map[string]decimal.Decimal) *table.Table {
	categories := make([]string, 0, len(totals))
	for c := range totals {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	t := newTable("CATEGORY", "TOTAL")
	for _, c := range categories {
		t.Row(c, totals[c].StringFixed(2))
	}
	return t
}
