package expense

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Encoder renders a list of records in an export format
type Encoder interface {
	EncodeRecords(records []Record) ([]byte, error)
}

type recordRow struct {
	ID          string `yaml:"id"`
	Date        string `yaml:"date"`
	Amount      string `yaml:"amount"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
}

func toRows(records []Record) []recordRow {
	rows := make([]recordRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, recordRow{
			ID:          r.ID,
			Date:        r.Date.String(),
			Amount:      r.Amount.StringFixed(2),
			Category:    r.Category,
			Description: r.Description,
		})
	}
	return rows
}

// JSONEncoder writes the same layout as the backing file
type JSONEncoder struct{}

func (JSONEncoder) EncodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type YAMLEncoder struct{}

func (YAMLEncoder) EncodeRecords(records []Record) ([]byte, error) {
	return yaml.Marshal(toRows(records))
}

// CSVEncoder writes a header row followed by id,date,amount,category,description
type CSVEncoder struct{}

func (CSVEncoder) EncodeRecords(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "date", "amount", "category", "description"}); err != nil {
		return nil, err
	}
	for _, row := range toRows(records) {
		if err := w.Write([]string{row.ID, row.Date, row.Amount, row.Category, row.Description}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncoderFor returns the encoder for format (json, yaml or csv)
func EncoderFor(format string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return JSONEncoder{}, nil
	case "yaml", "yml":
		return YAMLEncoder{}, nil
	case "csv":
		return CSVEncoder{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
