package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Row is one parsed catalogue entry. Category is a slug, resolved against
// the database by the import service.
type Row struct {
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Unit        string
	Stock       int
	ImageURL    string
}

// Expected CSV header columns. Name and Price are required per row; the
// rest may be empty.
const (
	colName        = "name"
	colDescription = "description"
	colCategory    = "category"
	colPrice       = "price"
	colUnit        = "unit"
	colStock       = "stock"
	colImageURL    = "image url"
)

// ParseCatalog reads a catalogue CSV. The first record is a header naming
// the columns in any order. Rows that fail validation are reported by line
// number and skipped; only a malformed file as a whole returns an error.
func ParseCatalog(r io.Reader) ([]Row, []string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Rows may legitimately omit trailing columns.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("catalogue file is empty")
		}
		return nil, nil, fmt.Errorf("failed to read catalogue header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := index[colName]; !ok {
		return nil, nil, fmt.Errorf("catalogue header is missing the Name column")
	}
	if _, ok := index[colPrice]; !ok {
		return nil, nil, fmt.Errorf("catalogue header is missing the Price column")
	}

	field := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	var rowErrors []string
	line := 1

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		name := field(record, colName)
		rawPrice := field(record, colPrice)
		if name == "" || rawPrice == "" {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: Name and Price are required", line))
			continue
		}

		price, err := decimal.NewFromString(rawPrice)
		if err != nil || price.IsNegative() {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: invalid price %q", line, rawPrice))
			continue
		}

		stock := 0
		if raw := field(record, colStock); raw != "" {
			stock, err = strconv.Atoi(raw)
			if err != nil || stock < 0 {
				rowErrors = append(rowErrors, fmt.Sprintf("line %d: invalid stock %q", line, raw))
				continue
			}
		}

		rows = append(rows, Row{
			Name:        name,
			Description: field(record, colDescription),
			Category:    field(record, colCategory),
			Price:       price,
			Unit:        field(record, colUnit),
			Stock:       stock,
			ImageURL:    field(record, colImageURL),
		})
	}

	return rows, rowErrors, nil
}
