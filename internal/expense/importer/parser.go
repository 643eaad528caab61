// Package importer reads expense spreadsheets exported as CSV.
//
// The file needs a header row naming at least the date, description,
// amount and category columns. Columns may appear in any order and the
// header may be in English or Portuguese. Either ';' or ',' separates
// fields; the separator is picked from the header line.
package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kova/internal/encoding"
	"github.com/MrJamesThe3rd/kova/internal/expense"
)

var ErrNoHeader = errors.New("no header row with date, description, amount and category columns")

type column int

const (
	colDate column = iota
	colDescription
	colAmount
	colCategory
	colVendor
)

var headerAliases = map[string]column{
	"date":         colDate,
	"expense_date": colDate,
	"data":         colDate,
	"description":  colDescription,
	"descrição":    colDescription,
	"descricao":    colDescription,
	"amount":       colAmount,
	"montante":     colAmount,
	"valor":        colAmount,
	"category":     colCategory,
	"categoria":    colCategory,
	"vendor":       colVendor,
	"vendor_name":  colVendor,
	"fornecedor":   colVendor,
}

var required = []column{colDate, colDescription, colAmount, colCategory}

var categoryAliases = map[string]expense.Category{
	"materiais":   expense.CategoryMaterials,
	"material":    expense.CategoryMaterials,
	"mão de obra": expense.CategoryLabor,
	"mao de obra": expense.CategoryLabor,
	"labour":      expense.CategoryLabor,
	"transporte":  expense.CategoryTransport,
	"outros":      expense.CategoryOther,
	"outro":       expense.CategoryOther,
}

// dateLayouts are tried in order. The first is the canonical form.
var dateLayouts = []string{time.DateOnly, "02-01-2006", "02/01/2006"}

type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// Parse decodes r to UTF-8 and returns one row per non-blank data line.
// Values are normalised but not validated; the expense service decides
// what is acceptable and reports problems by line.
func (p *Parser) Parse(r io.Reader) ([]expense.Row, error) {
	utf8r, _, err := encoding.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding file: %w", err)
	}

	br := bufio.NewReader(utf8r)

	sep, err := sniffSeparator(br)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoHeader
		}

		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var rows []expense.Row

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading rows: %w", err)
		}

		if blank(record) {
			continue
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, expense.Row{Line: line, Params: toParams(cols, record)})
	}

	return rows, nil
}

// sniffSeparator picks ';' or ',' by counting them on the first line.
func sniffSeparator(br *bufio.Reader) (rune, error) {
	head, err := br.Peek(br.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, fmt.Errorf("reading header: %w", err)
	}

	first, _, _ := strings.Cut(string(head), "\n")

	if strings.Count(first, ",") > strings.Count(first, ";") {
		return ',', nil
	}

	return ';', nil
}

func mapHeader(header []string) (map[column]int, error) {
	cols := make(map[column]int)

	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if c, ok := headerAliases[key]; ok {
			if _, seen := cols[c]; !seen {
				cols[c] = i
			}
		}
	}

	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return nil, ErrNoHeader
		}
	}

	return cols, nil
}

func toParams(cols map[column]int, record []string) expense.CreateParams {
	params := expense.CreateParams{
		Description: cell(record, cols, colDescription),
		Category:    parseCategory(cell(record, cols, colCategory)),
		Date:        normaliseDate(cell(record, cols, colDate)),
	}

	// An unparseable amount stays zero and is rejected by validation.
	if amount, err := parseAmount(cell(record, cols, colAmount)); err == nil {
		params.Amount = amount
	}

	if v := cell(record, cols, colVendor); v != "" {
		params.Vendor = &v
	}

	return params
}

func cell(record []string, cols map[column]int, c column) string {
	idx, ok := cols[c]
	if !ok || idx >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[idx])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}

	return true
}

// parseCategory maps a cell to a category. A blank cell means other; an
// unknown name is kept as-is so validation can reject it.
func parseCategory(s string) expense.Category {
	key := strings.ToLower(s)
	if key == "" {
		return expense.CategoryOther
	}

	if c, ok := categoryAliases[key]; ok {
		return c
	}

	return expense.Category(key)
}

// normaliseDate rewrites day-first dates as YYYY-MM-DD. Anything it cannot
// read is returned unchanged.
func normaliseDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}

	return s
}

// parseAmount accepts "1234.56", "1234,56" and "1.234,56". A comma is
// taken as the decimal separator when present.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "€"))
	clean = strings.ReplaceAll(clean, " ", "")

	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	return decimal.NewFromString(clean)
}
