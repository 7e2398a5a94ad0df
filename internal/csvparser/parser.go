// =============================================================================
// Catalog Reconciler - CSV Catalog Parser
// =============================================================================
//
// This module reads a pricing catalog exported as CSV. It handles:
//   - Different delimiters (comma, semicolon, tab, pipe)
//   - Legacy single-byte encodings (Windows-1252, ISO-8859-1)
//   - A UTF-8 byte order mark
//   - A header row below a title block
//
// Every field is text in CSV, so numeric-looking fields are turned into
// number cells exactly the way an XLSX raw value is.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/catalog-reconciler/internal/config"
	"github.com/ginjaninja78/catalog-reconciler/internal/types"
)

// =============================================================================
// PARSING FUNCTIONS
// =============================================================================

// Parse reads a CSV catalog file.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV parsing settings.
//
// RETURNS:
//   - The catalog, named after the file.
//   - An error if the file cannot be read or decoded.
func Parse(filePath string, settings config.CSVSettings) (*types.Catalog, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	cat, err := ParseReader(file, filepath.Base(filePath), settings)
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// ParseReader reads a CSV catalog from r.
func ParseReader(r io.Reader, name string, settings config.CSVSettings) (*types.Catalog, error) {
	decoder, err := decoderFor(settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(transform.NewReader(bufio.NewReader(r), decoder.NewDecoder()))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	cat := &types.Catalog{Name: name}

	headerRow := settings.HeaderRow
	if headerRow <= 0 {
		headerRow = 1
	}
	start := headerRow - 1
	if start >= len(allRows) {
		return cat, nil
	}

	cat.Header = make([]string, len(allRows[start]))
	for i, h := range allRows[start] {
		cat.Header[i] = strings.TrimSpace(h)
	}

	for _, raw := range allRows[start+1:] {
		raw = trimTrailingEmpty(raw)
		cells := make([]types.Cell, len(raw))
		for i, value := range raw {
			cells[i] = types.ParseCell(value)
		}
		cat.Rows = append(cat.Rows, types.NewRow(cells...))
	}

	return cat, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	reader.Comma = Delimiter(settings.Delimiter)

	// Catalog rows carry anywhere from one to many cells.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// Delimiter maps a configured delimiter name to its rune.
func Delimiter(name string) rune {
	switch name {
	case "\\t", "\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon":
		return ';'
	default:
		if len(name) > 0 {
			return rune(name[0])
		}
		return ','
	}
}

// decoderFor resolves an encoding name. UTF-8 input may start with a BOM.
func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "UTF-8", "UTF8":
		return unicode.UTF8BOM, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// trimTrailingEmpty drops empty trailing fields, matching how spreadsheet
// rows end at their last populated cell.
func trimTrailingEmpty(row []string) []string {
	n := len(row)
	for n > 0 && strings.TrimSpace(row[n-1]) == "" {
		n--
	}
	return row[:n]
}
