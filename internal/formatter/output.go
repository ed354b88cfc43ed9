// Package formatter renders match results for the terminal.
package formatter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"habrscan/internal/models"
	"habrscan/pkg/utils"

	"github.com/mattn/go-runewidth"
)

// Supported output formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
)

// MaxTitleWidth caps the title column of the table format, in display cells.
const MaxTitleWidth = 60

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// FormatLine renders one result as "<time> - <title> - <href>".
func FormatLine(r models.MatchResult) string {
	return fmt.Sprintf("%s - %s - %s", r.Time, r.Title, r.Href)
}

// Write renders results to w in the given format.
func Write(w io.Writer, format string, results []models.MatchResult) error {
	switch format {
	case FormatText, "":
		return WriteText(w, results)
	case FormatTable:
		return WriteTable(w, results)
	case FormatJSON:
		return WriteJSON(w, results)
	}

	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// WriteText writes one line per result.
func WriteText(w io.Writer, results []models.MatchResult) error {
	for _, r := range results {
		if _, err := fmt.Fprintln(w, FormatLine(r)); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}

	return nil
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []models.MatchResult) error {
	if results == nil {
		results = []models.MatchResult{}
	}

	jsonData, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := fmt.Fprintln(w, string(jsonData)); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}

	return nil
}

// WriteTable writes results as a markdown table padded by display width,
// so Cyrillic and wide characters line up.
func WriteTable(w io.Writer, results []models.MatchResult) error {
	strs := utils.NewStringHelper()

	rows := [][]string{{"Time", "Title", "Link"}}
	for _, r := range results {
		rows = append(rows, []string{
			strs.NormalizeWhitespace(r.Time),
			strs.TruncateWidth(strs.NormalizeWhitespace(r.Title), MaxTitleWidth),
			r.Href,
		})
	}

	for _, line := range renderTable(rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
	}

	return nil
}

// renderTable lays out rows with the first row as header.
func renderTable(rows [][]string) []string {
	colWidths := make([]int, len(rows[0]))

	for _, row := range rows {
		for i, cell := range row {
			if width := runewidth.StringWidth(cell); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	// Ensure min width for separator (usually 3 dashes "---")
	for i := range colWidths {
		colWidths[i] = max(colWidths[i], 3)
	}

	result := make([]string, 0, len(rows)+1)

	for i, row := range rows {
		result = append(result, renderRow(row, colWidths))

		if i == 0 {
			sep := make([]string, len(colWidths))
			for j, width := range colWidths {
				sep[j] = strings.Repeat("-", width)
			}

			result = append(result, renderRow(sep, colWidths))
		}
	}

	return result
}

func renderRow(cells []string, colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, content := range cells {
		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(content, colWidths[j]))
		sb.WriteString(" |")
	}

	return sb.String()
}
