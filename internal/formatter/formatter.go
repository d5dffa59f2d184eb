// package formatter provides functions to export merged watch-list records to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/Sittravell/MalTrackarr/internal/models"
)

// ExportToCSV converts records to CSV format with columns: MalID, Title, TvdbID, ImdbID
func ExportToCSV(records []models.OutputRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"MalID", "Title", "TvdbID", "ImdbID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.MalID),
			record.Title,
			tvdbString(record),
			record.IMDBID,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts records to a Markdown table
func ExportToMarkdown(records []models.OutputRecord, heading string) []byte {
	var buf bytes.Buffer

	if heading != "" {
		buf.WriteString(fmt.Sprintf("# %s\n\n", heading))
	}
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(records)))

	buf.WriteString("| MAL | Title | TVDB | IMDB |\n")
	buf.WriteString("| --- | --- | --- | --- |\n")
	for _, record := range records {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n",
			record.MalID, record.Title, tvdbString(record), record.IMDBID))
	}

	return buf.Bytes()
}

// ExportToPlainText converts records to a numbered plain-text listing
func ExportToPlainText(records []models.OutputRecord) []byte {
	var buf bytes.Buffer

	for i, record := range records {
		buf.WriteString(fmt.Sprintf("%d. %s (mal %d)\n", i+1, record.Title, record.MalID))
		if record.TVDBID != nil {
			buf.WriteString(fmt.Sprintf("   TVDB: %d\n", *record.TVDBID))
		}
		if record.IMDBID != "" {
			buf.WriteString(fmt.Sprintf("   IMDB: %s\n", record.IMDBID))
		}
	}

	return buf.Bytes()
}

func tvdbString(record models.OutputRecord) string {
	if record.TVDBID == nil {
		return ""
	}
	return strconv.Itoa(*record.TVDBID)
}
