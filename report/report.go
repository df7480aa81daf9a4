package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/xuri/excelize/v2"

	"github.com/k12ops/rosterreport/roster"
	"github.com/k12ops/rosterreport/schoolyear"
)

var ErrUnsupportedFormat = errors.New("unsupported report format")
var ErrExportFailed = errors.New("serializing the report failed")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Format selects the artifact serialization.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

const xlsxSheetName = "Roster"

// ParseFormat validates a format name from configuration or a CLI flag.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case FormatCSV, FormatXLSX, FormatJSON:
		return Format(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, raw)
	}
}

// Artifact is a fully serialized report, ready to attach to a notification.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export serializes a roster into an in-memory artifact. A roster with zero
// data rows still exports (headers only); whether that deserves a warning is
// the orchestrator's call, not the exporter's.
func Export(r roster.Roster, year schoolyear.Year, format Format, generatedAt time.Time) (Artifact, error) {
	var empty Artifact

	var data []byte
	var contentType string
	var err error

	switch format {
	case FormatCSV:
		data, err = exportCSV(r)
		contentType = "text/csv"
	case FormatXLSX:
		data, err = exportXLSX(r)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		data, err = exportJSON(r)
		contentType = "application/json"
	default:
		return empty, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err != nil {
		return empty, errors.Join(ErrExportFailed, err)
	}

	return Artifact{
		Filename:    filename(year, format, generatedAt),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// filename follows the Student_Roster_<year>_<date>.<ext> scheme, e.g.
// Student_Roster_2025-2026_20250901.csv.
func filename(year schoolyear.Year, format Format, generatedAt time.Time) string {
	return fmt.Sprintf("Student_Roster_%s_%s.%s", year, generatedAt.Format("20060102"), format)
}

func exportCSV(r roster.Roster) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(r.Columns); err != nil {
		return nil, err
	}

	for _, row := range r.Rows {
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func exportXLSX(r roster.Roster) ([]byte, error) {
	file := excelize.NewFile()

	index, err := file.NewSheet(xlsxSheetName)
	if err != nil {
		return nil, err
	}
	file.SetActiveSheet(index)

	if deleteErr := file.DeleteSheet("Sheet1"); deleteErr != nil {
		return nil, deleteErr
	}

	header := make([]any, len(r.Columns))
	for i, column := range r.Columns {
		header[i] = column
	}
	if writeErr := file.SetSheetRow(xlsxSheetName, "A1", &header); writeErr != nil {
		return nil, writeErr
	}

	headerStyle, styleErr := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if styleErr != nil {
		return nil, styleErr
	}

	lastHeaderCell, cellErr := excelize.CoordinatesToCellName(max(len(r.Columns), 1), 1)
	if cellErr != nil {
		return nil, cellErr
	}
	if styleSetErr := file.SetCellStyle(xlsxSheetName, "A1", lastHeaderCell, headerStyle); styleSetErr != nil {
		return nil, styleSetErr
	}

	for i, row := range r.Rows {
		cells := make([]any, len(row))
		for j, value := range row {
			cells[j] = value
		}

		cell, rowCellErr := excelize.CoordinatesToCellName(1, i+2)
		if rowCellErr != nil {
			return nil, rowCellErr
		}
		if writeErr := file.SetSheetRow(xlsxSheetName, cell, &cells); writeErr != nil {
			return nil, writeErr
		}
	}

	// keep the header visible while scrolling
	if panesErr := file.SetPanes(xlsxSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); panesErr != nil {
		return nil, panesErr
	}

	buf, writeErr := file.WriteToBuffer()
	if writeErr != nil {
		return nil, writeErr
	}

	return buf.Bytes(), nil
}

func exportJSON(r roster.Roster) ([]byte, error) {
	records := make([]map[string]string, 0, len(r.Rows))

	for _, row := range r.Rows {
		record := make(map[string]string, len(r.Columns))
		for i, column := range r.Columns {
			record[column] = row[i]
		}
		records = append(records, record)
	}

	return json.MarshalIndent(records, "", "  ")
}
