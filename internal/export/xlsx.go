// Package export renders reports as spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"sort"

	"empleos/internal/models"
	"empleos/internal/observability"

	"github.com/xuri/excelize/v2"
)

const (
	// ContentTypeXLSX is the media type of Office Open XML workbooks.
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SheetSummary = "Resumen"
	SheetTrend   = "Tendencia"
)

// Filename is the attachment name for report.
func Filename(report *models.Report) string {
	return fmt.Sprintf("reporte_%s_%s_%s.xlsx", report.Type, report.FromDate, report.ToDate)
}

// XLSX writes report as a workbook with a summary sheet and a trend sheet.
func XLSX(report *models.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetTrend); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	summary := [][]any{
		{"Reporte", string(report.Type)},
		{"Agrupación", string(report.GroupBy)},
		{"Desde", report.FromDate},
		{"Hasta", report.ToDate},
		{},
		{"Indicador", "Valor"},
	}
	headerRow := len(summary)
	summary = append(summary, flatten("", report.Summary)...)
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetSummary, cell(1, headerRow), cell(2, headerRow), bold); err != nil {
		return nil, err
	}

	trend := [][]any{{"Periodo", "Cantidad"}}
	for _, p := range report.Trend {
		trend = append(trend, []any{p.Period, p.Count})
	}
	if err := writeRows(f, SheetTrend, trend); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetTrend, "A1", "B1", bold); err != nil {
		return nil, err
	}
	for _, sheet := range []string{SheetSummary, SheetTrend} {
		if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	observability.ReportExports.WithLabelValues("xlsx").Inc()
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(sheet, cell(1, i+1), &row); err != nil {
			return err
		}
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// flatten turns nested count maps into sorted key/value rows, e.g.
// by_type.company.
func flatten(prefix string, values map[string]any) [][]any {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rows [][]any
	for _, k := range keys {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		switch v := values[k].(type) {
		case map[string]any:
			rows = append(rows, flatten(name, v)...)
		case map[string]int64:
			nested := make(map[string]any, len(v))
			for nk, nv := range v {
				nested[nk] = nv
			}
			rows = append(rows, flatten(name, nested)...)
		default:
			rows = append(rows, []any{name, v})
		}
	}
	return rows
}
