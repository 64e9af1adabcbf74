package main

import (
	"bytes"
	"fmt"
	"time"

	"mechlog/pkg/attendance"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	attendanceSheet = "Asistencia"
	jobsSheet       = "Trabajos"
)

// buildWorkbook renders a report as an xlsx workbook with one sheet for
// attendance (plus a totals row) and one for jobs.
func buildWorkbook(rep *attendance.Report, loc *time.Location) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", attendanceSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(jobsSheet); err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	rows := [][]interface{}{{"Fecha", "Mecánico", "Entrada", "Salida", "Horas normales", "Horas extra", "Horas débito"}}
	for _, r := range rep.Attendance {
		name := ""
		if r.User != nil {
			name = r.User.Name
		}
		out := ""
		if r.CheckOut != nil {
			out = inLoc(*r.CheckOut, loc).Format("15:04")
		}
		rows = append(rows, []interface{}{r.Date, name, inLoc(r.CheckIn, loc).Format("15:04"), out, r.NormalHours, r.ExtraHours, r.DebitHours})
	}
	rows = append(rows, []interface{}{"Total", "", "", "", rep.Totals.Normal, rep.Totals.Extras, rep.Totals.Debits})
	if err := writeRows(f, attendanceSheet, rows); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(attendanceSheet, 1, 1, headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(attendanceSheet, len(rows), len(rows), headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(attendanceSheet, "A", "G", 15); err != nil {
		return nil, err
	}

	rows = [][]interface{}{{"Fecha", "Mecánico", "Placa", "Tipo", "Descripción"}}
	for _, j := range rep.Jobs {
		name := ""
		if j.User != nil {
			name = j.User.Name
		}
		rows = append(rows, []interface{}{j.Date, name, j.Plate, j.JobType, j.Description})
	}
	if err := writeRows(f, jobsSheet, rows); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(jobsSheet, 1, 1, headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(jobsSheet, "A", "D", 15); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(jobsSheet, "E", "E", 50); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing Excel file to buffer: %w", err)
	}
	return &buf, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func inLoc(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}
