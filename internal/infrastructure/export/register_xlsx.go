// Package export renders the register and alert lists as spreadsheets and PDF reports
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/application/service"
	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the register workbook
const (
	RegisterSheet = "Operaciones"
	RateSheet     = "TRM"
)

// Register column headers. The first nine are stored fields and are read back on import.
const (
	colID                = "Consecutivo"
	colMode              = "Modalidad"
	colDirection         = "Tipo"
	colClient            = "Cliente"
	colArrival           = "FechaLlegada"
	colCertificationDate = "FechaCertificacionFletes"
	colCertificationNote = "EstadoCertificacionFletes"
	colReleaseDate       = "FechaSolicitarLiberacion"
	colReleaseNote       = "EstadoSolicitarLiberacion"
)

var registerHeaders = []string{
	colID,
	colMode,
	colDirection,
	colClient,
	colArrival,
	colCertificationDate,
	colCertificationNote,
	colReleaseDate,
	colReleaseNote,
	"DiasParaLlegada",
	"MejorDiaFacturar",
	"TRMSugerida",
}

// ErrMissingColumn is returned when an imported sheet lacks a required header
var ErrMissingColumn = errors.New("missing column")

// ImportRow is one data row of an imported register, numbered as in the sheet
type ImportRow struct {
	Line  int
	Input service.RegisterInput
}

// BuildRegisterXLSX renders the board and the TRM history as a two-sheet workbook
func BuildRegisterXLSX(rows []service.BoardRow, samples []entity.RateSample) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RegisterSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(RateSheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(RegisterSheet, "A1", &registerHeaders); err != nil {
		return nil, err
	}
	for i, row := range rows {
		sh := row.Shipment
		values := []interface{}{
			sh.ID,
			string(sh.Mode),
			string(sh.Direction),
			sh.Client,
			formatDay(sh.ArrivalDate),
			formatDay(sh.Certification.Date),
			milestoneText(sh.Certification),
			formatDay(sh.Release.Date),
			milestoneText(sh.Release),
			row.DaysToArrival,
			"Sin datos",
			0.0,
		}
		if row.Advice.HasData {
			values[10] = formatDay(row.Advice.BestDate)
			values[11] = row.Advice.BestRate
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(RegisterSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	_ = f.SetCellValue(RateSheet, "A1", "fecha")
	_ = f.SetCellValue(RateSheet, "B1", "trm")
	for i, s := range samples {
		row := i + 2
		_ = f.SetCellValue(RateSheet, fmt.Sprintf("A%d", row), formatDay(s.Date))
		_ = f.SetCellValue(RateSheet, fmt.Sprintf("B%d", row), s.Value)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// milestoneText keeps the note staff typed; without one the stored status is written
func milestoneText(m entity.Milestone) string {
	if m.Note != "" {
		return m.Note
	}
	if m.Status == entity.StatusDone {
		return "done"
	}
	return ""
}

// ParseRegisterXLSX reads the Operaciones sheet (or the first sheet) of an uploaded
// workbook. Headers are matched by name; blank rows are skipped.
func ParseRegisterXLSX(r io.Reader) ([]ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := RegisterSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return []ImportRow{}, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{colID, colMode, colDirection, colClient, colArrival} {
		if _, ok := index[strings.ToLower(required)]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := index[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]ImportRow, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		out = append(out, ImportRow{
			Line: n + 2,
			Input: service.RegisterInput{
				ID:                cell(row, colID),
				Mode:              cell(row, colMode),
				Direction:         cell(row, colDirection),
				Client:            cell(row, colClient),
				ArrivalDate:       normalizeDay(cell(row, colArrival)),
				CertificationDate: normalizeDay(cell(row, colCertificationDate)),
				CertificationNote: cell(row, colCertificationNote),
				ReleaseDate:       normalizeDay(cell(row, colReleaseDate)),
				ReleaseNote:       cell(row, colReleaseNote),
			},
		})
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// importLayouts are the date renderings spreadsheets commonly produce
var importLayouts = []string{
	entity.DateLayout,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02/01/2006",
	"01-02-06",
}

// normalizeDay rewrites a recognised date to YYYY-MM-DD and leaves anything else
// untouched so validation can report it
func normalizeDay(s string) string {
	if s == "" {
		return s
	}
	for _, layout := range importLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(entity.DateLayout)
		}
	}
	return s
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(entity.DateLayout)
}
