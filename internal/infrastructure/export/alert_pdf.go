package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/jung-kurt/gofpdf"
)

var alertKindLabels = map[entity.AlertKind]string{
	entity.AlertArrivalToday:     "Llegada",
	entity.AlertCertificationDue: "Certificación de fletes",
	entity.AlertReleaseDue:       "Solicitar liberación",
	entity.AlertInvoiceDay:       "Día sugerido para facturar",
}

// BuildAlertPDF renders the alert list of one window as a table
func BuildAlertPDF(window string, generatedAt time.Time, alerts []entity.Alert) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Alertas de operaciones")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Ventana: %s", window))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generado: %s", generatedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	widths := []float64{28, 50, 30, 52, 28}
	headers := []string{"Fecha", "Tipo", "Consecutivo", "Cliente", "Arribo"}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	if len(alerts) == 0 {
		pdf.CellFormat(sum(widths), 6, tr("Sin alertas próximas"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	for _, a := range alerts {
		label, ok := alertKindLabels[a.Kind]
		if !ok {
			label = string(a.Kind)
		}
		pdf.CellFormat(widths[0], 6, formatDay(a.EventDate), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, tr(label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, tr(a.ShipmentID), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, tr(a.Client), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 6, formatDay(a.ArrivalDate), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}
