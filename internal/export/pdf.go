// Package export renders a vehicle's printable maintenance record. It
// is a raw history dump sorted by date, not a due-date report: it never
// consults the status engine.
package export

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/vlefranc/carnet/internal/models"
)

const (
	pageLeft    = 20.0
	pageRight   = 190.0
	pageCenter  = 105.0
	pageBreakAt = 270.0
)

// WriteCarnet renders the "Carnet d'Entretien" PDF for a vehicle and
// its full event history to w. The input slice is not mutated.
func WriteCarnet(w io.Writer, vehicle models.Vehicle, events []models.MaintenanceEvent) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	textCentered(pdf, 20, tr("Carnet d'Entretien"))

	pdf.SetFontSize(16)
	textCentered(pdf, 30, tr(vehicle.Name))

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	y := 36.0
	mec := "inconnue"
	if !vehicle.FirstRegistrationDate.IsZero() {
		mec = formatDate(vehicle.FirstRegistrationDate)
	}
	textCentered(pdf, y, tr(fmt.Sprintf("MEC: %s - %s - %s km", mec, vehicle.Fuel, formatKm(vehicle.Km))))
	y += 6
	if vehicle.Plate != "" {
		textCentered(pdf, y, tr(fmt.Sprintf("Immatriculation: %s", vehicle.Plate)))
		y += 6
	}
	if vehicle.ArgusURL != "" {
		textCentered(pdf, y, tr(fmt.Sprintf("Cote Argus: %s", vehicle.ArgusURL)))
		y += 6
	}

	pdf.SetLineWidth(0.5)
	pdf.Line(pageLeft, y+4, pageRight, y+4)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(pageLeft, y+14, tr("Historique des interventions"))

	sorted := append([]models.MaintenanceEvent(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	y += 24
	for _, event := range sorted {
		if y > pageBreakAt {
			pdf.AddPage()
			y = 20
		}
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Text(pageLeft, y, tr(event.Type))

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)

		details := fmt.Sprintf("%s à %s km", formatDate(event.Date), formatKm(event.Km))
		if event.Cost > 0 {
			details += fmt.Sprintf(" - Coût: %s €", formatEuros(event.Cost))
		}
		pdf.Text(pageLeft, y+5, tr(details))

		if event.Notes != "" {
			lines := pdf.SplitText(tr("Notes: "+event.Notes), pageRight-pageLeft)
			for i, line := range lines {
				pdf.Text(pageLeft, y+10+float64(i)*4, line)
			}
			y += float64(len(lines)) * 4
		}

		y += 20
	}

	return pdf.Output(w)
}

func textCentered(pdf *fpdf.Fpdf, y float64, s string) {
	pdf.Text(pageCenter-pdf.GetStringWidth(s)/2, y, s)
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func formatKm(km int) string {
	s := strconv.Itoa(km)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, c)
	}
	return string(out)
}

func formatEuros(amount float64) string {
	return strings.Replace(fmt.Sprintf("%.2f", amount), ".", ",", 1)
}
