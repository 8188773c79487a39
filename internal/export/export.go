package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"riskdash/internal/analysis"
	"riskdash/internal/model"
)

// CSVHeader is the fixed column order for customer exports.
var CSVHeader = []string{
	"Customer ID",
	"Risk Level",
	"Invoice Amount ($)",
	"Past Due > 30 Days (%)",
	"Total Past Due (%)",
}

// WriteCSV serializes records in the fixed column order, numbers to two
// decimals. Any filtering happens before the records get here.
func WriteCSV(w io.Writer, records []model.CustomerRiskRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.CustomerID,
			r.RiskCategory,
			strconv.FormatFloat(r.InvoiceAmount, 'f', 2, 64),
			strconv.FormatFloat(r.PastDue30Pct, 'f', 2, 64),
			strconv.FormatFloat(r.PastDuePct, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePDF renders the multi-section report: title, summary statistics, risk
// distribution, and the top-10 high-risk table, with a numbered footer on
// every page.
func WritePDF(w io.Writer, records []model.CustomerRiskRecord, stats model.DashboardStats) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, "Confidential - For Internal Use Only", "", 0, "C", false, 0, "")
		pdf.SetY(-15)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Customer Risk Analysis Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 8, "Generated on: "+time.Now().Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	sectionTitle(pdf, "Summary Statistics")
	table(pdf,
		[]string{"Metric", "Value"},
		[][]string{
			{"Total Customers", strconv.Itoa(stats.TotalCustomers)},
			{"High Risk Customers", fmt.Sprintf("%.1f%%", stats.HighRiskPercentage)},
			{"Average Past Due", fmt.Sprintf("%.1f%%", stats.AveragePastDue)},
			{"Total Invoice Amount", fmt.Sprintf("$%.2f", stats.TotalInvoiceAmount)},
		},
		[]float64{80, 60})

	sectionTitle(pdf, "Risk Distribution")
	var distRows [][]string
	for _, d := range stats.RiskDistribution {
		share := 0.0
		if stats.TotalCustomers > 0 {
			share = float64(d.Count) / float64(stats.TotalCustomers) * 100
		}
		distRows = append(distRows, []string{d.Risk, strconv.Itoa(d.Count), fmt.Sprintf("%.1f%%", share)})
	}
	table(pdf, []string{"Risk Level", "Count", "Percentage"}, distRows, []float64{60, 40, 40})

	sectionTitle(pdf, "Top 10 High Risk Customers")
	var topRows [][]string
	for _, r := range analysis.TopRiskCustomers(records, 10) {
		topRows = append(topRows, []string{
			r.CustomerID,
			r.RiskCategory,
			fmt.Sprintf("$%.2f", r.InvoiceAmount),
			fmt.Sprintf("%.1f%%", r.PastDue30Pct),
			fmt.Sprintf("%.1f%%", r.PastDuePct),
		})
	}
	table(pdf,
		[]string{"Customer ID", "Risk Level", "Invoice Amount", "Past Due > 30 Days", "Total Past Due"},
		topRows,
		[]float64{48, 30, 40, 36, 30})

	return pdf.Output(w)
}

func sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
}

func table(pdf *fpdf.Fpdf, header []string, rows [][]string, widths []float64) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(66, 66, 74)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, row := range rows {
		for i, cell := range row {
			pdf.CellFormat(widths[i], 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}
