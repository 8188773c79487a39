package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"riskdash/internal/model"
)

// ErrNoData is returned when the engine is handed an empty record set. Every
// downstream ratio would be undefined, so this is a terminal condition rather
// than a silent zeroed report.
var ErrNoData = errors.New("no customer data")

type bucket struct {
	min, max float64
	label    string
}

var invoiceRanges = []bucket{
	{0, 10000, "$0 - $10K"},
	{10000, 50000, "$10K - $50K"},
	{50000, 100000, "$50K - $100K"},
	{100000, 500000, "$100K - $500K"},
	{500000, math.Inf(1), "$500K+"},
}

var pastDueRanges = []bucket{
	{0, 5, "0-5%"},
	{5, 10, "5-10%"},
	{10, 20, "10-20%"},
	{20, 30, "20-30%"},
	{30, 50, "30-50%"},
	{50, math.Inf(1), "50%+"},
}

// Hypothetical past-due-30 cut-points for the policy simulation, in percent.
var thresholds = []float64{5, 10, 15, 20, 25, 30}

// pct guards every percentage in the report: 0 on a zero denominator, never
// NaN.
func pct(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// GenerateReport computes the full risk analysis over the unfiltered record
// set. Records must already be on the 0-100 display scale.
func GenerateReport(records []model.CustomerRiskRecord) (*model.RiskAnalysisReport, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}

	total := len(records)
	var totalInvoice float64
	for _, r := range records {
		totalInvoice += r.InvoiceAmount
	}

	// Portfolio averages weighted by invoice share: a big customer moves the
	// number proportionally to exposure.
	var weightedPastDue, weightedPastDue30 float64
	if totalInvoice > 0 {
		for _, r := range records {
			w := r.InvoiceAmount / totalInvoice
			weightedPastDue += r.PastDuePct * w
			weightedPastDue30 += r.PastDue30Pct * w
		}
	}

	report := &model.RiskAnalysisReport{
		Summary: model.ReportSummary{
			TotalCustomers:     total,
			TotalInvoiceAmount: totalInvoice,
			AveragePastDue:     weightedPastDue,
			AveragePastDue30:   weightedPastDue30,
			RiskDistribution: model.SegmentedDistribution{
				LowRisk:    segment(records, model.RiskLow, total, totalInvoice),
				MediumRisk: segment(records, model.RiskMedium, total, totalInvoice),
				HighRisk:   segment(records, model.RiskHigh, total, totalInvoice),
			},
		},
		RiskByInvoiceAmount: riskByInvoiceAmount(records),
		PastDueDistribution: pastDueDistribution(records, total, totalInvoice),
		ThresholdAnalysis:   thresholdSweep(records),
		TopRiskCustomers:    topRiskProjection(records, 20),
		Metadata: model.ReportMetadata{
			GeneratedAt: time.Now().UTC(),
			DataSource:  "sqlite: customer_risk_classifications",
			BasedOn:     "risk_category_label from customer data",
		},
	}
	return report, nil
}

// GenerateRiskData computes the light variant: per-category averages, the
// threshold sweep, and up to ten top high-risk records.
func GenerateRiskData(records []model.CustomerRiskRecord) (*model.RiskData, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}

	var pastDueData []model.CategoryAverages
	for _, label := range model.RiskCategories {
		row := categoryAverages(records, label)
		if row.Count == 0 {
			continue
		}
		pastDueData = append(pastDueData, row)
	}

	return &model.RiskData{
		PastDueData:       pastDueData,
		ThresholdAnalysis: thresholdSweep(records),
		HighRiskCustomers: TopRiskCustomers(records, 10),
	}, nil
}

func segment(records []model.CustomerRiskRecord, label string, total int, totalInvoice float64) model.RiskSegment {
	var count int
	var amount, sumPastDue, sumPastDue30 float64
	for _, r := range records {
		if r.RiskCategory != label {
			continue
		}
		count++
		amount += r.InvoiceAmount
		sumPastDue += r.PastDuePct
		sumPastDue30 += r.PastDue30Pct
	}
	seg := model.RiskSegment{
		Count:             count,
		Percentage:        pct(float64(count), float64(total)),
		InvoiceAmount:     amount,
		InvoicePercentage: pct(amount, totalInvoice),
	}
	if count > 0 {
		seg.AvgPastDue = sumPastDue / float64(count)
		seg.AvgPastDue30 = sumPastDue30 / float64(count)
	}
	return seg
}

func categoryAverages(records []model.CustomerRiskRecord, label string) model.CategoryAverages {
	row := model.CategoryAverages{Risk: label}
	var sumPastDue, sumPastDue30 float64
	for _, r := range records {
		if r.RiskCategory != label {
			continue
		}
		row.Count++
		row.InvoiceAmount += r.InvoiceAmount
		sumPastDue += r.PastDuePct
		sumPastDue30 += r.PastDue30Pct
	}
	if row.Count > 0 {
		row.TotalPastDue = sumPastDue / float64(row.Count)
		row.PastDue30 = sumPastDue30 / float64(row.Count)
	}
	return row
}

func riskByInvoiceAmount(records []model.CustomerRiskRecord) []model.InvoiceRangeBreakdown {
	out := make([]model.InvoiceRangeBreakdown, 0, len(invoiceRanges))
	for _, b := range invoiceRanges {
		row := model.InvoiceRangeBreakdown{Range: b.label}
		for _, r := range records {
			if r.InvoiceAmount < b.min || r.InvoiceAmount >= b.max {
				continue
			}
			row.Total++
			switch r.RiskCategory {
			case model.RiskLow:
				row.LowRisk++
			case model.RiskMedium:
				row.MediumRisk++
			case model.RiskHigh:
				row.HighRisk++
			}
		}
		row.LowRiskPct = pct(float64(row.LowRisk), float64(row.Total))
		row.MediumRiskPct = pct(float64(row.MediumRisk), float64(row.Total))
		row.HighRiskPct = pct(float64(row.HighRisk), float64(row.Total))
		out = append(out, row)
	}
	return out
}

func pastDueDistribution(records []model.CustomerRiskRecord, total int, totalInvoice float64) []model.PastDueBand {
	out := make([]model.PastDueBand, 0, len(pastDueRanges))
	for _, b := range pastDueRanges {
		row := model.PastDueBand{Range: b.label}
		for _, r := range records {
			if r.PastDue30Pct < b.min || r.PastDue30Pct >= b.max {
				continue
			}
			row.CustomerCount++
			row.InvoiceAmount += r.InvoiceAmount
		}
		row.CustomerPct = pct(float64(row.CustomerCount), float64(total))
		row.InvoicePct = pct(row.InvoiceAmount, totalInvoice)
		out = append(out, row)
	}
	return out
}

// thresholdSweep reclassifies every record against each cut-point t:
// Low below t/2, Medium in [t/2, t), High at or above t.
func thresholdSweep(records []model.CustomerRiskRecord) []model.ThresholdScenario {
	total := len(records)
	out := make([]model.ThresholdScenario, 0, len(thresholds))
	for _, t := range thresholds {
		row := model.ThresholdScenario{
			Threshold: fmt.Sprintf("%.0f%%", t),
			Total:     total,
		}
		for _, r := range records {
			switch {
			case r.PastDue30Pct < t/2:
				row.LowRisk++
			case r.PastDue30Pct < t:
				row.MediumRisk++
			default:
				row.HighRisk++
			}
		}
		row.LowRiskPct = pct(float64(row.LowRisk), float64(total))
		row.MediumRiskPct = pct(float64(row.MediumRisk), float64(total))
		row.HighRiskPct = pct(float64(row.HighRisk), float64(total))
		out = append(out, row)
	}
	return out
}

// TopRiskCustomers ranks High Risk records worst-first: past-due-30
// descending, ties broken by invoice amount descending.
func TopRiskCustomers(records []model.CustomerRiskRecord, n int) []model.CustomerRiskRecord {
	var high []model.CustomerRiskRecord
	for _, r := range records {
		if r.RiskCategory == model.RiskHigh {
			high = append(high, r)
		}
	}
	sort.SliceStable(high, func(i, j int) bool {
		if high[i].PastDue30Pct == high[j].PastDue30Pct {
			return high[i].InvoiceAmount > high[j].InvoiceAmount
		}
		return high[i].PastDue30Pct > high[j].PastDue30Pct
	})
	if len(high) > n {
		high = high[:n]
	}
	return high
}

func topRiskProjection(records []model.CustomerRiskRecord, n int) []model.TopRiskCustomer {
	top := TopRiskCustomers(records, n)
	out := make([]model.TopRiskCustomer, 0, len(top))
	for _, r := range top {
		out = append(out, model.TopRiskCustomer{
			CustomerID:    r.CustomerID,
			InvoiceAmount: r.InvoiceAmount,
			PastDue30:     r.PastDue30Pct,
			TotalPastDue:  r.PastDuePct,
		})
	}
	return out
}
