package model

import "time"

// Risk category labels assigned by the upstream prediction service.
const (
	RiskLow    = "Low Risk"
	RiskMedium = "Medium Risk"
	RiskHigh   = "High Risk"
)

// RiskCategories lists the valid labels in display order.
var RiskCategories = []string{RiskLow, RiskMedium, RiskHigh}

// ValidRiskCategory reports whether label is one of the three known labels.
// Records with any other label are dropped from category-keyed aggregations.
func ValidRiskCategory(label string) bool {
	for _, c := range RiskCategories {
		if c == label {
			return true
		}
	}
	return false
}

// CustomerRiskRecord is one classified customer as written by the prediction
// pipeline. The store persists PastDue30Pct and PastDuePct as 0-1 ratios;
// the serving boundary converts to the 0-100 display scale exactly once via
// Rescaled.
type CustomerRiskRecord struct {
	ID            int64     `json:"id"`
	CustomerID    string    `json:"customer_id"`
	RiskCategory  string    `json:"risk_category_label"`
	InvoiceAmount float64   `json:"invoice_amount"`
	PastDue30Pct  float64   `json:"past_due_30_pct"`
	PastDuePct    float64   `json:"past_due_pct"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Rescaled returns a copy with the past-due ratios converted to percentages.
func (c CustomerRiskRecord) Rescaled() CustomerRiskRecord {
	c.PastDue30Pct *= 100
	c.PastDuePct *= 100
	return c
}

// RescaleAll converts a whole record slice to the display scale.
func RescaleAll(records []CustomerRiskRecord) []CustomerRiskRecord {
	out := make([]CustomerRiskRecord, len(records))
	for i, r := range records {
		out[i] = r.Rescaled()
	}
	return out
}

// RiskDistribution is one histogram entry of the dashboard stats.
type RiskDistribution struct {
	Risk  string `json:"risk"`
	Count int    `json:"count"`
}

// DashboardStats holds the aggregate numbers shown on the dashboard header.
// AveragePastDue here is the simple unweighted mean from the store's group
// query; the analysis report carries the invoice-weighted variant. Both views
// are intentional and must not be conflated.
type DashboardStats struct {
	TotalCustomers     int                `json:"totalCustomers"`
	HighRiskPercentage float64            `json:"highRiskPercentage"`
	AveragePastDue     float64            `json:"averagePastDue"`
	TotalInvoiceAmount float64            `json:"totalInvoiceAmount"`
	RiskDistribution   []RiskDistribution `json:"riskDistribution"`
}

// RiskSegment is the per-category block of the report summary.
type RiskSegment struct {
	Count             int     `json:"count"`
	Percentage        float64 `json:"percentage"`
	InvoiceAmount     float64 `json:"invoiceAmount"`
	InvoicePercentage float64 `json:"invoicePercentage"`
	AvgPastDue        float64 `json:"avgPastDue"`
	AvgPastDue30      float64 `json:"avgPastDue30"`
}

type SegmentedDistribution struct {
	LowRisk    RiskSegment `json:"lowRisk"`
	MediumRisk RiskSegment `json:"mediumRisk"`
	HighRisk   RiskSegment `json:"highRisk"`
}

// ReportSummary carries the portfolio-level numbers. AveragePastDue and
// AveragePastDue30 weight each customer by invoice share.
type ReportSummary struct {
	TotalCustomers     int                   `json:"totalCustomers"`
	TotalInvoiceAmount float64               `json:"totalInvoiceAmount"`
	AveragePastDue     float64               `json:"averagePastDue"`
	AveragePastDue30   float64               `json:"averagePastDue30"`
	RiskDistribution   SegmentedDistribution `json:"riskDistribution"`
}

// InvoiceRangeBreakdown is the risk mix within one invoice-amount bucket.
type InvoiceRangeBreakdown struct {
	Range         string  `json:"range"`
	Total         int     `json:"total"`
	LowRisk       int     `json:"lowRisk"`
	LowRiskPct    float64 `json:"lowRiskPct"`
	MediumRisk    int     `json:"mediumRisk"`
	MediumRiskPct float64 `json:"mediumRiskPct"`
	HighRisk      int     `json:"highRisk"`
	HighRiskPct   float64 `json:"highRiskPct"`
}

// PastDueBand is one bucket of the past-due-30 distribution.
type PastDueBand struct {
	Range         string  `json:"range"`
	CustomerCount int     `json:"customerCount"`
	CustomerPct   float64 `json:"customerPct"`
	InvoiceAmount float64 `json:"invoiceAmount"`
	InvoicePct    float64 `json:"invoicePct"`
}

// ThresholdScenario reclassifies every customer against a hypothetical
// past-due-30 cut-point, independent of the stored label.
type ThresholdScenario struct {
	Threshold     string  `json:"threshold"`
	LowRisk       int     `json:"lowRisk"`
	LowRiskPct    float64 `json:"lowRiskPct"`
	MediumRisk    int     `json:"mediumRisk"`
	MediumRiskPct float64 `json:"mediumRiskPct"`
	HighRisk      int     `json:"highRisk"`
	HighRiskPct   float64 `json:"highRiskPct"`
	Total         int     `json:"total"`
}

// TopRiskCustomer is the projected row of the top-risk ranking.
type TopRiskCustomer struct {
	CustomerID    string  `json:"customer_id"`
	InvoiceAmount float64 `json:"invoice_amount"`
	PastDue30     float64 `json:"past_due_30"`
	TotalPastDue  float64 `json:"total_past_due"`
}

type ReportMetadata struct {
	GeneratedAt time.Time `json:"generatedAt"`
	DataSource  string    `json:"dataSource"`
	BasedOn     string    `json:"basedOn"`
}

// RiskAnalysisReport is the full derived report. Computed per request, never
// persisted.
type RiskAnalysisReport struct {
	Summary             ReportSummary           `json:"summary"`
	RiskByInvoiceAmount []InvoiceRangeBreakdown `json:"riskByInvoiceAmount"`
	PastDueDistribution []PastDueBand           `json:"pastDueDistribution"`
	ThresholdAnalysis   []ThresholdScenario     `json:"thresholdAnalysis"`
	TopRiskCustomers    []TopRiskCustomer       `json:"topRiskCustomers"`
	Metadata            ReportMetadata          `json:"metadata"`
}

// CategoryAverages is one per-label row of the light risk-data payload.
type CategoryAverages struct {
	Risk          string  `json:"risk"`
	PastDue30     float64 `json:"pastDue30"`
	TotalPastDue  float64 `json:"totalPastDue"`
	InvoiceAmount float64 `json:"invoiceAmount"`
	Count         int     `json:"count"`
}

// RiskData is the lighter variant of the report used by the charts page.
type RiskData struct {
	PastDueData       []CategoryAverages   `json:"pastDueData"`
	ThresholdAnalysis []ThresholdScenario  `json:"thresholdAnalysis"`
	HighRiskCustomers []CustomerRiskRecord `json:"highRiskCustomers"`
}
