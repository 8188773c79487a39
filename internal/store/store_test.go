package store

import (
	"math"
	"path/filepath"
	"testing"

	"riskdash/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store, records ...model.CustomerRiskRecord) {
	t.Helper()
	for _, r := range records {
		if err := s.Insert(r); err != nil {
			t.Fatalf("insert %s: %v", r.CustomerID, err)
		}
	}
}

func TestFindSortAndPagination(t *testing.T) {
	s := newTestStore(t)
	seed(t, s,
		model.CustomerRiskRecord{CustomerID: "c1", RiskCategory: model.RiskLow, PastDue30Pct: 0.01},
		model.CustomerRiskRecord{CustomerID: "c2", RiskCategory: model.RiskHigh, PastDue30Pct: 0.50},
		model.CustomerRiskRecord{CustomerID: "c3", RiskCategory: model.RiskMedium, PastDue30Pct: 0.20},
		model.CustomerRiskRecord{CustomerID: "c4", RiskCategory: model.RiskHigh, PastDue30Pct: 0.40},
		model.CustomerRiskRecord{CustomerID: "c5", RiskCategory: model.RiskLow, PastDue30Pct: 0.05},
	)

	page1, err := s.Find(Filter{}, 1, 2)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(page1) != 2 || page1[0].CustomerID != "c2" || page1[1].CustomerID != "c4" {
		t.Fatalf("page 1 = %+v, want c2,c4 (past_due_30 desc)", page1)
	}

	page3, err := s.Find(Filter{}, 3, 2)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(page3) != 1 || page3[0].CustomerID != "c1" {
		t.Fatalf("page 3 = %+v, want just c1", page3)
	}

	// Out-of-range values fall back to page 1 / limit 10.
	all, err := s.Find(Filter{}, 0, -5)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("defaulted find returned %d records, want 5", len(all))
	}
}

func TestFindFilters(t *testing.T) {
	s := newTestStore(t)
	seed(t, s,
		model.CustomerRiskRecord{CustomerID: "ACME_100", RiskCategory: model.RiskHigh},
		model.CustomerRiskRecord{CustomerID: "acme_200", RiskCategory: model.RiskLow},
		model.CustomerRiskRecord{CustomerID: "globex_1", RiskCategory: model.RiskHigh},
	)

	high, err := s.Find(Filter{Risk: model.RiskHigh}, 1, 10)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(high) != 2 {
		t.Fatalf("risk filter returned %d records, want 2", len(high))
	}

	// "All" disables the label filter.
	if n, err := s.Count(Filter{Risk: "All"}); err != nil || n != 3 {
		t.Fatalf("Count(All) = %d, %v, want 3", n, err)
	}

	// Substring search is case-insensitive.
	matched, err := s.Find(Filter{Search: "AcMe"}, 1, 10)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("search returned %d records, want 2", len(matched))
	}

	both, err := s.Count(Filter{Risk: model.RiskHigh, Search: "acme"})
	if err != nil || both != 1 {
		t.Fatalf("combined filter count = %d, %v, want 1", both, err)
	}
}

func TestGetDashboardStats(t *testing.T) {
	s := newTestStore(t)
	seed(t, s,
		model.CustomerRiskRecord{CustomerID: "a", RiskCategory: model.RiskHigh, InvoiceAmount: 100000, PastDuePct: 0.45},
		model.CustomerRiskRecord{CustomerID: "b", RiskCategory: model.RiskLow, InvoiceAmount: 50000, PastDuePct: 0.03},
		model.CustomerRiskRecord{CustomerID: "c", RiskCategory: model.RiskLow, InvoiceAmount: 25000, PastDuePct: 0.06},
		model.CustomerRiskRecord{CustomerID: "junk", RiskCategory: "Oops", InvoiceAmount: 1000, PastDuePct: 0.10},
	)

	stats, err := s.GetDashboardStats()
	if err != nil {
		t.Fatalf("GetDashboardStats: %v", err)
	}

	if stats.TotalCustomers != 4 {
		t.Fatalf("total = %d, want 4", stats.TotalCustomers)
	}
	if stats.HighRiskPercentage != 25 {
		t.Fatalf("high risk pct = %v, want 25", stats.HighRiskPercentage)
	}
	if stats.TotalInvoiceAmount != 176000 {
		t.Fatalf("total invoice = %v, want 176000", stats.TotalInvoiceAmount)
	}
	// Simple unweighted mean of the stored ratios, junk row included.
	if math.Abs(stats.AveragePastDue-0.16) > 1e-9 {
		t.Fatalf("avg past due = %v, want 0.16", stats.AveragePastDue)
	}

	// Histogram drops the unknown label but keeps observed valid ones.
	if len(stats.RiskDistribution) != 2 {
		t.Fatalf("distribution = %+v, want 2 entries", stats.RiskDistribution)
	}
	counts := map[string]int{}
	for _, d := range stats.RiskDistribution {
		counts[d.Risk] = d.Count
	}
	if counts[model.RiskLow] != 2 || counts[model.RiskHigh] != 1 {
		t.Fatalf("distribution counts = %v", counts)
	}
}

func TestGetDashboardStats_Empty(t *testing.T) {
	s := newTestStore(t)
	stats, err := s.GetDashboardStats()
	if err != nil {
		t.Fatalf("GetDashboardStats: %v", err)
	}
	if stats.TotalCustomers != 0 || stats.HighRiskPercentage != 0 ||
		stats.AveragePastDue != 0 || stats.TotalInvoiceAmount != 0 {
		t.Fatalf("empty store stats = %+v, want all zero", stats)
	}
	if len(stats.RiskDistribution) != 0 {
		t.Fatalf("empty store distribution = %+v", stats.RiskDistribution)
	}
}

func TestDeleteAll(t *testing.T) {
	s := newTestStore(t)
	seed(t, s,
		model.CustomerRiskRecord{CustomerID: "a", RiskCategory: model.RiskLow},
		model.CustomerRiskRecord{CustomerID: "b", RiskCategory: model.RiskHigh},
	)
	if err := s.DeleteAll(); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	n, err := s.Count(Filter{})
	if err != nil || n != 0 {
		t.Fatalf("count after delete = %d, %v", n, err)
	}
}

func TestGetAllKeepsRatioScale(t *testing.T) {
	s := newTestStore(t)
	seed(t, s, model.CustomerRiskRecord{
		CustomerID: "a", RiskCategory: model.RiskHigh,
		PastDue30Pct: 0.4, PastDuePct: 0.45,
	})

	records, err := s.GetAll(Filter{})
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records", len(records))
	}
	// The store never rescales; the serving boundary owns the one conversion.
	if records[0].PastDue30Pct != 0.4 || records[0].PastDuePct != 0.45 {
		t.Fatalf("stored ratios changed: %+v", records[0])
	}
	if records[0].CreatedAt.IsZero() {
		t.Fatal("created_at not parsed")
	}
}
