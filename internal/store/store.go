package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"riskdash/internal/model"

	_ "modernc.org/sqlite"
)

// Store is the injected data-access handle over the classification table.
// Opened once at process start, closed at shutdown.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS customer_risk_classifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id TEXT NOT NULL,
		risk_category_label TEXT NOT NULL,
		invoice_amount REAL NOT NULL DEFAULT 0,
		past_due_30_pct REAL NOT NULL DEFAULT 0,
		past_due_pct REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, err
	}

	// Default listing sorts by past_due_30_pct, filters hit the label column.
	indexSQL := `
	CREATE INDEX IF NOT EXISTS idx_risk_label ON customer_risk_classifications (risk_category_label);
	CREATE INDEX IF NOT EXISTS idx_past_due_30 ON customer_risk_classifications (past_due_30_pct);
	`
	if _, err := db.Exec(indexSQL); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping() error {
	return s.db.Ping()
}

// Filter narrows record queries. Risk "" or "All" matches every label;
// Search is a case-insensitive substring match on customer_id.
type Filter struct {
	Risk   string
	Search string
}

func (f Filter) where() (string, []any) {
	var conds []string
	var args []any
	if f.Risk != "" && f.Risk != "All" {
		conds = append(conds, "risk_category_label = ?")
		args = append(args, f.Risk)
	}
	if f.Search != "" {
		conds = append(conds, "customer_id LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

const recordColumns = `id, customer_id, risk_category_label, invoice_amount, past_due_30_pct, past_due_pct, created_at, updated_at`

// Find returns one page of matching records, worst past-due-30 first.
// Pagination is 1-based; skip = (page-1)*limit.
func (s *Store) Find(f Filter, page, limit int) ([]model.CustomerRiskRecord, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	where, args := f.where()
	query := `SELECT ` + recordColumns + ` FROM customer_risk_classifications` + where +
		` ORDER BY past_due_30_pct DESC LIMIT ? OFFSET ?`
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// GetAll returns every matching record. The analysis engine calls this with
// an empty filter; the whole set is held in memory for one request.
func (s *Store) GetAll(f Filter) ([]model.CustomerRiskRecord, error) {
	where, args := f.where()
	query := `SELECT ` + recordColumns + ` FROM customer_risk_classifications` + where +
		` ORDER BY past_due_30_pct DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) Count(f Filter) (int, error) {
	where, args := f.where()
	var total int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM customer_risk_classifications`+where, args...).Scan(&total)
	return total, err
}

func scanRecords(rows *sql.Rows) ([]model.CustomerRiskRecord, error) {
	var result []model.CustomerRiskRecord
	for rows.Next() {
		var r model.CustomerRiskRecord
		var createdStr, updatedStr string
		if err := rows.Scan(&r.ID, &r.CustomerID, &r.RiskCategory, &r.InvoiceAmount,
			&r.PastDue30Pct, &r.PastDuePct, &createdStr, &updatedStr); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = parseTimeHelper(createdStr)
		r.UpdatedAt, _ = parseTimeHelper(updatedStr)
		result = append(result, r)
	}
	return result, rows.Err()
}

func parseTimeHelper(dateStr string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z07:00",
		time.RFC3339,
		"2006-01-02 15:04:05+00:00",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %s", dateStr)
}

func (s *Store) Insert(r model.CustomerRiskRecord) error {
	// Standard SQL datetime format so strftime and scans stay reliable.
	now := time.Now().UTC().Format("2006-01-02 15:04:05")
	_, err := s.db.Exec(`
		INSERT INTO customer_risk_classifications
			(customer_id, risk_category_label, invoice_amount, past_due_30_pct, past_due_pct, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.CustomerID, r.RiskCategory, r.InvoiceAmount, r.PastDue30Pct, r.PastDuePct, now, now)
	return err
}

// DeleteAll clears the table. The upstream pipeline overwrites snapshots in
// bulk; the loader uses this for -replace imports.
func (s *Store) DeleteAll() error {
	_, err := s.db.Exec(`DELETE FROM customer_risk_classifications`)
	return err
}

// GetDashboardStats aggregates the header stats with database-native grouping.
// The average here is the simple unweighted mean of past_due_pct; the engine
// computes the invoice-weighted variant separately.
func (s *Store) GetDashboardStats() (model.DashboardStats, error) {
	var stats model.DashboardStats

	err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(invoice_amount), 0), COALESCE(AVG(past_due_pct), 0)
		FROM customer_risk_classifications
	`).Scan(&stats.TotalCustomers, &stats.TotalInvoiceAmount, &stats.AveragePastDue)
	if err != nil {
		return stats, err
	}

	// Histogram over the three known labels only; anything else was written
	// by a broken upstream run and is excluded from category aggregations.
	rows, err := s.db.Query(`
		SELECT risk_category_label, COUNT(*)
		FROM customer_risk_classifications
		WHERE risk_category_label IN (?, ?, ?)
		GROUP BY risk_category_label
	`, model.RiskLow, model.RiskMedium, model.RiskHigh)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	highRisk := 0
	for rows.Next() {
		var d model.RiskDistribution
		if err := rows.Scan(&d.Risk, &d.Count); err != nil {
			return stats, err
		}
		if d.Risk == model.RiskHigh {
			highRisk = d.Count
		}
		stats.RiskDistribution = append(stats.RiskDistribution, d)
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	if stats.TotalCustomers > 0 {
		stats.HighRiskPercentage = float64(highRisk) / float64(stats.TotalCustomers) * 100
	}
	return stats, nil
}
