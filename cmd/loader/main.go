// Command loader bulk-imports a classification CSV into the sqlite store.
// It stands in for the prediction service's write path when seeding an
// environment: one row per customer with the assigned risk label, invoice
// total, and past-due ratios (0-1).
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"

	"riskdash/internal/model"
	"riskdash/internal/store"
)

func main() {
	dbPath := flag.String("db", "/data/riskdash.db", "sqlite database path")
	file := flag.String("file", "", "classification CSV to import")
	replace := flag.Bool("replace", false, "drop existing records before import")
	flag.Parse()

	if *file == "" {
		log.Fatal("Fatal: -file is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Fatal: open %s: %v", *file, err)
	}
	defer f.Close()

	records, err := parseCSV(f)
	if err != nil {
		log.Fatalf("Fatal: parse %s: %v", *file, err)
	}
	if len(records) == 0 {
		log.Fatal("Fatal: no records in file")
	}

	db, err := store.New(*dbPath)
	if err != nil {
		log.Fatalf("Fatal: Failed to initialize DB: %v", err)
	}
	defer db.Close()

	if *replace {
		if err := db.DeleteAll(); err != nil {
			log.Fatalf("Fatal: clearing existing records: %v", err)
		}
	}

	bar := progressbar.Default(int64(len(records)), "importing")
	inserted := 0
	for _, r := range records {
		if err := db.Insert(r); err != nil {
			log.Printf("insert %s: %v", r.CustomerID, err)
			continue
		}
		inserted++
		bar.Add(1)
	}

	log.Printf("✅ Imported %d/%d records into %s", inserted, len(records), *dbPath)
}

// parseCSV expects columns: customer_id, risk label, invoice amount,
// past-due-30 ratio, past-due ratio. A header row is detected and skipped.
func parseCSV(r io.Reader) ([]model.CustomerRiskRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	var out []model.CustomerRiskRecord
	for i, row := range rows {
		if i == 0 && looksLikeHeader(row) {
			continue
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRow(row []string) (model.CustomerRiskRecord, error) {
	var rec model.CustomerRiskRecord
	if len(row) < 5 {
		return rec, fmt.Errorf("want 5 columns, got %d", len(row))
	}

	rec.CustomerID = strings.TrimSpace(row[0])
	if rec.CustomerID == "" {
		return rec, errors.New("empty customer id")
	}
	rec.RiskCategory = strings.TrimSpace(row[1])

	var err error
	if rec.InvoiceAmount, err = strconv.ParseFloat(strings.TrimSpace(row[2]), 64); err != nil {
		return rec, fmt.Errorf("invoice amount: %w", err)
	}
	if rec.InvoiceAmount < 0 {
		return rec, fmt.Errorf("negative invoice amount %.2f", rec.InvoiceAmount)
	}
	if rec.PastDue30Pct, err = strconv.ParseFloat(strings.TrimSpace(row[3]), 64); err != nil {
		return rec, fmt.Errorf("past due 30 ratio: %w", err)
	}
	if rec.PastDuePct, err = strconv.ParseFloat(strings.TrimSpace(row[4]), 64); err != nil {
		return rec, fmt.Errorf("past due ratio: %w", err)
	}
	return rec, nil
}

// looksLikeHeader treats a non-numeric third column as a header row.
func looksLikeHeader(row []string) bool {
	if len(row) < 3 {
		return true
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
	return err != nil
}
