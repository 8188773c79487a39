package web

import (
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"riskdash/internal/analysis"
	"riskdash/internal/export"
	"riskdash/internal/model"
	"riskdash/internal/store"
)

type Server struct {
	store *store.Store
}

func NewServer(s *store.Store) *Server {
	return &Server{store: s}
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.handleHealth)
	r.GET("/customers", s.handleCustomers)
	r.GET("/risk-analysis", s.handleRiskAnalysis)
	r.GET("/risk-data", s.handleRiskData)
	r.GET("/export/csv", s.handleExportCSV)
	r.GET("/export/pdf", s.handleExportPDF)

	return r
}

// fail logs the underlying error and returns the generic message. Store
// failures are never retried and never produce partial stats.
func fail(c *gin.Context, msg string, err error) {
	log.Printf("%s: %v", msg, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

// queryInt defaults malformed or non-positive values instead of rejecting.
func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}

func filterFromQuery(c *gin.Context) store.Filter {
	return store.Filter{
		Risk:   c.DefaultQuery("risk", "All"),
		Search: c.Query("search"),
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"timestamp":          time.Now().UTC(),
		"database_connected": s.store.Ping() == nil,
	})
}

func (s *Server) handleCustomers(c *gin.Context) {
	filter := filterFromQuery(c)
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	customers, err := s.store.Find(filter, page, limit)
	if err != nil {
		fail(c, "Failed to fetch customers", err)
		return
	}
	total, err := s.store.Count(filter)
	if err != nil {
		fail(c, "Failed to fetch customers", err)
		return
	}
	stats, err := s.store.GetDashboardStats()
	if err != nil {
		fail(c, "Failed to fetch customers", err)
		return
	}

	// Past-due values leave the store as 0-1 ratios; this is the single
	// conversion to the display scale on this path.
	customers = model.RescaleAll(customers)
	stats.AveragePastDue *= 100
	if customers == nil {
		customers = []model.CustomerRiskRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
			"pages": int(math.Ceil(float64(total) / float64(limit))),
		},
		"stats": stats,
	})
}

func (s *Server) handleRiskAnalysis(c *gin.Context) {
	records, err := s.store.GetAll(store.Filter{})
	if err != nil {
		fail(c, "Failed to generate risk analysis", err)
		return
	}

	report, err := analysis.GenerateReport(model.RescaleAll(records))
	if errors.Is(err, analysis.ErrNoData) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No customer data found in the database"})
		return
	}
	if err != nil {
		fail(c, "Failed to generate risk analysis", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleRiskData(c *gin.Context) {
	records, err := s.store.GetAll(store.Filter{})
	if err != nil {
		fail(c, "Failed to fetch risk data", err)
		return
	}

	data, err := analysis.GenerateRiskData(model.RescaleAll(records))
	if errors.Is(err, analysis.ErrNoData) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No customer data found in the database"})
		return
	}
	if err != nil {
		fail(c, "Failed to fetch risk data", err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (s *Server) handleExportCSV(c *gin.Context) {
	records, err := s.store.GetAll(filterFromQuery(c))
	if err != nil {
		fail(c, "Failed to export customers", err)
		return
	}

	name := "customer-risk-data-" + time.Now().Format("2006-01-02") + ".csv"
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+name)
	if err := export.WriteCSV(c.Writer, model.RescaleAll(records)); err != nil {
		log.Printf("CSV export error: %v", err)
	}
}

func (s *Server) handleExportPDF(c *gin.Context) {
	records, err := s.store.GetAll(filterFromQuery(c))
	if err != nil {
		fail(c, "Failed to export report", err)
		return
	}
	stats, err := s.store.GetDashboardStats()
	if err != nil {
		fail(c, "Failed to export report", err)
		return
	}
	stats.AveragePastDue *= 100

	name := "customer-risk-report-" + time.Now().Format("2006-01-02") + ".pdf"
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename="+name)
	if err := export.WritePDF(c.Writer, model.RescaleAll(records), stats); err != nil {
		log.Printf("PDF export error: %v", err)
	}
}
