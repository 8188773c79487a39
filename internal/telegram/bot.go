package telegram

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"riskdash/internal/analysis"
	"riskdash/internal/model"
	"riskdash/internal/store"

	tele "gopkg.in/telebot.v3"
)

// StartBot launches the read-only report bot in a goroutine. Without a token
// the service just runs without it.
func StartBot(s *store.Store) {
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		log.Println("⚠️ TELEGRAM_BOT_TOKEN empty, report bot disabled.")
		return
	}

	pref := tele.Settings{
		Token:  botToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("Fatal: failed to create Telegram bot: %v", err)
	}

	b.Handle("/stats", func(c tele.Context) error {
		stats, err := s.GetDashboardStats()
		if err != nil {
			log.Printf("Error getting stats for bot: %v", err)
			return c.Reply("❌ Database error.")
		}
		return c.Send(formatStats(stats), tele.ModeHTML)
	})

	b.Handle("/risks", func(c tele.Context) error {
		records, err := s.GetAll(store.Filter{})
		if err != nil {
			log.Printf("Error getting records for bot: %v", err)
			return c.Reply("❌ Database error.")
		}
		top := analysis.TopRiskCustomers(model.RescaleAll(records), 5)
		if len(top) == 0 {
			return c.Send("No high risk customers on file. Upload classification data first.")
		}
		return c.Send(formatTopRisk(top), tele.ModeHTML)
	})

	go func() {
		log.Println("🤖 Telegram report bot polling...")
		b.Start()
	}()
}

func formatStats(stats model.DashboardStats) string {
	var sb strings.Builder
	sb.WriteString("📊 <b>Portfolio Risk Summary</b>\n\n")
	fmt.Fprintf(&sb, "👥 Customers: <b>%d</b>\n", stats.TotalCustomers)
	fmt.Fprintf(&sb, "🔥 High risk: <b>%.1f%%</b>\n", stats.HighRiskPercentage)
	// Store average is a ratio; the bot is a presentation boundary too.
	fmt.Fprintf(&sb, "⏰ Avg past due: <b>%.1f%%</b>\n", stats.AveragePastDue*100)
	fmt.Fprintf(&sb, "💰 Total invoiced: <b>$%.2f</b>\n", stats.TotalInvoiceAmount)
	if len(stats.RiskDistribution) > 0 {
		sb.WriteString("\n")
		for _, d := range stats.RiskDistribution {
			fmt.Fprintf(&sb, "%s: %d\n", d.Risk, d.Count)
		}
	}
	return sb.String()
}

func formatTopRisk(top []model.CustomerRiskRecord) string {
	var sb strings.Builder
	sb.WriteString("🚨 <b>Top High Risk Customers</b>\n\n")
	for i, r := range top {
		fmt.Fprintf(&sb, "%d. <code>%s</code> — $%.2f, %.1f%% past due &gt;30d\n",
			i+1, r.CustomerID, r.InvoiceAmount, r.PastDue30Pct)
	}
	return sb.String()
}
