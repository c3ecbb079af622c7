package services

import (
	"fmt"
	"strings"
	"time"

	"factbook-dashboard/backend/analysis"
	"factbook-dashboard/backend/models"
	"factbook-dashboard/backend/system"

	"github.com/dustin/go-humanize"
	"gorm.io/gorm"
)

// DailyReporter sends a digest of the last day's alert activity
type DailyReporter struct {
	db       *gorm.DB
	webhook  *WebhookService
	stopChan chan struct{}
}

func NewDailyReporter(db *gorm.DB, webhook *WebhookService) *DailyReporter {
	return &DailyReporter{
		db:       db,
		webhook:  webhook,
		stopChan: make(chan struct{}),
	}
}

// Start schedules the report for every local midnight
func (r *DailyReporter) Start() {
	go func() {
		for {
			now := time.Now()
			next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
			system.Info("Next daily alert digest scheduled in %v", next.Sub(now).Round(time.Second))

			timer := time.NewTimer(next.Sub(now))
			select {
			case <-timer.C:
			case <-r.stopChan:
				timer.Stop()
				return
			}

			if LoadSettings(r.db).DailyReport {
				if err := r.SendReport(time.Now()); err != nil {
					system.Warn("Daily alert digest failed: %v", err)
				}
			}
		}
	}()
}

func (r *DailyReporter) Stop() {
	close(r.stopChan)
}

// Digest is the content of one daily report
type Digest struct {
	Since      time.Time
	New        int64
	Resolved   int64
	Open       int64
	BySeverity map[string]int64
	TopRegion  string
	Runs       int64
	FailedRuns int64
}

// BuildDigest collects alert activity in the 24 hours before now.
func (r *DailyReporter) BuildDigest(now time.Time) (Digest, error) {
	d := Digest{
		Since:      now.Add(-24 * time.Hour),
		BySeverity: make(map[string]int64, len(analysis.Severities)),
	}

	if err := r.db.Model(&models.AlertEvent{}).Where("first_seen >= ?", d.Since).Count(&d.New).Error; err != nil {
		return d, err
	}
	r.db.Model(&models.AlertEvent{}).Where("resolved = ? AND resolved_at >= ?", true, d.Since).Count(&d.Resolved)
	r.db.Model(&models.AlertEvent{}).Where("resolved = ?", false).Count(&d.Open)

	var rows []struct {
		Severity string
		Count    int64
	}
	r.db.Model(&models.AlertEvent{}).
		Select("severity, COUNT(*) as count").
		Where("first_seen >= ?", d.Since).
		Group("severity").
		Scan(&rows)
	for _, s := range analysis.Severities {
		d.BySeverity[string(s)] = 0
	}
	for _, row := range rows {
		d.BySeverity[row.Severity] = row.Count
	}

	var topRegion struct {
		Region string
		Count  int64
	}
	r.db.Model(&models.AlertEvent{}).
		Select("region, COUNT(*) as count").
		Where("first_seen >= ?", d.Since).
		Group("region").
		Order("count DESC, region ASC").
		Limit(1).
		Scan(&topRegion)
	d.TopRegion = topRegion.Region
	if d.TopRegion == "" {
		d.TopRegion = "None"
	}

	r.db.Model(&models.MonitorRun{}).Where("started_at >= ?", d.Since).Count(&d.Runs)
	r.db.Model(&models.MonitorRun{}).Where("started_at >= ? AND error <> ''", d.Since).Count(&d.FailedRuns)
	return d, nil
}

// Format renders the digest as a Discord embed description.
func (d Digest) Format() string {
	var sb strings.Builder
	sb.WriteString("**Alert Summary**\n")
	fmt.Fprintf(&sb, "• New Alerts: `%s`\n", humanize.Comma(d.New))
	fmt.Fprintf(&sb, "• Resolved: `%s`\n", humanize.Comma(d.Resolved))
	fmt.Fprintf(&sb, "• Still Open: `%s`\n", humanize.Comma(d.Open))
	fmt.Fprintf(&sb, "• Top Region: `%s`\n\n", d.TopRegion)

	sb.WriteString("**New by Severity**\n")
	for _, s := range analysis.Severities {
		fmt.Fprintf(&sb, "• %s: `%d`\n", strings.ToUpper(string(s)), d.BySeverity[string(s)])
	}

	fmt.Fprintf(&sb, "\n**Monitor**\n• Runs: `%d` (failed: `%d`)", d.Runs, d.FailedRuns)
	return sb.String()
}

// SendReport builds and sends the digest for the day ending at now
func (r *DailyReporter) SendReport(now time.Time) error {
	if !r.webhook.IsEnabled() {
		return nil
	}

	system.Info("Generating daily alert digest...")
	d, err := r.BuildDigest(now)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}

	title := fmt.Sprintf("📊 Daily Alert Digest (%s)", d.Since.Format("2006-01-02"))
	return r.webhook.SendSystemAlert(title, d.Format(), ColorBlue)
}
