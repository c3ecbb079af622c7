package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"factbook-dashboard/backend/analysis"
	"factbook-dashboard/backend/models"
	"factbook-dashboard/backend/system"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Monitor run triggers
const (
	TriggerStartup    = "startup"
	TriggerInterval   = "interval"
	TriggerDataChange = "data_change"
	TriggerManual     = "manual"
)

// AlertMonitor runs anomaly detection for one edition and keeps the alert
// history in the database in step with what is currently detected.
type AlertMonitor struct {
	db        *gorm.DB
	dataset   *Dataset
	webhook   *WebhookService
	publisher AnomalyPublisher
	metrics   *Metrics
	year      int
	interval  time.Duration
	timeout   time.Duration

	runMu    sync.Mutex
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewAlertMonitor creates a monitor for the given edition
func NewAlertMonitor(db *gorm.DB, dataset *Dataset, webhook *WebhookService, year int) *AlertMonitor {
	return &AlertMonitor{
		db:        db,
		dataset:   dataset,
		webhook:   webhook,
		publisher: NopPublisher{},
		year:      year,
		interval:  10 * time.Minute,
		timeout:   30 * time.Second,
	}
}

func (m *AlertMonitor) SetPublisher(p AnomalyPublisher) {
	if p == nil {
		p = NopPublisher{}
	}
	m.publisher = p
}

func (m *AlertMonitor) SetMetrics(metrics *Metrics) {
	m.metrics = metrics
}

func (m *AlertMonitor) SetInterval(d time.Duration) {
	if d > 0 {
		m.interval = d
	}
}

func (m *AlertMonitor) Year() int {
	return m.year
}

// Start runs once immediately, then on every tick and every dataset change.
func (m *AlertMonitor) Start() {
	m.stopChan = make(chan struct{})
	m.doneChan = make(chan struct{})
	changes := m.dataset.Subscribe()

	go func() {
		defer close(m.doneChan)
		system.Info("Alert monitor started (edition %d, interval %v)", m.year, m.interval)
		m.run(TriggerStartup)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.run(TriggerInterval)
			case <-changes:
				m.run(TriggerDataChange)
			case <-m.stopChan:
				system.Info("Alert monitor stopped")
				return
			}
		}
	}()
}

// Stop stops the monitoring loop and waits for an in-flight run.
func (m *AlertMonitor) Stop() {
	if m.stopChan == nil {
		return
	}
	close(m.stopChan)
	<-m.doneChan
	m.stopChan = nil
}

func (m *AlertMonitor) run(trigger string) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if _, err := m.RunOnce(ctx, trigger); err != nil {
		system.Warn("Alert monitor run (%s) failed: %v", trigger, err)
	}
}

type transitions struct {
	opened   []analysis.Anomaly
	resolved []models.AlertEvent
}

// RunOnce performs one detection pass and records it as a MonitorRun.
func (m *AlertMonitor) RunOnce(ctx context.Context, trigger string) (models.MonitorRun, error) {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	run := models.MonitorRun{
		RunID:     uuid.NewString(),
		Year:      m.year,
		Trigger:   trigger,
		StartedAt: time.Now(),
	}
	settings := LoadSettings(m.db)

	changed, err := m.detect(ctx, &run)
	run.FinishedAt = time.Now()
	if err != nil {
		run.Error = err.Error()
	}
	if dbErr := m.db.WithContext(ctx).Create(&run).Error; dbErr != nil {
		system.Warn("Failed to record monitor run %s: %v", run.RunID, dbErr)
	}
	m.metrics.MonitorRun(trigger, err)
	if err != nil {
		return run, err
	}

	system.Info("Monitor run %s (%s): %d anomalies, %d new, %d resolved",
		run.RunID, trigger, run.Anomalies, run.New, run.Resolved)

	m.notify(ctx, settings, run, changed)
	if _, err := m.Prune(settings.AlertHistoryDays); err != nil {
		system.Warn("Alert history pruning failed: %v", err)
	}
	return run, nil
}

func (m *AlertMonitor) detect(ctx context.Context, run *models.MonitorRun) (transitions, error) {
	var out transitions

	all, err := m.dataset.All(m.year)
	if err != nil {
		return out, fmt.Errorf("load edition %d: %w", m.year, err)
	}
	anomalies := analysis.DetectAnomalies(all)
	m.metrics.SetAnomalies(analysis.ComputeAnomalyStats(anomalies))
	run.Countries = len(all)
	run.Anomalies = len(anomalies)

	now := run.StartedAt
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open []models.AlertEvent
		if err := tx.Where("resolved = ?", false).Find(&open).Error; err != nil {
			return err
		}
		openByID := make(map[string]*models.AlertEvent, len(open))
		for i := range open {
			openByID[open[i].AnomalyID] = &open[i]
		}

		seen := make(map[string]bool, len(anomalies))
		for _, a := range anomalies {
			seen[a.ID] = true
			if ev, ok := openByID[a.ID]; ok {
				applyAnomaly(ev, a, m.year, now, run.RunID)
				if err := tx.Save(ev).Error; err != nil {
					return err
				}
				continue
			}

			// Unknown, or resolved earlier and back again.
			var ev models.AlertEvent
			err := tx.Where("anomaly_id = ?", a.ID).First(&ev).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			ev.AnomalyID = a.ID
			ev.FirstSeen = now
			ev.Resolved = false
			ev.ResolvedAt = nil
			applyAnomaly(&ev, a, m.year, now, run.RunID)
			if err := tx.Save(&ev).Error; err != nil {
				return err
			}
			out.opened = append(out.opened, a)
		}

		for _, ev := range open {
			if seen[ev.AnomalyID] {
				continue
			}
			resolvedAt := now
			ev.Resolved = true
			ev.ResolvedAt = &resolvedAt
			if err := tx.Save(&ev).Error; err != nil {
				return err
			}
			out.resolved = append(out.resolved, ev)
		}
		return nil
	})
	if err != nil {
		return transitions{}, fmt.Errorf("update alert history: %w", err)
	}

	run.New = len(out.opened)
	run.Resolved = len(out.resolved)
	return out, nil
}

func applyAnomaly(ev *models.AlertEvent, a analysis.Anomaly, year int, now time.Time, runID string) {
	ev.Type = string(a.Type)
	ev.Severity = string(a.Severity)
	ev.Country = a.Country
	ev.Region = a.Region
	ev.Metric = a.Metric
	ev.Value = a.Value
	ev.Threshold = a.Threshold
	ev.Year = year
	ev.LastSeen = now
	ev.LastRunID = runID
}

// eventAnomaly rebuilds the anomaly payload of a stored alert.
func eventAnomaly(ev models.AlertEvent) analysis.Anomaly {
	return analysis.Anomaly{
		ID:        ev.AnomalyID,
		Type:      analysis.AnomalyType(ev.Type),
		Severity:  analysis.Severity(ev.Severity),
		Country:   ev.Country,
		Region:    ev.Region,
		Metric:    ev.Metric,
		Value:     ev.Value,
		Threshold: ev.Threshold,
	}
}

func (m *AlertMonitor) notify(ctx context.Context, settings models.DashboardSettings, run models.MonitorRun, changed transitions) {
	minSeverity, ok := analysis.ParseSeverity(settings.AlertMinSeverity)
	if !ok {
		minSeverity = analysis.SeverityHigh
	}

	events := make([]AnomalyEvent, 0, len(changed.opened)+len(changed.resolved))
	for _, a := range changed.opened {
		events = append(events, AnomalyEvent{
			Type:       EventAnomalyOpened,
			RunID:      run.RunID,
			Year:       run.Year,
			Anomaly:    a,
			OccurredAt: run.FinishedAt,
		})
		if settings.AlertOnNew && a.Severity.AtLeast(minSeverity) {
			if err := m.webhook.SendAnomalyAlert(a, run.Year); err != nil {
				system.Warn("Failed to send anomaly alert for %s: %v", a.ID, err)
			}
		}
	}
	for _, ev := range changed.resolved {
		a := eventAnomaly(ev)
		events = append(events, AnomalyEvent{
			Type:       EventAnomalyResolved,
			RunID:      run.RunID,
			Year:       run.Year,
			Anomaly:    a,
			OccurredAt: run.FinishedAt,
		})
		if settings.AlertOnResolved && a.Severity.AtLeast(minSeverity) {
			if err := m.webhook.SendResolvedAlert(a.ID, a.Country, a.Severity); err != nil {
				system.Warn("Failed to send resolved alert for %s: %v", a.ID, err)
			}
		}
	}

	if settings.PublishEvents && len(events) > 0 {
		if err := m.publisher.Publish(ctx, events...); err != nil {
			system.Warn("Failed to publish %d anomaly events: %v", len(events), err)
		}
	}
}

// Prune deletes resolved alerts and monitor runs older than the retention
// window. A non-positive window keeps everything.
func (m *AlertMonitor) Prune(days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	res := m.db.Where("resolved = ? AND resolved_at < ?", true, cutoff).Delete(&models.AlertEvent{})
	if res.Error != nil {
		return 0, res.Error
	}
	if err := m.db.Where("started_at < ?", cutoff).Delete(&models.MonitorRun{}).Error; err != nil {
		return res.RowsAffected, err
	}
	if res.RowsAffected > 0 {
		system.Info("Pruned %d resolved alerts older than %d days", res.RowsAffected, days)
	}
	return res.RowsAffected, nil
}
