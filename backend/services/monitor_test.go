package services

import (
	"context"
	"testing"
	"time"

	"factbook-dashboard/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type monitorFixture struct {
	dir     string
	dataset *Dataset
	monitor *AlertMonitor
	pub     *recordingPublisher
	stub    *discordStub
	metrics *Metrics
}

func newMonitorFixture(t *testing.T) *monitorFixture {
	t.Helper()
	f := &monitorFixture{dir: t.TempDir(), pub: &recordingPublisher{}, metrics: NewMetrics()}
	writeEdition(t, f.dir, 2010, testWorld())
	f.dataset = NewDataset(f.dir)

	stub, srv := newDiscordStub(t)
	f.stub = stub
	webhook := NewWebhookService()
	webhook.SetWebhookURL(srv.URL)

	f.monitor = NewAlertMonitor(testDB(t), f.dataset, webhook, 2010)
	f.monitor.SetPublisher(f.pub)
	f.monitor.SetMetrics(f.metrics)
	return f
}

func (f *monitorFixture) events(t *testing.T) map[string]models.AlertEvent {
	t.Helper()
	var rows []models.AlertEvent
	require.NoError(t, f.monitor.db.Find(&rows).Error)
	out := make(map[string]models.AlertEvent, len(rows))
	for _, r := range rows {
		out[r.AnomalyID] = r
	}
	return out
}

func TestMonitorFirstRunOpensAlerts(t *testing.T) {
	f := newMonitorFixture(t)

	run, err := f.monitor.RunOnce(context.Background(), TriggerManual)
	require.NoError(t, err)
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, 4, run.Countries)
	assert.Equal(t, 3, run.Anomalies)
	assert.Equal(t, 3, run.New)
	assert.Zero(t, run.Resolved)

	events := f.events(t)
	require.Len(t, events, 3)
	zim := events["hyperinflation-Zimbabwe"]
	assert.Equal(t, "critical", zim.Severity)
	assert.Equal(t, "Africa", zim.Region)
	assert.Equal(t, run.RunID, zim.LastRunID)
	assert.False(t, zim.Resolved)

	// Default minimum severity is high: the medium alert is not sent.
	assert.ElementsMatch(t, []string{
		"🔥 Hyperinflation Alert: Zimbabwe",
		"💳 Elevated Debt Levels: Ireland",
	}, f.stub.titles())

	require.Len(t, f.pub.events, 3)
	for _, ev := range f.pub.events {
		assert.Equal(t, EventAnomalyOpened, ev.Type)
		assert.Equal(t, run.RunID, ev.RunID)
	}

	var runs []models.MonitorRun
	require.NoError(t, f.monitor.db.Find(&runs).Error)
	require.Len(t, runs, 1)
	assert.Equal(t, TriggerManual, runs[0].Trigger)
	assert.Equal(t, 1.0, counterValue(t, f.metrics, "factbook_anomalies", "critical"))
}

func TestMonitorRepeatRunOnlyTouchesLastSeen(t *testing.T) {
	f := newMonitorFixture(t)
	first, err := f.monitor.RunOnce(context.Background(), TriggerStartup)
	require.NoError(t, err)

	second, err := f.monitor.RunOnce(context.Background(), TriggerInterval)
	require.NoError(t, err)
	assert.Zero(t, second.New)
	assert.Zero(t, second.Resolved)
	assert.NotEqual(t, first.RunID, second.RunID)

	for _, ev := range f.events(t) {
		assert.Equal(t, second.RunID, ev.LastRunID)
	}
	assert.Len(t, f.stub.titles(), 2)
	assert.Len(t, f.pub.events, 3)
}

func TestMonitorResolvesAndReopens(t *testing.T) {
	f := newMonitorFixture(t)
	_, err := f.monitor.RunOnce(context.Background(), TriggerStartup)
	require.NoError(t, err)

	calm := testWorld()
	calm[3].Economy.InflationPct = models.F(4)
	writeEdition(t, f.dir, 2010, calm)
	f.dataset.Reload()

	run, err := f.monitor.RunOnce(context.Background(), TriggerDataChange)
	require.NoError(t, err)
	assert.Equal(t, 2, run.Anomalies)
	assert.Equal(t, 1, run.Resolved)

	zim := f.events(t)["hyperinflation-Zimbabwe"]
	assert.True(t, zim.Resolved)
	require.NotNil(t, zim.ResolvedAt)

	last := f.pub.events[len(f.pub.events)-1]
	assert.Equal(t, EventAnomalyResolved, last.Type)
	assert.Equal(t, "hyperinflation-Zimbabwe", last.Anomaly.ID)

	writeEdition(t, f.dir, 2010, testWorld())
	f.dataset.Reload()
	run, err = f.monitor.RunOnce(context.Background(), TriggerDataChange)
	require.NoError(t, err)
	assert.Equal(t, 1, run.New)

	zim = f.events(t)["hyperinflation-Zimbabwe"]
	assert.False(t, zim.Resolved)
	assert.Nil(t, zim.ResolvedAt)
	assert.Len(t, f.events(t), 3)
}

func TestMonitorHonoursSettings(t *testing.T) {
	f := newMonitorFixture(t)
	settings := models.DefaultSettings()
	settings.AlertMinSeverity = "critical"
	settings.PublishEvents = false
	require.NoError(t, f.monitor.db.Create(&settings).Error)
	require.NoError(t, f.monitor.db.Model(&settings).Update("publish_events", false).Error)

	_, err := f.monitor.RunOnce(context.Background(), TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, []string{"🔥 Hyperinflation Alert: Zimbabwe"}, f.stub.titles())
	assert.Empty(t, f.pub.events)
}

func TestMonitorRecordsFailedRuns(t *testing.T) {
	f := newMonitorFixture(t)
	f.monitor.year = 1999

	run, err := f.monitor.RunOnce(context.Background(), TriggerManual)
	require.Error(t, err)
	assert.NotEmpty(t, run.Error)

	var stored models.MonitorRun
	require.NoError(t, f.monitor.db.First(&stored).Error)
	assert.Equal(t, run.Error, stored.Error)
	assert.Equal(t, 1.0, counterValue(t, f.metrics, "factbook_monitor_runs_total", "error"))
}

func TestMonitorPrune(t *testing.T) {
	f := newMonitorFixture(t)
	old := time.Now().AddDate(0, 0, -100)
	recent := time.Now().AddDate(0, 0, -1)
	db := f.monitor.db
	require.NoError(t, db.Create(&models.AlertEvent{AnomalyID: "old", Resolved: true, ResolvedAt: &old}).Error)
	require.NoError(t, db.Create(&models.AlertEvent{AnomalyID: "recent", Resolved: true, ResolvedAt: &recent}).Error)
	require.NoError(t, db.Create(&models.AlertEvent{AnomalyID: "open"}).Error)

	n, err := f.monitor.Prune(0)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.monitor.Prune(90)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Len(t, f.events(t), 2)
}

func TestMonitorLoopRunsOnStartAndDataChange(t *testing.T) {
	f := newMonitorFixture(t)
	f.monitor.SetInterval(time.Hour)
	f.monitor.Start()
	t.Cleanup(f.monitor.Stop)

	countRuns := func(trigger string) int64 {
		var n int64
		f.monitor.db.Model(&models.MonitorRun{}).Where(&models.MonitorRun{Trigger: trigger}).Count(&n)
		return n
	}
	require.Eventually(t, func() bool { return countRuns(TriggerStartup) == 1 }, 5*time.Second, 20*time.Millisecond)

	f.dataset.Reload()
	assert.Eventually(t, func() bool { return countRuns(TriggerDataChange) == 1 }, 5*time.Second, 20*time.Millisecond)
}
