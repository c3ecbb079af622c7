package models

import (
	"time"
)

// AlertEvent records an anomaly the monitor has seen, across detection runs
type AlertEvent struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	AnomalyID  string     `gorm:"uniqueIndex;not null" json:"anomaly_id"` // "<type>-<country>"
	Type       string     `gorm:"index" json:"type"`
	Severity   string     `gorm:"index" json:"severity"`
	Country    string     `gorm:"index" json:"country"`
	Region     string     `json:"region"`
	Metric     string     `json:"metric"`
	Value      string     `json:"value"`
	Threshold  string     `json:"threshold"`
	Year       int        `json:"year"`
	FirstSeen  time.Time  `gorm:"index" json:"first_seen"`
	LastSeen   time.Time  `json:"last_seen"`
	LastRunID  string     `json:"last_run_id"`
	Resolved   bool       `gorm:"default:false;index" json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// MonitorRun is one anomaly detection pass
type MonitorRun struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RunID      string    `gorm:"uniqueIndex;not null" json:"run_id"`
	Year       int       `json:"year"`
	Trigger    string    `json:"trigger"` // "startup", "interval", "data_change", "manual"
	StartedAt  time.Time `gorm:"index" json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Countries  int       `json:"countries"`
	Anomalies  int       `json:"anomalies"`
	New        int       `json:"new"`
	Resolved   int       `json:"resolved"`
	Error      string    `json:"error,omitempty"`
}

// AlertStats provides aggregated alert history statistics
type AlertStats struct {
	Open       int64            `json:"open"`
	Resolved   int64            `json:"resolved"`
	TodayNew   int64            `json:"today_new"`
	WeekNew    int64            `json:"week_new"`
	BySeverity map[string]int64 `json:"by_severity"`
	TopRegion  string           `json:"top_region"`
	TopType    string           `json:"top_type"`
	LastRun    *MonitorRun      `json:"last_run,omitempty"`
}
