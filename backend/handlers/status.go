package handlers

import (
	"runtime"
	"sync"
	"time"

	"factbook-dashboard/backend/models"
	"factbook-dashboard/backend/system"

	"github.com/gofiber/fiber/v2"
)

// SystemStatus represents the current backend state
type SystemStatus struct {
	OS             string             `json:"os"`
	GoVersion      string             `json:"go_version"`
	Uptime         string             `json:"uptime"`
	Years          []int              `json:"years"`
	DefaultYear    int                `json:"default_year"`
	Countries      int                `json:"countries"`
	OpenAlerts     int64              `json:"open_alerts"`
	LastRun        *models.MonitorRun `json:"last_run,omitempty"`
	WebhookEnabled bool               `json:"webhook_enabled"`
	GeoIPEnabled   bool               `json:"geoip_enabled"`
	Events         []SystemEvent      `json:"events"`
}

type SystemEvent struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // info, warning, error, success
	Message string `json:"message"`
}

const maxEvents = 100

// Event log storage with mutex for thread safety
var (
	eventLog   []SystemEvent
	eventMutex sync.RWMutex
)

// AddEvent adds a new event to the log
func AddEvent(eventType, message string) {
	eventMutex.Lock()
	defer eventMutex.Unlock()

	event := SystemEvent{
		Time:    time.Now().Format("15:04:05"),
		Type:    eventType,
		Message: message,
	}
	eventLog = append([]SystemEvent{event}, eventLog...)
	if len(eventLog) > maxEvents {
		eventLog = eventLog[:maxEvents]
	}

	// Also log to file
	switch eventType {
	case "error":
		system.Error("%s", message)
	case "warning":
		system.Warn("%s", message)
	default:
		system.Info("%s", message)
	}
}

// GetEventLog returns a copy of the event log
func GetEventLog() []SystemEvent {
	eventMutex.RLock()
	defer eventMutex.RUnlock()

	result := make([]SystemEvent, len(eventLog))
	copy(result, eventLog)
	return result
}

// GetSystemStatus returns current backend status
// GET /api/status
func (h *Handler) GetSystemStatus(c *fiber.Ctx) error {
	status := SystemStatus{
		OS:             runtime.GOOS,
		GoVersion:      runtime.Version(),
		Uptime:         time.Since(h.startedAt).Round(time.Second).String(),
		Years:          h.Data.Years(),
		DefaultYear:    h.Year,
		WebhookEnabled: h.Webhook.IsEnabled(),
		GeoIPEnabled:   h.GeoIP.Enabled(),
		Events:         GetEventLog(),
	}

	// A missing edition still reports the rest of the status
	if all, err := h.Data.All(h.Year); err == nil {
		status.Countries = len(all)
	}

	h.DB.Model(&models.AlertEvent{}).Where("resolved = ?", false).Count(&status.OpenAlerts)

	var last models.MonitorRun
	if err := h.DB.Order("started_at DESC").Limit(1).Find(&last).Error; err == nil && last.ID != 0 {
		status.LastRun = &last
	}

	return c.JSON(status)
}

// GetEvents returns recent events
// GET /api/events
func (h *Handler) GetEvents(c *fiber.Ctx) error {
	return c.JSON(GetEventLog())
}
