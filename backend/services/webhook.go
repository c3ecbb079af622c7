package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"factbook-dashboard/backend/analysis"
	"factbook-dashboard/backend/system"
)

// WebhookService handles Discord webhook notifications
type WebhookService struct {
	mu         sync.RWMutex
	webhookURL string
	client     *http.Client
}

// DiscordEmbed represents a Discord embed object
type DiscordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Fields      []DiscordEmbedField `json:"fields,omitempty"`
	Footer      *DiscordEmbedFooter `json:"footer,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

// DiscordWebhookPayload represents a Discord webhook message
type DiscordWebhookPayload struct {
	Username string         `json:"username,omitempty"`
	Content  string         `json:"content,omitempty"`
	Embeds   []DiscordEmbed `json:"embeds,omitempty"`
}

const webhookFooter = "Factbook Dashboard"

func NewWebhookService() *WebhookService {
	return &WebhookService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetWebhookURL sets the Discord webhook URL. Empty disables notifications.
func (w *WebhookService) SetWebhookURL(url string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.webhookURL = strings.TrimSpace(url)
}

func (w *WebhookService) IsEnabled() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.webhookURL != ""
}

// Discord color constants
const (
	ColorRed    = 0xFF0000 // critical
	ColorOrange = 0xFFAA00 // high / warning
	ColorYellow = 0xEAB308 // medium
	ColorGreen  = 0x00FF00 // resolved / success
	ColorBlue   = 0x00AAFF // info
)

// SeverityColor maps an anomaly severity onto an embed colour.
func SeverityColor(s analysis.Severity) int {
	switch s {
	case analysis.SeverityCritical:
		return ColorRed
	case analysis.SeverityHigh:
		return ColorOrange
	case analysis.SeverityMedium:
		return ColorYellow
	}
	return ColorBlue
}

// SendAnomalyAlert announces a newly detected anomaly.
func (w *WebhookService) SendAnomalyAlert(a analysis.Anomaly, year int) error {
	if !w.IsEnabled() {
		return nil
	}

	embed := DiscordEmbed{
		Title:       fmt.Sprintf("%s %s: %s", a.Icon, a.Title, a.Country),
		Description: a.Description,
		Color:       SeverityColor(a.Severity),
		Fields: []DiscordEmbedField{
			{Name: "Severity", Value: strings.ToUpper(string(a.Severity)), Inline: true},
			{Name: "Region", Value: a.Region, Inline: true},
			{Name: "Edition", Value: strconv.Itoa(year), Inline: true},
			{Name: a.Metric, Value: fmt.Sprintf("`%s`", a.Value), Inline: true},
			{Name: "Threshold", Value: a.Threshold, Inline: true},
		},
		Footer:    &DiscordEmbedFooter{Text: webhookFooter},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	return w.sendEmbed(embed)
}

// SendResolvedAlert announces that an anomaly no longer fires.
func (w *WebhookService) SendResolvedAlert(anomalyID, country string, severity analysis.Severity) error {
	if !w.IsEnabled() {
		return nil
	}

	embed := DiscordEmbed{
		Title:       "✅ Alert Resolved: " + country,
		Description: fmt.Sprintf("`%s` is no longer detected.", anomalyID),
		Color:       ColorGreen,
		Fields: []DiscordEmbedField{
			{Name: "Previous Severity", Value: strings.ToUpper(string(severity)), Inline: true},
		},
		Footer:    &DiscordEmbedFooter{Text: webhookFooter},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	return w.sendEmbed(embed)
}

// SendSystemAlert sends a free-form notice (startup, digest, errors).
func (w *WebhookService) SendSystemAlert(title, description string, color int) error {
	if !w.IsEnabled() {
		return nil
	}

	embed := DiscordEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Footer:      &DiscordEmbedFooter{Text: webhookFooter},
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	return w.sendEmbed(embed)
}

// SendTestAlert sends a test notification to verify webhook connectivity
func (w *WebhookService) SendTestAlert() error {
	if !w.IsEnabled() {
		return fmt.Errorf("webhook not configured")
	}

	embed := DiscordEmbed{
		Title:       "✅ Webhook Test",
		Description: "Discord webhook is configured correctly!",
		Color:       ColorGreen,
		Fields: []DiscordEmbedField{
			{Name: "Status", Value: "Connected", Inline: true},
			{Name: "Server Time", Value: time.Now().Format("2006-01-02 15:04:05"), Inline: true},
		},
		Footer:    &DiscordEmbedFooter{Text: webhookFooter},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	return w.sendEmbed(embed)
}

func (w *WebhookService) sendEmbed(embed DiscordEmbed) error {
	w.mu.RLock()
	url := w.webhookURL
	w.mu.RUnlock()

	payload := DiscordWebhookPayload{
		Username: "Factbook",
		Embeds:   []DiscordEmbed{embed},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned error status: %d", resp.StatusCode)
	}

	system.Debug("Discord webhook sent: %s", embed.Title)
	return nil
}
