package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"factbook-dashboard/backend/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// discordStub records every webhook payload it receives.
type discordStub struct {
	mu       sync.Mutex
	payloads []DiscordWebhookPayload
	status   int
}

func newDiscordStub(t *testing.T) (*discordStub, *httptest.Server) {
	stub := &discordStub{status: http.StatusNoContent}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p DiscordWebhookPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		stub.mu.Lock()
		stub.payloads = append(stub.payloads, p)
		status := stub.status
		stub.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return stub, srv
}

func (s *discordStub) titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, p := range s.payloads {
		for _, e := range p.Embeds {
			out = append(out, e.Title)
		}
	}
	return out
}

func TestWebhookDisabled(t *testing.T) {
	w := NewWebhookService()
	assert.False(t, w.IsEnabled())
	assert.NoError(t, w.SendSystemAlert("title", "desc", ColorBlue))
	assert.Error(t, w.SendTestAlert())

	w.SetWebhookURL("   ")
	assert.False(t, w.IsEnabled())
}

func TestWebhookAnomalyAlert(t *testing.T) {
	stub, srv := newDiscordStub(t)
	w := NewWebhookService()
	w.SetWebhookURL(srv.URL)

	a := analysis.DetectAnomalies(testWorld())[0]
	require.NoError(t, w.SendAnomalyAlert(a, 2010))

	require.Len(t, stub.payloads, 1)
	embed := stub.payloads[0].Embeds[0]
	assert.Equal(t, "🔥 Hyperinflation Alert: Zimbabwe", embed.Title)
	assert.Equal(t, ColorRed, embed.Color)
	assert.Equal(t, "CRITICAL", embed.Fields[0].Value)
	assert.Equal(t, "2010", embed.Fields[2].Value)
	assert.Equal(t, "`150.0%`", embed.Fields[3].Value)
}

func TestWebhookErrorStatus(t *testing.T) {
	stub, srv := newDiscordStub(t)
	stub.status = http.StatusTooManyRequests
	w := NewWebhookService()
	w.SetWebhookURL(srv.URL)

	err := w.SendTestAlert()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSeverityColor(t *testing.T) {
	assert.Equal(t, ColorRed, SeverityColor(analysis.SeverityCritical))
	assert.Equal(t, ColorOrange, SeverityColor(analysis.SeverityHigh))
	assert.Equal(t, ColorYellow, SeverityColor(analysis.SeverityMedium))
	assert.Equal(t, ColorBlue, SeverityColor(analysis.SeverityLow))
}
