package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cyphera/billing-reconciler/internal/constants"
	"github.com/cyphera/billing-reconciler/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFailureIsReportedThroughWebhook(t *testing.T) {
	var (
		mu       sync.Mutex
		received []reconcile.RunStats
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Text  string             `json:"text"`
			Stats reconcile.RunStats `json:"stats"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		received = append(received, payload.Stats)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	t.Setenv("REPORT_WEBHOOK_URL", server.URL)
	t.Setenv("STAGE", "staging")

	_, err := loadRuntime()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid STAGE")

	notifier := configFailureNotifier()
	require.NotNil(t, notifier)
	reportSetupFailure(context.Background(), notifier, constants.TriggerScheduled, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.False(t, received[0].Success)
	assert.Equal(t, constants.TriggerScheduled, received[0].Trigger)
	require.Len(t, received[0].Errors, 1)
	assert.Contains(t, received[0].Errors[0], "setup: invalid configuration")
}

func TestConfigFailureNotifier_NoWebhook(t *testing.T) {
	t.Setenv("REPORT_WEBHOOK_URL", "")
	assert.Nil(t, configFailureNotifier())
}

func TestFallbackStage(t *testing.T) {
	tests := []struct {
		name  string
		stage string
		want  string
	}{
		{name: "valid stage kept", stage: "prod", want: "prod"},
		{name: "invalid stage", stage: "staging", want: "local"},
		{name: "unset", stage: "", want: "local"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STAGE", tt.stage)
			assert.Equal(t, tt.want, fallbackStage())
		})
	}
}
