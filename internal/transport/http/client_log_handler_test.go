package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kairadc/poker-standings/internal/shared/testutil"
)

func TestClientLogHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantLevel  slog.Level
		wantMsg    string
	}{
		{
			name:       "error entry",
			body:       `{"level":"error","message":"standings table failed to render","source":"dashboard","data":{"endpoint":"/api/standings"}}`,
			wantStatus: http.StatusOK,
			wantLevel:  slog.LevelError,
			wantMsg:    "standings table failed to render",
		},
		{
			name:       "unknown level defaults to info",
			body:       `{"level":"verbose","message":"filter changed"}`,
			wantStatus: http.StatusOK,
			wantLevel:  slog.LevelInfo,
			wantMsg:    "filter changed",
		},
		{
			name:       "missing message rejected",
			body:       `{"level":"info"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json rejected",
			body:       `{"level":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, captured := testutil.NewTestLogger(t)
			handler := NewClientLogHandler(logger)

			req := httptest.NewRequest(http.MethodPost, "/api/logs", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			handler.Handle(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, 0, captured.Count(), "rejected entries should not be logged")
				return
			}

			assert.Contains(t, rec.Body.String(), `"success":true`)

			records := captured.GetRecordsByLevel(tt.wantLevel)
			require.Len(t, records, 1)
			assert.Equal(t, tt.wantMsg, records[0].Message)
			assert.True(t, captured.ContainsAttr("handler", "client_log"),
				"entries should carry the handler component attr")
		})
	}
}

func TestClientLogHandlerForwardsSource(t *testing.T) {
	logger, captured := testutil.NewTestLogger(t)
	handler := NewClientLogHandler(logger)

	body := `{"level":"warn","message":"slow leaderboard fetch","source":"dashboard"}`
	req := httptest.NewRequest(http.MethodPost, "/api/logs", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, captured.ContainsAttr("client_source", "dashboard"))
	assert.Equal(t, 1, len(captured.GetRecordsByLevel(slog.LevelWarn)))
}
