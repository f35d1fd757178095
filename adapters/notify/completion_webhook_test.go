package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomnet/roomnet-api/internal/config"
	"github.com/roomnet/roomnet-api/pkg/apperror"
)

func newWebhook(t *testing.T, url string) *completionWebhook {
	t.Helper()
	cfg := config.Config{}
	cfg.Completion.WebhookURL = url
	cfg.Completion.ServiceToken = "svc-token"
	n, err := NewCompletionWebhook(cfg)
	require.NoError(t, err)
	return n.(*completionWebhook)
}

func Test_NotifyCompleted_PostsUserID(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newWebhook(t, srv.URL).NotifyCompleted(context.Background(), "user-123")

	require.NoError(t, err)
	assert.Equal(t, "Bearer svc-token", gotAuth)
	assert.Equal(t, "user-123", gotBody["user_id"])
}

func Test_NotifyCompleted_NonSuccessStatusIsDeliveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "handler down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newWebhook(t, srv.URL).NotifyCompleted(context.Background(), "user-123")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrDeliveryFailed)
	assert.Contains(t, err.Error(), "503")
}

func Test_NotifyCompleted_ConnectionErrorIsDeliveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	err := newWebhook(t, srv.URL).NotifyCompleted(context.Background(), "user-123")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrDeliveryFailed)
}

func Test_NewCompletionWebhook_RequiresURL(t *testing.T) {
	_, err := NewCompletionWebhook(config.Config{})
	assert.Error(t, err)
}
