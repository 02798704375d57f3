package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	contractx "github.com/boluade/shopmate/agent/contract"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		AccessToken:   "test-access-token",
		PhoneNumberID: "1122334455",
		VerifyToken:   "secret",
		BaseURL:       srv.URL,
	})
	require.NoError(t, err)
	return client
}

func TestSendTextCallsGraphAPI(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotBody sendTextRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.ABC"}]}`))
	})

	err := client.SendText(context.Background(), "2348012345678", "It costs $500.")
	require.NoError(t, err)
	require.Equal(t, "/1122334455/messages", gotPath)
	require.Equal(t, "Bearer test-access-token", gotAuth)
	require.Equal(t, "whatsapp", gotBody.MessagingProduct)
	require.Equal(t, "2348012345678", gotBody.To)
	require.Equal(t, "text", gotBody.Type)
	require.Equal(t, "It costs $500.", gotBody.Text.Body)
}

func TestSendTextSurfacesAPIError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","code":190}}`))
	})

	err := client.SendText(context.Background(), "2348012345678", "hi")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid OAuth access token")
}

func TestSendStatusIsNoOp(t *testing.T) {
	t.Parallel()

	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	err := client.SendStatus(context.Background(), "2348012345678", contractx.StatusTyping)
	require.NoError(t, err)
	require.False(t, called)
}

func TestNewClientValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{PhoneNumberID: "1", VerifyToken: "v"})
	require.ErrorIs(t, err, contractx.ErrNotConfigured)

	_, err = NewClient(Config{AccessToken: "a", VerifyToken: "v"})
	require.ErrorIs(t, err, contractx.ErrNotConfigured)
}
