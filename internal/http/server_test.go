package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkovalchuk/contacts-api/internal/logging"
)

func TestServerStartShutdown(t *testing.T) {
	srv := NewServer(
		"127.0.0.1:0",
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
		time.Second, time.Second, time.Second,
		logging.NewLogger(true),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	// Give the listener a moment to come up, then shut down within the
	// server's own deadline. Start must return cleanly, not with an error.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, srv.Shutdown())

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after shutdown")
	}
}
