package httptransport

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewServerFillsDefaults(t *testing.T) {
	srv := NewServer(ServerConfig{Address: ":8080"}, http.NewServeMux())

	require.Equal(t, ":8080", srv.Addr)
	require.Equal(t, defaultReadTimeout, srv.ReadTimeout)
	require.Equal(t, defaultWriteTimeout, srv.WriteTimeout)
	require.Equal(t, defaultIdleTimeout, srv.IdleTimeout)
}

func TestNewServerKeepsOverrides(t *testing.T) {
	srv := NewServer(ServerConfig{
		Address:      ":9090",
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 40 * time.Second,
		IdleTimeout:  90 * time.Second,
	}, http.NewServeMux())

	require.Equal(t, 2*time.Second, srv.ReadTimeout)
	require.Equal(t, 40*time.Second, srv.WriteTimeout)
	require.Equal(t, 90*time.Second, srv.IdleTimeout)
}
