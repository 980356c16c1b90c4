package outbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureSchemaReturnsExistingID(t *testing.T) {
	var registerCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/subjects/club_activity_events-value/versions/latest":
			json.NewEncoder(w).Encode(map[string]any{"id": 7})
		case r.Method == http.MethodPost:
			registerCalls++
			json.NewEncoder(w).Encode(map[string]any{"id": 99})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewSchemaRegistryClient(SchemaRegistryConfig{BaseURL: srv.URL, HTTPClient: srv.Client()})
	id, err := client.EnsureSchema(context.Background(), "club_activity_events-value", `{"type":"object"}`)
	require.NoError(t, err)
	require.Equal(t, 7, id)
	require.Zero(t, registerCalls)
}

func TestEnsureSchemaRegistersUnknownSubject(t *testing.T) {
	var registered struct {
		SchemaType string `json:"schemaType"`
		Schema     string `json:"schema"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		require.Equal(t, "/subjects/club_checkin_events-value/versions", r.URL.Path)
		require.Equal(t, "application/vnd.schemaregistry.v1+json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&registered))
		json.NewEncoder(w).Encode(map[string]any{"id": 12})
	}))
	defer srv.Close()

	client := NewSchemaRegistryClient(SchemaRegistryConfig{BaseURL: srv.URL + "/", HTTPClient: srv.Client()})
	id, err := client.EnsureSchema(context.Background(), "club_checkin_events-value", `{"type":"object"}`)
	require.NoError(t, err)
	require.Equal(t, 12, id)
	require.Equal(t, "JSON", registered.SchemaType)
	require.JSONEq(t, `{"type":"object"}`, registered.Schema)
}

func TestEnsureSchemaPropagatesRegistryFailure(t *testing.T) {
	var registerCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			registerCalls++
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewSchemaRegistryClient(SchemaRegistryConfig{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := client.EnsureSchema(context.Background(), "club_checkin_decisions-value", `{"type":"object"}`)
	require.Error(t, err)
	require.Zero(t, registerCalls, "a flaky registry must not trigger re-registration")
}
