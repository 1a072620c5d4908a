package tracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/logtriage/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.TrackerConfig{
		BaseURL: server.URL,
		Token:   "secret",
		Project: "QA",
		Timeout: 5 * time.Second,
	})
}

func TestCreateTicket(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/tickets", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		var ticket Ticket
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ticket))
		// Project defaults to the client's configured project.
		assert.Equal(t, "QA", ticket.Project)

		ticket.Key = "QA-101"
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ticket)
	})

	created, err := client.CreateTicket(context.Background(), Ticket{
		Summary:     "Login flow failed: Element wait timeout",
		Description: "details",
	})
	require.NoError(t, err)
	assert.Equal(t, "QA-101", created.Key)
}

func TestGetTicket(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tickets/QA-7", r.URL.Path)
		json.NewEncoder(w).Encode(Ticket{Key: "QA-7", Summary: "existing"})
	})

	ticket, err := client.GetTicket(context.Background(), "QA-7")
	require.NoError(t, err)
	assert.Equal(t, "existing", ticket.Summary)
}

func TestSearchTickets(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tickets", r.URL.Path)
		assert.Equal(t, "QA", r.URL.Query().Get("project"))
		assert.Equal(t, "timeout", r.URL.Query().Get("query"))
		json.NewEncoder(w).Encode([]Ticket{{Key: "QA-1"}, {Key: "QA-2"}})
	})

	tickets, err := client.SearchTickets(context.Background(), "timeout")
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
}

func TestActiveSprint(t *testing.T) {
	t.Run("returns first active sprint", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/sprints/active", r.URL.Path)
			json.NewEncoder(w).Encode([]Sprint{{ID: 3, Name: "Sprint 3", State: "active"}})
		})

		sprint, err := client.ActiveSprint(context.Background())
		require.NoError(t, err)
		require.NotNil(t, sprint)
		assert.Equal(t, 3, sprint.ID)
	})

	t.Run("nil when no sprint is active", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]Sprint{})
		})

		sprint, err := client.ActiveSprint(context.Background())
		require.NoError(t, err)
		assert.Nil(t, sprint)
	})
}

func TestAddToSprint(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sprints/3/tickets", r.URL.Path)
		var body map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"QA-1", "QA-2"}, body["tickets"])
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.AddToSprint(context.Background(), 3, "QA-1", "QA-2")
	require.NoError(t, err)
}

func TestErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such project", http.StatusNotFound)
	})

	_, err := client.GetTicket(context.Background(), "QA-404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "no such project")
}
