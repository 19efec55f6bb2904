//go:build integration

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("taskkeeper"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pg) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) call(method, path string, body any) (*http.Response, map[string]any) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func (c *client) register(name string) {
	c.t.Helper()
	resp, _ := c.call(http.MethodPost, "/register", map[string]string{
		"username": name, "email": name + "@example.com", "password": "pw-" + name,
	})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)

	resp, body := c.call(http.MethodPost, "/token", map[string]string{"username": name, "password": "pw-" + name})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	c.token = body["access_token"].(string)
}

func TestIntegration_TaskFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dsn := setupPostgres(t)
	ctx := context.Background()

	rm := repomanager.NewPostgresRepositoryManager()
	db, err := OpenDatabase(ctx, dsn, rm)
	require.NoError(t, err)
	defer db.Close()

	// migrations are idempotent
	require.NoError(t, rm.RunMigrations(ctx, db))

	app := newApp(testConfig(), logging.Discard(), db, rm, nil)
	srv := httptest.NewServer(app.handler)
	defer srv.Close()

	alice := &client{t: t, base: srv.URL}
	alice.register("alice")
	bob := &client{t: t, base: srv.URL}
	bob.register("bob")

	resp, _ := alice.call(http.MethodPost, "/register", map[string]string{"username": "alice", "password": "x"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, _ = alice.call(http.MethodPost, "/register", map[string]string{"username": "alice3", "email": "bob@example.com", "password": "x"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "duplicate email")

	resp, task := alice.call(http.MethodPost, "/tasks", map[string]string{"title": "Write report"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := int64(task["id"].(float64))
	assert.Equal(t, "pending", task["status"])
	assert.Nil(t, task["completed_at"])
	path := fmt.Sprintf("/tasks/%d", id)

	resp, _ = bob.call(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = bob.call(http.MethodPatch, path, map[string]string{"title": "hijack"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = bob.call(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, updated := alice.call(http.MethodPatch, path, map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", updated["status"])
	assert.Equal(t, "Write report", updated["title"])
	assert.NotNil(t, updated["completed_at"])

	resp, updated = alice.call(http.MethodPut, path, map[string]any{"status": "in_progress", "description": "draft"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, updated["completed_at"])
	assert.Equal(t, "draft", updated["description"])

	resp, _ = alice.call(http.MethodPost, path+"/attachment", nil)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	resp, _ = alice.call(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = alice.call(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE username = $1", "alice").Scan(&n))
	assert.Equal(t, 1, n)

	var hash string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT password_hash FROM users WHERE username = $1", "alice").Scan(&hash))
	assert.NotEqual(t, "pw-alice", hash)
	assert.Contains(t, hash, "$2")
}

func TestIntegration_SQLInjectionIsInert(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dsn := setupPostgres(t)
	ctx := context.Background()

	rm := repomanager.NewPostgresRepositoryManager()
	db, err := OpenDatabase(ctx, dsn, rm)
	require.NoError(t, err)
	defer db.Close()

	app := newApp(testConfig(), logging.Discard(), db, rm, nil)
	srv := httptest.NewServer(app.handler)
	defer srv.Close()

	c := &client{t: t, base: srv.URL}
	c.register("mallory")

	hostile := "x'); DROP TABLE tasks; --"
	resp, task := c.call(http.MethodPost, "/tasks", map[string]string{"title": hostile})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, hostile, task["title"])

	resp, _ = c.call(http.MethodPost, "/token", map[string]string{"username": "' OR '1'='1", "password": "' OR '1'='1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks").Scan(&n))
	assert.Equal(t, 1, n)
}
