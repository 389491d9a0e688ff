package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ELECTION_STORE", "sqlite")
	t.Setenv("ELECTION_DATABASE_URL", filepath.Join(t.TempDir(), "election.db"))
	t.Setenv("ELECTION_SECRETS", "sql")
	t.Setenv("ELECTION_ARGON_TIME", "1")
	t.Setenv("ELECTION_ARGON_MEMORY_KIB", "64")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), "election %s", strings.Join(args, " "))
	return strings.TrimSpace(out.String())
}

func TestElectionFlowAcrossInvocations(t *testing.T) {
	setupEnv(t)

	assert.Equal(t, "1\tAda", run(t, "candidate", "add", "Ada"))
	assert.Equal(t, "2\tGrace", run(t, "candidate", "add", "Grace"))
	assert.Equal(t, "1\tAda\n2\tGrace", run(t, "candidate", "list"))

	assert.Equal(t, "voter registered", run(t, "register", "Sara", "Jenkins", "123-45-6789"))
	assert.Equal(t, "voter already registered", run(t, "register", "Sara", "Jenkins", "123456789"))
	assert.Equal(t, "voter not registered", run(t, "issue", "000-00-0000"))

	b1 := run(t, "issue", "123-45-6789")
	b2 := run(t, "issue", "123-45-6789")
	require.NotEqual(t, b1, b2)

	assert.Equal(t, "ballot counted", run(t, "count", "123-45-6789", b1, "2", "Sara Jenkins says hi"))
	assert.Equal(t, "false", run(t, "verify", "123-45-6789", b2), "counting b1 invalidates b2")
	assert.Equal(t, "false", run(t, "invalidate", b1))
	assert.Equal(t, "fraud committed: the voter has already voted", run(t, "count", "123-45-6789", b2, "1"))

	assert.Equal(t, "fraud committed", run(t, "status", "123-45-6789"))
	assert.Equal(t, "Sara Jenkins", run(t, "fraud"))
	assert.Equal(t, "[REDACTED NAME] [REDACTED NAME] says hi", run(t, "comments"))
	assert.Equal(t, "2\tGrace", run(t, "winner"))

	assert.Equal(t, "voter deleted", run(t, "delete-voter", "123-45-6789"))
	assert.Equal(t, "not registered", run(t, "status", "123-45-6789"))
}

func TestMemoryStoreWithMemorySecrets(t *testing.T) {
	t.Setenv("ELECTION_STORE", "memory")
	t.Setenv("ELECTION_SECRETS", "memory")
	t.Setenv("ELECTION_ARGON_TIME", "1")
	t.Setenv("ELECTION_ARGON_MEMORY_KIB", "64")
	t.Setenv("LOG_LEVEL", "error")

	assert.Equal(t, "no votes counted", run(t, "winner"))
}

func TestInvalidConfigFails(t *testing.T) {
	t.Setenv("ELECTION_STORE", "mongo")
	rootCmd.SetArgs([]string{"winner"})
	assert.Error(t, rootCmd.Execute())
	assert.Nil(t, current)
}

func TestMetricsPushedPerCommand(t *testing.T) {
	setupEnv(t)
	var (
		mu     sync.Mutex
		pushes = map[string]string{}
	)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		pushes[r.URL.Path] = string(body)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()
	t.Setenv("ELECTION_METRICS_PUSHGATEWAY", gateway.URL)

	run(t, "register", "Sara", "Jenkins", "123-45-6789")
	run(t, "candidate", "add", "Ada")

	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, pushes, "/metrics/job/election/command/register")
	assert.Contains(t, pushes["/metrics/job/election/command/register"], "election_voters_registered_total")
	assert.Contains(t, pushes, "/metrics/job/election/command/candidate_add")
}

func TestUnreachableGatewayDoesNotFailCommand(t *testing.T) {
	setupEnv(t)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	gateway.Close()
	t.Setenv("ELECTION_METRICS_PUSHGATEWAY", gateway.URL)

	assert.Equal(t, "voter registered", run(t, "register", "Sara", "Jenkins", "123-45-6789"))
}
