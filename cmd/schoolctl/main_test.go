package main

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-odoo-sync/pkg/export"
)

const odooHost = "http://odoo.test"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--odoo-host", odooHost, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func activate(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
	t.Setenv("CACHE_DRIVER", "memory")
}

func TestHealthCommand(t *testing.T) {
	activate(t)
	httpmock.RegisterResponder(http.MethodPost, odooHost+"/web/database/list",
		httpmock.NewStringResponder(http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":["school"]}`))

	out, err := run(t, "health", "--retries", "1", "--delay", "0s")
	require.NoError(t, err)
	assert.Contains(t, out, "odoo reachable at "+odooHost)
}

func TestHealthCommandFailsWhenUnreachable(t *testing.T) {
	activate(t)
	httpmock.RegisterResponder(http.MethodPost, odooHost+"/web/database/list",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := run(t, "health", "--retries", "2", "--delay", "0s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable after 2 attempt(s)")
}

func TestListCommandRequiresSession(t *testing.T) {
	activate(t)

	_, err := run(t, "list", "students")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session")
}

func TestAttendanceBulkRejectsMissingFile(t *testing.T) {
	activate(t)

	_, err := run(t, "attendance", "bulk", "--file", filepath.Join(t.TempDir(), "missing.json"), "--username", "")
	require.Error(t, err)
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printTable(&buf, export.Table{
		Headers: []string{"ID", "Name"},
		Rows:    [][]string{{"1", "Ana"}, {"22", "Budi"}},
	}))
	assert.Equal(t, "ID  Name\n1   Ana\n22  Budi\n2 row(s)\n", buf.String())
}

func TestListCommandWritesCSV(t *testing.T) {
	activate(t)
	httpmock.RegisterResponder(http.MethodPost, odooHost+"/web/database/list",
		httpmock.NewStringResponder(http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":["school"]}`))
	httpmock.RegisterResponder(http.MethodPost, odooHost+"/web/session/authenticate",
		httpmock.NewStringResponder(http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":{"uid":2,"name":"Admin","username":"admin","role":"admin","session_id":"sid"}}`))
	httpmock.RegisterResponder(http.MethodPost, odooHost+"/web/session/get_session_info",
		httpmock.NewStringResponder(http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":{"uid":2,"name":"Admin"}}`))
	httpmock.RegisterResponder(http.MethodPost, odooHost+"/web/dataset/call_kw",
		httpmock.NewStringResponder(http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":[]}`))

	target := filepath.Join(t.TempDir(), "subjects.csv")
	out, err := run(t, "--username", "admin", "--password", "pw", "list", "subjects", "--format", "csv", "--output", target)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+target)

	body, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
}
