package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemeportal/internal/eligibility/models"
	"schemeportal/pkg/secrets"
)

const catalog = `[
  {
    "id": "11111111-1111-1111-1111-111111111111",
    "name": "Senior Citizen Pension",
    "status": "active",
    "eligibility_criteria": {"min_age": 60, "max_income": 100000}
  },
  {
    "id": "22222222-2222-2222-2222-222222222222",
    "name": "Rural Farmer Support",
    "status": "active",
    "eligibility_criteria": {"allowed_occupations": ["farmer"], "residence_type": ["rural"]}
  },
  {
    "id": "33333333-3333-3333-3333-333333333333",
    "name": "Broken Scheme",
    "status": "active",
    "eligibility_criteria": {"min_age": 70, "max_age": 20}
  }
]`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Setenv("HOME", t.TempDir())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestEligibilityCheck(t *testing.T) {
	schemes := writeFile(t, "catalog.json", catalog)

	t.Run("table output with reasons", func(t *testing.T) {
		out, err := execute(t, "eligibility", "check", "--schemes", schemes,
			"--age", "67", "--residence", "rural", "--income", "80000", "--occupation", "retired")
		require.NoError(t, err)

		assert.Contains(t, out, "Senior Citizen Pension")
		assert.Contains(t, out, "Restricted to: farmer")
		assert.NotContains(t, out, "Broken Scheme")
		assert.Contains(t, out, "1 of 2 schemes eligible")
	})

	t.Run("json output", func(t *testing.T) {
		out, err := execute(t, "eligibility", "check", "--schemes", schemes, "--json",
			"--age", "30", "--residence", "urban", "--income", "250000", "--occupation", "employed")
		require.NoError(t, err)

		var results []models.Result
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 2)
		assert.Equal(t, models.StatusNotEligible, results[0].Status)
		assert.Equal(t, []string{"Minimum age is 60 (You are 30)", "Income exceeds limit of ₹1,00,000"}, results[0].Reasons)
	})

	t.Run("profile file", func(t *testing.T) {
		profile := writeFile(t, "profile.json",
			`{"age": 45, "residence": "rural", "annual_income": 60000, "occupation": "farmer"}`)
		out, err := execute(t, "eligibility", "check", "--schemes", schemes, "--profile", profile)
		require.NoError(t, err)
		assert.Contains(t, out, "1 of 2 schemes eligible")
	})

	t.Run("invalid profile", func(t *testing.T) {
		_, err := execute(t, "eligibility", "check", "--schemes", schemes, "--age", "30")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid profile")
	})

	t.Run("no catalog source", func(t *testing.T) {
		_, err := execute(t, "eligibility", "check",
			"--age", "30", "--residence", "urban", "--income", "1", "--occupation", "student")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no scheme catalog")
	})
}

func TestEligibilityCheckFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schemes" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count": 3, "schemes": ` + catalog + `}`))
	}))
	defer srv.Close()

	t.Setenv("PORTAL_API_URL", srv.URL)
	out, err := execute(t, "eligibility", "check",
		"--age", "45", "--residence", "rural", "--income", "60000", "--occupation", "farmer")
	require.NoError(t, err)
	assert.Contains(t, out, "Rural Farmer Support")
	assert.Contains(t, out, "1 of 2 schemes eligible")
}

func TestWorkflowCheck(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"analyst cannot approve", []string{"--role", "analyst", "--from", "under_review", "--to", "approved"},
			"denied (forbidden): Analysts cannot grant final approval; forward to admin instead"},
		{"admin approves forwarded", []string{"--role", "admin", "--from", "forwarded_to_admin", "--to", "approved"},
			"allowed: admin may move forwarded_to_admin -> approved\n"},
		{"leaving review needs notes", []string{"--role", "analyst", "--from", "under_review", "--to", "rejected"},
			"(notes required)"},
		{"same status", []string{"--role", "admin", "--from", "under_review", "--to", "under_review"},
			"no-op"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"workflow", "check"}, tt.args...)...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}

	_, err := execute(t, "workflow", "check", "--role", "clerk", "--from", "pending", "--to", "approved")
	assert.Error(t, err)
}

func TestWorkflowTable(t *testing.T) {
	out, err := execute(t, "workflow", "table", "--role", "analyst", "--allowed", "--json")
	require.NoError(t, err)

	var rules []ruleView
	require.NoError(t, json.Unmarshal([]byte(out), &rules))
	require.NotEmpty(t, rules)
	for _, r := range rules {
		assert.Equal(t, "analyst", string(r.Role))
		assert.True(t, r.Allowed)
		assert.NotEqual(t, "approved", string(r.To))
	}

	out, err = execute(t, "workflow", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "ROLE")
	assert.Contains(t, out, "denied: forbidden")
}

func TestScrapeToken(t *testing.T) {
	out, err := execute(t, "secret", "scrape-token")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	token, ok := strings.CutPrefix(lines[0], "token: ")
	require.True(t, ok)
	hash, ok := strings.CutPrefix(lines[1], "METRICS_TOKEN_HASH=")
	require.True(t, ok)
	assert.NoError(t, secrets.VerifyToken(token, hash))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "portalctl dev\n", out)
}
