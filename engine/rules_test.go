package engine_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"justicia-backend/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRuleSet(t *testing.T) {
	rs := engine.DefaultRuleSet()

	require.NoError(t, rs.Validate())
	assert.Equal(t, "2024.1", rs.Version)
	require.Len(t, rs.Rules, 8)
	require.Len(t, rs.Bands, 4)

	names := make([]string, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"low_amount", "high_amount", "documentary_evidence", "respondent_default",
		"executory_collection", "factual_complexity", "constitutional_issue", "novel_issue",
	}, names)
}

func TestParseRuleSet_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown key",
			yaml: "version: x\nrulez: []\n",
			want: "failed to decode rule table",
		},
		{
			name: "no bands",
			yaml: "version: x\nrules: []\nbands: []\n",
			want: "at least one band is required",
		},
		{
			name: "unknown field",
			yaml: `
rules:
  - name: r
    factor: f
    score: 1
    when:
      - field: color
        op: equals
        terms: [red]
bands:
  - tier: 1
    confidence: 0.5
`,
			want: `unknown field "color"`,
		},
		{
			name: "operator not allowed",
			yaml: `
rules:
  - name: r
    factor: f
    score: 1
    when:
      - field: has_response
        op: lt
bands:
  - tier: 1
    confidence: 0.5
`,
			want: `operator "lt" not supported`,
		},
		{
			name: "missing value",
			yaml: `
rules:
  - name: r
    factor: f
    score: 1
    when:
      - field: claimed_amount
        op: lt
bands:
  - tier: 1
    confidence: 0.5
`,
			want: "value is required",
		},
		{
			name: "duplicate rule",
			yaml: `
rules:
  - name: r
    factor: f
    score: 1
    when: [{field: has_response, op: is_true}]
  - name: r
    factor: g
    score: 1
    when: [{field: has_response, op: is_false}]
bands:
  - tier: 1
    confidence: 0.5
`,
			want: "duplicate name",
		},
		{
			name: "bad floor",
			yaml: `
rules:
  - name: r
    factor: f
    score: 1
    floor: {tier: 7, mode: lowest}
    when: [{field: has_response, op: is_true}]
bands:
  - tier: 1
    confidence: 0.5
`,
			want: "floor tier 7 outside 1..4",
		},
		{
			name: "catch-all band not last",
			yaml: `
rules: []
bands:
  - tier: 1
    confidence: 0.5
  - min_score: 0
    tier: 2
    confidence: 0.5
`,
			want: "only the last band may omit min_score",
		},
		{
			name: "bands not decreasing",
			yaml: `
rules: []
bands:
  - min_score: 1
    tier: 1
    confidence: 0.5
  - min_score: 3
    tier: 2
    confidence: 0.5
  - tier: 3
    confidence: 0.5
`,
			want: "min_score must be lower than the previous band",
		},
		{
			name: "confidence out of range",
			yaml: `
rules: []
bands:
  - tier: 1
    confidence: 1.5
`,
			want: "outside [0,1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.ParseRuleSet(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRuleSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "local"
rules:
  - name: big
    factor: "Big claim"
    score: -10
    when:
      - field: claimed_amount
        op: gte
        value: 1000000
bands:
  - min_score: 0
    tier: 2
    confidence: 0.8
  - tier: 4
    confidence: 0.6
`), 0o644))

	rs, err := engine.LoadRuleSet(path)
	require.NoError(t, err)
	assert.Equal(t, "local", rs.Version)

	_, err = engine.LoadRuleSet(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open rule table")
}
