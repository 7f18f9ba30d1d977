package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlir/internal/ir"
	"github.com/roach88/sqlir/internal/loader"
	"github.com/roach88/sqlir/internal/sqlerr"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
cases:
  - name: begin
    statement: {kind: begin}
    expect:
      mysql: START TRANSACTION;
      postgres:
        contains: [BEGIN]
      sqlite: {}
  - name: revoke
    statement:
      kind: revoke
      privileges: [SELECT]
      "on": t
      from: u
    expect:
      sqlite: {error: unsupported_operation}
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, path, scenario.Path)
	require.Len(t, scenario.Cases, 2)

	begin := scenario.Cases[0]
	require.Len(t, begin.Statements, 1)
	assert.IsType(t, &ir.Begin{}, begin.Statements[0])
	assert.Equal(t, Expectation{SQL: "START TRANSACTION;"}, begin.Expect["mysql"])
	assert.Equal(t, []string{"BEGIN"}, begin.Expect["postgres"].Contains)
	assert.True(t, begin.Expect["sqlite"].Success())

	revoke := scenario.Cases[1]
	assert.IsType(t, &ir.Revoke{}, revoke.Statements[0])
	assert.Equal(t, sqlerr.KindUnsupportedOperation, revoke.Expect["sqlite"].Error)
}

func TestLoadScenario_Document(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/transactions.yaml")
	require.NoError(t, err)

	uow := scenario.Cases[0]
	assert.Equal(t, "../docs/unit_of_work.cue", uow.Document)
	require.Len(t, uow.Statements, 5)
	assert.IsType(t, &ir.Update{}, uow.Statements[2])
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_InvalidYAML(t *testing.T) {
	path := writeScenario(t, "name: [unclosed\n")
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_UnknownFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"scenario field", `
name: s
description: d
flow: []
cases:
  - {name: c, statement: {kind: begin}, expect: {mysql: {}}}
`},
		{"expectation field", `
name: s
description: d
cases:
  - name: c
    statement: {kind: begin}
    expect:
      mysql: {sql: BEGIN;, kind: validation}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to parse YAML")
			assert.Contains(t, err.Error(), "not found")
		})
	}
}

func TestLoadScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing name", `
description: d
cases:
  - {name: c, statement: {kind: begin}, expect: {mysql: {}}}
`, "name is required"},
		{"missing description", `
name: s
cases:
  - {name: c, statement: {kind: begin}, expect: {mysql: {}}}
`, "description is required"},
		{"no cases", `
name: s
description: d
cases: []
`, "cases list is required"},
		{"case without name", `
name: s
description: d
cases:
  - {statement: {kind: begin}, expect: {mysql: {}}}
`, "cases[0]: name is required"},
		{"duplicate case", `
name: s
description: d
cases:
  - {name: c, statement: {kind: begin}, expect: {mysql: {}}}
  - {name: c, statement: {kind: commit}, expect: {mysql: {}}}
`, `duplicate case name "c"`},
		{"no input", `
name: s
description: d
cases:
  - {name: c, expect: {mysql: {}}}
`, "statement or document is required"},
		{"both inputs", `
name: s
description: d
cases:
  - {name: c, statement: {kind: begin}, document: x.json, expect: {mysql: {}}}
`, "mutually exclusive"},
		{"no expectations", `
name: s
description: d
cases:
  - {name: c, statement: {kind: begin}}
`, "expect is required"},
		{"unknown error kind", `
name: s
description: d
cases:
  - {name: c, statement: {kind: begin}, expect: {mysql: {error: boom}}}
`, `cases[0].expect.mysql: unknown error kind "boom"`},
		{"error with sql", `
name: s
description: d
cases:
  - {name: c, statement: {kind: begin}, expect: {mysql: {error: validation, sql: BEGIN;}}}
`, "error excludes sql and contains"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_BadStatement(t *testing.T) {
	path := writeScenario(t, `
name: s
description: d
cases:
  - name: merge
    statement:
      kind: merge
    expect:
      mysql: {}
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `case "merge"`)

	var le *loader.LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, loader.ErrCodeDecode, le.Code)
	assert.Equal(t, 7, le.Line)
}

func TestLoadScenario_MissingDocument(t *testing.T) {
	path := writeScenario(t, `
name: s
description: d
cases:
  - {name: c, document: nope.json, expect: {mysql: {}}}
`)
	_, err := LoadScenario(path)
	var le *loader.LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, loader.ErrCodeNotFound, le.Code)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "nope.json"), le.Path)
}

func TestFindScenarios(t *testing.T) {
	files, err := FindScenarios("testdata/scenarios", "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "scenarios", "queries.yaml"),
		filepath.Join("testdata", "scenarios", "tables.yaml"),
		filepath.Join("testdata", "scenarios", "transactions.yaml"),
	}, files)

	files, err = FindScenarios("testdata/scenarios", "t*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = FindScenarios("testdata/scenarios", "[")
	assert.ErrorContains(t, err, "invalid filter pattern")

	_, err = FindScenarios("testdata/nope", "")
	assert.Error(t, err)
}
