package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runGenerateCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewGenerateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestGenerate_SingleFile(t *testing.T) {
	doc := writeFile(t, t.TempDir(), "sessions.json", sessionsDoc)

	out, err := runGenerateCmd(t, "text", "--dialect", "postgresql", doc)
	require.NoError(t, err)
	assert.Equal(t, "DROP TABLE IF EXISTS \"posts\";\nTRUNCATE TABLE \"app\".\"sessions\";\n", out)
}

func TestGenerate_DirectoryInOrder(t *testing.T) {
	dir := t.TempDir()
	sessions := writeFile(t, dir, "a/sessions.json", sessionsDoc)
	views := writeFile(t, dir, "b/views.yaml", viewsDoc)
	writeFile(t, dir, "b/README.md", "not a document")

	out, err := runGenerateCmd(t, "text", "-d", "mysql", "--jobs", "4", dir)
	require.NoError(t, err)
	want := "-- " + sessions + "\n" +
		"DROP TABLE IF EXISTS `posts`;\nTRUNCATE TABLE `app`.`sessions`;\n" +
		"\n-- " + views + "\n" +
		"DROP VIEW IF EXISTS `v`;\n"
	assert.Equal(t, want, out)
}

func TestGenerate_JSON(t *testing.T) {
	doc := writeFile(t, t.TempDir(), "views.yaml", viewsDoc)

	out, err := runGenerateCmd(t, "json", "-d", "sqlite", doc)
	require.NoError(t, err)

	var resp struct {
		Status  string         `json:"status"`
		Data    GenerateResult `json:"data"`
		TraceID string         `json:"trace_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, GenerateResult{
		Dialect: "sqlite",
		Files:   []GeneratedFile{{Path: doc, Statements: 1, SQL: "DROP VIEW IF EXISTS `v`;"}},
	}, resp.Data)
}

func TestGenerate_Out(t *testing.T) {
	dir := t.TempDir()
	sessions := writeFile(t, dir, "sessions.json", sessionsDoc)
	views := writeFile(t, dir, "views.yaml", viewsDoc)
	outFile := filepath.Join(dir, "build", "all.sql")

	out, err := runGenerateCmd(t, "text", "-d", "mysql", "--out", outFile, sessions, views)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+sessions+" -> "+outFile+" (2 statement(s))")

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, "DROP TABLE IF EXISTS `posts`;\nTRUNCATE TABLE `app`.`sessions`;\n\nDROP VIEW IF EXISTS `v`;\n", string(data))
}

func TestGenerate_OutDir(t *testing.T) {
	dir := t.TempDir()
	sessions := writeFile(t, dir, "sessions.json", sessionsDoc)
	outDir := filepath.Join(dir, "sql")

	_, err := runGenerateCmd(t, "text", "-d", "pg", "--out-dir", outDir, sessions)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "sessions.sql"))
	require.NoError(t, err)
	assert.Equal(t, "DROP TABLE IF EXISTS \"posts\";\nTRUNCATE TABLE \"app\".\"sessions\";\n", string(data))
}

func TestGenerate_OutDirNameCollision(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a/views.yaml", viewsDoc)
	b := writeFile(t, dir, "b/views.json", `{"statements": [{"kind": "drop", "object": "VIEW", "name": "w"}]}`)
	outDir := filepath.Join(dir, "sql")

	out, err := runGenerateCmd(t, "text", "-d", "mysql", "--out-dir", outDir, a, b)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeWriteFailed+"]")

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "nothing is written on a collision")
}

func TestGenerate_UnsupportedOperation(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "sessions.json", sessionsDoc)
	outFile := filepath.Join(dir, "out.sql")

	out, err := runGenerateCmd(t, "json", "-d", "sqlite", "--out", outFile, doc)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnsupportedOperation, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "statement 1")

	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), details["statement"])
	assert.Equal(t, "unsupported_operation", details["kind"])

	_, statErr := os.Stat(outFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerate_Errors(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "sessions.json", sessionsDoc)
	bad := writeFile(t, dir, "bad.json", badDoc)

	tests := []struct {
		name     string
		args     []string
		wantExit int
		wantCode string
	}{
		{"missing dialect", []string{doc}, ExitCommandError, ErrCodeUsage},
		{"unknown dialect", []string{"-d", "oracle", doc}, ExitCommandError, ErrCodeUnsupportedDialect},
		{"out and out-dir", []string{"-d", "mysql", "--out", "a.sql", "--out-dir", "sql", doc}, ExitCommandError, ErrCodeUsage},
		{"missing path", []string{"-d", "mysql", filepath.Join(dir, "nope.json")}, ExitCommandError, "E005"},
		{"invalid document", []string{"-d", "mysql", doc, bad}, ExitFailure, "E020"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runGenerateCmd(t, "text", tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.wantCode+"]")
		})
	}
}

func TestGenerate_MissingArgs(t *testing.T) {
	_, err := runGenerateCmd(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}
