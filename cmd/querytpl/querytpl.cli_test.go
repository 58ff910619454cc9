package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test data constants
const (
	testTemplateContent = "SELECT * FROM users WHERE id = ?d AND name = ? {AND age > ?d}"
	testParamsYAML      = "- 5\n- bob\n- 18\n"
	testExpectedOutput  = "SELECT * FROM users WHERE id = 5 AND name = 'bob' AND age > 18"
	testSkippedOutput   = "SELECT * FROM users WHERE id = 5 AND name = 'bob' "
	testInvalidContent  = "SELECT 1\nWHERE {a = ?d {b}}"
)

// setupTestData creates test files in a temp directory
func setupTestData(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "query.sql"), []byte(testTemplateContent), FilePermissions))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "params.yaml"), []byte(testParamsYAML), FilePermissions))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "invalid.sql"), []byte(testInvalidContent), FilePermissions))

	return tmpDir
}

func execute(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	code := run(args, strings.NewReader(stdin), stdout, stderr)
	return code, stdout.String(), stderr.String()
}

// ==================== run() dispatch tests ====================

func TestRun_NoArgs_ShowsHelp(t *testing.T) {
	code, stdout, _ := execute(t, "")

	assert.Equal(t, ExitCodeSuccess, code)
	assert.Contains(t, stdout, CLIName)
	assert.Contains(t, stdout, CmdNameRender)
}

func TestRun_UnknownCommand(t *testing.T) {
	code, stdout, _ := execute(t, "", "explode")

	assert.Equal(t, ExitCodeUsageError, code)
	assert.Contains(t, stdout, ErrMsgUnknownCommand)
}

func TestRun_HelpCommand(t *testing.T) {
	tests := []struct {
		topic    string
		expected string
	}{
		{"", HelpMainUsage},
		{CmdNameRender, HelpRenderUsage},
		{CmdNameValidate, HelpValidateUsage},
		{CmdNameVersion, HelpVersionUsage},
		{CmdNameHelp, HelpHelpUsage},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			args := []string{CmdNameHelp}
			if tt.topic != "" {
				args = append(args, tt.topic)
			}
			code, stdout, _ := execute(t, "", args...)
			assert.Equal(t, ExitCodeSuccess, code)
			assert.Contains(t, stdout, tt.expected)
		})
	}
}

// ==================== render tests ====================

func TestRender(t *testing.T) {
	dir := setupTestData(t)
	query := filepath.Join(dir, "query.sql")

	tests := []struct {
		name     string
		stdin    string
		args     []string
		expected string
	}{
		{
			name:     "params file",
			args:     []string{"-t", query, "-f", filepath.Join(dir, "params.yaml")},
			expected: testExpectedOutput,
		},
		{
			name:     "inline json params",
			args:     []string{"--template", query, "--params", `[5, "bob", 18]`},
			expected: testExpectedOutput,
		},
		{
			name:     "skip tag",
			args:     []string{"-t", query, "-p", "[5, bob, !skip ]"},
			expected: testSkippedOutput,
		},
		{
			name:     "skip mapping",
			args:     []string{"-t", query, "-p", "[5, bob, {$skip: true}]"},
			expected: testSkippedOutput,
		},
		{
			name:     "template from stdin",
			stdin:    "SELECT ?# FROM t",
			args:     []string{"-t", "-", "-p", "[[id, name]]"},
			expected: "SELECT `id`, `name` FROM t",
		},
		{
			name:     "no params",
			stdin:    "SELECT 1",
			args:     []string{"-t", "-"},
			expected: "SELECT 1",
		},
		{
			name:     "allow excess",
			stdin:    "SELECT ?d",
			args:     []string{"-t", "-", "-p", "[1, 2]", "--allow-excess"},
			expected: "SELECT 1",
		},
		{
			name:     "trailing newline",
			stdin:    "SELECT 1",
			args:     []string{"-t", "-", "--newline"},
			expected: "SELECT 1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := execute(t, tt.stdin, append([]string{CmdNameRender}, tt.args...)...)
			require.Equal(t, ExitCodeSuccess, code, stderr)
			assert.Equal(t, tt.expected, stdout)
		})
	}
}

func TestRender_OutputFile(t *testing.T) {
	dir := setupTestData(t)
	out := filepath.Join(dir, "built.sql")

	code, stdout, stderr := execute(t, "", CmdNameRender,
		"-t", filepath.Join(dir, "query.sql"), "-f", filepath.Join(dir, "params.yaml"), "-o", out)
	require.Equal(t, ExitCodeSuccess, code, stderr)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, testExpectedOutput, string(data))
}

func TestRender_Catalog(t *testing.T) {
	catalog := t.TempDir()
	queryDir := filepath.Join(catalog, "users.by_id")
	require.NoError(t, os.MkdirAll(queryDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(queryDir, "v1.yaml"),
		[]byte("name: users.by_id\nsource: 'SELECT * FROM users WHERE id = ?d'\nversion: 1\n"), FilePermissions))

	code, stdout, stderr := execute(t, "", CmdNameRender, "-c", catalog, "-n", "users.by_id", "-p", "[42]")
	require.Equal(t, ExitCodeSuccess, code, stderr)
	assert.Equal(t, "SELECT * FROM users WHERE id = 42", stdout)

	code, _, stderr = execute(t, "", CmdNameRender, "-c", catalog, "-n", "missing")
	assert.Equal(t, ExitCodeError, code)
	assert.Contains(t, stderr, ErrMsgBuildFailed)
}

func TestRender_Errors(t *testing.T) {
	dir := setupTestData(t)
	query := filepath.Join(dir, "query.sql")

	tests := []struct {
		name     string
		args     []string
		code     int
		expected string
	}{
		{"missing template", []string{}, ExitCodeUsageError, ErrMsgMissingTemplate},
		{"template and name", []string{"-t", query, "-n", "q", "-c", dir}, ExitCodeUsageError, ErrMsgTemplateAndName},
		{"name without catalog", []string{"-n", "q"}, ExitCodeUsageError, ErrMsgNameNeedsCatalog},
		{"params and file", []string{"-t", query, "-p", "[]", "-f", "x"}, ExitCodeUsageError, ErrMsgParamsAndFile},
		{"unknown flag", []string{"--bogus"}, ExitCodeUsageError, ErrMsgInvalidFlags},
		{"missing template file", []string{"-t", filepath.Join(dir, "nope.sql")}, ExitCodeInputError, ErrMsgReadFileFailed},
		{"params not a list", []string{"-t", query, "-p", "a: 1"}, ExitCodeInputError, ErrMsgInvalidParams},
		{"missing params file", []string{"-t", query, "-f", filepath.Join(dir, "nope.yaml")}, ExitCodeInputError, ErrMsgInvalidParams},
		{"too few params", []string{"-t", query, "-p", "[5]"}, ExitCodeError, ErrMsgBuildFailed},
		{"malformed template", []string{"-t", filepath.Join(dir, "invalid.sql"), "-p", "[1]"}, ExitCodeError, ErrMsgBuildFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := execute(t, "", append([]string{CmdNameRender}, tt.args...)...)
			assert.Equal(t, tt.code, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tt.expected)
		})
	}
}

// ==================== validate tests ====================

func TestValidate_Text(t *testing.T) {
	dir := setupTestData(t)

	code, stdout, _ := execute(t, "", CmdNameValidate, "-t", filepath.Join(dir, "query.sql"))
	assert.Equal(t, ExitCodeSuccess, code)
	assert.Equal(t, "Template is valid: 3 marker(s), 1 block(s)\n", stdout)

	code, stdout, _ = execute(t, "", CmdNameValidate, "-t", filepath.Join(dir, "invalid.sql"))
	assert.Equal(t, ExitCodeValidationError, code)
	assert.Contains(t, stdout, "Template is invalid")
	assert.Contains(t, stdout, "at line 2, column 15")
}

func TestValidate_JSON(t *testing.T) {
	code, stdout, _ := execute(t, "SELECT ?# FROM t WHERE {x = ?d}", CmdNameValidate, "-t", "-", "-F", OutputFormatJSON)
	require.Equal(t, ExitCodeSuccess, code)

	var out validationOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.True(t, out.Valid)
	assert.Equal(t, 2, out.Markers)
	assert.Equal(t, 1, out.Blocks)
	assert.Nil(t, out.Error)

	code, stdout, _ = execute(t, "SELECT {x = ?d", CmdNameValidate, "-t", "-", "--format", OutputFormatJSON)
	require.Equal(t, ExitCodeValidationError, code)

	out = validationOutput{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.False(t, out.Valid)
	require.NotNil(t, out.Error)
	assert.Equal(t, "QUERYTPL_PARSE", out.Error.Code)
	assert.Equal(t, "1", out.Error.Line)
	assert.Equal(t, "8", out.Error.Column)
}

func TestValidate_FlagErrors(t *testing.T) {
	code, _, stderr := execute(t, "", CmdNameValidate)
	assert.Equal(t, ExitCodeUsageError, code)
	assert.Contains(t, stderr, ErrMsgMissingTemplate)

	code, _, stderr = execute(t, "", CmdNameValidate, "-t", "-", "-F", "xml")
	assert.Equal(t, ExitCodeUsageError, code)
	assert.Contains(t, stderr, ErrMsgInvalidFormat)
}

// ==================== version tests ====================

func TestVersion(t *testing.T) {
	code, stdout, _ := execute(t, "", CmdNameVersion)
	assert.Equal(t, ExitCodeSuccess, code)
	assert.Contains(t, stdout, "go-querytpl version")

	code, stdout, _ = execute(t, "", CmdNameVersion, "-F", OutputFormatJSON)
	require.Equal(t, ExitCodeSuccess, code)
	var out versionInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.NotEmpty(t, out.GoVersion)

	code, _, _ = execute(t, "", CmdNameVersion, "-F", "xml")
	assert.Equal(t, ExitCodeUsageError, code)
}

func TestGetVersionInfo_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "versions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"project:\n  name: go-querytpl\n  version: 1.2.3\ngit:\n  commit: abc123\n  branch: main\n"), FilePermissions))

	info := getVersionInfo([]string{filepath.Join(t.TempDir(), "missing.yaml"), path})
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc123", info.Commit)
	assert.Equal(t, "main", info.Branch)
	assert.Equal(t, VersionUnknown, info.BuildTime)

	info = getVersionInfo(nil)
	assert.Equal(t, VersionUnknown, info.Version)
}
