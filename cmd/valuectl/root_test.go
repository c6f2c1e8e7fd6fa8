package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/value-engine/generic"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFormat(t *testing.T) {
	out, err := run(t, "format", "-c", `{"type":"Duration"}`, "8w20m", "2w3d4h", "nope")
	require.NoError(t, err)
	assert.Equal(t, "8w20m\n2w3d4h\nnope!\n", out)

	out, err = run(t, "format", "-c", `{"type":"Duration"}`, "--max-units", "1", "2w3d4h")
	require.NoError(t, err)
	assert.Equal(t, "2w\n", out)
}

func TestFormat_LocalizedLetters(t *testing.T) {
	// GIVEN: Weeks spelled "t"
	// WHEN: Formatting a stored millisecond count
	// THEN: The native letter is used

	out, err := run(t, "format", "-c", `{"type":"Duration"}`, "--letters", "weeks=t", "144000000")
	require.NoError(t, err)
	assert.Equal(t, "1t\n", out)

	_, err = run(t, "format", "-c", `{"type":"Duration"}`, "--letters", "weeks=d", "1")
	assert.ErrorIs(t, err, generic.ErrAmbiguousUnitLetter)
}

func TestFormat_ConstraintFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
type: Select
config:
  options:
    - value: open
      label: Open
    - value: done
      label: Done
`), 0o644))

	out, err := run(t, "format", "-c", "@"+path, "done")
	require.NoError(t, err)
	assert.Equal(t, "Done\n", out)

	_, err = run(t, "format", "-c", "@"+filepath.Join(t.TempDir(), "missing.yaml"), "x")
	assert.Error(t, err)
}

func TestInput(t *testing.T) {
	out, err := run(t, "input", "-c", `{"type":"Percentage"}`, "66.66%")
	require.NoError(t, err)
	assert.JSONEq(t, `{"format":"67%","serialized":"0.67","valid":true}`, out)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"between", []string{"--condition", "between", "--operand", "1d", "--operand", "1w", "2d"}, "true\n"},
		{"greater", []string{"--condition", "gt", "--operand", "1w", "2d"}, "false\n"},
		{"empty", []string{"--condition", "empty", "null"}, "true\n"},
		{"fulltext", []string{"--fulltext", "2d", "2d"}, "true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"match", "-c", `{"type":"Duration"}`}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestMatch_Users(t *testing.T) {
	// GIVEN: A directory with Anna and Bob, Bob is the current user
	// WHEN: Matching a multi-user cell
	// THEN: hasNoneOf and current user operands resolve through the directory

	base := []string{
		"match", "-c", `{"type":"User","config":{"multi":true}}`,
		"--user", "Anna <anna@x.com>", "--user", "Bob <bob@x.com>",
		"--current-user", "bob@x.com",
	}

	out, err := run(t, append(base, "--condition", "hasNoneOf", "--operand", "bob@x.com", `["anna@x.com"]`)...)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	out, err = run(t, append(base, "--condition", "hasSome", "--me", `["anna@x.com","bob@x.com"]`)...)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	_, err = run(t, "match", "-c", `{"type":"User"}`, "--user", "not an address", "--condition", "empty", "x")
	assert.Error(t, err)
}

func TestMatch_Errors(t *testing.T) {
	_, err := run(t, "match", "-c", `{"type":"Number"}`, "1")
	assert.Error(t, err, "no condition")

	_, err = run(t, "match", "-c", `{"type":"Number"}`, "--condition", "around", "1")
	assert.Error(t, err)

	_, err = run(t, "format", "1")
	assert.Error(t, err, "constraint is required")
}

func TestTypes(t *testing.T) {
	out, err := run(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "Duration\torderable")
	assert.Contains(t, out, "Select\tset")
}
