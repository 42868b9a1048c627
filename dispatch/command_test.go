package dispatch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailreport/apperr"
)

func TestResolveCommand_Literal(t *testing.T) {
	got, err := ResolveCommand("SELECT * FROM dbo.Orders WHERE Total > 10")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM dbo.Orders WHERE Total > 10", got)
}

func TestResolveCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT 1;\n"), 0o644))
	got, err := ResolveCommand(path)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;\n", got)
}

func TestResolveCommand_DirectoryIsLiteral(t *testing.T) {
	dir := t.TempDir()
	got, err := ResolveCommand(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestResolveCommand_Empty(t *testing.T) {
	_, err := ResolveCommand("")
	assert.True(t, errors.Is(err, apperr.Argument))

	path := filepath.Join(t.TempDir(), "empty.sql")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))
	_, err = ResolveCommand(path)
	assert.True(t, errors.Is(err, apperr.Argument))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "config_loaded", ConfigLoaded.String())
	assert.Equal(t, "unknown", State(99).String())
	assert.True(t, Done.Terminal())
	assert.True(t, Aborted.Terminal())
	assert.False(t, Rendered.Terminal())
}
