package riscvconfig

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "0x0", cfg.Assembler.TextStart)
	assert.Equal(t, 64, cfg.Assembler.XLEN)
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Assembler.EnabledExtensions = "MC"
	cfg.Service.Port = 9090

	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "MC", loaded.Assembler.EnabledExtensions)
	assert.Equal(t, 9090, loaded.Service.Port)
}

func TestAssemblerConfig_ParsesHexAddresses(t *testing.T) {
	cfg := DefaultConfig()
	ac, err := cfg.AssemblerConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0), ac.TextStart)
	assert.Equal(t, uint64(0x10000000), ac.DataStart)
	assert.Equal(t, uint64(0x11000000), ac.BSSStart)
	assert.Equal(t, byte('#'), ac.CommentChar)
}

func TestAssemblerConfig_RejectsBadCommentChar(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Assembler.CommentChar = "##"
	_, err := cfg.AssemblerConfig()
	assert.Error(t, err)
}
