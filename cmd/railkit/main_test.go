package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/railkit"
	"github.com/soypat/railkit/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command. Flags keep their state between runs, so
// globals read without a flag are reset first.
func execute(t *testing.T, args ...string) string {
	t.Helper()
	configPath, outDir = "", "."
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCommands(t *testing.T) {
	t.Run("params", func(t *testing.T) {
		cfg := filepath.Join(t.TempDir(), "rail.yaml")
		require.NoError(t, os.WriteFile(cfg, []byte("innerWidth: 12\nlength: 80\n"), 0o644))
		out := execute(t, "params", "--config", cfg, "--length", "42", "--format", "toml")
		p, err := railkit.DecodeParameters(bytes.NewBufferString(out), railkit.TOML)
		require.NoError(t, err)
		assert.Equal(t, 12., p.InnerWidth, "config value lost")
		assert.Equal(t, 42., p.Length, "flag does not override config")
		assert.Equal(t, railkit.DefaultParameters().InnerHeight, p.InnerHeight)
	})

	t.Run("generate", func(t *testing.T) {
		dir := t.TempDir()
		execute(t, "generate", "--holes", "0", "--length", "20", "-o", dir)
		for _, role := range railkit.Roles {
			f, err := os.Open(filepath.Join(dir, railkit.Filename(role)))
			require.NoError(t, err)
			model, err := render.ReadSTL(f)
			f.Close()
			if err != nil {
				require.ErrorIs(t, err, render.ErrNormalMismatch)
			}
			assert.NotEmpty(t, model, role.String())
		}
	})

	t.Run("preview", func(t *testing.T) {
		dir := t.TempDir()
		execute(t, "preview", "--role", "connector", "--format", "svg", "-o", dir)
		b, err := os.ReadFile(filepath.Join(dir, "connector_profile.svg"))
		require.NoError(t, err)
		assert.Contains(t, string(b), "W: ")
	})
}
