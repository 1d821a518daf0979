package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/figura/internal/editor"
)

func TestLoadDefaultsMatchEditorDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, editor.DefaultSettings(), cfg.Settings())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("EDITOR_HANDLE_SIZE", "11")
	t.Setenv("EDITOR_UNDO_LIMIT", "5")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test:3000, https://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 11.0, cfg.Settings().HandleSize)
	assert.Equal(t, 5, cfg.Settings().UndoLimit)
	assert.Equal(t, []string{"a.test:3000", "b.test"}, cfg.Origins())
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("EDITOR_FIT_ERROR", "loose")
	_, err := Load()
	assert.Error(t, err)
}
