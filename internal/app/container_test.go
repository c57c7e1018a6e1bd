package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aki/chatsweep/internal/adapters/discord"
	"github.com/aki/chatsweep/internal/core/sweep"
)

// NewTestContainer creates a container over a temporary state directory
func NewTestContainer(t *testing.T, env map[string]string) *Container {
	t.Helper()

	c, err := NewContainer(filepath.Join(t.TempDir(), "config.yaml"), nil)
	require.NoError(t, err, "Failed to create container")

	c.getenv = func(key string) string { return env[key] }
	return c
}

func TestNewContainer_Defaults(t *testing.T) {
	c := NewTestContainer(t, nil)

	assert.Equal(t, sweep.DefaultSettings(), c.Settings())
	assert.Equal(t, filepath.Join(c.ConfigManager.GetStateDir(), "history.yaml"), c.History.Path())
	assert.NotNil(t, c.Metrics)
	assert.Equal(t, filepath.Join(c.ConfigManager.GetStateDir(), "active.yaml"), c.Active.Path())
}

func TestContainer_MissingToken(t *testing.T) {
	c := NewTestContainer(t, nil)

	_, err := c.Client()
	assert.ErrorIs(t, err, discord.ErrMissingToken)
	assert.Contains(t, err.Error(), "CHATSWEEP_TOKEN")

	_, err = c.NewSweeper(SweeperOptions{})
	assert.ErrorIs(t, err, discord.ErrMissingToken)
}

func TestContainer_ClientAndSweeper(t *testing.T) {
	c := NewTestContainer(t, map[string]string{"CHATSWEEP_TOKEN": "secret"})

	client, err := c.Client()
	require.NoError(t, err)
	again, err := c.Client()
	require.NoError(t, err)
	assert.Same(t, client, again)

	s, err := c.NewSweeper(SweeperOptions{Confirmer: sweep.AutoConfirm})
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestContainer_CustomTokenEnv(t *testing.T) {
	c := NewTestContainer(t, map[string]string{"OTHER_TOKEN": "secret"})
	c.Config.API.TokenEnv = "OTHER_TOKEN"

	token, err := c.Token()
	require.NoError(t, err)
	assert.Equal(t, "secret", token)
}
