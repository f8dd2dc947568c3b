package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-dir", t.TempDir()}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "migrate", "cache"})

	migrate, _, err := cmd.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	assert.Equal(t, "down", migrate.Name())
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	_, err := run(t, "migrate", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER=postgres")
}

func TestCacheFlush_RequiresRedis(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	_, err := run(t, "cache", "flush")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_ADDR")
}

func TestOpenBackend_UnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := run(t, "serve")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported DB_DRIVER"))
}
