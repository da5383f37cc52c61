package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCmd_Tree(t *testing.T) {
	root := NewRootCmd()

	for _, path := range [][]string{
		{"serve"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "version"},
	} {
		cmd, rest, err := root.Find(path)
		require.NoError(t, err, path)
		require.Empty(t, rest)
		require.Equal(t, path[len(path)-1], cmd.Name())
	}
	require.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestServe_MissingConfig(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"serve"})

	err := root.Execute()
	require.ErrorContains(t, err, "missing required config")
}

func TestMigrate_MissingConfigFile(t *testing.T) {
	chdirForTest(t, t.TempDir())

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--config", "absent.json", "migrate", "version"})

	require.Error(t, root.Execute())
}
