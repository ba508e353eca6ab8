package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kailash-Sankar/PocketMCP/internal/core/ports/driving"
)

func TestServeCmd_Use(t *testing.T) {
	assert.Equal(t, "serve", serveCmd.Use)
	assert.Equal(t, "Start the MCP server", serveCmd.Short)
}

func TestServeCmd_HasFlags(t *testing.T) {
	httpFlag := serveCmd.Flags().Lookup("http")
	require.NotNil(t, httpFlag)
	assert.Equal(t, "", httpFlag.DefValue)

	apiFlag := serveCmd.Flags().Lookup("api")
	require.NotNil(t, apiFlag)
	assert.Equal(t, "", apiFlag.DefValue)

	watchFlag := serveCmd.Flags().Lookup("watch")
	require.NotNil(t, watchFlag)
	assert.Equal(t, "false", watchFlag.DefValue)
}

func TestServeCmd_WatchWithoutDir(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"serve", "--watch"})
	defer func() {
		rootCmd.SetArgs(nil)
		serveWatch = false
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no watch directory configured")
}

func TestServeCmd_WatcherError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	appSettings.WatchDir = "/notes"
	newWatcher = func(_ string) (driving.Watcher, error) {
		return nil, errors.New("watch root /notes does not exist")
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"serve"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "watch root /notes does not exist")
}

func TestServeCmd_WatcherStartError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	appSettings.WatchDir = "/notes"
	newWatcher = func(_ string) (driving.Watcher, error) {
		return &mockWatcher{startErr: errors.New("inotify limit reached")}, nil
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"serve", "--watch"})
	defer func() {
		rootCmd.SetArgs(nil)
		serveWatch = false
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "starting watcher")
}

func TestServeCmd_WiringError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	wireServices = func() error { return errors.New("opening index store: disk full") }

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"serve"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "opening index store")
}
