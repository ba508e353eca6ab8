package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil searcher returns error", func(t *testing.T) {
		ports := testPorts()
		ports.Search = nil

		server, err := NewServer(ports)

		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingSearcher)
	})

	t.Run("nil ingestor returns error", func(t *testing.T) {
		ports := testPorts()
		ports.Ingest = nil

		_, err := NewServer(ports)

		assert.ErrorIs(t, err, ErrMissingIngestor)
	})

	t.Run("nil document reader returns error", func(t *testing.T) {
		ports := testPorts()
		ports.Documents = nil

		_, err := NewServer(ports)

		assert.ErrorIs(t, err, ErrMissingDocumentReader)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(testPorts())

		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("required ports only is valid", func(t *testing.T) {
		assert.NoError(t, testPorts().Validate())
	})

	t.Run("watcher is optional", func(t *testing.T) {
		ports := testPorts()
		ports.Watch = &mockWatcher{}

		assert.NoError(t, ports.Validate())
	})

	t.Run("empty ports are invalid", func(t *testing.T) {
		ports := &Ports{}

		assert.ErrorIs(t, ports.Validate(), ErrMissingSearcher)
	})
}
