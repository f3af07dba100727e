package msgpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))

	_, err := Marshal(entries(2, -1))
	assert.NoError(t, err)
	assert.NotZero(t, logs.Len())
	assert.Equal(t, "msgpack", logs.All()[0].LoggerName)

	// a per-call logger wins over the package one
	own, ownLogs := observer.New(zap.DebugLevel)
	cfg := DefaultConfig()
	cfg.Logger = zap.New(own)
	before := logs.Len()
	_, err = MarshalWithConfig(entries(2, -1), cfg)
	assert.NoError(t, err)
	assert.Equal(t, before, logs.Len())
	assert.NotZero(t, ownLogs.Len())

	SetLogger(nil)
	assert.NotNil(t, Logger())
}
