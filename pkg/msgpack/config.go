package msgpack

import "go.uber.org/zap"

// Config holds encoder and decoder settings.
type Config struct {
	// MaxDepth bounds collection nesting on both encode and decode.
	MaxDepth int
	// MaxPayloadLen bounds a single str or bin payload read from a stream.
	MaxPayloadLen int
	// MaxContainerLen bounds the element count of an array or map read from
	// a stream.
	MaxContainerLen int
	// SortMapKeys makes reflected Go maps encode in key order, so the output
	// is deterministic.
	SortMapKeys bool
	// Logger overrides the package logger.
	Logger *zap.Logger
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxDepth:        512,
		MaxPayloadLen:   64 << 20, // 64MiB
		MaxContainerLen: 1 << 24,
		SortMapKeys:     true,
	}
}

var defaultConfig = DefaultConfig()

func orDefault(cfg *Config) *Config {
	if cfg == nil {
		return defaultConfig
	}
	return cfg
}

func (c *Config) logger() *zap.Logger {
	if c != nil && c.Logger != nil {
		return c.Logger
	}
	return Logger()
}
