package cli

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valetapp/valet/internal/config"
)

func TestBuildLoggerUsesConfiguredLevel(t *testing.T) {
	l := buildLogger(config.LoggingConfig{Level: "debug", ConsoleStyle: "json"}, "")
	require.NotNil(t, l)
	assert.Equal(t, zerolog.DebugLevel, l.Zerolog().GetLevel())
}

func TestBuildLoggerFlagWinsOverConfig(t *testing.T) {
	l := buildLogger(config.LoggingConfig{Level: "debug", ConsoleStyle: "compact"}, "error")
	assert.Equal(t, zerolog.ErrorLevel, l.Zerolog().GetLevel())
}

func TestBuildLoggerSilentDisables(t *testing.T) {
	l := buildLogger(config.LoggingConfig{Level: "silent", ConsoleStyle: "pretty"}, "")
	assert.Equal(t, zerolog.Disabled, l.Zerolog().GetLevel())
}
