package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactSecrets(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"query key",
			`Get "https://omdb.example.com/?apikey=abc123&t=matrix": timeout`,
			`Get "https://omdb.example.com/?apikey=REDACTED&t=matrix": timeout`,
		},
		{
			"key at end of url",
			`https://omdb.example.com/?t=matrix&apikey=abc123`,
			`https://omdb.example.com/?t=matrix&apikey=REDACTED`,
		},
		{"case insensitive", "APIKEY=abc123", "APIKEY=REDACTED"},
		{"token", "access_token=xyz&page=2", "access_token=REDACTED&page=2"},
		{"nothing to redact", "connection refused", "connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RedactSecrets(tt.input))
		})
	}
}

func TestRestyLogger_RedactsMessages(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := newRestyLogger(zap.New(core))

	logger.Errorf("%v, Attempt %v", `Get "https://omdb.example.com/?apikey=abc123": EOF`, 1)
	logger.Warnf("retrying %s", "https://omdb.example.com/?apikey=abc123")
	logger.Debugf("request %s", "https://omdb.example.com/?apikey=abc123")

	entries := logs.All()
	assert.Len(t, entries, 3)
	for _, entry := range entries {
		assert.NotContains(t, entry.Message, "abc123")
		assert.Contains(t, entry.Message, "apikey=REDACTED")
	}
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}
