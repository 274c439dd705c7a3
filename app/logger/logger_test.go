package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults(t *testing.T) {
	t.Run("prod", func(t *testing.T) {
		cfg := &Config{}
		cfg.SetDefaults()
		assert.Equal(t, "prod", cfg.Env)
		assert.Equal(t, "info", cfg.Level)
		assert.Equal(t, "json", cfg.Format)
		assert.Equal(t, "stdout", cfg.OutputTarget)
		assert.Equal(t, "ts", cfg.TimeField)
		assert.False(t, cfg.WithCaller)
		assert.Equal(t, "postboard", cfg.ServiceName)
	})

	t.Run("dev", func(t *testing.T) {
		cfg := &Config{Env: "dev"}
		cfg.SetDefaults()
		assert.Equal(t, "debug", cfg.Level)
		assert.Equal(t, "console", cfg.Format)
		assert.True(t, cfg.WithCaller)
	})

	t.Run("explicit values survive", func(t *testing.T) {
		cfg := &Config{Env: "dev", Level: "warn", Format: "json"}
		cfg.SetDefaults()
		assert.Equal(t, "warn", cfg.Level)
		assert.Equal(t, "json", cfg.Format)
	})
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&Config{Env: "test", Level: "info", ServiceVersion: "1.2.3"}, &buf)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("component", "test").Msg("hello")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1, "debug must be filtered at info level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "postboard", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, "test", entry["component"])
	assert.Contains(t, entry, "ts")
}

func TestNewWithWriterExtraFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&Config{Fields: map[string]interface{}{"region": "eu"}}, &buf)
	require.NoError(t, err)

	log.Info().Msg("x")
	assert.Contains(t, buf.String(), `"region":"eu"`)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad level", Config{Level: "loud"}},
		{"bad format", Config{Format: "xml"}},
		{"bad env", Config{Env: "moon"}},
		{"bad output", Config{OutputTarget: "file"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			_, err := NewWithWriter(&cfg, &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}

func TestNewLevel(t *testing.T) {
	log, err := NewWithWriter(&Config{Level: "warn"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
}
