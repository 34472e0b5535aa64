package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMigrationCommand(t *testing.T) {
	tests := []struct {
		command string
		wantErr bool
	}{
		{"up", false},
		{"down", false},
		{"status", false},
		{"version", false},
		{"reset", false},
		{"create", true},
		{"", true},
		{"UP", true},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			err := validateMigrationCommand(tt.command)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSlogGooseLogger(t *testing.T) {
	var buf bytes.Buffer
	l := &slogGooseLogger{logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	t.Run("printf logs at info", func(t *testing.T) {
		buf.Reset()
		l.Printf("OK   %s\n", "00002_tasks.sql")
		assert.Contains(t, buf.String(), `"level":"INFO"`)
		assert.Contains(t, buf.String(), `"msg":"OK   00002_tasks.sql"`)
	})

	t.Run("fatalf logs at error without exiting", func(t *testing.T) {
		buf.Reset()
		assert.NotPanics(t, func() { l.Fatalf("failed: %v", "boom") })
		assert.Contains(t, buf.String(), `"level":"ERROR"`)
	})
}
