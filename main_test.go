package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(f func()) string {
	var buf bytes.Buffer
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan bool)
	go func() {
		_, _ = io.Copy(&buf, r)
		done <- true
	}()

	f()
	_ = w.Close()
	os.Stdout = oldStdout
	<-done

	return buf.String()
}

func callMain(args ...string) (int, string) {
	var exitCode int
	output := captureOutput(func() {
		exitCode = RealMain(args)
	})
	return exitCode, output
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "storage:\n" +
		"  driver: sqlite\n" +
		"  sqlite_path: " + filepath.Join(dir, "postboard.db") + "\n" +
		"logger:\n" +
		"  level: error\n" +
		"  output_target: stderr\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRealMain(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedExit   int
		expectedOutput string
	}{
		{
			name:           "no arguments",
			args:           []string{},
			expectedExit:   1,
			expectedOutput: "Usage: postboard <command>",
		},
		{
			name:           "help command",
			args:           []string{"help"},
			expectedExit:   0,
			expectedOutput: "Usage: postboard <command> [options]",
		},
		{
			name:           "version command",
			args:           []string{"version"},
			expectedExit:   0,
			expectedOutput: "postboard version " + CliVersion,
		},
		{
			name:           "commands are case insensitive",
			args:           []string{"VERSION"},
			expectedExit:   0,
			expectedOutput: "postboard version " + CliVersion,
		},
		{
			name:           "unknown command",
			args:           []string{"unknown"},
			expectedExit:   1,
			expectedOutput: "Unknown command: unknown",
		},
		{
			name:           "serve with stray argument",
			args:           []string{"serve", "static"},
			expectedExit:   1,
			expectedOutput: "Error: usage is serve [--config <file>]",
		},
		{
			name:           "serve with missing config file",
			args:           []string{"serve", "--config", "/nonexistent/postboard.yaml"},
			expectedExit:   1,
			expectedOutput: "Error: config file /nonexistent/postboard.yaml",
		},
		{
			name:           "db without config value",
			args:           []string{"db", "init", "--config"},
			expectedExit:   1,
			expectedOutput: "--config requires a file path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exitCode, output := callMain(tt.args...)

			assert.Contains(t, output, tt.expectedOutput)
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}

func TestDbCommand(t *testing.T) {
	cfgPath := writeConfig(t)

	code, output := callMain("db", "help", "--config", cfgPath)
	assert.Equal(t, 0, code)
	assert.Contains(t, output, "Usage: postboard db <command>")

	code, output = callMain("db", "--config="+cfgPath, "init")
	assert.Equal(t, 0, code)
	assert.Contains(t, output, "Database initialized successfully (sqlite)")

	code, output = callMain("db", "backup", "--config", cfgPath)
	assert.Equal(t, 1, code)
	assert.Contains(t, output, "Backup is not available")
}

func TestParseConfigFlag(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantPath string
		wantRest []string
		wantErr  bool
	}{
		{name: "absent", args: []string{"init"}, wantRest: []string{"init"}},
		{name: "separate value", args: []string{"restore", "--config", "c.yaml", "b.zst"}, wantPath: "c.yaml", wantRest: []string{"restore", "b.zst"}},
		{name: "equals form", args: []string{"--config=c.yaml", "seed", "f.yaml"}, wantPath: "c.yaml", wantRest: []string{"seed", "f.yaml"}},
		{name: "missing value", args: []string{"init", "--config"}, wantErr: true},
		{name: "empty", args: nil, wantRest: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, rest, err := parseConfigFlag(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestPrintHelp(t *testing.T) {
	output := captureOutput(func() {
		printHelp()
	})

	assert.Contains(t, output, "Usage: postboard")
	assert.Contains(t, output, "help")
	assert.Contains(t, output, "version")
	assert.Contains(t, output, "serve [--config <file>]")
	assert.Contains(t, output, "init")
	assert.Contains(t, output, "clean")
	assert.Contains(t, output, "backup")
	assert.Contains(t, output, "restore")
	assert.Contains(t, output, "seed")
}

func TestMainUsesExit(t *testing.T) {
	oldExit, oldArgs := exit, os.Args
	defer func() { exit, os.Args = oldExit, oldArgs }()

	var exitCode = -1
	exit = func(code int) { exitCode = code }
	os.Args = []string{"postboard", "version"}

	captureOutput(main)
	assert.Equal(t, 0, exitCode)
}
