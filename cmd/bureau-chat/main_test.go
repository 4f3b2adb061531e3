// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/bureau-chat/lib/config"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantErr   string
		checkFunc func(t *testing.T, parsed *options)
	}{
		{
			name: "defaults",
			args: nil,
			checkFunc: func(t *testing.T, parsed *options) {
				if parsed.configPath != "" || parsed.room != "" || parsed.showHelp || parsed.showVersion {
					t.Errorf("unexpected non-default options: %+v", parsed)
				}
			},
		},
		{
			name: "all flags",
			args: []string{"--config", "chat.yaml", "--room", "!abc:example.org", "--log-output", "chat.jsonl", "--password-file", "-", "--version"},
			checkFunc: func(t *testing.T, parsed *options) {
				if parsed.configPath != "chat.yaml" {
					t.Errorf("configPath = %q", parsed.configPath)
				}
				if parsed.room != "!abc:example.org" {
					t.Errorf("room = %q", parsed.room)
				}
				if parsed.logOutput != "chat.jsonl" {
					t.Errorf("logOutput = %q", parsed.logOutput)
				}
				if parsed.passwordFile != "-" {
					t.Errorf("passwordFile = %q", parsed.passwordFile)
				}
				if !parsed.showVersion {
					t.Error("showVersion not set")
				}
			},
		},
		{
			name: "short help",
			args: []string{"-h"},
			checkFunc: func(t *testing.T, parsed *options) {
				if !parsed.showHelp {
					t.Error("showHelp not set")
				}
			},
		},
		{
			name:    "unexpected argument",
			args:    []string{"lobby"},
			wantErr: "unexpected argument: lobby",
		},
		{
			name:    "unknown flag",
			args:    []string{"--verbose"},
			wantErr: "unknown flag",
		},
		{
			name:    "invalid room",
			args:    []string{"--room", "lobby"},
			wantErr: "--room",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			parsed, _, err := parseFlags(test.args, io.Discard)
			if test.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q", test.wantErr)
				}
				if !strings.Contains(err.Error(), test.wantErr) {
					t.Errorf("error = %q, want it to contain %q", err, test.wantErr)
				}
				var cliErr *cliError
				if !errors.As(err, &cliErr) || cliErr.ExitCode() != 2 {
					t.Errorf("error %v is not a validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFlags: %v", err)
			}
			test.checkFunc(t, parsed)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chat.yaml")
		content := "homeserver_url: http://localhost:6167\nuser_id: \"@alice:local\"\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		cfg, err := loadConfig(path)
		if err != nil {
			t.Fatalf("loadConfig: %v", err)
		}
		if cfg.UserID != "@alice:local" {
			t.Errorf("UserID = %q", cfg.UserID)
		}
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chat.yaml")
		if err := os.WriteFile(path, []byte("user_id: alice\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := loadConfig(path)
		if err == nil {
			t.Fatal("expected validation error")
		}
		for _, want := range []string{"homeserver_url is required", "user_id"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error = %q, want it to contain %q", err, want)
			}
		}
	})

	t.Run("no path and no env", func(t *testing.T) {
		t.Setenv(config.EnvVar, "")
		_, err := loadConfig("")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "hint: Pass --config") {
			t.Errorf("error = %q, want the --config hint", err)
		}
	})
}
