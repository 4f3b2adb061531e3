// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// bureau-chat is a terminal Matrix client. It logs in (or reuses a
// stored access token), performs an initial sync, and opens a TUI for
// creating, joining, and chatting in rooms while a background sync
// loop keeps the view live.
//
// Configuration comes from the file named by --config or
// BUREAU_CHAT_CONFIG. See lib/config for the fields.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bureau-chat/chat"
	"github.com/bureau-foundation/bureau-chat/lib/chatclient"
	"github.com/bureau-foundation/bureau-chat/lib/chatui"
	"github.com/bureau-foundation/bureau-chat/lib/clock"
	"github.com/bureau-foundation/bureau-chat/lib/config"
	"github.com/bureau-foundation/bureau-chat/lib/ref"
	"github.com/bureau-foundation/bureau-chat/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

// options are the parsed command-line flags.
type options struct {
	configPath   string
	room         string
	logOutput    string
	passwordFile string
	showVersion  bool
	showHelp     bool
}

func parseFlags(args []string, stderr io.Writer) (*options, *pflag.FlagSet, error) {
	var parsed options
	flagSet := pflag.NewFlagSet("bureau-chat", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&parsed.configPath, "config", "", "path to config file (default: $"+config.EnvVar+")")
	flagSet.StringVar(&parsed.room, "room", "", "room ID to join on startup")
	flagSet.StringVar(&parsed.logOutput, "log-output", "", "write JSON log records to this file (in addition to the status bar)")
	flagSet.StringVar(&parsed.passwordFile, "password-file", "", "read the login password from this file (\"-\" for stdin) instead of prompting")
	flagSet.BoolVar(&parsed.showVersion, "version", false, "print version information and exit")
	flagSet.BoolVarP(&parsed.showHelp, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			parsed.showHelp = true
			return &parsed, flagSet, nil
		}
		return nil, flagSet, validation("%w", err)
	}
	if remaining := flagSet.Args(); len(remaining) > 0 {
		return nil, flagSet, validation("unexpected argument: %s", remaining[0])
	}
	if parsed.room != "" {
		if _, err := ref.ParseRoomID(parsed.room); err != nil {
			return nil, flagSet, validation("--room: %w", err)
		}
	}
	return &parsed, flagSet, nil
}

func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, validation("loading config: %w", err).
			WithHint("Pass --config <file> or set " + config.EnvVar + ".")
	}
	if err := cfg.Validate(); err != nil {
		return nil, validation("invalid config:\n%w", err)
	}
	return cfg, nil
}

func run(args []string) error {
	parsed, flagSet, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}
	if parsed.showHelp {
		printHelp(flagSet)
		return nil
	}
	if parsed.showVersion {
		version.Print(os.Stdout, "bureau-chat")
		return nil
	}

	cfg, err := loadConfig(parsed.configPath)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startupLogger := newStartupLogger(os.Stderr)
	client, session, err := openSession(ctx, cfg, credentials{
		accessTokenFile: cfg.AccessTokenFile,
		passwordFile:    parsed.passwordFile,
		prompt:          stdinPrompt(),
	}, startupLogger)
	if err != nil {
		return err
	}
	defer client.CloseIdleConnections()
	defer session.Close()

	// From here on the alternate screen owns stderr, so background
	// logging goes to the status bar and, optionally, a file.
	tuiHandler := chatui.NewTUILogHandler(slog.LevelWarn)
	var backgroundLogger *slog.Logger
	if parsed.logOutput != "" {
		fileHandler, closeFile, err := openFileLogHandler(parsed.logOutput)
		if err != nil {
			return validation("cannot open log file %s: %w", parsed.logOutput, err)
		}
		defer closeFile()
		backgroundLogger = slog.New(fanoutHandler{tuiHandler, fileHandler})
	} else {
		backgroundLogger = slog.New(tuiHandler)
	}

	syncClient, err := chatclient.New(chatclient.Config{
		Session:       session,
		Clock:         clock.Real(),
		Logger:        backgroundLogger.With("component", "sync"),
		SyncTimeout:   cfg.Sync.Timeout,
		MaxBackoff:    cfg.Sync.MaxBackoff,
		TimelineLimit: cfg.Sync.TimelineLimit,
		HistoryLimit:  cfg.History.Limit,
	})
	if err != nil {
		return internal("%w", err)
	}

	startupLogger.Info("initial sync", "user_id", session.UserID())
	if err := syncClient.InitialSync(ctx); err != nil {
		return transient("initial sync: %w", err)
	}

	sink := chatui.NewProgramSink()
	defer sink.Close()

	controller, err := chat.New(chat.Config{
		Client:   syncClient,
		Notifier: sink,
		OnChange: sink.Changed,
		Logger:   backgroundLogger.With("component", "chat"),
	})
	if err != nil {
		return internal("%w", err)
	}
	defer controller.Close()

	syncContext, stopSync := context.WithCancel(ctx)
	syncDone := make(chan struct{})
	go func() {
		defer close(syncDone)
		syncClient.Run(syncContext)
	}()
	defer func() {
		stopSync()
		<-syncDone
	}()

	model := chatui.NewModel(controller, chatui.Options{
		Context:   ctx,
		Sink:      sink,
		UserID:    session.UserID(),
		FadeDelay: cfg.Notifications.Fade,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	tuiHandler.SetProgram(program)
	sink.Start(program)

	if parsed.room != "" {
		roomID := ref.MustParseRoomID(parsed.room)
		go controller.JoinRoom(ctx, roomID)
	}

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return internal("terminal UI: %w", err)
	}
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `bureau-chat: terminal Matrix chat client.

Logs in to the homeserver named in the config file, syncs, and opens
an interactive view of your rooms and invites. With access_token_file
set in the config the stored token is used; otherwise you are prompted
for a password (or it is read from --password-file).

Usage:
  bureau-chat [flags]

Examples:
  # Use the config named by $%s
  bureau-chat

  # Use a specific config and open a room right away
  bureau-chat --config ~/.config/bureau-chat.yaml --room '!abc:example.org'

  # Keep a debug log while chatting
  bureau-chat --log-output /tmp/bureau-chat.jsonl

Flags:
`, config.EnvVar)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
