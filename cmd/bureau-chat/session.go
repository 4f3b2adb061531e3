// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/bureau-foundation/bureau-chat/lib/config"
	"github.com/bureau-foundation/bureau-chat/lib/ref"
	"github.com/bureau-foundation/bureau-chat/lib/secret"
	"github.com/bureau-foundation/bureau-chat/messaging"
)

// httpTimeoutSlack is added to the sync long-poll timeout so a held
// /sync request is not cut off by the transport.
const httpTimeoutSlack = 30 * time.Second

// credentials says where the session's secret comes from. Exactly one
// path applies: a token file from config, a password file from flags,
// or an interactive prompt.
type credentials struct {
	accessTokenFile string
	passwordFile    string

	// prompt reads a password when neither file is set.
	prompt func() (*secret.Buffer, error)
}

// openSession connects to the homeserver and authenticates. The
// returned client owns the HTTP transport shared by the session.
func openSession(ctx context.Context, cfg *config.Config, creds credentials, logger *slog.Logger) (*messaging.Client, *messaging.DirectSession, error) {
	userID, err := ref.ParseUserID(cfg.UserID)
	if err != nil {
		return nil, nil, validation("user_id: %w", err)
	}

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: cfg.HomeserverURL,
		HTTPClient:    &http.Client{Timeout: cfg.Sync.Timeout + httpTimeoutSlack},
		Logger:        logger,
	})
	if err != nil {
		return nil, nil, validation("%w", err)
	}

	versions, err := client.ServerVersions(ctx)
	if err != nil {
		return nil, nil, transient("cannot reach homeserver %s: %w", cfg.HomeserverURL, err).
			WithHint("Check homeserver_url in your config and that the server is running.")
	}
	logger.Info("connected to homeserver",
		"homeserver", cfg.HomeserverURL,
		"versions", versions.Versions,
	)

	if cfg.AccessTokenFile != "" {
		session, err := sessionFromTokenFile(ctx, client, userID, cfg.AccessTokenFile)
		if err != nil {
			return nil, nil, err
		}
		return client, session, nil
	}

	password, err := readPassword(creds)
	if err != nil {
		return nil, nil, err
	}
	defer password.Close()

	session, err := client.Login(ctx, userID, password)
	if err != nil {
		if messaging.IsMatrixError(err, messaging.ErrCodeForbidden) {
			return nil, nil, forbidden("login as %s rejected: %w", userID, err).
				WithHint("Check the password, or set access_token_file to use an existing token.")
		}
		return nil, nil, transient("login as %s: %w", userID, err)
	}
	logger.Info("logged in", "user_id", session.UserID(), "device_id", session.DeviceID())
	return client, session, nil
}

// sessionFromTokenFile builds a session from a stored access token and
// checks with the homeserver that the token belongs to userID.
func sessionFromTokenFile(ctx context.Context, client *messaging.Client, userID ref.UserID, path string) (*messaging.DirectSession, error) {
	token, err := secret.ReadFromPath(path)
	if err != nil {
		return nil, validation("reading access token from %s: %w", path, err)
	}
	session, err := client.SessionFromToken(userID, token)
	if err != nil {
		token.Close()
		return nil, internal("%w", err)
	}

	owner, err := session.WhoAmI(ctx)
	if err != nil {
		session.Close()
		if messaging.IsMatrixError(err, messaging.ErrCodeUnknownToken) {
			return nil, forbidden("access token in %s is not valid: %w", path, err).
				WithHint("The token may have been revoked. Log in again with a password by removing access_token_file.")
		}
		return nil, transient("verifying access token: %w", err)
	}
	if owner != userID {
		session.Close()
		return nil, validation("access token in %s belongs to %s, not %s", path, owner, userID)
	}
	return session, nil
}

func readPassword(creds credentials) (*secret.Buffer, error) {
	if creds.passwordFile != "" {
		password, err := secret.ReadFromPath(creds.passwordFile)
		if err != nil {
			return nil, validation("reading password from %s: %w", creds.passwordFile, err)
		}
		return password, nil
	}
	if creds.prompt == nil {
		return nil, validation("no access_token_file configured and no way to prompt for a password")
	}
	return creds.prompt()
}

// terminalPrompt reads a password from the terminal on fd with echo
// disabled, writing the prompt to out.
func terminalPrompt(fd int, out io.Writer) func() (*secret.Buffer, error) {
	return func() (*secret.Buffer, error) {
		if !term.IsTerminal(fd) {
			return nil, validation("no terminal available for a password prompt").
				WithHint("Use --password-file, or set access_token_file in your config.")
		}
		fmt.Fprint(out, "Password: ")
		passwordBytes, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return nil, internal("reading password: %w", err)
		}
		if len(passwordBytes) == 0 {
			return nil, validation("empty password")
		}
		buffer, err := secret.NewFromBytes(passwordBytes)
		if err != nil {
			secret.Zero(passwordBytes)
			return nil, internal("%w", err)
		}
		return buffer, nil
	}
}

// stdinPrompt is the default prompt, reading from the process's
// controlling terminal via stdin.
func stdinPrompt() func() (*secret.Buffer, error) {
	return terminalPrompt(int(os.Stdin.Fd()), os.Stderr)
}
