// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the bureau-chat configuration file.
//
// Configuration comes from a single file named by either the
// BUREAU_CHAT_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no discovery and no fallback search.
//
// Files are YAML. A file ending in .json or .jsonc is read as JSON with
// comments and trailing commas stripped, then decoded with the same
// field names.
//
// The file may carry development and production sections that override
// base values when [Config].Environment matches. After overrides,
// ${VAR} and ${VAR:-default} patterns in path fields are expanded.
//
// This package depends on no other bureau-chat packages.
package config
