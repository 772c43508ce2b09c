// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for inkwell.
//
// Supports TOML configuration with sensible defaults, environment variable
// overrides, and validation. A filesystem watcher reloads the configuration
// when the file changes on disk.
//
// Configuration file locations (in order of precedence):
//   - path given on the command line
//   - ~/.inkwell/config.toml
//   - Built-in defaults
package config
