// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from $XDG_CONFIG_HOME/modgraph/config.cue (~/Library/Application
// Support/modgraph on macOS, %APPDATA%\modgraph on Windows), falling back to ./config.cue.
// Every field has a default and can be overridden by a MODGRAPH_-prefixed environment
// variable (MODGRAPH_CACHE_POLICY, MODGRAPH_LOG_LEVEL, ...).
//
// Files are validated against the embedded config_schema.cue before they reach Viper.
package config
