// SPDX-License-Identifier: MPL-2.0

// Package config handles podenv settings using Viper with CUE as the file format.
//
// Settings are read from config.cue in the XDG config directory
// ($XDG_CONFIG_HOME/podenv, usually ~/.config/podenv), or from the file named
// by PODENV_CONFIG or --config. Files are validated against the embedded
// #Config schema (config_schema.cue). Every setting can be overridden with a
// PODENV_<KEY> environment variable.
package config
