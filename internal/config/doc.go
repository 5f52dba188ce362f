// Package config handles configuration loading for mitra-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from MITRA_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/mitra/gateway.yaml
//  3. ~/.config/mitra/gateway.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	model:
//	  api_key: "${GEN_API_KEY}"
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	conversation:
//	  retention: "24h"
package config
