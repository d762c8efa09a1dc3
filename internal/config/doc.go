// Package config loads the application configuration from environment
// variables, command-line flags, and an optional JSON file, merges the
// layers, and validates the result.
//
// Priority order (first non-zero value wins): environment variables,
// then flags, then the JSON file whose path is resolved from the first
// two layers.
package config
