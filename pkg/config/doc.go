// Package config loads Warden configuration from environment variables.
package config
