// Package config reads and writes the per-user tool configuration at
// ~/.nbx/config.yaml, with NBX_* environment variables taking precedence.
package config
