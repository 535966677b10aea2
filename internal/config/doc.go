// Package config loads and validates chalkboard configuration from TOML with
// an environment overlay for credentials. The Config value is built once at
// process start and handed to each component by reference.
package config
