// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional YAML file. It provides type-safe
// access to the settings of the generation backend and the study client while
// keeping configuration details separate from business logic.
package config
