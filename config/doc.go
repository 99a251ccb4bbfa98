// Package config loads and initializes the application's TOML configuration.
//
// The configuration file lives at ~/.config/bedrust/bedrust.toml and carries
// the AWS profile and region, the default model, the housekeeping and caption
// prompts, and optional per-model inference parameter overrides. Init writes
// a default file so a new installation can be bootstrapped with --init.
package config
