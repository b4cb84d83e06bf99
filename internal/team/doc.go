// Package team defines the TeamConfig data model: the agents, features and
// project metadata a user assembles before saving a project or exporting
// its documents.
//
// The package provides:
//   - Types: TeamConfig, Agent, Preferences, FeatureConfig
//   - Builder: a concurrency-safe, incrementally updated TeamConfig
//   - LoadFile: reading a TeamConfig from JSON, YAML or TOML
//   - Validate: advisory checks against an embedded CUE schema
//   - ParseRepositoryURL: owner/repo extraction for github.com URLs
//
// A TeamConfig is an opaque value to the persistence layer. Nothing in this
// package is consulted when a project is saved; validation is only ever
// reported back to the caller.
package team
