// Package config defines the agent's YAML configuration schema and the
// load/default/validate pipeline. Files may reference environment
// variables with ${VAR} syntax; substitution happens before parsing.
package config
