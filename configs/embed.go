// Package configs provides the embedded default configuration for issuehub.
package configs

import _ "embed"

// DefaultConfigYAML contains the default tracked-repository list.
//
//go:embed default.yaml
var DefaultConfigYAML []byte
