// Package embedded provides access to embedded demonstration data files.
package embedded

import _ "embed"

// DeveloperData contains the embedded developer-scouting demonstration
// dataset in YAML format.
//
//go:embed developers.yaml
var DeveloperData []byte
