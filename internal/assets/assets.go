// Package assets embeds the default CRS configuration.
package assets

import _ "embed"

//go:embed crs-config.yaml
var CRSConfig []byte
