// Package appfs embeds the files shipped inside the binaries.
package appfs

import "embed"

//go:embed migrations all:templates assets
var FS embed.FS
