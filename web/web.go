// Package web embeds the single-page form served at the root path.
package web

import "embed"

//go:embed index.html
var Assets embed.FS
