// Package web embeds the HTML templates rendered by the handlers.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS
