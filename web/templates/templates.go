// Package templates embute as páginas HTML do blog.
package templates

import "embed"

//go:embed *.html
var FS embed.FS
