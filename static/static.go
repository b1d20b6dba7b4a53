// Package static embeds the API documentation assets served under /static
// and /docs.
package static

import "embed"

// FS holds openapi.json and the docs UI page.
//
//go:embed openapi.json openapi.html
var FS embed.FS
