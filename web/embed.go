package web

import "embed"

// Templates embeds layouts, partials and nested page templates.
//
//go:embed templates
var Templates embed.FS

// Static embeds stylesheets and icons served under /static/.
//
//go:embed static
var Static embed.FS
