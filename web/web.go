package web

import "embed"

// Static holds the embedded dashboard page and its assets.
// Handlers access it via fs.Sub(Static, "static").
//
//go:embed static
var Static embed.FS
