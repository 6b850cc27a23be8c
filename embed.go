package spacetraveling

import "embed"

// EmbeddedAssets contains static assets shipped with the framework:
// loadmore.js, spacetraveling.css
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
