package gaea

import _ "embed"

// Version is the release of the library and the gaea CLI.
//
//go:embed VERSION
var Version string
