package gntaxon

var (
	// Version of GNtaxon.
	Version = "v0.1.0"
	// Build timestamp, set during compilation.
	Build = "n/a"
)
