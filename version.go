package potkit

const name = "potkit"

// Overwritten at build time via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)
