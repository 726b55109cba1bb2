// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Redgrab is the canonical application identifier used for filesystem paths and CLI branding.
	Redgrab = "redgrab"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is the default HTTP User-Agent string used for network requests to reddit and media hosts.
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Build metadata, injected at link time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// AsciiArtLogo is rendered on the root help screen.
const AsciiArtLogo = `
                _                 _
  _ __ ___  __| | __ _ _ __ __ _| |__
 | '__/ _ \/ _` + "`" + ` |/ _` + "`" + ` | '__/ _` + "`" + ` | '_ \
 | | |  __/ (_| | (_| | | | (_| | |_) |
 |_|  \___|\__,_|\__, |_|  \__,_|_.__/
                 |___/
`
