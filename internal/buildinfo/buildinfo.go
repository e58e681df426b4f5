// Package buildinfo holds version information injected at build time via ldflags.
package buildinfo

// Version falls back to the release the launcher was last tagged with when
// no ldflags are supplied.
var (
	Version    = "1.7.2"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// UserAgent is sent with outbound requests (update check, liveness probe).
func UserAgent() string {
	return "ZeppPlayer/" + Version
}
