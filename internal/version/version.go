// Package version exposes build metadata stamped in via ldflags:
//
//	go build -ldflags "-X github.com/mugisham37/storesync/internal/version.Version=1.0.0 \
//	                   -X github.com/mugisham37/storesync/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/mugisham37/storesync/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

// Populated by the build; the zero values mark a local dev build.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String formats the full build identity for startup logs.
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}
