package version

import "runtime"

// Set via -ldflags at build time.
var (
	BuildDate = "unknown"
	GitCommit = "unknown"
)

var (
	AppName     = "melody"
	AppFullName = "Melody Music Bot"
	GoVersion   = runtime.Version()
)
