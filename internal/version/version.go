// Package version carries build metadata for the varq binary, stamped in
// at build time via -ldflags.
package version

var (
	// Version is the varq release version.
	Version = "dev"
	// GitSHA identifies the commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is when the binary was built.
	BuildTime = "unknown"
)
