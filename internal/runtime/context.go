// Package runtime contains runtime metadata separate from user configuration
package runtime

// Context contains runtime metadata that is not user-configurable.
// This data is injected at application startup and should not be part
// of the configuration system.
type Context struct {
	// Version holds the Git version tag from build
	Version string

	// BuildDate is the time when the binary was built
	BuildDate string
}

// buildContext is populated via -ldflags at build time.
var buildContext = Context{
	Version:   "dev",
	BuildDate: "unknown",
}

// Build-time injection points for the linker.
var (
	version   string
	buildDate string
)

func init() {
	if version != "" {
		buildContext.Version = version
	}
	if buildDate != "" {
		buildContext.BuildDate = buildDate
	}
}

// BuildContext returns the runtime metadata for this binary.
func BuildContext() Context {
	return buildContext
}
