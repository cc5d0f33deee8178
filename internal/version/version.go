package version

// Version is the semantic version of the hyperserp binary.
// Overridable at build time: -ldflags "-X hyperserp/internal/version.Version=..."
var Version = "0.3.0"

func String() string { return "hyperserp " + Version }
