package version

// Version is the current version of the trading engine.
// Release builds may override it using ldflags:
// -ldflags "-X github.com/rxtech-lab/paper-trading/internal/version.Version=v1.2.3"
// Clients reporting the version "main" bypass the compatibility check.
var Version = "v1.0.0"

// GetVersion returns the current version of the engine.
func GetVersion() string {
	return Version
}
