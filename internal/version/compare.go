package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckClientCompatibility checks whether a connecting client's protocol
// version is compatible with the engine. Returns nil if compatible, error
// with details if not.
//
// Compatibility Rules:
//   - If either version is "main" (development build), the check is skipped
//   - An empty client version is accepted, the client takes what it gets
//   - Major versions must match exactly
//   - The engine's minor version must be at least the client's
//   - Patch versions can differ (e.g., 1.2.0 is compatible with 1.2.5)
func CheckClientCompatibility(engineVersion, clientVersion string) error {
	if clientVersion == "" {
		return nil
	}

	// Strip 'v' prefix if present for consistency
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	clientVersion = strings.TrimPrefix(clientVersion, "v")

	// Skip version check for "main" (development builds)
	if engineVersion == "main" || clientVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return fmt.Errorf("invalid engine version '%s': %w", engineVersion, err)
	}

	clientSemver, err := semver.NewVersion(clientVersion)
	if err != nil {
		return fmt.Errorf("invalid client version '%s': %w", clientVersion, err)
	}

	if engineSemver.Major() != clientSemver.Major() {
		return fmt.Errorf("major version mismatch: engine is %d.x.x but client requires %d.x.x",
			engineSemver.Major(), clientSemver.Major())
	}

	// A client newer than the engine may rely on events the engine does not
	// emit yet.
	if clientSemver.Minor() > engineSemver.Minor() {
		return fmt.Errorf("client version %d.%d.x is newer than engine %d.%d.x",
			clientSemver.Major(), clientSemver.Minor(),
			engineSemver.Major(), engineSemver.Minor())
	}

	return nil
}
