package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckClientCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		engineVersion string
		clientVersion string
		expectError   bool
		errorContains string
	}{
		// Compatible cases
		{
			name:          "exact match",
			engineVersion: "1.2.0",
			clientVersion: "1.2.0",
			expectError:   false,
		},
		{
			name:          "engine patch higher",
			engineVersion: "1.2.1",
			clientVersion: "1.2.0",
			expectError:   false,
		},
		{
			name:          "client patch higher",
			engineVersion: "1.2.0",
			clientVersion: "1.2.5",
			expectError:   false,
		},
		{
			name:          "engine minor higher",
			engineVersion: "1.3.0",
			clientVersion: "1.2.0",
			expectError:   false,
		},
		{
			name:          "client did not send a version",
			engineVersion: "1.2.0",
			clientVersion: "",
			expectError:   false,
		},

		// Incompatible cases
		{
			name:          "client minor higher",
			engineVersion: "1.1.0",
			clientVersion: "1.2.0",
			expectError:   true,
			errorContains: "newer than engine",
		},
		{
			name:          "major version differs",
			engineVersion: "2.0.0",
			clientVersion: "1.2.0",
			expectError:   true,
			errorContains: "major version mismatch",
		},

		// Development builds skip the check
		{
			name:          "engine is main",
			engineVersion: "main",
			clientVersion: "1.2.0",
			expectError:   false,
		},
		{
			name:          "client is main",
			engineVersion: "1.2.0",
			clientVersion: "main",
			expectError:   false,
		},
		{
			name:          "both are main",
			engineVersion: "main",
			clientVersion: "main",
			expectError:   false,
		},

		// Edge cases with v prefix
		{
			name:          "v prefix on engine",
			engineVersion: "v1.2.0",
			clientVersion: "1.2.0",
			expectError:   false,
		},
		{
			name:          "v prefix on client",
			engineVersion: "1.2.0",
			clientVersion: "v1.2.0",
			expectError:   false,
		},

		// Edge cases with prerelease and metadata
		{
			name:          "prerelease version",
			engineVersion: "1.2.0-alpha",
			clientVersion: "1.2.0",
			expectError:   false,
		},
		{
			name:          "build metadata",
			engineVersion: "1.2.0+build123",
			clientVersion: "1.2.0",
			expectError:   false,
		},

		// Invalid versions
		{
			name:          "invalid engine version",
			engineVersion: "not-a-version",
			clientVersion: "1.2.0",
			expectError:   true,
			errorContains: "invalid engine version",
		},
		{
			name:          "invalid client version",
			engineVersion: "1.2.0",
			clientVersion: "not-a-version",
			expectError:   true,
			errorContains: "invalid client version",
		},
		{
			name:          "empty engine version",
			engineVersion: "",
			clientVersion: "1.2.0",
			expectError:   true,
			errorContains: "invalid engine version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckClientCompatibility(tt.engineVersion, tt.clientVersion)

			if tt.expectError {
				require.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGetVersion(t *testing.T) {
	v := GetVersion()
	assert.Equal(t, Version, v)
}
