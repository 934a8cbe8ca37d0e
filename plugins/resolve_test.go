package plugins

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidatePaths_StripsArchitectureMarker(t *testing.T) {
	candidates := candidatePaths("plugins", "validateSpaFoo")
	assert.Contains(t, candidates, filepath.Join("plugins", "SPA", "validateFoo.go"))
	assert.Equal(t, filepath.Join("plugins", "validateSpaFoo.go"), candidates[len(candidates)-1])
}

func TestCandidatePaths_FlatFallbackOnly(t *testing.T) {
	candidates := candidatePaths("plugins", "checkLicenseHeader")
	assert.Equal(t, []string{filepath.Join("plugins", "checkLicenseHeader.go")}, candidates)
}
