package plugins

import (
	"path/filepath"
	"strings"
)

// architectureMarkers maps the capitalized infix a plugin name embeds
// (e.g. "validateSpaFoo") to the directory under plugins/ it resolves
// to. Checked in discovery order.
var architectureMarkers = []struct {
	marker string // e.g. "Spa", matched case-insensitively against the name
	dir    string // e.g. "SPA"
}{
	{"Spa", "SPA"},
	{"AppCore", "AppCore"},
	{"Backend", "Backend"},
	{"Shared", "Shared"},
	{"Cia", "CIA"},
}

// candidatePaths returns the ordered list of plugin source paths the
// dispatcher tries to resolve rule.Plugin == name against, stripping a
// known architecture marker first (e.g. "validateSpaFoo" ->
// "plugins/SPA/validateFoo"), then falling back to a flat
// "plugins/<name>" path. The first existing candidate wins.
func candidatePaths(root, name string) []string {
	var candidates []string

	lower := strings.ToLower(name)
	for _, am := range architectureMarkers {
		idx := strings.Index(lower, strings.ToLower(am.marker))
		if idx < 0 {
			continue
		}
		stripped := name[:idx] + name[idx+len(am.marker):]
		if stripped == "" {
			continue
		}
		candidates = append(candidates, filepath.Join(root, am.dir, stripped+".go"))
	}

	candidates = append(candidates, filepath.Join(root, name+".go"))
	return candidates
}
