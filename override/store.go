// Package override persists and queries the fingerprint -> OverrideRecord
// map used to suppress known-false-positive violations across runs. It
// mirrors the read-mostly, mutex-guarded, persist-on-mutation shape of
// the teacher's internal/cache.ViolationCache, swapping its sqlite
// backing store for the single JSON document the override store
// requires.
package override

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/valence-dev/valence/models"
)

// DefaultPath is the conventional override-store location relative to
// a repository root.
const DefaultPath = ".valence-overrides.json"

const documentVersion = "1.0"

// nowFunc is overridable in tests that need deterministic timestamps.
var nowFunc = time.Now

// Store is a JSON-file-backed, in-memory-cached OverrideStore.
type Store struct {
	path string

	mu        sync.RWMutex
	overrides map[string]models.OverrideRecord
}

// Load reads path into a new Store. A missing file yields an empty
// store, no error. Invalid JSON also yields an empty store, with a
// warning logged, since a corrupt override file must not block
// validation from running.
func Load(path string) (*Store, error) {
	s := &Store{path: path, overrides: make(map[string]models.OverrideRecord)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading override store %s: %w", path, err)
	}

	var doc models.OverrideDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warnf("override store %s: invalid JSON, starting from an empty store: %v", path, err)
		return s, nil
	}

	if doc.Overrides != nil {
		s.overrides = doc.Overrides
	}
	return s, nil
}

func (s *Store) save() error {
	doc := models.OverrideDocument{
		Version:     documentVersion,
		LastUpdated: nowFunc().UTC().Format(time.RFC3339),
		Overrides:   s.overrides,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding override store: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating override store directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing override store %s: %w", s.path, err)
	}
	return nil
}

// Add records an override for violation (found at filePath, unless the
// violation's own FilePath should be used — callers pass it explicitly
// since the same violation may be evaluated against different roots).
// On save failure, the in-memory record is kept (not rolled back); see
// the design note on override-store save failures.
func (s *Store) Add(v models.Violation, filePath, reason, user string) (models.OverrideRecord, error) {
	fp := models.FingerprintOf(v, filePath)
	path := filePath
	if path == "" {
		path = v.FilePath
	}

	s.mu.Lock()
	record := models.OverrideRecord{
		Fingerprint:        fp,
		Rule:               v.Rule,
		FilePath:           path,
		Line:               v.Line,
		Message:            v.Message,
		Status:             models.OverrideStatusFalsePositive,
		Reason:             reason,
		AddedBy:            user,
		AddedAt:            nowFunc().UTC().Format(time.RFC3339),
		OriginalConfidence: v.Confidence,
	}
	s.overrides[fp] = record
	err := s.save()
	s.mu.Unlock()

	if err != nil {
		return record, err
	}
	return record, nil
}

// Remove deletes the record for fingerprint, reporting whether one
// existed.
func (s *Store) Remove(fingerprint string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.overrides[fingerprint]; !ok {
		return false, nil
	}
	delete(s.overrides, fingerprint)
	if err := s.save(); err != nil {
		return true, err
	}
	return true, nil
}

// IsOverridden reports whether violation v (found at filePath) has a
// stored override record.
func (s *Store) IsOverridden(v models.Violation, filePath string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.overrides[models.FingerprintOf(v, filePath)]
	return ok
}

// Get returns the override record for v (found at filePath), if any.
func (s *Store) Get(v models.Violation, filePath string) (models.OverrideRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.overrides[models.FingerprintOf(v, filePath)]
	return record, ok
}

// GetByFingerprint is the fingerprint-keyed counterpart of Get, used by
// CLI commands that already have a fingerprint string in hand.
func (s *Store) GetByFingerprint(fingerprint string) (models.OverrideRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.overrides[fingerprint]
	return record, ok
}

// Import loads document into the store. merge=false replaces the
// entire in-memory map; merge=true adds/overwrites only the document's
// entries, stamping importedAt on each merged record.
func (s *Store) Import(document models.OverrideDocument, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !merge {
		s.overrides = make(map[string]models.OverrideRecord, len(document.Overrides))
	}
	importedAt := nowFunc().UTC().Format(time.RFC3339)
	for fp, record := range document.Overrides {
		if merge {
			record.ImportedAt = importedAt
		}
		s.overrides[fp] = record
	}
	return s.save()
}

// Export snapshots the store as a document, stamping exportedAt.
func (s *Store) Export() models.OverrideDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	overrides := make(map[string]models.OverrideRecord, len(s.overrides))
	for fp, record := range s.overrides {
		overrides[fp] = record
	}
	return models.OverrideDocument{
		Version:     documentVersion,
		ExportedAt:  nowFunc().UTC().Format(time.RFC3339),
		Overrides:   overrides,
	}
}

// Stats summarizes the store's contents for reporting.
func (s *Store) Stats() models.OverrideStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.OverrideStats{
		ByRule: make(map[string]int),
		ByUser: make(map[string]int),
	}
	cutoff := nowFunc().UTC().AddDate(0, 0, -7)

	for _, record := range s.overrides {
		stats.Total++
		stats.ByRule[record.Rule]++
		stats.ByUser[record.AddedBy]++
		if addedAt, err := time.Parse(time.RFC3339, record.AddedAt); err == nil && addedAt.After(cutoff) {
			stats.Recent7d++
		}
	}
	return stats
}

// Fingerprints returns every stored fingerprint, sorted, for diagnostics.
func (s *Store) Fingerprints() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.overrides))
	for fp := range s.overrides {
		out = append(out, fp)
	}
	sort.Strings(out)
	return out
}
