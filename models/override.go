package models

// OverrideRecord suppresses one fingerprinted violation. Created by
// explicit user action; never mutated in place, only replaced or removed.
type OverrideRecord struct {
	Fingerprint        string  `yaml:"violationKey" json:"violationKey"`
	Rule                string  `yaml:"rule" json:"rule"`
	FilePath            string  `yaml:"filePath" json:"filePath"`
	Line                int     `yaml:"line,omitempty" json:"line,omitempty"`
	Message             string  `yaml:"message" json:"message"`
	Status              string  `yaml:"status" json:"status"`
	Reason              string  `yaml:"reason" json:"reason"`
	AddedBy             string  `yaml:"addedBy" json:"addedBy"`
	AddedAt             string  `yaml:"addedAt" json:"addedAt"`
	OriginalConfidence  float64 `yaml:"originalConfidence,omitempty" json:"originalConfidence,omitempty"`
	ImportedAt          string  `yaml:"importedAt,omitempty" json:"importedAt,omitempty"`
}

// OverrideStatusFalsePositive is the only status value currently
// recognized for an override entry.
const OverrideStatusFalsePositive = "false_positive"

// OverrideDocument is the on-disk JSON/YAML shape persisted by the
// OverrideStore and produced/consumed by export/import.
type OverrideDocument struct {
	Version     string                     `yaml:"version" json:"version"`
	LastUpdated string                     `yaml:"lastUpdated" json:"lastUpdated"`
	ExportedAt  string                     `yaml:"exportedAt,omitempty" json:"exportedAt,omitempty"`
	Overrides   map[string]OverrideRecord  `yaml:"overrides" json:"overrides"`
}

// OverrideStats summarizes a store's contents for reporting.
type OverrideStats struct {
	Total   int            `json:"total"`
	ByRule  map[string]int `json:"byRule"`
	ByUser  map[string]int `json:"byUser"`
	Recent7d int           `json:"recent7d"`
}
