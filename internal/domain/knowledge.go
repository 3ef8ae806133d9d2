package domain

import "time"

// RecordType classifies the origin of a knowledge record.
type RecordType string

const (
	RecordTypeOrganization RecordType = "organization"
	RecordTypeIntegration  RecordType = "integration"
	RecordTypeResource     RecordType = "resource"
	RecordTypeStaticGuide  RecordType = "static_guide"
)

// IsValidRecordType checks if a RecordType is one of the known variants.
func IsValidRecordType(t RecordType) bool {
	switch t {
	case RecordTypeOrganization, RecordTypeIntegration, RecordTypeResource, RecordTypeStaticGuide:
		return true
	}
	return false
}

// KnowledgeRecord is a normalized unit of organizational knowledge,
// rendered to plain text by the extractor. Records are immutable once
// produced and are consumed by the chunker.
type KnowledgeRecord struct {
	Content     string
	Type        RecordType
	SourceTable string
	SourceID    string
	Name        string
	ExtractedAt time.Time
}

// Metadata renders the record's provenance as flat key/value pairs that
// every derived chunk inherits and the vector index persists.
func (r *KnowledgeRecord) Metadata() map[string]string {
	m := map[string]string{
		"type":         string(r.Type),
		"source_table": r.SourceTable,
		"extracted_at": r.ExtractedAt.UTC().Format(time.RFC3339),
	}
	if r.SourceID != "" {
		m["source_id"] = r.SourceID
	}
	if r.Name != "" {
		m["name"] = r.Name
	}
	return m
}
