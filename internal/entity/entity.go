// Package entity converts raw CRM records into the canonical Entity shape
// used by the embedding and index layers.
package entity

import (
	"github.com/Aman-CERP/crmdex/internal/crm"
)

// Entity is the normalized representation of one CRM record.
// Immutable once created; a rebuild produces fresh entities rather than
// mutating old ones.
type Entity struct {
	// ID is unique within the entity type.
	ID string

	// Type is the CRM object type this entity came from.
	Type crm.EntityType

	// Text is the flattened property string used as embedding input.
	Text string

	// Properties holds the record's properties as strings. Unknown and
	// extra properties are retained here rather than dropped.
	Properties map[string]string
}

// Key returns the type-qualified identifier, unique across the whole index.
func (e Entity) Key() string {
	return string(e.Type) + ":" + e.ID
}
