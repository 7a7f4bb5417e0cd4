// Package crm defines the contract to the CRM API that supplies raw entity
// records. The actual API client lives outside this module; crmdex only
// consumes the Source interface and handles pagination and transient
// failures around it.
package crm

import (
	"context"
)

// EntityType identifies one CRM object type.
type EntityType string

const (
	TypeContact EntityType = "contact"
	TypeCompany EntityType = "company"
	TypeDeal    EntityType = "deal"
)

// AllTypes returns the entity types in their fixed processing order.
// The order is part of the contract: rebuild logs and summaries list
// types in this order regardless of how they were scheduled.
func AllTypes() []EntityType {
	return []EntityType{TypeContact, TypeCompany, TypeDeal}
}

// Valid reports whether t is a known entity type.
func (t EntityType) Valid() bool {
	switch t {
	case TypeContact, TypeCompany, TypeDeal:
		return true
	}
	return false
}

// RawRecord is one CRM object as returned by the API: an opaque property
// map. Shapes vary per deployment; normalization happens in the entity
// package.
type RawRecord map[string]any

// Page is one page of records plus the cursor for the next page.
// An empty NextCursor marks the last page.
type Page struct {
	Records    []RawRecord
	NextCursor string
}

// Source supplies paginated raw entity records per type.
//
// List may fail with errors.TransientSourceError (retried with backoff by
// the loader) or errors.PermanentSourceError (fails that type's load).
type Source interface {
	List(ctx context.Context, typ EntityType, cursor string) (Page, error)
}
