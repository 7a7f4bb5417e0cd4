package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Aman-CERP/crmdex/internal/crm"
	"github.com/Aman-CERP/crmdex/internal/errors"
)

// idProperties are checked in order for a usable record identifier.
var idProperties = []string{"id", "hs_object_id"}

// textProperties lists, per type, the human-meaningful properties that make
// up the embedding text, in a fixed order so normalization stays
// deterministic.
var textProperties = map[crm.EntityType][]string{
	crm.TypeContact: {"firstname", "lastname", "email", "jobtitle", "company", "phone", "notes"},
	crm.TypeCompany: {"name", "domain", "industry", "description", "city", "country"},
	crm.TypeDeal:    {"dealname", "dealstage", "pipeline", "amount", "closedate", "description"},
}

// Normalize converts a raw CRM record into an Entity.
// It is pure and deterministic. Fails with a malformed-record error when
// the record lacks a usable identifier; absent text properties are simply
// omitted from the derived text.
func Normalize(raw crm.RawRecord, typ crm.EntityType) (Entity, error) {
	if !typ.Valid() {
		return Entity{}, errors.New(errors.ErrCodeMalformedRecord,
			fmt.Sprintf("unknown entity type %q", typ), nil)
	}

	props := flatten(raw)

	id := ""
	for _, key := range idProperties {
		if v := props[key]; v != "" {
			id = v
			break
		}
	}
	if id == "" {
		return Entity{}, errors.New(errors.ErrCodeMalformedRecord,
			fmt.Sprintf("%s record has no usable identifier", typ), nil)
	}

	var parts []string
	for _, key := range textProperties[typ] {
		if v := props[key]; v != "" {
			parts = append(parts, v)
		}
	}

	return Entity{
		ID:         id,
		Type:       typ,
		Text:       strings.Join(parts, " "),
		Properties: props,
	}, nil
}

// flatten converts the raw property map to strings, dropping values that
// have no scalar string form (nested objects, nil).
func flatten(raw crm.RawRecord) map[string]string {
	props := make(map[string]string, len(raw))
	for key, value := range raw {
		if s, ok := stringify(value); ok {
			props[key] = s
		}
	}
	return props
}

func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		// JSON numbers decode as float64; render integers without a
		// trailing ".0" so IDs and amounts stay stable.
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10), true
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case nil:
		return "", false
	default:
		return "", false
	}
}
