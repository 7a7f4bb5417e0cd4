package crm

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Aman-CERP/crmdex/internal/errors"
)

// fileRecords is the on-disk shape for a file-backed source: one array
// of raw records per entity type, keyed by the plural type name.
type fileRecords struct {
	Contacts  []RawRecord `json:"contacts"`
	Companies []RawRecord `json:"companies"`
	Deals     []RawRecord `json:"deals"`
}

// NewFileSource loads a JSON export into an in-memory Source. It lets
// the CLI run the full pipeline against a snapshot without a live CRM
// connection; the production transport would plug in a real API client
// behind the same Source interface.
func NewFileSource(path string, pageSize int) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeSourcePermanent,
			fmt.Sprintf("cannot read source file %s", path), err)
	}

	var parsed fileRecords
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, errors.New(errors.ErrCodeSourcePermanent,
			fmt.Sprintf("source file %s is not valid JSON", path), err).
			WithSuggestion("Expected an object with contacts, companies, and deals arrays")
	}

	return NewStaticSource(map[EntityType][]RawRecord{
		TypeContact: parsed.Contacts,
		TypeCompany: parsed.Companies,
		TypeDeal:    parsed.Deals,
	}, pageSize), nil
}
