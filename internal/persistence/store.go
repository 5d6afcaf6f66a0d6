// Package persistence defines the port the engine flushes the document through
// and the JSON codec every adapter shares.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/intern-ledger/internal/domain"
)

// Store loads and saves the whole document. Adapters must be safe for
// concurrent use and must not retain the value passed to Save.
type Store interface {
	Load(ctx context.Context) (domain.Document, error)
	Save(ctx context.Context, doc domain.Document) error
}

// Encode serialises the document in the canonical indented JSON form used by
// every adapter and by exports.
func Encode(doc domain.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("persistence: encode document: %w", err)
	}
	return data, nil
}

// Decode parses a stored document and fills missing collections.
func Decode(data []byte) (domain.Document, error) {
	var doc domain.Document
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, fmt.Errorf("%w: empty payload", ErrCorrupt)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	doc.Normalize()
	return doc, nil
}
