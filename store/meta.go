package store

import (
	"encoding/json"
	"fmt"
)

// ItemMeta is the descriptive record stored alongside a document's content.
// A key is considered downloaded if and only if its ItemMeta entry exists;
// content for that key is always written first, so metadata never overstates
// what is resident.
type ItemMeta struct {
	Title             string            `json:"title"`
	TotalPages        int               `json:"total_pages,omitempty"`
	SourceResourceKey string            `json:"source_resource_key,omitempty"`
	Extra             map[string]string `json:"extra,omitempty"`
}

// PutItem writes the metadata record for key.
func (s *Store) PutItem(key string, meta *ItemMeta) error {
	if meta == nil {
		return fmt.Errorf("store: nil metadata for %q", key)
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("store: encode metadata for %q: %w", key, err)
	}
	return s.Metadata().Put(key, data)
}

// GetItem reads the metadata record for key. Returns ErrNotFound if the key
// has never been downloaded and ErrCorruptEntry if the record is unreadable.
func (s *Store) GetItem(key string) (*ItemMeta, error) {
	data, err := s.Metadata().Get(key)
	if err != nil {
		return nil, err
	}
	var meta ItemMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: decode metadata for %q: %w", ErrCorruptEntry, key, err)
	}
	return &meta, nil
}
