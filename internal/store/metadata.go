package store

import (
	"database/sql"
	"strings"
)

// SetMetadata upserts a key-value pair in the metadata table.
func (s *Store) SetMetadata(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns nil and nil error if the key is missing.
func (s *Store) GetMetadata(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// DeleteMetadata removes a key. Deleting a missing key is not an error.
func (s *Store) DeleteMetadata(key string) error {
	_, err := s.db.Exec(`DELETE FROM metadata WHERE key = ?`, key)
	return err
}

// MetadataKeys returns all keys starting with prefix, sorted.
func (s *Store) MetadataKeys(prefix string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT key FROM metadata WHERE substr(key, 1, ?) = ? ORDER BY key`,
		len(prefix), prefix,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, rows.Err()
}

// MetadataKV exposes the metadata table as a progress backend.
type MetadataKV struct {
	s *Store
}

// KV returns the metadata table as a key-value store.
func (s *Store) KV() *MetadataKV {
	return &MetadataKV{s: s}
}

func (m *MetadataKV) Get(key string) ([]byte, error) { return m.s.GetMetadata(key) }
func (m *MetadataKV) Set(key string, value []byte) error { return m.s.SetMetadata(key, value) }
func (m *MetadataKV) Delete(key string) error { return m.s.DeleteMetadata(key) }
func (m *MetadataKV) Keys(prefix string) ([]string, error) { return m.s.MetadataKeys(prefix) }
