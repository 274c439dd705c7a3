package repositories

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix   = "post:"
	GroupKeyPrefix  = "group:"
	AuthorKeyPrefix = "author:"

	// Unique secondary indexes: natural key -> ID
	GroupSlugIndexPrefix      = "idx:group:slug:"
	AuthorUsernameIndexPrefix = "idx:author:username:"

	// Sequence keys for auto-incrementing IDs
	PostSeqKey   = "seq:post"
	GroupSeqKey  = "seq:group"
	AuthorSeqKey = "seq:author"
)

func entityKey(prefix string, id int) []byte {
	return []byte(fmt.Sprintf("%s%d", prefix, id))
}

func encodeID(id int) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(id))
	return buf
}

func decodeID(val []byte) (int, error) {
	if len(val) != 4 {
		return 0, fmt.Errorf("malformed id value of %d bytes", len(val))
	}
	return int(binary.BigEndian.Uint32(val)), nil
}

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id int
	item, err := txn.Get([]byte(seqKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		id = 1
	} else if err != nil {
		return 0, err
	} else {
		err = item.Value(func(val []byte) error {
			id, err = decodeID(val)
			return err
		})
		if err != nil {
			return 0, err
		}
		id++
	}

	if err := txn.Set([]byte(seqKey), encodeID(id)); err != nil {
		return 0, err
	}

	return id, nil
}

// lookupIndex resolves a unique index entry to the entity ID it points at.
func lookupIndex(txn *badger.Txn, key string) (int, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var id int
	err = item.Value(func(val []byte) error {
		id, err = decodeID(val)
		return err
	})
	return id, err
}

// getEntity loads and decodes the value stored under key.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}
