// Package store implements the permanent storage of the command history and
// of option values, backed by a bbolt database.
package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"src.exline.sh/pkg/logutil"
	"src.exline.sh/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

// Buckets.
const (
	bucketCmd    = "cmd"
	bucketOption = "option"
)

// DBStore is the permanent storage backend.
type DBStore interface {
	storedefs.Store
	Close() error
}

var initDB = map[string](func(*bolt.Tx) error){}

type dbStore struct {
	db  *bolt.DB
	now func() time.Time
}

// NewStore creates a new Store from the given file.
func NewStore(dbname string) (DBStore, error) {
	db, err := bolt.Open(dbname, 0644, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	return NewStoreFromDB(db)
}

// NewStoreFromDB creates a new Store from a bolt DB.
func NewStoreFromDB(db *bolt.DB) (DBStore, error) {
	logger.Println("initializing store")
	defer logger.Println("initialized store")
	st := &dbStore{db: db, now: time.Now}

	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	return st, err
}

// Close closes the database.
func (s *dbStore) Close() error {
	return s.db.Close()
}
