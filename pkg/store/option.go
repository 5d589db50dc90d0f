package store

import (
	bolt "go.etcd.io/bbolt"

	. "src.exline.sh/pkg/store/storedefs"
)

func init() {
	initDB["initialize option table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketOption))
		return err
	}
}

// Option gets the stored value of an option.
func (s *dbStore) Option(name string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketOption))
		v := b.Get([]byte(name))
		if v == nil {
			return ErrNoOption
		}
		value = string(v)
		return nil
	})
	return value, err
}

// SetOption stores the value of an option.
func (s *dbStore) SetOption(name, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketOption))
		return b.Put([]byte(name), []byte(value))
	})
}

// DelOption deletes the stored value of an option.
func (s *dbStore) DelOption(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketOption))
		return b.Delete([]byte(name))
	})
}

// Options returns all stored option values.
func (s *dbStore) Options() (map[string]string, error) {
	values := make(map[string]string)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketOption)).ForEach(func(k, v []byte) error {
			values[string(k)] = string(v)
			return nil
		})
	})
	return values, err
}
