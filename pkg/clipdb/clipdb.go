// Copyright 2020-2021 The OS-NVR Authors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package clipdb stores compressed clip blobs by name.
package clipdb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const dbAPIversion = "1"

const defaultMaxKeys = 100000

// NewDB new clip database.
func NewDB(dbPath string, wg *sync.WaitGroup) *DB {
	return &DB{
		dbPath:  dbPath,
		maxKeys: defaultMaxKeys,

		wg: wg,
	}
}

// DB clip database.
type DB struct {
	dbPath  string
	maxKeys int

	db *bolt.DB
	wg *sync.WaitGroup
}

// Init initialize database.
func (clipDB *DB) Init(ctx context.Context) error {
	dbOpts := &bolt.Options{
		Timeout: 1 * time.Second,
	}

	db, err := bolt.Open(clipDB.dbPath, 0o600, dbOpts)
	if err != nil {
		return fmt.Errorf("could not open database: %w: %v", err, clipDB.dbPath)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(dbAPIversion))
		return err
	})
	if err != nil {
		db.Close()
		return fmt.Errorf("could not create bucket: %v, %w", dbAPIversion, err)
	}

	clipDB.db = db

	clipDB.wg.Add(1)
	go func() {
		<-ctx.Done()
		db.Close()
		clipDB.wg.Done()
	}()

	return nil
}

// Put saves a compressed clip, replacing any previous blob with that name.
// The oldest key is evicted when the database is full.
func (clipDB *DB) Put(name string, blob []byte) error {
	return clipDB.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(dbAPIversion))

		if b.Stats().KeyN >= clipDB.maxKeys {
			if err := deleteFirstKey(b); err != nil {
				return fmt.Errorf("could not delete first key: %w", err)
			}
		}
		return b.Put([]byte(name), blob)
	})
}

func deleteFirstKey(b *bolt.Bucket) error {
	k, _ := b.Cursor().First()
	return b.Delete(k)
}

// ErrClipNotExist clip does not exist.
var ErrClipNotExist = errors.New("clip does not exist")

// Get returns the blob saved under name.
func (clipDB *DB) Get(name string) ([]byte, error) {
	var blob []byte
	err := clipDB.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket([]byte(dbAPIversion)).Get([]byte(name))
		if value == nil {
			return fmt.Errorf("%w: %v", ErrClipNotExist, name)
		}

		// The value is only valid inside the transaction.
		blob = append([]byte{}, value...)
		return nil
	})
	return blob, err
}

// List returns all saved clip names in key order.
func (clipDB *DB) List() ([]string, error) {
	var names []string
	err := clipDB.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(dbAPIversion)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}
