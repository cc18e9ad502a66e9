// Package store persists rendered trees between runs so a later render can
// be diffed against the previous one.
//
// Trees are kept in a bbolt database, one msgpack-encoded record per name.
package store

import (
	"sort"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"

	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

const bucketSnapshots = "snapshots"

// Record is one stored tree.
type Record struct {
	Name    string         `json:"name" msgpack:"name"`
	Rev     uint64         `json:"rev" msgpack:"rev"`
	SavedAt time.Time      `json:"savedAt" msgpack:"saved_at"`
	Tree    *vdom.Snapshot `json:"tree" msgpack:"tree"`
}

// Store is a bbolt-backed snapshot store. It is safe for concurrent use.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.New("S010").WithDetail("open " + path).Wrap(err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSnapshots))
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.New("S010").Wrap(err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores tree under name and returns its revision. Revisions grow
// across all names.
func (s *Store) Put(name string, tree *vdom.Element) (uint64, error) {
	var rev uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSnapshots))
		var err error
		rev, err = b.NextSequence()
		if err != nil {
			return err
		}
		data, err := msgpack.Marshal(&Record{
			Name:    name,
			Rev:     rev,
			SavedAt: time.Now().UTC(),
			Tree:    vdom.ToSnapshot(tree),
		})
		if err != nil {
			return err
		}
		return b.Put([]byte(name), data)
	})
	if err != nil {
		return 0, errors.New("S010").WithDetail("put " + name).Wrap(err)
	}
	return rev, nil
}

// Record returns the stored record for name, or nil when there is none.
func (s *Store) Record(name string) (*Record, error) {
	var rec *Record
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketSnapshots)).Get([]byte(name))
		if v == nil {
			return nil
		}
		rec = &Record{}
		return msgpack.Unmarshal(v, rec)
	})
	if err != nil {
		return nil, errors.New("S010").WithDetail("get " + name).Wrap(err)
	}
	return rec, nil
}

// Get returns the tree stored under name, or nil when there is none.
// Event callbacks do not survive storage; only their names do.
func (s *Store) Get(name string) (*vdom.Element, error) {
	rec, err := s.Record(name)
	if err != nil || rec == nil || rec.Tree == nil {
		return nil, err
	}
	tree, err := vdom.FromSnapshot(rec.Tree)
	if err != nil {
		return nil, errors.New("S010").WithDetail("decode " + name).Wrap(err)
	}
	return tree, nil
}

// Delete removes name. Deleting a missing name is not an error.
func (s *Store) Delete(name string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSnapshots)).Delete([]byte(name))
	})
	if err != nil {
		return errors.New("S010").WithDetail("delete " + name).Wrap(err)
	}
	return nil
}

// Names lists stored names in order.
func (s *Store) Names() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSnapshots)).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, errors.New("S010").Wrap(err)
	}
	sort.Strings(names)
	return names, nil
}
