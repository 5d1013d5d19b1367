package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
)

// Storage keys
const (
	keyAutosavePrefix = "autosave:"
	keyRecent         = "recent"
	recentLimit       = 10
)

// RecentFile is an entry of the recently opened list
type RecentFile struct {
	Path     string    `json:"path"`
	Moves    int       `json:"moves"`
	OpenedAt time.Time `json:"opened_at"`
}

// AutosaveStorage keeps compressed snapshots of records being edited in the terminal editor.
type AutosaveStorage struct {
	db      *badger.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewAutosaveStorage opens the store in dir. An empty dir keeps everything in memory.
func NewAutosaveStorage(dir string) (*AutosaveStorage, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open autosave store: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, err
	}

	return &AutosaveStorage{db: db, encoder: encoder, decoder: decoder}, nil
}

// Close closes the database
func (s *AutosaveStorage) Close() error {
	s.decoder.Close()
	_ = s.encoder.Close()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save stores the snapshot of the record at path.
func (s *AutosaveStorage) Save(path string, sgfText string) error {
	data := s.encoder.EncodeAll([]byte(sgfText), nil)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyAutosavePrefix+path), data)
	})
}

// Load returns the snapshot of path, ok is false when there is none.
func (s *AutosaveStorage) Load(path string) (sgfText string, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyAutosavePrefix + path))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			raw, err := s.decoder.DecodeAll(val, nil)
			if err != nil {
				return fmt.Errorf("decompress snapshot of %s: %w", path, err)
			}
			sgfText, ok = string(raw), true
			return nil
		})
	})
	return sgfText, ok, err
}

// Drop removes the snapshot after the record was written to its file.
func (s *AutosaveStorage) Drop(path string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyAutosavePrefix + path))
	})
}

// Touch moves path to the top of the recent list.
func (s *AutosaveStorage) Touch(path string, moves int, at time.Time) error {
	return s.db.Update(func(txn *badger.Txn) error {
		recent, err := readRecent(txn)
		if err != nil {
			return err
		}
		kept := []RecentFile{{Path: path, Moves: moves, OpenedAt: at}}
		for _, r := range recent {
			if r.Path != path {
				kept = append(kept, r)
			}
		}
		if len(kept) > recentLimit {
			kept = kept[:recentLimit]
		}
		data, err := json.Marshal(kept)
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyRecent), data)
	})
}

// Recent returns the recently opened files, newest first.
func (s *AutosaveStorage) Recent() ([]RecentFile, error) {
	var recent []RecentFile
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		recent, err = readRecent(txn)
		return err
	})
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].OpenedAt.After(recent[j].OpenedAt)
	})
	return recent, err
}

func readRecent(txn *badger.Txn) ([]RecentFile, error) {
	item, err := txn.Get([]byte(keyRecent))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var recent []RecentFile
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &recent)
	})
	return recent, err
}
