package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/benbeisheim/squarechess-backend/internal/model"
	"github.com/dgraph-io/badger/v4"
)

var ErrNotFound = errors.New("not found")

const historyPrefix = "history/"

// Archive keeps the move history of every game in BadgerDB, one key per game.
type Archive struct {
	db *badger.DB
}

// Open opens the archive under dir. An empty dir keeps everything in memory.
func Open(dir string) (*Archive, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func historyKey(gameID string) []byte {
	return []byte(historyPrefix + gameID)
}

// SaveHistory replaces the stored history of gameID.
func (a *Archive) SaveHistory(gameID string, history model.History) error {
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode history %s: %w", gameID, err)
	}

	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Set(historyKey(gameID), data)
	})
}

func (a *Archive) LoadHistory(gameID string) (model.History, error) {
	var history model.History

	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(historyKey(gameID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("history %s: %w", gameID, ErrNotFound)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &history)
		})
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// Games lists the IDs of every archived game in key order.
func (a *Archive) Games() ([]string, error) {
	ids := []string{}

	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(historyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			ids = append(ids, strings.TrimPrefix(string(it.Item().Key()), historyPrefix))
		}
		return nil
	})
	return ids, err
}

func (a *Archive) DeleteHistory(gameID string) error {
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(historyKey(gameID))
	})
}
