package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/sir_venger/chunkxfer/internal/models"
)

const fileKeyPrefix = "file:"

// BadgerStore хранит каталог во встроенной BadgerDB, записи — JSON под ключом file:<id>.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger открывает (или создаёт) БД в каталоге dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("badger dir is empty")
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Get возвращает запись по id или models.ErrNotFound.
func (s *BadgerStore) Get(_ context.Context, id string) (models.File, error) {
	var file models.File
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(fileKeyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &file)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.File{}, models.ErrNotFound
	}
	if err != nil {
		return models.File{}, fmt.Errorf("badger get %s: %w", id, err)
	}
	return file, nil
}

// Save записывает (или обновляет) запись.
func (s *BadgerStore) Save(_ context.Context, file models.File) error {
	if err := validateFile(file); err != nil {
		return err
	}
	val, err := json.Marshal(file)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(fileKeyPrefix+file.ID), val)
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
