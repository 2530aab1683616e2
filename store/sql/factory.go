package sqlstore

import (
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
)

// RepositoryFactory builds the ingest and curated stores over one bun DB.
type RepositoryFactory struct {
	db *bun.DB

	ingestStore  *IngestStore
	curatedStore *CuratedStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.ingestStore != nil && f.curatedStore != nil {
		return nil
	}

	ingestStore, err := NewIngestStore(f.db)
	if err != nil {
		return err
	}
	curatedStore, err := NewCuratedStore(f.db)
	if err != nil {
		return err
	}
	f.ingestStore = ingestStore
	f.curatedStore = curatedStore
	return nil
}

func (f *RepositoryFactory) IngestStore() *IngestStore {
	if f == nil {
		return nil
	}
	return f.ingestStore
}

func (f *RepositoryFactory) CuratedStore() *CuratedStore {
	if f == nil {
		return nil
	}
	return f.curatedStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
