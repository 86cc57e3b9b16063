package db

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories over one database handle. Inside Transaction
// the handle is the transaction, so every repository call joins it.
type Store struct {
	database     *gorm.DB
	Users        *UserRepository
	Experiments  *ExperimentRepository
	Batches      *BatchRepository
	Timepoints   *TimepointRepository
	Measurements *MeasurementRepository
}

func NewStore(database *gorm.DB) *Store {
	return &Store{
		database:     database,
		Users:        NewUserRepository(database),
		Experiments:  NewExperimentRepository(database),
		Batches:      NewBatchRepository(database),
		Timepoints:   NewTimepointRepository(database),
		Measurements: NewMeasurementRepository(database),
	}
}

// Transaction runs fn in a single database transaction. Returning an error
// from fn rolls back every write made through tx.
func (store *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return store.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// WithContext returns a store whose queries observe ctx.
func (store *Store) WithContext(ctx context.Context) *Store {
	return NewStore(store.database.WithContext(ctx))
}

func (store *Store) Ping(ctx context.Context) error {
	sqlDB, err := store.database.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (store *Store) Close() error {
	sqlDB, err := store.database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (store *Store) MigrationStatus() ([]MigrationState, error) {
	return MigrationStatus(store.database)
}
