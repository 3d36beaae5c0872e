package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repos groups the per-aggregate repositories bound to one database handle.
type Repos struct {
	Users      UserRepository
	Jars       JarRepository
	Deposits   DepositRepository
	Activities ActivityRepository
}

// NewRepos builds the repository set over a shared handle.
func NewRepos(db *gorm.DB) *Repos {
	return &Repos{
		Users:      NewUserRepository(db),
		Jars:       NewJarRepository(db),
		Deposits:   NewDepositRepository(db),
		Activities: NewActivityRepository(db),
	}
}

// TxManager runs a function with every repository bound to the same database
// transaction. The jar balance write and the deposit row write of one logical
// mutation always go through a single TxManager call, so the pair commits or
// rolls back as a unit.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, r *Repos) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a TxManager backed by GORM transactions.
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

// WithTransaction executes fn within a database transaction.
func (m *gormTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, r *Repos) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepos(tx))
	})
}
