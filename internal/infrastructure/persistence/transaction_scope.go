package persistence

import (
	"context"

	appfaculty "github.com/school/backend/internal/application/faculty"
	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/domain/identity"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of a teacher write and the user it owns.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appfaculty.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Users returns the user repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Users() identity.UserRepository {
	return NewGormUserRepository(r.tx)
}

// Positions returns the position repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Positions() faculty.PositionRepository {
	return NewGormPositionRepository(r.tx)
}

// Teachers returns the teacher repository scoped to the current transaction.
func (r *gormTransactionalRepositories) Teachers() faculty.TeacherRepository {
	return NewGormTeacherRepository(r.tx)
}

// CodeSequence returns the teacher code counter scoped to the current transaction.
func (r *gormTransactionalRepositories) CodeSequence() faculty.TeacherCodeSequence {
	return NewGormTeacherCodeSequence(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appfaculty.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appfaculty.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
