package faculty

import (
	"context"

	"github.com/school/backend/internal/domain/faculty"
	"github.com/school/backend/internal/domain/identity"
)

// TransactionScope provides transactional access to the repositories a
// teacher write touches. Everything done through the repositories handed to
// fn is committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to repositories sharing one transaction.
//
// The code sequence is part of the transaction so that a rolled back teacher
// insert also gives its sequence number back.
type TransactionalRepositories interface {
	Users() identity.UserRepository
	Positions() faculty.PositionRepository
	Teachers() faculty.TeacherRepository
	CodeSequence() faculty.TeacherCodeSequence
}
