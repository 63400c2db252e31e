package shared

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Is(t *testing.T) {
	wrapped := fmt.Errorf("find user: %w", NewDomainError(CodeNotFound, "User not found"))

	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.NotErrorIs(t, wrapped, ErrAlreadyExists)
}

func TestFieldErrors(t *testing.T) {
	var errs FieldErrors
	assert.NoError(t, errs.Err())

	errs.Add("name", "Name is required")
	errs.Add("email", "Invalid email format")
	err := errs.Err()

	var domainErr *DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, CodeValidationFailed, domainErr.Code)
	assert.Len(t, domainErr.Details, 2)
	assert.Contains(t, err.Error(), "email: Invalid email format")
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 0, 0},
	}
	for _, tt := range tests {
		p := NewPagination(tt.total, 1, tt.pageSize)
		assert.Equal(t, tt.want, p.TotalPages, "total=%d size=%d", tt.total, tt.pageSize)
	}
}

func TestFilter_Normalize(t *testing.T) {
	f := Filter{Page: 0, PageSize: 500}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageSize, f.PageSize)
	assert.Equal(t, 0, f.Offset())

	f = Filter{Page: 3, PageSize: 0}.Normalize()
	assert.Equal(t, DefaultPageSize, f.PageSize)
	assert.Equal(t, 20, f.Offset())

	f = Filter{Page: math.MaxInt, PageSize: 100}.Normalize()
	assert.Equal(t, MaxPage, f.Page)
	assert.Positive(t, f.Offset())
}

func TestErrorHelpers(t *testing.T) {
	wrapped := fmt.Errorf("load teacher: %w", ErrNotFound)
	assert.True(t, IsNotFound(wrapped))
	assert.True(t, IsDomainError(wrapped))
	assert.False(t, IsNotFound(ErrDuplicateEmail))
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsDomainError(errors.New("boom")))
}
