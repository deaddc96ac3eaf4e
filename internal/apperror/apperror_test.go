package apperror

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeEntityNotFound, CodeOf(NotFound("category", int64(3))))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))

	wrapped := errors.Wrap(Duplicate("brand", "name", "Nike"), "create brand")
	assert.Equal(t, CodeDuplicateEntity, CodeOf(wrapped))
	assert.True(t, errors.Is(wrapped, ErrDuplicate))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Category not found with ID: 7", NotFound("category", 7).Message)
	assert.Equal(t, "Brand with name 'Nike' already exists", Duplicate("brand", "name", "Nike").Message)
	assert.Equal(t, "Insufficient stock. Available: 2, Requested: 5", InsufficientStock(1, 2, 5).Message)
}

func TestClassification(t *testing.T) {
	cases := map[Code]Classification{
		CodeEntityNotFound:      ClassNotFound,
		CodeDuplicateEntity:     ClassConflict,
		CodeInsufficientStock:   ClassBusinessRule,
		CodeOperationNotAllowed: ClassBusinessRule,
		CodeValidation:          ClassValidation,
		CodeInternal:            ClassInternal,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.Classification(), code)
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: connection reset")
	err := Internal(cause, "An unexpected error occurred")
	assert.Equal(t, "An unexpected error occurred", err.Message)
	assert.ErrorIs(t, err, cause)
}
