package query

import (
	"context"
	"errors"
	"testing"

	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func newTestExecutor() *Executor {
	e := NewExecutor(logger.NewNop())
	e.Register("echo", func(_ context.Context, call Call) (any, error) {
		return call.Args.String("value")
	})
	e.Register("missing", func(_ context.Context, call Call) (any, error) {
		id, err := call.Args.Int64("id")
		if err != nil {
			return nil, err
		}
		return nil, apperror.NotFound("category", id)
	})
	e.Register("broken", func(context.Context, Call) (any, error) {
		return nil, errors.New("connection reset by peer")
	})
	e.Register("panics", func(context.Context, Call) (any, error) {
		panic("boom")
	})
	return e
}

func TestExecutePartialFailure(t *testing.T) {
	resp := newTestExecutor().Execute(context.Background(), &Request{
		RequestID: "req-1",
		Operations: []Operation{
			{Name: "echo", Args: map[string]any{"value": "hello"}},
			{Name: "missing", Alias: "lookup", Args: map[string]any{"id": float64(7)}},
		},
	})

	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, "hello", resp.Data["echo"])
	assert.Contains(t, resp.Data, "lookup")
	assert.Nil(t, resp.Data["lookup"])
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, Error{
		Path:           []string{"lookup"},
		Code:           "ENTITY_NOT_FOUND",
		Classification: "NOT_FOUND",
		Message:        "Category not found with ID: 7",
	}, resp.Errors[0])
}

func TestExecuteMasksInternalErrors(t *testing.T) {
	resp := newTestExecutor().Execute(context.Background(), &Request{
		Operations: []Operation{{Name: "broken"}, {Name: "panics"}},
	})

	assert.NotEmpty(t, resp.RequestID)
	require.Len(t, resp.Errors, 2)
	for _, e := range resp.Errors {
		assert.Equal(t, "INTERNAL_ERROR", e.Code)
		assert.Equal(t, "INTERNAL", e.Classification)
		assert.Equal(t, internalMessage, e.Message)
	}
}

func TestExecuteRejectsUnknownAndDuplicate(t *testing.T) {
	resp := newTestExecutor().Execute(context.Background(), &Request{
		Operations: []Operation{
			{Name: "nope"},
			{Name: "echo", Args: map[string]any{"value": "a"}},
			{Name: "echo", Args: map[string]any{"value": "b"}},
		},
	})

	require.Len(t, resp.Errors, 2)
	assert.Equal(t, "VALIDATION_ERROR", resp.Errors[0].Code)
	assert.Equal(t, []string{"nope"}, resp.Errors[0].Path)
	assert.Equal(t, "VALIDATION_ERROR", resp.Errors[1].Code)
	assert.Equal(t, "a", resp.Data["echo"])
}

func TestExecuteEmptyRequest(t *testing.T) {
	resp := newTestExecutor().Execute(context.Background(), &Request{})
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "VALIDATION_ERROR", resp.Errors[0].Code)
}

func TestRegisterTwicePanics(t *testing.T) {
	e := newTestExecutor()
	assert.Panics(t, func() {
		e.Register("echo", func(context.Context, Call) (any, error) { return nil, nil })
	})
	assert.Equal(t, []string{"broken", "echo", "missing", "panics"}, e.Operations())
}

func TestResponseMapIsStructCompatible(t *testing.T) {
	resp := newTestExecutor().Execute(context.Background(), &Request{
		Operations: []Operation{
			{Name: "echo", Args: map[string]any{"value": "x"}},
			{Name: "missing", Args: map[string]any{"id": "3"}},
		},
	})

	s, err := structpb.NewStruct(resp.Map())
	require.NoError(t, err)
	assert.Equal(t, "x", s.Fields["data"].GetStructValue().Fields["echo"].GetStringValue())
	assert.Len(t, s.Fields["errors"].GetListValue().Values, 1)
}
