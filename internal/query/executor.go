package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fekuna/catalog-service/internal/apperror"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/fekuna/catalog-service/internal/metrics"
	"github.com/fekuna/catalog-service/internal/selection"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const internalMessage = "An unexpected error occurred"

// Call is what a resolver receives for one operation.
type Call struct {
	Operation string
	Args      Args
	Fields    []string
}

// Select normalizes the requested output fields against schema.
func (c Call) Select(schema *selection.Schema) selection.Set {
	return selection.Analyze(schema, c.Fields)
}

// Resolver runs one operation and returns a value made only of maps,
// slices, strings, numbers, booleans and nil.
type Resolver func(ctx context.Context, call Call) (any, error)

// Registry is implemented by Executor. Feature handlers register their
// operations through it.
type Registry interface {
	Register(name string, resolver Resolver)
}

type Executor struct {
	resolvers map[string]Resolver
	logger    logger.ZapLogger
}

func NewExecutor(log logger.ZapLogger) *Executor {
	return &Executor{
		resolvers: make(map[string]Resolver),
		logger:    log,
	}
}

// Register panics on a duplicate name; registration happens at startup.
func (e *Executor) Register(name string, resolver Resolver) {
	if _, ok := e.resolvers[name]; ok {
		panic(fmt.Sprintf("query: operation %q registered twice", name))
	}
	e.resolvers[name] = resolver
}

// Operations returns the registered operation names, sorted.
func (e *Executor) Operations() []string {
	names := make([]string, 0, len(e.resolvers))
	for n := range e.resolvers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Execute runs the operations in order. Each operation succeeds or fails on
// its own.
func (e *Executor) Execute(ctx context.Context, req *Request) *Response {
	resp := &Response{
		RequestID: req.RequestID,
		Data:      make(map[string]any, len(req.Operations)),
	}
	if resp.RequestID == "" {
		resp.RequestID = uuid.NewString()
	}
	log := e.logger.With(zap.String("request_id", resp.RequestID))

	if len(req.Operations) == 0 {
		resp.Errors = append(resp.Errors, e.toError(log, nil, apperror.Validation("request has no operations")))
		return resp
	}

	for _, op := range req.Operations {
		key := op.Key()
		if _, dup := resp.Data[key]; dup {
			resp.Errors = append(resp.Errors, e.toError(log, []string{key},
				apperror.Validation("duplicate result key '%s'; use an alias", key)))
			continue
		}

		started := time.Now()
		value, err := e.run(ctx, op)
		if err != nil {
			resp.Data[key] = nil
			resp.Errors = append(resp.Errors, e.toError(log.With(zap.String("operation", op.Name)), []string{key}, err))
			metrics.ObserveOperation(op.Name, started, string(apperror.CodeOf(err)))
			continue
		}
		resp.Data[key] = value
		metrics.ObserveOperation(op.Name, started, "")
	}
	return resp
}

func (e *Executor) run(ctx context.Context, op Operation) (value any, err error) {
	resolver, ok := e.resolvers[op.Name]
	if !ok {
		return nil, apperror.Validation("unknown operation '%s'", op.Name)
	}
	defer func() {
		if r := recover(); r != nil {
			err = apperror.Internal(fmt.Errorf("panic: %v", r), "resolver panicked")
		}
	}()
	return resolver(ctx, Call{Operation: op.Name, Args: Args(op.Args), Fields: op.Fields})
}

// toError maps err to its protocol form. Internal failures are logged with
// their cause and reported with a generic message.
func (e *Executor) toError(log logger.ZapLogger, path []string, err error) Error {
	ae, ok := apperror.As(err)
	if !ok || ae.Code == apperror.CodeInternal {
		log.Error("operation failed", zap.Error(err))
		return Error{
			Path:           path,
			Code:           string(apperror.CodeInternal),
			Classification: string(apperror.ClassInternal),
			Message:        internalMessage,
		}
	}
	log.Debug("operation rejected", zap.String("code", string(ae.Code)), zap.String("message", ae.Message))
	return Error{
		Path:           path,
		Code:           string(ae.Code),
		Classification: string(ae.Code.Classification()),
		Message:        ae.Message,
	}
}
