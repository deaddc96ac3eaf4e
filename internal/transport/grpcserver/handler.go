package grpcserver

import (
	"context"

	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/fekuna/catalog-service/internal/query"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const requestIDHeader = "x-request-id"

// Executor runs a decoded query request.
type Executor interface {
	Execute(ctx context.Context, req *query.Request) *query.Response
}

type CatalogHandler struct {
	exec   Executor
	logger logger.ZapLogger
}

func NewCatalogHandler(exec Executor, log logger.ZapLogger) *CatalogHandler {
	return &CatalogHandler{
		exec:   exec,
		logger: log,
	}
}

// Execute decodes the request struct, runs it and encodes the response.
// Operation failures travel inside the response; only a malformed request or
// an unencodable response become gRPC errors.
func (h *CatalogHandler) Execute(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req query.Request
	if err := mapstructure.Decode(in.AsMap(), &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "malformed request: %v", err)
	}

	if req.RequestID == "" {
		req.RequestID = requestID(ctx)
	}

	resp := h.exec.Execute(ctx, &req)

	out, err := structpb.NewStruct(resp.Map())
	if err != nil {
		h.logger.Error("failed to encode response", zap.String("request_id", resp.RequestID), zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

// requestID reads the x-request-id metadata of an incoming call.
func requestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(requestIDHeader); len(v) > 0 {
		return v[0]
	}
	return ""
}
