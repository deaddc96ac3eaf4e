package grpcserver

import (
	"context"
	"net"
	"testing"

	"github.com/fekuna/catalog-service/config"
	"github.com/fekuna/catalog-service/internal/brand/handler"
	"github.com/fekuna/catalog-service/internal/brand/repository"
	"github.com/fekuna/catalog-service/internal/brand/usecase"
	"github.com/fekuna/catalog-service/internal/database/dbtest"
	"github.com/fekuna/catalog-service/internal/logger"
	"github.com/fekuna/catalog-service/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func newClient(t *testing.T) *CatalogServiceClient {
	db := dbtest.NewSQLite(t)
	log := logger.NewNop()

	exec := query.NewExecutor(log)
	handler.NewBrandHandler(usecase.NewBrandUseCase(repository.NewPGRepository(db), log),
		config.CatalogConfig{DefaultPageSize: 20, MaxPageSize: 100}, log).Register(exec)

	lis := bufconn.Listen(1 << 20)
	srv := NewServer(NewCatalogHandler(exec, log), log)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewCatalogServiceClient(conn)
}

func TestExecute(t *testing.T) {
	client := newClient(t)

	in, err := structpb.NewStruct(map[string]any{
		"requestId": "req-1",
		"operations": []any{
			map[string]any{
				"name":   "createBrand",
				"args":   map[string]any{"input": map[string]any{"name": "Nike"}},
				"fields": []any{"name", "active"},
			},
			map[string]any{
				"name":  "brand",
				"alias": "missing",
				"args":  map[string]any{"id": 404},
			},
		},
	})
	require.NoError(t, err)

	out, err := client.Execute(context.Background(), in)
	require.NoError(t, err)

	resp := out.AsMap()
	assert.Equal(t, "req-1", resp["requestId"])

	data := resp["data"].(map[string]any)
	created := data["createBrand"].(map[string]any)
	assert.Equal(t, "Nike", created["name"])
	assert.Equal(t, true, created["active"])
	assert.Contains(t, created, "id")
	assert.Nil(t, data["missing"])

	errs := resp["errors"].([]any)
	require.Len(t, errs, 1)
	e := errs[0].(map[string]any)
	assert.Equal(t, []any{"missing"}, e["path"])
	assert.Equal(t, "ENTITY_NOT_FOUND", e["code"])
	assert.Equal(t, "NOT_FOUND", e["classification"])
}

func TestExecuteMalformedRequest(t *testing.T) {
	client := newClient(t)

	in, err := structpb.NewStruct(map[string]any{"operations": "brands"})
	require.NoError(t, err)

	_, err = client.Execute(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestExecuteRequestIDFromMetadata(t *testing.T) {
	client := newClient(t)

	in, err := structpb.NewStruct(map[string]any{
		"operations": []any{map[string]any{"name": "brandStatistics"}},
	})
	require.NoError(t, err)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "from-header")
	out, err := client.Execute(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "from-header", out.AsMap()["requestId"])
}
