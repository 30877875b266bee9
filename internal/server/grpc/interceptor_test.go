package grpc

import (
	"context"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/eventgraph/internal/logging"
)

func newTestServer() *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop{}, &fakeStore{})
}

func TestInterceptor_PropagatesRequestID(t *testing.T) {
	s := newTestServer()

	md := metadata.New(map[string]string{requestIDMetadataKey: "req-7"})
	ctx := metadata.NewIncomingContext(context.Background(), md)
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	var got string
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		got = logging.RequestID(ctx)
		return "ok", nil
	}

	resp, err := s.loggingInterceptor(ctx, nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
	if got != "req-7" {
		t.Fatalf("request id not propagated: got %q", got)
	}
}

func TestInterceptor_GeneratesRequestID(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	var got string
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		got = logging.RequestID(ctx)
		return nil, nil
	}

	if _, err := s.loggingInterceptor(context.Background(), nil, info, h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 36 {
		t.Fatalf("expected generated uuid, got %q", got)
	}
}

func TestInterceptor_PassesHandlerError(t *testing.T) {
	s := newTestServer()
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "unknown service")
	}

	_, err := s.loggingInterceptor(context.Background(), nil, info, h)
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", status.Code(err))
	}
}
