package tracing

import (
	"context"
	"testing"

	"github.com/kitchenequip/equipment-backend/pkg/config"
	"github.com/kitchenequip/equipment-backend/pkg/logger"
)

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{ServiceName: "test"}, "test", logger.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected shutdown func")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown returned %v", err)
	}
}

func TestInitWithEndpoint(t *testing.T) {
	ctx := context.Background()
	shutdown, err := Init(ctx, config.TracingConfig{OTLPEndpoint: "localhost:4318", ServiceName: "test"}, "test", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// nothing was recorded, so shutdown has nothing to export
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
