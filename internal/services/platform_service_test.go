package services

import (
	"context"
	"errors"
	"testing"

	"freelance-escrow/internal/models"
)

func TestEnsureInstantiatedIsIdempotent(t *testing.T) {
	env := newTestEnv(t, 250)
	ctx := context.Background()

	// Second boot with different settings must not overwrite the stored config
	if err := env.platform.EnsureInstantiated(ctx, "someone-else", 500); err != nil {
		t.Fatalf("EnsureInstantiated failed: %v", err)
	}

	config, err := env.platform.GetConfig(ctx)
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if config.Owner != testOwner || config.PlatformFeeBps != 250 {
		t.Errorf("config overwritten on re-instantiation: %+v", config)
	}
}

func TestUpdatePlatformFee(t *testing.T) {
	env := newTestEnv(t, 250)
	ctx := context.Background()

	if _, err := env.platform.UpdatePlatformFee(ctx, "not-the-owner", 100); !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	if _, err := env.platform.UpdatePlatformFee(ctx, testOwner, models.MaxPlatformFeeBps+1); !errors.Is(err, models.ErrInvalidFee) {
		t.Errorf("expected ErrInvalidFee, got %v", err)
	}

	config, err := env.platform.UpdatePlatformFee(ctx, testOwner, 500)
	if err != nil {
		t.Fatalf("UpdatePlatformFee failed: %v", err)
	}
	if config.PlatformFeeBps != 500 {
		t.Errorf("expected fee 500, got %d", config.PlatformFeeBps)
	}
}
