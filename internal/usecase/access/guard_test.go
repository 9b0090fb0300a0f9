package access

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/johnquangdev/cyberon-reporter/internal/infrastructure/cache"
	usecaseErrors "github.com/johnquangdev/cyberon-reporter/internal/usecase/errors"
	"github.com/johnquangdev/cyberon-reporter/pkg/config"
)

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (cache.Decision, error) {
	return cache.Decision{}, errors.New("redis down")
}

func TestAdmit_AdminAllowList(t *testing.T) {
	g := NewGuard(config.AccessConfig{CheckAdmin: true, AdminID: 7}, nil, nil)

	if _, err := g.Admit(context.Background(), 7); err != nil {
		t.Fatalf("admin must be admitted: %v", err)
	}
	if _, err := g.Admit(context.Background(), 8); !errors.Is(err, usecaseErrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	open := NewGuard(config.AccessConfig{CheckAdmin: false, AdminID: 7}, nil, nil)
	if !open.IsAllowedUser(8) {
		t.Fatal("allow list must be off when CheckAdmin is false")
	}
}

func TestAdmit_RateLimit(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	g := NewGuard(config.AccessConfig{}, cache.NewMemoryLimiter(store, 2, time.Minute), nil)

	for i := 0; i < 2; i++ {
		if _, err := g.Admit(context.Background(), 1); err != nil {
			t.Fatalf("request %d should pass: %v", i+1, err)
		}
	}

	d, err := g.Admit(context.Background(), 1)
	if !errors.Is(err, usecaseErrors.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if d.Allowed || d.Count != 3 || d.Limit != 2 {
		t.Fatalf("unexpected decision %+v", d)
	}

	if _, err := g.Admit(context.Background(), 2); err != nil {
		t.Fatalf("other users keep their own quota: %v", err)
	}
}

func TestAdmit_BrokenLimiterAdmits(t *testing.T) {
	g := NewGuard(config.AccessConfig{}, brokenLimiter{}, nil)
	d, err := g.Admit(context.Background(), 1)
	if err != nil || !d.Allowed {
		t.Fatalf("expected admission, got %+v / %v", d, err)
	}
}
