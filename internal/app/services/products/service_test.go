package products

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bod9dzys/order-api-mvp/internal/app/storage"
	"github.com/bod9dzys/order-api-mvp/internal/app/storage/memory"
)

func TestCreateValidation(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "", "SKU-1", 1); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := svc.Create(ctx, "Mug", "", 1); err == nil {
		t.Fatal("expected error for empty sku")
	}
	if _, err := svc.Create(ctx, "Mug", "SKU-1", -1); err == nil {
		t.Fatal("expected error for negative price")
	}
}

func TestCreateDuplicateSKU(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Mug", "MUG-1", 9.5); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, "Other", "MUG-1", 5); !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestUpdatePartial(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, "Mug", "MUG-1", 9.5)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	price := 12.0
	updated, err := svc.Update(ctx, p.ID, nil, nil, &price)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price != 12.0 || updated.Name != "Mug" || updated.SKU != "MUG-1" {
		t.Fatalf("unexpected product: %+v", updated)
	}

	empty := ""
	if _, err := svc.Update(ctx, p.ID, &empty, nil, nil); err == nil {
		t.Fatal("expected error for empty name patch")
	}
}

func TestListPaginatesWithCursor(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, fmt.Sprintf("p%d", i), fmt.Sprintf("SKU-%d", i), float64(i)); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	first, next, err := svc.List(ctx, 2, "")
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first) != 2 || next == "" {
		t.Fatalf("first page len=%d next=%q", len(first), next)
	}

	second, next2, err := svc.List(ctx, 2, next)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second) != 2 || next2 == "" {
		t.Fatalf("second page len=%d next=%q", len(second), next2)
	}
	if second[0].ID == first[0].ID || second[0].ID == first[1].ID {
		t.Fatal("pages overlap")
	}

	last, next3, err := svc.List(ctx, 2, next2)
	if err != nil {
		t.Fatalf("last page: %v", err)
	}
	if len(last) != 1 || next3 != "" {
		t.Fatalf("last page len=%d next=%q", len(last), next3)
	}
}

func TestListClampsLimitAndIgnoresBadCursor(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, fmt.Sprintf("p%d", i), fmt.Sprintf("SKU-%d", i), 1); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	items, _, err := svc.List(ctx, 0, "!!not-a-cursor!!")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Bad cursor falls back to the first page with the default limit.
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
}
