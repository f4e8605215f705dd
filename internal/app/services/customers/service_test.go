package customers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/bod9dzys/order-api-mvp/internal/app/storage"
	"github.com/bod9dzys/order-api-mvp/internal/app/storage/memory"
)

func TestCreateValidation(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "", "a@b.com", 0, 0); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := svc.Create(ctx, "Ann", "bad-email", 0, 0); err == nil {
		t.Fatal("expected error for invalid email")
	}
	if _, err := svc.Create(ctx, "Ann", "a@b.com", 91, 0); err == nil {
		t.Fatal("expected error for out-of-range latitude")
	}
	if _, err := svc.Create(ctx, "Ann", "a@b.com", 0, 181); err == nil {
		t.Fatal("expected error for out-of-range longitude")
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Ann", "a@b.com", 50, 30); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, "Bob", "a@b.com", 50, 30); !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestUpdatePartial(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	c, err := svc.Create(ctx, "Ann", "a@b.com", 50, 30)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Ann B"
	updated, err := svc.Update(ctx, c.ID, &name, nil, nil, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FullName != "Ann B" {
		t.Fatalf("name = %q", updated.FullName)
	}
	if updated.Email != "a@b.com" || updated.Latitude != 50 {
		t.Fatalf("untouched fields changed: %+v", updated)
	}

	if _, err := svc.Update(ctx, "missing", &name, nil, nil, nil); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}

func TestRelocate(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	c, err := svc.Create(ctx, "Ann", "a@b.com", 50, 30)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	moved, err := svc.Relocate(ctx, c.ID, 51.5, 31.5)
	if err != nil {
		t.Fatalf("relocate: %v", err)
	}
	if moved.Latitude != 51.5 || moved.Longitude != 31.5 {
		t.Fatalf("coordinates = %v,%v", moved.Latitude, moved.Longitude)
	}

	if _, err := svc.Relocate(ctx, c.ID, 95, 0); err == nil {
		t.Fatal("expected error for invalid latitude")
	}
}

func TestListClampsPaging(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, fmt.Sprintf("cust %d", i), fmt.Sprintf("c%d@example.com", i), 0, 0); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	all, err := svc.List(ctx, -5, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3 (negative skip and zero limit use defaults)", len(all))
	}

	one, err := svc.List(ctx, 2, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(one) != 1 || one[0].FullName != "cust 2" {
		t.Fatalf("unexpected page: %+v", one)
	}
}
