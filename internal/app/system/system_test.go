package system

import (
	"context"
	"errors"
	"testing"
)

type recordedService struct {
	name     string
	events   *[]string
	startErr error
	stopErr  error
}

func (s *recordedService) Name() string { return s.name }

func (s *recordedService) Start(_ context.Context) error {
	*s.events = append(*s.events, "start:"+s.name)
	return s.startErr
}

func (s *recordedService) Stop(_ context.Context) error {
	*s.events = append(*s.events, "stop:"+s.name)
	return s.stopErr
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	m := NewManager()
	if err := m.Register(NoopService{ServiceName: "a"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Register(NoopService{ServiceName: "a"}); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestRegisterAfterStartFails(t *testing.T) {
	m := NewManager()
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Register(NoopService{ServiceName: "late"}); err == nil {
		t.Fatal("expected registration after start to fail")
	}
}

func TestStartOrderAndStopReverse(t *testing.T) {
	var events []string
	m := NewManager()
	for _, name := range []string{"a", "b", "c"} {
		if err := m.Register(&recordedService{name: name, events: &events}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	want := []string{"start:a", "start:b", "start:c", "stop:c", "stop:b", "stop:a"}
	if len(events) != len(want) {
		t.Fatalf("events = %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
}

func TestStartFailureRollsBack(t *testing.T) {
	var events []string
	m := NewManager()
	boom := errors.New("boom")
	_ = m.Register(&recordedService{name: "a", events: &events})
	_ = m.Register(&recordedService{name: "b", events: &events, startErr: boom})
	_ = m.Register(&recordedService{name: "c", events: &events})

	err := m.Start(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("start err = %v", err)
	}

	want := []string{"start:a", "start:b", "stop:a"}
	if len(events) != len(want) {
		t.Fatalf("events = %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}

	// A failed start leaves the manager reusable.
	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("stop after failed start: %v", err)
	}
}
