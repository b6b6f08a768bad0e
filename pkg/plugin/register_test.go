package plugin

import (
	"context"
	"strings"
	"testing"
)

type nameOnly string

func (n nameOnly) Name() string { return string(n) }
func (n nameOnly) Collect(_ context.Context, _ *StatsConfig) (any, error) {
	return nil, nil
}

func factoryFor(name string) Factory {
	return Factory{Name: name, New: func(Dependencies) (Collector, error) { return nameOnly(name), nil }}
}

func mustPanic(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", want)
		}
		if msg, _ := r.(string); !strings.Contains(msg, want) {
			t.Errorf("panic = %v, want it to contain %q", r, want)
		}
	}()
	fn()
}

func indexOf(fs []Factory, name string) int {
	for i, f := range fs {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func TestRegisterKeepsOrder(t *testing.T) {
	Register(factoryFor("register-order-b"))
	Register(factoryFor("register-order-a"))

	got := Factories()
	b, a := indexOf(got, "register-order-b"), indexOf(got, "register-order-a")
	if b < 0 || a < 0 {
		t.Fatalf("Factories() = %v, missing registered factories", got)
	}
	if b > a {
		t.Errorf("register-order-b at %d, register-order-a at %d; want registration order", b, a)
	}

	// The returned slice is a copy.
	got[b].Name = "mutated"
	if indexOf(Factories(), "register-order-b") < 0 {
		t.Error("mutating the Factories() result changed the registry")
	}
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	Register(factoryFor("register-dup"))
	mustPanic(t, "twice", func() { Register(factoryFor("register-dup")) })
}

func TestRegisterRejectsInvalidFactory(t *testing.T) {
	mustPanic(t, "empty", func() { Register(factoryFor("")) })
	mustPanic(t, "nil constructor", func() { Register(Factory{Name: "register-nil"}) })
}
