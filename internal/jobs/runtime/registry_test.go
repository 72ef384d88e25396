package runtime

import "testing"

type stubHandler struct{ typ string }

func (h stubHandler) Type() string       { return h.typ }
func (h stubHandler) Run(*Context) error { return nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(stubHandler{typ: "plan_generate"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(stubHandler{typ: "plan_generate"}); err == nil {
		t.Fatal("expected error on duplicate registration")
	}
	if err := r.Register(stubHandler{}); err == nil {
		t.Fatal("expected error on empty type")
	}
	if err := r.Register(nil); err == nil {
		t.Fatal("expected error on nil handler")
	}

	if _, ok := r.Get("plan_generate"); !ok {
		t.Error("expected registered handler")
	}
	if _, ok := r.Get("unknown"); ok {
		t.Error("expected miss for unknown type")
	}
}
