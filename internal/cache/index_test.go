package cache

import "testing"

type component struct{ name string }

func TestIndex_LookupHasNoSideEffects(t *testing.T) {
	ix := NewIndex[*component, string]()
	owner := &component{name: "a"}

	if _, ok := ix.Lookup(owner, "k"); ok {
		t.Fatal("Lookup found a key in an empty index")
	}
	if ix.Owners() != 0 {
		t.Errorf("Lookup created an owner sub-map: owners=%d", ix.Owners())
	}
}

func TestIndex_BindAndUnbind(t *testing.T) {
	ix := NewIndex[*component, string]()
	owner := &component{name: "a"}

	if _, replaced := ix.Bind(owner, "k1", 1); replaced {
		t.Error("first Bind reported a replacement")
	}
	ix.Bind(owner, "k2", 2)

	prev, replaced := ix.Bind(owner, "k1", 3)
	if !replaced || prev != 1 {
		t.Errorf("Bind = %d, %v; want 1, true", prev, replaced)
	}

	if tok, ok := ix.Lookup(owner, "k1"); !ok || tok != 3 {
		t.Errorf("Lookup = %d, %v; want 3, true", tok, ok)
	}
	if ix.Keys(owner) != 2 || ix.Len() != 2 {
		t.Errorf("keys=%d len=%d, want 2 and 2", ix.Keys(owner), ix.Len())
	}

	if !ix.Unbind(owner, "k1") {
		t.Error("Unbind of a bound key returned false")
	}
	if ix.Owners() != 1 {
		t.Errorf("owner dropped while it still has keys")
	}

	ix.Unbind(owner, "k2")
	if ix.Owners() != 0 {
		t.Errorf("owner kept after its last key was unbound")
	}
	if ix.Unbind(owner, "k2") {
		t.Error("Unbind of a missing key returned true")
	}
}

func TestIndex_OwnerIdentity(t *testing.T) {
	ix := NewIndex[*component, string]()

	// Structurally equal owners are still different identities
	a := &component{name: "same"}
	b := &component{name: "same"}

	ix.Bind(a, "x", 1)
	ix.Bind(b, "x", 2)

	if tok, _ := ix.Lookup(a, "x"); tok != 1 {
		t.Errorf("owner a resolved to token %d", tok)
	}
	if tok, _ := ix.Lookup(b, "x"); tok != 2 {
		t.Errorf("owner b resolved to token %d", tok)
	}
	if ix.Owners() != 2 {
		t.Errorf("Owners = %d, want 2", ix.Owners())
	}
}

func TestIndex_UnbindToken(t *testing.T) {
	ix := NewIndex[*component, string]()
	owner := &component{}

	ix.Bind(owner, "k", 1)
	ix.Bind(owner, "k", 2)

	if ix.UnbindToken(owner, "k", 1) {
		t.Error("stale token unbound the live binding")
	}
	if tok, ok := ix.Lookup(owner, "k"); !ok || tok != 2 {
		t.Errorf("Lookup = %d, %v; want 2, true", tok, ok)
	}
	if !ix.UnbindToken(owner, "k", 2) {
		t.Error("live token failed to unbind")
	}
	if ix.Owners() != 0 {
		t.Errorf("owner kept after its last key was unbound")
	}
}
