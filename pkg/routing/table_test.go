package routing

import (
	"errors"
	"testing"
)

func TestTableAddAndMatch(t *testing.T) {
	tbl := NewTable()

	if _, err := tbl.Add("/users", "users-handler"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	m, ok := tbl.Match("/users")
	if !ok {
		t.Fatal("expected match for /users")
	}
	if m.Route.Handler != "users-handler" {
		t.Errorf("Handler = %v, want users-handler", m.Route.Handler)
	}
	if len(m.Params) != 0 {
		t.Errorf("Params = %v, want empty", m.Params)
	}
}

func TestTableMatchParams(t *testing.T) {
	tbl := NewTable()

	if _, err := tbl.Add("/users/{id}", "h"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	m, ok := tbl.Match("/users/123")
	if !ok {
		t.Fatal("expected match for /users/123")
	}
	if m.Params["id"] != "123" {
		t.Errorf("params[id] = %q, want %q", m.Params["id"], "123")
	}
}

func TestTableMatchMultipleParams(t *testing.T) {
	tbl := NewTable()

	if _, err := tbl.Add("/rooms/{room}/members/{name}", "h"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	m, ok := tbl.Match("/rooms/lobby/members/alice")
	if !ok {
		t.Fatal("expected match")
	}
	if m.Params["room"] != "lobby" || m.Params["name"] != "alice" {
		t.Errorf("params = %v, want room=lobby name=alice", m.Params)
	}
}

func TestTableFirstRegisteredWins(t *testing.T) {
	tbl := NewTable()

	if _, err := tbl.Add("/items/{id}", "param-handler"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if _, err := tbl.Add("/items/new", "literal-handler"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	// The parameter route registered first takes /items/new, capturing
	// id="new"; the literal route never wins.
	m, ok := tbl.Match("/items/new")
	if !ok {
		t.Fatal("expected match for /items/new")
	}
	if m.Route.Handler != "param-handler" {
		t.Errorf("Handler = %v, want param-handler", m.Route.Handler)
	}
	if m.Params["id"] != "new" {
		t.Errorf("params[id] = %q, want %q", m.Params["id"], "new")
	}
}

func TestTableNoMatch(t *testing.T) {
	tbl := NewTable()

	if _, err := tbl.Add("/users", "h"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if _, ok := tbl.Match("/projects"); ok {
		t.Error("should not match /projects")
	}
}

func TestTableSegmentCountMustBeEqual(t *testing.T) {
	tbl := NewTable()

	if _, err := tbl.Add("/users/{id}", "h"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if _, ok := tbl.Match("/users"); ok {
		t.Error("should not match /users with one fewer segment")
	}
	if _, ok := tbl.Match("/users/1/extra"); ok {
		t.Error("should not match /users/1/extra with one more segment")
	}
}

func TestTableParamCaptureMustBeNonEmpty(t *testing.T) {
	tbl := NewTable()

	if _, err := tbl.Add("/users/{id}", "h"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if _, ok := tbl.Match("/users//"); ok {
		t.Error("should not match an empty parameter segment")
	}
}

func TestTableRootPattern(t *testing.T) {
	tbl := NewTable()

	if _, err := tbl.Add("/", "root"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if _, ok := tbl.Match("/"); !ok {
		t.Error("expected match for /")
	}
	if _, ok := tbl.Match("/anything"); ok {
		t.Error("root pattern must not match subpaths")
	}
}

func TestTableTrailingSlashEquivalence(t *testing.T) {
	tbl := NewTable()

	if _, err := tbl.Add("/users", "h"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if _, ok := tbl.Match("/users/"); !ok {
		t.Error("expected /users/ to match /users")
	}
}

func TestTableMalformedPatterns(t *testing.T) {
	tbl := NewTable()

	for _, pattern := range []string{
		"no-leading-slash",
		"/items/{}",
		"/items/{id",
		"/items/id}",
		"/items/{a}{b}",
		"/items/{id}/{id}",
	} {
		if _, err := tbl.Add(pattern, "h"); err == nil {
			t.Errorf("Add(%q) error = nil, want non-nil", pattern)
		}
	}
}

func TestTableNilHandler(t *testing.T) {
	tbl := NewTable()

	if _, err := tbl.Add("/users", nil); err == nil {
		t.Error("Add() with nil handler should fail")
	}
}

func TestTableDuplicateName(t *testing.T) {
	tbl := NewTable()

	if _, err := tbl.Add("/a", "h", WithName("dup")); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if _, err := tbl.Add("/b", "h", WithName("dup")); err == nil {
		t.Error("duplicate route name should fail")
	}
}

func TestTableFreeze(t *testing.T) {
	tbl := NewTable()

	if _, err := tbl.Add("/users", "h"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	tbl.Freeze()

	if _, err := tbl.Add("/projects", "h"); !errors.Is(err, ErrFrozen) {
		t.Errorf("Add() after Freeze error = %v, want ErrFrozen", err)
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tbl.Len())
	}
	if _, ok := tbl.Match("/users"); !ok {
		t.Error("frozen table must still match")
	}
}

func TestTablesMatchIndependentlyPerKind(t *testing.T) {
	// Two tables with the identical pattern string extract identical
	// parameters for the same concrete path.
	requests := NewTable()
	sessions := NewTable()

	if _, err := requests.Add("/rooms/{room}", "request-handler"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if _, err := sessions.Add("/rooms/{room}", "session-handler"); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	rm, ok := requests.Match("/rooms/lobby")
	if !ok {
		t.Fatal("expected request-kind match")
	}
	sm, ok := sessions.Match("/rooms/lobby")
	if !ok {
		t.Fatal("expected session-kind match")
	}
	if rm.Params["room"] != sm.Params["room"] {
		t.Errorf("param extraction differs across kinds: %q vs %q",
			rm.Params["room"], sm.Params["room"])
	}
}
