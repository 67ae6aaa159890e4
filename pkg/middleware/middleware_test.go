package middleware

import (
	"errors"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/schnitzelbub/bocadillo/pkg/server"
)

func testConn(t *testing.T) server.Conn {
	t.Helper()
	r := httptest.NewRequest("GET", "/test", nil)
	return server.NewRequestCtx(httptest.NewRecorder(), r, nil)
}

// recorder appends a label on entry and exit so tests can assert ordering.
func recorder(calls *[]string, label string) Middleware {
	return Func(func(conn server.Conn, next func() error) error {
		*calls = append(*calls, label+".pre")
		err := next()
		*calls = append(*calls, label+".post")
		return err
	})
}

func TestRunOrder(t *testing.T) {
	var calls []string

	ran, err := Run(testConn(t), []Middleware{
		recorder(&calls, "a"),
		recorder(&calls, "b"),
	}, func() error {
		calls = append(calls, "terminal")
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !ran {
		t.Error("ranTerminal = false, want true")
	}

	want := []string{"a.pre", "b.pre", "terminal", "b.post", "a.post"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("call order = %v, want %v", calls, want)
	}
}

func TestRunShortCircuit(t *testing.T) {
	var calls []string

	ran, err := Run(testConn(t), []Middleware{
		recorder(&calls, "a"),
		Func(func(conn server.Conn, next func() error) error {
			calls = append(calls, "b.stop")
			return nil // do not call next
		}),
		recorder(&calls, "c"),
	}, func() error {
		calls = append(calls, "terminal")
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if ran {
		t.Error("ranTerminal = true after short-circuit, want false")
	}

	want := []string{"a.pre", "b.stop", "a.post"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("call order = %v, want %v", calls, want)
	}
}

func TestRunMiddlewareError(t *testing.T) {
	var calls []string
	boom := errors.New("boom")

	ran, err := Run(testConn(t), []Middleware{
		recorder(&calls, "a"),
		Func(func(conn server.Conn, next func() error) error {
			return boom
		}),
	}, func() error {
		calls = append(calls, "terminal")
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want boom", err)
	}
	if ran {
		t.Error("ranTerminal = true, want false")
	}

	want := []string{"a.pre", "a.post"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("call order = %v, want %v", calls, want)
	}
}

func TestRunTerminalErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	var sawErr error

	ran, err := Run(testConn(t), []Middleware{
		Func(func(conn server.Conn, next func() error) error {
			sawErr = next()
			return sawErr
		}),
	}, func() error {
		return boom
	})
	if !ran {
		t.Error("ranTerminal = false, want true")
	}
	if !errors.Is(err, boom) || !errors.Is(sawErr, boom) {
		t.Errorf("error did not travel outward through the chain: %v / %v", err, sawErr)
	}
}

func TestRunNoEntries(t *testing.T) {
	ran, err := Run(testConn(t), nil, func() error { return nil })
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !ran {
		t.Error("ranTerminal = false, want true")
	}
}

func TestRunNilEntriesSkipped(t *testing.T) {
	var calls []string

	ran, err := Run(testConn(t), []Middleware{
		nil,
		recorder(&calls, "a"),
		nil,
	}, func() error {
		calls = append(calls, "terminal")
		return nil
	})
	if err != nil || !ran {
		t.Fatalf("Run() = %v, %v", ran, err)
	}

	want := []string{"a.pre", "terminal", "a.post"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("call order = %v, want %v", calls, want)
	}
}

func TestChainPreservesOrder(t *testing.T) {
	var calls []string

	combined := Chain(
		recorder(&calls, "a"),
		recorder(&calls, "b"),
	)

	_, err := Run(testConn(t), []Middleware{combined}, func() error {
		calls = append(calls, "terminal")
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := []string{"a.pre", "b.pre", "terminal", "b.post", "a.post"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("call order = %v, want %v", calls, want)
	}
}
