package channel

import (
	"context"
	"errors"
	"testing"
)

type fakeChannel struct {
	id  string
	err error
}

func (f *fakeChannel) Send(ctx context.Context, message any) error {
	return f.err
}

func TestAttachRejectsProvisionalID(t *testing.T) {
	r := NewRegistry()
	_, err := r.Attach("TEMP-abc", &fakeChannel{})
	if err == nil {
		t.Fatal("expected error attaching a provisional id")
	}
}

func TestAttachFreshThenReplaced(t *testing.T) {
	r := NewRegistry()
	a := &fakeChannel{id: "a"}
	b := &fakeChannel{id: "b"}

	result, err := r.Attach("S-ABC-123", a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != AttachFresh {
		t.Errorf("first attach = %v, want AttachFresh", result)
	}

	result, err = r.Attach("S-ABC-123", b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != AttachReplaced {
		t.Errorf("second attach = %v, want AttachReplaced", result)
	}
}

func TestSendNoChannel(t *testing.T) {
	r := NewRegistry()
	if got := r.Send(context.Background(), "S-ABC-123", "hi"); got != SendNoChannel {
		t.Errorf("Send() = %v, want SendNoChannel", got)
	}
}

func TestSendDeliveredAndFailed(t *testing.T) {
	r := NewRegistry()
	ok := &fakeChannel{}
	if _, err := r.Attach("S-ABC-123", ok); err != nil {
		t.Fatal(err)
	}
	if got := r.Send(context.Background(), "S-ABC-123", "hi"); got != SendDelivered {
		t.Errorf("Send() = %v, want SendDelivered", got)
	}

	failing := &fakeChannel{err: errors.New("broken pipe")}
	if _, err := r.Attach("S-DEF-456", failing); err != nil {
		t.Fatal(err)
	}
	if got := r.Send(context.Background(), "S-DEF-456", "hi"); got != SendFailed {
		t.Errorf("Send() = %v, want SendFailed", got)
	}
}

func TestHasReflectsCurrentAttachment(t *testing.T) {
	r := NewRegistry()
	if r.Has("S-ABC-123") {
		t.Error("Has() = true before attach, want false")
	}

	ch := &fakeChannel{}
	if _, err := r.Attach("S-ABC-123", ch); err != nil {
		t.Fatal(err)
	}
	if !r.Has("S-ABC-123") {
		t.Error("Has() = false after attach, want true")
	}

	r.Detach("S-ABC-123", ch)
	if r.Has("S-ABC-123") {
		t.Error("Has() = true after detach, want false")
	}
}

func TestDetachOnlyRemovesIdenticalChannel(t *testing.T) {
	r := NewRegistry()
	a := &fakeChannel{id: "a"}
	b := &fakeChannel{id: "b"}

	if _, err := r.Attach("S-ABC-123", a); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Attach("S-ABC-123", b); err != nil {
		t.Fatal(err)
	}

	// a is stale; detaching it must not evict b.
	r.Detach("S-ABC-123", a)
	if got := r.Send(context.Background(), "S-ABC-123", "hi"); got != SendDelivered {
		t.Errorf("expected b still registered after stale detach of a, got %v", got)
	}

	r.Detach("S-ABC-123", b)
	if got := r.Send(context.Background(), "S-ABC-123", "hi"); got != SendNoChannel {
		t.Errorf("expected no channel after detaching the live one, got %v", got)
	}
}
