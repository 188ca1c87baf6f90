package app

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dkeye/dronerelay/internal/core"
	"github.com/dkeye/dronerelay/internal/domain"
)

var errQueueFull = errors.New("queue full")

type fakeConn struct {
	mu     sync.Mutex
	got    []core.Message
	fail   bool
	closed bool
}

func (c *fakeConn) TrySend(m core.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("closed")
	}
	if c.fail {
		return errQueueFull
	}
	c.got = append(c.got, m)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeConn) messages() []core.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.Message(nil), c.got...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func addSession(r *Registry, sid string) *fakeConn {
	conn := &fakeConn{}
	r.Add(core.SessionID(sid), core.NewMemberSession(domain.NewClient("tok-"+sid, "127.0.0.1"), conn))
	return conn
}

func TestRegistryBroadcastReachesEverySession(t *testing.T) {
	r := NewRegistry(SimplePolicy{}, nil)
	a := addSession(r, "a")
	b := addSession(r, "b")

	res := r.Broadcast(core.NewTextMessage([]byte("hello")))
	if res.SendTo != 2 || len(res.Dropped) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	for name, c := range map[string]*fakeConn{"a": a, "b": b} {
		msgs := c.messages()
		if len(msgs) != 1 || string(msgs[0].Data) != "hello" || msgs[0].Kind != core.TextMessage {
			t.Fatalf("session %s got %+v", name, msgs)
		}
	}
}

func TestRegistryBroadcastEmpty(t *testing.T) {
	r := NewRegistry(nil, nil)
	res := r.Broadcast(core.NewBinaryMessage([]byte{1, 2, 3}))
	if res.SendTo != 0 || len(res.Dropped) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRegistryKicksFailingSession(t *testing.T) {
	r := NewRegistry(SimplePolicy{}, nil)
	good := addSession(r, "good")
	bad := addSession(r, "bad")
	bad.fail = true

	res := r.Broadcast(core.NewTextMessage([]byte("x")))
	if res.SendTo != 1 {
		t.Fatalf("expected 1 delivery, got %d", res.SendTo)
	}
	if len(res.Dropped) != 1 || res.Dropped[0] != "bad" {
		t.Fatalf("expected bad to be dropped, got %v", res.Dropped)
	}
	if _, ok := r.Get("bad"); ok {
		t.Fatalf("failing session must be removed")
	}
	if !bad.isClosed() {
		t.Fatalf("failing session must be closed")
	}
	if r.Count() != 1 {
		t.Fatalf("expected 1 session left, got %d", r.Count())
	}

	r.Broadcast(core.NewTextMessage([]byte("y")))
	if n := len(good.messages()); n != 2 {
		t.Fatalf("healthy session expected 2 messages, got %d", n)
	}
}

type keepPolicy struct{}

func (keepPolicy) OnDeliveryFailure(core.SessionID, error) BackpressureAction { return NoAction }

func TestRegistryNoActionPolicyKeepsSession(t *testing.T) {
	r := NewRegistry(keepPolicy{}, nil)
	bad := addSession(r, "bad")
	bad.fail = true

	res := r.Broadcast(core.NewTextMessage([]byte("x")))
	if len(res.Dropped) != 1 {
		t.Fatalf("expected one failed delivery, got %v", res.Dropped)
	}
	if _, ok := r.Get("bad"); !ok {
		t.Fatalf("session must stay registered with NoAction")
	}
	if bad.isClosed() {
		t.Fatalf("session must not be closed with NoAction")
	}
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	r := NewRegistry(nil, nil)
	addSession(r, "a")

	if !r.Remove("a") {
		t.Fatalf("first remove should report true")
	}
	if r.Remove("a") {
		t.Fatalf("second remove should report false")
	}
	if r.Remove("never-added") {
		t.Fatalf("removing unknown sid should report false")
	}
	if r.Count() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Count())
	}
}

func TestRegistryNoDeliveryAfterRemove(t *testing.T) {
	r := NewRegistry(nil, nil)
	a := addSession(r, "a")
	r.Broadcast(core.NewTextMessage([]byte("before")))
	r.Remove("a")
	r.Broadcast(core.NewTextMessage([]byte("after")))

	msgs := a.messages()
	if len(msgs) != 1 || string(msgs[0].Data) != "before" {
		t.Fatalf("removed session got %+v", msgs)
	}
}

func TestRegistryKickDoesNotRemoveReplacement(t *testing.T) {
	r := NewRegistry(SimplePolicy{}, nil)
	old := &fakeConn{fail: true}
	oldSess := core.NewMemberSession(domain.NewClient("t", ""), old)
	r.Add("a", oldSess)
	fresh := addSession(r, "a")

	if r.removeIf("a", oldSess) {
		t.Fatalf("removeIf must not remove a replaced session")
	}
	r.Broadcast(core.NewTextMessage([]byte("x")))
	if len(fresh.messages()) != 1 {
		t.Fatalf("replacement session should receive the broadcast")
	}
}

func TestRegistryConcurrentUse(t *testing.T) {
	r := NewRegistry(SimplePolicy{}, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sid := fmt.Sprintf("s-%d-%d", i, j)
				addSession(r, sid)
				r.Broadcast(core.NewTextMessage([]byte(sid)))
				r.Remove(core.SessionID(sid))
			}
		}(i)
	}
	wg.Wait()
	if r.Count() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Count())
	}
}
