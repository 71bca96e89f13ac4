package livereload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	return conn
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	a := dial(t, srv)
	defer a.Close()
	b := dial(t, srv)
	defer b.Close()
	waitFor(t, "two subscribers", func() bool { return hub.Subscribers() == 2 })

	if n := hub.Broadcast(Event{Type: "reload", Path: "pages/a.html"}); n != 2 {
		t.Errorf("expected 2 deliveries, got %d", n)
	}

	for _, conn := range []*websocket.Conn{a, b} {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("read event: %v", err)
		}
		if ev.Type != "reload" || ev.Path != "pages/a.html" {
			t.Errorf("unexpected event %+v", ev)
		}
	}
}

func TestHub_ClientLeaves(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	waitFor(t, "subscriber", func() bool { return hub.Subscribers() == 1 })
	conn.Close()
	waitFor(t, "subscriber to leave", func() bool { return hub.Subscribers() == 0 })
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	hub := NewHub(nil)
	_, ch, _ := hub.add()
	for i := 0; i < sendBuffer; i++ {
		if n := hub.Broadcast(Event{Type: "reload"}); n != 1 {
			t.Fatalf("broadcast %d: expected 1 delivery, got %d", i, n)
		}
	}
	if n := hub.Broadcast(Event{Type: "reload"}); n != 0 {
		t.Errorf("expected full subscriber to be skipped, got %d", n)
	}
	if hub.Subscribers() != 0 {
		t.Errorf("expected slow subscriber dropped, got %d", hub.Subscribers())
	}
	for range ch {
	}
}

func TestHub_RefusesSubscribersAfterClose(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	waitFor(t, "subscriber", func() bool { return hub.Subscribers() == 1 })

	hub.Close()
	if hub.Subscribers() != 0 || !hub.Closed() {
		t.Fatalf("expected a closed, empty hub, got %d subscribers", hub.Subscribers())
	}

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	late, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		late.Close()
		t.Fatal("expected the upgrade to be refused after Close")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503 after Close, got %v", resp)
	}
	if _, _, ok := hub.add(); ok {
		t.Error("expected add to fail after Close")
	}
}

func TestNotify_ReloadsManifestsFirst(t *testing.T) {
	hub := NewHub(nil)
	_, ch, _ := hub.add()

	reloaded := 0
	notify := Notify(hub, func(context.Context) { reloaded++ })

	notify(context.Background(), Change{Paths: []string{"pages/a.html"}})
	notify(context.Background(), Change{Paths: []string{"assets/sections.json"}, Manifest: true})

	if reloaded != 1 {
		t.Errorf("expected one manifest reload, got %d", reloaded)
	}
	first, second := <-ch, <-ch
	if first.Manifest || first.Path != "pages/a.html" {
		t.Errorf("unexpected first event %+v", first)
	}
	if !second.Manifest || second.Path != "assets/sections.json" {
		t.Errorf("unexpected second event %+v", second)
	}
}

func TestWatcher_DebouncedChange(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "assets"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	w, err := NewWatcher(root, WatchOptions{
		Ignore:    []string{"**/*.swp"},
		Debounce:  50 * time.Millisecond,
		Manifests: []string{"assets/sections.json"},
	}, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan Change, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, c Change) { changes <- c })
	}()

	write := func(rel, content string) {
		if err := os.WriteFile(filepath.Join(root, rel), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	write("assets/.sections.json.swp", "x")
	write("assets/sections.json", "[]")
	write("assets/sections.json", "[ ]")

	select {
	case c := <-changes:
		if !c.Manifest {
			t.Errorf("expected a manifest change, got %+v", c)
		}
		if len(c.Paths) != 1 || c.Paths[0] != "assets/sections.json" {
			t.Errorf("expected swap file ignored and writes batched, got %v", c.Paths)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
}
