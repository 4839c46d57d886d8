package backend

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func compactBlock() string {
	return strings.Join(strings.Fields(validBlock), "")
}

func TestDatasourceLoad(t *testing.T) {
	memfs := afero.NewMemMapFs()
	if err := afero.WriteFile(memfs, "/data/chart.json", []byte("["+validBlock+"]"), 0o644); err != nil {
		t.Fatal(err)
	}
	d := NewDatasource(memfs, time.UTC)
	session := d.Load("/data/chart.json")
	if session.Err != nil {
		t.Fatalf("expected load to succeed, got: %v", session.Err)
	}
	if len(session.Blocks) != 1 {
		t.Errorf("expected 1 block, got %d", len(session.Blocks))
	}
	if session.ID == "" || session.Source != "/data/chart.json" {
		t.Errorf("unexpected session identity %q %q", session.ID, session.Source)
	}

	missing := d.Load("/data/absent.json")
	if !errors.Is(missing.Err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got: %v", missing.Err)
	}
}

func TestDatasourceWatchMemFs(t *testing.T) {
	memfs := afero.NewMemMapFs()
	if err := afero.WriteFile(memfs, "chart.json", []byte("["+validBlock+"]"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	sessions := NewDatasource(memfs, nil).Watch(ctx, "chart.json")
	first, ok := <-sessions
	if !ok || first.Err != nil || len(first.Blocks) != 1 {
		t.Fatalf("expected initial session, got %+v", first)
	}
	if _, ok := <-sessions; ok {
		t.Errorf("expected channel to close without an OS filesystem to watch")
	}
}

func TestDatasourceStream(t *testing.T) {
	input := strings.Join([]string{
		compactBlock(),
		"",
		`{"columns":[["y0",1]],"types":{"y0":"line"}}`,
		"[" + compactBlock() + "," + compactBlock() + "]",
		compactBlock(), // unterminated, parsed at EOF
	}, "\n")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var got []Session
	for s := range NewDatasource(nil, nil).Stream(ctx, strings.NewReader(input)) {
		got = append(got, s)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 sessions, got %d", len(got))
	}
	if got[0].Err != nil || len(got[0].Blocks) != 1 {
		t.Errorf("expected first session to hold one block, got %d (%v)", len(got[0].Blocks), got[0].Err)
	}
	if !errors.Is(got[1].Err, ErrMissingTimeAxis) || len(got[1].Blocks) != 1 {
		t.Errorf("expected malformed line to be reported without adding blocks, got %d (%v)", len(got[1].Blocks), got[1].Err)
	}
	if got[2].Err != nil || len(got[2].Blocks) != 3 {
		t.Errorf("expected three accumulated blocks, got %d (%v)", len(got[2].Blocks), got[2].Err)
	}
	if got[3].Err != nil || len(got[3].Blocks) != 4 {
		t.Errorf("expected the unterminated last line to add a block, got %d (%v)", len(got[3].Blocks), got[3].Err)
	}
	if got[0].ID != got[3].ID || got[0].Source != "stream" {
		t.Errorf("expected one stream session, got ids %q %q source %q", got[0].ID, got[3].ID, got[0].Source)
	}
}

func TestDatasourceStreamUnterminatedOnly(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var got []Session
	for s := range NewDatasource(nil, nil).Stream(ctx, strings.NewReader(compactBlock())) {
		got = append(got, s)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 session, got %d", len(got))
	}
	if got[0].Err != nil || len(got[0].Blocks) != 1 {
		t.Errorf("expected one block, got %d (%v)", len(got[0].Blocks), got[0].Err)
	}
}

func TestDatasourceStreamMalformedLastLine(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var got []Session
	for s := range NewDatasource(nil, nil).Stream(ctx, strings.NewReader(compactBlock()+"\n{")) {
		got = append(got, s)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(got))
	}
	if got[1].Err == nil || len(got[1].Blocks) != 1 {
		t.Errorf("expected the truncated line to be reported, got %d (%v)", len(got[1].Blocks), got[1].Err)
	}
}

// receiveUntil reads sessions until one satisfies done, calling poke every
// 50ms while waiting.
func receiveUntil(t *testing.T, ctx context.Context, sessions <-chan Session, poke func(), done func(Session) bool) Session {
	t.Helper()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			t.Fatalf("timed out waiting for session: %v", ctx.Err())
		case s, ok := <-sessions:
			if !ok {
				t.Fatalf("expected session, channel closed")
			}
			if done(s) {
				return s
			}
		case <-ticker.C:
			if poke != nil {
				poke()
			}
		}
	}
}

func TestDatasourceWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.json")
	if err := os.WriteFile(path, []byte("["+validBlock+"]"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sessions := NewDatasource(afero.NewOsFs(), time.UTC).Watch(ctx, path)
	first := receiveUntil(t, ctx, sessions, nil, func(Session) bool { return true })
	if first.Err != nil || len(first.Blocks) != 1 {
		t.Fatalf("expected initial session with one block, got %d (%v)", len(first.Blocks), first.Err)
	}

	// The watcher is registered after the first send, so keep rewriting until
	// a reload is observed.
	rewrite := func() {
		if err := os.WriteFile(path, []byte("["+validBlock+","+validBlock+"]"), 0o644); err != nil {
			t.Errorf("failed rewriting %q: %v", path, err)
		}
	}
	rewrite()
	reloaded := receiveUntil(t, ctx, sessions, rewrite, func(s Session) bool {
		return s.Err == nil && len(s.Blocks) == 2
	})
	if reloaded.ID == "" || reloaded.Source != path {
		t.Errorf("unexpected session identity %q %q", reloaded.ID, reloaded.Source)
	}

	cancel()
	for range sessions {
	}
}

func TestDatasourceStreamFollowsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.ndjson")
	if err := os.WriteFile(path, []byte(compactBlock()+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sessions := NewDatasource(nil, time.UTC).Stream(ctx, f)
	first := receiveUntil(t, ctx, sessions, nil, func(Session) bool { return true })
	if first.Err != nil || len(first.Blocks) != 1 || first.Source != path {
		t.Fatalf("expected one block from %q, got %d from %q (%v)", path, len(first.Blocks), first.Source, first.Err)
	}

	w, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	// Split the line across writes: nothing is parsed until the newline lands.
	half := len(compactBlock()) / 2
	if _, err := w.WriteString(compactBlock()[:half]); err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteString(compactBlock()[half:] + "\n"); err != nil {
		t.Fatal(err)
	}
	second := receiveUntil(t, ctx, sessions, nil, func(Session) bool { return true })
	if second.Err != nil || len(second.Blocks) != 2 {
		t.Errorf("expected appended line to add a block, got %d (%v)", len(second.Blocks), second.Err)
	}

	cancel()
	for range sessions {
	}
}

func TestFeedReplaysLatest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	src := make(chan Session)
	feed := NewFeed(ctx, src)
	if _, ok := feed.Latest(); ok {
		t.Errorf("expected empty feed")
	}
	src <- Session{ID: "a"}
	src <- Session{ID: "b"}
	// An unbuffered send of "c" only completes once "b" is published.
	src <- Session{ID: "c"}

	sub := feed.Sessions(ctx)
	first := <-sub
	if first.ID != "b" && first.ID != "c" {
		t.Errorf("expected a recent session, got %q", first.ID)
	}
	for first.ID != "c" {
		first = <-sub
	}
	src <- Session{ID: "d"}
	if next := <-sub; next.ID != "d" {
		t.Errorf("expected %q, got %q", "d", next.ID)
	}
	if latest, ok := feed.Latest(); !ok || latest.ID != "d" {
		t.Errorf("expected latest %q, got %q", "d", latest.ID)
	}
}

func TestFeedUnsubscribesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	feed := NewFeed(ctx, make(chan Session))
	subCtx, subCancel := context.WithCancel(ctx)
	sub := feed.Sessions(subCtx)
	subCancel()
	for range sub {
	}
	feed.lock.Lock()
	defer feed.lock.Unlock()
	if len(feed.subs) != 0 {
		t.Errorf("expected subscription to be removed, %d remain", len(feed.subs))
	}
}
