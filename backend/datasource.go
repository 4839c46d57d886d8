package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// Session is the result of loading chart data from one source.
type Session struct {
	ID     string
	Source string
	Blocks []*Block
	Err    error
}

// Datasource loads chart blocks from files and streams.
type Datasource struct {
	fs  afero.Fs
	loc *time.Location
}

// NewDatasource creates a datasource reading files from fs and labelling
// timestamps in loc. A nil fs means the OS filesystem.
func NewDatasource(fs afero.Fs, loc *time.Location) *Datasource {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Datasource{fs: fs, loc: loc}
}

func generateSessionID() string {
	return strings.Replace(time.Now().UTC().Format("20060102150405.000000000"), ".", "", 1)
}

// Load reads and parses the JSON block array stored at path.
func (d *Datasource) Load(path string) Session {
	f, err := d.fs.Open(path)
	if err != nil {
		return Session{ID: generateSessionID(), Source: path, Err: fmt.Errorf("failed opening %q: %w", path, err)}
	}
	defer f.Close()
	return d.Read(path, f)
}

// Read parses a JSON block array from r. The source name is informational.
func (d *Datasource) Read(source string, r io.Reader) Session {
	session := Session{ID: generateSessionID(), Source: source}
	session.Blocks, session.Err = Parse(r, d.loc)
	return session
}

// Watch emits the session loaded from path, then a freshly loaded session each
// time the file is written or recreated. The channel closes when ctx is done.
// Watching requires the OS filesystem; on other filesystems only the initial
// load is emitted.
func (d *Datasource) Watch(ctx context.Context, path string) <-chan Session {
	out := make(chan Session, 1)
	go func() {
		defer close(out)
		if !send(ctx, out, d.Load(path)) {
			return
		}
		if _, ok := d.fs.(*afero.OsFs); !ok {
			return
		}
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			log.Printf("failed creating file watcher: %v", err)
			return
		}
		defer watcher.Close()
		// Watch the directory so that editors replacing the file are noticed.
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			log.Printf("failed watching %q: %v", path, err)
			return
		}
		target := filepath.Clean(path)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				if !send(ctx, out, d.Load(path)) {
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("file watcher error: %v", err)
			}
		}
	}()
	return out
}

// Stream reads newline-delimited blocks from r (each line holding one block
// object or an array of them) and emits the accumulated session after every
// line. If r is a regular file, reaching its end waits for further writes
// instead of finishing; otherwise an unterminated final line is parsed at EOF.
// A malformed line is reported in the session's Err and contributes no blocks.
func (d *Datasource) Stream(ctx context.Context, r io.Reader) <-chan Session {
	out := make(chan Session, 1)
	go func() {
		defer close(out)
		session := Session{ID: generateSessionID(), Source: sourceName(r)}
		writes, stop := watchWrites(r)
		defer stop()
		lines := NewLineReader(r)
		scratch := make([]byte, 32*1024)
		lineNo := 0
		handle := func(line []byte) bool {
			lineNo++
			if len(strings.TrimSpace(string(line))) == 0 {
				return true
			}
			blocks, err := parseLine(len(session.Blocks), line, d.loc)
			if err != nil {
				session.Err = fmt.Errorf("line %d: %w", lineNo, err)
			} else {
				session.Err = nil
				session.Blocks = append(session.Blocks[:len(session.Blocks):len(session.Blocks)], blocks...)
			}
			return send(ctx, out, session)
		}
		for {
			line, err := lines.readLine(scratch)
			if err == nil {
				if !handle(line) {
					return
				}
				continue
			}
			if errors.Is(err, io.EOF) && writes != nil {
				select {
				case <-ctx.Done():
					return
				case _, ok := <-writes:
					if ok {
						continue
					}
				}
			}
			if errors.Is(err, io.EOF) {
				if rest := lines.rest(); len(rest) > 0 {
					handle(rest)
				}
				return
			}
			session.Err = fmt.Errorf("failed reading %s: %w", session.Source, err)
			send(ctx, out, session)
			return
		}
	}()
	return out
}

func sourceName(r io.Reader) string {
	if f, ok := r.(interface{ Name() string }); ok {
		return f.Name()
	}
	return "stream"
}

// watchWrites returns a channel signalled whenever r, if it is a regular file,
// is written to. For any other reader the channel is nil.
func watchWrites(r io.Reader) (<-chan struct{}, func()) {
	f, ok := r.(*os.File)
	if !ok {
		return nil, func() {}
	}
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return nil, func() {}
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("failed creating file watcher: %v", err)
		return nil, func() {}
	}
	if err := watcher.Add(f.Name()); err != nil {
		log.Printf("failed watching %q: %v", f.Name(), err)
		watcher.Close()
		return nil, func() {}
	}
	writes := make(chan struct{}, 1)
	go func() {
		defer close(writes)
		for ev := range watcher.Events {
			if !ev.Has(fsnotify.Write) {
				continue
			}
			select {
			case writes <- struct{}{}:
			default:
			}
		}
	}()
	return writes, func() { watcher.Close() }
}

func send(ctx context.Context, out chan<- Session, s Session) bool {
	select {
	case out <- s:
		return true
	case <-ctx.Done():
		return false
	}
}

// Feed retains the latest session from a source so that any number of
// subscribers, arriving at any time, start from the current state.
type Feed struct {
	lock   sync.Mutex
	latest Session
	has    bool
	subs   map[chan Session]struct{}
}

// NewFeed consumes src until it closes or ctx is done.
func NewFeed(ctx context.Context, src <-chan Session) *Feed {
	f := &Feed{subs: make(map[chan Session]struct{})}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-src:
				if !ok {
					return
				}
				f.Publish(s)
			}
		}
	}()
	return f
}

// Publish makes s the latest session and hands it to every subscriber.
func (f *Feed) Publish(s Session) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.latest = s
	f.has = true
	for sub := range f.subs {
		offer(sub, s)
	}
}

// offer replaces any unread value in the single-slot channel with s.
func offer(sub chan Session, s Session) {
	select {
	case <-sub:
	default:
	}
	sub <- s
}

// Latest returns the most recent session, if any has arrived.
func (f *Feed) Latest() (Session, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.latest, f.has
}

// Sessions subscribes to the feed. The returned channel yields the current
// session (if any) followed by every newer one, coalescing sessions the
// reader has not caught up with. It closes when ctx is done.
func (f *Feed) Sessions(ctx context.Context) <-chan Session {
	sub := make(chan Session, 1)
	out := make(chan Session)
	f.lock.Lock()
	f.subs[sub] = struct{}{}
	if f.has {
		sub <- f.latest
	}
	f.lock.Unlock()
	go func() {
		defer close(out)
		defer func() {
			f.lock.Lock()
			delete(f.subs, sub)
			f.lock.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-sub:
				select {
				case out <- s:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
