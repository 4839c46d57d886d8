package backend

import (
	"context"
	"go/parser"
	"go/token"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestBundleOpenPublishes(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	bundle := NewBundle(NewDatasource(nil, time.UTC), NewFeed(ctx, nil))
	sessions := bundle.Feed.Sessions(ctx)
	bundle.Open("picked.json", io.NopCloser(strings.NewReader("["+validBlock+"]")))
	select {
	case s := <-sessions:
		if s.Err != nil || len(s.Blocks) != 1 || s.Source != "picked.json" {
			t.Errorf("expected one block from picked.json, got %d from %q (%v)", len(s.Blocks), s.Source, s.Err)
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for published session")
	}
}

// TestHeadlessPackagesAvoidWindowing guards the packages used by the
// headless renderer against depending on Gio's window drivers, which need
// cgo system libraries to build.
func TestHeadlessPackagesAvoidWindowing(t *testing.T) {
	forbidden := []string{"gioui.org/app", "gioui.org/x/explorer", "git.sr.ht/~gioverse/skel"}
	for _, dir := range []string{".", "../chart", "../config", "../raster", "../cmd/spanchart-render"} {
		files, err := filepath.Glob(filepath.Join(dir, "*.go"))
		if err != nil {
			t.Fatal(err)
		}
		if len(files) == 0 {
			t.Errorf("expected go files in %s", dir)
		}
		for _, file := range files {
			f, err := parser.ParseFile(token.NewFileSet(), file, nil, parser.ImportsOnly)
			if err != nil {
				t.Fatalf("failed parsing %s: %v", file, err)
			}
			for _, imp := range f.Imports {
				path, _ := strconv.Unquote(imp.Path.Value)
				for _, prefix := range forbidden {
					if strings.HasPrefix(path, prefix) {
						t.Errorf("expected %s not to import %s", file, path)
					}
				}
			}
		}
	}
}
