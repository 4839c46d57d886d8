package backend

import (
	"io"
	"log"
)

// Bundle groups the long-lived services shared by every window.
type Bundle struct {
	Datasource *Datasource
	Feed       *Feed
}

func NewBundle(ds *Datasource, feed *Feed) Bundle {
	return Bundle{
		Datasource: ds,
		Feed:       feed,
	}
}

// Open parses the block array in r in the background and publishes the
// resulting session to the feed. It closes r.
func (b Bundle) Open(name string, r io.ReadCloser) {
	go func() {
		defer r.Close()
		s := b.Datasource.Read(name, r)
		if s.Err != nil {
			log.Printf("failed loading %s: %v", name, s.Err)
		}
		b.Feed.Publish(s)
	}()
}
