package main

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/inkbridge/inkbridge/encoding/strokes"
	"github.com/inkbridge/inkbridge/log"
)

// settle is how long a file must stay quiet before it is converted. Capture
// tools write in several chunks.
const settle = 200 * time.Millisecond

// watch converts drawing files created or rewritten in dir until ctx is
// cancelled. done, if non-nil, receives every outcome.
func (c *converter) watch(ctx context.Context, dir string, done func(Outcome)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	log.Info.Printf("watching %s", dir)

	pending := map[string]time.Time{}
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strokes.IsDrawingFile(ev.Name) {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[ev.Name] = time.Now()
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, ev.Name)
			}

		case now := <-ticker.C:
			for name, last := range pending {
				if now.Sub(last) < settle {
					continue
				}
				delete(pending, name)
				out := c.convertFile(name)
				report(out)
				if done != nil {
					done(out)
				}
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error.Printf("watcher: %v", err)
		}
	}
}
