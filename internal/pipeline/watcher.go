package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/parcelgraph/internal/debug"
)

// Watch runs an fsnotify watcher on the document directory and processes
// each parcel whose document JSON is created or rewritten, until ctx is
// cancelled. Write events are debounced per parcel because extractors
// write documents in several chunks.
func (p *Pipeline) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("pipeline: start watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(p.cfg.DocumentDir); err != nil {
		return fmt.Errorf("pipeline: watch %s: %w", p.cfg.DocumentDir, err)
	}
	fmt.Printf("Watching %s for new documents\n", p.cfg.DocumentDir)

	const settle = 200 * time.Millisecond
	pending := make(map[string]*time.Timer)
	ready := make(chan string)

	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case parcelID := <-ready:
			delete(pending, parcelID)
			res := p.ProcessParcel(ctx, parcelID)
			if res.Err != nil {
				fmt.Printf("  %s: ERROR %v\n", parcelID, res.Err)
				continue
			}
			method := string(res.Method)
			if method == "" {
				method = "unresolved"
			}
			fmt.Printf("  %s: %s (owners=%d sales=%d links=%d)\n",
				parcelID, method, res.Owners, res.Sales, res.Links)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, ".json") {
				continue
			}
			parcelID := strings.TrimSuffix(name, ".json")
			debug.Output(p.cfg.Debug, "watcher event %s for %s", ev.Op, parcelID)
			if t, ok := pending[parcelID]; ok {
				t.Reset(settle)
				continue
			}
			pending[parcelID] = time.AfterFunc(settle, func() {
				select {
				case ready <- parcelID:
				case <-ctx.Done():
				}
			})

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Printf("Watcher error: %v\n", watchErr)
		}
	}
}
