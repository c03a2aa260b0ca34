package theory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// LoadDir publishes every *.json manifest found directly in dir, returning
// the number published.
func LoadDir(reg *Registry, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	count := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())

		if err := publishFile(reg, path); err != nil {
			return count, err
		}

		count++
	}

	return count, nil
}

func publishFile(reg *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	m, err := DecodeManifest(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	_, err = reg.Publish(m)

	return err
}

// Event reports a manifest republished by the watcher.
type Event struct {
	Path     string
	Manifest TheoryManifest
	CID      CID
}

// Watcher republishes manifests into a registry as their files change,
// using OS-native notifications.
type Watcher struct {
	w   *fsnotify.Watcher
	reg *Registry
	evC chan Event
	erC chan error
}

// NewWatcher watches dir for created or rewritten *.json manifests.
func NewWatcher(reg *Registry, dir string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(dir); err != nil {
		w.Close()

		return nil, err
	}

	tw := &Watcher{w: w, reg: reg, evC: make(chan Event, 128), erC: make(chan error, 1)}
	go tw.loop()

	return tw, nil
}

func (tw *Watcher) loop() {
	for {
		select {
		case ev, ok := <-tw.w.Events:
			if !ok {
				return
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !strings.HasSuffix(ev.Name, ".json") {
				continue
			}

			data, err := os.ReadFile(ev.Name)
			if err != nil {
				tw.report(err)

				continue
			}

			m, err := DecodeManifest(data)
			if err != nil {
				tw.report(err)

				continue
			}

			cid, err := tw.reg.Publish(m)
			if err != nil {
				tw.report(err)

				continue
			}

			tw.evC <- Event{Path: ev.Name, Manifest: m, CID: cid}
		case err, ok := <-tw.w.Errors:
			if !ok {
				return
			}

			tw.report(err)
		}
	}
}

// report delivers an error without blocking the loop.
func (tw *Watcher) report(err error) {
	select {
	case tw.erC <- err:
	default:
	}
}

// Events returns republished-manifest notifications.
func (tw *Watcher) Events() <-chan Event { return tw.evC }

// Errors returns watcher and decode failures.
func (tw *Watcher) Errors() <-chan error { return tw.erC }

// Close stops the watcher.
func (tw *Watcher) Close() error { return tw.w.Close() }
