// Copyright 2026 Supabase, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package catalog

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// Watcher reloads a Catalog from its YAML file whenever the file changes.
// A file that fails to load is logged and the previous content is kept.
type Watcher struct {
	catalog *Catalog
	fs      afero.Fs
	path    string
	install func(*Snapshot) error
	logger  *slog.Logger

	watcher   *fsnotify.Watcher
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// Watch loads path into cat and keeps it current until Close.
//
// install, if not nil, runs on every parsed snapshot before its relations
// replace the catalog's, including the first one. It installs whatever else
// the snapshot carries; an error rejects the snapshot and the catalog keeps
// its previous content. An error on the first load is returned.
func Watch(cat *Catalog, fs afero.Fs, path string, install func(*Snapshot) error, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	path = filepath.Clean(path)
	w := &Watcher{
		catalog: cat,
		fs:      fs,
		path:    path,
		install: install,
		logger:  logger,
		done:    make(chan struct{}),
	}
	if err := w.reload(true); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory: editors and config management replace the file
	// rather than writing it in place.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	w.watcher = fw

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := w.reload(false); err != nil {
				w.logger.Warn("catalog reload failed, keeping previous catalog", "path", w.path, "error", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) reload(initial bool) error {
	data, err := afero.ReadFile(w.fs, w.path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file %s: %w", w.path, err)
	}
	// Truncate-then-write shows up as a write event on an empty file.
	if len(data) == 0 && !initial {
		w.logger.Debug("catalog file is empty, waiting for content", "path", w.path)
		return nil
	}
	snap, err := ParseSnapshot(data)
	if err != nil {
		return fmt.Errorf("failed to load catalog file %s: %w", w.path, err)
	}
	if w.install != nil {
		if err := w.install(snap); err != nil {
			return fmt.Errorf("failed to install catalog %s: %w", w.path, err)
		}
	}
	// Relations were validated by ParseSnapshot, so this does not fail after
	// install has run.
	if err := w.catalog.Replace(snap.Relations); err != nil {
		return fmt.Errorf("invalid catalog %s: %w", w.path, err)
	}
	w.logger.Info("catalog loaded", "path", w.path, "relations", len(snap.Relations), "domains", len(snap.Domains))
	return nil
}

// Close stops watching and waits for the reload goroutine to exit. Calls
// after the first return its result.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.closeErr = w.watcher.Close()
		w.wg.Wait()
	})
	return w.closeErr
}
