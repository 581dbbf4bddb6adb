// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package settings

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher - reload settings when the file changes
//
// the directory is watched since saves replace the file
type Watcher struct {
	settings *Settings
	watcher  *fsnotify.Watcher
	changed  func(*Settings)
}

// NewWatcher - watcher calling changed after each reload
func NewWatcher(s *Settings, changed func(*Settings)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if nil != err {
		s.log.Errorf("new watcher error: %s", err)
		return nil, err
	}
	if err := w.Add(filepath.Dir(s.filePath)); nil != err {
		s.log.Errorf("watch: %q  error: %s", filepath.Dir(s.filePath), err)
		w.Close()
		return nil, err
	}
	return &Watcher{
		settings: s,
		watcher:  w,
		changed:  changed,
	}, nil
}

// Run - for background.Process
func (w *Watcher) Run(args interface{}, shutdown <-chan struct{}) {
	log := w.settings.log
	defer w.watcher.Close()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case event, ok := <-w.watcher.Events:
			if !ok {
				break loop
			}
			if filepath.Base(event.Name) != filepath.Base(w.settings.filePath) {
				continue
			}
			if !eventIsChange(event) {
				continue
			}
			log.Infof("file event: %v", event)
			if err := w.settings.Reload(); nil != err {
				log.Errorf("reload error: %s", err)
				continue
			}
			if nil != w.changed {
				w.changed(w.settings)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				break loop
			}
			log.Errorf("watcher error: %s", err)
		}
	}
	log.Info("shutting down…")
}

func eventIsChange(event fsnotify.Event) bool {
	return event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Create == fsnotify.Create ||
		event.Op&fsnotify.Rename == fsnotify.Rename
}
