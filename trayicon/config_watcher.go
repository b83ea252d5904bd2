// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// configWatcher 监视配置文件所在目录，配置文件变化后重新加载。
type configWatcher struct {
	file     string
	watcher  *fsnotify.Watcher
	onChange func(cfg *Config)
	quit     chan struct{}
}

func newConfigWatcher(file string, onChange func(cfg *Config)) (*configWatcher, error) {
	dir := filepath.Dir(file)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	err = watcher.Add(dir)
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}
	w := &configWatcher{
		file:     filepath.Clean(file),
		watcher:  watcher,
		onChange: onChange,
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *configWatcher) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warning(err)
		case <-w.quit:
			return
		}
	}
}

func (w *configWatcher) handleEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.file {
		return
	}
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	cfg, err := LoadConfig(w.file)
	if err != nil {
		logger.Warning(err)
		return
	}
	logger.Debugf("config changed: %+v", *cfg)
	w.onChange(cfg)
}

func (w *configWatcher) stop() {
	close(w.quit)
	err := w.watcher.Close()
	if err != nil {
		logger.Warning(err)
	}
}
