package core

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher reloads a TOML config file whenever it is written and hands
// the new configuration to a callback.
type ConfigWatcher struct {
	path     string
	onReload func(*Config)

	mutex    sync.Mutex
	current  *Config
	fsnotify *fsnotify.Watcher
	done     chan struct{}
	stopped  chan struct{}
	isClosed bool
}

func NewConfigWatcher(path string, onReload func(*Config)) (*ConfigWatcher, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors often replace the file instead of writing it.
	if err := fsWatch.Add(filepath.Dir(path)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	cw := &ConfigWatcher{
		path:     filepath.Clean(path),
		onReload: onReload,
		current:  cfg,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go cw.start()
	return cw, nil
}

func (cw *ConfigWatcher) Config() *Config {
	cw.mutex.Lock()
	defer cw.mutex.Unlock()
	return cw.current
}

func (cw *ConfigWatcher) Close() error {
	cw.mutex.Lock()
	if cw.isClosed {
		cw.mutex.Unlock()
		return errors.New("config watcher already closed")
	}
	cw.isClosed = true
	cw.mutex.Unlock()

	close(cw.done)
	<-cw.stopped
	return nil
}

func (cw *ConfigWatcher) start() {
	defer close(cw.stopped)
	for {
		select {
		case e := <-cw.fsnotify.Events:
			if filepath.Clean(e.Name) != cw.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				cw.reload()
			}

		case e := <-cw.fsnotify.Errors:
			if e != nil {
				LogError(e.Error())
			}

		case <-cw.done:
			cw.fsnotify.Close()
			return
		}
	}
}

func (cw *ConfigWatcher) reload() {
	data, err := os.ReadFile(cw.path)
	if os.IsNotExist(err) {
		// editors replace files by delete and rename, the Create event follows
		LogDebug("config '%s' is missing, keeping the current config", cw.path)
		return
	}
	var cfg *Config
	if err == nil {
		cfg, err = ParseConfig(data)
	}
	if err != nil {
		// keep the previous configuration on a broken edit
		LogError("failed to reload config '%s': %s", cw.path, err)
		return
	}
	cw.mutex.Lock()
	cw.current = cfg
	cw.mutex.Unlock()

	LogInfo("config '%s' reloaded", cw.path)
	if cw.onReload != nil {
		cw.onReload(cfg)
	}
}
