package server

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"resumescore/internal/errors"
)

// CertWatcher observes the PEM files backing the API listener and
// invokes a reload callback when any of them change on disk. Changes
// are debounced so an atomic cert+key rotation triggers one reload.
type CertWatcher struct {
	mu sync.RWMutex

	certFile string
	keyFile  string
	caFile   string

	modTimes map[string]time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	reloadCallback func()
	logger         *errors.Logger

	running bool
}

// NewCertWatcher creates a watcher over the given certificate files.
// Empty paths are skipped, so a server-only setup without a CA file
// works unchanged.
func NewCertWatcher(certFile, keyFile, caFile string, debounceDelay time.Duration, reloadCallback func(), logger *errors.Logger) (*CertWatcher, error) {
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}

	return &CertWatcher{
		certFile:       certFile,
		keyFile:        keyFile,
		caFile:         caFile,
		modTimes:       make(map[string]time.Time),
		debounceDelay:  debounceDelay,
		stopChan:       make(chan struct{}),
		reloadChan:     make(chan struct{}, 1),
		reloadCallback: reloadCallback,
		logger:         logger,
	}, nil
}

// watchedPaths returns the non-empty certificate file paths.
func (cw *CertWatcher) watchedPaths() []string {
	paths := make([]string, 0, 3)
	for _, p := range []string{cw.certFile, cw.keyFile, cw.caFile} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// Start records the current file modification times and begins the
// event loop.
func (cw *CertWatcher) Start() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.running {
		return fmt.Errorf("certificate watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	cw.fsWatcher = watcher

	if err := cw.snapshotModTimes(); err != nil {
		if closeErr := watcher.Close(); closeErr != nil && cw.logger != nil {
			cw.logger.LogError(closeErr, "Failed to close file watcher during cleanup")
		}
		return fmt.Errorf("failed to record initial certificate timestamps: %w", err)
	}

	paths := cw.watchedPaths()
	for _, p := range paths {
		if err := cw.watchPath(p); err != nil && cw.logger != nil {
			cw.logger.Warn("Failed to watch certificate file", "file", p, "error", err)
		}
	}

	cw.running = true
	go cw.watchLoop()

	if cw.logger != nil {
		cw.logger.Info("Certificate file watcher started",
			"files", paths,
			"debounce_delay", cw.debounceDelay)
	}
	return nil
}

// Stop ends the watch loop and releases the fsnotify handle.
func (cw *CertWatcher) Stop() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if !cw.running {
		return nil
	}

	close(cw.stopChan)
	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}

	if cw.fsWatcher != nil {
		if err := cw.fsWatcher.Close(); err != nil {
			if cw.logger != nil {
				cw.logger.LogError(err, "Failed to close file system watcher")
			}
			return err
		}
	}

	cw.running = false
	if cw.logger != nil {
		cw.logger.Info("Certificate file watcher stopped")
	}
	return nil
}

// watchPath registers a certificate file with fsnotify. The parent
// directory is always watched too, since rotation tooling typically
// replaces certificates via rename.
func (cw *CertWatcher) watchPath(file string) error {
	if err := cw.fsWatcher.Add(file); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to watch file %s: %w", file, err)
		}
		if cw.logger != nil {
			cw.logger.Info("Certificate file missing, watching its directory instead", "file", file)
		}
	}

	dir := filepath.Dir(file)
	if err := cw.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	return nil
}

// snapshotModTimes stores the current modification times of the
// watched files.
func (cw *CertWatcher) snapshotModTimes() error {
	for _, p := range cw.watchedPaths() {
		stat, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to stat file %s: %w", p, err)
		}
		cw.modTimes[p] = stat.ModTime()
	}
	return nil
}

// fileChanged reports whether a file was modified or deleted since the
// last snapshot, updating the snapshot as a side effect.
func (cw *CertWatcher) fileChanged(file string) bool {
	stat, err := os.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			if _, tracked := cw.modTimes[file]; tracked {
				delete(cw.modTimes, file)
				return true
			}
		}
		return false
	}

	last, tracked := cw.modTimes[file]
	if !tracked || stat.ModTime().After(last) {
		cw.modTimes[file] = stat.ModTime()
		return true
	}
	return false
}

func (cw *CertWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-cw.fsWatcher.Events:
			if !ok {
				return
			}
			if cw.relevantEvent(event) {
				cw.scheduleReload()
			}

		case err, ok := <-cw.fsWatcher.Errors:
			if !ok {
				return
			}
			if cw.logger != nil {
				cw.logger.LogError(err, "File watcher error")
			}

		case <-cw.reloadChan:
			if slices.ContainsFunc(cw.watchedPaths(), cw.fileChanged) {
				if cw.logger != nil {
					cw.logger.Info("Certificate files changed, triggering reload")
				}
				cw.reloadCallback()
			}

		case <-cw.stopChan:
			return
		}
	}
}

// relevantEvent reports whether an fsnotify event concerns one of the
// watched certificate files. Base names are compared as well because
// atomic writes surface as events on the temp name in the same
// directory.
func (cw *CertWatcher) relevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}

	for _, p := range cw.watchedPaths() {
		if event.Name == p || filepath.Base(event.Name) == filepath.Base(p) {
			return true
		}
	}
	return false
}

// scheduleReload arms the debounce timer, collapsing bursts of events
// into a single reload check.
func (cw *CertWatcher) scheduleReload() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}

	cw.debounceTimer = time.AfterFunc(cw.debounceDelay, func() {
		select {
		case cw.reloadChan <- struct{}{}:
		default:
		}
	})
}

// IsRunning reports whether the watch loop is active.
func (cw *CertWatcher) IsRunning() bool {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return cw.running
}

// GetWatchedFiles returns the certificate paths under watch.
func (cw *CertWatcher) GetWatchedFiles() []string {
	return cw.watchedPaths()
}
