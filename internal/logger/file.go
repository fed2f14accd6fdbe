package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/stefanspringer1/goworkflow/internal/metrics"
	"github.com/stefanspringer1/goworkflow/pkg/logevent"
)

// FileMode selects how File manages its underlying file handle.
type FileMode int

const (
	// FileBlocking keeps the file handle open from the first write
	// until Close.
	FileBlocking FileMode = iota
	// FileReopenPerWrite opens, writes, and closes the file on every
	// call to Log.
	FileReopenPerWrite
)

// File is the file sink: lines are sanitized to a single physical line
// (Sanitize), and exact-text repeats are suppressed for the sink's
// lifetime — grounded on the teacher's internal/sinks/local_file_sink.go
// open-file bookkeeping, generalized from rotation-aware batching to the
// two policies spec.md §4.2 calls for.
type File struct {
	Path    string
	Mode    FileMode
	Options FormatOptions

	// internalLog receives the sink's own operational diagnostics
	// (open/write/reopen failures), distinct from the LoggingEvents it
	// is asked to persist.
	internalLog *logrus.Logger

	mu     sync.Mutex
	handle *os.File
	seen   map[uint64]struct{}
	closed bool

	watcher   *fsnotify.Watcher
	watchDone chan struct{}
}

// NewFile constructs a File sink. internalLog may be nil, in which case a
// standard logrus.Logger writing to stderr is used.
func NewFile(path string, mode FileMode, internalLog *logrus.Logger) *File {
	if internalLog == nil {
		internalLog = logrus.StandardLogger()
	}
	f := &File{
		Path:        path,
		Mode:        mode,
		Options:     DefaultFormatOptions,
		internalLog: internalLog,
		seen:        make(map[uint64]struct{}),
	}
	if mode == FileReopenPerWrite {
		f.startWatch()
	}
	return f
}

// startWatch watches the sink's directory so external rotation/deletion
// of the target file is surfaced immediately via internalLog, rather than
// only being noticed on the next write attempt.
func (f *File) startWatch() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		f.internalLog.WithError(err).Warn("file sink: could not start rotation watcher")
		return
	}
	dir := filepath.Dir(f.Path)
	if err := watcher.Add(dir); err != nil {
		f.internalLog.WithError(err).WithField("dir", dir).Warn("file sink: could not watch directory")
		_ = watcher.Close()
		return
	}
	f.watcher = watcher
	f.watchDone = make(chan struct{})
	go func() {
		defer close(f.watchDone)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name == f.Path && (ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0) {
					f.internalLog.WithField("path", f.Path).Info("file sink: target externally rotated, will reopen on next write")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.internalLog.WithError(err).Warn("file sink: rotation watcher error")
			}
		}
	}()
}

func (f *File) Log(e logevent.LoggingEvent) {
	line := Sanitize(FormatLine(e, f.Options))

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}

	key := xxhash.Sum64String(line)
	if _, dup := f.seen[key]; dup {
		return
	}

	if err := f.write(line); err != nil {
		f.internalLog.WithError(err).WithField("path", f.Path).Error("file sink: write failed")
		return
	}
	f.seen[key] = struct{}{}
	metrics.SetFileSinkDedupSetSize(f.Path, len(f.seen))
}

func (f *File) write(line string) error {
	switch f.Mode {
	case FileBlocking:
		if f.handle == nil {
			handle, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return err
			}
			f.handle = handle
		}
		if _, err := fmt.Fprintln(f.handle, line); err != nil {
			return err
		}
		return f.handle.Sync()
	case FileReopenPerWrite:
		handle, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer handle.Close()
		if _, err := fmt.Fprintln(handle, line); err != nil {
			return err
		}
		return handle.Sync()
	default:
		return fmt.Errorf("file sink: unknown mode %d", int(f.Mode))
	}
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true

	var err error
	if f.handle != nil {
		err = f.handle.Close()
		f.handle = nil
	}
	if f.watcher != nil {
		_ = f.watcher.Close()
		<-f.watchDone
	}
	return err
}
