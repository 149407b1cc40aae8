package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/localdb/lib/medium"
	"github.com/ValentinKolb/localdb/lib/notify"
	"github.com/lni/dragonboat/v4/logger"
)

var errBroken = errors.New("broken medium")

// faultyMedium wraps a medium and fails reads or writes on demand
type faultyMedium struct {
	medium.IMedium
	failReads  bool
	failWrites bool
}

func (f *faultyMedium) GetRaw(key string) (string, bool, error) {
	if f.failReads {
		return "", false, errBroken
	}
	return f.IMedium.GetRaw(key)
}

func (f *faultyMedium) Keys() ([]string, error) {
	if f.failReads {
		return nil, errBroken
	}
	return f.IMedium.Keys()
}

func (f *faultyMedium) Count() (int, error) {
	if f.failReads {
		return 0, errBroken
	}
	return f.IMedium.Count()
}

func (f *faultyMedium) SetRaw(key, value string) error {
	if f.failWrites {
		return errBroken
	}
	return f.IMedium.SetRaw(key, value)
}

func (f *faultyMedium) RemoveRaw(key string) error {
	if f.failWrites {
		return errBroken
	}
	return f.IMedium.RemoveRaw(key)
}

func (f *faultyMedium) ClearAll() error {
	if f.failWrites {
		return errBroken
	}
	return f.IMedium.ClearAll()
}

// notification is one recorded user notification
type notification struct {
	kind notify.Kind
	msg  string
}

// recorder collects user notifications
type recorder struct {
	mu    sync.Mutex
	items []notification
}

func (r *recorder) Notify(kind notify.Kind, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, notification{kind: kind, msg: msg})
}

func (r *recorder) of(kind notify.Kind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.items {
		if n.kind == kind {
			out = append(out, n.msg)
		}
	}
	return out
}

// recordingLogger captures formatted log lines
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) add(level, f string, a ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, level+" "+fmt.Sprintf(f, a...))
}

func (l *recordingLogger) SetLevel(logger.LogLevel)            {}
func (l *recordingLogger) Debugf(f string, a ...interface{})   { l.add("DEBUG", f, a...) }
func (l *recordingLogger) Infof(f string, a ...interface{})    { l.add("INFO", f, a...) }
func (l *recordingLogger) Warningf(f string, a ...interface{}) { l.add("WARN", f, a...) }
func (l *recordingLogger) Errorf(f string, a ...interface{})   { l.add("ERROR", f, a...) }
func (l *recordingLogger) Panicf(f string, a ...interface{})   { panic(fmt.Sprintf(f, a...)) }

func (l *recordingLogger) count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, line := range l.lines {
		if len(line) > len(level) && line[:len(level)+1] == level+" " {
			n++
		}
	}
	return n
}

// useLogger swaps the package logger for the duration of the test
func useLogger(t *testing.T) *recordingLogger {
	t.Helper()
	rec := &recordingLogger{}
	prev := Logger
	Logger = rec
	t.Cleanup(func() { Logger = prev })
	return rec
}

// newTestStore creates a store on a fresh memory medium
func newTestStore(t *testing.T, tenant string) (*Store, medium.IMedium, *recorder) {
	t.Helper()
	m := medium.NewMemoryMedium()
	t.Cleanup(func() { _ = m.Close() })
	rec := &recorder{}
	s := NewStore(m, &Options{Tenant: tenant, Notifier: rec})
	return s, m, rec
}

// rawValue reads a physical key directly from the medium
func rawValue(t *testing.T, m medium.IMedium, key string) (string, bool) {
	t.Helper()
	v, ok, err := m.GetRaw(key)
	if err != nil {
		t.Fatalf("GetRaw(%q) failed: %v", key, err)
	}
	return v, ok
}
