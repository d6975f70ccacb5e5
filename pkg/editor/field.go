package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrPending is returned while a previous change to the same field is in flight.
	ErrPending = errors.New("a change to this field is already pending")
	// ErrWriteFailed wraps any failure of the persistence call.
	ErrWriteFailed = errors.New("write failed")
)

type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
)

// Commit persists a new value. Any returned error rolls the field back.
type Commit[T any] func(ctx context.Context, v T) error

// FieldConfig describes one optimistically updated setting.
type FieldConfig[T any] struct {
	Name     string
	Initial  T
	Notifier Notifier
	// DismissAfter is how long success and error notices stay visible.
	DismissAfter time.Duration
	SuccessText  string
	ErrorText    string
	// OnCommit runs after a successful write with the committed value.
	OnCommit func(T)
}

// Field applies changes locally before the write is confirmed and
// reverts them when the write fails. Only one write is in flight at a time.
type Field[T any] struct {
	cfg     FieldConfig[T]
	mu      sync.Mutex
	value   T
	prev    T
	pending bool
}

func NewField[T any](cfg FieldConfig[T]) *Field[T] {
	if cfg.DismissAfter <= 0 {
		cfg.DismissAfter = 5 * time.Second
	}
	if cfg.SuccessText == "" {
		cfg.SuccessText = "Saved"
	}
	if cfg.ErrorText == "" {
		cfg.ErrorText = "Could not save the change, please try again"
	}
	return &Field[T]{cfg: cfg, value: cfg.Initial}
}

// Snapshot is the visible state of a field.
type Snapshot[T any] struct {
	Value T     `json:"value"`
	State State `json:"state"`
}

func (f *Field[T]) Snapshot() Snapshot[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := StateIdle
	if f.pending {
		st = StatePending
	}
	return Snapshot[T]{Value: f.value, State: st}
}

func (f *Field[T]) Value() T { return f.Snapshot().Value }

// Reset replaces the value without a write, e.g. after reloading the record.
// It is ignored while a write is pending.
func (f *Field[T]) Reset(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.pending {
		f.value = v
	}
}

// Set shows v immediately and dispatches commit. On failure the previous
// value is restored and the returned error wraps ErrWriteFailed. Calls made
// while a write is in flight return ErrPending without side effects.
func (f *Field[T]) Set(ctx context.Context, v T, commit Commit[T]) error {
	f.mu.Lock()
	if f.pending {
		f.mu.Unlock()
		return ErrPending
	}
	f.prev = f.value
	f.value = v
	f.pending = true
	f.mu.Unlock()

	err := safeCommit(ctx, commit, v)

	f.mu.Lock()
	f.pending = false
	if err != nil {
		f.value = f.prev
	}
	f.mu.Unlock()

	if err != nil {
		f.notify(NoticeError, f.cfg.ErrorText)
		return fmt.Errorf("%s: %w: %v", f.cfg.Name, ErrWriteFailed, err)
	}
	if f.cfg.OnCommit != nil {
		f.cfg.OnCommit(v)
	}
	f.notify(NoticeSuccess, f.cfg.SuccessText)
	return nil
}

func (f *Field[T]) notify(kind NoticeKind, msg string) {
	if f.cfg.Notifier != nil {
		f.cfg.Notifier.Notify(kind, f.cfg.Name, msg, f.cfg.DismissAfter)
	}
}

// safeCommit turns a panicking commit into an ordinary failure so the
// field never stays pending.
func safeCommit[T any](ctx context.Context, commit Commit[T], v T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("commit panicked: %v", r)
		}
	}()
	return commit(ctx, v)
}
