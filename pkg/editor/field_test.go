package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []NoticeKind
	ttls  []time.Duration
}

func (r *recordingNotifier) Notify(kind NoticeKind, _, _ string, ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, kind)
	r.ttls = append(r.ttls, ttl)
}

func ok[T any](context.Context, T) error { return nil }

func TestFieldSetSuccess(t *testing.T) {
	n := &recordingNotifier{}
	var committed []bool
	f := NewField(FieldConfig[bool]{
		Name:         "visibility",
		Notifier:     n,
		DismissAfter: time.Second,
		OnCommit:     func(v bool) { committed = append(committed, v) },
	})

	require.NoError(t, f.Set(context.Background(), true, ok[bool]))
	assert.Equal(t, Snapshot[bool]{Value: true, State: StateIdle}, f.Snapshot())
	assert.Equal(t, []bool{true}, committed)
	assert.Equal(t, []NoticeKind{NoticeSuccess}, n.kinds)
	assert.Equal(t, []time.Duration{time.Second}, n.ttls)
}

func TestFieldSetFailureRollsBack(t *testing.T) {
	n := &recordingNotifier{}
	called := false
	f := NewField(FieldConfig[string]{
		Name:     "availability",
		Initial:  "immediate",
		Notifier: n,
		OnCommit: func(string) { called = true },
	})

	boom := errors.New("upstream 500")
	err := f.Set(context.Background(), "3_months", func(context.Context, string) error { return boom })
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.Contains(t, err.Error(), "upstream 500")
	assert.Equal(t, "immediate", f.Value())
	assert.Equal(t, StateIdle, f.Snapshot().State)
	assert.False(t, called)
	assert.Equal(t, []NoticeKind{NoticeError}, n.kinds)
}

func TestFieldPanickingCommitIsFailure(t *testing.T) {
	f := NewField(FieldConfig[int]{Name: "n", Initial: 1})
	err := f.Set(context.Background(), 2, func(context.Context, int) error { panic("bad") })
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.Equal(t, 1, f.Value())

	require.NoError(t, f.Set(context.Background(), 3, ok[int]))
	assert.Equal(t, 3, f.Value())
}

func TestFieldRejectsWhilePending(t *testing.T) {
	f := NewField(FieldConfig[bool]{Name: "visibility"})
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- f.Set(context.Background(), true, func(context.Context, bool) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	assert.Equal(t, Snapshot[bool]{Value: true, State: StatePending}, f.Snapshot())
	calls := 0
	err := f.Set(context.Background(), false, func(context.Context, bool) error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, ErrPending)
	assert.Zero(t, calls)
	assert.True(t, f.Value())

	f.Reset(false)
	assert.True(t, f.Value())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, f.Snapshot().State)

	require.NoError(t, f.Set(context.Background(), false, ok[bool]))
	assert.False(t, f.Value())
}

func TestFieldDefaults(t *testing.T) {
	n := &recordingNotifier{}
	f := NewField(FieldConfig[bool]{Notifier: n})
	require.NoError(t, f.Set(context.Background(), true, ok[bool]))
	assert.Equal(t, []time.Duration{5 * time.Second}, n.ttls)
}

func TestNoticesAutoDismiss(t *testing.T) {
	n := NewNotices()
	n.Notify(NoticeSuccess, "visibility", "done", 20*time.Millisecond)
	n.Notify(NoticeError, "availability", "kept", 0)

	list := n.List()
	require.Len(t, list, 2)
	assert.NotEmpty(t, list[0].ID)
	assert.Equal(t, "visibility", list[0].Field)

	require.Eventually(t, func() bool { return len(n.List()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "kept", n.List()[0].Message)

	n.Dismiss(n.List()[0].ID)
	assert.Empty(t, n.List())
}
