package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"talent-marketplace/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type step struct {
	profile *domain.Profile
	err     error
	gate    chan struct{}
}

// scriptedLoader answers the n-th LoadProfile call with steps[n].
type scriptedLoader struct {
	mu      sync.Mutex
	steps   []step
	calls   int
	started chan int
}

func newScriptedLoader(steps ...step) *scriptedLoader {
	return &scriptedLoader{steps: steps, started: make(chan int, len(steps)+8)}
}

func (l *scriptedLoader) LoadProfile(ctx context.Context, accountID string) (*domain.Profile, error) {
	l.mu.Lock()
	idx := l.calls
	if idx >= len(l.steps) {
		idx = len(l.steps) - 1
	}
	s := l.steps[idx]
	l.calls++
	l.mu.Unlock()

	l.started <- idx
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.profile, s.err
}

func (l *scriptedLoader) CreateProfile(ctx context.Context, accountID string, input domain.SetupInput) (*domain.Profile, error) {
	return nil, errors.New("not scripted")
}

func devProfile(name string) *domain.Profile {
	return &domain.Profile{
		UserProfile: domain.UserProfile{ID: "up-1", AccountID: "acc-1", Role: domain.RoleDeveloper},
		Developer: &domain.DeveloperProfile{
			PublicDeveloperProfile: domain.PublicDeveloperProfile{ID: "dev-1", AccountID: "acc-1", FullName: name},
			Email:                  "dev@example.com",
		},
	}
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestReconciler_LoadsProfile(t *testing.T) {
	want := devProfile("Ada")
	r := NewReconciler("acc-1", newScriptedLoader(step{profile: want}), time.Second)
	defer r.Close()

	assert.True(t, r.Snapshot().Loading)

	r.Notify(SignedIn)
	snap, err := r.Wait(waitCtx(t))
	require.NoError(t, err)

	assert.False(t, snap.Loading)
	assert.NoError(t, snap.Err)
	assert.Equal(t, uint64(1), snap.Seq)
	if diff := cmp.Diff(want, snap.Profile); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestReconciler_MissingProfileNeedsSetup(t *testing.T) {
	r := NewReconciler("acc-1", newScriptedLoader(step{err: domain.ErrNotFound}), time.Second)
	defer r.Close()

	r.Notify(SignedIn)
	snap, err := r.Wait(waitCtx(t))
	require.NoError(t, err)

	assert.Nil(t, snap.Profile)
	assert.NoError(t, snap.Err)
	assert.True(t, snap.NeedsSetup())
}

func TestReconciler_FailureIsNotSetup(t *testing.T) {
	boom := errors.New("connection refused")
	r := NewReconciler("acc-1", newScriptedLoader(step{err: boom}), time.Second)
	defer r.Close()

	r.Notify(SignedIn)
	snap, err := r.Wait(waitCtx(t))
	require.NoError(t, err)

	assert.ErrorIs(t, snap.Err, boom)
	assert.Nil(t, snap.Profile)
	assert.False(t, snap.NeedsSetup())
}

func TestReconciler_LastEventWins(t *testing.T) {
	gate := make(chan struct{})
	stale, fresh := devProfile("Stale"), devProfile("Fresh")
	loader := newScriptedLoader(
		step{profile: stale, gate: gate},
		step{profile: fresh},
	)
	r := NewReconciler("acc-1", loader, time.Second)
	defer r.Close()

	r.Notify(SignedIn)
	<-loader.started // first attempt is in flight
	r.Notify(ProfileChanged)

	snap, err := r.Current(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "Fresh", snap.Profile.DisplayName())
	assert.Equal(t, uint64(2), snap.Seq)

	// the slow first attempt completes late and must be discarded
	close(gate)
	r.Close()

	assert.Equal(t, "Fresh", r.Snapshot().Profile.DisplayName())
	assert.Equal(t, uint64(2), r.Snapshot().Seq)
}

func TestReconciler_SignOutClearsImmediately(t *testing.T) {
	gate := make(chan struct{})
	loader := newScriptedLoader(step{profile: devProfile("Ada"), gate: gate})
	r := NewReconciler("acc-1", loader, time.Second)
	defer r.Close()

	r.Notify(SignedIn)
	<-loader.started

	r.Notify(SignedOut)
	snap := r.Snapshot()
	assert.True(t, snap.SignedOut)
	assert.Nil(t, snap.Profile)
	assert.False(t, snap.Loading)

	close(gate)
	r.Close()
	assert.True(t, r.Snapshot().SignedOut)
	assert.Nil(t, r.Snapshot().Profile)
}

func TestReconciler_SubscriberGetsLatest(t *testing.T) {
	loader := newScriptedLoader(
		step{profile: devProfile("First")},
		step{profile: devProfile("Second")},
	)
	r := NewReconciler("acc-1", loader, time.Second)
	defer r.Close()

	ch, unsubscribe := r.Subscribe()
	defer unsubscribe()

	r.Notify(SignedIn)
	_, err := r.Current(waitCtx(t))
	require.NoError(t, err)
	r.Notify(ProfileChanged)
	_, err = r.Current(waitCtx(t))
	require.NoError(t, err)

	select {
	case snap := <-ch:
		assert.Equal(t, "Second", snap.Profile.DisplayName())
	default:
		t.Fatal("expected a snapshot")
	}
	select {
	case snap := <-ch:
		t.Fatalf("unexpected extra snapshot: %+v", snap)
	default:
	}
}

func TestReconciler_WaitHonorsContext(t *testing.T) {
	loader := newScriptedLoader(step{profile: devProfile("Ada"), gate: make(chan struct{})})
	r := NewReconciler("acc-1", loader, time.Second)
	defer r.Close()

	r.Notify(SignedIn)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	snap, err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, snap.Loading)
}

func TestReconciler_NotifyAfterCloseIsIgnored(t *testing.T) {
	r := NewReconciler("acc-1", newScriptedLoader(step{profile: devProfile("Ada")}), time.Second)
	r.Close()

	r.Notify(SignedIn)
	_, err := r.Wait(waitCtx(t))
	assert.ErrorIs(t, err, ErrClosed)
}
