// Package session keeps the reconciled profile of each signed-in account.
//
// Every auth event starts a reconciliation attempt tagged with a sequence number.
// Only the result of the latest attempt is applied, so a slow earlier fetch can
// never overwrite newer state.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"talent-marketplace/internal/domain"
	"talent-marketplace/pkg/logger"
)

type Event int

const (
	SignedIn Event = iota
	TokenRefreshed
	ProfileChanged
	SignedOut
)

func (e Event) String() string {
	switch e {
	case SignedIn:
		return "signed_in"
	case TokenRefreshed:
		return "token_refreshed"
	case ProfileChanged:
		return "profile_changed"
	case SignedOut:
		return "signed_out"
	}
	return "unknown"
}

// ProfileLoader fetches the merged profile of an account.
// It returns (nil, nil) or domain.ErrNotFound when no profile exists yet.
type ProfileLoader interface {
	LoadProfile(ctx context.Context, accountID string) (*domain.Profile, error)
}

// Snapshot is an immutable view of an account's reconciled state.
type Snapshot struct {
	AccountID string
	// Profile is nil when the account has not completed setup, or after sign-out.
	Profile *domain.Profile
	// Loading is true until the first attempt completes.
	Loading bool
	// Err holds a reconciliation failure other than a missing profile.
	Err       error
	Seq       uint64
	SignedOut bool
	UpdatedAt time.Time
}

// NeedsSetup reports whether the account is known to have no profile.
func (s Snapshot) NeedsSetup() bool {
	return !s.Loading && !s.SignedOut && s.Err == nil && s.Profile == nil
}

// Reconciler owns the snapshot of one account.
type Reconciler struct {
	accountID string
	loader    ProfileLoader
	timeout   time.Duration

	mu      sync.Mutex
	issued  uint64
	snap    Snapshot
	changed chan struct{}
	subs    map[chan Snapshot]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReconciler creates a reconciler in the loading state. No attempt runs until Notify.
func NewReconciler(accountID string, loader ProfileLoader, timeout time.Duration) *Reconciler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Reconciler{
		accountID: accountID,
		loader:    loader,
		timeout:   timeout,
		snap:      Snapshot{AccountID: accountID, Loading: true},
		changed:   make(chan struct{}),
		subs:      make(map[chan Snapshot]struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Notify feeds an auth event. SignedOut clears the profile before returning;
// other events start an asynchronous attempt.
func (r *Reconciler) Notify(ev Event) {
	r.mu.Lock()
	if r.ctx.Err() != nil {
		r.mu.Unlock()
		return
	}
	r.issued++
	seq := r.issued

	if ev == SignedOut {
		r.applyLocked(Snapshot{
			AccountID: r.accountID,
			Seq:       seq,
			SignedOut: true,
			UpdatedAt: time.Now(),
		})
		r.mu.Unlock()
		return
	}

	r.wg.Add(1)
	r.mu.Unlock()

	go r.run(seq, ev)
}

func (r *Reconciler) run(seq uint64, ev Event) {
	defer r.wg.Done()

	ctx, cancel := context.WithTimeout(domain.WithAccountID(r.ctx, r.accountID), r.timeout)
	defer cancel()

	profile, err := r.loader.LoadProfile(ctx, r.accountID)
	if errors.Is(err, domain.ErrNotFound) {
		profile, err = nil, nil
	}
	if err != nil {
		logger.L().Error("Profile reconciliation failed",
			slog.String("account_id", r.accountID),
			slog.String("event", ev.String()),
			slog.Uint64("seq", seq),
			slog.Any("error", err),
		)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// a newer event was issued while this attempt ran; its result wins
	if seq != r.issued || r.ctx.Err() != nil {
		return
	}
	r.applyLocked(Snapshot{
		AccountID: r.accountID,
		Profile:   profile,
		Err:       err,
		Seq:       seq,
		UpdatedAt: time.Now(),
	})
}

// applyLocked publishes s. r.mu must be held.
func (r *Reconciler) applyLocked(s Snapshot) {
	r.snap = s
	close(r.changed)
	r.changed = make(chan struct{})

	for ch := range r.subs {
		// latest wins: drop the undelivered snapshot, if any
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

// RetryFailed starts a new attempt when the latest attempt has settled with an error.
// It reports whether an attempt was started.
func (r *Reconciler) RetryFailed() bool {
	r.mu.Lock()
	s := r.snap
	failed := !s.Loading && !s.SignedOut && s.Err != nil && s.Seq == r.issued
	r.mu.Unlock()
	if failed {
		r.Notify(TokenRefreshed)
	}
	return failed
}

// Snapshot returns the current state without waiting.
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// Wait blocks until the first attempt has completed.
func (r *Reconciler) Wait(ctx context.Context) (Snapshot, error) {
	return r.waitFor(ctx, func(s Snapshot) bool { return !s.Loading })
}

// Current blocks until the latest issued event has been applied, so a caller that
// just changed the profile never reads the state from before the change.
func (r *Reconciler) Current(ctx context.Context) (Snapshot, error) {
	return r.waitFor(ctx, func(s Snapshot) bool {
		return !s.Loading && s.Seq == r.issued
	})
}

// waitFor evaluates done under r.mu.
func (r *Reconciler) waitFor(ctx context.Context, done func(Snapshot) bool) (Snapshot, error) {
	for {
		r.mu.Lock()
		snap, changed := r.snap, r.changed
		ok := done(snap)
		closed := r.ctx.Err() != nil
		r.mu.Unlock()

		if ok {
			return snap, nil
		}
		if closed {
			return snap, ErrClosed
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-r.ctx.Done():
		}
	}
}

// Subscribe returns a channel that receives every applied snapshot.
// A slow reader misses intermediate snapshots but always gets the latest one.
// The returned function unsubscribes.
func (r *Reconciler) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	r.mu.Lock()
	r.subs[ch] = struct{}{}
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, ch)
			r.mu.Unlock()
		})
	}
}

// Close cancels in-flight attempts and waits for them to return.
func (r *Reconciler) Close() {
	r.mu.Lock()
	r.cancel()
	r.mu.Unlock()
	r.wg.Wait()
}

var ErrClosed = errors.New("session: reconciler closed")
