package session

import (
	"context"
	"sync"
	"time"

	"talent-marketplace/internal/domain"
)

// ProfileService loads profiles and creates them during first-login setup.
type ProfileService interface {
	ProfileLoader
	CreateProfile(ctx context.Context, accountID string, input domain.SetupInput) (*domain.Profile, error)
}

const DefaultIdleTimeout = 30 * time.Minute

// Manager holds one Reconciler per signed-in account.
// Accounts not looked up for longer than the idle timeout are forgotten.
type Manager struct {
	service ProfileService
	timeout time.Duration
	idle    time.Duration
	now     func() time.Time

	mu        sync.Mutex
	byID      map[string]*Reconciler
	lastSeen  map[string]time.Time
	lastSweep time.Time
	closed    bool
}

func NewManager(service ProfileService, attemptTimeout time.Duration) *Manager {
	return &Manager{
		service:  service,
		timeout:  attemptTimeout,
		idle:     DefaultIdleTimeout,
		now:      time.Now,
		byID:     make(map[string]*Reconciler),
		lastSeen: make(map[string]time.Time),
	}
}

// SetIdleTimeout changes how long an unused account is kept. Zero or less keeps the default.
func (m *Manager) SetIdleTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.idle = d
	m.mu.Unlock()
}

// reconciler returns the account's reconciler, creating it with a SignedIn event.
// Lookups also sweep idle accounts, at most once per sweep interval.
func (m *Manager) reconciler(accountID string) (r *Reconciler, created bool, err error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, false, ErrClosed
	}
	now := m.now()
	evicted := m.sweepLocked(now, accountID)

	r, ok := m.byID[accountID]
	if !ok {
		r = NewReconciler(accountID, m.service, m.timeout)
		m.byID[accountID] = r
		r.Notify(SignedIn)
		created = true
	}
	m.lastSeen[accountID] = now
	m.mu.Unlock()

	for _, old := range evicted {
		old.Close()
	}
	return r, created, nil
}

// sweepLocked removes accounts idle for longer than m.idle and returns their
// reconcilers for closing outside the lock. m.mu must be held.
func (m *Manager) sweepLocked(now time.Time, keep string) []*Reconciler {
	every := m.idle / 4
	if every > time.Minute {
		every = time.Minute
	}
	if now.Sub(m.lastSweep) < every {
		return nil
	}
	m.lastSweep = now

	var evicted []*Reconciler
	for id, seen := range m.lastSeen {
		if id == keep || now.Sub(seen) <= m.idle {
			continue
		}
		if r, ok := m.byID[id]; ok {
			evicted = append(evicted, r)
		}
		delete(m.byID, id)
		delete(m.lastSeen, id)
	}
	return evicted
}

// Notify forwards an event to the account's reconciler.
func (m *Manager) Notify(accountID string, ev Event) error {
	if ev == SignedOut {
		m.SignOut(accountID)
		return nil
	}
	r, created, err := m.reconciler(accountID)
	if err != nil {
		return err
	}
	// a new reconciler already started its SignedIn attempt
	if !created {
		r.Notify(ev)
	}
	return nil
}

// Current returns the up-to-date snapshot of an account, waiting for pending attempts.
// A settled load failure is retried once per call, so a transient outage clears
// on the next request.
func (m *Manager) Current(ctx context.Context, accountID string) (Snapshot, error) {
	r, created, err := m.reconciler(accountID)
	if err != nil {
		return Snapshot{AccountID: accountID}, err
	}
	if !created {
		r.RetryFailed()
	}
	return r.Current(ctx)
}

// Subscribe follows the snapshots of an account.
func (m *Manager) Subscribe(accountID string) (<-chan Snapshot, func(), error) {
	r, _, err := m.reconciler(accountID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := r.Subscribe()
	return ch, cancel, nil
}

// SignOut clears the account's profile immediately and forgets its reconciler.
func (m *Manager) SignOut(accountID string) {
	m.mu.Lock()
	r, ok := m.byID[accountID]
	delete(m.byID, accountID)
	delete(m.lastSeen, accountID)
	m.mu.Unlock()

	if !ok {
		return
	}
	r.Notify(SignedOut)
	r.Close()
}

// CreateProfile runs first-login setup and then reconciles, so the next Current
// returns the new profile.
func (m *Manager) CreateProfile(ctx context.Context, accountID string, input domain.SetupInput) (*domain.Profile, error) {
	profile, err := m.service.CreateProfile(ctx, accountID, input)
	if err != nil {
		return nil, err
	}
	if err := m.Notify(accountID, ProfileChanged); err != nil {
		return nil, err
	}
	return profile, nil
}

// Close stops every reconciler. The manager is unusable afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	all := make([]*Reconciler, 0, len(m.byID))
	for _, r := range m.byID {
		all = append(all, r)
	}
	m.byID = make(map[string]*Reconciler)
	m.lastSeen = make(map[string]time.Time)
	m.mu.Unlock()

	for _, r := range all {
		r.Close()
	}
}

// Len returns the number of tracked accounts.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}
