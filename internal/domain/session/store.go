// Package session manages the authenticated identity, the approved
// credential list, and the queue of pending registration requests.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/homevisit/homevisit/internal/platform/auth"
	"github.com/homevisit/homevisit/internal/platform/docstore"
	"github.com/homevisit/homevisit/internal/platform/notification"
)

// Document keys the store persists under.
const (
	UserKey     = "user"
	PendingKey  = "pendingUsers"
	ApprovedKey = "approvedUsers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username is already taken")
)

// Store holds session state: the current identity, pending registration
// requests, and approved credentials. The administrator pair is
// configuration, never part of the approved list.
type Store struct {
	store     docstore.Store
	notifier  notification.Notifier
	adminUser string
	adminPass string
	newID     func() string
	now       func() time.Time

	mu       sync.RWMutex
	current  *Identity
	pending  []PendingUser
	approved []Credential
}

// NewStore loads persisted session state. Absent or unparseable documents
// fall back to empty defaults.
func NewStore(ctx context.Context, store docstore.Store, notifier notification.Notifier, adminUser, adminPass string) (*Store, error) {
	s := &Store{
		store:     store,
		notifier:  notifier,
		adminUser: adminUser,
		adminPass: adminPass,
		newID:     func() string { return uuid.New().String() },
		now:       time.Now,
	}

	if doc, err := store.Load(ctx, UserKey); err == nil {
		var ident Identity
		if json.Unmarshal(doc, &ident) == nil && ident.Username != "" {
			s.current = &ident
		}
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if doc, err := store.Load(ctx, PendingKey); err == nil {
		if json.Unmarshal(doc, &s.pending) != nil {
			s.pending = nil
		}
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("load pending users: %w", err)
	}

	if doc, err := store.Load(ctx, ApprovedKey); err == nil {
		if json.Unmarshal(doc, &s.approved) != nil {
			s.approved = nil
		}
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("load approved users: %w", err)
	}

	return s, nil
}

// Login checks the administrator pair first, then the approved credential
// list, both with exact case-sensitive matching. On success the identity
// becomes current and is persisted; on failure nothing changes.
func (s *Store) Login(ctx context.Context, username, password string) (Identity, error) {
	var ident Identity
	switch {
	case username == s.adminUser && password == s.adminPass:
		ident = Identity{Username: username, Role: auth.RoleAdmin, Approved: true}
	case s.matchApproved(username, password):
		ident = Identity{Username: username, Role: auth.RoleProfessional, Approved: true}
	default:
		s.notifier.Error("Invalid credentials")
		return Identity{}, ErrInvalidCredentials
	}

	doc, err := json.Marshal(ident)
	if err != nil {
		return Identity{}, fmt.Errorf("marshal identity: %w", err)
	}
	if err := s.store.Save(ctx, UserKey, doc); err != nil {
		return Identity{}, err
	}

	s.mu.Lock()
	s.current = &ident
	s.mu.Unlock()

	s.notifier.Success("Signed in successfully")
	return ident, nil
}

func (s *Store) matchApproved(username, password string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cred := range s.approved {
		if cred.Username == username && cred.Password == password {
			return true
		}
	}
	return false
}

// Logout clears the current identity and its persisted copy. It always
// succeeds.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, UserKey); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	s.notifier.Info("You have been signed out")
	return nil
}

// Current returns a copy of the active identity, or nil.
func (s *Store) Current() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	ident := *s.current
	return &ident
}

// IsAuthenticated reports whether an identity is active.
func (s *Store) IsAuthenticated() bool {
	return s.Current() != nil
}

// IsAdmin reports whether the active identity is the administrator.
func (s *Store) IsAdmin() bool {
	ident := s.Current()
	return ident != nil && ident.Role == auth.RoleAdmin
}

// RegisterRequest queues a self-service registration. The username must be
// unused across both the pending queue and the approved list.
func (s *Store) RegisterRequest(ctx context.Context, username, password string) (PendingUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.pending {
		if p.Username == username {
			s.notifier.Error("Username is already taken")
			return PendingUser{}, ErrUsernameTaken
		}
	}
	for _, cred := range s.approved {
		if cred.Username == username {
			s.notifier.Error("Username is already taken")
			return PendingUser{}, ErrUsernameTaken
		}
	}

	req := PendingUser{
		ID:          s.newID(),
		Username:    username,
		Password:    password,
		RequestDate: s.now().UTC(),
	}
	s.pending = append(s.pending, req)
	if err := s.persistPending(ctx); err != nil {
		s.pending = s.pending[:len(s.pending)-1]
		return PendingUser{}, err
	}

	s.notifier.Success("Registration request submitted for approval")
	return req, nil
}

// PendingRequests returns the queue in insertion order.
func (s *Store) PendingRequests() []PendingUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PendingUser, len(s.pending))
	copy(out, s.pending)
	return out
}

// Approve turns a pending request into an approved credential. The
// approved list is written before the pending entry is removed, so an
// interruption leaves at worst a duplicate approved credential rather
// than a vanished request. Unknown ids are a no-op.
func (s *Store) Approve(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.pending {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}

	req := s.pending[idx]
	s.approved = append(s.approved, Credential{Username: req.Username, Password: req.Password})
	if err := s.persistApproved(ctx); err != nil {
		s.approved = s.approved[:len(s.approved)-1]
		return err
	}

	s.pending = append(s.pending[:idx], s.pending[idx+1:]...)
	if err := s.persistPending(ctx); err != nil {
		return err
	}

	s.notifier.Success("User approved")
	return nil
}

// Reject removes a pending request without creating a credential. Unknown
// ids are a no-op.
func (s *Store) Reject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.pending {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil
	}

	s.pending = append(s.pending[:idx], s.pending[idx+1:]...)
	if err := s.persistPending(ctx); err != nil {
		return err
	}

	s.notifier.Success("Registration request rejected")
	return nil
}

// persistPending mirrors the pending queue. Callers must hold the lock.
func (s *Store) persistPending(ctx context.Context) error {
	snapshot := s.pending
	if snapshot == nil {
		snapshot = []PendingUser{}
	}
	doc, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal pending users: %w", err)
	}
	return s.store.Save(ctx, PendingKey, doc)
}

// persistApproved mirrors the approved list. Callers must hold the lock.
func (s *Store) persistApproved(ctx context.Context) error {
	snapshot := s.approved
	if snapshot == nil {
		snapshot = []Credential{}
	}
	doc, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal approved users: %w", err)
	}
	return s.store.Save(ctx, ApprovedKey, doc)
}
