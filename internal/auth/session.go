package auth

import "sync"

// SessionState distinguishes "not resolved yet" from "resolved to nobody".
type SessionState int

const (
	SessionPending SessionState = iota
	SessionSignedOut
	SessionSignedIn
)

func (s SessionState) String() string {
	switch s {
	case SessionPending:
		return "pending"
	case SessionSignedOut:
		return "signed-out"
	case SessionSignedIn:
		return "signed-in"
	}
	return "unknown"
}

// CurrentUser is what observers receive. User is nil unless signed in.
type CurrentUser struct {
	State SessionState
	User  *User
	Token string
}

// Session holds the current user on the client and notifies observers on
// every transition.
type Session struct {
	mu        sync.Mutex
	current   CurrentUser
	observers map[int]func(CurrentUser)
	nextID    int
}

// NewSession returns a session in the pending state.
func NewSession() *Session {
	return &Session{observers: make(map[int]func(CurrentUser))}
}

func (s *Session) Current() CurrentUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SignedIn resolves the session to user.
func (s *Session) SignedIn(user User, token string) {
	s.set(CurrentUser{State: SessionSignedIn, User: &user, Token: token})
}

// SignedOut resolves the session to nobody.
func (s *Session) SignedOut() {
	s.set(CurrentUser{State: SessionSignedOut})
}

// Observe registers fn and calls it immediately with the current value,
// pending included. The returned func unsubscribes.
func (s *Session) Observe(fn func(CurrentUser)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	current := s.current
	s.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) set(next CurrentUser) {
	s.mu.Lock()
	s.current = next
	observers := make([]func(CurrentUser), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
}
