package psychescan

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// User is the signed-in identity handed out by the identity provider
type User struct {
	ID           string
	Email        string
	IDToken      string
	RefreshToken string
}

// AuthErrorKind classifies identity provider failures
type AuthErrorKind int

const (
	AuthUnknown AuthErrorKind = iota
	AuthInvalidCredentials
	AuthEmailInUse
	AuthWeakPassword
)

// AuthError is an identity provider failure that can be shown on the sign-in form
type AuthError struct {
	Kind AuthErrorKind
	Code string
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth error %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("auth error %s", e.Code)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Message is the fixed user-facing text for the error kind
func (e *AuthError) Message() string {
	switch e.Kind {
	case AuthInvalidCredentials:
		return "Invalid email or password."
	case AuthEmailInUse:
		return "Email already in use."
	case AuthWeakPassword:
		return "Password should be at least 6 characters."
	default:
		return "An error occurred."
	}
}

// AuthMessage returns the user-facing message for any sign-in error
func AuthMessage(err error) string {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Message()
	}
	return (&AuthError{Kind: AuthUnknown}).Message()
}

// IdentityProvider is the hosted authentication service
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*User, error)
	SignUpWithPassword(ctx context.Context, email, password string) (*User, error)
}

// Gate tracks the current user and notifies subscribers when it changes
type Gate struct {
	provider IdentityProvider

	mu          sync.Mutex
	user        *User
	nextID      int
	subscribers map[int]func(*User)
}

// NewGate creates a gate with no signed-in user
func NewGate(provider IdentityProvider) *Gate {
	return &Gate{
		provider:    provider,
		subscribers: make(map[int]func(*User)),
	}
}

// CurrentUser returns the signed-in user or nil
func (g *Gate) CurrentUser() *User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.user
}

// Subscribe registers fn for user changes and returns a function that removes it
func (g *Gate) Subscribe(fn func(*User)) (unsubscribe func()) {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.subscribers[id] = fn
	g.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.subscribers, id)
			g.mu.Unlock()
		})
	}
}

// SignIn signs an existing account in
func (g *Gate) SignIn(ctx context.Context, email, password string) (*User, error) {
	user, err := g.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		Logger().Sugar().Infow("sign in failed", "error", err)
		return nil, err
	}
	g.setUser(user)
	return user, nil
}

// SignUp creates an account and signs it in
func (g *Gate) SignUp(ctx context.Context, email, password string) (*User, error) {
	user, err := g.provider.SignUpWithPassword(ctx, email, password)
	if err != nil {
		Logger().Sugar().Infow("sign up failed", "error", err)
		return nil, err
	}
	g.setUser(user)
	return user, nil
}

// SignOut forgets the current user
func (g *Gate) SignOut() {
	g.setUser(nil)
}

func (g *Gate) setUser(user *User) {
	g.mu.Lock()
	if g.user == user {
		g.mu.Unlock()
		return
	}
	g.user = user
	subs := make([]func(*User), 0, len(g.subscribers))
	for _, fn := range g.subscribers {
		subs = append(subs, fn)
	}
	g.mu.Unlock()

	for _, fn := range subs {
		fn(user)
	}
}
