// Package session turns verified credentials into session handles and
// resolves handles back to users.
//
// A handle is an HS256 token whose jti names a server-side session record.
// The signature lets forged handles fail without a backend round trip; the
// record is what makes logout take effect before the token expires.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"clinic-booking/internal/auth"
	"clinic-booking/internal/model"
)

type Identity interface {
	ValidateCredentials(ctx context.Context, email, password string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
}

// Store keeps session records keyed by session id.
type Store interface {
	Save(ctx context.Context, sid string, userID int64, ttl time.Duration) error
	Lookup(ctx context.Context, sid string) (userID int64, ok bool, err error)
	Delete(ctx context.Context, sid string) error
}

type Gate struct {
	identity Identity
	sessions Store
	secret   string
	ttl      time.Duration
	log      *zap.Logger
}

func NewGate(identity Identity, sessions Store, secret string, ttl time.Duration, log *zap.Logger) *Gate {
	return &Gate{identity: identity, sessions: sessions, secret: secret, ttl: ttl, log: log}
}

func (g *Gate) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	if email == "" || password == "" {
		return "", nil, model.ErrAuth
	}
	u, err := g.identity.ValidateCredentials(ctx, email, password)
	if errors.Is(err, model.ErrAuth) {
		g.log.Info("login rejected", zap.String("email", email))
		return "", nil, model.ErrAuth
	}
	if err != nil {
		return "", nil, err
	}

	sid := auth.NewSessionID()
	handle, err := auth.MakeToken(u.ID, sid, g.secret, g.ttl)
	if err != nil {
		return "", nil, fmt.Errorf("%w: sign session: %v", model.ErrInternal, err)
	}
	if err := g.sessions.Save(ctx, sid, u.ID, g.ttl); err != nil {
		return "", nil, fmt.Errorf("%w: save session: %v", model.ErrInternal, err)
	}

	g.log.Info("login", zap.Int64("user_id", u.ID))
	return handle, u, nil
}

// Logout drops the session behind handle. Handles that are malformed,
// expired or already logged out are accepted as no-ops.
func (g *Gate) Logout(ctx context.Context, handle string) error {
	claims, err := auth.ParseToken(handle, g.secret)
	if err != nil {
		return nil
	}
	if err := g.sessions.Delete(ctx, claims.SessionID()); err != nil {
		return fmt.Errorf("%w: delete session: %v", model.ErrInternal, err)
	}
	g.log.Info("logout", zap.Int64("user_id", claims.UserID))
	return nil
}

// CurrentUser returns nil for any handle that is not backed by a live
// session of an existing user.
func (g *Gate) CurrentUser(ctx context.Context, handle string) (*model.User, error) {
	if handle == "" {
		return nil, nil
	}
	claims, err := auth.ParseToken(handle, g.secret)
	if err != nil {
		return nil, nil
	}

	uid, ok, err := g.sessions.Lookup(ctx, claims.SessionID())
	if err != nil {
		return nil, fmt.Errorf("%w: lookup session: %v", model.ErrInternal, err)
	}
	if !ok || uid != claims.UserID {
		return nil, nil
	}

	u, err := g.identity.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		_ = g.sessions.Delete(ctx, claims.SessionID())
		return nil, nil
	}
	return u, nil
}
