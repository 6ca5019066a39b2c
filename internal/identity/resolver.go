// Package identity turns bearer tokens into principals and enforces
// role requirements at handler entry.
package identity

import (
	"context"
	"time"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/libs/auth"
)

type Store interface {
	UserByID(ctx context.Context, id string) (model.User, error)
}

type Resolver struct {
	store  Store
	secret string
	ttl    time.Duration
}

func NewResolver(store Store, secret string, ttl time.Duration) *Resolver {
	return &Resolver{store: store, secret: secret, ttl: ttl}
}

func (r *Resolver) Issue(u model.User) (string, error) {
	now := time.Now()
	return auth.SignHS256(auth.Claims{
		Sub:  u.ID,
		Role: string(u.Role),
		Iat:  now.Unix(),
		Exp:  now.Add(r.ttl).Unix(),
	}, r.secret)
}

// Resolve verifies the token and loads the current user record, so role
// and membership changes apply immediately rather than at token expiry.
func (r *Resolver) Resolve(ctx context.Context, token string) (model.Principal, error) {
	claims, err := auth.ParseAndVerifyHS256(token, r.secret)
	if err != nil {
		return model.Principal{}, apperr.Wrap(apperr.KindUnauthenticated, "invalid or expired token", err)
	}
	u, err := r.store.UserByID(ctx, claims.Sub)
	if err != nil {
		if apperr.IsNotFound(err) {
			return model.Principal{}, apperr.Unauthenticated("account no longer exists")
		}
		return model.Principal{}, err
	}
	if !u.IsActive {
		return model.Principal{}, apperr.AccountDisabled("account is disabled")
	}
	return u.Principal(), nil
}

// Require passes when p holds one of the given roles. Super admins pass
// every check.
func Require(p model.Principal, roles ...model.Role) error {
	if p.Role == model.RoleSuperAdmin {
		return nil
	}
	for _, role := range roles {
		if p.Role == role {
			return nil
		}
	}
	return apperr.Forbidden("insufficient role")
}
