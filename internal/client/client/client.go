package client

import (
	"context"

	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
)

type Client interface {
	Login(ctx context.Context, creds models.LoginCredentials) (*models.LoginResponse, error)
	Register(ctx context.Context, data models.RegisterData) (*models.RegisterResponse, error)
	UpdateProfile(ctx context.Context, data models.ProfileUpdate) (*models.ProfileResponse, error)
	GetRechargeHistory(ctx context.Context, userID int64, page, perPage int) (*models.Page[models.Recharge], error)
	MakeRecharge(ctx context.Context, data models.RechargeRequest) (*models.RechargeResponse, error)

	// Me asks the server who the current credential belongs to.
	Me(ctx context.Context) (*models.User, error)
	// ServerLogout invalidates the credential server-side.
	ServerLogout(ctx context.Context) error
	// Logout forgets the credential locally; it makes no network call.
	Logout(ctx context.Context)
	// RestoreToken re-applies a persisted credential and reports whether
	// one was found.
	RestoreToken(ctx context.Context) bool
	// OnUnauthorized registers fn to run after a 401 cleared the
	// credential. The returned func unregisters it.
	OnUnauthorized(fn func(ctx context.Context)) (unsubscribe func())

	Close() error
}
