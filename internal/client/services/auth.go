// Package services contains the form-level application services of the
// recharge client: login, registration, profile update and recharges.
//
// Services validate forms with the same rules the UI shows, call the API
// client, and apply the result to the session only if the session has not
// changed while the request was in flight. Each form has its own Guard, so
// a second submission while one is running fails with ErrInFlight.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophrecharge/internal/client/client"
	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
)

var (
	// ErrInFlight is returned when the same form is already being submitted.
	ErrInFlight = errors.New("submission already in progress")
	// ErrSuperseded means the session changed while the request was in
	// flight and its result was discarded.
	ErrSuperseded = client.ErrSuperseded
	// ErrNotAuthenticated is returned by operations that need a user.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Session is what services need from the session state.
type Session interface {
	User() (*models.User, bool)
	Epoch() uint64
	SetUserIf(epoch uint64, u *models.User) bool
	Logout(ctx context.Context)
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: validate the form, authenticate and make the returned user current.
//   - Register: validate the form and create the account; the user becomes
//     current only when the server also issued a credential.
//   - UpdateProfile: change the current user's profile and replace the user.
//   - Logout: end the session; never fails.
type AuthService interface {
	Login(ctx context.Context, form LoginForm) (*models.User, error)
	Register(ctx context.Context, form RegisterForm) (*models.User, error)
	UpdateProfile(ctx context.Context, form ProfileForm) (*models.User, error)
	Logout(ctx context.Context)
}

type authService struct {
	client  client.Client
	session Session

	loginGuard    Guard
	registerGuard Guard
	profileGuard  Guard
}

func NewAuthService(c client.Client, s Session) AuthService {
	return &authService{client: c, session: s}
}

func (a *authService) Login(ctx context.Context, form LoginForm) (*models.User, error) {
	if err := validateForm(form); err != nil {
		return nil, err
	}

	var user *models.User
	ran, err := a.loginGuard.Do(func() error {
		epoch := a.session.Epoch()
		resp, err := a.client.Login(ctx, models.LoginCredentials{Email: form.Email, Password: form.Password})
		if err != nil {
			return err
		}
		if !a.session.SetUserIf(epoch, &resp.User) {
			return ErrSuperseded
		}
		user = &resp.User
		return nil
	})
	if !ran {
		return nil, ErrInFlight
	}
	return user, err
}

func (a *authService) Register(ctx context.Context, form RegisterForm) (*models.User, error) {
	if err := validateForm(form); err != nil {
		return nil, err
	}

	var user *models.User
	ran, err := a.registerGuard.Do(func() error {
		epoch := a.session.Epoch()
		resp, err := a.client.Register(ctx, form.toRequest())
		if err != nil {
			return err
		}
		user = &resp.User
		if resp.Token != "" && !a.session.SetUserIf(epoch, user) {
			return ErrSuperseded
		}
		return nil
	})
	if !ran {
		return nil, ErrInFlight
	}
	return user, err
}

func (a *authService) UpdateProfile(ctx context.Context, form ProfileForm) (*models.User, error) {
	current, ok := a.session.User()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	if err := validateForm(form); err != nil {
		return nil, err
	}

	var user *models.User
	ran, err := a.profileGuard.Do(func() error {
		epoch := a.session.Epoch()
		resp, err := a.client.UpdateProfile(ctx, form.toRequest(current.ID))
		if err != nil {
			return err
		}
		if !a.session.SetUserIf(epoch, &resp.User) {
			return ErrSuperseded
		}
		user = &resp.User
		return nil
	})
	if !ran {
		return nil, ErrInFlight
	}
	return user, err
}

func (a *authService) Logout(ctx context.Context) {
	a.session.Logout(ctx)
}
