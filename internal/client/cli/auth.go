package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
	"github.com/dmitrijs2005/gophrecharge/internal/client/services"
	"github.com/dmitrijs2005/gophrecharge/internal/common"
)

// getSimpleText, getPassword and getSecret are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getSecret     = GetSecret
)

// report prints a failed command. A submission dropped because another is
// in flight is silent.
func report(action string, err error) {
	if errors.Is(err, services.ErrInFlight) {
		return
	}
	printlnFn(fmt.Sprintf("%s: %s", action, err.Error()))
}

// Login prompts for credentials and authenticates.
//
// The password byte slice is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Login(ctx, services.LoginForm{Email: email, Password: string(password)})
	if err != nil {
		report("Login unsuccessful", err)
		return err
	}

	printlnFn(fmt.Sprintf("Login successful. Welcome, %s", u.Name))
	return nil
}

// Register prompts for the account fields and creates the account.
func (a *App) Register(ctx context.Context) error {
	var form services.RegisterForm

	prompts := []struct {
		text string
		dst  *string
	}{
		{"Enter first name", &form.FirstName},
		{"Enter last name", &form.LastName},
		{"Enter email", &form.Email},
		{"Enter phone", &form.Phone},
		{"Enter address", &form.Address},
		{"Enter distributor code", &form.Code},
	}
	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.text, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	mt, err := getSimpleText(a.reader, "Meter type: 1 = prepaid, 2 = postpaid", a.out)
	if err != nil {
		return err
	}
	if n, err := strconv.Atoi(mt); err == nil {
		form.MeterType = models.MeterType(n)
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getSecret(a.out, "Confirm password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	form.Password = string(password)
	form.ConfirmPassword = string(confirm)

	u, err := a.authService.Register(ctx, form)
	if err != nil {
		report("Registration unsuccessful", err)
		return err
	}

	if a.isLoggedIn() {
		printlnFn(fmt.Sprintf("Account created. Welcome, %s", u.Name))
	} else {
		printlnFn("Account created. You can now login.")
	}
	return nil
}

// Logout ends the session. It never fails: local state is always cleared.
func (a *App) Logout(ctx context.Context) error {
	a.authService.Logout(ctx)
	return nil
}

// Me prints the current user.
func (a *App) Me(ctx context.Context) error {
	u, ok := a.session.User()
	if !ok {
		return services.ErrNotAuthenticated
	}

	printlnFn(fmt.Sprintf("Name:    %s", u.Name))
	printlnFn(fmt.Sprintf("Email:   %s", u.Email))
	printlnFn(fmt.Sprintf("Phone:   %s", u.Phone))
	printlnFn(fmt.Sprintf("Address: %s", u.Address))
	if u.MeterType != nil {
		printlnFn(fmt.Sprintf("Meter:   %s", *u.MeterType))
	}
	if u.Company != nil {
		printlnFn(fmt.Sprintf("Company: %s", u.Company.Name))
	}
	return nil
}

// Profile prompts for the fields to change; empty answers keep the
// current value.
func (a *App) Profile(ctx context.Context) error {
	var form services.ProfileForm

	prompts := []struct {
		text string
		dst  **string
	}{
		{"New name (empty to keep)", &form.Name},
		{"New email (empty to keep)", &form.Email},
		{"New phone (empty to keep)", &form.Phone},
		{"New address (empty to keep)", &form.Address},
	}
	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.text, a.out)
		if err != nil {
			return err
		}
		if v != "" {
			s := v
			*p.dst = &s
		}
	}

	mt, err := getSimpleText(a.reader, "New meter type, 1 or 2 (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if mt != "" {
		n, err := strconv.Atoi(mt)
		if err != nil {
			printlnFn("Meter type must be 1 or 2")
			return err
		}
		t := models.MeterType(n)
		form.MeterType = &t
	}

	u, err := a.authService.UpdateProfile(ctx, form)
	if err != nil {
		report("Profile update unsuccessful", err)
		return err
	}

	printlnFn(fmt.Sprintf("Profile updated for %s", u.Name))
	return nil
}
