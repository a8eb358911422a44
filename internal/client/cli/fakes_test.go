package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophrecharge/internal/client/idle"
	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
	"github.com/dmitrijs2005/gophrecharge/internal/client/services"
	"github.com/dmitrijs2005/gophrecharge/internal/client/session"
)

// capturePrintln records everything printed through printlnFn.
func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

// stubText answers prompts from a queue, in order.
func stubText(t *testing.T, answers ...string) *[]string {
	t.Helper()
	var prompts []string
	orig := getSimpleText
	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		prompts = append(prompts, prompt)
		if len(answers) == 0 {
			return "", io.EOF
		}
		v := answers[0]
		answers = answers[1:]
		return v, nil
	}
	t.Cleanup(func() { getSimpleText = orig })
	return &prompts
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

func stubSecret(t *testing.T, pw string) {
	t.Helper()
	orig := getSecret
	getSecret = func(_ io.Writer, _ string) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getSecret = orig })
}

type fakeAuth struct {
	user *models.User
	err  error

	login     services.LoginForm
	register  services.RegisterForm
	profile   services.ProfileForm
	loggedOut bool
}

func (f *fakeAuth) Login(_ context.Context, form services.LoginForm) (*models.User, error) {
	f.login = form
	return f.user, f.err
}

func (f *fakeAuth) Register(_ context.Context, form services.RegisterForm) (*models.User, error) {
	f.register = form
	return f.user, f.err
}

func (f *fakeAuth) UpdateProfile(_ context.Context, form services.ProfileForm) (*models.User, error) {
	f.profile = form
	return f.user, f.err
}

func (f *fakeAuth) Logout(context.Context) { f.loggedOut = true }

type fakeRecharge struct {
	meters    []models.Meter
	metersErr error

	page    *models.Page[models.Recharge]
	histErr error
	gotPage int
	gotPer  int

	resp      *models.RechargeResponse
	submitErr error
	submitted *services.RechargeForm
}

func (f *fakeRecharge) Meters() ([]models.Meter, error) { return f.meters, f.metersErr }

func (f *fakeRecharge) History(_ context.Context, page, perPage int) (*models.Page[models.Recharge], error) {
	f.gotPage, f.gotPer = page, perPage
	return f.page, f.histErr
}

func (f *fakeRecharge) Submit(_ context.Context, form services.RechargeForm) (*models.RechargeResponse, error) {
	f.submitted = &form
	return f.resp, f.submitErr
}

type fakeSession struct {
	user  *models.User
	state session.State
}

func (f *fakeSession) Bootstrap(context.Context) {}

func (f *fakeSession) User() (*models.User, bool) { return f.user, f.user != nil }

func (f *fakeSession) State() session.State { return f.state }

type fakeMonitor struct {
	snap       idle.Snapshot
	activities []idle.Activity
	extended   int
}

func (f *fakeMonitor) Activity(kind idle.Activity) bool {
	f.activities = append(f.activities, kind)
	return true
}

func (f *fakeMonitor) ExtendSession() { f.extended++ }

func (f *fakeMonitor) Snapshot() idle.Snapshot { return f.snap }

func (f *fakeMonitor) Run(context.Context, time.Duration) {}

func newTestApp(u *models.User) (*App, *fakeAuth, *fakeRecharge, *fakeMonitor) {
	auth := &fakeAuth{user: u}
	rech := &fakeRecharge{}
	mon := &fakeMonitor{}
	state := session.Anonymous
	if u != nil {
		state = session.Authenticated
	}
	a := &App{
		authService:     auth,
		rechargeService: rech,
		session:         &fakeSession{user: u, state: state},
		monitor:         mon,
		reader:          bufio.NewReader(strings.NewReader("")),
		out:             io.Discard,
	}
	return a, auth, rech, mon
}
