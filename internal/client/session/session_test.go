package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gophrecharge/internal/client/client"
	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu sync.Mutex

	hasToken  bool
	meUser    *models.User
	meErr     error
	meHook    func()
	logoutErr error

	meCalls           int
	serverLogoutCalls int
	localLogoutCalls  int

	listeners []func(ctx context.Context)
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Login(context.Context, models.LoginCredentials) (*models.LoginResponse, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeClient) Register(context.Context, models.RegisterData) (*models.RegisterResponse, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeClient) UpdateProfile(context.Context, models.ProfileUpdate) (*models.ProfileResponse, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeClient) GetRechargeHistory(context.Context, int64, int, int) (*models.Page[models.Recharge], error) {
	return nil, errors.New("not implemented")
}
func (f *fakeClient) MakeRecharge(context.Context, models.RechargeRequest) (*models.RechargeResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) Me(context.Context) (*models.User, error) {
	f.mu.Lock()
	f.meCalls++
	hook := f.meHook
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return f.meUser, f.meErr
}

func (f *fakeClient) ServerLogout(context.Context) error {
	f.serverLogoutCalls++
	return f.logoutErr
}

func (f *fakeClient) Logout(context.Context) {
	f.localLogoutCalls++
	f.hasToken = false
}

func (f *fakeClient) RestoreToken(context.Context) bool { return f.hasToken }

func (f *fakeClient) OnUnauthorized(fn func(ctx context.Context)) func() {
	f.listeners = append(f.listeners, fn)
	idx := len(f.listeners) - 1
	return func() { f.listeners[idx] = nil }
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) fire401() {
	f.hasToken = false
	for _, fn := range f.listeners {
		if fn != nil {
			fn(context.Background())
		}
	}
}

func TestBootstrap_NoTokenGoesAnonymousWithoutCallingServer(t *testing.T) {
	api := &fakeClient{meErr: errors.New("must not be called")}
	s := New(api, Options{})
	require.True(t, s.Loading())

	s.Bootstrap(context.Background())

	assert.Equal(t, Anonymous, s.State())
	assert.False(t, s.Loading())
	_, ok := s.User()
	assert.False(t, ok)
	assert.Zero(t, api.meCalls)
}

func TestBootstrap_RestoresUser(t *testing.T) {
	api := &fakeClient{hasToken: true, meUser: &models.User{ID: 9, Name: "Ada"}}
	s := New(api, Options{})

	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	s.Bootstrap(context.Background())

	u, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, int64(9), u.ID)
	assert.Equal(t, Authenticated, s.State())
	require.Len(t, changes, 1)
	assert.Equal(t, "restored", changes[0].Reason)
}

func TestBootstrap_FailingMeGoesAnonymous(t *testing.T) {
	api := &fakeClient{hasToken: true, meErr: &client.ServerError{Message: "down", Kind: client.ErrUnavailable}}
	s := New(api, Options{})

	s.Bootstrap(context.Background())

	assert.Equal(t, Anonymous, s.State())
	assert.Equal(t, 1, api.meCalls)
}

func TestBootstrap_OneShot(t *testing.T) {
	api := &fakeClient{hasToken: true, meUser: &models.User{ID: 1}}
	s := New(api, Options{})

	s.Bootstrap(context.Background())
	s.Bootstrap(context.Background())

	assert.Equal(t, 1, api.meCalls)
	<-s.Done()
}

func TestBootstrap_LoginDuringMeWins(t *testing.T) {
	api := &fakeClient{hasToken: true, meUser: &models.User{ID: 1}}
	s := New(api, Options{})
	api.meHook = func() { s.SetUser(&models.User{ID: 2}) }

	s.Bootstrap(context.Background())

	u, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, int64(2), u.ID)
}

func TestLogout_ServerRejectsStillCleansUp(t *testing.T) {
	api := &fakeClient{hasToken: true, meUser: &models.User{ID: 1}, logoutErr: errors.New("network down")}

	navigated := 0
	s := New(api, Options{Navigator: NavigatorFunc(func() { navigated++ })})
	s.Bootstrap(context.Background())
	require.Equal(t, Authenticated, s.State())

	s.Logout(context.Background())

	assert.Equal(t, 1, api.serverLogoutCalls)
	assert.Equal(t, 1, api.localLogoutCalls)
	assert.False(t, api.hasToken)
	_, ok := s.User()
	assert.False(t, ok)
	assert.Equal(t, Anonymous, s.State())
	assert.Equal(t, 1, navigated)
}

func TestUnauthorized_DropsUser(t *testing.T) {
	api := &fakeClient{hasToken: true, meUser: &models.User{ID: 1}}
	s := New(api, Options{})
	s.Bootstrap(context.Background())

	var got []Change
	s.Subscribe(func(c Change) { got = append(got, c) })

	api.fire401()

	_, ok := s.User()
	assert.False(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "unauthorized", got[0].Reason)

	api.fire401()
	assert.Len(t, got, 1, "no change when already anonymous")
}

func TestSetUserIf_StaleEpochIgnored(t *testing.T) {
	api := &fakeClient{hasToken: true, meUser: &models.User{ID: 1}}
	s := New(api, Options{})
	s.Bootstrap(context.Background())

	epoch := s.Epoch()
	s.Logout(context.Background())

	applied := s.SetUserIf(epoch, &models.User{ID: 1, Name: "stale"})
	assert.False(t, applied)
	_, ok := s.User()
	assert.False(t, ok)

	applied = s.SetUserIf(s.Epoch(), &models.User{ID: 3})
	assert.True(t, applied)
	u, _ := s.User()
	assert.Equal(t, int64(3), u.ID)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	s := New(&fakeClient{}, Options{})
	calls := 0
	unsubscribe := s.Subscribe(func(Change) { calls++ })

	s.SetUser(&models.User{ID: 1})
	unsubscribe()
	s.SetUser(nil)

	assert.Equal(t, 1, calls)
}

func TestClose_DetachesFromClient(t *testing.T) {
	api := &fakeClient{}
	s := New(api, Options{})
	s.SetUser(&models.User{ID: 1})
	s.Close()

	api.fire401()

	_, ok := s.User()
	assert.True(t, ok)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "anonymous", Anonymous.String())
	assert.Equal(t, "unknown", State(42).String())
}
