package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/localnerve/equirecords/internal/types"
)

var testNow = time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)

// fakeStore records the paths it was asked to remove
type fakeStore struct {
	removed  []string
	folders  []string
	horses   []string
	failWith error
}

func (s *fakeStore) Remove(p string) error {
	s.removed = append(s.removed, p)
	return s.failWith
}

func (s *fakeStore) Validate(p string) error {
	if !strings.HasPrefix(p, "/uploads/") {
		return types.BadRequest("ValidationError", "path %q is not an upload", p)
	}
	return nil
}

func (s *fakeStore) RemoveRecordFolder(_, p string) error {
	s.folders = append(s.folders, p)
	return s.failWith
}

func (s *fakeStore) RemoveHorse(id string) error {
	s.horses = append(s.horses, id)
	return s.failWith
}

// fakeAuth is an in-memory identity provider
type fakeAuth struct {
	mu       sync.Mutex
	users    map[string]string // email -> password
	roles    map[string][]string
	sessions map[string]string // cookie -> user id
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		users:    map[string]string{},
		roles:    map[string][]string{},
		sessions: map[string]string{},
	}
}

func (a *fakeAuth) Init(string, string) error { return nil }

func (a *fakeAuth) SignUp(email, password string, roles []string) (*Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.users[email]; ok {
		return nil, errors.New("user already exists")
	}
	a.users[email] = password
	a.roles[email] = roles
	return &Identity{UserID: "uid-" + email, Email: email, AccessToken: "token-" + email}, nil
}

func (a *fakeAuth) Login(email, password string) (*Identity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if pw, ok := a.users[email]; !ok || pw != password {
		return nil, errors.New("bad user credentials")
	}
	return &Identity{UserID: "uid-" + email, Email: email, AccessToken: "token-" + email}, nil
}

func (a *fakeAuth) ValidateSession(cookie string) (string, error) {
	id, ok := a.sessions[cookie]
	if !ok {
		return "", errors.New("session is not valid")
	}
	return id, nil
}

// memCache is a JSON cache held in memory
type memCache struct {
	mu     sync.Mutex
	values map[string][]byte
	sets   int
}

func newMemCache() *memCache { return &memCache{values: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = b
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func (c *memCache) Ping(context.Context) error { return nil }
func (c *memCache) Close() error               { return nil }

func requireCode(t *testing.T, err error, code int) *types.CustomError {
	t.Helper()
	require.Error(t, err)
	ce, ok := types.AsCustomError(err)
	require.True(t, ok, "expected a CustomError, got %v", err)
	require.Equal(t, code, ce.Code)
	return ce
}

func strPtr(s string) *string { return &s }
