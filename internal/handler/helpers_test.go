package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"

	"github.com/steve2482/simspeedserver/internal/model"
	"github.com/steve2482/simspeedserver/internal/repository"
)

type fakeDirectory struct {
	channels []model.Channel
}

func (f *fakeDirectory) ListChannels(ctx context.Context) ([]model.Channel, error) {
	return f.channels, nil
}

func (f *fakeDirectory) FindByName(ctx context.Context, name string) (*model.Channel, error) {
	for _, ch := range f.channels {
		if ch.Name == name {
			return &ch, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memStore struct {
	mu        sync.Mutex
	users     map[string]*model.User
	counters  map[string]int
	favorites map[string][]string
}

func newMemStore(channels ...string) *memStore {
	m := &memStore{
		users:     map[string]*model.User{},
		counters:  map[string]int{},
		favorites: map[string][]string{},
	}
	for _, c := range channels {
		m.counters[c] = 0
	}
	return m
}

func (m *memStore) Create(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.Email == u.Email || e.UserName == u.UserName {
			return repository.ErrDuplicate
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) FindByUserName(ctx context.Context, userName string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.UserName == userName {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Add(ctx context.Context, userID, channelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.counters[channelName]; !ok {
		return repository.ErrNotFound
	}
	m.counters[channelName]++
	m.favorites[userID] = append(m.favorites[userID], channelName)
	return nil
}

func (m *memStore) Remove(ctx context.Context, userID, channelName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.counters[channelName]; !ok {
		return false, repository.ErrNotFound
	}
	list := m.favorites[userID]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i] == channelName {
			m.favorites[userID] = append(list[:i:i], list[i+1:]...)
			m.counters[channelName]--
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListByUser(ctx context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.favorites[userID]...), nil
}

func (m *memStore) counter(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env.Error.Code
}
