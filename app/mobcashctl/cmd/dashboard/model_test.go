package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/config"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/form"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/querycache"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/resources"
)

type request struct {
	method string
	path   string
	query  url.Values
	body   []byte
}

type fakeAPI struct {
	mu       sync.Mutex
	requests []request
}

func (f *fakeAPI) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, request{method: r.Method, path: r.URL.Path, query: r.URL.Query(), body: body})
}

func (f *fakeAPI) all() []request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]request(nil), f.requests...)
}

func (f *fakeAPI) count(method, path string) int {
	n := 0
	for _, r := range f.all() {
		if r.method == method && r.path == path {
			n++
		}
	}
	return n
}

const usersPage = `{"count":25,"next":"https://api/x?page=2","previous":null,"results":[
	{"id":"u1","first_name":"Alice","last_name":"Martin","email":"alice@example.com","is_active":true},
	{"id":"u2","username":"bob","email":"bob@example.com","referral_code":"BOB42"}]}`

const emptyPage = `{"count":0,"next":null,"previous":null,"results":[]}`

func newTestModel(t *testing.T) (Model, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.record(r)
		switch {
		case r.Method == http.MethodPost && r.URL.Path == resources.RechargesPath:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":7,"amount":"200000"}`))
		case r.URL.Path == resources.DefaultUsersPath:
			_, _ = w.Write([]byte(usersPage))
		default:
			_, _ = w.Write([]byte(emptyPage))
		}
	}))
	t.Cleanup(srv.Close)

	console, err := mobcashgo.New(mobcashgo.Options{Config: &config.Config{APIURL: srv.URL, PageSize: 10}})
	require.NoError(t, err)
	t.Cleanup(console.Close)

	m := New(context.Background(), console)
	t.Cleanup(m.stop)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, api
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, key string) Model {
	t.Helper()
	switch key {
	case "enter":
		return update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	}
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
}

// settle waits until a fetch of resource completes and feeds the event back.
func settle(t *testing.T, m Model, resource string) Model {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-m.storeEvents:
			if ev.Key.Resource == resource && (ev.Kind == querycache.EventUpdated || ev.Kind == querycache.EventFailed) {
				return update(t, m, storeEventMsg(ev))
			}
		case <-deadline:
			t.Fatalf("no completed fetch for %s", resource)
		}
	}
}

func TestDashboard_LoadsUsers(t *testing.T) {
	m, api := newTestModel(t)

	m = update(t, m, refreshMsg{})
	assert.True(t, m.current.loading())

	m = settle(t, m, resources.ResourceUsers)
	require.Len(t, m.current.rows, 2)
	assert.Equal(t, "Alice Martin", m.current.rows[0][0])
	assert.Equal(t, "bob", m.current.rows[1][0])
	assert.Equal(t, []string{"", "BOB42"}, m.current.copyable)
	assert.Equal(t, 25, m.current.count)
	assert.True(t, m.current.hasNext)
	assert.False(t, m.current.hasPrev)

	reqs := api.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "1", reqs[0].query.Get("page"))
	assert.Equal(t, "10", reqs[0].query.Get("page_size"))
	assert.Contains(t, m.View(), "Page 1/3")
}

func TestDashboard_NextPage(t *testing.T) {
	m, api := newTestModel(t)
	m = settle(t, update(t, m, refreshMsg{}), resources.ResourceUsers)

	m = press(t, m, "n")
	assert.Equal(t, 2, m.states[TabUsers].page)
	settle(t, m, resources.ResourceUsers)

	reqs := api.all()
	require.Len(t, reqs, 2)
	assert.Equal(t, "2", reqs[1].query.Get("page"))
}

func TestDashboard_PreviousPageDisabledOnFirstPage(t *testing.T) {
	m, _ := newTestModel(t)
	m = settle(t, update(t, m, refreshMsg{}), resources.ResourceUsers)

	m = press(t, m, "p")
	assert.Equal(t, 1, m.states[TabUsers].page)
}

func TestDashboard_Search(t *testing.T) {
	m, api := newTestModel(t)
	m = settle(t, update(t, m, refreshMsg{}), resources.ResourceUsers)

	m = press(t, m, "/")
	require.True(t, m.searching)
	m = press(t, m, "alice")
	m = press(t, m, "enter")

	assert.False(t, m.searching)
	assert.Equal(t, "alice", m.states[TabUsers].search)
	settle(t, m, resources.ResourceUsers)

	reqs := api.all()
	assert.Equal(t, "alice", reqs[len(reqs)-1].query.Get("search"))
}

func TestDashboard_RefreshRefetches(t *testing.T) {
	m, api := newTestModel(t)
	m = settle(t, update(t, m, refreshMsg{}), resources.ResourceUsers)

	m = press(t, m, "r")
	settle(t, m, resources.ResourceUsers)
	assert.Equal(t, 2, api.count(http.MethodGet, resources.DefaultUsersPath))
}

func TestDashboard_PlatformEnableFilter(t *testing.T) {
	m, api := newTestModel(t)

	m = press(t, m, "3")
	assert.Equal(t, TabPlatforms, m.active)
	m = settle(t, m, resources.ResourcePlatforms)

	m = press(t, m, "e")
	require.NotNil(t, m.states[TabPlatforms].enable)
	settle(t, m, resources.ResourcePlatforms)

	reqs := api.all()
	assert.Equal(t, "true", reqs[len(reqs)-1].query.Get("enable"))
}

func TestNextEnableFilter(t *testing.T) {
	first := nextEnableFilter(nil)
	require.NotNil(t, first)
	assert.True(t, *first)

	second := nextEnableFilter(first)
	require.NotNil(t, second)
	assert.False(t, *second)

	assert.Nil(t, nextEnableFilter(second))
}

func TestDashboard_RechargeDialogRejectsBadAmount(t *testing.T) {
	m, api := newTestModel(t)

	m = press(t, m, "c")
	require.NotNil(t, m.dialog)
	assert.Equal(t, TabRecharges, m.active)

	m.dialog.inputs[fieldAmount].SetValue("-5")
	m.dialog.inputs[fieldReference].SetValue("TX123")
	cmd := m.dialog.submit(m.ctx)
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	require.NotNil(t, m.dialog, "dialog stays open")
	assert.Equal(t, form.MsgAmountNotPositive, m.dialog.message)
	assert.True(t, m.dialog.messageErr)
	assert.Zero(t, api.count(http.MethodPost, resources.RechargesPath))
}

func TestDashboard_RechargeDialogSubmits(t *testing.T) {
	m, api := newTestModel(t)

	m = press(t, m, "c")
	require.NotNil(t, m.dialog)
	m.dialog.inputs[fieldAmount].SetValue("200000")
	m.dialog.inputs[fieldReference].SetValue("TX123")

	cmd := m.dialog.submit(m.ctx)
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	assert.Nil(t, m.dialog)

	require.Equal(t, 1, api.count(http.MethodPost, resources.RechargesPath))
	var sent map[string]any
	for _, r := range api.all() {
		if r.method == http.MethodPost {
			require.NoError(t, json.Unmarshal(r.body, &sent))
		}
	}
	assert.Equal(t, "200000", sent["amount"])
	assert.Equal(t, "MOBILE_MONEY", sent["payment_method"])
	assert.NotContains(t, sent, "payment_proof")

	select {
	case n := <-m.notes:
		m = update(t, m, noteMsg(n))
		require.NotNil(t, m.toast)
		assert.Equal(t, resources.MsgRechargeCreated, m.toast.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification")
	}
}

func TestDashboard_DialogEscCloses(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(t, m, "c")
	require.NotNil(t, m.dialog)
	m = press(t, m, "esc")
	assert.Nil(t, m.dialog)
}

func TestDashboard_ToastExpires(t *testing.T) {
	m, _ := newTestModel(t)

	m.console.Notifier.Success(resources.ResourcePlatforms, "create", resources.MsgPlatformCreated)
	n := <-m.notes
	m = update(t, m, noteMsg(n))
	require.NotNil(t, m.toast)

	m = update(t, m, toastExpiredMsg{id: "other"})
	assert.NotNil(t, m.toast)
	m = update(t, m, toastExpiredMsg{id: n.ID})
	assert.Nil(t, m.toast)
}
