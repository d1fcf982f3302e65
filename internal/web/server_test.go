package web

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/session"
)

const testSecret = "test-secret-key-32-bytes-long!!"

// =============================================================================
// Test Setup Helpers
// =============================================================================

// heldScheduler never fires; typed queries stay pending.
var heldScheduler = core.SchedulerFunc(func(time.Duration, func()) func() { return func() {} })

func testProducts(n int) []core.Product {
	out := make([]core.Product, n)
	for i := range out {
		out[i] = core.Product{
			ID:       i + 1,
			Name:     fmt.Sprintf("Product %d", i+1),
			Category: []string{"Books", "Toys", "Garden"}[i%3],
			Price:    float64(i+1) * 2.5,
			Stock:    i * 3,
			Status:   core.StatusActive,
		}
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{RequestTimeout: 5 * time.Second},
		View:     config.ViewConfig{PageSize: 10, DebounceDelay: 300 * time.Millisecond},
		Session:  config.SessionConfig{Secret: testSecret, CookieName: "catalog_session", MaxAge: time.Hour},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, sched core.Scheduler) (*Server, *session.Manager) {
	t.Helper()

	mgr := session.NewManager(testProducts(25), session.Options{
		Workspace: core.WorkspaceOptions{
			PageSize:      cfg.View.PageSize,
			DebounceDelay: cfg.View.DebounceDelay,
			Scheduler:     sched,
		},
	})
	t.Cleanup(mgr.CloseAll)

	srv, err := NewServer(mgr, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, mgr
}

// client replays the session cookie like a browser would.
type client struct {
	t       *testing.T
	h       http.Handler
	cookies []*http.Cookie
	header  http.Header
}

func newClient(t *testing.T, h http.Handler) *client {
	return &client{t: t, h: h, header: http.Header{}}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var req *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		req = httptest.NewRequest(method, path, strings.NewReader(string(data)))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)

	if set := rec.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return rec
}

// snapshot performs a request and decodes the JSON view it returns.
func (c *client) snapshot(method, path string, body any) core.Snapshot {
	c.t.Helper()
	rec := c.do(method, path, body)
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())

	var snap core.Snapshot
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &snap))
	return snap
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func rowIDs(snap core.Snapshot) []int {
	ids := make([]int, len(snap.Rows))
	for i, r := range snap.Rows {
		ids[i] = r.Product.ID
	}
	return ids
}

func findRow(t *testing.T, snap core.Snapshot, id int) core.RowView {
	t.Helper()
	for _, r := range snap.Rows {
		if r.Product.ID == id {
			return r
		}
	}
	t.Fatalf("product %d not on the visible page %v", id, rowIDs(snap))
	return core.RowView{}
}

// =============================================================================
// Page and session tests
// =============================================================================

func TestIndex_RendersPageAndSetsCookie(t *testing.T) {
	srv, mgr := newTestServer(t, testConfig(), heldScheduler)
	c := newClient(t, srv.Router())

	rec := c.do(http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	for _, want := range []string{"<title>Product Catalog</title>", `id="catalog"`, "/api/events", "Product 1"} {
		assert.Contains(t, body, want)
	}
	require.Len(t, c.cookies, 1)
	assert.Equal(t, "catalog_session", c.cookies[0].Name)
	assert.Equal(t, 1, mgr.Len())

	// The cookie resolves to the same workspace.
	c.do(http.MethodGet, "/", nil)
	assert.Equal(t, 1, mgr.Len())
}

func TestSessions_AreIsolated(t *testing.T) {
	srv, mgr := newTestServer(t, testConfig(), heldScheduler)
	alice := newClient(t, srv.Router())
	bob := newClient(t, srv.Router())

	alice.snapshot(http.MethodPost, "/api/sort/price", nil)
	snap := alice.snapshot(http.MethodPost, "/api/sort/price", nil)
	assert.Equal(t, core.SortDesc, snap.State.Sort.Order)
	assert.Equal(t, 25, snap.Rows[0].Product.ID)

	other := bob.snapshot(http.MethodGet, "/api/view", nil)
	assert.False(t, other.State.Sort.Active())
	assert.Equal(t, 1, other.Rows[0].Product.ID)
	assert.Equal(t, 2, mgr.Len())
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), heldScheduler)

	rec := newClient(t, srv.Router()).do(http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 25, body["products"])
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), heldScheduler)

	rec := newClient(t, srv.Router()).do(http.MethodGet, "/", nil)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "default-src 'self'")
}

// =============================================================================
// View tests
// =============================================================================

func TestQuery_TypedIsDebouncedImmediateIsNot(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), heldScheduler)
	c := newClient(t, srv.Router())

	snap := c.snapshot(http.MethodPost, "/api/query", querySignals{Query: "product 2"})
	assert.True(t, snap.SearchPending)
	assert.Equal(t, "product 2", snap.Input)
	assert.Equal(t, 25, snap.FilteredCount, "typed query must not filter before the delay")

	snap = c.snapshot(http.MethodPost, "/api/query", querySignals{Query: "product 2", Immediate: true})
	assert.False(t, snap.SearchPending)
	assert.Equal(t, "product 2", snap.State.Query)
	// Product 2 and Product 20..25
	assert.Equal(t, 7, snap.FilteredCount)
	assert.Equal(t, 1, snap.Page)
}

func TestQuery_InvalidBody(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), heldScheduler)

	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REQ001", decodeError(t, rec).Code)
}

func TestSort_TogglesAndRejectsUnknownField(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), heldScheduler)
	c := newClient(t, srv.Router())

	snap := c.snapshot(http.MethodPost, "/api/sort/name", nil)
	assert.Equal(t, core.FieldName, snap.State.Sort.Field)
	assert.Equal(t, core.SortAsc, snap.State.Sort.Order)

	snap = c.snapshot(http.MethodPost, "/api/sort/actions", nil)
	assert.Equal(t, core.FieldName, snap.State.Sort.Field, "actions column never sorts")

	rec := c.do(http.MethodPost, "/api/sort/colour", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VIEW002", decodeError(t, rec).Code)
}

func TestPagination(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), heldScheduler)
	c := newClient(t, srv.Router())

	snap := c.snapshot(http.MethodPost, "/api/page/prev", nil)
	assert.Equal(t, 1, snap.Page)
	assert.False(t, snap.CanPrev)

	snap = c.snapshot(http.MethodPost, "/api/page/next", nil)
	assert.Equal(t, 2, snap.Page)
	assert.Equal(t, 11, snap.Rows[0].Product.ID)

	snap = c.snapshot(http.MethodPost, "/api/page/99", nil)
	assert.Equal(t, 3, snap.Page, "out-of-range pages clamp")
	assert.Len(t, snap.Rows, 5)
	assert.False(t, snap.CanNext)

	rec := c.do(http.MethodPost, "/api/page/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "REQ001", decodeError(t, rec).Code)
}

func TestMoveColumn(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), heldScheduler)
	c := newClient(t, srv.Router())

	before := c.snapshot(http.MethodGet, "/api/view", nil)
	first := before.Columns[0].Key

	snap := c.snapshot(http.MethodPost, "/api/columns/move", moveSignals{From: 0, To: 2})
	assert.Equal(t, first, snap.Columns[2].Key)
	assert.Equal(t, before.Columns[1].Key, snap.Columns[0].Key)

	// Invalid indices are a no-op.
	again := c.snapshot(http.MethodPost, "/api/columns/move", moveSignals{From: -1, To: 2})
	assert.Equal(t, snap.Columns, again.Columns)
}

// =============================================================================
// Row mutation tests
// =============================================================================

func TestEditFlow(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), heldScheduler)
	c := newClient(t, srv.Router())

	snap := c.snapshot(http.MethodPost, "/api/rows/1/edit", nil)
	require.NotNil(t, snap.Editing)
	assert.Equal(t, 1, snap.Editing.TargetID)
	assert.True(t, findRow(t, snap, 1).State.Editing)

	c.snapshot(http.MethodPatch, "/api/edit", fieldSignals{Field: "price", Value: "19.99"})
	c.snapshot(http.MethodPatch, "/api/edit", fieldSignals{Field: "status", Value: "Discontinued"})
	snap = c.snapshot(http.MethodPost, "/api/edit/save", nil)

	assert.Nil(t, snap.Editing)
	row := findRow(t, snap, 1)
	assert.Equal(t, 19.99, row.Product.Price)
	assert.Equal(t, core.StatusDiscontinued, row.Product.Status)
	assert.False(t, row.State.Editing)
}

func TestMutations_KeepCurrentPage(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), heldScheduler)
	c := newClient(t, srv.Router())

	snap := c.snapshot(http.MethodPost, "/api/page/2", nil)
	require.Equal(t, 2, snap.Page)

	c.snapshot(http.MethodPost, "/api/rows/15/edit", nil)
	c.snapshot(http.MethodPatch, "/api/edit", fieldSignals{Field: "name", Value: "Renamed"})
	snap = c.snapshot(http.MethodPost, "/api/edit/save", nil)
	assert.Equal(t, 2, snap.Page)
	assert.Equal(t, "Renamed", findRow(t, snap, 15).Product.Name)

	c.snapshot(http.MethodPost, "/api/rows/12/delete", nil)
	snap = c.snapshot(http.MethodPost, "/api/delete/confirm", nil)
	assert.Equal(t, 2, snap.Page)
	assert.NotContains(t, rowIDs(snap), 12)
	assert.Contains(t, rowIDs(snap), 21, "next row moves onto the page")
}

func TestEdit_Conflicts(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), heldScheduler)
	c := newClient(t, srv.Router())

	rec := c.do(http.MethodPost, "/api/edit/save", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EDIT002", decodeError(t, rec).Code)

	c.snapshot(http.MethodPost, "/api/rows/1/edit", nil)
	rec = c.do(http.MethodPost, "/api/rows/2/edit", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EDIT001", decodeError(t, rec).Code)

	rec = c.do(http.MethodPatch, "/api/edit", fieldSignals{Field: "colour", Value: "red"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VIEW002", decodeError(t, rec).Code)

	snap := c.snapshot(http.MethodPost, "/api/edit/cancel", nil)
	assert.Nil(t, snap.Editing)
	assert.Equal(t, 2.5, findRow(t, snap, 1).Product.Price, "cancel discards the draft")
}

func TestDeleteFlow(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), heldScheduler)
	c := newClient(t, srv.Router())

	snap := c.snapshot(http.MethodPost, "/api/rows/2/delete", nil)
	require.NotNil(t, snap.PendingDelete)
	assert.True(t, findRow(t, snap, 2).State.ConfirmingDelete)
	assert.Equal(t, 25, snap.TotalCount, "nothing is deleted before confirmation")

	snap = c.snapshot(http.MethodPost, "/api/delete/cancel", nil)
	assert.Nil(t, snap.PendingDelete)
	assert.Equal(t, 25, snap.TotalCount)

	c.snapshot(http.MethodPost, "/api/rows/2/delete", nil)
	snap = c.snapshot(http.MethodPost, "/api/delete/confirm", nil)
	assert.Equal(t, 24, snap.TotalCount)
	assert.NotContains(t, rowIDs(snap), 2)

	rec := c.do(http.MethodPost, "/api/delete/confirm", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EDIT003", decodeError(t, rec).Code)
}

func TestUnknownProduct(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), heldScheduler)
	c := newClient(t, srv.Router())

	for _, path := range []string{"/api/rows/999/edit", "/api/rows/999/delete", "/api/rows/999/cart"} {
		rec := c.do(http.MethodPost, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "VIEW001", decodeError(t, rec).Code, path)
	}
}

// =============================================================================
// Cart tests
// =============================================================================

func TestCartFlow(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), heldScheduler)
	c := newClient(t, srv.Router())

	c.snapshot(http.MethodPost, "/api/rows/3/cart", nil)
	snap := c.snapshot(http.MethodPost, "/api/rows/3/cart", nil)
	assert.Equal(t, 1, snap.Cart.Count)
	assert.Equal(t, 2, snap.Cart.Units)
	assert.Equal(t, 15.0, snap.Cart.Total)

	snap = c.snapshot(http.MethodPost, "/api/cart/3/quantity", deltaSignals{Delta: -5})
	assert.Equal(t, 1, snap.Cart.Items[0].Quantity, "quantity floors at 1")

	snap = c.snapshot(http.MethodPost, "/api/cart/toggle", nil)
	assert.True(t, snap.Cart.Open)

	rec := c.do(http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart core.CartSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	assert.Equal(t, 7.5, cart.Total)

	snap = c.snapshot(http.MethodDelete, "/api/cart/3", nil)
	assert.Zero(t, snap.Cart.Count)

	rec = c.do(http.MethodDelete, "/api/cart/3", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CART001", decodeError(t, rec).Code)

	rec = c.do(http.MethodPost, "/api/cart/3/quantity", deltaSignals{Delta: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), heldScheduler)
	c := newClient(t, srv.Router())

	rec := c.do(http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats core.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 25, stats.TotalProducts)
	assert.Equal(t, 3, stats.Categories)
	// Stock is 0, 3, 6, ... so ids 1 and 2 are below 5.
	assert.Equal(t, 2, stats.LowStock)
}

// =============================================================================
// Datastar tests
// =============================================================================

func TestDatastarRequest_PatchesApp(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), heldScheduler)
	c := newClient(t, srv.Router())
	c.header.Set("Datastar-Request", "true")

	rec := c.do(http.MethodPost, "/api/sort/price", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")
	body := rec.Body.String()
	assert.Contains(t, body, "datastar-patch-elements")
	assert.Contains(t, body, `id="catalog"`)
}

func TestDatastarRequest_ErrorPatchesAlerts(t *testing.T) {
	srv, _ := newTestServer(t, testConfig(), heldScheduler)
	c := newClient(t, srv.Router())
	c.header.Set("Datastar-Request", "true")

	rec := c.do(http.MethodPost, "/api/delete/confirm", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="alerts"`)
	assert.Contains(t, body, "EDIT003")
}

func TestEvents_StreamsDebouncedSearch(t *testing.T) {
	fire := make(chan func(), 16)
	sched := core.SchedulerFunc(func(_ time.Duration, fn func()) func() {
		fire <- fn
		return func() {}
	})
	srv, _ := newTestServer(t, testConfig(), sched)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	// Establish the session cookie.
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
		for _, ck := range cookies {
			req.AddCookie(ck)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return
		}
		defer resp.Body.Close()
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	post := func(body string) {
		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/query", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		for _, ck := range cookies {
			req.AddCookie(ck)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
	}

	// The typed query arms the debounce timer; firing it evaluates the
	// search under the session lock and pings the stream. The stream may
	// subscribe after the first ping, so retry until a patch arrives.
	deadline := time.After(5 * time.Second)
	for attempt := 0; ; attempt++ {
		post(`{"query":"product 2"}`)
		(<-fire)()

		select {
		case line, ok := <-lines:
			require.True(t, ok, "stream closed early")
			if strings.Contains(line, "datastar-patch-elements") {
				return
			}
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("no patch received from the event stream")
		}
	}
}

// =============================================================================
// Middleware wiring tests
// =============================================================================

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"k1"}
	srv, _ := newTestServer(t, cfg, heldScheduler)
	c := newClient(t, srv.Router())

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/view", nil).Code)

	c.header.Set("X-API-Key", "k1")
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/view", nil).Code)

	// Pages and health stay public.
	c.header.Del("X-API-Key")
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", nil).Code)
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	t.Cleanup(rl.stop)

	assert.True(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"), "limits are per client")
}

func TestRateLimiter_Middleware(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1}
	srv, _ := newTestServer(t, cfg, heldScheduler)
	c := newClient(t, srv.Router())

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", nil).Code)
	rec := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", core.ErrProductNotFound), http.StatusNotFound},
		{fmt.Errorf("product 1 %w", errNotInCart), http.StatusNotFound},
		{core.ErrEditInProgress, http.StatusConflict},
		{core.ErrNoEditSession, http.StatusConflict},
		{core.ErrNoPendingDelete, http.StatusConflict},
		{core.ErrUnknownField, http.StatusBadRequest},
		{fmt.Errorf("%w: eof", errInvalidRequest), http.StatusBadRequest},
		{session.ErrSessionClosed, http.StatusGone},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
