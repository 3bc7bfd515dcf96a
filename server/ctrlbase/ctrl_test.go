package ctrlbase

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/musicstore/musicstore"
	"github.com/musicstore/musicstore/cart"
	"github.com/musicstore/musicstore/mockdb"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newController(t *testing.T, proxyPrefix string) (*mockdb.MockDB, *Controller) {
	t.Helper()

	m := mockdb.New(t)
	sessDB := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	c, err := New(m.DB(), cart.New(m.DB()), sessDB, proxyPrefix)
	require.NoError(t, err)
	return m, c
}

func TestFuncMap(t *testing.T) {
	t.Parallel()

	funcs := funcMap()
	money := funcs["money"].(func(float64) string)
	require.Equal(t, "$9.99", money(9.99))
	require.Equal(t, "$0.00", money(0))
	require.Equal(t, "$31.97", money(19.98+11.99))

	date := funcs["date"].(func(time.Time) string)
	require.Equal(t, "mar 01, 2024", date(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	noCache := funcs["noCache"].(func(string) string)
	require.Equal(t, "/static/style.css?v="+musicstore.Version, noCache("/static/style.css"))
}

func TestPath(t *testing.T) {
	t.Parallel()

	_, c := newController(t, "/music")
	require.Equal(t, "/music/store/browse", c.Path("/store/browse"))

	_, c = newController(t, "")
	require.Equal(t, "/store/browse", c.Path("/store/browse"))
}

func TestSessionKey(t *testing.T) {
	t.Parallel()

	m := mockdb.New(t)
	key, err := SessionKey(m.DB())
	require.NoError(t, err)
	require.Len(t, key, 32)

	again, err := SessionKey(m.DB())
	require.NoError(t, err)
	require.Equal(t, key, again)
}

func TestTemplatesParsed(t *testing.T) {
	t.Parallel()

	_, c := newController(t, "")
	for _, name := range []string{
		"browse.tmpl", "details.tmpl", "cart.tmpl",
		"admin_home.tmpl", "admin_orders.tmpl", "admin_order.tmpl", "not_found.tmpl",
	} {
		require.Contains(t, c.templates, name)
	}
}

func TestH(t *testing.T) {
	t.Parallel()

	_, c := newController(t, "/music")
	serve := func(h Handler) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c.WithSession(c.H(h)).ServeHTTP(rr, req)
		return rr
	}

	rr := serve(func(r *http.Request) *Response {
		return &Response{Redirect: "/cart"}
	})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, "/music/cart", rr.Header().Get("Location"))

	rr = serve(func(r *http.Request) *Response {
		return &Response{Err: "broken"}
	})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "broken", strings.TrimSpace(rr.Body.String()))

	rr = serve(func(r *http.Request) *Response {
		return NotFound("no album %d", 7)
	})
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Contains(t, rr.Body.String(), "no album 7")
	require.Contains(t, rr.Body.String(), "cart (0)")

	rr = serve(func(r *http.Request) *Response {
		return &Response{Template: "missing.tmpl"}
	})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}
