// Package ctrlbase holds the controller state and rendering shared by the store and admin
// controllers
package ctrlbase

import (
	"encoding/gob"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/sprig"
	"github.com/dustin/go-humanize"
	"github.com/gorilla/sessions"
	"github.com/oxtoacart/bpool"

	"github.com/musicstore/musicstore"
	"github.com/musicstore/musicstore/cart"
	"github.com/musicstore/musicstore/db"
	"github.com/musicstore/musicstore/server/ui"
)

type CtxKey int

const (
	CtxSession CtxKey = iota
)

const SessionName = "musicstore"

const (
	prefixLayouts = "layouts"
	prefixPages   = "pages"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"noCache": func(in string) string {
			parsed, _ := url.Parse(in)
			params := parsed.Query()
			params.Set("v", musicstore.Version)
			parsed.RawQuery = params.Encode()
			return parsed.String()
		},
		"date": func(in time.Time) string {
			return strings.ToLower(in.Format("Jan 02, 2006"))
		},
		"dateHuman": humanize.Time,
		"money": func(in float64) string {
			return fmt.Sprintf("$%.2f", in)
		},
	}
}

type Controller struct {
	DB          *db.DB
	Cart        *cart.Manager
	ProxyPrefix string
	sessDB      sessions.Store
	buffPool    *bpool.BufferPool
	templates   map[string]*template.Template
}

func New(dbc *db.DB, cartManager *cart.Manager, sessDB sessions.Store, proxyPrefix string) (*Controller, error) {
	c := &Controller{
		DB:          dbc,
		Cart:        cartManager,
		ProxyPrefix: proxyPrefix,
		sessDB:      sessDB,
		buffPool:    bpool.NewBufferPool(64),
	}

	tmplBase := template.
		New("layout").
		Funcs(sprig.FuncMap()).
		Funcs(funcMap()).       // static
		Funcs(template.FuncMap{ // from base
			"path": c.Path,
		})
	tmplBase, err := tmplBase.ParseFS(ui.TemplatesFS, prefixLayouts+"/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}
	c.templates, err = pagesFromPaths(tmplBase, prefixPages)
	if err != nil {
		return nil, fmt.Errorf("parse pages: %w", err)
	}
	return c, nil
}

// pagesFromPaths /clones/ the given template for every page in the templates fs,
// extends it, and inserts it into a new map keyed by file name
func pagesFromPaths(b *template.Template, p string) (map[string]*template.Template, error) {
	pagePaths, err := fs.Glob(ui.TemplatesFS, p+"/*.tmpl")
	if err != nil {
		return nil, err
	}
	ret := map[string]*template.Template{}
	for _, pagePath := range pagePaths {
		clone, err := b.Clone()
		if err != nil {
			return nil, err
		}
		page, err := clone.ParseFS(ui.TemplatesFS, pagePath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pagePath, err)
		}
		ret[filepath.Base(pagePath)] = page
	}
	return ret, nil
}

// Path returns a URL path with the proxy prefix included
func (c *Controller) Path(rel string) string {
	return path.Join(c.ProxyPrefix, rel)
}

type templateData struct {
	// common
	Flashes   []interface{}
	Version   string
	CartCount int
	// per page
	Page any
}

type Response struct {
	// code is 200
	Template string
	Data     any
	// code is 303
	Redirect string
	FlashN   []string // normal
	FlashW   []string // warning
	// code is >= 400
	Code int
	Err  string
}

type (
	Handler    func(r *http.Request) *Response
	HandlerRaw func(w http.ResponseWriter, r *http.Request)
)

func (c *Controller) H(h Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := h(r)
		session := Session(r)
		if session != nil {
			sessAddFlashN(session, resp.FlashN)
			sessAddFlashW(session, resp.FlashW)
			if err := session.Save(r, w); err != nil {
				http.Error(w, fmt.Sprintf("error saving session: %v", err), 500)
				return
			}
		}
		if resp.Redirect != "" {
			to := resp.Redirect
			if strings.HasPrefix(to, "/") {
				to = c.Path(to)
			}
			http.Redirect(w, r, to, http.StatusSeeOther)
			return
		}
		if resp.Err != "" {
			if resp.Code == 0 {
				resp.Code = http.StatusInternalServerError
			}
			http.Error(w, resp.Err, resp.Code)
			return
		}
		if resp.Template == "" {
			http.Error(w, "useless handler return", 500)
			return
		}

		data := &templateData{
			Version: musicstore.Version,
			Page:    resp.Data,
		}
		if session != nil {
			data.Flashes = session.Flashes()
			if err := session.Save(r, w); err != nil {
				http.Error(w, fmt.Sprintf("error saving session: %v", err), 500)
				return
			}
			data.CartCount = c.cartCount(session)
		}

		buff := c.buffPool.Get()
		defer c.buffPool.Put(buff)
		tmpl, ok := c.templates[resp.Template]
		if !ok {
			http.Error(w, fmt.Sprintf("finding template %q", resp.Template), 500)
			return
		}
		if err := tmpl.ExecuteTemplate(buff, "layout", data); err != nil {
			http.Error(w, fmt.Sprintf("executing template: %v", err), 500)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if resp.Code != 0 {
			w.WriteHeader(resp.Code)
		}
		if _, err := buff.WriteTo(w); err != nil {
			log.Printf("error writing to response buffer: %v\n", err)
		}
	})
}

func (c *Controller) HR(h HandlerRaw) http.Handler {
	return http.HandlerFunc(h)
}

// NotFound renders the not found page with a 404 status
func NotFound(format string, a ...any) *Response {
	return &Response{
		Template: "not_found.tmpl",
		Data:     fmt.Sprintf(format, a...),
		Code:     http.StatusNotFound,
	}
}

func (c *Controller) ServeNotFound(r *http.Request) *Response {
	return NotFound("there is nothing at %q", r.URL.Path)
}

// cartCount is for the navigation. it never creates a cart or a cart session id
func (c *Controller) cartCount(session *sessions.Session) int {
	sessionID, _ := session.Values[cart.SessionKey].(string)
	if sessionID == "" {
		return 0
	}
	count, err := c.Cart.ItemCount(sessionID)
	if err != nil {
		log.Printf("error counting cart items: %v", err)
		return 0
	}
	return count
}

// Session returns the request's session, added by WithSession
func Session(r *http.Request) *sessions.Session {
	session, _ := r.Context().Value(CtxSession).(*sessions.Session)
	return session
}

// ## begin utilities
// ## begin utilities
// ## begin utilities

type FlashType string

const (
	FlashNormal  = FlashType("normal")
	FlashWarning = FlashType("warning")
)

type Flash struct {
	Message string
	Type    FlashType
}

//nolint:gochecknoinits // sessions gob encode flashes, register next to the type
func init() {
	gob.Register(&Flash{})
}

func sessAddFlashN(s *sessions.Session, messages []string) {
	sessAddFlash(s, messages, FlashNormal)
}

func sessAddFlashW(s *sessions.Session, messages []string) {
	sessAddFlash(s, messages, FlashWarning)
}

func sessAddFlash(s *sessions.Session, messages []string, flashT FlashType) {
	if len(messages) == 0 {
		return
	}
	for i, message := range messages {
		if i > 6 {
			break
		}
		s.AddFlash(Flash{
			Message: message,
			Type:    flashT,
		})
	}
}

func SessLogSave(s *sessions.Session, w http.ResponseWriter, r *http.Request) {
	if err := s.Save(r, w); err != nil {
		log.Printf("error saving session: %v\n", err)
	}
}
