package ctrlbase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/securecookie"

	"github.com/musicstore/musicstore/db"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = 200
	}
	return w.ResponseWriter.Write(b)
}

func statusToBlock(code int) string {
	var bg int
	switch {
	case 200 <= code && code <= 299:
		bg = 42 // bright green, ok
	case 300 <= code && code <= 399:
		bg = 46 // bright cyan, redirect
	case 400 <= code && code <= 499:
		bg = 43 // bright orange, client error
	case 500 <= code && code <= 599:
		bg = 41 // bright red, server error
	default:
		bg = 47 // bright white (grey)
	}
	return fmt.Sprintf("\u001b[%d;1m %d \u001b[0m", bg, code)
}

func (c *Controller) WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// first middleware, so the status is known once everything below has written
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		log.Printf("response %s %s `%s`", statusToBlock(sw.status), r.Method, r.URL)
	})
}

// WithSession loads the musicstore session into the request context. a cookie that
// no longer decodes, for example after the key changed, starts a fresh session
func (c *Controller) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := c.sessDB.Get(r, SessionName)
		if err != nil && session == nil {
			http.Error(w, fmt.Sprintf("error getting session: %v", err), 500)
			return
		}
		withSession := context.WithValue(r.Context(), CtxSession, session)
		next.ServeHTTP(w, r.WithContext(withSession))
	})
}

// SessionKey returns the cookie signing key, generating and storing one on first use
func SessionKey(dbc *db.DB) ([]byte, error) {
	encoded, err := dbc.GetSetting(db.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("get session key: %w", err)
	}
	if encoded != "" {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err == nil && len(key) > 0 {
			return key, nil
		}
		log.Printf("stored session key is invalid, generating a new one")
	}
	key := securecookie.GenerateRandomKey(32)
	if key == nil {
		return nil, errors.New("generate session key")
	}
	if err := dbc.SetSetting(db.SessionKey, base64.StdEncoding.EncodeToString(key)); err != nil {
		return nil, fmt.Errorf("set session key: %w", err)
	}
	return key, nil
}
