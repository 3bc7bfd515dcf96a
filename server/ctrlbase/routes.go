package ctrlbase

import (
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/musicstore/musicstore/server/ui"
)

func AddRoutes(c *Controller, r *mux.Router, logHTTP bool) {
	if logHTTP {
		r.Use(c.WithLogging)
	}
	r.Use(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true)))

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, c.Path("/store/browse"), http.StatusSeeOther)
	})
	r.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "OK")
	})
	r.NotFoundHandler = c.H(c.ServeNotFound)
	r.PathPrefix("/static/").Handler(http.FileServer(http.FS(ui.StaticFS)))
}
