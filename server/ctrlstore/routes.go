package ctrlstore

import (
	"github.com/gorilla/mux"
)

func AddRoutes(c *Controller, r *mux.Router) {
	routStore := r.PathPrefix("/store").Subrouter()
	routStore.Use(c.WithSession)
	routStore.Handle("/browse", c.H(c.ServeBrowse))
	routStore.Handle("/details/{id:[0-9]+}", c.H(c.ServeDetails))

	routCart := r.PathPrefix("/cart").Subrouter()
	routCart.Use(c.WithSession)
	routCart.Handle("", c.H(c.ServeCart))
	routCart.Handle("/", c.H(c.ServeCart))
	routCart.Handle("/add/{id:[0-9]+}", c.H(c.ServeCartAdd))
	routCart.Handle("/update/{id:[0-9]+}", c.H(c.ServeCartUpdate))
	routCart.Handle("/remove/{id:[0-9]+}", c.H(c.ServeCartRemove))
	routCart.Handle("/count", c.HR(c.ServeCartCount))
}
