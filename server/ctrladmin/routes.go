package ctrladmin

import (
	"github.com/gorilla/mux"
)

func AddRoutes(c *Controller, r *mux.Router) {
	routAdmin := r.PathPrefix("/admin").Subrouter()
	routAdmin.Use(c.WithSession)
	routAdmin.Handle("", c.H(c.ServeHome))
	routAdmin.Handle("/", c.H(c.ServeHome))
	routAdmin.Handle("/orders", c.H(c.ServeOrders))
	routAdmin.Handle("/orders/{id:[0-9]+}", c.H(c.ServeOrderDetails))
}
