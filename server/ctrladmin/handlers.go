package ctrladmin

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/musicstore/musicstore/db"
	"github.com/musicstore/musicstore/orders"
	"github.com/musicstore/musicstore/server/ctrlbase"
)

func (c *Controller) ServeHome(r *http.Request) *ctrlbase.Response {
	dash, err := c.orders.Dashboard()
	if err != nil {
		return &ctrlbase.Response{Code: 500, Err: fmt.Sprintf("building dashboard: %v", err)}
	}
	return &ctrlbase.Response{
		Template: "admin_home.tmpl",
		Data:     dash,
	}
}

type ordersData struct {
	Orders   []*db.Order
	Statuses []string
	Status   string
}

func (c *Controller) ServeOrders(r *http.Request) *ctrlbase.Response {
	data := &ordersData{Status: r.URL.Query().Get("status")}
	var err error
	if data.Orders, err = c.orders.List(data.Status); err != nil {
		return &ctrlbase.Response{Code: 500, Err: fmt.Sprintf("listing orders: %v", err)}
	}
	if data.Statuses, err = c.orders.Statuses(); err != nil {
		return &ctrlbase.Response{Code: 500, Err: fmt.Sprintf("listing statuses: %v", err)}
	}
	return &ctrlbase.Response{
		Template: "admin_orders.tmpl",
		Data:     data,
	}
}

func (c *Controller) ServeOrderDetails(r *http.Request) *ctrlbase.Response {
	orderID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return ctrlbase.NotFound("no order %q", mux.Vars(r)["id"])
	}
	order, err := c.orders.Details(orderID)
	if errors.Is(err, orders.ErrNotFound) {
		return ctrlbase.NotFound("no order %d", orderID)
	}
	if err != nil {
		return &ctrlbase.Response{Code: 500, Err: fmt.Sprintf("finding order: %v", err)}
	}
	return &ctrlbase.Response{
		Template: "admin_order.tmpl",
		Data:     order,
	}
}
