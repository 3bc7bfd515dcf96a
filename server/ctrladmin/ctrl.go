// Package ctrladmin serves the read only order dashboard
package ctrladmin

import (
	"github.com/musicstore/musicstore/orders"
	"github.com/musicstore/musicstore/server/ctrlbase"
)

type Controller struct {
	*ctrlbase.Controller
	orders *orders.Aggregator
}

func New(base *ctrlbase.Controller, aggregator *orders.Aggregator) *Controller {
	return &Controller{
		Controller: base,
		orders:     aggregator,
	}
}
