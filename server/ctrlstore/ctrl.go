// Package ctrlstore serves the storefront: browsing the catalog and the session cart
package ctrlstore

import (
	"github.com/musicstore/musicstore/catalog"
	"github.com/musicstore/musicstore/server/ctrlbase"
)

type Controller struct {
	*ctrlbase.Controller
	catalog *catalog.Browser
}

func New(base *ctrlbase.Controller, browser *catalog.Browser) *Controller {
	return &Controller{
		Controller: base,
		catalog:    browser,
	}
}
