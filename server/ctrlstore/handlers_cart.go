package ctrlstore

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/musicstore/musicstore/cart"
	"github.com/musicstore/musicstore/server/ctrlbase"
)

func (c *Controller) ServeCart(r *http.Request) *ctrlbase.Response {
	sessionID := c.Cart.ResolveSessionID(ctrlbase.Session(r))
	userCart, err := c.Cart.GetOrCreateCart(sessionID)
	if err != nil {
		return &ctrlbase.Response{Code: 500, Err: fmt.Sprintf("getting cart: %v", err)}
	}
	return &ctrlbase.Response{
		Template: "cart.tmpl",
		Data:     userCart,
	}
}

func (c *Controller) ServeCartAdd(r *http.Request) *ctrlbase.Response {
	albumID, err := varInt(r, "id")
	if err != nil {
		return ctrlbase.NotFound("no album with id %q", r.URL.Path)
	}
	sessionID := c.Cart.ResolveSessionID(ctrlbase.Session(r))
	album, err := c.Cart.AddItem(sessionID, albumID)
	if errors.Is(err, cart.ErrNotFound) {
		return ctrlbase.NotFound("no album with id %d", albumID)
	}
	if err != nil {
		return &ctrlbase.Response{Code: 500, Err: fmt.Sprintf("adding to cart: %v", err)}
	}
	return &ctrlbase.Response{
		Redirect: "/cart",
		FlashN:   []string{cart.AddedMessage(album)},
	}
}

func (c *Controller) ServeCartUpdate(r *http.Request) *ctrlbase.Response {
	itemID, err := varInt(r, "id")
	if err != nil {
		return ctrlbase.NotFound("no cart item %q", r.URL.Path)
	}
	// a cleared or unreadable quantity is zero, which removes the item
	quantity, _ := strconv.Atoi(r.URL.Query().Get("quantity"))
	sessionID := c.Cart.ResolveSessionID(ctrlbase.Session(r))
	err = c.Cart.UpdateQuantity(sessionID, itemID, quantity)
	if errors.Is(err, cart.ErrNotFound) {
		return ctrlbase.NotFound("no cart item %d", itemID)
	}
	if err != nil {
		return &ctrlbase.Response{Code: 500, Err: fmt.Sprintf("updating cart: %v", err)}
	}
	return &ctrlbase.Response{Redirect: "/cart"}
}

func (c *Controller) ServeCartRemove(r *http.Request) *ctrlbase.Response {
	itemID, err := varInt(r, "id")
	if err != nil {
		return ctrlbase.NotFound("no cart item %q", r.URL.Path)
	}
	sessionID := c.Cart.ResolveSessionID(ctrlbase.Session(r))
	err = c.Cart.RemoveItem(sessionID, itemID)
	if errors.Is(err, cart.ErrNotFound) {
		return ctrlbase.NotFound("no cart item %d", itemID)
	}
	if err != nil {
		return &ctrlbase.Response{Code: 500, Err: fmt.Sprintf("removing from cart: %v", err)}
	}
	return &ctrlbase.Response{
		Redirect: "/cart",
		FlashN:   []string{"the item has been removed from your cart"},
	}
}

// ServeCartCount writes the number of items in the cart as plain text
func (c *Controller) ServeCartCount(w http.ResponseWriter, r *http.Request) {
	session := ctrlbase.Session(r)
	sessionID := c.Cart.ResolveSessionID(session)
	ctrlbase.SessLogSave(session, w, r)
	count, err := c.Cart.ItemCount(sessionID)
	if err != nil {
		log.Printf("error counting cart items: %v", err)
		http.Error(w, "error counting cart items", 500)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, count)
}
