// Package cart keeps one shopping cart per anonymous session
package cart

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/jinzhu/gorm"

	"github.com/musicstore/musicstore/db"
)

var ErrNotFound = errors.New("not found")

// SessionKey is the session value holding the cart's session id
const SessionKey = "cart_session_id"

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithIDSource(newID func() string) Option {
	return func(m *Manager) { m.newID = newID }
}

// Manager mediates every cart mutation. there is no locking, two requests for the
// same session racing on a quantity are last write wins
type Manager struct {
	db    *db.DB
	now   func() time.Time
	newID func() string
}

func New(dbc *db.DB, opts ...Option) *Manager {
	m := &Manager{
		db:    dbc,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ResolveSessionID returns the cart session id stored in sess, generating a new one if
// needed. the caller is responsible for saving the session
func (m *Manager) ResolveSessionID(sess *sessions.Session) string {
	if id, _ := sess.Values[SessionKey].(string); id != "" {
		return id
	}
	id := m.newID()
	sess.Values[SessionKey] = id
	return id
}

func (m *Manager) GetOrCreateCart(sessionID string) (*db.Cart, error) {
	var cart db.Cart
	err := m.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.id")
		}).
		Preload("Items.Album").
		Preload("Items.Album.Artist").
		Where("session_id=?", sessionID).
		First(&cart).
		Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find cart: %w", err)
	}

	now := m.now()
	cart = db.Cart{
		SessionID:   sessionID,
		CreatedAt:   now,
		LastUpdated: now,
	}
	if err := m.db.Create(&cart).Error; err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return &cart, nil
}

// AddItem puts one more of the album in the cart. the album is returned so the caller
// can confirm with AddedMessage
func (m *Manager) AddItem(sessionID string, albumID int) (*db.Album, error) {
	var album db.Album
	if err := m.db.First(&album, "id=?", albumID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("album %d: %w", albumID, ErrNotFound)
		}
		return nil, fmt.Errorf("find album: %w", err)
	}

	cart, err := m.GetOrCreateCart(sessionID)
	if err != nil {
		return nil, err
	}

	now := m.now()
	if item := cart.FindAlbum(albumID); item != nil {
		item.Quantity++
		if err := m.db.Model(item).UpdateColumn("quantity", item.Quantity).Error; err != nil {
			return nil, fmt.Errorf("increment quantity: %w", err)
		}
	} else {
		item := &db.CartItem{
			CartID:   cart.ID,
			AlbumID:  albumID,
			Quantity: 1,
			AddedAt:  now,
		}
		if err := m.db.Create(item).Error; err != nil {
			return nil, fmt.Errorf("create item: %w", err)
		}
	}

	if err := m.touch(cart, now); err != nil {
		return nil, err
	}
	return &album, nil
}

// UpdateQuantity sets the quantity of an item in the session's cart. a quantity of zero
// or less removes the item
func (m *Manager) UpdateQuantity(sessionID string, itemID int, quantity int) error {
	if quantity <= 0 {
		return m.RemoveItem(sessionID, itemID)
	}

	cart, err := m.GetOrCreateCart(sessionID)
	if err != nil {
		return err
	}
	item := cart.FindItem(itemID)
	if item == nil {
		return fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}

	item.Quantity = quantity
	if err := m.db.Model(item).UpdateColumn("quantity", quantity).Error; err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	return m.touch(cart, m.now())
}

func (m *Manager) RemoveItem(sessionID string, itemID int) error {
	cart, err := m.GetOrCreateCart(sessionID)
	if err != nil {
		return err
	}
	item := cart.FindItem(itemID)
	if item == nil {
		return fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}

	if err := m.db.Delete(item).Error; err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return m.touch(cart, m.now())
}

// ItemCount sums the quantities in the session's cart. it does not create a cart
func (m *Manager) ItemCount(sessionID string) (int, error) {
	var count int
	err := m.db.
		Model(db.CartItem{}).
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Joins("JOIN carts ON carts.id=cart_items.cart_id").
		Where("carts.session_id=?", sessionID).
		Row().
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sum quantities: %w", err)
	}
	return count, nil
}

func (m *Manager) touch(cart *db.Cart, now time.Time) error {
	cart.LastUpdated = now
	if err := m.db.Model(cart).UpdateColumn("last_updated", now).Error; err != nil {
		return fmt.Errorf("update cart time: %w", err)
	}
	return nil
}

func AddedMessage(album *db.Album) string {
	return fmt.Sprintf("%s has been added to your cart!", album.Title)
}
