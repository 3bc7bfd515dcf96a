// Package db provides database helpers and models
//nolint:lll // struct tags get very long and can't be split
package db

import (
	"time"
)

// relations are foreign key ids plus an optional pointer filled by Preload. children
// never point back at their owner

type Artist struct {
	ID        int `gorm:"primary_key"`
	CreatedAt time.Time
	Name      string `gorm:"not null; unique_index" sql:"default: null"`
	Biography string `sql:"default: null"`
	PhotoURL  string `sql:"default: null"`
}

type Genre struct {
	ID          int    `gorm:"primary_key"`
	Name        string `gorm:"not null; unique_index" sql:"default: null"`
	Description string `sql:"default: null"`
}

type Album struct {
	ID          int `gorm:"primary_key"`
	CreatedAt   time.Time
	Title       string  `gorm:"not null; index" sql:"default: null"`
	Price       float64 `gorm:"not null" sql:"type:decimal(10,2)"`
	ArtURL      string  `sql:"default: null"`
	Artist      *Artist
	ArtistID    int `gorm:"not null; index" sql:"default: null; type:int REFERENCES artists(id) ON DELETE CASCADE"`
	Genre       *Genre
	GenreID     int     `gorm:"not null; index" sql:"default: null; type:int REFERENCES genres(id) ON DELETE CASCADE"`
	ReleaseYear int     `sql:"default: null"`
	Rating      float64 `sql:"type:decimal(3,1)"`
	Tracks      []*Track
}

func (a *Album) ArtistName() string {
	if a.Artist == nil {
		return ""
	}
	return a.Artist.Name
}

func (a *Album) GenreName() string {
	if a.Genre == nil {
		return ""
	}
	return a.Genre.Name
}

type Track struct {
	ID          int    `gorm:"primary_key"`
	Title       string `gorm:"not null" sql:"default: null"`
	Duration    string `sql:"default: null"`
	TrackNumber int    `sql:"default: null"`
	AlbumID     int    `gorm:"not null; index" sql:"default: null; type:int REFERENCES albums(id) ON DELETE CASCADE"`
}

type Cart struct {
	ID          int    `gorm:"primary_key"`
	SessionID   string `gorm:"not null; unique_index" sql:"default: null"`
	CreatedAt   time.Time
	LastUpdated time.Time
	Items       []*CartItem
}

func (c *Cart) FindItem(id int) *CartItem {
	for _, item := range c.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

func (c *Cart) FindAlbum(albumID int) *CartItem {
	for _, item := range c.Items {
		if item.AlbumID == albumID {
			return item
		}
	}
	return nil
}

func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	return total
}

type CartItem struct {
	ID       int `gorm:"primary_key"`
	CartID   int `gorm:"not null; unique_index:idx_cart_album" sql:"default: null; type:int REFERENCES carts(id) ON DELETE CASCADE"`
	Album    *Album
	AlbumID  int `gorm:"not null; unique_index:idx_cart_album" sql:"default: null; type:int REFERENCES albums(id) ON DELETE CASCADE"`
	Quantity int `gorm:"not null"`
	AddedAt  time.Time
}

func (ci *CartItem) Subtotal() float64 {
	if ci.Album == nil {
		return 0
	}
	return ci.Album.Price * float64(ci.Quantity)
}

const OrderStatusPending = "Pending"

type Order struct {
	ID            int       `gorm:"primary_key"`
	OrderNumber   string    `gorm:"not null; unique_index" sql:"default: null"`
	OrderDate     time.Time `gorm:"index"`
	TotalAmount   float64   `sql:"type:decimal(10,2)"`
	Status        string    `gorm:"index" sql:"default: null"`
	CustomerName  string    `sql:"default: null"`
	CustomerEmail string    `sql:"default: null"`
	Details       []*OrderDetail
}

type OrderDetail struct {
	ID        int `gorm:"primary_key"`
	OrderID   int `gorm:"not null; index" sql:"default: null; type:int REFERENCES orders(id) ON DELETE CASCADE"`
	Album     *Album
	AlbumID   int     `gorm:"not null; index" sql:"default: null; type:int REFERENCES albums(id) ON DELETE CASCADE"`
	Quantity  int     `gorm:"not null"`
	UnitPrice float64 `sql:"type:decimal(10,2)"`
}

func (od *OrderDetail) Subtotal() float64 {
	return od.UnitPrice * float64(od.Quantity)
}

type SettingKey string

const (
	SessionKey SettingKey = "session_key"
)

type Setting struct {
	Key   SettingKey `gorm:"not null; primary_key; auto_increment:false" sql:"default: null"`
	Value string     `sql:"default: null"`
}
