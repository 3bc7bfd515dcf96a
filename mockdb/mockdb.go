// Package mockdb gives tests a private, migrated, in memory database and some helpers
// to fill it with catalog and order fixtures
package mockdb

import (
	"fmt"
	"testing"
	"time"

	_ "github.com/jinzhu/gorm/dialects/sqlite"

	"github.com/musicstore/musicstore/db"
)

type MockDB struct {
	t      testing.TB
	db     *db.DB
	orders int
}

func New(t testing.TB) *MockDB {
	t.Helper()

	dbc, err := db.NewMock()
	if err != nil {
		t.Fatalf("create db: %v", err)
	}
	if err := dbc.Migrate(); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	dbc.LogMode(false)
	t.Cleanup(func() {
		_ = dbc.Close()
	})

	return &MockDB{t: t, db: dbc}
}

func (m *MockDB) DB() *db.DB { return m.db }

func (m *MockDB) create(v any) {
	m.t.Helper()
	if err := m.db.Create(v).Error; err != nil {
		m.t.Fatalf("create %T: %v", v, err)
	}
}

func (m *MockDB) Artist(name string) *db.Artist {
	m.t.Helper()

	var artist db.Artist
	if err := m.db.Where(db.Artist{Name: name}).FirstOrCreate(&artist).Error; err != nil {
		m.t.Fatalf("first or create artist: %v", err)
	}
	return &artist
}

func (m *MockDB) Genre(name string) *db.Genre {
	m.t.Helper()

	var genre db.Genre
	if err := m.db.Where(db.Genre{Name: name}).FirstOrCreate(&genre).Error; err != nil {
		m.t.Fatalf("first or create genre: %v", err)
	}
	return &genre
}

func (m *MockDB) AddAlbum(artist, genre, title string, price float64) *db.Album {
	m.t.Helper()

	album := &db.Album{
		Title:       title,
		Price:       price,
		ArtistID:    m.Artist(artist).ID,
		GenreID:     m.Genre(genre).ID,
		ReleaseYear: 1970,
	}
	m.create(album)
	return album
}

// AddTracks adds tracks to an album numbered from 1, in the order given
func (m *MockDB) AddTracks(album *db.Album, titles ...string) {
	m.t.Helper()

	for i, title := range titles {
		m.create(&db.Track{
			Title:       title,
			Duration:    fmt.Sprintf("%d:%02d", 3+i%3, (i*17)%60),
			TrackNumber: i + 1,
			AlbumID:     album.ID,
		})
	}
}

// AddCatalog adds a small fixed catalog
//
//	Queen         Rock  A Night at the Opera, News of the World
//	Queen         Pop   The Works
//	Led Zeppelin  Rock  Led Zeppelin IV
//	Miles Davis   Jazz  Kind of Blue
func (m *MockDB) AddCatalog() {
	m.t.Helper()

	m.AddAlbum("Queen", "Rock", "A Night at the Opera", 9.99)
	m.AddAlbum("Queen", "Rock", "News of the World", 8.99)
	m.AddAlbum("Queen", "Pop", "The Works", 7.99)
	m.AddAlbum("Led Zeppelin", "Rock", "Led Zeppelin IV", 10.99)
	m.AddAlbum("Miles Davis", "Jazz", "Kind of Blue", 11.99)
}

func (m *MockDB) AddOrder(order *db.Order) *db.Order {
	m.t.Helper()

	m.orders++
	if order.OrderNumber == "" {
		order.OrderNumber = fmt.Sprintf("ORD-%04d", m.orders)
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	m.create(order)
	return order
}

func (m *MockDB) Count(model any) int {
	m.t.Helper()

	var count int
	if err := m.db.Model(model).Count(&count).Error; err != nil {
		m.t.Fatalf("count %T: %v", model, err)
	}
	return count
}
