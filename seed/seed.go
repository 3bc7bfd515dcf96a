// Package seed fills a store from a TOML file describing artists, genres, albums, and
// past orders. albums and order lines refer to other rows by name or title
package seed

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jinzhu/gorm"

	"github.com/musicstore/musicstore/db"
)

var ErrUnknownRef = errors.New("unknown reference")

type File struct {
	Genres  []Genre  `toml:"genre"`
	Artists []Artist `toml:"artist"`
	Albums  []Album  `toml:"album"`
	Orders  []Order  `toml:"order"`
}

type Genre struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
}

type Artist struct {
	Name      string `toml:"name"`
	Biography string `toml:"biography"`
	PhotoURL  string `toml:"photo_url"`
}

type Album struct {
	Title       string  `toml:"title"`
	Artist      string  `toml:"artist"`
	Genre       string  `toml:"genre"`
	Price       float64 `toml:"price"`
	ArtURL      string  `toml:"art_url"`
	ReleaseYear int     `toml:"release_year"`
	Rating      float64 `toml:"rating"`
	Tracks      []Track `toml:"track"`
}

type Track struct {
	Title    string `toml:"title"`
	Duration string `toml:"duration"`
}

type Order struct {
	Number        string      `toml:"number"`
	Date          time.Time   `toml:"date"`
	Status        string      `toml:"status"`
	CustomerName  string      `toml:"customer_name"`
	CustomerEmail string      `toml:"customer_email"`
	Lines         []OrderLine `toml:"line"`
}

type OrderLine struct {
	Album    string  `toml:"album"`
	Quantity int     `toml:"quantity"`
	Price    float64 `toml:"price"`
}

func Decode(r io.Reader) (*File, error) {
	var f File
	meta, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return &f, nil
}

type Stats struct {
	Genres, Artists, Albums, Tracks, Orders int
}

// Apply writes the file in one transaction. rows that already exist by name, title, or
// order number are left alone so a file can be applied more than once
func Apply(dbc *db.DB, f *File) (Stats, error) {
	var stats Stats
	err := dbc.Transaction(func(tx *db.DB) error {
		genres := map[string]int{}
		for _, g := range f.Genres {
			row := db.Genre{Name: g.Name, Description: g.Description}
			created, err := firstOrCreate(tx, &row, db.Genre{Name: g.Name})
			if err != nil {
				return fmt.Errorf("genre %q: %w", g.Name, err)
			}
			if created {
				stats.Genres++
			}
			genres[g.Name] = row.ID
		}

		artists := map[string]int{}
		for _, a := range f.Artists {
			row := db.Artist{Name: a.Name, Biography: a.Biography, PhotoURL: a.PhotoURL}
			created, err := firstOrCreate(tx, &row, db.Artist{Name: a.Name})
			if err != nil {
				return fmt.Errorf("artist %q: %w", a.Name, err)
			}
			if created {
				stats.Artists++
			}
			artists[a.Name] = row.ID
		}

		albums := map[string]*db.Album{}
		for _, a := range f.Albums {
			artistID, ok := artists[a.Artist]
			if !ok {
				return fmt.Errorf("album %q artist %q: %w", a.Title, a.Artist, ErrUnknownRef)
			}
			genreID, ok := genres[a.Genre]
			if !ok {
				return fmt.Errorf("album %q genre %q: %w", a.Title, a.Genre, ErrUnknownRef)
			}
			row := db.Album{
				Title:       a.Title,
				Price:       a.Price,
				ArtURL:      a.ArtURL,
				ArtistID:    artistID,
				GenreID:     genreID,
				ReleaseYear: a.ReleaseYear,
				Rating:      a.Rating,
			}
			created, err := firstOrCreate(tx, &row, db.Album{Title: a.Title, ArtistID: artistID})
			if err != nil {
				return fmt.Errorf("album %q: %w", a.Title, err)
			}
			albums[a.Title] = &row
			if !created {
				continue
			}
			stats.Albums++
			for i, t := range a.Tracks {
				track := db.Track{
					Title:       t.Title,
					Duration:    t.Duration,
					TrackNumber: i + 1,
					AlbumID:     row.ID,
				}
				if err := tx.Create(&track).Error; err != nil {
					return fmt.Errorf("album %q track %q: %w", a.Title, t.Title, err)
				}
				stats.Tracks++
			}
		}

		for _, o := range f.Orders {
			row := db.Order{
				OrderNumber:   o.Number,
				OrderDate:     o.Date,
				Status:        o.Status,
				CustomerName:  o.CustomerName,
				CustomerEmail: o.CustomerEmail,
			}
			for _, l := range o.Lines {
				album, ok := albums[l.Album]
				if !ok {
					return fmt.Errorf("order %q album %q: %w", o.Number, l.Album, ErrUnknownRef)
				}
				price := l.Price
				if price == 0 {
					price = album.Price
				}
				row.Details = append(row.Details, &db.OrderDetail{
					AlbumID:   album.ID,
					Quantity:  l.Quantity,
					UnitPrice: price,
				})
				row.TotalAmount += price * float64(l.Quantity)
			}
			created, err := firstOrCreate(tx, &row, db.Order{OrderNumber: o.Number})
			if err != nil {
				return fmt.Errorf("order %q: %w", o.Number, err)
			}
			if created {
				stats.Orders++
			}
		}
		return nil
	})
	return stats, err
}

// firstOrCreate loads the row matching where into row, or creates row if there is none
func firstOrCreate(tx *db.DB, row any, where any) (bool, error) {
	err := tx.Where(where).First(row).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := tx.Create(row).Error; err != nil {
		return false, err
	}
	return true, nil
}
