// Package catalog filters and looks up albums in the store
package catalog

import (
	"errors"
	"fmt"

	"github.com/jinzhu/gorm"

	"github.com/musicstore/musicstore/db"
)

var ErrNotFound = errors.New("not found")

// Filter narrows a browse. empty fields are ignored, set fields are ANDed
type Filter struct {
	Artist string // exact artist name
	Genre  string // exact genre name
	Search string // substring of the album title
}

type BrowseResult struct {
	Title   string
	Albums  []*db.Album
	Artists []*db.Artist
	Genres  []*db.Genre
}

type filterKind int

const (
	byNone filterKind = iota
	byArtist
	byGenre
	byArtistAndGenre
)

func (f Filter) kind() filterKind {
	switch {
	case f.Artist != "" && f.Genre != "":
		return byArtistAndGenre
	case f.Artist != "":
		return byArtist
	case f.Genre != "":
		return byGenre
	default:
		return byNone
	}
}

// keyed by which of artist and genre are set
var titleFormats = map[filterKind]func(f Filter) string{
	byNone:           func(Filter) string { return "All Albums" },
	byArtist:         func(f Filter) string { return fmt.Sprintf("Albums by %s", f.Artist) },
	byGenre:          func(f Filter) string { return fmt.Sprintf("%s Albums", f.Genre) },
	byArtistAndGenre: func(f Filter) string { return fmt.Sprintf("Albums by %s, %s Albums", f.Artist, f.Genre) },
}

// Title is the heading for a browse with this filter. the search text never changes it
func (f Filter) Title() string {
	return titleFormats[f.kind()](f)
}

type Browser struct {
	db *db.DB
}

func New(dbc *db.DB) *Browser {
	return &Browser{db: dbc}
}

func (b *Browser) Browse(filter Filter) (*BrowseResult, error) {
	q := b.db.
		Select("albums.*").
		Preload("Artist").
		Preload("Genre").
		Joins("JOIN artists ON artists.id=albums.artist_id").
		Joins("JOIN genres ON genres.id=albums.genre_id")
	if filter.Artist != "" {
		q = q.Where("artists.name=?", filter.Artist)
	}
	if filter.Genre != "" {
		q = q.Where("genres.name=?", filter.Genre)
	}
	if filter.Search != "" {
		q = q.Where("instr(albums.title, ?) > 0", filter.Search)
	}

	result := &BrowseResult{Title: filter.Title()}
	if err := q.Order("albums.id").Find(&result.Albums).Error; err != nil {
		return nil, fmt.Errorf("find albums: %w", err)
	}
	if err := b.db.Order("name").Find(&result.Artists).Error; err != nil {
		return nil, fmt.Errorf("find artists: %w", err)
	}
	if err := b.db.Order("name").Find(&result.Genres).Error; err != nil {
		return nil, fmt.Errorf("find genres: %w", err)
	}
	return result, nil
}

// Details returns an album with its artist, genre, and tracks in track number order
func (b *Browser) Details(albumID int) (*db.Album, error) {
	var album db.Album
	err := b.db.
		Preload("Artist").
		Preload("Genre").
		Preload("Tracks", func(db *gorm.DB) *gorm.DB {
			return db.Order("tracks.track_number, tracks.id")
		}).
		First(&album, "id=?", albumID).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("album %d: %w", albumID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find album: %w", err)
	}
	return &album, nil
}
