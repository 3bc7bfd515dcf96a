package ctrlstore

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/musicstore/musicstore/catalog"
	"github.com/musicstore/musicstore/server/ctrlbase"
)

type browseData struct {
	*catalog.BrowseResult
	Filter catalog.Filter
}

func (c *Controller) ServeBrowse(r *http.Request) *ctrlbase.Response {
	filter := catalog.Filter{
		Artist: r.URL.Query().Get("artist"),
		Genre:  r.URL.Query().Get("genre"),
		Search: r.URL.Query().Get("search"),
	}
	result, err := c.catalog.Browse(filter)
	if err != nil {
		return &ctrlbase.Response{Code: 500, Err: fmt.Sprintf("browsing catalog: %v", err)}
	}
	return &ctrlbase.Response{
		Template: "browse.tmpl",
		Data:     &browseData{BrowseResult: result, Filter: filter},
	}
}

func (c *Controller) ServeDetails(r *http.Request) *ctrlbase.Response {
	albumID, err := varInt(r, "id")
	if err != nil {
		return ctrlbase.NotFound("no album with id %q", mux.Vars(r)["id"])
	}
	album, err := c.catalog.Details(albumID)
	if errors.Is(err, catalog.ErrNotFound) {
		return ctrlbase.NotFound("no album with id %d", albumID)
	}
	if err != nil {
		return &ctrlbase.Response{Code: 500, Err: fmt.Sprintf("finding album: %v", err)}
	}
	return &ctrlbase.Response{
		Template: "details.tmpl",
		Data:     album,
	}
}

func varInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(mux.Vars(r)[name])
}
