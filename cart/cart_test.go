package cart_test

import (
	"fmt"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/musicstore/musicstore/cart"
	"github.com/musicstore/musicstore/db"
	"github.com/musicstore/musicstore/mockdb"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time         { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newManager(t *testing.T) (*mockdb.MockDB, *cart.Manager, *clock) {
	t.Helper()

	m := mockdb.New(t)
	m.AddCatalog()

	c := &clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	var n int
	ids := func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	}
	return m, cart.New(m.DB(), cart.WithClock(c.Now), cart.WithIDSource(ids)), c
}

func album(t *testing.T, m *mockdb.MockDB, title string) *db.Album {
	t.Helper()
	var album db.Album
	require.NoError(t, m.DB().Where("title=?", title).First(&album).Error)
	return &album
}

func TestResolveSessionID(t *testing.T) {
	t.Parallel()

	_, manager, _ := newManager(t)

	sess := sessions.NewSession(nil, "musicstore")
	id := manager.ResolveSessionID(sess)
	require.Equal(t, "session-1", id)
	require.Equal(t, id, sess.Values[cart.SessionKey])

	// stable for the same session
	require.Equal(t, id, manager.ResolveSessionID(sess))

	other := sessions.NewSession(nil, "musicstore")
	require.Equal(t, "session-2", manager.ResolveSessionID(other))
}

func TestGetOrCreateCart(t *testing.T) {
	t.Parallel()

	m, manager, clock := newManager(t)

	created, err := manager.GetOrCreateCart("abc")
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, "abc", created.SessionID)
	require.True(t, created.CreatedAt.Equal(clock.now))
	require.True(t, created.LastUpdated.Equal(clock.now))
	require.Empty(t, created.Items)

	clock.Advance(time.Minute)
	again, err := manager.GetOrCreateCart("abc")
	require.NoError(t, err)
	require.Equal(t, created.ID, again.ID)
	require.Equal(t, 1, m.Count(db.Cart{}))
}

func TestAddSameAlbumTwice(t *testing.T) {
	t.Parallel()

	m, manager, _ := newManager(t)
	opera := album(t, m, "A Night at the Opera")

	added, err := manager.AddItem("abc", opera.ID)
	require.NoError(t, err)
	require.Equal(t, opera.Title, added.Title)
	_, err = manager.AddItem("abc", opera.ID)
	require.NoError(t, err)

	c, err := manager.GetOrCreateCart("abc")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	require.Equal(t, 2, c.Items[0].Quantity)
	require.Equal(t, 1, m.Count(db.CartItem{}))
}

func TestAddItemLoadsAlbumAndArtist(t *testing.T) {
	t.Parallel()

	m, manager, clock := newManager(t)
	blue := album(t, m, "Kind of Blue")

	_, err := manager.AddItem("abc", blue.ID)
	require.NoError(t, err)

	c, err := manager.GetOrCreateCart("abc")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)

	item := c.Items[0]
	require.NotNil(t, item.Album)
	require.Equal(t, "Kind of Blue", item.Album.Title)
	require.NotNil(t, item.Album.Artist)
	require.Equal(t, "Miles Davis", item.Album.Artist.Name)
	require.True(t, item.AddedAt.Equal(clock.now))
	require.InDelta(t, 11.99, c.Total(), 0.001)
}

func TestAddItemUnknownAlbum(t *testing.T) {
	t.Parallel()

	m, manager, _ := newManager(t)

	_, err := manager.AddItem("abc", 9999)
	require.ErrorIs(t, err, cart.ErrNotFound)

	// no cart was made for the failed add
	require.Zero(t, m.Count(db.Cart{}))
}

func TestAddItemBumpsLastUpdated(t *testing.T) {
	t.Parallel()

	m, manager, clock := newManager(t)
	opera := album(t, m, "A Night at the Opera")

	c, err := manager.GetOrCreateCart("abc")
	require.NoError(t, err)
	createdAt := c.CreatedAt

	clock.Advance(time.Hour)
	_, err = manager.AddItem("abc", opera.ID)
	require.NoError(t, err)

	c, err = manager.GetOrCreateCart("abc")
	require.NoError(t, err)
	require.True(t, c.CreatedAt.Equal(createdAt))
	require.True(t, c.LastUpdated.Equal(clock.now))
}

func TestUpdateQuantity(t *testing.T) {
	t.Parallel()

	m, manager, _ := newManager(t)
	opera := album(t, m, "A Night at the Opera")

	_, err := manager.AddItem("abc", opera.ID)
	require.NoError(t, err)
	c, err := manager.GetOrCreateCart("abc")
	require.NoError(t, err)
	itemID := c.Items[0].ID

	require.NoError(t, manager.UpdateQuantity("abc", itemID, 5))

	count, err := manager.ItemCount("abc")
	require.NoError(t, err)
	require.Equal(t, 5, count)
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	t.Parallel()

	m, manager, _ := newManager(t)
	opera := album(t, m, "A Night at the Opera")
	works := album(t, m, "The Works")

	_, err := manager.AddItem("abc", opera.ID)
	require.NoError(t, err)
	_, err = manager.AddItem("abc", works.ID)
	require.NoError(t, err)
	c, err := manager.GetOrCreateCart("abc")
	require.NoError(t, err)
	operaItem := c.FindAlbum(opera.ID)
	require.NotNil(t, operaItem)

	require.NoError(t, manager.UpdateQuantity("abc", operaItem.ID, 0))

	count, err := manager.ItemCount("abc")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	c, err = manager.GetOrCreateCart("abc")
	require.NoError(t, err)
	require.Nil(t, c.FindItem(operaItem.ID))
	require.Equal(t, 1, m.Count(db.CartItem{}))
}

func TestUpdateQuantityNegativeRemoves(t *testing.T) {
	t.Parallel()

	m, manager, _ := newManager(t)
	opera := album(t, m, "A Night at the Opera")

	_, err := manager.AddItem("abc", opera.ID)
	require.NoError(t, err)
	c, err := manager.GetOrCreateCart("abc")
	require.NoError(t, err)

	require.NoError(t, manager.UpdateQuantity("abc", c.Items[0].ID, -3))
	require.Zero(t, m.Count(db.CartItem{}))
}

func TestUpdateQuantityOtherSessionsItem(t *testing.T) {
	t.Parallel()

	m, manager, _ := newManager(t)
	opera := album(t, m, "A Night at the Opera")

	_, err := manager.AddItem("abc", opera.ID)
	require.NoError(t, err)
	c, err := manager.GetOrCreateCart("abc")
	require.NoError(t, err)
	itemID := c.Items[0].ID

	err = manager.UpdateQuantity("xyz", itemID, 4)
	require.ErrorIs(t, err, cart.ErrNotFound)
	err = manager.RemoveItem("xyz", itemID)
	require.ErrorIs(t, err, cart.ErrNotFound)

	count, err := manager.ItemCount("abc")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRemoveItemMissing(t *testing.T) {
	t.Parallel()

	m, manager, clock := newManager(t)
	opera := album(t, m, "A Night at the Opera")

	_, err := manager.AddItem("abc", opera.ID)
	require.NoError(t, err)
	before, err := manager.GetOrCreateCart("abc")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	err = manager.RemoveItem("abc", 9999)
	require.ErrorIs(t, err, cart.ErrNotFound)

	after, err := manager.GetOrCreateCart("abc")
	require.NoError(t, err)
	require.Len(t, after.Items, 1)
	require.Equal(t, 1, after.Items[0].Quantity)
	require.True(t, after.LastUpdated.Equal(before.LastUpdated))
}

func TestRemoveItem(t *testing.T) {
	t.Parallel()

	m, manager, _ := newManager(t)
	opera := album(t, m, "A Night at the Opera")

	_, err := manager.AddItem("abc", opera.ID)
	require.NoError(t, err)
	c, err := manager.GetOrCreateCart("abc")
	require.NoError(t, err)

	require.NoError(t, manager.RemoveItem("abc", c.Items[0].ID))

	c, err = manager.GetOrCreateCart("abc")
	require.NoError(t, err)
	require.Empty(t, c.Items)
}

func TestItemCountWithoutCart(t *testing.T) {
	t.Parallel()

	m, manager, _ := newManager(t)

	count, err := manager.ItemCount("nobody")
	require.NoError(t, err)
	require.Zero(t, count)
	require.Zero(t, m.Count(db.Cart{}))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	m, manager, _ := newManager(t)

	quantities := map[string]int{
		"A Night at the Opera": 1,
		"Led Zeppelin IV":      2,
		"Kind of Blue":         3,
	}
	for title, quantity := range quantities {
		a := album(t, m, title)
		for i := 0; i < quantity; i++ {
			_, err := manager.AddItem("abc", a.ID)
			require.NoError(t, err)
		}
	}

	c, err := manager.GetOrCreateCart("abc")
	require.NoError(t, err)
	require.Len(t, c.Items, 3)
	for _, item := range c.Items {
		assert.Equal(t, quantities[item.Album.Title], item.Quantity, item.Album.Title)
	}

	count, err := manager.ItemCount("abc")
	require.NoError(t, err)
	require.Equal(t, 6, count)
	require.Equal(t, 6, c.ItemCount())
}

func TestSessionsAreIndependent(t *testing.T) {
	t.Parallel()

	m, manager, _ := newManager(t)
	opera := album(t, m, "A Night at the Opera")

	_, err := manager.AddItem("abc", opera.ID)
	require.NoError(t, err)
	_, err = manager.AddItem("xyz", opera.ID)
	require.NoError(t, err)
	_, err = manager.AddItem("xyz", opera.ID)
	require.NoError(t, err)

	abc, err := manager.ItemCount("abc")
	require.NoError(t, err)
	xyz, err := manager.ItemCount("xyz")
	require.NoError(t, err)
	require.Equal(t, 1, abc)
	require.Equal(t, 2, xyz)
	require.Equal(t, 2, m.Count(db.Cart{}))
}

func TestAddedMessage(t *testing.T) {
	t.Parallel()

	msg := cart.AddedMessage(&db.Album{Title: "Kind of Blue"})
	require.Equal(t, "Kind of Blue has been added to your cart!", msg)
}
