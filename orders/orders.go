// Package orders computes read only order statistics for the admin pages
package orders

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jinzhu/gorm"

	"github.com/musicstore/musicstore/db"
)

var ErrNotFound = errors.New("not found")

// StatusAll is the filter value that lists every order
const StatusAll = "All"

const recentCount = 5

type Dashboard struct {
	TotalOrders    int
	TotalRevenue   float64
	PendingOrders  int
	TotalCustomers int
	RecentOrders   []*db.Order
}

type Aggregator struct {
	db *db.DB
}

func New(dbc *db.DB) *Aggregator {
	return &Aggregator{db: dbc}
}

// Dashboard computes the admin summary. the customer count is a second query, so
// under concurrent writes it may not agree with the other fields
func (a *Aggregator) Dashboard() (*Dashboard, error) {
	var orders []*db.Order
	if err := a.db.Order("id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}

	dash := &Dashboard{TotalOrders: len(orders)}
	for _, order := range orders {
		dash.TotalRevenue += order.TotalAmount
		if order.Status == db.OrderStatusPending {
			dash.PendingOrders++
		}
	}

	// blank emails are stored as NULL and count as one customer
	err := a.db.
		Raw("SELECT COUNT(*) FROM (SELECT DISTINCT customer_email FROM orders)").
		Row().
		Scan(&dash.TotalCustomers)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	recent := make([]*db.Order, len(orders))
	copy(recent, orders)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].OrderDate.After(recent[j].OrderDate)
	})
	if len(recent) > recentCount {
		recent = recent[:recentCount]
	}
	dash.RecentOrders = recent

	return dash, nil
}

// List returns orders newest first. an empty status or StatusAll lists everything,
// anything else must match exactly
func (a *Aggregator) List(status string) ([]*db.Order, error) {
	q := a.db.Order("order_date DESC")
	if status != "" && status != StatusAll {
		q = q.Where("status=?", status)
	}
	var orders []*db.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	return orders, nil
}

// Statuses lists the distinct statuses in use, for the list filter
func (a *Aggregator) Statuses() ([]string, error) {
	var statuses []string
	err := a.db.
		Model(db.Order{}).
		Where("status IS NOT NULL").
		Order("status").
		Pluck("DISTINCT status", &statuses).
		Error
	if err != nil {
		return nil, fmt.Errorf("pluck statuses: %w", err)
	}
	return statuses, nil
}

func (a *Aggregator) Details(orderID int) (*db.Order, error) {
	var order db.Order
	err := a.db.
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_details.id")
		}).
		Preload("Details.Album").
		Preload("Details.Album.Artist").
		First(&order, "id=?", orderID).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &order, nil
}
