// Package orm provides a thin fluent wrapper around the shared GORM handle.
// Repositories use it instead of touching database.DB directly, which keeps
// cache integration and transaction plumbing in one place.
package orm

import (
	"time"

	"github.com/kopisahaja/kopisahaja/pkg/cache"
	"github.com/kopisahaja/kopisahaja/pkg/database"
	"gorm.io/gorm"
)

// Query wraps a gorm.DB chain. Each chaining method returns a new Query so
// partial chains can be reused safely.
type Query struct {
	db *gorm.DB
}

// DB starts a query chain on the shared connection.
func DB() *Query {
	return &Query{db: database.DB}
}

// Wrap adapts an existing gorm handle (e.g. a transaction) into a Query.
func Wrap(db *gorm.DB) *Query {
	return &Query{db: db}
}

// Gorm exposes the underlying handle for the rare operation the wrapper
// does not cover.
func (q *Query) Gorm() *gorm.DB { return q.db }

func (q *Query) Model(v interface{}) *Query {
	return &Query{db: q.db.Model(v)}
}

func (q *Query) Where(query string, args ...interface{}) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Joins(join string, args ...interface{}) *Query {
	return &Query{db: q.db.Joins(join, args...)}
}

func (q *Query) Select(columns string, args ...interface{}) *Query {
	return &Query{db: q.db.Select(columns, args...)}
}

func (q *Query) Order(value string) *Query {
	return &Query{db: q.db.Order(value)}
}

func (q *Query) Limit(n int) *Query {
	return &Query{db: q.db.Limit(n)}
}

func (q *Query) Preload(association string, args ...interface{}) *Query {
	return &Query{db: q.db.Preload(association, args...)}
}

// Get runs the chain and scans all rows into dest.
func (q *Query) Get(dest interface{}) error {
	return q.db.Find(dest).Error
}

// First scans the first matching row into dest. Returns
// gorm.ErrRecordNotFound when nothing matches.
func (q *Query) First(dest interface{}) error {
	return q.db.First(dest).Error
}

// Scan runs a raw-select chain into dest.
func (q *Query) Scan(dest interface{}) error {
	return q.db.Scan(dest).Error
}

func (q *Query) Count(n *int64) error {
	return q.db.Count(n).Error
}

func (q *Query) Create(v interface{}) error {
	return q.db.Create(v).Error
}

func (q *Query) Save(v interface{}) error {
	return q.db.Save(v).Error
}

// Update sets a single column on the rows matched by the chain.
func (q *Query) Update(column string, value interface{}) error {
	return q.db.Update(column, value).Error
}

func (q *Query) Updates(values interface{}) error {
	return q.db.Updates(values).Error
}

func (q *Query) Delete(v interface{}) error {
	return q.db.Delete(v).Error
}

// Transaction runs fn inside a database transaction. The transaction is
// committed when fn returns nil and rolled back in full on any error or
// panic, so no partial state is ever visible.
func Transaction(fn func(tx *Query) error) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		return fn(Wrap(tx))
	})
}

// Cache runs the chain through the cache: on a hit dest is filled from the
// cached value, on a miss the query executes and the result is stored.
func (q *Query) Cache(key string, ttl time.Duration, dest interface{}) error {
	if cache.Get(key, dest) {
		return nil
	}

	if err := q.db.Find(dest).Error; err != nil {
		return err
	}

	cache.Set(key, dest, ttl)
	return nil
}

// Pagination describes one page of a larger result set.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// GetWithPagination scans one page into dest and returns page metadata.
func (q *Query) GetWithPagination(dest interface{}, page, perPage int) (Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	var total int64
	if err := q.db.Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	offset := (page - 1) * perPage
	if err := q.db.Offset(offset).Limit(perPage).Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: pages}, nil
}
