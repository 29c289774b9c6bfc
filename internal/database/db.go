// Package database persists the bakery records with gorm over SQLite or
// PostgreSQL and owns every read-modify-write of stock.
package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bakehouse/internal/config"
	"bakehouse/internal/logger"
	"bakehouse/internal/models"
	"bakehouse/internal/realtime"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL dialect
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a write violates a unique constraint
var ErrConflict = errors.New("record conflict")

// Collection names used in change events
const (
	CollectionIngredients   = "ingredients"
	CollectionRecipes       = "recipes"
	CollectionProducts      = "products"
	CollectionDiscountTiers = "discountTiers"
	CollectionOrders        = "orders"
	CollectionDoughBalls    = "doughBalls"
	CollectionNotifications = "notifications"
)

// Store is the bakery's persistence layer
type Store struct {
	db     *gorm.DB
	log    *logger.Logger
	events realtime.Publisher
	now    func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithPublisher sends change events to p after each successful write
func WithPublisher(p realtime.Publisher) Option {
	return func(s *Store) { s.events = p }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open connects, migrates and, when configured, seeds the database
func Open(cfg config.DatabaseConfig, log *logger.Logger, opts ...Option) (*Store, error) {
	db, err := gorm.Open(cfg.Dialect, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Dialect, err)
	}

	db.DB().SetMaxIdleConns(10)
	db.DB().SetMaxOpenConns(100)
	db.DB().SetConnMaxLifetime(time.Hour)
	if cfg.Dialect == "sqlite3" {
		if isMemory(cfg.URL) {
			// every connection to :memory: is a separate database
			db.DB().SetMaxOpenConns(1)
		}
		db.Exec("PRAGMA foreign_keys = ON")
	}
	db.LogMode(cfg.LogMode)

	s := &Store{
		db:     db,
		log:    log,
		events: realtime.Discard{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	if cfg.Seed {
		if err := s.Seed(context.Background()); err != nil {
			db.Close()
			return nil, err
		}
	}

	log.Info("database ready", "dialect", cfg.Dialect)
	return s, nil
}

func isMemory(url string) bool {
	return url == ":memory:" || strings.Contains(url, "mode=memory") || strings.HasPrefix(url, "file::memory:")
}

// Migrate creates or updates every table
func (s *Store) Migrate() error {
	err := s.db.AutoMigrate(
		&models.Ingredient{},
		&models.Recipe{},
		&models.Product{},
		&models.DiscountTier{},
		&models.Order{},
		&models.OrderItem{},
		&models.DoughBall{},
		&models.Notification{},
	).Error
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.DB().PingContext(ctx)
}

// transaction runs fn in a transaction, rolling back on error or panic
func (s *Store) transaction(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// find loads the record with id into out
func find(db *gorm.DB, out interface{}, id uint, what string) error {
	if err := db.First(out, id).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
		}
		return fmt.Errorf("load %s %d: %w", what, id, err)
	}
	return nil
}

// exists reports an ErrNotFound-wrapped error when id is absent
func exists(db *gorm.DB, model interface{}, id uint, what string) error {
	var n int
	if err := db.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("check %s %d: %w", what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}

// classify maps driver constraint errors to ErrConflict
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%v: %w", err, ErrConflict)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func (s *Store) publish(collection string, action realtime.Action, id uint) {
	s.events.Publish(collection, action, strconv.FormatUint(uint64(id), 10))
}

// publishAll announces a change to a whole collection
func (s *Store) publishAll(collection string, action realtime.Action) {
	s.events.Publish(collection, action, "")
}
