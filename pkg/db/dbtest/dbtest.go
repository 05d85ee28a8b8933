// Package dbtest opens isolated in-memory sqlite databases carrying the
// marketplace schema for repository tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db"
)

var schema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		mobile_no TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		is_deleted BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE sellers (
		id TEXT PRIMARY KEY,
		shop_name TEXT NOT NULL,
		username TEXT NOT NULL,
		email TEXT NOT NULL,
		mobile_no TEXT,
		alternate_mobile_no TEXT,
		password_hash TEXT NOT NULL,
		description TEXT,
		cover TEXT,
		shop_address TEXT,
		selling_category TEXT,
		discount TEXT,
		social_links TEXT,
		owner TEXT,
		legal TEXT,
		delivery_partner TEXT,
		referred_by TEXT,
		rating NUMERIC NOT NULL DEFAULT 0,
		charge NUMERIC NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		is_onboarded BOOLEAN NOT NULL DEFAULT 0,
		is_deleted BOOLEAN NOT NULL DEFAULT 0,
		added_by TEXT,
		updated_by TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE UNIQUE INDEX ux_sellers_username ON sellers (username) WHERE is_deleted = 0`,
	`CREATE TABLE products (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		brand TEXT,
		description TEXT,
		images TEXT NOT NULL DEFAULT '[]',
		sizes TEXT NOT NULL DEFAULT '[]',
		tags TEXT NOT NULL DEFAULT '[]',
		price NUMERIC NOT NULL DEFAULT 0,
		stock INTEGER NOT NULL DEFAULT 0,
		is_deleted BOOLEAN NOT NULL DEFAULT 0,
		added_by TEXT,
		updated_by TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		seller_id TEXT NOT NULL,
		order_items TEXT NOT NULL,
		total_amount NUMERIC NOT NULL,
		charge NUMERIC NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		courier TEXT,
		date TEXT NOT NULL,
		is_deleted BOOLEAN NOT NULL DEFAULT 0,
		added_by TEXT,
		updated_by TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE coupons (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL,
		code TEXT NOT NULL,
		description TEXT,
		discount_type TEXT NOT NULL,
		discount_value NUMERIC NOT NULL,
		min_order_value NUMERIC NOT NULL DEFAULT 0,
		valid_from DATETIME,
		valid_to DATETIME,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		is_deleted BOOLEAN NOT NULL DEFAULT 0,
		added_by TEXT,
		updated_by TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE UNIQUE INDEX ux_coupons_seller_code ON coupons (seller_id, code)`,
	`CREATE TABLE referrals (
		id TEXT PRIMARY KEY,
		referring_user_id TEXT NOT NULL,
		referred_seller_id TEXT NOT NULL,
		amount NUMERIC NOT NULL DEFAULT 0,
		onboarded BOOLEAN NOT NULL DEFAULT 0,
		status BOOLEAN NOT NULL DEFAULT 0,
		is_deleted BOOLEAN NOT NULL DEFAULT 0,
		added_by TEXT,
		updated_by TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE UNIQUE INDEX ux_referrals_user_seller ON referrals (referring_user_id, referred_seller_id)`,
	`CREATE TABLE tickets (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL,
		type TEXT NOT NULL,
		subject TEXT NOT NULL,
		description TEXT NOT NULL,
		replies TEXT NOT NULL,
		closed BOOLEAN NOT NULL DEFAULT 0,
		is_deleted BOOLEAN NOT NULL DEFAULT 0,
		added_by TEXT,
		updated_by TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME,
		published_at DATETIME,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT
	)`,
	`CREATE TABLE outbox_dlq (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		error_reason TEXT NOT NULL,
		error_message TEXT,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		failed_at DATETIME,
		created_at DATETIME
	)`,
}

// Open returns a gorm connection to a fresh in-memory database named after
// the running test, with every marketplace table created.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), db.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return conn
}

// Client wraps Open in a db.Client for code that needs transactions.
func Client(t *testing.T) *db.Client {
	t.Helper()
	return db.NewFromGorm(Open(t))
}
