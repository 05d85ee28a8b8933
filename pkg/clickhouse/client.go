package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

const pingTimeout = 5 * time.Second

var (
	errClientNotInitialized = errors.New("clickhouse client not initialized")
	identifierRe            = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Client writes revenue snapshots into a ClickHouse table over the native protocol.
type Client struct {
	conn     driver.Conn
	database string
	table    string
}

// NewClient opens the connection and verifies it with a ping.
func NewClient(ctx context.Context, cfg config.ClickHouseConfig, logg *logger.Logger) (*Client, error) {
	if !identifierRe.MatchString(cfg.Database) {
		return nil, fmt.Errorf("invalid clickhouse database name %q", cfg.Database)
	}
	if !identifierRe.MatchString(cfg.Table) {
		return nil, fmt.Errorf("invalid clickhouse table name %q", cfg.Table)
	}

	conn, err := clickhouse.Open(options(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "table", cfg.Table), "clickhouse client initialized")
	}
	return &Client{conn: conn, database: cfg.Database, table: cfg.Table}, nil
}

func options(cfg config.ClickHouseConfig) *clickhouse.Options {
	return &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		MaxOpenConns: 5,
		MaxIdleConns: 2,
		DialTimeout:  10 * time.Second,
	}
}

// QualifiedTable returns database.table for the revenue snapshot table.
func (c *Client) QualifiedTable() string {
	return c.database + "." + c.table
}

// InsertBatch prepares an INSERT for columns and appends each row in order.
func (c *Client) InsertBatch(ctx context.Context, columns []string, rows [][]any) error {
	if c == nil || c.conn == nil {
		return errClientNotInitialized
	}
	if len(rows) == 0 {
		return nil
	}
	for _, col := range columns {
		if !identifierRe.MatchString(col) {
			return fmt.Errorf("invalid column %q", col)
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s)", c.QualifiedTable(), strings.Join(columns, ", "))
	batch, err := c.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			_ = batch.Abort()
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), len(columns))
		}
		if err := batch.Append(row...); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append row %d: %w", i, err)
		}
	}
	return batch.Send()
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.conn == nil {
		return errClientNotInitialized
	}
	return c.conn.Ping(ctx)
}

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
