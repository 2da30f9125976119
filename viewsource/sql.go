// Package viewsource provides types.ViewSource implementations backed by
// an external store, grounded on DbClientNode's connection-and-query
// pattern (external/db_client_node.go): a driver name plus DSN opened
// via database/sql, with the mysql and postgres drivers registered by
// blank import so callers only need to name a driver string.
package viewsource

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/squigglygo/squiggly/types"
)

// SQLViewSourceConfig configures a SQLViewSource. Query must return rows
// of (view_name, field_name); a view's field list is the ordered set of
// field_name values across all rows sharing its view_name, grouped in
// result order.
type SQLViewSourceConfig struct {
	// DriverName is a database/sql driver name, e.g. "mysql" or
	// "postgres".
	DriverName string
	// Dsn is the driver-specific connection string, as passed to
	// sql.Open.
	Dsn string
	// Query selects the view/field pairs used to populate the in-memory
	// view table.
	Query string
	// PoolSize bounds the number of open connections, mirroring
	// DbClientNode's PoolSize field. Zero leaves database/sql's default
	// in place.
	PoolSize int
}

// SQLViewSource is a types.ViewSource whose view definitions live in a
// SQL table and are loaded into memory, refreshed on demand via Reload
// or periodically via StartPeriodicRefresh.
type SQLViewSource struct {
	db    *sql.DB
	query string

	mu    sync.RWMutex
	views map[string][]string
}

// OpenSQLViewSource opens the database connection described by cfg and
// performs an initial Reload before returning, so a freshly constructed
// source is immediately usable.
func OpenSQLViewSource(ctx context.Context, cfg SQLViewSourceConfig) (*SQLViewSource, error) {
	if cfg.Query == "" {
		return nil, fmt.Errorf("viewsource: query can not be empty")
	}
	driverName := cfg.DriverName
	if driverName == "" {
		driverName = "mysql"
	}
	db, err := sql.Open(driverName, cfg.Dsn)
	if err != nil {
		return nil, err
	}
	if cfg.PoolSize > 0 {
		db.SetMaxOpenConns(cfg.PoolSize)
		db.SetMaxIdleConns(cfg.PoolSize / 2)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	vs := &SQLViewSource{db: db, query: cfg.Query, views: map[string][]string{}}
	if err := vs.Reload(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return vs, nil
}

// Reload re-runs the configured query and atomically replaces the
// in-memory view table with its result. A failed reload leaves the
// previously loaded views in place.
func (v *SQLViewSource) Reload(ctx context.Context) error {
	rows, err := v.db.QueryContext(ctx, v.query)
	if err != nil {
		return err
	}
	defer rows.Close()

	var pairs [][2]string
	for rows.Next() {
		var view, field string
		if err := rows.Scan(&view, &field); err != nil {
			return err
		}
		pairs = append(pairs, [2]string{view, field})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	v.mu.Lock()
	v.views = groupFields(pairs)
	v.mu.Unlock()
	return nil
}

// groupFields collects (view, field) pairs into a view-name -> ordered
// field-list map, preserving each view's first-seen field order.
func groupFields(pairs [][2]string) map[string][]string {
	views := map[string][]string{}
	for _, p := range pairs {
		views[p[0]] = append(views[p[0]], p[1])
	}
	return views
}

// ResolveView implements types.ViewSource.
func (v *SQLViewSource) ResolveView(name string) ([]string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	fields, ok := v.views[name]
	return fields, ok
}

// Close releases the underlying database connection.
func (v *SQLViewSource) Close() error {
	return v.db.Close()
}

var _ types.ViewSource = (*SQLViewSource)(nil)
