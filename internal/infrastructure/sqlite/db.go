// Package sqlite stores the same BSON documents as the MongoDB backend in a
// single-file SQLite database, one table per collection.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/infrastructure/store"
	"github.com/campavao/my-places/internal/places/application"
)

func init() {
	ctx := context.Background()
	if err := store.Register(ctx, "sqlite", NewStore); err != nil {
		panic(err)
	}
}

const tableSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
    id         TEXT PRIMARY KEY,
    document   BLOB NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ','now'))
);
`

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Open opens or creates the SQLite database and initializes one document
// table per collection.
func Open(dbPath string, tables ...string) (*sql.DB, error) {
	for _, table := range tables {
		if !tableName.MatchString(table) {
			return nil, fmt.Errorf("invalid table name %q", table)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf(tableSchema, table)); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize table %s: %w", table, err)
		}
	}
	return db, nil
}

// Store bundles the repositories of one SQLite database.
type Store struct {
	db          *sql.DB
	places      *PlaceRepository
	users       *UserRepository
	credentials *CredentialRepository
}

// NewStore opens the database named by a sqlite:// uri. Both
// sqlite:///abs/path.db and sqlite://relative.db are accepted.
func NewStore(_ context.Context, uri string, opts store.Options) (store.Store, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse sqlite uri: %w", err)
	}
	dbPath := u.Host + u.Path
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite uri %q has no path", uri)
	}
	return OpenStore(dbPath, opts)
}

// OpenStore opens dbPath directly.
func OpenStore(dbPath string, opts store.Options) (*Store, error) {
	tables := []string{
		sanitizeTable(opts.PlaceCollection),
		sanitizeTable(opts.UserCollection),
		sanitizeTable(opts.CredentialCollection),
	}
	db, err := Open(dbPath, tables...)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:          db,
		places:      &PlaceRepository{db: db, table: tables[0]},
		users:       &UserRepository{db: db, table: tables[1]},
		credentials: &CredentialRepository{db: db, table: tables[2]},
	}, nil
}

// sanitizeTable maps collection names such as "place-docs" onto SQL identifiers.
func sanitizeTable(collection string) string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(strings.TrimSpace(collection))
}

func (s *Store) Places() application.PlaceRepository {
	return s.places
}

func (s *Store) Users() application.UserRepository {
	return s.users
}

func (s *Store) Credentials() auth.CredentialRepository {
	return s.credentials
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}
