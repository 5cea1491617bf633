package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/campavao/my-places/internal/auth"
	mongodoc "github.com/campavao/my-places/internal/infrastructure/mongo"
	"github.com/campavao/my-places/internal/places/application"
	"github.com/campavao/my-places/internal/places/domain"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func putDocument(ctx context.Context, db queryer, table, id string, doc any) error {
	body, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", table, id, err)
	}
	query := fmt.Sprintf(`
INSERT INTO %s (id, document, updated_at)
VALUES (?, ?, strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ','now'))
ON CONFLICT(id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`, table)
	if _, err := db.ExecContext(ctx, query, id, body); err != nil {
		return fmt.Errorf("write %s %s: %w", table, id, err)
	}
	return nil
}

// getDocument decodes the stored document into out. It reports false when no
// row exists.
func getDocument(ctx context.Context, db queryer, table, id string, out any) (bool, error) {
	var body []byte
	err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT document FROM %s WHERE id = ?`, table), id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s %s: %w", table, id, err)
	}
	if err := bson.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("decode %s %s: %w", table, id, err)
	}
	return true, nil
}

// PlaceRepository implements application.PlaceRepository on SQLite.
type PlaceRepository struct {
	db    *sql.DB
	table string
}

func (r *PlaceRepository) Put(ctx context.Context, place domain.Place) error {
	return putDocument(ctx, r.db, r.table, place.ID, mongodoc.NewPlaceDocument(place))
}

func (r *PlaceRepository) Get(ctx context.Context, id string) (domain.Place, error) {
	var doc mongodoc.PlaceDocument
	found, err := getDocument(ctx, r.db, r.table, id, &doc)
	if err != nil {
		return domain.Place{}, err
	}
	if !found {
		return domain.Place{}, fmt.Errorf("place %s: %w", id, application.ErrNotFound)
	}
	return doc.Place(), nil
}

// UserRepository implements application.UserRepository on SQLite.
type UserRepository struct {
	db    *sql.DB
	table string
}

func (r *UserRepository) Put(ctx context.Context, user domain.UserProfile) error {
	return putDocument(ctx, r.db, r.table, user.ID, mongodoc.NewUserDocument(user))
}

func (r *UserRepository) Get(ctx context.Context, id string) (domain.UserProfile, error) {
	var doc mongodoc.UserDocument
	found, err := getDocument(ctx, r.db, r.table, id, &doc)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if !found {
		return domain.UserProfile{}, fmt.Errorf("user %s: %w", id, application.ErrNotFound)
	}
	return doc.UserProfile(), nil
}

// AppendPlace reads and rewrites the profile inside one transaction. The pool
// holds a single connection, so concurrent appends are serialised.
func (r *UserRepository) AppendPlace(ctx context.Context, userID, placeID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append to user %s: %w", userID, err)
	}
	defer tx.Rollback()

	var doc mongodoc.UserDocument
	found, err := getDocument(ctx, tx, r.table, userID, &doc)
	if err != nil {
		return err
	}
	if !found {
		doc = mongodoc.NewUserDocument(domain.UserProfile{ID: userID})
	}
	doc.Places = append(doc.Places, placeID)

	if err := putDocument(ctx, tx, r.table, userID, doc); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append to user %s: %w", userID, err)
	}
	return nil
}

// CredentialRepository implements auth.CredentialRepository on SQLite.
type CredentialRepository struct {
	db    *sql.DB
	table string
}

func (r *CredentialRepository) Create(ctx context.Context, cred auth.Credential) error {
	body, err := bson.Marshal(mongodoc.NewCredentialDocument(cred))
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, document) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`, r.table)
	result, err := r.db.ExecContext(ctx, query, cred.Email, body)
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	if affected == 0 {
		return auth.ErrCredentialExists
	}
	return nil
}

func (r *CredentialRepository) Get(ctx context.Context, email string) (auth.Credential, error) {
	var doc mongodoc.CredentialDocument
	found, err := getDocument(ctx, r.db, r.table, email, &doc)
	if err != nil {
		return auth.Credential{}, err
	}
	if !found {
		return auth.Credential{}, auth.ErrCredentialNotFound
	}
	return doc.Credential(), nil
}
