// Package store selects a document store implementation by URI scheme.
// Implementations register themselves from their package init.
package store

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/aaronland/go-roster"

	"github.com/campavao/my-places/internal/auth"
	"github.com/campavao/my-places/internal/places/application"
)

// Store bundles the repositories backed by one database.
type Store interface {
	Places() application.PlaceRepository
	Users() application.UserRepository
	Credentials() auth.CredentialRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Options carries settings shared by every implementation. Collection names
// map to tables for SQL backends.
type Options struct {
	Database             string
	PlaceCollection      string
	UserCollection       string
	CredentialCollection string
	ConnectTimeout       time.Duration
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Database:             "my-places",
		PlaceCollection:      "places",
		UserCollection:       "users",
		CredentialCollection: "credentials",
		ConnectTimeout:       10 * time.Second,
	}
}

// InitializationFunc opens a store for uri.
type InitializationFunc func(ctx context.Context, uri string, opts Options) (Store, error)

var storeRoster roster.Roster

// Register makes an implementation available for scheme.
func Register(ctx context.Context, scheme string, initFunc InitializationFunc) error {
	if err := ensureRoster(); err != nil {
		return err
	}
	return storeRoster.Register(ctx, scheme, initFunc)
}

func ensureRoster() error {
	if storeRoster == nil {
		r, err := roster.NewDefaultRoster()
		if err != nil {
			return err
		}
		storeRoster = r
	}
	return nil
}

// Open returns the store registered for the scheme of uri.
func Open(ctx context.Context, uri string, opts Options) (Store, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse store uri: %w", err)
	}
	if err := ensureRoster(); err != nil {
		return nil, err
	}
	driver, err := storeRoster.Driver(ctx, u.Scheme)
	if err != nil {
		return nil, fmt.Errorf("no store registered for scheme %q: %w", u.Scheme, err)
	}
	initFunc, ok := driver.(InitializationFunc)
	if !ok {
		return nil, fmt.Errorf("store driver for %q has unexpected type %T", u.Scheme, driver)
	}
	return initFunc(ctx, uri, opts)
}

// Schemes lists the registered schemes as "scheme://".
func Schemes() []string {
	schemes := []string{}
	if err := ensureRoster(); err != nil {
		return schemes
	}
	for _, driver := range storeRoster.Drivers(context.Background()) {
		schemes = append(schemes, fmt.Sprintf("%s://", strings.ToLower(driver)))
	}
	sort.Strings(schemes)
	return schemes
}
