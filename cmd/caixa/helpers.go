package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/caixa/internal/events"
	"github.com/Veraticus/caixa/internal/ledger"
	"github.com/Veraticus/caixa/internal/service"
	"github.com/Veraticus/caixa/internal/storage"
)

// initStorage opens the configured database and applies pending migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(appConfig.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initPublisher connects to the configured broker, or returns a no-op
// publisher when none is set.
func initPublisher(ctx context.Context) (service.EventPublisher, error) {
	if !appConfig.Events.Enabled() {
		return events.Noop{}, nil
	}
	return events.Dial(ctx, appConfig.Events.URL, appConfig.Events.Exchange, appConfig.Events.Retry)
}

// app bundles what most commands need.
type app struct {
	store        *storage.SQLiteStorage
	publisher    service.EventPublisher
	transactions *ledger.TransactionService
	categories   *ledger.CategoryService
}

func newApp(ctx context.Context) (*app, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}

	publisher, err := initPublisher(ctx)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{
		store:        store,
		publisher:    publisher,
		transactions: ledger.NewTransactionService(store, publisher),
		categories:   ledger.NewCategoryService(store, publisher),
	}, nil
}

func (a *app) Close() {
	if err := a.publisher.Close(); err != nil {
		slog.Warn("failed to close event publisher", "error", err)
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", arg)
	}
	return id, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return d, nil
}

// resolveTypeID accepts a type id or name (receita, despesa, or any stored
// type) for CLI flags.
func resolveTypeID(ctx context.Context, store service.Store, value string) (int64, error) {
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		return id, nil
	}

	types, err := store.GetTypes(ctx)
	if err != nil {
		return 0, err
	}
	name := ledger.NormalizeName(value)
	for _, t := range types {
		if t.Name == name {
			return t.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ledger.ErrUnknownType, value)
}

func splitNames(s string) []string {
	var names []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}
