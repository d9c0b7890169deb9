package secondary

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/chaoscascade/daybook/pkg/records"
	"github.com/chaoscascade/daybook/pkg/routing"
)

// Lazy defers the SurrealDB connection until the first routed call. The
// router probes reachability before routing anything here, so by the time a
// method runs the endpoint has already answered once.
type Lazy struct {
	cfg    Config
	logger zerolog.Logger

	once  sync.Once
	store *SurrealStore
	err   error
}

func NewLazy(cfg Config, logger zerolog.Logger) *Lazy {
	return &Lazy{cfg: cfg, logger: logger}
}

func (l *Lazy) get() (*SurrealStore, error) {
	l.once.Do(func() {
		l.store, l.err = Connect(l.cfg, l.logger)
	})
	return l.store, l.err
}

// Close releases the connection if one was ever established.
func (l *Lazy) Close() {
	if l.store != nil {
		l.store.Close()
	}
}

func (l *Lazy) Save(ctx context.Context, rec records.Record) error {
	store, err := l.get()
	if err != nil {
		return err
	}
	return store.Save(ctx, rec)
}

func (l *Lazy) Get(ctx context.Context, date, category, subcategory string) (*records.Record, error) {
	store, err := l.get()
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, date, category, subcategory)
}

func (l *Lazy) Delete(ctx context.Context, date, category, subcategory string) error {
	store, err := l.get()
	if err != nil {
		return err
	}
	return store.Delete(ctx, date, category, subcategory)
}

func (l *Lazy) Search(ctx context.Context, q routing.SecondaryQuery) ([]records.Record, error) {
	store, err := l.get()
	if err != nil {
		return nil, err
	}
	return store.Search(ctx, q)
}
