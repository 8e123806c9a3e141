package storage

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	"iitb-internet/internal/config"
	"iitb-internet/internal/model"
)

// History records portal actions. It never sees passwords.
type History interface {
	Record(ctx context.Context, e model.Event) error
	Recent(ctx context.Context, n int64) ([]model.Event, error)
	Close()
}

// Open picks a backend from the scheme of cfg.HistoryURI. An empty URI
// disables history.
func Open(ctx context.Context, cfg *config.Config) (History, error) {
	if cfg.HistoryURI == "" {
		return Nop{}, nil
	}
	u, err := url.Parse(cfg.HistoryURI)
	if err != nil {
		return nil, errors.Wrap(err, "parse history_uri")
	}

	var h History
	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		h, err = NewMongo(ctx, cfg.HistoryURI, cfg.HistoryDB, cfg.HistoryCol)
	case "redis", "rediss":
		h, err = NewRedis(ctx, cfg.HistoryURI, cfg.HistoryPrefix+"events", cfg.HistoryMax)
	default:
		return nil, errors.Errorf("unsupported history_uri scheme %q", u.Scheme)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %s history", u.Scheme)
	}
	return h, nil
}

type Nop struct{}

func (Nop) Record(context.Context, model.Event) error { return nil }

func (Nop) Recent(context.Context, int64) ([]model.Event, error) { return nil, nil }

func (Nop) Close() {}
