package entityform

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/marcus/bizdesk/internal/models"
	"github.com/marcus/bizdesk/pkg/console/widget"
)

// Querier fetches collections.
type Querier interface {
	List(ctx context.Context, entity string, filter map[string]string) (*models.Page, error)
}

// OptionLoader fetches select options. Identical requests in flight at the
// same time share one call.
type OptionLoader struct {
	q     Querier
	log   *zap.Logger
	group singleflight.Group
}

// NewOptionLoader returns a loader over q.
func NewOptionLoader(q Querier, log *zap.Logger) *OptionLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &OptionLoader{q: q, log: log}
}

// Load fetches every source concurrently, keyed by field name. Sources that
// fail are left out without cancelling the others, and their errors are
// joined.
func (l *OptionLoader) Load(ctx context.Context, sources map[string]Source) (map[string][]widget.Option, error) {
	var (
		mu   sync.Mutex
		out  = make(map[string][]widget.Option, len(sources))
		errs []error
		g    errgroup.Group
	)
	for field, src := range sources {
		g.Go(func() error {
			opts, err := l.fetch(ctx, src)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				l.log.Warn("load options", zap.String("field", field), zap.String("entity", src.Entity), zap.Error(err))
				errs = append(errs, err)
				return nil
			}
			out[field] = opts
			return nil
		})
	}
	_ = g.Wait()
	return out, errors.Join(errs...)
}

func (l *OptionLoader) fetch(ctx context.Context, src Source) ([]widget.Option, error) {
	v, err, _ := l.group.Do(src.key(), func() (any, error) {
		page, err := l.q.List(ctx, src.Entity, src.Filter)
		if err != nil {
			return nil, err
		}
		opts := make([]widget.Option, 0, len(page.Results))
		for _, rec := range page.Results {
			opts = append(opts, widget.Option{Value: rec.ID(), Label: rec.DisplayName()})
		}
		return opts, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]widget.Option), nil
}
