package search

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/thedittmer/briefly/internal/backend"
	"github.com/thedittmer/briefly/internal/models"
	"github.com/thedittmer/briefly/internal/notify"
)

const (
	SucceededMessage = "Search completed successfully!"
	FailedMessage    = "An error occurred while fetching news."
)

// ErrSuperseded is returned by Submit when a newer search was issued before
// this one completed. Its outcome was discarded.
var ErrSuperseded = errors.New("search superseded by a newer one")

type Searcher interface {
	Search(ctx context.Context, q models.SearchQuery) ([]models.Article, error)
}

type Notifier interface {
	Notify(text string, severity notify.Severity)
}

// Renderer owns the result set and page cursor of one search screen.
type Renderer struct {
	mu       sync.Mutex
	searcher Searcher
	notifier Notifier
	state    State
	issued   uint64
	sink     func(View)
	log      *zap.Logger
}

type Option func(*Renderer)

func WithPageSize(n int) Option {
	return func(r *Renderer) { r.state = NewState(n) }
}

// WithViewSink registers fn to receive every rendered view. fn runs with
// the renderer locked and must not call back into it.
func WithViewSink(fn func(View)) Option {
	return func(r *Renderer) { r.sink = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

func NewRenderer(searcher Searcher, notifier Notifier, opts ...Option) *Renderer {
	r := &Renderer{
		searcher: searcher,
		notifier: notifier,
		state:    NewState(DefaultPageSize),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.Named("search")
	return r
}

// Submit runs one search. Only the most recently issued search may touch
// the state or the banner: an older one that completes later is dropped
// and returns ErrSuperseded. A failed search leaves the state unchanged.
func (r *Renderer) Submit(ctx context.Context, q models.SearchQuery) error {
	r.mu.Lock()
	r.issued++
	seq := r.issued
	r.mu.Unlock()

	r.log.Debug("search submitted", zap.Uint64("seq", seq), zap.String("title", q.Title), zap.String("keywords", q.Keywords))

	articles, err := r.searcher.Search(ctx, q)

	r.mu.Lock()
	defer r.mu.Unlock()

	if seq != r.issued {
		r.log.Debug("discarding stale search", zap.Uint64("seq", seq), zap.Uint64("latest", r.issued), zap.Error(err))
		return ErrSuperseded
	}

	if err != nil {
		r.log.Warn("search failed", zap.Uint64("seq", seq), zap.Error(err))
		r.notifier.Notify(backend.UserMessage(err, FailedMessage), notify.Danger)
		return err
	}

	r.state = r.state.WithResults(articles)
	r.log.Info("search completed", zap.Uint64("seq", seq), zap.Int("articles", len(r.state.Articles)))

	r.renderLocked()
	r.notifier.Notify(SucceededMessage, notify.Success)
	return nil
}

func (r *Renderer) Render() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renderLocked()
}

func (r *Renderer) PreviousPage() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = r.state.Prev()
	return r.renderLocked()
}

func (r *Renderer) NextPage() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = r.state.Next()
	return r.renderLocked()
}

// State returns a snapshot of the current result set and cursor.
func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Renderer) renderLocked() View {
	v := r.state.View()
	if r.sink != nil {
		r.sink(v)
	}
	return v
}
