// Package htmlsearch resolves locators against static HTML documents.
package htmlsearch

import (
	"context"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"

	"github.com/BaSui01/fluentwait/dom"
	"github.com/BaSui01/fluentwait/filter"
	"github.com/BaSui01/fluentwait/locator"
	"github.com/BaSui01/fluentwait/search"
	"github.com/BaSui01/fluentwait/types"
)

const driverName = "html"

// Search parses documents from a Source with goquery. Each lookup reads
// the snapshot it loaded: a refresh triggered by a concurrent lookup never
// touches elements already handed out. Only an explicit Reload invalidates
// them, after which they report STALE_ELEMENT.
type Search struct {
	mu       sync.RWMutex
	source   Source
	doc      *goquery.Document
	revision uint64
	epoch    uint64

	refresh bool
	logger  *zap.Logger
}

var _ search.Search = (*Search)(nil)

// Option configures a Search.
type Option func(*Search)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Search) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRefreshOnFind reloads the document before every lookup so a polling
// wait observes page changes.
func WithRefreshOnFind(refresh bool) Option {
	return func(s *Search) { s.refresh = refresh }
}

// New creates a Search over source. The document is loaded lazily.
func New(source Source, opts ...Option) *Search {
	s := &Search{
		source: source,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("component", "html_search"), zap.String("source", source.Name()))
	return s
}

// Reload parses the source again and invalidates every element handed out
// so far.
func (s *Search) Reload(ctx context.Context) error {
	_, _, err := s.load(ctx, true)
	return err
}

// Revision counts document loads; zero before the first load.
func (s *Search) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *Search) currentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// load parses a new snapshot and makes it current. The returned document
// is the one this call parsed, whatever concurrent loads did meanwhile.
func (s *Search) load(ctx context.Context, invalidate bool) (*goquery.Document, uint64, error) {
	rc, err := s.source.Open(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()

	doc, err := goquery.NewDocumentFromReader(rc)
	if err != nil {
		return nil, 0, types.NewError(types.ErrSourceUnreadable, "failed to parse document").WithCause(err)
	}

	s.mu.Lock()
	s.doc = doc
	s.revision++
	if invalidate {
		s.epoch++
	}
	rev, epoch := s.revision, s.epoch
	s.mu.Unlock()

	s.logger.Debug("document loaded", zap.Uint64("revision", rev), zap.Bool("invalidate", invalidate))
	return doc, epoch, nil
}

func (s *Search) current(ctx context.Context) (*goquery.Document, uint64, error) {
	s.mu.RLock()
	doc, epoch := s.doc, s.epoch
	s.mu.RUnlock()
	if doc != nil && !s.refresh {
		return doc, epoch, nil
	}
	return s.load(ctx, false)
}

// Find implements search.Search.
func (s *Search) Find(ctx context.Context, loc locator.Locator) (dom.List, error) {
	return s.FindWithFilters(ctx, loc, nil)
}

// FindWithFilters implements search.Search.
func (s *Search) FindWithFilters(ctx context.Context, loc locator.Locator, filters []filter.Filter) (dom.List, error) {
	doc, epoch, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	query := func(ctx context.Context, target locator.Locator) (dom.List, error) {
		css, ok := target.CSS()
		if !ok {
			return nil, types.Errorf(types.ErrUnsupported, "%s locators are not supported on static documents", target.Strategy()).
				WithDriver(driverName)
		}
		matcher, err := cascadia.Compile(css)
		if err != nil {
			return nil, types.Errorf(types.ErrInvalidLocator, "invalid selector %q", css).WithCause(err).WithDriver(driverName)
		}
		var list dom.List
		doc.FindMatcher(matcher).Each(func(_ int, sel *goquery.Selection) {
			list = append(list, newElement(s, sel, epoch))
		})
		return list, nil
	}
	return search.Resolve(ctx, query, loc, filters)
}

// Instantiator implements search.Search.
func (s *Search) Instantiator() dom.Instantiator {
	return dom.DefaultInstantiator{}
}

// PageSource returns the current document as HTML.
func (s *Search) PageSource(ctx context.Context) (string, error) {
	s.mu.RLock()
	doc := s.doc
	s.mu.RUnlock()
	if doc == nil {
		return "", types.NewError(types.ErrNoDocument, "no document loaded")
	}
	return goquery.OuterHtml(doc.Selection)
}

// Screenshot is not available for static documents.
func (s *Search) Screenshot(ctx context.Context) ([]byte, error) {
	return nil, types.NewError(types.ErrUnsupported, "static documents cannot be rendered").WithDriver(driverName)
}
