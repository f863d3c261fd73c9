package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"txdash/internal/core"
	"txdash/internal/dataset"
	"txdash/internal/log"
)

// ErrDatasetUnavailable wraps every failure to retrieve the dataset.
var ErrDatasetUnavailable = errors.New("dataset unavailable")

type (
	// ListParams selects one page of a month's transactions.
	ListParams struct {
		Month   time.Month
		Page    int
		PerPage int
		Search  string
	}

	// Page is one window of a filtered result. Total counts the whole filtered set.
	Page struct {
		Items   []core.Transaction
		Total   int
		Page    int
		PerPage int
	}

	// Combined bundles every dashboard view for one month.
	Combined struct {
		Transactions []core.Transaction        `json:"transactions"`
		Total        int                       `json:"total"`
		Statistics   core.Statistics           `json:"statistics"`
		BarChart     core.PriceHistogram       `json:"barChart"`
		PieChart     core.CategoryDistribution `json:"pieChart"`
	}
)

// QueryService answers dashboard queries. Every operation fetches the whole
// dataset from its source; nothing is shared between calls.
type QueryService struct {
	source dataset.Source
	logger *log.Logger
}

func NewQueryService(source dataset.Source, logger *log.Logger) *QueryService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &QueryService{
		source: source,
		logger: logger.WithComponent(log.ComponentQuery),
	}
}

// ListTransactions filters by month and search, then returns the requested page.
// Page and PerPage default to 1 and 10 when zero.
func (s *QueryService) ListTransactions(ctx context.Context, p ListParams) (Page, error) {
	p = p.withDefaults()
	txns, err := s.fetch(ctx, log.OpListTransactions)
	if err != nil {
		return Page{}, err
	}
	matched := core.Filter(txns, core.Criteria{Month: p.Month, Search: p.Search})
	items := core.Paginate(matched, p.Page, p.PerPage)

	s.logger.DebugContext(ctx, "Transactions listed",
		log.NewFields().
			WithOperation(log.OpListTransactions).
			WithQuery(p.Month.String(), p.Search, p.Page, p.PerPage).
			With(log.FieldMatched, len(matched)).
			ToSlice()...)

	return Page{Items: items, Total: len(matched), Page: p.Page, PerPage: p.PerPage}, nil
}

// GetStatistics summarizes the month's sales. Search never applies.
func (s *QueryService) GetStatistics(ctx context.Context, month time.Month) (core.Statistics, error) {
	matched, err := s.monthly(ctx, log.OpStatistics, month)
	if err != nil {
		return core.Statistics{}, err
	}
	return core.Summarize(matched), nil
}

// GetBarChart returns the month's price histogram.
func (s *QueryService) GetBarChart(ctx context.Context, month time.Month) (core.PriceHistogram, error) {
	matched, err := s.monthly(ctx, log.OpBarChart, month)
	if err != nil {
		return core.PriceHistogram{}, err
	}
	return core.Histogram(matched), nil
}

// GetPieChart returns the month's category distribution.
func (s *QueryService) GetPieChart(ctx context.Context, month time.Month) (core.CategoryDistribution, error) {
	matched, err := s.monthly(ctx, log.OpPieChart, month)
	if err != nil {
		return nil, err
	}
	return core.Distribution(matched), nil
}

// GetCombined runs the four dashboard queries concurrently. Each performs its
// own fetch; the first failure cancels the others and fails the call.
func (s *QueryService) GetCombined(ctx context.Context, p ListParams) (Combined, error) {
	var out Combined
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		page, err := s.ListTransactions(gctx, p)
		if err != nil {
			return err
		}
		out.Transactions, out.Total = page.Items, page.Total
		return nil
	})
	g.Go(func() error {
		stats, err := s.GetStatistics(gctx, p.Month)
		out.Statistics = stats
		return err
	})
	g.Go(func() error {
		bars, err := s.GetBarChart(gctx, p.Month)
		out.BarChart = bars
		return err
	})
	g.Go(func() error {
		pie, err := s.GetPieChart(gctx, p.Month)
		out.PieChart = pie
		return err
	})

	if err := g.Wait(); err != nil {
		return Combined{}, err
	}
	return out, nil
}

func (s *QueryService) monthly(ctx context.Context, op string, month time.Month) ([]core.Transaction, error) {
	txns, err := s.fetch(ctx, op)
	if err != nil {
		return nil, err
	}
	return core.Filter(txns, core.Criteria{Month: month}), nil
}

func (s *QueryService) fetch(ctx context.Context, op string) ([]core.Transaction, error) {
	txns, err := s.source.FetchAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Dataset fetch failed",
			log.FieldOperation, op,
			log.FieldErrorType, log.ErrorTypeDataset,
			log.FieldError, err)
		return nil, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	s.logger.DebugContext(ctx, "Dataset fetched",
		log.FieldOperation, log.OpFetch,
		log.FieldRecords, len(txns))
	return txns, nil
}

func (p ListParams) withDefaults() ListParams {
	if p.Page == 0 {
		p.Page = core.DefaultPage
	}
	if p.PerPage == 0 {
		p.PerPage = core.DefaultPerPage
	}
	return p
}
