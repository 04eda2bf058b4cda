package listing

import (
	"context"
	"math"
	"strconv"

	"marketplace/domain"
	"marketplace/domain/filter"

	"golang.org/x/sync/errgroup"
)

const DefaultPageSize = 10

// Page selects a window of a listing. Size <= 0 means unpaged.
type Page struct {
	Size   int
	Number int
}

// Unpaged selects every matching row.
var Unpaged = Page{}

// ParsePage reads pageSize and page from criteria. Missing, malformed or non-positive values fall back to 10 and 1.
func ParsePage(criteria map[string]string) Page {
	p := Page{Size: DefaultPageSize, Number: 1}
	if v, err := strconv.Atoi(criteria[filter.KeyPageSize]); err == nil && v > 0 {
		p.Size = v
	}
	if v, err := strconv.Atoi(criteria[filter.KeyPage]); err == nil && v > 0 {
		p.Number = v
	}
	return p
}

func (p Page) Paged() bool {
	return p.Size > 0
}

// Beyond reports whether the page starts past the largest addressable offset. Such a page is always empty.
func (p Page) Beyond() bool {
	return p.Paged() && p.Number > 1 && p.Number-1 > math.MaxInt/p.Size
}

// Offset saturates at math.MaxInt for pages that are Beyond.
func (p Page) Offset() int {
	if !p.Paged() || p.Number <= 1 {
		return 0
	}
	if p.Beyond() {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// Backend executes compiled predicates. Find must order rows as described by OrderOf.
type Backend interface {
	Find(ctx context.Context, predicate filter.Predicate, page Page) ([]domain.Project, error)
	Count(ctx context.Context, predicate filter.Predicate) (int, error)
}

// Order is a sort key of a listing; Desc applies to both the key and the id tie breaker.
type Order struct {
	Field string
	Desc  bool
}

const (
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// OrderOf returns the sort of listings in state s: oldest submissions first while pending approval,
// most recently updated first otherwise.
func OrderOf(s domain.ProjectState) Order {
	if s == domain.StatePendingApproval {
		return Order{Field: FieldCreatedAt}
	}
	return Order{Field: FieldUpdatedAt, Desc: true}
}

var (
	ActiveBackend Backend = &DatabaseBackend{}

	ListProjectsFunc = ListProjects
	CountsFunc       = Counts
)

// ListProjects compiles criteria and returns the requested page.
func ListProjects(ctx context.Context, criteria map[string]string) ([]domain.Project, error) {
	return ActiveBackend.Find(ctx, filter.Compile(criteria), ParsePage(criteria))
}

// Counts returns the number of projects matching predicate in each state, whatever state predicate selects.
// All four states are always present.
func Counts(ctx context.Context, predicate filter.Predicate) (map[domain.ProjectState]int, error) {
	var results [domain.StateCount]int
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range domain.ProjectStates {
		i, s := i, s
		g.Go(func() error {
			n, err := ActiveBackend.Count(gctx, predicate.WithState(s))
			if err != nil {
				return err
			}
			results[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := make(map[domain.ProjectState]int, domain.StateCount)
	for i, s := range domain.ProjectStates {
		counts[s] = results[i]
	}
	return counts, nil
}
