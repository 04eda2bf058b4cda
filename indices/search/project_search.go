package search

import (
	"context"
	"encoding/json"

	"marketplace/client/es"
	"marketplace/domain"
	"marketplace/domain/filter"
	"marketplace/domain/listing"
	"marketplace/indices"
)

// MaxResultWindow bounds unpaged searches; it matches the default index.max_result_window.
var MaxResultWindow = 10000

// ElasticBackend evaluates predicates against the projects index.
type ElasticBackend struct{}

var _ listing.Backend = (*ElasticBackend)(nil)

func (b *ElasticBackend) Find(ctx context.Context, predicate filter.Predicate, page listing.Page) ([]domain.Project, error) {
	// the index refuses windows past MaxResultWindow
	if page.Paged() && page.Offset() >= MaxResultWindow {
		return []domain.Project{}, nil
	}
	order := listing.OrderOf(predicate.State())
	direction := "asc"
	if order.Desc {
		direction = "desc"
	}

	query := es.H{
		"query": predicate.ESQuery(),
		"sort": []es.H{
			{order.Field: es.H{"order": direction}},
			{"sortId": es.H{"order": direction}},
		},
		"from": page.Offset(),
		"size": MaxResultWindow,
	}
	if page.Paged() {
		query["size"] = page.Size
	}

	result, err := es.SearchFunc(ctx, indices.ProjectIndexName, query)
	if err != nil {
		return nil, err
	}

	projects := make([]domain.Project, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		doc := indices.ProjectDocument{}
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, err
		}
		p := doc.ToProject()
		if p.IssuesAddressed == nil {
			p.IssuesAddressed = []domain.IssueAddressed{}
		}
		if p.VolunteerRequirements == nil {
			p.VolunteerRequirements = []domain.VolunteerRequirement{}
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func (b *ElasticBackend) Count(ctx context.Context, predicate filter.Predicate) (int, error) {
	return es.CountFunc(ctx, indices.ProjectIndexName, es.H{"query": predicate.ESQuery()})
}
