package search_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"marketplace/client/es"
	"marketplace/domain"
	"marketplace/domain/filter"
	"marketplace/domain/listing"
	"marketplace/indices"
	"marketplace/indices/search"

	. "github.com/onsi/gomega"
)

func captureSearch(hits []es.ESSearchHit, err error) (*es.H, func()) {
	var captured es.H
	orig := es.SearchFunc
	es.SearchFunc = func(ctx context.Context, index string, query interface{}) (*es.ESSearchResult, error) {
		Expect(index).To(Equal(indices.ProjectIndexName))
		captured = query.(es.H)
		if err != nil {
			return nil, err
		}
		return &es.ESSearchResult{Hits: es.ESSearchHits{Hits: hits}}, nil
	}
	return &captured, func() { es.SearchFunc = orig }
}

func toJSON(v interface{}) string {
	bytes, err := json.Marshal(v)
	Expect(err).To(BeNil())
	return string(bytes)
}

func TestElasticBackendFind(t *testing.T) {
	RegisterTestingT(t)
	backend := &search.ElasticBackend{}

	t.Run("should sort pending projects by creation ascending", func(t *testing.T) {
		query, restore := captureSearch(nil, nil)
		defer restore()

		predicate := filter.Compile(map[string]string{filter.KeyProjectState: string(domain.StatePendingApproval)})
		projects, err := backend.Find(context.Background(), predicate, listing.Page{Size: 5, Number: 3})
		Expect(err).To(BeNil())
		Expect(projects).To(BeEmpty())
		Expect(toJSON(*query)).To(MatchJSON(`{
			"query": ` + toJSON(predicate.ESQuery()) + `,
			"sort": [{"createdAt": {"order": "asc"}}, {"sortId": {"order": "asc"}}],
			"from": 10, "size": 5
		}`))
	})

	t.Run("should sort other states by update descending and honour unpaged", func(t *testing.T) {
		query, restore := captureSearch(nil, nil)
		defer restore()

		predicate := filter.Compile(map[string]string{})
		_, err := backend.Find(context.Background(), predicate, listing.Unpaged)
		Expect(err).To(BeNil())
		Expect(toJSON((*query)["sort"])).To(MatchJSON(`[{"updatedAt": {"order": "desc"}}, {"sortId": {"order": "desc"}}]`))
		Expect((*query)["from"]).To(Equal(0))
		Expect((*query)["size"]).To(Equal(search.MaxResultWindow))
	})

	t.Run("should decode hits into projects", func(t *testing.T) {
		start := domain.NewDate(2021, 11, 2)
		doc := indices.NewProjectDocument(domain.Project{
			ID: 42, Title: "tree planting", State: domain.StateApprovedActive, StartDate: &start,
			IssuesAddressed: []domain.IssueAddressed{domain.IssueUrbanGreening},
		})
		_, restore := captureSearch([]es.ESSearchHit{{Id: "42", Source: json.RawMessage(toJSON(doc))}}, nil)
		defer restore()

		projects, err := backend.Find(context.Background(), filter.Compile(nil), listing.Page{Size: 10, Number: 1})
		Expect(err).To(BeNil())
		Expect(len(projects)).To(Equal(1))
		Expect(projects[0].ID).To(BeEquivalentTo(42))
		Expect(projects[0].Title).To(Equal("tree planting"))
		Expect(projects[0].StartMonth).To(Equal(11))
		Expect(projects[0].IssuesAddressed).To(Equal([]domain.IssueAddressed{domain.IssueUrbanGreening}))
		Expect(projects[0].VolunteerRequirements).ToNot(BeNil())
		Expect(projects[0].VolunteerRequirements).To(BeEmpty())
	})

	t.Run("should not search windows past the result limit", func(t *testing.T) {
		called := false
		orig := es.SearchFunc
		defer func() { es.SearchFunc = orig }()
		es.SearchFunc = func(ctx context.Context, index string, query interface{}) (*es.ESSearchResult, error) {
			called = true
			return &es.ESSearchResult{}, nil
		}

		for _, page := range []listing.Page{{Size: 100, Number: 101}, {Size: 4611686018427387904, Number: 3}} {
			projects, err := backend.Find(context.Background(), filter.Compile(nil), page)
			Expect(err).To(BeNil())
			Expect(projects).ToNot(BeNil())
			Expect(projects).To(BeEmpty())
		}
		Expect(called).To(BeFalse())
	})

	t.Run("should return search errors", func(t *testing.T) {
		_, restore := captureSearch(nil, errors.New("es down"))
		defer restore()
		_, err := backend.Find(context.Background(), filter.Compile(nil), listing.Unpaged)
		Expect(err).To(MatchError("es down"))
	})
}

func TestElasticBackendCount(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should count with the compiled query", func(t *testing.T) {
		var captured interface{}
		orig := es.CountFunc
		defer func() { es.CountFunc = orig }()
		es.CountFunc = func(ctx context.Context, index string, query interface{}) (int, error) {
			captured = query
			return 7, nil
		}

		predicate := filter.Compile(map[string]string{filter.KeyProjectRegion: string(domain.RegionCentral)})
		n, err := (&search.ElasticBackend{}).Count(context.Background(), predicate)
		Expect(err).To(BeNil())
		Expect(n).To(Equal(7))
		Expect(toJSON(captured)).To(MatchJSON(`{"query": ` + toJSON(predicate.ESQuery()) + `}`))
	})
}
