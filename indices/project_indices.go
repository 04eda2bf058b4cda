package indices

import (
	"context"
	"fmt"

	"marketplace/client/es"
	"marketplace/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var ProjectIndexName = "projects"

// ProjectDocument is the indexed form of a project. It carries the derived fields the filters and sorts need.
type ProjectDocument struct {
	domain.Project
	StartMonth int   `json:"startMonth"`
	SortID     int64 `json:"sortId"`
}

func NewProjectDocument(p domain.Project) ProjectDocument {
	p.ProjectOwner = nil
	p.SyncDerived()
	return ProjectDocument{Project: p, StartMonth: p.StartMonth, SortID: int64(p.ID)}
}

func (d ProjectDocument) ToProject() domain.Project {
	p := d.Project
	p.StartMonth = d.StartMonth
	return p
}

var keyword = es.H{"type": "keyword"}

var ProjectIndexMapping = es.H{
	"mappings": es.H{
		"properties": es.H{
			"id":                 keyword,
			"sortId":             es.H{"type": "long"},
			"title":              es.H{"type": "text"},
			"description":        es.H{"type": "text"},
			"coverImageUrl":      es.H{"type": "keyword", "index": false},
			"volunteerSignupUrl": es.H{"type": "keyword", "index": false},
			"projectOwnerId":     keyword,
			"issuesAddressed":    keyword,
			"volunteerRequirements": es.H{"properties": es.H{
				"type":            keyword,
				"commitmentLevel": keyword,
				"number":          es.H{"type": "integer"},
			}},
			"projectType":     keyword,
			"startDate":       es.H{"type": "date", "format": "yyyy-MM-dd"},
			"endDate":         es.H{"type": "date", "format": "yyyy-MM-dd"},
			"startMonth":      es.H{"type": "integer"},
			"frequency":       keyword,
			"region":          keyword,
			"state":           keyword,
			"rejectionReason": es.H{"type": "text"},
			"createdAt":       es.H{"type": "date"},
			"updatedAt":       es.H{"type": "date"},
		},
	},
}

// BatchActionError collects the failures of a batch, keyed by project id.
type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%d projects failed: %v", len(e), map[types.ID]error(e))
}

func EnsureProjectIndex(ctx context.Context) error {
	return es.EnsureIndexFunc(ctx, ProjectIndexName, ProjectIndexMapping)
}

func IndexProjects(ctx context.Context, projects []domain.Project) error {
	errs := BatchActionError{}
	for _, p := range projects {
		if err := es.IndexFunc(ctx, ProjectIndexName, p.ID.String(), NewProjectDocument(p)); err != nil {
			logrus.Warnf("index project %d: %v", p.ID, err)
			errs[p.ID] = err
			continue
		}
		logrus.Debugf("index project %d successfully", p.ID)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
