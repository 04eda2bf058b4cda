package listing

import (
	"context"

	"marketplace/domain"
	"marketplace/domain/filter"
	"marketplace/domain/project"
	"marketplace/persistence"
)

// DatabaseBackend evaluates predicates against the relational store.
type DatabaseBackend struct{}

var columns = map[string]string{
	FieldCreatedAt: "projects.created_at",
	FieldUpdatedAt: "projects.updated_at",
}

func (b *DatabaseBackend) Find(ctx context.Context, predicate filter.Predicate, page Page) ([]domain.Project, error) {
	if page.Beyond() {
		return []domain.Project{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB(ctx)

	order := OrderOf(predicate.State())
	direction := " ASC"
	if order.Desc {
		direction = " DESC"
	}
	q := predicate.Scope(db.Model(&domain.Project{})).
		Order(columns[order.Field] + direction).
		Order("projects.id" + direction)
	if page.Paged() {
		q = q.Offset(page.Offset()).Limit(page.Size)
	}

	projects := []domain.Project{}
	if err := q.Find(&projects).Error; err != nil {
		return nil, err
	}
	if err := project.AttachAssociationsFunc(db, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (b *DatabaseBackend) Count(ctx context.Context, predicate filter.Predicate) (int, error) {
	var n int
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	if err := predicate.Scope(db.Model(&domain.Project{})).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
