package owner

import (
	"context"
	"time"

	"marketplace/domain"
	"marketplace/idgen"
	"marketplace/persistence"

	"github.com/fundwit/go-commons/types"
)

// ProjectOwner is the organisation contact that submits projects.
type ProjectOwner struct {
	ID           types.ID  `json:"id" gorm:"primary_key"`
	Name         string    `json:"name"`
	Organization string    `json:"organization"`
	Email        string    `json:"email" gorm:"unique_index"`
	CreatedAt    time.Time `json:"createdAt"`
}

type OwnerCreation struct {
	Name         string `json:"name" binding:"required,lte=255"`
	Organization string `json:"organization" binding:"lte=255"`
	Email        string `json:"email" binding:"required,email"`
}

var (
	ownerIdWorker = idgen.NewWorker()

	CreateOwnerFunc         = CreateOwner
	QueryOwnersFunc         = QueryOwners
	QueryOwnerSummariesFunc = QueryOwnerSummaries
	nowFunc                 = time.Now
)

func Migrate(ctx context.Context) error {
	return persistence.ActiveDataSourceManager.GormDB(ctx).AutoMigrate(&ProjectOwner{}).Error
}

func CreateOwner(ctx context.Context, c *OwnerCreation) (*ProjectOwner, error) {
	o := &ProjectOwner{
		ID:           idgen.NextID(ownerIdWorker),
		Name:         c.Name,
		Organization: c.Organization,
		Email:        c.Email,
		CreatedAt:    nowFunc().UTC(),
	}
	if err := persistence.ActiveDataSourceManager.GormDB(ctx).Create(o).Error; err != nil {
		return nil, err
	}
	return o, nil
}

func QueryOwners(ctx context.Context) ([]ProjectOwner, error) {
	owners := []ProjectOwner{}
	if err := persistence.ActiveDataSourceManager.GormDB(ctx).Order("name ASC, id ASC").Find(&owners).Error; err != nil {
		return nil, err
	}
	return owners, nil
}

// QueryOwnerSummaries loads the summaries of the given owners; unknown ids are absent from the result.
func QueryOwnerSummaries(ctx context.Context, ids []types.ID) (map[types.ID]domain.OwnerSummary, error) {
	result := map[types.ID]domain.OwnerSummary{}
	if len(ids) == 0 {
		return result, nil
	}
	var owners []ProjectOwner
	if err := persistence.ActiveDataSourceManager.GormDB(ctx).Where("id IN (?)", distinct(ids)).Find(&owners).Error; err != nil {
		return nil, err
	}
	for _, o := range owners {
		result[o.ID] = domain.OwnerSummary{ID: o.ID, Name: o.Name, Organization: o.Organization}
	}
	return result, nil
}

func distinct(ids []types.ID) []types.ID {
	seen := make(map[types.ID]struct{}, len(ids))
	r := make([]types.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		r = append(r, id)
	}
	return r
}
