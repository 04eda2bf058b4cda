package project

import (
	"context"
	"errors"
	"time"

	"marketplace/bizerror"
	"marketplace/domain"
	"marketplace/event"
	"marketplace/idgen"
	"marketplace/persistence"
	"marketplace/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const SourceTypeProject = "PROJECT"

var (
	projectIdWorker    = idgen.NewWorker()
	transitionIdWorker = idgen.NewWorker()

	NowFunc = time.Now

	CreateProjectFunc         = CreateProject
	UpdateProjectFunc         = UpdateProject
	DetailProjectFunc         = DetailProject
	QueryStateTransitionsFunc = QueryStateTransitions
	AttachAssociationsFunc    = AttachAssociations
	LoadProjectsFunc          = LoadProjects
)

// Migrate creates the tables owned by this package.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Project{}, &domain.ProjectIssue{}, &domain.VolunteerRequirement{},
		&domain.ProjectStateTransition{}).Error; err != nil {
		return err
	}
	return event.Migrate(db)
}

// CreateProject submits a new project for approval. The state in c, if any, is ignored.
func CreateProject(c *domain.ProjectCreation, s *session.Session) (*domain.Project, error) {
	if !s.IsProjectOwner() {
		return nil, bizerror.ErrForbidden
	}

	now := NowFunc().UTC()
	id := idgen.NextID(projectIdWorker)
	p := domain.Project{
		ID:                 id,
		Title:              c.Title,
		Description:        c.Description,
		CoverImageURL:      c.CoverImageURL,
		VolunteerSignupURL: c.VolunteerSignupURL,
		ProjectOwnerID:     s.Identity.ID,

		IssuesAddressed:       distinctIssues(c.IssuesAddressed),
		VolunteerRequirements: numberRequirements(id, c.VolunteerRequirements),

		ProjectType: c.ProjectType,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		Frequency:   c.Frequency,
		Region:      c.Region,

		State:     domain.StatePendingApproval,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.SyncDerived()

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		if err := saveIssues(tx, p.ID, p.IssuesAddressed); err != nil {
			return err
		}
		if err := saveRequirements(tx, p.ID, p.VolunteerRequirements); err != nil {
			return err
		}
		var err error
		ev, err = event.CreateEvent(SourceTypeProject, p.ID, p.Title, event.EventCategoryCreated, nil, &s.Identity, now, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	dispatch(s.Context, ev)
	return &p, nil
}

// UpdateProject applies patch on behalf of the session's role; a nil patch is an empty edit. The write is conditional on the state read
// in the same transaction; losing a race yields ErrConcurrentModification and writes nothing.
func UpdateProject(id types.ID, patch *domain.ProjectUpdating, s *session.Session) (*domain.Project, error) {
	if !s.Authenticated() {
		return nil, bizerror.ErrUnauthenticated
	}
	if patch == nil {
		patch = &domain.ProjectUpdating{}
	}
	now := NowFunc()

	var updated domain.Project
	var events []*event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	err := db.Transaction(func(tx *gorm.DB) error {
		current, err := loadProject(tx, id)
		if err != nil {
			return err
		}
		if s.Role == domain.RoleProjectOwner && current.ProjectOwnerID != s.Identity.ID {
			return bizerror.ErrForbidden
		}

		next, change, err := ApplyUpdate(*current, patch, s.Role, now)
		if err != nil {
			logrus.WithFields(logrus.Fields{"project": id, "role": s.Role, "from": change.From, "to": change.To}).
				Info("state change rejected")
			return err
		}

		if err := conditionalWrite(tx, current.State, &next); err != nil {
			return err
		}
		if patch.IssuesAddressed != nil {
			if err := tx.Where("project_id = ?", id).Delete(&domain.ProjectIssue{}).Error; err != nil {
				return err
			}
			if err := saveIssues(tx, id, next.IssuesAddressed); err != nil {
				return err
			}
		}
		if patch.VolunteerRequirements != nil {
			if err := tx.Where("project_id = ?", id).Delete(&domain.VolunteerRequirement{}).Error; err != nil {
				return err
			}
			if err := saveRequirements(tx, id, next.VolunteerRequirements); err != nil {
				return err
			}
		}

		if props := diffProperties(current, &next); len(props) > 0 {
			ev, err := event.CreateEvent(SourceTypeProject, id, next.Title, event.EventCategoryPropertyUpdated,
				props, &s.Identity, now, tx)
			if err != nil {
				return err
			}
			events = append(events, ev)
		}
		if change.Changed() {
			transition := domain.ProjectStateTransition{
				ID: idgen.NextID(transitionIdWorker), ProjectID: id, FromState: change.From, ToState: change.To,
				ActorID: s.Identity.ID, ActorRole: s.Role, Implicit: change.Implicit, CreatedAt: next.UpdatedAt,
			}
			if err := tx.Create(&transition).Error; err != nil {
				return err
			}
			ev, err := event.CreateEvent(SourceTypeProject, id, next.Title, event.EventCategoryStateChanged,
				[]event.UpdatedProperty{{PropertyName: "state", OldValue: string(change.From), NewValue: string(change.To)}},
				&s.Identity, now, tx)
			if err != nil {
				return err
			}
			events = append(events, ev)
			logrus.WithFields(logrus.Fields{"project": id, "role": s.Role, "from": change.From, "to": change.To,
				"implicit": change.Implicit}).Info("project state changed")
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	dispatch(s.Context, events...)
	return &updated, nil
}

func conditionalWrite(tx *gorm.DB, expected domain.ProjectState, p *domain.Project) error {
	r := tx.Model(&domain.Project{}).Where("id = ? AND state = ?", p.ID, expected).UpdateColumns(map[string]interface{}{
		"title":                p.Title,
		"description":          p.Description,
		"cover_image_url":      p.CoverImageURL,
		"volunteer_signup_url": p.VolunteerSignupURL,
		"project_type":         p.ProjectType,
		"start_date":           p.StartDate,
		"end_date":             p.EndDate,
		"start_month":          p.StartMonth,
		"frequency":            p.Frequency,
		"region":               p.Region,
		"state":                p.State,
		"rejection_reason":     p.RejectionReason,
		"updated_at":           p.UpdatedAt,
	})
	if r.Error != nil {
		return r.Error
	}
	if r.RowsAffected != 1 {
		logrus.WithFields(logrus.Fields{"project": p.ID, "expectedState": expected}).Warn("conditional write missed")
		return bizerror.ErrConcurrentModification
	}
	return nil
}

func DetailProject(id types.ID, s *session.Session) (*domain.Project, error) {
	return loadProject(persistence.ActiveDataSourceManager.GormDB(s.Context), id)
}

// LoadProjects pages over all projects by id, associations included. Used by index synchronisation.
func LoadProjects(ctx context.Context, page, pageSize int) ([]domain.Project, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	projects := []domain.Project{}
	if err := db.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&projects).Error; err != nil {
		return nil, err
	}
	if err := AttachAssociations(db, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func QueryStateTransitions(id types.ID, s *session.Session) ([]domain.ProjectStateTransition, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if _, err := loadProject(db, id); err != nil {
		return nil, err
	}
	transitions := []domain.ProjectStateTransition{}
	if err := db.Where("project_id = ?", id).Order("created_at ASC, id ASC").Find(&transitions).Error; err != nil {
		return nil, err
	}
	return transitions, nil
}

func loadProject(db *gorm.DB, id types.ID) (*domain.Project, error) {
	var p domain.Project
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	projects := []domain.Project{p}
	if err := AttachAssociations(db, projects); err != nil {
		return nil, err
	}
	return &projects[0], nil
}

// AttachAssociations loads issues and volunteer requirements into projects in place.
func AttachAssociations(db *gorm.DB, projects []domain.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]types.ID, 0, len(projects))
	index := make(map[types.ID]int, len(projects))
	for i := range projects {
		ids = append(ids, projects[i].ID)
		index[projects[i].ID] = i
		projects[i].IssuesAddressed = []domain.IssueAddressed{}
		projects[i].VolunteerRequirements = []domain.VolunteerRequirement{}
	}

	var issues []domain.ProjectIssue
	if err := db.Where("project_id IN (?)", ids).Order("issue ASC").Find(&issues).Error; err != nil {
		return err
	}
	for _, i := range issues {
		p := &projects[index[i.ProjectID]]
		p.IssuesAddressed = append(p.IssuesAddressed, i.Issue)
	}

	var reqs []domain.VolunteerRequirement
	if err := db.Where("project_id IN (?)", ids).Order("project_id ASC, seq ASC").Find(&reqs).Error; err != nil {
		return err
	}
	for _, r := range reqs {
		p := &projects[index[r.ProjectID]]
		p.VolunteerRequirements = append(p.VolunteerRequirements, r)
	}
	return nil
}

func saveIssues(tx *gorm.DB, id types.ID, issues []domain.IssueAddressed) error {
	for _, i := range issues {
		if err := tx.Create(&domain.ProjectIssue{ProjectID: id, Issue: i}).Error; err != nil {
			return err
		}
	}
	return nil
}

func saveRequirements(tx *gorm.DB, id types.ID, reqs []domain.VolunteerRequirement) error {
	for i := range reqs {
		r := reqs[i]
		r.ProjectID = id
		if err := tx.Create(&r).Error; err != nil {
			return err
		}
	}
	return nil
}

func dispatch(ctx context.Context, records ...*event.EventRecord) {
	for _, r := range records {
		if r == nil || event.InvokeHandlersFunc == nil {
			continue
		}
		results := event.InvokeHandlersFunc(r)
		if len(results) == 0 || !event.AllSucceeded(results) {
			continue
		}
		if err := event.MarkSyncedFunc(r, persistence.ActiveDataSourceManager.GormDB(ctx)); err != nil {
			logrus.Warnf("mark event %d synced: %v", r.ID, err)
		}
	}
}
