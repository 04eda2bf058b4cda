package testinfra

import (
	"time"

	"marketplace/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

// ProjectFixture describes a stored project; zero fields get usable defaults.
type ProjectFixture struct {
	ID           types.ID
	Owner        types.ID
	Title        string
	State        domain.ProjectState
	Type         domain.ProjectType
	Start        *domain.Date
	End          *domain.Date
	Frequency    domain.ProjectFrequency
	Region       domain.Region
	Issues       []domain.IssueAddressed
	Requirements []domain.VolunteerRequirementType
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InsertProject writes the fixture with its associations, bypassing the service layer.
func InsertProject(db *gorm.DB, f ProjectFixture) domain.Project {
	if f.Owner == 0 {
		f.Owner = 1
	}
	if f.State == "" {
		f.State = domain.StateApprovedActive
	}
	if f.Type == "" {
		f.Type = domain.ProjectTypeEvent
	}
	if f.Region == "" {
		f.Region = domain.RegionCentral
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = f.CreatedAt
	}
	if f.Title == "" {
		f.Title = "project " + f.ID.String()
	}

	p := domain.Project{
		ID: f.ID, Title: f.Title, ProjectOwnerID: f.Owner,
		ProjectType: f.Type, StartDate: f.Start, EndDate: f.End, Frequency: f.Frequency, Region: f.Region,
		State: f.State, CreatedAt: f.CreatedAt.UTC(), UpdatedAt: f.UpdatedAt.UTC(),
		IssuesAddressed: []domain.IssueAddressed{}, VolunteerRequirements: []domain.VolunteerRequirement{},
	}
	p.SyncDerived()
	Expect(db.Create(&p).Error).To(BeNil())
	for _, i := range f.Issues {
		Expect(db.Create(&domain.ProjectIssue{ProjectID: p.ID, Issue: i}).Error).To(BeNil())
		p.IssuesAddressed = append(p.IssuesAddressed, i)
	}
	for n, t := range f.Requirements {
		r := domain.VolunteerRequirement{ProjectID: p.ID, Seq: n + 1, Type: t, CommitmentLevel: "weekly", Number: 2}
		Expect(db.Create(&r).Error).To(BeNil())
		p.VolunteerRequirements = append(p.VolunteerRequirements, r)
	}
	return p
}

func DatePtr(year int, month time.Month, day int) *domain.Date {
	d := domain.NewDate(year, month, day)
	return &d
}
