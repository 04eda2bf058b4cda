package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type Project struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Title              string `json:"title"`
	Description        string `json:"description" sql:"type:TEXT"`
	CoverImageURL      string `json:"coverImageUrl"`
	VolunteerSignupURL string `json:"volunteerSignupUrl"`

	ProjectOwnerID types.ID      `json:"projectOwnerId" gorm:"index"`
	ProjectOwner   *OwnerSummary `json:"projectOwner,omitempty" gorm:"-"`

	IssuesAddressed       []IssueAddressed       `json:"issuesAddressed" gorm:"-"`
	VolunteerRequirements []VolunteerRequirement `json:"volunteerRequirements" gorm:"-"`

	ProjectType ProjectType      `json:"projectType"`
	StartDate   *Date            `json:"startDate" gorm:"type:date"`
	EndDate     *Date            `json:"endDate" gorm:"type:date"`
	StartMonth  int              `json:"-"`
	Frequency   ProjectFrequency `json:"frequency"`
	Region      Region           `json:"region"`

	State           ProjectState `json:"state" gorm:"index"`
	RejectionReason string       `json:"rejectionReason"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VolunteerRequirement is a value object owned by a project. Seq keeps the submitted order, starting at 1.
type VolunteerRequirement struct {
	ProjectID       types.ID                 `json:"-" gorm:"primary_key;auto_increment:false"`
	Seq             int                      `json:"-" gorm:"primary_key;auto_increment:false"`
	Type            VolunteerRequirementType `json:"type" binding:"required,requirement"`
	CommitmentLevel string                   `json:"commitmentLevel"`
	Number          int                      `json:"number" binding:"gte=0"`
}

// ProjectIssue stores one member of Project.IssuesAddressed.
type ProjectIssue struct {
	ProjectID types.ID       `gorm:"primary_key;auto_increment:false"`
	Issue     IssueAddressed `gorm:"primary_key"`
}

type OwnerSummary struct {
	ID           types.ID `json:"id"`
	Name         string   `json:"name"`
	Organization string   `json:"organization"`
}

// SyncDerived recomputes the columns derived from other fields.
func (p *Project) SyncDerived() {
	p.StartMonth = 0
	if p.StartDate != nil && !p.StartDate.IsZero() {
		p.StartMonth = int(p.StartDate.Month())
	}
}

type ProjectCreation struct {
	Title              string `json:"title" binding:"required,lte=255"`
	Description        string `json:"description"`
	CoverImageURL      string `json:"coverImageUrl" binding:"omitempty,url"`
	VolunteerSignupURL string `json:"volunteerSignupUrl" binding:"omitempty,url"`

	IssuesAddressed       []IssueAddressed       `json:"issuesAddressed" binding:"dive,issue"`
	VolunteerRequirements []VolunteerRequirement `json:"volunteerRequirements" binding:"dive"`

	ProjectType ProjectType      `json:"projectType" binding:"required,oneof=EVENT RECURRING"`
	StartDate   *Date            `json:"startDate"`
	EndDate     *Date            `json:"endDate"`
	Frequency   ProjectFrequency `json:"frequency" binding:"omitempty,frequency"`
	Region      Region           `json:"region" binding:"required,region"`
}

// ProjectUpdating is a patch: nil fields are left untouched.
type ProjectUpdating struct {
	Title              *string `json:"title" binding:"omitempty,lte=255"`
	Description        *string `json:"description"`
	CoverImageURL      *string `json:"coverImageUrl"`
	VolunteerSignupURL *string `json:"volunteerSignupUrl"`

	IssuesAddressed       *[]IssueAddressed       `json:"issuesAddressed" binding:"omitempty,dive,issue"`
	VolunteerRequirements *[]VolunteerRequirement `json:"volunteerRequirements" binding:"omitempty,dive"`

	ProjectType *ProjectType      `json:"projectType" binding:"omitempty,oneof=EVENT RECURRING"`
	StartDate   *Date             `json:"startDate"`
	EndDate     *Date             `json:"endDate"`
	Frequency   *ProjectFrequency `json:"frequency" binding:"omitempty,frequency"`
	Region      *Region           `json:"region" binding:"omitempty,region"`

	State           *ProjectState `json:"state" binding:"omitempty,oneof=PENDING_APPROVAL APPROVED_ACTIVE APPROVED_INACTIVE REJECTED"`
	RejectionReason *string       `json:"rejectionReason"`
}

// ProjectStateTransition records one applied state change.
type ProjectStateTransition struct {
	ID        types.ID     `json:"id" gorm:"primary_key"`
	ProjectID types.ID     `json:"projectId" gorm:"index"`
	FromState ProjectState `json:"fromState"`
	ToState   ProjectState `json:"toState"`
	ActorID   types.ID     `json:"actorId"`
	ActorRole Role         `json:"actorRole"`
	Implicit  bool         `json:"implicit"`
	CreatedAt time.Time    `json:"createdAt"`
}
