package projectrest

import (
	"context"
	"net/http"

	"marketplace/bizerror"
	"marketplace/common"
	"marketplace/domain"
	"marketplace/domain/filter"
	"marketplace/domain/listing"
	"marketplace/domain/project"
	"marketplace/domain/state"
	"marketplace/owner"
	"marketplace/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathProjects      = "/projects"
	PathProjectCounts = "/project_counts"

	PathOwnerProjects      = "/project_owner/projects"
	PathOwnerProjectCounts = "/project_owner/project_counts"

	PathAdminProjects = "/admin/projects"
)

type ProjectCreationBody struct {
	Project *domain.ProjectCreation `json:"project" binding:"required"`
}

type ProjectUpdatingBody struct {
	Project *domain.ProjectUpdating `json:"project" binding:"required"`
}

type ProjectDetailBody struct {
	Project       *domain.Project       `json:"project"`
	AllowedStates []domain.ProjectState `json:"allowedStates,omitempty"`
}

// RegisterProjectsRestAPI wires the public, owner and admin routes. listingMiddleWares only guard the public reads.
func RegisterProjectsRestAPI(r *gin.Engine, listingMiddleWares ...gin.HandlerFunc) {
	public := r.Group("", listingMiddleWares...)
	public.Use(session.OptionalAuthFilter())
	public.GET(PathProjects, handleListProjects)
	public.GET(PathProjectCounts, handleCountProjects)
	public.GET(PathProjects+"/:id", handleDetailProject)

	o := r.Group("/project_owner", session.SimpleAuthFilter(), session.RequireRole(domain.RoleProjectOwner))
	o.GET("/projects", handleListOwnProjects)
	o.GET("/project_counts", handleCountOwnProjects)
	o.POST("/projects", handleCreateProject)
	o.PUT("/projects/:id", handleUpdateProject)

	a := r.Group(PathAdminProjects, session.SimpleAuthFilter(), session.RequireRole(domain.RoleAdmin))
	a.PUT(":id", handleUpdateProject)
	a.GET(":id/state-transitions", handleQueryStateTransitions)
}

func handleListProjects(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	listProjects(c, s.Context, common.QueryCriteria(c))
}

func handleCountProjects(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	countProjects(c, s.Context, common.QueryCriteria(c))
}

// handleListOwnProjects scopes the listing to the caller, whatever projectOwnerId the query carries.
func handleListOwnProjects(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	criteria := common.QueryCriteria(c)
	criteria[filter.KeyProjectOwnerID] = s.Identity.ID.String()
	listProjects(c, s.Context, criteria)
}

func handleCountOwnProjects(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	criteria := common.QueryCriteria(c)
	criteria[filter.KeyProjectOwnerID] = s.Identity.ID.String()
	countProjects(c, s.Context, criteria)
}

func listProjects(c *gin.Context, ctx context.Context, criteria map[string]string) {
	projects, err := listing.ListProjectsFunc(ctx, criteria)
	if err != nil {
		panic(err)
	}
	if err := attachOwners(ctx, projects); err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func countProjects(c *gin.Context, ctx context.Context, criteria map[string]string) {
	counts, err := listing.CountsFunc(ctx, filter.Compile(criteria))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

func handleDetailProject(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	s := session.ExtractSessionFromGinContext(c)
	p, err := project.DetailProjectFunc(id, s)
	if err != nil {
		panic(err)
	}
	projects := []domain.Project{*p}
	if err := attachOwners(s.Context, projects); err != nil {
		panic(err)
	}

	body := ProjectDetailBody{Project: &projects[0]}
	if s.IsAdmin() || (s.IsProjectOwner() && p.ProjectOwnerID == s.Identity.ID) {
		body.AllowedStates = state.AllowedTargets(s.Role, p.State)
	}
	c.JSON(http.StatusOK, &body)
}

func handleCreateProject(c *gin.Context) {
	body := ProjectCreationBody{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	p, err := project.CreateProjectFunc(body.Project, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, gin.H{"project": p})
}

// handleUpdateProject serves both the owner and the admin route; the acting role is the session's.
func handleUpdateProject(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	body := ProjectUpdatingBody{}
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	p, err := project.UpdateProjectFunc(id, body.Project, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func handleQueryStateTransitions(c *gin.Context) {
	id, err := common.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	transitions, err := project.QueryStateTransitionsFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"transitions": transitions})
}

// attachOwners denormalises the owner summary onto each project. Unknown owners are left out.
func attachOwners(ctx context.Context, projects []domain.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]types.ID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ProjectOwnerID)
	}
	summaries, err := owner.QueryOwnerSummariesFunc(ctx, ids)
	if err != nil {
		return err
	}
	for i := range projects {
		if summary, found := summaries[projects[i].ProjectOwnerID]; found {
			summary := summary
			projects[i].ProjectOwner = &summary
		}
	}
	return nil
}
