package projectrest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace/bizerror"
	"marketplace/common"
	"marketplace/domain"
	"marketplace/domain/filter"
	"marketplace/domain/listing"
	"marketplace/domain/project"
	"marketplace/domain/project/projectrest"
	"marketplace/owner"
	"marketplace/session"
	"marketplace/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func newRouter() *gin.Engine {
	Expect(common.RegisterBindingValidations()).To(Succeed())
	router := gin.New()
	router.Use(bizerror.ErrorHandling())
	projectrest.RegisterProjectsRestAPI(router)
	return router
}

func stubOwnerSummaries() func() {
	orig := owner.QueryOwnerSummariesFunc
	owner.QueryOwnerSummariesFunc = func(ctx context.Context, ids []types.ID) (map[types.ID]domain.OwnerSummary, error) {
		return map[types.ID]domain.OwnerSummary{7: {ID: 7, Name: "Alice", Organization: "Green Org"}}, nil
	}
	return func() { owner.QueryOwnerSummariesFunc = orig }
}

func TestListProjectsAPI(t *testing.T) {
	RegisterTestingT(t)
	router := newRouter()
	defer stubOwnerSummaries()()

	t.Run("should list projects with owner summaries", func(t *testing.T) {
		orig := listing.ListProjectsFunc
		defer func() { listing.ListProjectsFunc = orig }()
		var received map[string]string
		listing.ListProjectsFunc = func(ctx context.Context, criteria map[string]string) ([]domain.Project, error) {
			received = criteria
			return []domain.Project{
				{ID: 1, Title: "a", ProjectOwnerID: 7, State: domain.StateApprovedActive},
				{ID: 2, Title: "b", ProjectOwnerID: 8, State: domain.StateApprovedActive},
			}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/projects?month=NOVEMBER&page=2&month=MAY", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(received).To(Equal(map[string]string{"month": "NOVEMBER", "page": "2"}))
		Expect(body).To(ContainSubstring(`"projectOwner":{"id":"7","name":"Alice","organization":"Green Org"}`))
		Expect(body).To(HavePrefix(`{"projects":[`))
	})

	t.Run("should return an empty array when nothing matches", func(t *testing.T) {
		orig := listing.ListProjectsFunc
		defer func() { listing.ListProjectsFunc = orig }()
		listing.ListProjectsFunc = func(ctx context.Context, criteria map[string]string) ([]domain.Project, error) {
			return []domain.Project{}, nil
		}
		status, body, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/projects", nil), router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"projects": []}`))
	})

	t.Run("should map listing errors", func(t *testing.T) {
		orig := listing.ListProjectsFunc
		defer func() { listing.ListProjectsFunc = orig }()
		listing.ListProjectsFunc = func(ctx context.Context, criteria map[string]string) ([]domain.Project, error) {
			return nil, errors.New("backend down")
		}
		status, body, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/projects", nil), router)
		Expect(status).To(Equal(http.StatusInternalServerError))
		Expect(body).To(MatchJSON(`{"code":"common.internal_server_error","message":"backend down","data":null}`))
	})

	t.Run("owner listing is scoped to the caller", func(t *testing.T) {
		orig := listing.ListProjectsFunc
		defer func() { listing.ListProjectsFunc = orig }()
		var received map[string]string
		listing.ListProjectsFunc = func(ctx context.Context, criteria map[string]string) ([]domain.Project, error) {
			received = criteria
			return []domain.Project{}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/project_owner/projects?projectOwnerId=99&projectState=REJECTED", nil)
		req.Header.Set("Authorization", testinfra.IssueToken(7, domain.RoleProjectOwner))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(received).To(Equal(map[string]string{filter.KeyProjectOwnerID: "7", filter.KeyProjectState: "REJECTED"}))

		req = httptest.NewRequest(http.MethodGet, "/project_owner/projects", nil)
		req.Header.Set("Authorization", testinfra.IssueToken(1, domain.RoleAdmin))
		status, _, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusForbidden))

		status, _, _ = testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/project_owner/projects", nil), router)
		Expect(status).To(Equal(http.StatusUnauthorized))
	})
}

func TestCountProjectsAPI(t *testing.T) {
	RegisterTestingT(t)
	router := newRouter()

	t.Run("should return counts of all states", func(t *testing.T) {
		orig := listing.CountsFunc
		defer func() { listing.CountsFunc = orig }()
		var received filter.Predicate
		listing.CountsFunc = func(ctx context.Context, predicate filter.Predicate) (map[domain.ProjectState]int, error) {
			received = predicate
			return map[domain.ProjectState]int{
				domain.StatePendingApproval: 1, domain.StateApprovedActive: 2,
				domain.StateApprovedInactive: 0, domain.StateRejected: 0,
			}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/project_counts?projectRegion=CENTRAL", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"counts": {"PENDING_APPROVAL": 1, "APPROVED_ACTIVE": 2, "APPROVED_INACTIVE": 0, "REJECTED": 0}}`))
		Expect(received.Keys()).To(Equal([]string{filter.KeyProjectRegion}))
	})

	t.Run("owner counts are scoped to the caller", func(t *testing.T) {
		orig := listing.CountsFunc
		defer func() { listing.CountsFunc = orig }()
		var received filter.Predicate
		listing.CountsFunc = func(ctx context.Context, predicate filter.Predicate) (map[domain.ProjectState]int, error) {
			received = predicate
			return map[domain.ProjectState]int{}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/project_owner/project_counts", nil)
		req.Header.Set("Authorization", testinfra.IssueToken(7, domain.RoleProjectOwner))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(received.Keys()).To(Equal([]string{filter.KeyProjectOwnerID}))
		Expect(received.Matches(&domain.Project{ProjectOwnerID: 7, State: domain.StateApprovedActive})).To(BeTrue())
		Expect(received.Matches(&domain.Project{ProjectOwnerID: 8, State: domain.StateApprovedActive})).To(BeFalse())
	})
}

func TestDetailProjectAPI(t *testing.T) {
	RegisterTestingT(t)
	router := newRouter()
	defer stubOwnerSummaries()()

	stubDetail := func() func() {
		orig := project.DetailProjectFunc
		project.DetailProjectFunc = func(id types.ID, s *session.Session) (*domain.Project, error) {
			if id != 100 {
				return nil, bizerror.ErrNotFound
			}
			return &domain.Project{ID: 100, Title: "river cleanup", ProjectOwnerID: 7, State: domain.StateApprovedInactive}, nil
		}
		return func() { project.DetailProjectFunc = orig }
	}

	t.Run("anonymous callers get the project only", func(t *testing.T) {
		defer stubDetail()()
		status, body, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/projects/100", nil), router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"title":"river cleanup"`))
		Expect(body).To(ContainSubstring(`"projectOwner":{"id":"7"`))
		Expect(body).ToNot(ContainSubstring(`allowedStates`))
	})

	t.Run("the owning project owner gets allowed states", func(t *testing.T) {
		defer stubDetail()()
		req := httptest.NewRequest(http.MethodGet, "/projects/100", nil)
		req.Header.Set("Authorization", testinfra.IssueToken(7, domain.RoleProjectOwner))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"allowedStates":["APPROVED_ACTIVE"]`))

		req = httptest.NewRequest(http.MethodGet, "/projects/100", nil)
		req.Header.Set("Authorization", testinfra.IssueToken(8, domain.RoleProjectOwner))
		_, body, _ = testinfra.ExecuteRequest(req, router)
		Expect(body).ToNot(ContainSubstring(`allowedStates`))
	})

	t.Run("admins get allowed states", func(t *testing.T) {
		defer stubDetail()()
		req := httptest.NewRequest(http.MethodGet, "/projects/100", nil)
		req.Header.Set("Authorization", testinfra.IssueToken(1, domain.RoleAdmin))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"allowedStates":[`))
	})

	t.Run("should return 404 and 400", func(t *testing.T) {
		defer stubDetail()()
		status, body, _ := testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/projects/101", nil), router)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(MatchJSON(`{"code":"common.record_not_found","message":"record not found","data":null}`))

		status, _, _ = testinfra.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/projects/abc", nil), router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})
}

func TestCreateProjectAPI(t *testing.T) {
	RegisterTestingT(t)
	router := newRouter()

	t.Run("should create project", func(t *testing.T) {
		orig := project.CreateProjectFunc
		defer func() { project.CreateProjectFunc = orig }()
		var received *domain.ProjectCreation
		project.CreateProjectFunc = func(c *domain.ProjectCreation, s *session.Session) (*domain.Project, error) {
			received = c
			return &domain.Project{ID: 5, Title: c.Title, State: domain.StatePendingApproval, ProjectOwnerID: s.Identity.ID}, nil
		}

		req := httptest.NewRequest(http.MethodPost, "/project_owner/projects", testinfra.StringReader(
			`{"project": {"title": "tree planting", "projectType": "EVENT", "region": "CENTRAL",
			"startDate": "2021-11-20", "issuesAddressed": ["URBAN_GREENING"],
			"volunteerRequirements": [{"type": "FIELD_WORK", "number": 3}]}}`))
		req.Header.Set("Authorization", testinfra.IssueToken(7, domain.RoleProjectOwner))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(ContainSubstring(`"state":"PENDING_APPROVAL"`))
		Expect(received.StartDate.String()).To(Equal("2021-11-20"))
		Expect(received.VolunteerRequirements[0].Type).To(Equal(domain.RequirementFieldWork))
	})

	t.Run("should reject invalid payloads", func(t *testing.T) {
		for _, payload := range []string{
			`{}`,
			`{"project": {"projectType": "EVENT", "region": "CENTRAL"}}`,
			`{"project": {"title": "x", "projectType": "EVENT", "region": "MOON"}}`,
			`{"project": {"title": "x", "projectType": "EVENT", "region": "CENTRAL", "issuesAddressed": ["NOPE"]}}`,
			`{"project": {"title": "x", "projectType": "EVENT", "region": "CENTRAL", "frequency": "HOURLY"}}`,
		} {
			req := httptest.NewRequest(http.MethodPost, "/project_owner/projects", testinfra.StringReader(payload))
			req.Header.Set("Authorization", testinfra.IssueToken(7, domain.RoleProjectOwner))
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest), payload)
		}
	})
}

func TestUpdateProjectAPI(t *testing.T) {
	RegisterTestingT(t)
	router := newRouter()

	t.Run("owner and admin routes should pass the session role", func(t *testing.T) {
		orig := project.UpdateProjectFunc
		defer func() { project.UpdateProjectFunc = orig }()
		var roles []domain.Role
		project.UpdateProjectFunc = func(id types.ID, patch *domain.ProjectUpdating, s *session.Session) (*domain.Project, error) {
			roles = append(roles, s.Role)
			return &domain.Project{ID: id, State: *patch.State}, nil
		}

		req := httptest.NewRequest(http.MethodPut, "/project_owner/projects/100", testinfra.StringReader(`{"project": {"state": "APPROVED_INACTIVE"}}`))
		req.Header.Set("Authorization", testinfra.IssueToken(7, domain.RoleProjectOwner))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"state":"APPROVED_INACTIVE"`))

		req = httptest.NewRequest(http.MethodPut, "/admin/projects/100", testinfra.StringReader(`{"project": {"state": "REJECTED"}}`))
		req.Header.Set("Authorization", testinfra.IssueToken(1, domain.RoleAdmin))
		status, _, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(roles).To(Equal([]domain.Role{domain.RoleProjectOwner, domain.RoleAdmin}))

		req = httptest.NewRequest(http.MethodPut, "/admin/projects/100", testinfra.StringReader(`{"project": {"state": "REJECTED"}}`))
		req.Header.Set("Authorization", testinfra.IssueToken(7, domain.RoleProjectOwner))
		status, _, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusForbidden))
	})

	t.Run("should reject unknown states", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/admin/projects/100", testinfra.StringReader(`{"project": {"state": "ARCHIVED"}}`))
		req.Header.Set("Authorization", testinfra.IssueToken(1, domain.RoleAdmin))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	t.Run("should map concurrent modification to 409", func(t *testing.T) {
		orig := project.UpdateProjectFunc
		defer func() { project.UpdateProjectFunc = orig }()
		project.UpdateProjectFunc = func(id types.ID, patch *domain.ProjectUpdating, s *session.Session) (*domain.Project, error) {
			return nil, bizerror.ErrConcurrentModification
		}
		req := httptest.NewRequest(http.MethodPut, "/admin/projects/100", testinfra.StringReader(`{"project": {"title": "x"}}`))
		req.Header.Set("Authorization", testinfra.IssueToken(1, domain.RoleAdmin))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
	})

	t.Run("unauthorized explicit transition should respond 422 and write nothing", func(t *testing.T) {
		testDatabase := testinfra.StartTestDatabase("projects_rest")
		defer testinfra.StopTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB(context.Background())
		Expect(project.Migrate(db)).To(Succeed())
		stored := testinfra.InsertProject(db, testinfra.ProjectFixture{ID: 100, Owner: 7, State: domain.StatePendingApproval})

		req := httptest.NewRequest(http.MethodPut, "/project_owner/projects/100",
			testinfra.StringReader(`{"project": {"state": "APPROVED_ACTIVE", "title": "renamed"}}`))
		req.Header.Set("Authorization", testinfra.IssueToken(7, domain.RoleProjectOwner))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnprocessableEntity))
		Expect(body).To(MatchJSON(`{"errors":[{"title":"Invalid state change.","detail":"This change is not allowed."}]}`))

		var reloaded domain.Project
		Expect(db.Where("id = ?", 100).First(&reloaded).Error).To(BeNil())
		Expect(reloaded.State).To(Equal(domain.StatePendingApproval))
		Expect(reloaded.Title).To(Equal(stored.Title))
	})
}

func TestQueryStateTransitionsAPI(t *testing.T) {
	RegisterTestingT(t)
	router := newRouter()

	t.Run("should list transitions for admins", func(t *testing.T) {
		orig := project.QueryStateTransitionsFunc
		defer func() { project.QueryStateTransitionsFunc = orig }()
		project.QueryStateTransitionsFunc = func(id types.ID, s *session.Session) ([]domain.ProjectStateTransition, error) {
			return []domain.ProjectStateTransition{{ID: 1, ProjectID: id, FromState: domain.StatePendingApproval,
				ToState: domain.StateApprovedActive, ActorID: 1, ActorRole: domain.RoleAdmin}}, nil
		}

		req := httptest.NewRequest(http.MethodGet, "/admin/projects/100/state-transitions", nil)
		req.Header.Set("Authorization", testinfra.IssueToken(1, domain.RoleAdmin))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"fromState":"PENDING_APPROVAL","toState":"APPROVED_ACTIVE"`))
		Expect(body).To(HavePrefix(`{"transitions":[`))
	})
}
