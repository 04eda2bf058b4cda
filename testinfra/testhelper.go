package testinfra

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"marketplace/domain"
	"marketplace/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// ExecuteRequest serves req on router and returns the status code and body.
func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *http.Response) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp.StatusCode, string(body), resp
}

func StringReader(s string) io.Reader {
	return strings.NewReader(s)
}

// BuildSession builds an authenticated session without registering it.
func BuildSession(uid types.ID, role domain.Role) *session.Session {
	return &session.Session{
		Context:  context.Background(),
		Token:    "token-" + uid.String(),
		Identity: session.Identity{ID: uid, Name: "user" + uid.String()},
		Role:     role,
	}
}

// IssueToken registers a session and returns the request header value carrying it.
func IssueToken(uid types.ID, role domain.Role) string {
	s := session.Issue(session.Identity{ID: uid, Name: "user" + uid.String()}, role)
	return "Bearer " + s.Token
}
