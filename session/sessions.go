package session

import (
	"context"
	"time"

	"marketplace/domain"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	Context context.Context `json:"-"`

	Token    string      `json:"token"`
	Identity Identity    `json:"identity"`
	Role     domain.Role `json:"role"`

	SigningTime time.Time `json:"signingTime"`
}

type Identity struct {
	ID   types.ID `json:"id"`
	Name string   `json:"name"`
}

func (s *Session) Clone() Session {
	return Session{
		Context:     s.Context,
		Token:       s.Token,
		Identity:    s.Identity,
		Role:        s.Role,
		SigningTime: s.SigningTime,
	}
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == domain.RoleAdmin
}

func (s *Session) IsProjectOwner() bool {
	return s != nil && s.Role == domain.RoleProjectOwner
}

// Authenticated reports whether s was restored from a token.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}
