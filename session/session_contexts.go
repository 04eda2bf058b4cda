package session

import (
	"context"
	"strings"
	"time"

	"marketplace/bizerror"
	"marketplace/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const TokenExpiration = 24 * time.Hour

var TokenCache = cache.New(TokenExpiration, 1*time.Minute)

const KeySecCtx = "SecCtx"
const KeySecToken = "sec_token"

// Issue registers a new session for identity under a random token.
func Issue(identity Identity, role domain.Role) *Session {
	s := &Session{
		Token:       uuid.New().String(),
		Identity:    identity,
		Role:        role,
		SigningTime: time.Now(),
	}
	TokenCache.Set(s.Token, s, cache.DefaultExpiration)
	return s
}

// Register stores s under its own token with no expiration. Used for bootstrap tokens.
func Register(s *Session) {
	if s == nil || s.Token == "" {
		return
	}
	TokenCache.Set(s.Token, s, cache.NoExpiration)
}

func Revoke(token string) {
	TokenCache.Delete(token)
}

// ExtractSessionFromGinContext never returns nil: anonymous callers get an unauthenticated session.
func ExtractSessionFromGinContext(ctx *gin.Context) *Session {
	var reqCtx context.Context = context.Background()
	if ctx.Request != nil {
		reqCtx = ctx.Request.Context()
	}
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return &Session{Context: reqCtx}
	}
	s0, ok := value.(*Session)
	if !ok || s0.Token == "" {
		return &Session{Context: reqCtx}
	}
	s := s0.Clone()
	s.Context = reqCtx // trace context
	return &s
}

func InjectSessionIntoGinContext(ctx *gin.Context, s *Session) {
	if s != nil && s.Token != "" {
		ctx.Set(KeySecCtx, s)
	}
}

func lookupToken(ctx *gin.Context) (*Session, bool) {
	token, err := ctx.Cookie(KeySecToken)
	if err != nil || token == "" {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return nil, false
		}
		token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	value, found := TokenCache.Get(token)
	if !found {
		return nil, false
	}
	s, ok := value.(*Session)
	return s, ok
}

func SimpleAuthFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		s, ok := lookupToken(ctx)
		if !ok {
			panic(bizerror.ErrUnauthenticated)
		}
		InjectSessionIntoGinContext(ctx, s)
		ctx.Next()
	}
}

// OptionalAuthFilter restores a session when a valid token is present and lets anonymous requests through.
func OptionalAuthFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if s, ok := lookupToken(ctx); ok {
			InjectSessionIntoGinContext(ctx, s)
		}
		ctx.Next()
	}
}

// RequireRole must run after SimpleAuthFilter.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		s := ExtractSessionFromGinContext(ctx)
		if !s.Authenticated() {
			panic(bizerror.ErrUnauthenticated)
		}
		if s.Role != role {
			logrus.WithFields(logrus.Fields{"identity": s.Identity.ID, "role": s.Role, "required": role}).
				Info("role mismatch")
			panic(bizerror.ErrForbidden)
		}
		ctx.Next()
	}
}
