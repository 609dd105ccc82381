package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/polisa/internal/observability/context"
	obslogger "github.com/smallbiznis/polisa/internal/observability/logger"
	"go.uber.org/zap"
)

const (
	contextAdminSubjectKey = "admin_subject"
	actorKindAdmin         = "admin"
)

// AdminAuthRequired resolves the bearer token to a casbin subject.
func (s *Server) AdminAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || s.authzSvc == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		subject, err := s.authzSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextAdminSubjectKey, subject)
		c.Request = c.Request.WithContext(obscontext.WithActor(c.Request.Context(), actorKindAdmin, subject))
		c.Next()
	}
}

func (s *Server) authorize(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString(contextAdminSubjectKey)
		if subject == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), subject, object, action); err != nil {
			obslogger.FromContext(c.Request.Context()).Debug("admin request rejected",
				zap.String("object", object),
				zap.String("action", action),
				zap.Error(err),
			)
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
