package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	interceptdomain "github.com/smallbiznis/polisa/internal/intercept/domain"
)

// GetInterceptRules returns the effective rule set of the product's insurer
// for a channel. An unconfigured channel renders as an empty object.
func (s *Server) GetInterceptRules(c *gin.Context) {
	channel := strings.TrimSpace(c.Query("channel"))
	if channel == "" {
		channel = s.cfg.DefaultChannel
	}

	rules, err := s.interceptSvc.GetProductRules(c.Request.Context(), strings.TrimSpace(c.Param("id")), channel)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, rules)
}

func isInterceptValidationError(err error) bool {
	switch {
	case errors.Is(err, interceptdomain.ErrInvalidRules),
		errors.Is(err, interceptdomain.ErrInvalidProductID):
		return true
	default:
		return false
	}
}
