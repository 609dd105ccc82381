package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/polisa/internal/audit/domain"
	ratedomain "github.com/smallbiznis/polisa/internal/rate/domain"
)

func (s *Server) CreateRate(c *gin.Context) {
	var req ratedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rateSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.ActionRateCreate, "rate", resp.ID, map[string]any{"product_id": resp.ProductID})
	respond(c, http.StatusCreated, resp)
}

// ListAdminRates lets operators opt in to suppressed rows.
func (s *Server) ListAdminRates(c *gin.Context) {
	req, ok := bindRateListQuery(c)
	if !ok {
		return
	}

	resp, err := s.rateSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) GetRateByID(c *gin.Context) {
	resp, err := s.rateSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) DeleteRate(c *gin.Context) {
	if err := s.rateSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.ActionRateDelete, "rate", strings.TrimSpace(c.Param("id")), nil)
	c.Status(http.StatusNoContent)
}
