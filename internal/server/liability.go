package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/polisa/internal/audit/domain"
	clausedomain "github.com/smallbiznis/polisa/internal/clause/domain"
	liabilitydomain "github.com/smallbiznis/polisa/internal/liability/domain"
)

func (s *Server) CreateClause(c *gin.Context) {
	var req clausedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clauseSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.ActionClauseCreate, "clause", resp.ID, map[string]any{"code": resp.Code})
	respond(c, http.StatusCreated, resp)
}

func (s *Server) ListClauses(c *gin.Context) {
	resp, err := s.clauseSvc.List(c.Request.Context(), clausedomain.ListRequest{
		InsurerID: strings.TrimSpace(c.Query("insurer_id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) GetClauseByID(c *gin.Context) {
	resp, err := s.clauseSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) CreateLiability(c *gin.Context) {
	var req liabilitydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.liabilitySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.ActionLiabilityCreate, "liability", resp.ID, map[string]any{"code": resp.Code})
	respond(c, http.StatusCreated, resp)
}

func (s *Server) ListLiabilities(c *gin.Context) {
	resp, err := s.liabilitySvc.List(c.Request.Context(), liabilitydomain.ListRequest{
		InsurerID: strings.TrimSpace(c.Query("insurer_id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) GetLiabilityByID(c *gin.Context) {
	resp, err := s.liabilitySvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func isClauseValidationError(err error) bool {
	switch {
	case errors.Is(err, clausedomain.ErrInvalidID),
		errors.Is(err, clausedomain.ErrInvalidInsurer),
		errors.Is(err, clausedomain.ErrInvalidCode),
		errors.Is(err, clausedomain.ErrInvalidName):
		return true
	default:
		return false
	}
}

func isLiabilityValidationError(err error) bool {
	switch {
	case errors.Is(err, liabilitydomain.ErrInvalidID),
		errors.Is(err, liabilitydomain.ErrInvalidInsurer),
		errors.Is(err, liabilitydomain.ErrInvalidClause),
		errors.Is(err, liabilitydomain.ErrInvalidCode),
		errors.Is(err, liabilitydomain.ErrInvalidName),
		errors.Is(err, liabilitydomain.ErrInvalidType),
		errors.Is(err, liabilitydomain.ErrInvalidUnit):
		return true
	default:
		return false
	}
}
