package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/polisa/internal/audit/domain"
	plandomain "github.com/smallbiznis/polisa/internal/plan/domain"
)

func (s *Server) CreatePlan(c *gin.Context) {
	var req plandomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.planSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.ActionPlanCreate, "plan", resp.ID, map[string]any{"code": resp.Code})
	respond(c, http.StatusCreated, resp)
}

func (s *Server) ListPlans(c *gin.Context) {
	active, err := parseOptionalBool(c.Query("active"))
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return
	}

	resp, err := s.planSvc.ListByProduct(c.Request.Context(), plandomain.ListRequest{
		ProductID: strings.TrimSpace(c.Query("product_id")),
		Active:    active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) GetPlanByID(c *gin.Context) {
	resp, err := s.planSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) ListPlanLiabilities(c *gin.Context) {
	resp, err := s.planSvc.ListLiabilities(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) BindPlanLiability(c *gin.Context) {
	var req plandomain.BindLiabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.PlanID = strings.TrimSpace(c.Param("id"))
	req.LiabilityID = strings.TrimSpace(c.Param("liability_id"))

	resp, err := s.planSvc.BindLiability(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.ActionPlanLiabilityBind, "plan", resp.PlanID, map[string]any{"liability_id": resp.LiabilityID})
	respond(c, http.StatusOK, resp)
}

func isPlanValidationError(err error) bool {
	switch {
	case errors.Is(err, plandomain.ErrInvalidID),
		errors.Is(err, plandomain.ErrInvalidProduct),
		errors.Is(err, plandomain.ErrInvalidCode),
		errors.Is(err, plandomain.ErrInvalidName),
		errors.Is(err, plandomain.ErrInvalidJobClassRange),
		errors.Is(err, plandomain.ErrInvalidDurations),
		errors.Is(err, plandomain.ErrInvalidPaymentType),
		errors.Is(err, plandomain.ErrInvalidLiability),
		errors.Is(err, plandomain.ErrInvalidCoverageOptions),
		errors.Is(err, plandomain.ErrInvalidDefaultCoverage):
		return true
	default:
		return false
	}
}
