package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/polisa/internal/audit/domain"
	clausedomain "github.com/smallbiznis/polisa/internal/clause/domain"
	insurerdomain "github.com/smallbiznis/polisa/internal/insurer/domain"
	liabilitydomain "github.com/smallbiznis/polisa/internal/liability/domain"
	plandomain "github.com/smallbiznis/polisa/internal/plan/domain"
	productdomain "github.com/smallbiznis/polisa/internal/product/domain"
	ratedomain "github.com/smallbiznis/polisa/internal/rate/domain"
)

func (s *Server) CreateProduct(c *gin.Context) {
	var req productdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.ActionProductCreate, "product", resp.ID, map[string]any{"code": resp.Code})
	respond(c, http.StatusCreated, resp)
}

type productListQuery struct {
	InsurerID string `form:"insurer_id"`
	Type      string `form:"type"`
	Name      string `form:"name"`
	Active    string `form:"active"`
	SortBy    string `form:"sort_by"`
	OrderBy   string `form:"order_by"`
}

func (s *Server) ListProducts(c *gin.Context) {
	var query productListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	active, err := parseOptionalBool(query.Active)
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return
	}

	s.listProducts(c, query, active)
}

// ListActiveProducts is the portal catalog; archived products are hidden.
func (s *Server) ListActiveProducts(c *gin.Context) {
	var query productListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	s.listProducts(c, query, boolPtr(true))
}

func (s *Server) listProducts(c *gin.Context, query productListQuery, active *bool) {
	resp, err := s.productSvc.List(c.Request.Context(), productdomain.ListRequest{
		InsurerID: strings.TrimSpace(query.InsurerID),
		Type:      strings.TrimSpace(query.Type),
		Name:      strings.TrimSpace(query.Name),
		Active:    active,
		SortBy:    strings.TrimSpace(query.SortBy),
		OrderBy:   strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) GetProductByID(c *gin.Context) {
	resp, err := s.productSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var req productdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.productSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.ActionProductUpdate, "product", resp.ID, nil)
	respond(c, http.StatusOK, resp)
}

func (s *Server) ArchiveProduct(c *gin.Context) {
	resp, err := s.productSvc.Archive(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.ActionProductArchive, "product", resp.ID, nil)
	respond(c, http.StatusOK, resp)
}

func (s *Server) ListProductPlans(c *gin.Context) {
	resp, err := s.planSvc.ListByProduct(c.Request.Context(), plandomain.ListRequest{
		ProductID: strings.TrimSpace(c.Param("id")),
		Active:    boolPtr(true),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func isProductValidationError(err error) bool {
	switch {
	case errors.Is(err, productdomain.ErrInvalidInsurer),
		errors.Is(err, productdomain.ErrInvalidCode),
		errors.Is(err, productdomain.ErrInvalidName),
		errors.Is(err, productdomain.ErrInvalidType),
		errors.Is(err, productdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}

func isCatalogConflictError(err error) bool {
	switch {
	case errors.Is(err, insurerdomain.ErrCodeExists),
		errors.Is(err, productdomain.ErrCodeExists),
		errors.Is(err, clausedomain.ErrCodeExists),
		errors.Is(err, liabilitydomain.ErrCodeExists),
		errors.Is(err, plandomain.ErrCodeExists):
		return true
	default:
		return false
	}
}

func isCatalogNotFoundError(err error) bool {
	switch {
	case errors.Is(err, insurerdomain.ErrNotFound),
		errors.Is(err, insurerdomain.ErrChannelNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, clausedomain.ErrNotFound),
		errors.Is(err, liabilitydomain.ErrNotFound),
		errors.Is(err, plandomain.ErrNotFound),
		errors.Is(err, ratedomain.ErrNotFound):
		return true
	default:
		return false
	}
}
