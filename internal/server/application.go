package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	appdomain "github.com/smallbiznis/polisa/internal/application/domain"
	auditdomain "github.com/smallbiznis/polisa/internal/audit/domain"
	obscontext "github.com/smallbiznis/polisa/internal/observability/context"
	"github.com/smallbiznis/polisa/pkg/db/pagination"
)

// CreateApplication submits an application. Interception violations come
// back as 400 with the violation kind as the error code.
func (s *Server) CreateApplication(c *gin.Context) {
	var req appdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	channel := strings.TrimSpace(req.Channel)
	if channel == "" {
		channel = s.cfg.DefaultChannel
	}
	ctx := obscontext.WithChannel(c.Request.Context(), channel)

	resp, err := s.applicationSvc.Create(ctx, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusCreated, resp)
}

func (s *Server) GetApplicationByID(c *gin.Context) {
	resp, err := s.applicationSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) ListApplications(c *gin.Context) {
	var query struct {
		Status    string `form:"status"`
		ProductID string `form:"product_id"`
		CompanyID string `form:"company_id"`
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.applicationSvc.List(c.Request.Context(), appdomain.ListRequest{
		Status:     strings.TrimSpace(query.Status),
		ProductID:  strings.TrimSpace(query.ProductID),
		CompanyID:  strings.TrimSpace(query.CompanyID),
		Pagination: query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) UpdateApplicationStatus(c *gin.Context) {
	var req appdomain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.applicationSvc.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.ActionApplicationStatus, "application", resp.ID, map[string]any{"status": string(resp.Status)})
	respond(c, http.StatusOK, resp)
}

func (s *Server) RenderQuotation(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	doc, err := s.applicationSvc.QuotationSheet(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", "quotation-"+id+".pdf"))
	c.Data(http.StatusOK, "application/pdf", doc)
}

func isApplicationValidationError(err error) bool {
	switch {
	case errors.Is(err, appdomain.ErrInvalidID),
		errors.Is(err, appdomain.ErrInvalidProduct),
		errors.Is(err, appdomain.ErrCompanyNameRequired),
		errors.Is(err, appdomain.ErrCreditCodeRequired),
		errors.Is(err, appdomain.ErrProvinceRequired),
		errors.Is(err, appdomain.ErrPlanInstancesRequired),
		errors.Is(err, appdomain.ErrInvalidPlan),
		errors.Is(err, appdomain.ErrInvalidInsuredCount),
		errors.Is(err, appdomain.ErrInvalidDate),
		errors.Is(err, appdomain.ErrInvalidWindow),
		errors.Is(err, appdomain.ErrPersonNameRequired),
		errors.Is(err, appdomain.ErrInvalidIDType),
		errors.Is(err, appdomain.ErrInvalidIDNumber),
		errors.Is(err, appdomain.ErrInvalidGender),
		errors.Is(err, appdomain.ErrInvalidPlanIndex),
		errors.Is(err, appdomain.ErrDuplicatePerson),
		errors.Is(err, appdomain.ErrRosterExceedsCount),
		errors.Is(err, appdomain.ErrProductInactive),
		errors.Is(err, appdomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}
