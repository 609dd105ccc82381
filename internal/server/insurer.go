package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/polisa/internal/audit/domain"
	insurerdomain "github.com/smallbiznis/polisa/internal/insurer/domain"
)

func (s *Server) CreateInsurer(c *gin.Context) {
	var req insurerdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.insurerSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.ActionInsurerCreate, "insurer", resp.ID, map[string]any{"code": resp.Code})
	respond(c, http.StatusCreated, resp)
}

func (s *Server) ListInsurers(c *gin.Context) {
	active, err := parseOptionalBool(c.Query("active"))
	if err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return
	}

	resp, err := s.insurerSvc.List(c.Request.Context(), insurerdomain.ListRequest{Active: active})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) GetInsurerByID(c *gin.Context) {
	resp, err := s.insurerSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) ListChannelConfigs(c *gin.Context) {
	resp, err := s.insurerSvc.ListChannelConfigs(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) GetChannelConfig(c *gin.Context) {
	resp, err := s.insurerSvc.GetChannelConfig(c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		strings.TrimSpace(c.Param("channel")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

type upsertChannelConfigRequest struct {
	Active         *bool           `json:"active"`
	InterceptRules json.RawMessage `json:"intercept_rules"`
}

// UpsertChannelConfig replaces the channel's rule blob. The blob is parsed
// before it is stored so a bad rule never reaches submissions.
func (s *Server) UpsertChannelConfig(c *gin.Context) {
	var req upsertChannelConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.insurerSvc.UpsertChannelConfig(c.Request.Context(), insurerdomain.UpsertChannelConfigRequest{
		InsurerID:      strings.TrimSpace(c.Param("id")),
		ChannelCode:    strings.TrimSpace(c.Param("channel")),
		Active:         req.Active,
		InterceptRules: req.InterceptRules,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, auditdomain.ActionChannelUpsert, "insurer", resp.InsurerID, map[string]any{"channel": resp.ChannelCode, "active": resp.Active})
	respond(c, http.StatusOK, resp)
}

func isInsurerValidationError(err error) bool {
	switch {
	case errors.Is(err, insurerdomain.ErrInvalidID),
		errors.Is(err, insurerdomain.ErrInvalidCode),
		errors.Is(err, insurerdomain.ErrInvalidName),
		errors.Is(err, insurerdomain.ErrInvalidChannel),
		errors.Is(err, insurerdomain.ErrInvalidRules):
		return true
	default:
		return false
	}
}
