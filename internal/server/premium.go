package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	premiumdomain "github.com/smallbiznis/polisa/internal/premium/domain"
	ratedomain "github.com/smallbiznis/polisa/internal/rate/domain"
)

func (s *Server) CalculatePremium(c *gin.Context) {
	var req premiumdomain.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.premiumSvc.Calculate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (s *Server) LookupRate(c *gin.Context) {
	var query struct {
		ProductID      string `form:"product_id"`
		PlanID         string `form:"plan_id"`
		LiabilityID    string `form:"liability_id"`
		JobClass       string `form:"job_class"`
		CoverageAmount string `form:"coverage_amount"`
		AsOf           string `form:"as_of"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rateSvc.Lookup(c.Request.Context(), ratedomain.LookupRequest{
		ProductID:      strings.TrimSpace(query.ProductID),
		PlanID:         strings.TrimSpace(query.PlanID),
		LiabilityID:    strings.TrimSpace(query.LiabilityID),
		JobClass:       strings.TrimSpace(query.JobClass),
		CoverageAmount: strings.TrimSpace(query.CoverageAmount),
		AsOf:           strings.TrimSpace(query.AsOf),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

// ListRates is the portal listing; plan-less calculated rows of products
// with a fixed plan are always suppressed here.
func (s *Server) ListRates(c *gin.Context) {
	req, ok := bindRateListQuery(c)
	if !ok {
		return
	}
	req.IncludeSuppressed = false

	resp, err := s.rateSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func bindRateListQuery(c *gin.Context) (ratedomain.ListRequest, bool) {
	var query struct {
		ProductID         string `form:"product_id"`
		PlanID            string `form:"plan_id"`
		LiabilityID       string `form:"liability_id"`
		PremiumType       string `form:"premium_type"`
		IncludeSuppressed string `form:"include_suppressed"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return ratedomain.ListRequest{}, false
	}

	include, err := parseOptionalBool(query.IncludeSuppressed)
	if err != nil {
		AbortWithError(c, newValidationError("include_suppressed", "invalid_include_suppressed", "invalid include_suppressed"))
		return ratedomain.ListRequest{}, false
	}

	return ratedomain.ListRequest{
		ProductID:         strings.TrimSpace(query.ProductID),
		PlanID:            strings.TrimSpace(query.PlanID),
		LiabilityID:       strings.TrimSpace(query.LiabilityID),
		PremiumType:       strings.TrimSpace(query.PremiumType),
		IncludeSuppressed: include != nil && *include,
	}, true
}

func isPremiumValidationError(err error) bool {
	switch {
	case errors.Is(err, premiumdomain.ErrProductRequired),
		errors.Is(err, premiumdomain.ErrPlanRequired),
		errors.Is(err, premiumdomain.ErrInvalidInsuredCount),
		errors.Is(err, premiumdomain.ErrJobClassRequired),
		errors.Is(err, premiumdomain.ErrLiabilitySelectionsRequired),
		errors.Is(err, premiumdomain.ErrJobClassOutOfRange),
		errors.Is(err, premiumdomain.ErrInvalidLiability),
		errors.Is(err, premiumdomain.ErrDuplicateLiability),
		errors.Is(err, premiumdomain.ErrInvalidCoverageAmount),
		errors.Is(err, premiumdomain.ErrDurationNotAllowed),
		errors.Is(err, premiumdomain.ErrInvalidAsOf),
		errors.Is(err, premiumdomain.ErrProductInactive),
		errors.Is(err, premiumdomain.ErrPlanInactive):
		return true
	default:
		return false
	}
}

func isPremiumNotFoundError(err error) bool {
	switch {
	case errors.Is(err, premiumdomain.ErrProductNotFound),
		errors.Is(err, premiumdomain.ErrPlanNotFound),
		errors.Is(err, premiumdomain.ErrFixedPremiumMissing):
		return true
	default:
		return false
	}
}

func isRateValidationError(err error) bool {
	switch {
	case errors.Is(err, ratedomain.ErrInvalidID),
		errors.Is(err, ratedomain.ErrInvalidProduct),
		errors.Is(err, ratedomain.ErrInvalidPlan),
		errors.Is(err, ratedomain.ErrInvalidLiability),
		errors.Is(err, ratedomain.ErrInvalidPremiumType),
		errors.Is(err, ratedomain.ErrInvalidJobClass),
		errors.Is(err, ratedomain.ErrInvalidCoverageAmount),
		errors.Is(err, ratedomain.ErrInvalidBaseRate),
		errors.Is(err, ratedomain.ErrInvalidRateFactor),
		errors.Is(err, ratedomain.ErrInvalidPremiumBounds),
		errors.Is(err, ratedomain.ErrInvalidFixedPremium),
		errors.Is(err, ratedomain.ErrInvalidDate),
		errors.Is(err, ratedomain.ErrInvalidWindow),
		errors.Is(err, ratedomain.ErrFieldNotAllowed):
		return true
	default:
		return false
	}
}
