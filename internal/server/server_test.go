package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	appdomain "github.com/smallbiznis/polisa/internal/application/domain"
	apprepo "github.com/smallbiznis/polisa/internal/application/repository"
	appservice "github.com/smallbiznis/polisa/internal/application/service"
	auditrepo "github.com/smallbiznis/polisa/internal/audit/repository"
	auditservice "github.com/smallbiznis/polisa/internal/audit/service"
	"github.com/smallbiznis/polisa/internal/authorization"
	clausedomain "github.com/smallbiznis/polisa/internal/clause/domain"
	clauseservice "github.com/smallbiznis/polisa/internal/clause/service"
	"github.com/smallbiznis/polisa/internal/clock"
	"github.com/smallbiznis/polisa/internal/config"
	insurerrepo "github.com/smallbiznis/polisa/internal/insurer/repository"
	insurerservice "github.com/smallbiznis/polisa/internal/insurer/service"
	interceptrepo "github.com/smallbiznis/polisa/internal/intercept/repository"
	interceptservice "github.com/smallbiznis/polisa/internal/intercept/service"
	liabilitydomain "github.com/smallbiznis/polisa/internal/liability/domain"
	liabilityrepo "github.com/smallbiznis/polisa/internal/liability/repository"
	liabilityservice "github.com/smallbiznis/polisa/internal/liability/service"
	"github.com/smallbiznis/polisa/internal/migration"
	plandomain "github.com/smallbiznis/polisa/internal/plan/domain"
	planrepo "github.com/smallbiznis/polisa/internal/plan/repository"
	planservice "github.com/smallbiznis/polisa/internal/plan/service"
	premiumservice "github.com/smallbiznis/polisa/internal/premium/service"
	productdomain "github.com/smallbiznis/polisa/internal/product/domain"
	productrepo "github.com/smallbiznis/polisa/internal/product/repository"
	productservice "github.com/smallbiznis/polisa/internal/product/service"
	raterepo "github.com/smallbiznis/polisa/internal/rate/repository"
	rateservice "github.com/smallbiznis/polisa/internal/rate/service"
	"github.com/smallbiznis/polisa/internal/ratelimit"
	"github.com/smallbiznis/polisa/internal/seed"
	"github.com/smallbiznis/polisa/pkg/db/dbtest"
	pkgrepository "github.com/smallbiznis/polisa/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubRenderer struct{}

func (stubRenderer) RenderQuotation(appdomain.QuotationSheet) ([]byte, error) {
	return []byte("%PDF-stub"), nil
}

type testServer struct {
	db     *gorm.DB
	engine *gin.Engine
}

func newTestServer(t *testing.T, limiter *ratelimit.Limiter) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.Open(t, migration.Models()...)
	node, err := snowflake.NewNode(7)
	require.NoError(t, err)
	fc := clock.NewFakeClock(time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	cfg := config.Config{
		DefaultChannel: "portal",
		AdminTokens:    map[string]string{"admin-token": "admin", "viewer-token": "viewer"},
	}

	clauseStore := pkgrepository.ProvideStore[clausedomain.Clause](db)
	interceptSvc := interceptservice.New(interceptservice.Params{
		DB: db, Log: log, Cfg: cfg, Clock: fc,
		Underwriting: config.NewStaticUnderwritingConfigHolder(config.DefaultUnderwritingConfig()),
		Lookup:       interceptrepo.Provide(),
		Products:     productrepo.Provide(),
		Insurers:     insurerrepo.Provide(),
	})
	insurerSvc := insurerservice.New(insurerservice.Params{
		DB: db, Log: log, GenID: node, Clock: fc, Repo: insurerrepo.Provide(), Intercept: interceptSvc,
	})
	productSvc := productservice.New(productservice.Params{
		DB: db, Log: log, GenID: node, Clock: fc, Repo: productrepo.Provide(), Insurers: insurerrepo.Provide(),
	})
	clauseSvc := clauseservice.New(clauseservice.Params{
		DB: db, Log: log, GenID: node, Clock: fc, Store: clauseStore, Insurers: insurerrepo.Provide(),
	})
	liabilitySvc := liabilityservice.New(liabilityservice.Params{
		DB: db, Log: log, GenID: node, Clock: fc, Repo: liabilityrepo.Provide(), Insurers: insurerrepo.Provide(), Clauses: clauseStore,
	})
	planSvc := planservice.New(planservice.Params{
		DB: db, Log: log, GenID: node, Clock: fc, Repo: planrepo.Provide(), Products: productrepo.Provide(), Liabilities: liabilityrepo.Provide(),
	})
	rateSvc := rateservice.New(rateservice.Params{
		DB: db, Log: log, GenID: node, Clock: fc,
		Repo:        raterepo.Provide(),
		Products:    productrepo.Provide(),
		Plans:       planrepo.Provide(),
		Liabilities: liabilityrepo.Provide(),
	})
	premiumSvc := premiumservice.New(premiumservice.Params{
		DB: db, Log: log, Clock: fc, Rates: rateSvc, Products: productrepo.Provide(), Plans: planrepo.Provide(),
	})
	applicationSvc := appservice.New(appservice.Params{
		DB: db, Log: log, Cfg: cfg, GenID: node, Clock: fc,
		Repo:        apprepo.Provide(),
		Products:    productrepo.Provide(),
		Plans:       planrepo.Provide(),
		Liabilities: liabilityrepo.Provide(),
		Intercept:   interceptSvc,
		Premium:     premiumSvc,
		Renderer:    stubRenderer{},
	})

	auditSvc := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Clock: fc, Repo: auditrepo.Provide(),
	})

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)
	authzSvc, err := authorization.NewService(authorization.Params{Cfg: cfg, Log: log, Enforcer: enforcer})
	require.NoError(t, err)

	require.NoError(t, seed.EnsureDemoCatalog(context.Background(), seed.Params{
		Cfg:         cfg,
		Log:         log,
		Insurers:    insurerSvc,
		Products:    productSvc,
		Clauses:     clauseSvc,
		Liabilities: liabilitySvc,
		Plans:       planSvc,
		Rates:       rateSvc,
	}))

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())
	NewServer(ServerParams{
		Gin:            engine,
		Cfg:            cfg,
		InsurerSvc:     insurerSvc,
		ProductSvc:     productSvc,
		ClauseSvc:      clauseSvc,
		LiabilitySvc:   liabilitySvc,
		PlanSvc:        planSvc,
		RateSvc:        rateSvc,
		PremiumSvc:     premiumSvc,
		InterceptSvc:   interceptSvc,
		ApplicationSvc: applicationSvc,
		AuthzSvc:       authzSvc,
		AuditSvc:       auditSvc,
		Limiter:        limiter,
	})

	return &testServer{db: db, engine: engine}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func (s *testServer) productID(t *testing.T, code string) string {
	t.Helper()
	var p productdomain.Product
	require.NoError(t, s.db.Where("code = ?", code).First(&p).Error)
	return snowflake.ID(p.ID).String()
}

func (s *testServer) planID(t *testing.T, code string) string {
	t.Helper()
	var p plandomain.Plan
	require.NoError(t, s.db.Where("code = ?", code).First(&p).Error)
	return snowflake.ID(p.ID).String()
}

func (s *testServer) liabilityID(t *testing.T, code string) string {
	t.Helper()
	var l liabilitydomain.Liability
	require.NoError(t, s.db.Where("code = ?", code).First(&l).Error)
	return snowflake.ID(l.ID).String()
}

func idCard(birth string, seq int) string {
	weights := []int{7, 9, 10, 5, 8, 4, 2, 1, 6, 3, 7, 9, 10, 5, 8, 4, 2}
	body := fmt.Sprintf("110105%s%03d", birth, seq)
	sum := 0
	for i, c := range body {
		sum += int(c-'0') * weights[i]
	}
	return body + string("10X98765432"[sum%11])
}

func (s *testServer) applicationBody(t *testing.T, province, creditCode string) map[string]any {
	return map[string]any{
		"product_id": s.productID(t, "group-accident"),
		"company_info": map[string]any{
			"name":          "Acme Logistics",
			"credit_code":   creditCode,
			"province":      province,
			"city":          "东城区",
			"contact_name":  "Li Lei",
			"contact_phone": "13800000000",
		},
		"effective_date": "2024-07-01",
		"expiry_date":    "2025-06-30",
		"plan_instances": []map[string]any{{
			"plan_id":   s.planID(t, "standard"),
			"job_class": 1,
			"duration":  "1年",
			"liability_selections": []map[string]any{
				{"liability_id": s.liabilityID(t, "accidental-death"), "coverage_amount": "500000"},
			},
		}},
		"insured_persons": []map[string]any{
			{"name": "Zhang San", "id_number": idCard("19900101", 11)},
			{"name": "Li Si", "id_number": idCard("19850505", 22)},
			{"name": "Wang Wu", "id_number": idCard("19790303", 33)},
		},
	}
}

func TestCalculateFixedPremium(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/premium/calculate", "", map[string]any{
		"product_id":    s.productID(t, "employer-liability"),
		"plan_id":       s.planID(t, "basic"),
		"job_class":     1,
		"insured_count": 10,
		"duration":      "1年",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decode(t, rec)
	assert.True(t, env.Success)
	var result struct {
		PremiumPerPerson json.Number `json:"premium_per_person"`
		TotalPremium     json.Number `json:"total_premium"`
		PremiumType      string      `json:"premium_type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "336.00", result.PremiumPerPerson.String())
	assert.Equal(t, "3360.00", result.TotalPremium.String())
	assert.Equal(t, "fixed", result.PremiumType)
}

func TestCalculateCalculatedPremium(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/premium/calculate", "", map[string]any{
		"product_id":    s.productID(t, "group-accident"),
		"plan_id":       s.planID(t, "standard"),
		"job_class":     1,
		"insured_count": 5,
		"duration":      "1年",
		"liability_selections": []map[string]any{
			{"liability_id": s.liabilityID(t, "accidental-death"), "coverage_amount": "500000"},
			{"liability_id": s.liabilityID(t, "accidental-medical"), "coverage_amount": "10000"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		PremiumPerPerson json.Number `json:"premium_per_person"`
		TotalPremium     json.Number `json:"total_premium"`
		PremiumDetails   []any       `json:"premium_details"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &result))
	assert.Equal(t, "138.00", result.PremiumPerPerson.String())
	assert.Equal(t, "690.00", result.TotalPremium.String())
	assert.Len(t, result.PremiumDetails, 2)
}

func TestCalculateRejectsMissingProduct(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/premium/calculate", "", map[string]any{"insured_count": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env := decode(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "product_id_required", env.Error)
}

func TestCalculateIncompleteFixedRate(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, s.db.Exec(
		`UPDATE rates SET monthly_premium = NULL WHERE premium_type = 'fixed' AND plan_id = (SELECT id FROM plans WHERE code = 'basic')`,
	).Error)

	body := map[string]any{
		"product_id":    s.productID(t, "employer-liability"),
		"plan_id":       s.planID(t, "basic"),
		"job_class":     1,
		"insured_count": 2,
		"duration":      "6个月",
	}
	rec := s.do(t, http.MethodPost, "/api/premium/calculate", "", body)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	assert.Equal(t, "fixed_premium_incomplete", decode(t, rec).Error)

	body["duration"] = "1年"
	rec = s.do(t, http.MethodPost, "/api/premium/calculate", "", body)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestArchivedProductRejected(t *testing.T) {
	s := newTestServer(t, nil)
	productID := s.productID(t, "group-accident")

	rec := s.do(t, http.MethodPost, "/admin/products/"+productID+"/archive", "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var archived struct {
		Active bool `json:"active"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &archived))
	assert.False(t, archived.Active)

	var stored productdomain.Product
	require.NoError(t, s.db.Where("code = ?", "group-accident").First(&stored).Error)
	assert.False(t, stored.Active)

	rec = s.do(t, http.MethodPost, "/api/premium/calculate", "", map[string]any{
		"product_id":    productID,
		"plan_id":       s.planID(t, "standard"),
		"job_class":     1,
		"insured_count": 5,
		"duration":      "1年",
		"liability_selections": []map[string]any{
			{"liability_id": s.liabilityID(t, "accidental-death"), "coverage_amount": "500000"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "product_inactive", decode(t, rec).Error)

	rec = s.do(t, http.MethodPost, "/api/applications", "", s.applicationBody(t, "北京市", "91110000MA1FL0003X"))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "product_inactive", decode(t, rec).Error)

	var n int64
	require.NoError(t, s.db.Model(&appdomain.Application{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateApplicationStoredRulesBroken(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, s.db.Exec(
		"UPDATE insurer_channel_configs SET intercept_rules_json = ?",
		`{"age_restriction":{"enabled":true,"min_age":60,"max_age":18}}`,
	).Error)

	rec := s.do(t, http.MethodPost, "/api/applications", "", s.applicationBody(t, "北京市", "91110000MA1FL0004X"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())
	assert.Equal(t, "internal_error", decode(t, rec).Error)

	rec = s.do(t, http.MethodGet, "/api/products/"+s.productID(t, "group-accident")+"/intercept-rules", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())

	var n int64
	require.NoError(t, s.db.Model(&appdomain.Application{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestLookupUnknownCoverage(t *testing.T) {
	s := newTestServer(t, nil)

	path := fmt.Sprintf("/api/premium/rates?product_id=%s&liability_id=%s&job_class=1&coverage_amount=777",
		s.productID(t, "group-accident"), s.liabilityID(t, "accidental-death"))
	rec := s.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	assert.Equal(t, "rate_not_found", decode(t, rec).Error)
}

func TestListRatesAndRules(t *testing.T) {
	s := newTestServer(t, nil)
	productID := s.productID(t, "group-accident")

	rec := s.do(t, http.MethodGet, "/api/premium/rates/list?product_id="+productID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rates []map[string]any
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &rates))
	assert.Len(t, rates, 16)

	rec = s.do(t, http.MethodGet, "/api/products/"+productID+"/intercept-rules", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rules map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &rules))
	assert.Contains(t, rules, "region_restriction")
	assert.Contains(t, rules, "min_insured_count")
}

func TestCreateApplicationFlow(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/applications", "", s.applicationBody(t, "北京市", "91110000MA1FL0001X"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ApplicationID string      `json:"application_id"`
		ApplicationNo string      `json:"application_no"`
		Status        string      `json:"status"`
		TotalPremium  json.Number `json:"total_premium"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &created))
	assert.Contains(t, created.ApplicationNo, "APP-")
	assert.Equal(t, "draft", created.Status)
	assert.Equal(t, "360.00", created.TotalPremium.String())

	rec = s.do(t, http.MethodGet, "/api/applications/"+created.ApplicationID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/applications/"+created.ApplicationID+"/quotation.pdf", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-stub", rec.Body.String())

	statusPath := "/admin/applications/" + created.ApplicationID + "/status"
	rec = s.do(t, http.MethodPost, statusPath, "viewer-token", map[string]any{"status": "pending_underwriting"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, statusPath, "admin-token", map[string]any{"status": "pending_underwriting"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, statusPath, "admin-token", map[string]any{"status": "active"})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestCreateApplicationRegionDenied(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/applications", "", s.applicationBody(t, "西藏", "91540000MA1FL0002X"))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "RegionDenied", decode(t, rec).Error)

	var n int64
	require.NoError(t, s.db.Model(&appdomain.Application{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestAdminAuthorization(t *testing.T) {
	s := newTestServer(t, nil)
	body := map[string]any{"code": "acme-life", "name": "Acme Life"}

	rec := s.do(t, http.MethodPost, "/admin/insurers", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/admin/insurers", "unknown-token", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/admin/insurers", "viewer-token", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/insurers", "viewer-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/admin/insurers", "admin-token", body)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/admin/insurers", "admin-token", body)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/admin/audit-logs", "viewer-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/audit-logs?action=insurer.create", "admin-token", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var logs struct {
		Items []struct {
			ActorType string         `json:"actor_type"`
			ActorID   string         `json:"actor_id"`
			Metadata  map[string]any `json:"metadata"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &logs))
	require.Len(t, logs.Items, 1)
	assert.Equal(t, "admin", logs.Items[0].ActorType)
	assert.Contains(t, logs.Items[0].ActorID, "token:")
	assert.Equal(t, "acme-life", logs.Items[0].Metadata["code"])
}

func TestQuoteRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter := ratelimit.NewLimiter(config.Config{Redis: config.RedisConfig{
		QuoteRatePerMinute: 1,
		QuoteBurst:         1,
	}}, client)

	s := newTestServer(t, limiter)
	body := map[string]any{
		"product_id":    s.productID(t, "employer-liability"),
		"plan_id":       s.planID(t, "basic"),
		"job_class":     1,
		"insured_count": 3,
		"duration":      "1年",
	}

	rec := s.do(t, http.MethodPost, "/api/premium/calculate", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = s.do(t, http.MethodPost, "/api/premium/calculate", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "client-rate", rec.Header().Get("X-Rate-Limited-Reason"))
}
