package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/polisa/internal/application"
	appdomain "github.com/smallbiznis/polisa/internal/application/domain"
	"github.com/smallbiznis/polisa/internal/audit"
	auditdomain "github.com/smallbiznis/polisa/internal/audit/domain"
	"github.com/smallbiznis/polisa/internal/authorization"
	"github.com/smallbiznis/polisa/internal/clause"
	clausedomain "github.com/smallbiznis/polisa/internal/clause/domain"
	"github.com/smallbiznis/polisa/internal/config"
	"github.com/smallbiznis/polisa/internal/insurer"
	insurerdomain "github.com/smallbiznis/polisa/internal/insurer/domain"
	"github.com/smallbiznis/polisa/internal/intercept"
	interceptdomain "github.com/smallbiznis/polisa/internal/intercept/domain"
	"github.com/smallbiznis/polisa/internal/liability"
	liabilitydomain "github.com/smallbiznis/polisa/internal/liability/domain"
	"github.com/smallbiznis/polisa/internal/observability"
	obsmiddleware "github.com/smallbiznis/polisa/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/polisa/internal/observability/metrics"
	obstracing "github.com/smallbiznis/polisa/internal/observability/tracing"
	"github.com/smallbiznis/polisa/internal/plan"
	plandomain "github.com/smallbiznis/polisa/internal/plan/domain"
	"github.com/smallbiznis/polisa/internal/premium"
	premiumdomain "github.com/smallbiznis/polisa/internal/premium/domain"
	"github.com/smallbiznis/polisa/internal/product"
	productdomain "github.com/smallbiznis/polisa/internal/product/domain"
	"github.com/smallbiznis/polisa/internal/providers"
	"github.com/smallbiznis/polisa/internal/rate"
	ratedomain "github.com/smallbiznis/polisa/internal/rate/domain"
	"github.com/smallbiznis/polisa/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	authorization.Module,
	audit.Module,
	insurer.Module,
	product.Module,
	clause.Module,
	liability.Module,
	plan.Module,
	rate.Module,
	premium.Module,
	intercept.Module,
	application.Module,
	providers.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config

	insurerSvc     insurerdomain.Service
	productSvc     productdomain.Service
	clauseSvc      clausedomain.Service
	liabilitySvc   liabilitydomain.Service
	planSvc        plandomain.Service
	rateSvc        ratedomain.Service
	premiumSvc     premiumdomain.Service
	interceptSvc   interceptdomain.Service
	applicationSvc appdomain.Service
	authzSvc       authorization.Service
	auditSvc       auditdomain.Service
	limiter        *ratelimit.Limiter
	obsMetrics     *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	InsurerSvc     insurerdomain.Service
	ProductSvc     productdomain.Service
	ClauseSvc      clausedomain.Service
	LiabilitySvc   liabilitydomain.Service
	PlanSvc        plandomain.Service
	RateSvc        ratedomain.Service
	PremiumSvc     premiumdomain.Service
	InterceptSvc   interceptdomain.Service
	ApplicationSvc appdomain.Service
	AuthzSvc       authorization.Service
	AuditSvc       auditdomain.Service `optional:"true"`
	Limiter        *ratelimit.Limiter  `optional:"true"`
	ObsMetrics     *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		insurerSvc:     p.InsurerSvc,
		productSvc:     p.ProductSvc,
		clauseSvc:      p.ClauseSvc,
		liabilitySvc:   p.LiabilitySvc,
		planSvc:        p.PlanSvc,
		rateSvc:        p.RateSvc,
		premiumSvc:     p.PremiumSvc,
		interceptSvc:   p.InterceptSvc,
		applicationSvc: p.ApplicationSvc,
		authzSvc:       p.AuthzSvc,
		auditSvc:       p.AuditSvc,
		limiter:        p.Limiter,
		obsMetrics:     p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Premium --------
	api.POST("/premium/calculate", s.RateLimit(ratelimit.EndpointQuote), s.CalculatePremium)
	api.GET("/premium/rates", s.LookupRate)
	api.GET("/premium/rates/list", s.ListRates)

	// -------- Catalog --------
	api.GET("/products", s.ListActiveProducts)
	api.GET("/products/:id", s.GetProductByID)
	api.GET("/products/:id/plans", s.ListProductPlans)
	api.GET("/products/:id/intercept-rules", s.GetInterceptRules)
	api.GET("/plans/:id/liabilities", s.ListPlanLiabilities)

	// -------- Applications --------
	api.POST("/applications", s.RateLimit(ratelimit.EndpointSubmission), s.CreateApplication)
	api.GET("/applications/:id", s.GetApplicationByID)
	api.GET("/applications/:id/quotation.pdf", s.RenderQuotation)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.AdminAuthRequired())

	// -------- Insurers --------
	admin.GET("/insurers", s.authorize(authorization.ObjectInsurer, authorization.ActionView), s.ListInsurers)
	admin.POST("/insurers", s.authorize(authorization.ObjectInsurer, authorization.ActionManage), s.CreateInsurer)
	admin.GET("/insurers/:id", s.authorize(authorization.ObjectInsurer, authorization.ActionView), s.GetInsurerByID)
	admin.GET("/insurers/:id/channels", s.authorize(authorization.ObjectInsurer, authorization.ActionView), s.ListChannelConfigs)
	admin.GET("/insurers/:id/channels/:channel", s.authorize(authorization.ObjectInsurer, authorization.ActionView), s.GetChannelConfig)
	admin.PUT("/insurers/:id/channels/:channel", s.authorize(authorization.ObjectInsurer, authorization.ActionManage), s.UpsertChannelConfig)

	// -------- Products --------
	admin.GET("/products", s.authorize(authorization.ObjectProduct, authorization.ActionView), s.ListProducts)
	admin.POST("/products", s.authorize(authorization.ObjectProduct, authorization.ActionManage), s.CreateProduct)
	admin.GET("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionView), s.GetProductByID)
	admin.PATCH("/products/:id", s.authorize(authorization.ObjectProduct, authorization.ActionManage), s.UpdateProduct)
	admin.POST("/products/:id/archive", s.authorize(authorization.ObjectProduct, authorization.ActionManage), s.ArchiveProduct)

	// -------- Clauses --------
	admin.GET("/clauses", s.authorize(authorization.ObjectClause, authorization.ActionView), s.ListClauses)
	admin.POST("/clauses", s.authorize(authorization.ObjectClause, authorization.ActionManage), s.CreateClause)
	admin.GET("/clauses/:id", s.authorize(authorization.ObjectClause, authorization.ActionView), s.GetClauseByID)

	// -------- Liabilities --------
	admin.GET("/liabilities", s.authorize(authorization.ObjectLiability, authorization.ActionView), s.ListLiabilities)
	admin.POST("/liabilities", s.authorize(authorization.ObjectLiability, authorization.ActionManage), s.CreateLiability)
	admin.GET("/liabilities/:id", s.authorize(authorization.ObjectLiability, authorization.ActionView), s.GetLiabilityByID)

	// -------- Plans --------
	admin.GET("/plans", s.authorize(authorization.ObjectPlan, authorization.ActionView), s.ListPlans)
	admin.POST("/plans", s.authorize(authorization.ObjectPlan, authorization.ActionManage), s.CreatePlan)
	admin.GET("/plans/:id", s.authorize(authorization.ObjectPlan, authorization.ActionView), s.GetPlanByID)
	admin.GET("/plans/:id/liabilities", s.authorize(authorization.ObjectPlan, authorization.ActionView), s.ListPlanLiabilities)
	admin.PUT("/plans/:id/liabilities/:liability_id", s.authorize(authorization.ObjectPlan, authorization.ActionManage), s.BindPlanLiability)

	// -------- Rates --------
	admin.GET("/rates", s.authorize(authorization.ObjectRate, authorization.ActionView), s.ListAdminRates)
	admin.POST("/rates", s.authorize(authorization.ObjectRate, authorization.ActionManage), s.CreateRate)
	admin.GET("/rates/:id", s.authorize(authorization.ObjectRate, authorization.ActionView), s.GetRateByID)
	admin.DELETE("/rates/:id", s.authorize(authorization.ObjectRate, authorization.ActionManage), s.DeleteRate)

	// -------- Applications --------
	admin.GET("/applications", s.authorize(authorization.ObjectApplication, authorization.ActionView), s.ListApplications)
	admin.GET("/applications/:id", s.authorize(authorization.ObjectApplication, authorization.ActionView), s.GetApplicationByID)
	admin.GET("/applications/:id/quotation.pdf", s.authorize(authorization.ObjectApplication, authorization.ActionView), s.RenderQuotation)
	admin.POST("/applications/:id/status", s.authorize(authorization.ObjectApplication, authorization.ActionStatus), s.UpdateApplicationStatus)

	// -------- Audit --------
	admin.GET("/audit-logs", s.authorize(authorization.ObjectAudit, authorization.ActionView), s.ListAuditLogs)
}
