package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/foodbridge/foodbridge/internal/auth"
	authdomain "github.com/foodbridge/foodbridge/internal/auth/domain"
	"github.com/foodbridge/foodbridge/internal/config"
	"github.com/foodbridge/foodbridge/internal/donation"
	donationdomain "github.com/foodbridge/foodbridge/internal/donation/domain"
	"github.com/foodbridge/foodbridge/internal/donationrequest"
	requestdomain "github.com/foodbridge/foodbridge/internal/donationrequest/domain"
	"github.com/foodbridge/foodbridge/internal/observability"
	obsmiddleware "github.com/foodbridge/foodbridge/internal/observability/logger"
	obsmetrics "github.com/foodbridge/foodbridge/internal/observability/metrics"
	"github.com/foodbridge/foodbridge/internal/organization"
	organizationdomain "github.com/foodbridge/foodbridge/internal/organization/domain"
	"github.com/foodbridge/foodbridge/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	auth.Module,
	organization.Module,
	donation.Module,
	donationrequest.Module,
	ratelimit.Module,
	fx.Provide(NewEngine),
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
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
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
	engine          *gin.Engine
	cfg             config.Config
	policy          *config.PolicyHolder
	authSvc         authdomain.Service
	organizationSvc organizationdomain.Service
	donationSvc     donationdomain.Service
	requestSvc      requestdomain.Service
	genID           *snowflake.Node
	limiter         *ratelimit.TokenBucket
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Policy          *config.PolicyHolder
	AuthSvc         authdomain.Service
	OrganizationSvc organizationdomain.Service
	DonationSvc     donationdomain.Service
	RequestSvc      requestdomain.Service
	GenID           *snowflake.Node
	Limiter         *ratelimit.TokenBucket `optional:"true"`
	ObsMetrics      *obsmetrics.Metrics
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		policy:          p.Policy,
		authSvc:         p.AuthSvc,
		organizationSvc: p.OrganizationSvc,
		donationSvc:     p.DonationSvc,
		requestSvc:      p.RequestSvc,
		genID:           p.GenID,
		limiter:         p.Limiter,
		obsMetrics:      p.ObsMetrics,
	}

	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")

	api.GET("/config", s.CoordinationConfig)

	orgs := api.Group("/organizations")
	orgs.POST("/register", s.RegisterOrganization)
	orgs.POST("/login", s.LoginRateLimit("org_login"), s.LoginOrganization)
	orgs.POST("/logout", s.AuthRequired(), s.LogoutOrganization)
	orgs.GET("/me", s.AuthRequired(), s.GetMyOrganization)
	orgs.PUT("/me", s.AuthRequired(), s.UpdateMyOrganization)
	orgs.GET("/:id", s.AuthRequired(), s.GetOrganization)
	orgs.PUT("/:id", s.AuthRequired(), s.UpdateOrganization)

	donations := api.Group("/donations", s.AuthRequired())
	donations.POST("", s.CreateDonation)
	donations.GET("", s.ListMyDonations)
	donations.GET("/available", s.ListAvailableDonations)
	donations.GET("/organization/:id", s.ListOrgDonations)
	donations.GET("/expiring", s.ListExpiringDonations)
	donations.GET("/:id", s.GetDonation)
	donations.PUT("/:id", s.UpdateDonation)
	donations.PUT("/:id/cancel", s.CancelDonation)
	donations.POST("/:id/request", s.SubmitDonationRequest)

	requests := api.Group("/donation-requests", s.AuthRequired())
	requests.POST("/create", s.CreateDonationRequest)
	requests.GET("", s.ListMyRequests)
	requests.GET("/status/:id", s.ListRequestsForOrg)
	requests.POST("/:id/mark-notified", s.MarkRequestNotified)

	admin := api.Group("/admin")
	admin.POST("/login", s.LoginRateLimit("admin_login"), s.AdminLogin)

	adminAuthed := admin.Group("", s.AdminRequired())
	adminAuthed.GET("/organizations", s.AdminListOrganizations)
	adminAuthed.GET("/donations", s.AdminListDonations)
	adminAuthed.PUT("/donations/:id/status", s.AdminUpdateDonationStatus)
	adminAuthed.GET("/requests/pending", s.AdminListPendingRequests)
	adminAuthed.PUT("/requests/:id/approve", s.AdminApproveRequest)
	adminAuthed.PUT("/requests/:id/reject", s.AdminRejectRequest)
}

// CoordinationConfig exposes the client-facing coordination knobs, chiefly
// how often clients should poll their pending requests.
func (s *Server) CoordinationConfig(c *gin.Context) {
	policy := s.policy.Get()
	c.JSON(http.StatusOK, gin.H{
		"poll_interval_seconds": int(policy.PollInterval.Seconds()),
		"expiring_soon_days":    policy.ExpiringSoonDays,
	})
}
