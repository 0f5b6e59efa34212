package main

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"carrental/internal/config"
	"carrental/internal/jobs"
	"carrental/internal/middleware"
	"carrental/internal/modules/audit"
	"carrental/internal/modules/availability"
	"carrental/internal/modules/booking"
	"carrental/internal/modules/client"
	"carrental/internal/modules/fines"
	"carrental/internal/modules/ledger"
	"carrental/internal/modules/pricing"
	jwtsvc "carrental/internal/pkg/jwt"
)

// app is the wired HTTP surface plus the background pieces main has to start
// and drain.
type app struct {
	router   *gin.Engine
	booking  *booking.Service
	runner   *jobs.Runner
	recorder *audit.Recorder
	hub      *audit.Hub
}

func newApp(cfg *config.Config, db *gorm.DB, log *slog.Logger) *app {
	hub := audit.NewHub()
	recorder := audit.NewRecorder(db, hub, log)

	detector := availability.NewDetector()
	calculator := pricing.NewCalculator(pricing.Defaults{
		DepositPercent: cfg.DefaultDepositPercent,
		Currency:       cfg.DefaultCurrency,
	})
	ledgerWriter := ledger.NewWriter()

	bookingService := booking.NewService(
		db,
		detector,
		calculator,
		client.NewResolver(cfg.PhoneDefaultRegion),
		ledgerWriter,
		recorder,
	)
	finesService := fines.NewService(db, ledgerWriter, recorder)

	bookingHandler := booking.NewHandler(bookingService)
	finesHandler := fines.NewHandler(finesService)
	availabilityHandler := availability.NewHandler(db, detector)
	pricingHandler := pricing.NewHandler(db, calculator)
	wsHandler := audit.NewWSHandler(hub)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorLogger(log), middleware.CORS(cfg.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		// public
		pricingHandler.RegisterRoutes(v1)
		availabilityHandler.RegisterRoutes(v1)
		bookingHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		if cfg.AuthDisabled {
			log.Warn("authentication disabled, all requests act as admin")
			protected.Use(middleware.DevActor("admin"))
		} else {
			protected.Use(middleware.JWTAuth(j))
		}
		protected.Use(middleware.RequireRole("admin", "operator"))
		{
			bookingHandler.RegisterRoutes(protected)
			finesHandler.RegisterRoutes(protected)
			wsHandler.RegisterRoutes(protected)
		}
	}

	return &app{
		router:   r,
		booking:  bookingService,
		runner:   jobs.NewRunner(bookingService, cfg.NoShowGrace, log),
		recorder: recorder,
		hub:      hub,
	}
}
