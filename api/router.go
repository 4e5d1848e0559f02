package api

import (
	_ "embed"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Domenick1991/goaero/internal/service/auth"
	"github.com/Domenick1991/goaero/internal/service/booking"
	"github.com/Domenick1991/goaero/internal/service/flights"
	"github.com/Domenick1991/goaero/internal/service/reports"
)

//go:embed openapi.json
var openAPIDoc []byte

type Dependencies struct {
	Auth     auth.AuthUseCase
	Flights  flights.FlightUseCase
	Bookings booking.BookingUseCase
	Reports  reports.ReportsUseCase
	Logger   *slog.Logger

	CORSOrigins []string
}

// NewRouter builds the HTTP API. Everything under /api/v1 except the
// catalogue and the login routes requires a bearer token.
func NewRouter(deps Dependencies) *gin.Engine {
	RegisterValidators()

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log), cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", openAPIDoc)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/openapi.json"))))

	public := router.Group("/api/v1")
	private := public.Group("", Authenticate(deps.Auth))

	NewAuthHandler(deps.Auth).Register(public, private)
	NewFlightHandler(deps.Flights).Register(public, private)
	NewBookingHandler(deps.Bookings).Register(private)
	NewReportsHandler(deps.Reports).Register(private)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
