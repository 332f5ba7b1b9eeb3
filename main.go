package main

import (
	"log"
	"strings"
	"time"

	"repairmybike-api/config"
	"repairmybike-api/database"
	routes "repairmybike-api/internal/app/http"
	"repairmybike-api/internal/app/http/middleware"
	"repairmybike-api/internal/domain/users"
	"repairmybike-api/internal/infra/cache"
	"repairmybike-api/internal/infra/identity"
	"repairmybike-api/internal/infra/logging"
	"repairmybike-api/internal/infra/payments"
	stripeinfra "repairmybike-api/internal/infra/stripe"
	"repairmybike-api/internal/infra/tokens"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()

	logger, err := logging.Init(config.LOG_LEVEL)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	if strings.EqualFold(config.LOG_LEVEL, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	database.InitRedis()

	deps := routes.Deps{
		DB:       database.DB,
		Cache:    cache.New(database.Redis),
		Identity: otpProvider(),
		Tokens:   tokens.NewIssuer(config.JWT_SECRET, config.SESSION_TTL, config.REFRESH_TTL),
		OTPLimit: users.RateLimit{
			MaxSends: config.OTP_MAX_SENDS,
			Window:   config.OTP_WINDOW,
			Block:    config.OTP_BLOCK,
		},
		OTPTTL:      config.OTP_TTL,
		StaffAPIKey: config.STAFF_API_KEY,
		Version:     config.APP_VERSION,
	}
	wireGateways(&deps)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(config.CORS_ORIGIN, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.StaffKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, deps)

	zap.L().Info("🚀 Server starting", zap.String("port", config.PORT), zap.String("version", config.APP_VERSION))
	if err := r.Run(":" + config.PORT); err != nil {
		zap.L().Fatal("server stopped", zap.Error(err))
	}
}

func otpProvider() identity.Provider {
	provider, err := identity.NewTwilio(config.TWILIO_ACCOUNT_SID, config.TWILIO_AUTH_TOKEN, config.TWILIO_VERIFY_SERVICE_SID)
	if err != nil {
		zap.L().Warn("⚠️ OTP delivery disabled", zap.Error(err))
		return identity.Disabled{}
	}
	return provider
}

// wireGateways picks the order gateway from PAYMENT_GATEWAY. The Stripe
// webhook and plan sync stay available whenever Stripe keys are present.
func wireGateways(d *routes.Deps) {
	var stripeGateway *stripeinfra.Gateway
	if config.STRIPE_SECRET_KEY != "" {
		stripeGateway = stripeinfra.NewGateway(config.STRIPE_SECRET_KEY, config.STRIPE_WEBHOOK_SECRET)
		d.Events = stripeGateway
	}

	if !config.PAYMENTS_ENABLED {
		zap.L().Info("online payments disabled")
		return
	}

	switch strings.ToLower(config.PAYMENT_GATEWAY) {
	case "stripe":
		if stripeGateway == nil {
			zap.L().Warn("⚠️ PAYMENT_GATEWAY=stripe but STRIPE_SECRET_KEY is not set")
			return
		}
		d.Orders = stripeGateway
	case "razorpay":
		if config.RAZORPAY_KEY_ID == "" || config.RAZORPAY_KEY_SECRET == "" {
			zap.L().Warn("⚠️ PAYMENT_GATEWAY=razorpay but Razorpay keys are not set")
			return
		}
		rp := payments.NewRazorpay(config.RAZORPAY_KEY_ID, config.RAZORPAY_KEY_SECRET)
		d.Orders = rp
		d.Verifier = rp
	default:
		zap.L().Warn("⚠️ unknown PAYMENT_GATEWAY", zap.String("gateway", config.PAYMENT_GATEWAY))
	}
}
