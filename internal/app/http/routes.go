package routes

import (
	"time"

	adminapi "repairmybike-api/internal/api/admin"
	authapi "repairmybike-api/internal/api/auth"
	"repairmybike-api/internal/api/billing"
	bookingsapi "repairmybike-api/internal/api/bookings"
	"repairmybike-api/internal/api/health"
	partsapi "repairmybike-api/internal/api/parts"
	"repairmybike-api/internal/api/plans"
	"repairmybike-api/internal/api/services"
	"repairmybike-api/internal/api/shop"
	"repairmybike-api/internal/api/staff"
	stripewebhooks "repairmybike-api/internal/api/stripewebhook"
	"repairmybike-api/internal/api/users"
	"repairmybike-api/internal/api/vehicles"
	"repairmybike-api/internal/app/http/middleware"
	"repairmybike-api/internal/domain/access"
	domainusers "repairmybike-api/internal/domain/users"
	"repairmybike-api/internal/infra/cache"
	"repairmybike-api/internal/infra/identity"
	"repairmybike-api/internal/infra/payments"
	"repairmybike-api/internal/infra/tokens"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps is everything the route table needs. Orders, Verifier and Events may
// be nil when the matching gateway is disabled.
type Deps struct {
	DB          *gorm.DB
	Cache       *cache.Cache
	Identity    identity.Provider
	Tokens      *tokens.Issuer
	OTPLimit    domainusers.RateLimit
	OTPTTL      time.Duration
	StaffAPIKey string
	Version     string

	Orders   payments.OrderCreator
	Verifier payments.SignatureVerifier
	Events   stripewebhooks.EventParser
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	healthH := health.NewHandler(d.DB, d.Cache, d.Version)
	r.GET("/health", healthH.Health)
	r.GET("/ready", healthH.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.AuthMiddleware(d.DB, d.Tokens)
	optionalAuth := middleware.OptionalAuth(d.DB, d.Tokens)

	api := r.Group("/api")

	// Webhooks read the raw body for signature checks, so they sit outside
	// the sanitizer.
	webhookH := stripewebhooks.NewHandler(d.DB, d.Events)
	api.POST("/payments/stripe/webhook", webhookH.StripeWebhook)

	public := api.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	// Auth
	authH := authapi.NewHandler(d.DB, d.Identity, d.Tokens, d.OTPLimit, d.OTPTTL)
	usersH := users.NewHandler(d.DB)
	auth := public.Group("/auth")
	auth.POST("/otp/request", authH.RequestOTP)
	auth.POST("/otp/verify", authH.VerifyOTP)
	auth.POST("/phone/request-otp", authH.RequestPhoneOTP)
	auth.POST("/phone/verify-otp", authH.VerifyPhoneOTP)
	auth.POST("/phone/login", authH.PhoneLogin)
	auth.POST("/email/request-otp", authH.RequestEmailOTP)
	auth.POST("/email/verify-otp", authH.VerifyEmailOTP)
	auth.POST("/email/login", authH.EmailLogin)
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/password-reset", authH.PasswordReset)
	auth.POST("/password-reset-confirm", authH.PasswordResetConfirm)
	auth.POST("/logout", optionalAuth, authH.Logout)
	auth.POST("/staff/login", authH.StaffLogin)
	auth.POST("/staff/password-login", authH.StaffPasswordLogin)
	auth.POST("/admin/login", authH.AdminLogin)
	auth.POST("/admin/password-login", authH.AdminPasswordLogin)
	auth.GET("/google", authH.GoogleStart)
	auth.GET("/google/callback", authH.GoogleCallback)

	authed := auth.Group("/")
	authed.Use(requireAuth)
	authed.GET("/profile", usersH.GetProfile)
	authed.PATCH("/profile", usersH.UpdateProfile)
	authed.GET("/phone/verification-status", usersH.PhoneVerificationStatus)
	authed.POST("/phone/resend-otp", authH.ResendPhoneOTP)
	authed.GET("/sessions", authH.ListSessions)
	authed.POST("/sessions/:id/revoke", authH.RevokeSession)

	// Catalog
	vehiclesH := vehicles.NewHandler(d.DB, d.Cache)
	v := public.Group("/vehicles")
	v.GET("/vehicle-types", vehiclesH.ListTypes)
	v.GET("/vehicle-types/:id", vehiclesH.GetType)
	v.GET("/vehicle-brands", vehiclesH.ListBrands)
	v.GET("/vehicle-brands/:id", vehiclesH.GetBrand)
	v.GET("/vehicle-models", vehiclesH.ListModels)
	v.GET("/vehicle-models/:id", vehiclesH.GetModel)

	servicesH := services.NewHandler(d.DB, d.Cache)
	s := public.Group("/services")
	s.GET("/service-categories", servicesH.ListCategories)
	s.GET("/service-categories/:id", servicesH.GetCategory)
	s.GET("/services", servicesH.ListServices)
	s.GET("/services/:id", servicesH.GetService)
	s.GET("/service-pricing", servicesH.ListPricing)
	s.GET("/service-pricing/by-vehicle", servicesH.PricingByVehicle)
	s.GET("/service-pricing/:id", servicesH.GetPricing)

	// Bookings
	bookingsH := bookingsapi.NewHandler(d.DB)
	b := public.Group("/bookings")
	b.POST("", bookingsH.Create)
	b.GET("", bookingsH.List)
	b.GET("/:id", bookingsH.Get)

	// Payments
	billingH := billing.NewHandler(d.DB, d.Orders, d.Verifier)
	p := public.Group("/payments")
	p.POST("/razorpay/create-order", billingH.CreateOrder("razorpay"))
	p.POST("/razorpay/verify", billingH.VerifyPayment)
	p.POST("/stripe/create-order", billingH.CreateOrder("stripe"))
	p.GET("/booking/:id", billingH.GetBookingPayment)

	// Plans and subscriptions
	plansH := plans.NewHandler(d.DB, d.Cache)
	sub := public.Group("/subscriptions")
	sub.Use(optionalAuth)
	sub.GET("/plans", plansH.ListPlans)
	sub.GET("/plans/:id", plansH.GetPlan)
	sub.GET("/subscriptions", plansH.ListSubscriptions)
	sub.POST("/subscriptions", plansH.CreateSubscription)
	sub.GET("/subscriptions/:id", plansH.GetSubscription)
	sub.POST("/subscriptions/:id/activate", plansH.ActivateSubscription)
	sub.POST("/subscriptions/:id/cancel", plansH.CancelSubscription)

	// Shop
	shopH := shop.NewHandler(d.DB, d.Cache)
	partsH := partsapi.NewHandler(d.DB)
	sh := public.Group("/shop")
	sh.Use(optionalAuth)
	sh.GET("/shop-info", shopH.ListShopInfo)
	sh.GET("/shop-info/:id", shopH.GetShopInfo)

	sp := sh.Group("/spare-parts")
	sp.GET("/categories", partsH.ListCategories)
	sp.GET("/categories/:id", partsH.GetCategory)
	sp.GET("/brands", partsH.ListBrands)
	sp.GET("/brands/:id", partsH.GetBrand)
	sp.GET("/parts", partsH.ListParts)
	sp.GET("/parts/:id", partsH.GetPart)
	sp.GET("/parts/:id/compatibility", partsH.Compatibility)
	sp.GET("/cart", partsH.GetCart)
	sp.POST("/cart/add", partsH.AddToCart)
	sp.PATCH("/cart/update_item", partsH.UpdateCartItem)
	sp.DELETE("/cart/remove_item", partsH.RemoveCartItem)
	sp.DELETE("/cart/clear", partsH.ClearCart)
	sp.POST("/cart/checkout", partsH.Checkout)
	sp.POST("/cart/buy_now", partsH.BuyNow)
	sp.GET("/orders", partsH.ListOrders)
	sp.GET("/orders/:id", partsH.GetOrder)

	// Staff
	staffH := staff.NewHandler(d.DB)
	st := public.Group("/staff")
	st.Use(middleware.StaffAccess(d.DB, d.Tokens, d.StaffAPIKey))
	st.GET("/bookings", middleware.RequireCapability(access.CapManageBookings), staffH.ListBookings)
	st.GET("/bookings/stats", middleware.RequireCapability(access.CapViewStats), staffH.BookingStats)
	st.GET("/bookings/:id", middleware.RequireCapability(access.CapManageBookings), staffH.GetBooking)
	st.PATCH("/bookings/:id/update-status", middleware.RequireCapability(access.CapManageBookings), staffH.UpdateBookingStatus)

	adminH := adminapi.NewHandler(d.DB)
	admin := st.Group("/admin")
	admin.Use(middleware.RequireRole(domainusers.RoleAdmin))
	admin.GET("/dashboard", middleware.RequireCapability(access.CapViewStats), adminH.AdminDashboard)
	admin.GET("/users", middleware.RequireCapability(access.CapManageUsers), adminH.ListAllUsers)
	admin.GET("/users/:id", middleware.RequireCapability(access.CapManageUsers), adminH.GetUserDetails)
	admin.GET("/payments", middleware.RequireCapability(access.CapViewPayments), adminH.ListAllPayments)
	admin.GET("/staff-directory", middleware.RequireCapability(access.CapManageStaff), adminH.ListStaffDirectory)
	admin.POST("/staff-directory", middleware.RequireCapability(access.CapManageStaff), adminH.CreateStaffEntry)
	admin.POST("/staff-directory/:id/deactivate", middleware.RequireCapability(access.CapManageStaff), adminH.DeactivateStaffEntry)
	admin.POST("/sync-plans", plansH.SyncPlansFromStripe)
}
