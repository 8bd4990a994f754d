package routes

import (
	"net/http"
	"time"

	"mentorlink/handlers"
	"mentorlink/middleware"
	"mentorlink/services/ratelimit"
	"mentorlink/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Limiters are the rate limit buckets applied per route group.
type Limiters struct {
	Global  *ratelimit.KeyedLimiter
	Booking *ratelimit.KeyedLimiter
	Webhook *ratelimit.KeyedLimiter
}

// RegisterBookingRoutes sets up the booking and session endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle, limiters Limiters) {
	bookings := r.Group("/api/bookings")
	bookings.Use(middleware.JWTAuth())
	{
		bookings.POST("",
			middleware.JWTAuth(utils.RoleMentee),
			middleware.RateLimit(limiters.Booking, middleware.ByUser),
			hb.CreateBooking)
		bookings.GET("/mentor", middleware.JWTAuth(utils.RoleMentor), hb.ListMentorBookings)
		bookings.GET("/mentee", middleware.JWTAuth(utils.RoleMentee), hb.ListMenteeBookings)
		bookings.GET("/:id", hb.GetBooking)
		bookings.POST("/:id/cancel", hb.CancelBooking)

		mentorOnly := bookings.Group("")
		mentorOnly.Use(middleware.JWTAuth(utils.RoleMentor))
		mentorOnly.POST("/:id/accept", hb.AcceptBooking)
		mentorOnly.PATCH("/:id/sessions/:index", hb.UpdateSession)
		mentorOnly.POST("/:id/sessions/:index/cancel", hb.CancelSession)
	}
}

// RegisterPaymentRoutes sets up the provider webhook. It is authenticated by signature, not JWT.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle, limiters Limiters) {
	payments := r.Group("/api/payments")
	{
		payments.POST("/webhook", middleware.RateLimit(limiters.Webhook, middleware.ByClientIP), hb.PaymentWebhook)
	}
}

// RegisterHealthRoute reports the last dependency check.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Mongo || !status.Redis {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, limiters Limiters) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Signature", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimit(limiters.Global, middleware.ByClientIP))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, hb, limiters)
	RegisterPaymentRoutes(r, hb, limiters)
}
