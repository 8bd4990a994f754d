package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mentorlink/config"
	"mentorlink/cron"
	"mentorlink/database"
	bookingRepo "mentorlink/database/repository/booking"
	mentorRepo "mentorlink/database/repository/mentor"
	paymentRepo "mentorlink/database/repository/payment"
	"mentorlink/handlers"
	"mentorlink/routes"
	"mentorlink/services/booking"
	"mentorlink/services/notification"
	"mentorlink/services/payment"
	"mentorlink/services/ratelimit"
	"mentorlink/services/tasks"
	"mentorlink/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type repositories struct {
	bookings      bookingRepo.BookingRepository
	mentors       mentorRepo.MentorRepository
	events        paymentRepo.PaymentEventRepository
	compensations paymentRepo.CompensationRepository
	mongoClient   *mongo.Client
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	repos := initRepositories(rootCtx, logger)

	var cache *redis.Client
	if config.AppConfig.RedisAddr != "" {
		cache = utils.GetCacheClient()
	}
	mentors := mentorRepo.NewCachedMentorRepo(repos.mentors, cache, config.AppConfig.RateCacheTTL, logger)

	stripe.Key = config.AppConfig.StripeKey
	publisher := notification.NewPublisher(config.AppConfig.Brokers(), config.AppConfig.KafkaBookingTopic, logger)
	defer publisher.Close()

	// services.
	compensation := payment.NewCompensation(payment.NewStripeCompensator(logger), repos.compensations, publisher, logger)
	if cache != nil {
		queueOpt := asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisQueueDB,
		}
		scheduler := tasks.NewAsynqScheduler(asynq.NewClient(queueOpt))
		defer scheduler.Close()
		compensation.WithRetryScheduler(scheduler)
		cron.NewCompensationWorker(repos.bookings, repos.compensations, compensation, scheduler, logger).
			Start(rootCtx, queueOpt)
	}
	bookingService := booking.NewDefaultBookingService(repos.bookings, mentors, compensation, publisher, logger, config.AppConfig.DefaultCurrency)
	verifier := payment.NewDefaultVerifier(logger,
		config.AppConfig.PaymentChecksumKey,
		config.AppConfig.PaymentWebhookSecret,
		config.AppConfig.WebhookVerifyTimeout)
	reconciler := payment.NewReconciler(repos.bookings, repos.events, compensation, publisher, logger)

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewBookingHandler(bookingService),
		handlers.NewWebhookHandler(verifier, reconciler, config.AppConfig.WebhookTimeout),
	)

	ttl := config.AppConfig.RateLimitTTL
	limiters := routes.Limiters{
		Global:  ratelimit.NewKeyedLimiter(config.AppConfig.MaxRequestsPerMin, ttl),
		Booking: ratelimit.NewKeyedLimiter(config.AppConfig.BookingRequestsPerMin, ttl),
		Webhook: ratelimit.NewKeyedLimiter(config.AppConfig.WebhookRequestsPerMin, ttl),
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(handlers.RequestLogger(logger))
	routes.RegisterRoutes(router, handlerBundle, limiters)

	utils.StartHealthMonitor(rootCtx, cache, repos.mongoClient)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if err := database.CloseDB(ctx); err != nil {
		logger.Warn("main: failed to disconnect MongoDB", zap.Error(err))
	}
	logger.Sugar().Info("main: server stopped gracefully")
}

// initRepositories picks MongoDB or the in-memory stores based on STORAGE.
func initRepositories(ctx context.Context, logger *zap.Logger) repositories {
	if config.AppConfig.Storage == "memory" {
		seed, err := mentorRepo.ParseSeed(config.AppConfig.SeedMentors)
		if err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		logger.Warn("Using in-memory storage; data is lost on restart", zap.Int("seedMentors", len(seed)))
		return repositories{
			bookings:      bookingRepo.NewMemoryBookingRepo(),
			mentors:       mentorRepo.NewMemoryMentorRepo(seed...),
			events:        paymentRepo.NewMemoryPaymentEventRepo(),
			compensations: paymentRepo.NewMemoryCompensationRepo(),
		}
	}

	database.InitDB()
	db := database.Database()
	bookings := bookingRepo.NewMongoBookingRepo(db)
	mentors := mentorRepo.NewMongoMentorRepo(db)
	events := paymentRepo.NewMongoPaymentEventRepo(db)

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := bookings.EnsureIndexes(indexCtx); err != nil {
		logger.Sugar().Fatalf("main: booking indexes: %v", err)
	}
	if err := mentors.EnsureIndexes(indexCtx); err != nil {
		logger.Sugar().Fatalf("main: mentor indexes: %v", err)
	}
	if err := events.EnsureIndexes(indexCtx); err != nil {
		logger.Sugar().Fatalf("main: payment event indexes: %v", err)
	}

	return repositories{
		bookings:      bookings,
		mentors:       mentors,
		events:        events,
		compensations: paymentRepo.NewMongoCompensationRepo(db),
		mongoClient:   database.MongoClient,
	}
}
