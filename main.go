package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/thisIsAskari/natours/cache"
	"github.com/thisIsAskari/natours/config"
	"github.com/thisIsAskari/natours/handlers"
	"github.com/thisIsAskari/natours/routes"
	"github.com/thisIsAskari/natours/services"
)

var (
	server      *gin.Engine
	ctx         context.Context
	mongoclient *mongo.Client
	cfg         *config.Config
	logger      *logrus.Logger

	tourService    services.TourService
	reviewService  *services.ReviewServiceImpl
	userService    services.UserService
	authService    services.AuthService
	bookingService services.BookingService

	TourHandler    handlers.TourHandler
	ReviewHandler  handlers.ReviewHandler
	UserHandler    handlers.UserHandler
	AuthHandler    handlers.AuthHandler
	BookingHandler handlers.BookingHandler

	TourRouteHandler    routes.TourRouteHandler
	ReviewRouteHandler  routes.ReviewRouteHandler
	UserRouteHandler    routes.UserRouteHandler
	BookingRouteHandler routes.BookingRouteHandler
)

func init() {
	ctx = context.TODO()
	cfg = config.LoadConfig()

	logger = logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.SetOutput(&lumberjack.Logger{
		Filename:  cfg.LogFile,
		MaxSize:   1,
		LocalTime: true,
	})

	mongoconn := options.Client().ApplyURI(cfg.MongoURI)
	client, err := mongo.Connect(ctx, mongoconn)
	if err != nil {
		panic(err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		panic(err)
	}
	mongoclient = client
	logger.Info("MongoDB successfully connected...")

	tracerProvider, err := NewTracerProvider(cfg.ServiceName, cfg.JaegerAddress)
	if err != nil {
		log.Fatal("JaegerTraceProvider failed to Initialize", err)
	}
	tracer := tracerProvider.Tracer(cfg.ServiceName)

	validate := validator.New()

	// Collections
	db := mongoclient.Database(cfg.DatabaseName)
	tourCollection := db.Collection("tours")
	reviewCollection := db.Collection("reviews")
	userCollection := db.Collection("users")
	bookingCollection := db.Collection("bookings")

	if err := services.EnsureReviewIndexes(ctx, reviewCollection); err != nil {
		log.Fatal(err)
	}
	if err := services.EnsureTourIndexes(ctx, tourCollection); err != nil {
		log.Fatal(err)
	}

	tourCache := cache.New(cfg.RedisHost+":"+cfg.RedisPort, logger, tracer)
	if err := tourCache.Ping(); err != nil {
		logger.Warnf("Redis not reachable, tour cache disabled: %v", err)
		tourCache = nil
	}

	tourService = services.NewTourServiceImpl(tourCollection, validate, tracer)
	reviewService = services.NewReviewServiceImpl(reviewCollection, validate, tracer)
	maintainer := services.NewRatingMaintainer(reviewService, tourService, logger)
	if tourCache != nil {
		maintainer.SetCacheInvalidator(tourCache)
	}
	reviewService.SetMaintainer(maintainer)
	userService = services.NewUserServiceImpl(userCollection, validate, tracer)
	authService = services.NewAuthServiceImpl(userService, validate, cfg, logger, tracer)
	bookingService = services.NewBookingServiceImpl(bookingCollection, validate, tracer)

	TourHandler = handlers.NewTourHandler(tourService, tourCache, logger, tracer)
	ReviewHandler = handlers.NewReviewHandler(reviewService, logger, tracer)
	UserHandler = handlers.NewUserHandler(userService, logger, tracer)
	AuthHandler = handlers.NewAuthHandler(authService, logger, tracer)
	BookingHandler = handlers.NewBookingHandler(bookingService, logger, tracer)

	TourRouteHandler = routes.NewTourRouteHandler(TourHandler, ReviewHandler, userService, cfg)
	ReviewRouteHandler = routes.NewReviewRouteHandler(ReviewHandler, userService, cfg)
	UserRouteHandler = routes.NewUserRouteHandler(UserHandler, AuthHandler, userService, cfg)
	BookingRouteHandler = routes.NewBookingRouteHandler(BookingHandler, userService, cfg)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	server = gin.Default()
}

func main() {
	defer mongoclient.Disconnect(ctx)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:4200"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")

	server.Use(cors.New(corsConfig))
	server.Use(handlers.RequestID())
	server.Use(handlers.SecureHeaders())
	server.Use(handlers.ExtractTraceInfoMiddleware())

	router := server.Group("/api/v1")
	router.Use(handlers.RateLimit(rate.Limit(2), 4))
	router.GET("/healthchecker", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "success", "message": "natours service up"})
	})

	TourRouteHandler.TourRoute(router)
	ReviewRouteHandler.ReviewRoute(router)
	UserRouteHandler.UserRoute(router)
	BookingRouteHandler.BookingRoute(router)

	if err := server.Run(":" + cfg.Port); err != nil {
		fmt.Println(err)
		return
	}
}

func NewTracerProvider(serviceName, collectorEndpoint string) (*sdktrace.TracerProvider, error) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(collectorEndpoint)))
	if err != nil {
		return nil, fmt.Errorf("unable to initialize exporter due: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.DeploymentEnvironmentKey.String("development"),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}
