package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/toolsinn/shortlinks/config"
	repository "github.com/toolsinn/shortlinks/internal/database/postgres"
	cache "github.com/toolsinn/shortlinks/internal/database/redis"
	"github.com/toolsinn/shortlinks/internal/device"
	"github.com/toolsinn/shortlinks/internal/service"
	"github.com/toolsinn/shortlinks/internal/transport"
	"github.com/toolsinn/shortlinks/internal/worker"

	"github.com/toolsinn/shortlinks/pkg/postgres"
	"github.com/toolsinn/shortlinks/pkg/redis"
	"github.com/toolsinn/shortlinks/pkg/stream"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// A broken store configuration is a deployment error: fail loudly at
	// startup instead of degrading.
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logrus.Fatalf("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	linkRepo := repository.NewLinkRepository(db)
	clickRepo := repository.NewClickRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient, cfg.App.CacheTTL)

	// Optional click event stream for downstream consumers
	var producer stream.Producer
	if cfg.Kafka.Enabled {
		producer = stream.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		logrus.Info("Click event producer initialized")
	} else {
		logrus.Warn("Kafka disabled, click events stay local")
	}

	classifier := device.NewUserAgentClassifier()

	// Initialize services
	linkService := service.NewLinkService(linkRepo, clickRepo, cacheRepo, classifier, producer, &service.LinkServiceConfig{
		CodeLength:     cfg.App.CodeLength,
		CodeAttempts:   cfg.App.CodeAttempts,
		BaseURL:        cfg.App.BaseURL,
		CacheTTL:       cfg.App.CacheTTL,
		ClickLogWindow: cfg.App.ClickLogWindow,
	})
	analyticsService := service.NewAnalyticsService(linkRepo, clickRepo, cacheRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Worker.Enabled {
		recalculateWorker := worker.NewRecalculateWorker(analyticsService, cfg.Worker.RecalculateInterval)
		go recalculateWorker.Start(ctx)
		logrus.Info("Recalculation worker started")
	}

	// Initialize handlers
	linkHandler := transport.NewLinkHandler(linkService, cfg.App.HomeURL)
	analyticsHandler := transport.NewAnalyticsHandler(analyticsService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(linkHandler, analyticsHandler, cfg.Server.Timeout)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
