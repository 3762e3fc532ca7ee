package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/bibbank/loan-lifecycle/internal/application/usecase"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
	"github.com/bibbank/loan-lifecycle/internal/domain/service"
	"github.com/bibbank/loan-lifecycle/internal/infrastructure/config"
	"github.com/bibbank/loan-lifecycle/internal/infrastructure/kafka"
	"github.com/bibbank/loan-lifecycle/internal/infrastructure/notification"
	pgRepo "github.com/bibbank/loan-lifecycle/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/loan-lifecycle/internal/infrastructure/redis"
	"github.com/bibbank/loan-lifecycle/internal/infrastructure/telemetry"
	grpcPresentation "github.com/bibbank/loan-lifecycle/internal/presentation/grpc"
	"github.com/bibbank/loan-lifecycle/internal/presentation/rest"
	"github.com/bibbank/loan-lifecycle/pkg/auth"
	pkgkafka "github.com/bibbank/loan-lifecycle/pkg/kafka"
	"github.com/bibbank/loan-lifecycle/pkg/observability"
	pkgpostgres "github.com/bibbank/loan-lifecycle/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting loan-lifecycle",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Tracing and metrics.
	tracerProvider, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName:  cfg.ServiceName,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		Insecure:     true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = tracerProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush

	lifecycleMetrics, err := telemetry.NewLifecycleMetrics(otel.Meter(cfg.ServiceName))
	if err != nil {
		logger.Error("failed to register lifecycle metrics", "error", err)
		os.Exit(1)
	}

	// Database connection.
	dbCfg := pkgpostgres.Config{
		Host:            cfg.DB.Host,
		Port:            cfg.DB.Port,
		User:            cfg.DB.User,
		Password:        cfg.DB.Password,
		Database:        cfg.DB.Name,
		SSLMode:         cfg.DB.SSLMode,
		ApplicationName: cfg.ServiceName,
		MaxConns:        cfg.DB.MaxConns,
	}
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := pkgpostgres.NewPool(dbCtx, dbCfg)
	dbCancel()
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	version, err := pkgpostgres.RunMigrations(dbCfg.DSN(), cfg.MigrationsPath)
	if err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database schema up to date", "version", version)

	// Draft store.
	redisClient := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer redisClient.Close()
	drafts := redis.NewDraftStore(redisClient, cfg.Redis.DraftTTL)

	// Event publishing.
	kafkaCfg := pkgkafka.Config{
		Brokers:       cfg.Kafka.Brokers,
		ConsumerGroup: cfg.Kafka.ConsumerGroup,
		TLS:           cfg.Kafka.TLS,
		SASLEnabled:   cfg.Kafka.SASLMechanism != "",
		SASLMechanism: cfg.Kafka.SASLMechanism,
		SASLUsername:  cfg.Kafka.SASLUsername,
		SASLPassword:  cfg.Kafka.SASLPassword,
	}
	kafkaProducer, err := pkgkafka.NewProducer(kafkaCfg)
	if err != nil {
		logger.Error("failed to create kafka producer", "error", err)
		os.Exit(1)
	}
	defer kafkaProducer.Close()
	publisher := kafka.NewEventPublisher(kafkaProducer, cfg.Kafka.Topic, logger)

	notifier, err := newNotifier(ctx, cfg.Notifier, logger)
	if err != nil {
		logger.Error("failed to create decision notifier", "error", err)
		os.Exit(1)
	}

	// Wire use cases.
	applications := pgRepo.NewApplicationRepo(pool)
	cases := pgRepo.NewVerificationCaseRepo(pool)
	sanctions := pgRepo.NewSanctionRepo(pool)
	loans := pgRepo.NewLoanRepo(pool)
	evaluator := service.NewEligibilityEvaluator()

	useCases := grpcPresentation.UseCases{
		StartApplication:     usecase.NewStartApplicationUseCase(drafts, evaluator),
		GetApplicationDraft:  usecase.NewGetApplicationDraftUseCase(drafts, evaluator),
		UpdateApplication:    usecase.NewUpdateApplicationUseCase(drafts, evaluator),
		NavigateApplication:  usecase.NewNavigateApplicationUseCase(drafts, applications, publisher, lifecycleMetrics, evaluator),
		PreviewLoan:          usecase.NewPreviewLoanUseCase(evaluator),
		TrackApplication:     usecase.NewTrackApplicationUseCase(applications, cases, sanctions),
		OpenVerificationCase: usecase.NewOpenVerificationCaseUseCase(cases, applications, publisher),
		GetVerificationCase:  usecase.NewGetVerificationCaseUseCase(cases),
		ReviewItem:           usecase.NewReviewItemUseCase(cases),
		ScoreCase:            usecase.NewScoreCaseUseCase(cases, publisher),
		DecideCase:           usecase.NewDecideCaseUseCase(cases, publisher, notifier, lifecycleMetrics),
		DecideSanction:       usecase.NewDecideSanctionUseCase(applications, cases, sanctions, publisher, lifecycleMetrics),
		AdvanceSanction:      usecase.NewAdvanceSanctionUseCase(sanctions, publisher),
		DisburseLoan:         usecase.NewDisburseLoanUseCase(applications, sanctions, loans, publisher, lifecycleMetrics),
		MakePayment:          usecase.NewMakePaymentUseCase(loans, publisher, lifecycleMetrics),
		GetLoan:              usecase.NewGetLoanUseCase(loans),
	}
	intake := usecase.NewIntakeApplicationUseCase(cases, applications, publisher)

	// Submitted applications open their default verification cases.
	consumer, err := pkgkafka.NewConsumer(kafkaCfg, cfg.Kafka.Topic, kafka.NewIntakeHandler(intake, logger), logger)
	if err != nil {
		logger.Error("failed to create kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	jwtSvc, err := newJWTService(cfg.Auth)
	if err != nil {
		logger.Error("failed to initialize JWT service", "error", err)
		os.Exit(1)
	}

	// gRPC server.
	handler := grpcPresentation.NewLoanLifecycleHandler(useCases, logger)
	grpcServer, err := grpcPresentation.NewServer(grpcPresentation.ServerConfig{
		TLSCertFile:  cfg.GRPC.TLSCertFile,
		TLSKeyFile:   cfg.GRPC.TLSKeyFile,
		ClientCAFile: cfg.GRPC.ClientCAFile,
		Reflection:   cfg.GRPC.Reflection,
	}, handler, logger, jwtSvc)
	if err != nil {
		logger.Error("failed to create gRPC server", "error", err)
		os.Exit(1)
	}

	// HTTP server (health, metrics, EMI preview).
	previewHandler, err := rest.NewPreviewHandler(useCases.PreviewLoan, logger)
	if err != nil {
		logger.Error("failed to compile preview schema", "error", err)
		os.Exit(1)
	}
	healthHandler := rest.NewHealthHandler(cfg.ServiceName, map[string]rest.Pinger{
		"postgres": pool,
		"redis":    drafts,
	}, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           rest.NewRouter(healthHandler, previewHandler, metricsHandler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 3)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("intake consumer error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("loan-lifecycle stopped")
}

// newJWTService prefers an RSA public key for validation and falls back to
// the shared HMAC secret.
func newJWTService(cfg config.AuthConfig) (*auth.JWTService, error) {
	jwtCfg := auth.JWTConfig{Issuer: cfg.Issuer}
	if cfg.JWTPublicKeyFile != "" {
		keyData, err := auth.LoadKeyFromFile(cfg.JWTPublicKeyFile)
		if err != nil {
			return nil, err
		}
		jwtCfg.PublicKeyPEM = string(keyData)
	} else {
		jwtCfg.Secret = cfg.JWTSecret
	}
	return auth.NewJWTService(jwtCfg)
}

// newNotifier publishes decisions to SNS when a topic is configured and
// logs them otherwise.
func newNotifier(ctx context.Context, cfg config.NotifierConfig, logger *slog.Logger) (port.DecisionNotifier, error) {
	if cfg.TopicARN == "" {
		logger.Info("SNS_TOPIC_ARN not set, decisions will only be logged")
		return notification.NewLogNotifier(logger), nil
	}
	client, err := notification.NewSNSClient(ctx, cfg.Region)
	if err != nil {
		return nil, err
	}
	return notification.NewSNSNotifier(client, cfg.TopicARN, logger), nil
}
