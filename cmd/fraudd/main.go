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

	"golang.org/x/sync/errgroup"

	"github.com/fraudshield/fraud-analyzer/internal/application/usecase"
	"github.com/fraudshield/fraud-analyzer/internal/domain/port"
	"github.com/fraudshield/fraud-analyzer/internal/domain/service"
	"github.com/fraudshield/fraud-analyzer/internal/infrastructure/config"
	"github.com/fraudshield/fraud-analyzer/internal/infrastructure/kafka"
	"github.com/fraudshield/fraud-analyzer/internal/infrastructure/messaging"
	"github.com/fraudshield/fraud-analyzer/internal/infrastructure/ml"
	"github.com/fraudshield/fraud-analyzer/internal/infrastructure/storage"
	grpcpresentation "github.com/fraudshield/fraud-analyzer/internal/presentation/grpc"
	"github.com/fraudshield/fraud-analyzer/internal/presentation/rest"
	pkgkafka "github.com/fraudshield/fraud-analyzer/pkg/kafka"
	"github.com/fraudshield/fraud-analyzer/pkg/observability"
)

const serviceName = "fraud-analyzer"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("fraud-analyzer exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting fraud-analyzer",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"model_path", cfg.ModelPath,
	)

	// Initialize tracing.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: serviceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }()
	}

	// Initialize metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: serviceName})
	if err != nil {
		return fmt.Errorf("initialize metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	inferenceMetrics, err := observability.NewInferenceMetrics(meterProvider.Meter(serviceName))
	if err != nil {
		return fmt.Errorf("initialize inference metrics: %w", err)
	}

	// Load the model artifact once. Any failure leaves the service in heuristic mode.
	artifacts := storage.NewRouter(storage.Options{GCSCredentialsFile: cfg.GCSCredentialsFile})
	handle := ml.NewLoader(artifacts, cfg.ModelLoadTimeout, logger).Load(ctx, cfg.ModelPath)
	if err := artifacts.Close(); err != nil {
		logger.Warn("failed to close artifact storage", "error", err)
	}

	// Wire the alert publisher.
	var publisher port.EventPublisher
	if cfg.AlertsEnabled() {
		producer, err := pkgkafka.NewProducer(pkgkafka.Config{
			Brokers:       pkgkafka.ParseBrokers(cfg.KafkaBrokers),
			ClientID:      cfg.KafkaClientID,
			TLS:           cfg.KafkaTLS,
			SASLEnabled:   cfg.KafkaSASLMechanism != "",
			SASLMechanism: cfg.KafkaSASLMechanism,
			SASLUsername:  cfg.KafkaSASLUsername,
			SASLPassword:  cfg.KafkaSASLPassword,
			WriteTimeout:  cfg.KafkaWriteTimeout,
			Logger:        logger,
		})
		if err != nil {
			return fmt.Errorf("create kafka producer: %w", err)
		}
		defer producer.Close()
		publisher = kafka.NewPublisher(producer, cfg.AlertTopic, logger)
		logger.Info("fraud alerts go to kafka", "topic", cfg.AlertTopic)
	} else {
		publisher = messaging.NewLogPublisher(cfg.AlertTopic, logger)
		logger.Info("KAFKA_BROKERS not set, fraud alerts are logged only")
	}

	// Wire domain services and use cases.
	engine := service.NewScoringEngine(handle)
	inferUC := usecase.NewInferTransaction(engine, publisher, inferenceMetrics, logger)
	rulesUC := usecase.NewEvaluateRules(service.NewRuleEngine(), logger)

	// gRPC server.
	grpcHandler := grpcpresentation.NewFraudAnalyzerHandler(inferUC, rulesUC, logger)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerConfig{
		Address:     cfg.GRPCAddress(),
		TLSCertFile: cfg.GRPCTLSCertFile,
		TLSKeyFile:  cfg.GRPCTLSKeyFile,
		Reflection:  cfg.GRPCReflection,
	}, logger)
	if err != nil {
		return fmt.Errorf("create gRPC server: %w", err)
	}

	// HTTP server.
	httpServer := &http.Server{
		Addr: cfg.HTTPAddress(),
		Handler: rest.NewRouter(rest.RouterConfig{
			Inference: rest.NewInferenceHandler(inferUC, rulesUC, logger),
			Health:    rest.NewHealthHandler(handle, logger),
			Metrics:   metricsHandler,
			Logger:    logger,
			RateLimit: cfg.RateLimit,
			RateBurst: cfg.RateBurst,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := grpcServer.Start(); err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	logger.Info("fraud-analyzer started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
		"explain", engine.Mode().String(),
	)

	// Graceful shutdown once a signal arrives or either server fails.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down fraud-analyzer")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		grpcServer.Stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("fraud-analyzer stopped")
	return nil
}
