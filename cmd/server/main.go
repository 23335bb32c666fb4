// Command server runs the StaffLink API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	apphandler "stafflink/internal/applications/handler"
	appservice "stafflink/internal/applications/service"
	appstore "stafflink/internal/applications/store"
	candhandler "stafflink/internal/candidates/handler"
	candservice "stafflink/internal/candidates/service"
	candstore "stafflink/internal/candidates/store"
	"stafflink/internal/events"
	examhandler "stafflink/internal/exam/handler"
	examservice "stafflink/internal/exam/service"
	examstore "stafflink/internal/exam/store"
	"stafflink/internal/export"
	identityhandler "stafflink/internal/identity/handler"
	"stafflink/internal/identity/otp"
	identityservice "stafflink/internal/identity/service"
	identitystore "stafflink/internal/identity/store"
	interviewhandler "stafflink/internal/interviews/handler"
	interviewservice "stafflink/internal/interviews/service"
	interviewstore "stafflink/internal/interviews/store"
	jobhandler "stafflink/internal/jobs/handler"
	jobservice "stafflink/internal/jobs/service"
	jobstore "stafflink/internal/jobs/store"
	"stafflink/internal/notification"
	"stafflink/internal/objectstore"
	"stafflink/internal/platform/config"
	"stafflink/internal/platform/httpserver"
	"stafflink/internal/platform/logger"
	"stafflink/internal/platform/metrics"
	"stafflink/internal/platform/postgres"
	platformredis "stafflink/internal/platform/redis"
	"stafflink/internal/token"
	httptransport "stafflink/internal/transport/http"
	verificationhandler "stafflink/internal/verification/handler"
	verificationservice "stafflink/internal/verification/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(logger.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	rdb, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()

	objects, err := objectstore.NewMinio(ctx, cfg.ObjectStore)
	if err != nil {
		return fmt.Errorf("object store: %w", err)
	}

	m := metrics.New()

	dispatcher := notification.NewDispatcher(log,
		notification.NewSMTPMailer(cfg.SMTP),
		notification.NewHTTPSMSSender(cfg.SMS),
		m, 256)

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafka(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, log, m)
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := kafka.Close(flushCtx); err != nil {
				log.Warn("kafka close", "error", err)
			}
		}()
		publisher = kafka
	}

	accounts := identitystore.NewPostgres(db)
	jobs := jobstore.NewPostgres(db)
	candidates := candstore.NewPostgres(db)
	applications := appstore.NewPostgres(db)
	pendingLinks := appstore.NewPostgresPendingLinks(db)
	interviews := interviewstore.NewPostgres(db)
	otps := otp.NewRedisStore(rdb)
	examProgress := examstore.NewRedisStore(rdb)

	tokens := token.NewService(cfg.JWTSigningKey, cfg.TokenTTL,
		token.WithRevocations(token.NewRedisRevocations(rdb)))

	applicationSvc := appservice.New(applications, pendingLinks, candidates, jobs, dispatcher, publisher, m, log,
		appservice.WithEmployerDirectory(accounts))
	identitySvc := identityservice.New(accounts, otps, cfg.OTPTTL, dispatcher, publisher, m, log,
		identityservice.WithCorporateDomain(cfg.CorporateDomain),
		identityservice.WithApplicationLinker(applicationSvc),
	)
	verificationSvc := verificationservice.New(accounts, dispatcher, publisher, m, log)
	candidateSvc := candservice.New(candidates, log)
	jobSvc := jobservice.New(jobs, log)
	interviewSvc := interviewservice.New(interviews, candidates, dispatcher, publisher, m, log)
	exportSvc := export.NewService(candidates, m, log)
	examSvc := examservice.New(examProgress, candidates, objects, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Identity:       identityhandler.New(identitySvc, tokens, objects, cfg.MaxDocumentBytes, cfg.Production, log),
		Verification:   verificationhandler.New(verificationSvc, objects, cfg.MaxDocumentBytes, log),
		Jobs:           jobhandler.New(jobSvc, log),
		Applications:   apphandler.New(applicationSvc, objects, cfg.MaxDocumentBytes, cfg.MaxMediaBytes, log),
		Candidates:     candhandler.New(candidateSvc, log),
		Interviews:     interviewhandler.New(interviewSvc, log),
		Export:         export.NewHandler(exportSvc, log),
		Exam:           examhandler.New(examSvc, cfg.MaxDocumentBytes, log),
		TokenValidator: tokens,
		AdminToken:     cfg.AdminToken,
		Logger:         log,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(ctx)
	})
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}
