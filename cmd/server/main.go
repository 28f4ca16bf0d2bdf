package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"carbonledger/internal/calculator"
	"carbonledger/internal/factors"
	factorshandler "carbonledger/internal/factors/handler"
	"carbonledger/internal/initiatives"
	initiativeshandler "carbonledger/internal/initiatives/handler"
	"carbonledger/internal/ledger"
	ledgerhandler "carbonledger/internal/ledger/handler"
	"carbonledger/internal/levy"
	levyhandler "carbonledger/internal/levy/handler"
	"carbonledger/internal/platform/config"
	"carbonledger/internal/platform/httpserver"
	"carbonledger/internal/platform/logger"
	"carbonledger/internal/platform/metrics"
	"carbonledger/internal/platform/postgres"
	platformredis "carbonledger/internal/platform/redis"
	"carbonledger/internal/reports"
	reportshandler "carbonledger/internal/reports/handler"
	"carbonledger/internal/targets"
	targetshandler "carbonledger/internal/targets/handler"
	httptransport "carbonledger/internal/transport/http"
	auditpublisher "carbonledger/pkg/platform/audit/publisher"
	auditkafka "carbonledger/pkg/platform/audit/publishers/kafka"
	auditmemory "carbonledger/pkg/platform/audit/store/memory"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps
// the server lifecycle small. Business logic lives in the internal
// services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "error", err.Error())
		os.Exit(1)
	}
	if db != nil {
		if err := postgres.Migrate(db); err != nil {
			log.Error("migrations failed", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Stores: postgres when configured, in-memory otherwise.
	var (
		emissionStore   ledger.Store
		overrideStore   factors.OverrideStore
		targetStore     targets.Store
		initiativeStore initiatives.Store
	)
	if db != nil {
		emissionStore = ledger.NewPostgresStore(db)
		overrideStore = factors.NewPostgresOverrideStore(db)
		targetStore = targets.NewPostgresStore(db)
		initiativeStore = initiatives.NewPostgresStore(db)
	} else {
		log.Warn("no database configured, using in-memory stores")
		emissionStore = ledger.NewInMemoryStore()
		overrideStore = factors.NewInMemoryOverrideStore()
		targetStore = targets.NewInMemoryStore()
		initiativeStore = initiatives.NewInMemoryStore()
	}

	auditOpts := []auditpublisher.Option{auditpublisher.WithLogger(log)}
	var kafkaSink *auditkafka.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err = auditkafka.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka sink setup failed", "error", err.Error())
			os.Exit(1)
		}
		defer kafkaSink.Close()
		auditOpts = append(auditOpts, auditpublisher.WithSink(kafkaSink))
	}
	auditor := auditpublisher.New(auditmemory.NewInMemoryStore(), auditOpts...)

	table := factors.NewTable(factors.WithOverrides(overrideStore))
	calc, err := calculator.New(table)
	if err != nil {
		log.Error("calculator setup failed", "error", err.Error())
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(emissionStore, calc,
		ledger.WithLogger(log),
		ledger.WithAudit(auditor),
		ledger.WithMetrics(m),
	)
	if err != nil {
		log.Error("ledger service setup failed", "error", err.Error())
		os.Exit(1)
	}

	reportService, err := reports.NewService(emissionStore, reports.WithLogger(log))
	if err != nil {
		log.Error("report service setup failed", "error", err.Error())
		os.Exit(1)
	}

	targetService, err := targets.NewService(targetStore,
		targets.WithLogger(log),
		targets.WithAudit(auditor),
		targets.WithAggregator(reportService),
	)
	if err != nil {
		log.Error("target service setup failed", "error", err.Error())
		os.Exit(1)
	}

	initiativeService, err := initiatives.NewService(initiativeStore,
		initiatives.WithLogger(log),
		initiatives.WithAudit(auditor),
	)
	if err != nil {
		log.Error("initiative service setup failed", "error", err.Error())
		os.Exit(1)
	}

	prices := levy.NewCachedPriceSource(redisClient, cfg.LevyPriceEUR)
	levyService, err := levy.NewService(reportService, prices,
		levy.WithLogger(log),
		levy.WithMetrics(m),
	)
	if err != nil {
		log.Error("levy service setup failed", "error", err.Error())
		os.Exit(1)
	}

	router := httptransport.NewRouter(
		ledgerhandler.New(ledgerService, log),
		factorshandler.New(table, overrideStore, log, auditor),
		reportshandler.New(reportService, log),
		targetshandler.New(targetService, log),
		initiativeshandler.New(initiativeService, log),
		levyhandler.New(levyService, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting carbonledger", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}
