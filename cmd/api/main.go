package main

import (
	"context"
	"errors"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	httpadp "agriloan-backend/internal/adapter/http"
	repo "agriloan-backend/internal/adapter/repository/mysql"
	"agriloan-backend/internal/config"
	"agriloan-backend/internal/domain/loan"
	"agriloan-backend/internal/infrastructure/cache"
	"agriloan-backend/internal/infrastructure/db"
	"agriloan-backend/internal/infrastructure/ledger"
	"agriloan-backend/internal/infrastructure/logging"
	"agriloan-backend/internal/infrastructure/scheduler"
	"agriloan-backend/internal/infrastructure/token"
	"agriloan-backend/internal/usecase/auth"
	"agriloan-backend/internal/usecase/kyc"
	"agriloan-backend/internal/usecase/ledgersync"
	ucLoan "agriloan-backend/internal/usecase/loan"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), log, logging.Gorm(log))
	if err != nil {
		log.WithError(err).Fatal("db open")
	}
	if err := repo.AutoMigrate(gdb); err != nil {
		log.WithError(err).Fatal("db migrate")
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.WithError(err).Fatal("db handle")
	}
	defer sqlDB.Close()

	// empty REDIS_ADDR runs without idempotency and without the cross-replica sync lock
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.NewRedis(cfg.RedisAddr, cfg.RedisDB, log)
		if err != nil {
			log.WithError(err).Fatal("redis")
		}
		defer rdb.Close()
	} else {
		log.Warn("REDIS_ADDR empty: idempotency and sync lock disabled")
	}

	loans := repo.NewLoanRepository(gdb)
	farmers := repo.NewFarmerRepository(gdb)
	lenders := repo.NewLenderRepository(gdb)
	tx := repo.NewGormUoW(gdb)
	tokens := token.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	chain, err := ledger.NewClient(ledger.Config{
		RPCURL:           cfg.LedgerRPCURL,
		PrivateKey:       cfg.LedgerPrivateKey,
		ContractAddress:  cfg.LedgerContractAddress,
		Confirmations:    cfg.LedgerConfirmations,
		GasMarginPercent: cfg.LedgerGasMarginPercent,
		ReceiptPoll:      cfg.LedgerReceiptPoll,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("ledger client")
	}
	defer chain.Close()

	authUC := auth.NewUsecase(farmers, lenders, tokens, log)
	kycUC := kyc.NewUsecase(tx, log)
	loanUC := ucLoan.NewUsecase(loans, farmers, lenders, tx, log)

	var sched *scheduler.Scheduler
	if cfg.SyncEnabled {
		sched = startSync(ctx, cfg, loans, chain, rdb, log)
	}

	e := httpadp.NewServer(httpadp.ServerDeps{
		Log:            log,
		Tokens:         tokens,
		Redis:          rdb,
		IdempTTL:       cfg.IdempTTL(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Health:         httpadp.NewHandler(sqlDB),
		Accounts:       httpadp.NewAccountHandler(authUC, kycUC),
		Loans:          httpadp.NewLoanHandler(loanUC),
		Ledger:         httpadp.NewLedgerHandler(chain),
	})

	addr := ":" + cfg.AppPort
	go func() {
		log.WithField("addr", addr).Info("http: listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.WithError(err).Error("http: server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	if sched != nil {
		sched.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http: shutdown")
	}
}

func startSync(ctx context.Context, cfg *config.Config, loans loan.Repository, chain *ledger.Client, rdb *redis.Client, log *logrus.Logger) *scheduler.Scheduler {
	statuses := make([]loan.Status, 0, len(cfg.SyncStatuses))
	for _, s := range cfg.SyncStatuses {
		statuses = append(statuses, loan.Status(s))
	}
	syncer := ledgersync.New(loans, chain, ledgersync.Config{
		EligibleStatuses: statuses,
		ItemDelay:        cfg.SyncItemDelay,
		SubmitTimeout:    cfg.SyncSubmitTimeout,
		BatchLimit:       cfg.SyncBatchLimit,
	}, log)

	var opts []scheduler.Option
	if rdb != nil {
		opts = append(opts, scheduler.WithLocker(cache.NewLock(rdb, "lock:ledgersync", cfg.SyncLockTTL)))
	}
	sched := scheduler.New(scheduler.Config{
		Name:     "ledgersync",
		Schedule: cfg.SyncSchedule,
		Warmup:   cfg.SyncWarmup,
	}, func(ctx context.Context) error {
		_, err := syncer.Run(ctx)
		return err
	}, log, opts...)
	if err := sched.Start(ctx); err != nil {
		log.WithError(err).Fatal("scheduler")
	}
	return sched
}
