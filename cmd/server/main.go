package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/pixel-yerzat/banking-superapp/internal/config"
	"github.com/pixel-yerzat/banking-superapp/internal/handler"
	"github.com/pixel-yerzat/banking-superapp/internal/repository"
	"github.com/pixel-yerzat/banking-superapp/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Ошибка загрузки конфигурации")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.WithError(err).Fatal("Ошибка подключения к базе данных")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.WithError(err).Fatal("База данных недоступна")
	}
	logger.Info("Подключение к базе данных установлено")

	var nc *nats.Conn
	if cfg.NatsURL != "" {
		nc, err = nats.Connect(cfg.NatsURL,
			nats.RetryOnFailedConnect(true),
			nats.MaxReconnects(-1),
		)
		if err != nil {
			logger.WithError(err).Warn("NATS недоступен, события транзакций публиковаться не будут")
		} else {
			defer nc.Close()
			logger.Info("Подключение к NATS установлено")
		}
	}

	accountRepo := repository.NewAccountRepository(db, logger)
	transactionRepo := repository.NewTransactionRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)
	loanRepo := repository.NewLoanRepository(db, logger)
	depositRepo := repository.NewDepositRepository(db, logger)

	events := service.NewEventPublisher(nc, logger)
	keyRate := service.NewKeyRateClient(cfg.KeyRateURL, logger)

	ledgerService := service.NewLedgerService(accountRepo, logger)
	transactionService := service.NewTransactionService(accountRepo, transactionRepo, userRepo, ledgerService, events, logger)
	loanService := service.NewLoanService(loanRepo, accountRepo, transactionService, keyRate, cfg.LoanMargin, cfg.DefaultKeyRate, logger)
	depositService := service.NewDepositService(depositRepo, accountRepo, transactionService, logger)
	analyticService := service.NewAnalyticService(transactionRepo, loanRepo, accountRepo, logger)

	accountHandler := handler.NewAccountHandler(ledgerService, transactionService, logger)
	transactionHandler := handler.NewTransactionHandler(transactionService, logger)
	loanHandler := handler.NewLoanHandler(loanService, logger)
	depositHandler := handler.NewDepositHandler(depositService, logger)
	analyticHandler := handler.NewAnalyticHandler(analyticService, logger)

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.Use(handler.IdentityMiddleware(logger))

	accountHandler.RegisterRoutes(api.PathPrefix("/accounts").Subrouter())
	transactionHandler.RegisterRoutes(api.PathPrefix("/transactions").Subrouter())
	loanHandler.RegisterRoutes(api.PathPrefix("/loans").Subrouter())
	depositHandler.RegisterRoutes(api.PathPrefix("/deposits").Subrouter())
	analyticHandler.RegisterRoutes(api.PathPrefix("/analytics").Subrouter())

	scheduler := cron.New()

	// Ежедневная обработка вкладов с наступившим сроком
	if _, err := scheduler.AddFunc("0 2 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := depositService.RunMaturitySweep(ctx); err != nil {
			logger.WithError(err).Error("Ошибка обработки вкладов с наступившим сроком")
		}
	}); err != nil {
		logger.WithError(err).Fatal("Ошибка настройки планировщика")
	}

	// Ежемесячная капитализация процентов по срочным вкладам
	if _, err := scheduler.AddFunc("0 3 1 * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if err := depositService.AccrueAll(ctx); err != nil {
			logger.WithError(err).Error("Ошибка начисления процентов по вкладам")
		}
	}); err != nil {
		logger.WithError(err).Fatal("Ошибка настройки планировщика")
	}

	// Списание платежей по кредитам с наступившей датой
	if _, err := scheduler.AddFunc("0 */12 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if err := loanService.ProcessDuePayments(ctx); err != nil {
			logger.WithError(err).Error("Ошибка обработки платежей по кредитам")
		}
	}); err != nil {
		logger.WithError(err).Fatal("Ошибка настройки планировщика")
	}

	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Infof("Сервер запущен на %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Ошибка запуска сервера")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Остановка сервера")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Ошибка остановки сервера")
	}
	logger.Info("Сервер остановлен")
}
