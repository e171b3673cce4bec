package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/config"
	httpapi "github.com/pweat/Opieka-Plus-sub000/internal/http"
	"github.com/pweat/Opieka-Plus-sub000/internal/repository"
	"github.com/pweat/Opieka-Plus-sub000/internal/service"
	"github.com/pweat/Opieka-Plus-sub000/internal/store"

	pkgconfig "github.com/pweat/Opieka-Plus-sub000/pkg/config"
	"github.com/pweat/Opieka-Plus-sub000/pkg/database"
	pkglogger "github.com/pweat/Opieka-Plus-sub000/pkg/logger"
	pkgredis "github.com/pweat/Opieka-Plus-sub000/pkg/redis"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := pkglogger.NewLogger(cfg.Log.Level, cfg.Log.Format, "opieka-data")
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	redisClient := pkgredis.NewRedisClient(&pkgconfig.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := pkgredis.Ping(context.Background(), redisClient); err != nil {
		logger.Warn("Redis ping failed, invites/push/cache will degrade", zap.Error(err))
	}

	// Redis 支撑的存储：邀请码、推送令牌、展示名缓存
	inviteStore := store.NewInviteStore(redisClient)
	pushTokens := store.NewPushTokenStore(redisClient)
	nameCache := store.NewRedisKV(redisClient)

	// Repositories：DB 可用走 Postgres，不可用回退内存实现（本地联测不被 DB 阻塞）
	var db *sql.DB
	var (
		usersRepo    repository.UsersRepository
		patientsRepo repository.PatientsRepository
		shiftsRepo   repository.ShiftsRepository
		reportsRepo  repository.ReportsRepository
		invitesRepo  repository.InvitesRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			logger.Info("DB enabled for opieka-data")
		} else {
			logger.Warn("DB enabled but connection failed, falling back to memory repositories", zap.Error(err))
		}
	}
	if db != nil {
		usersRepo = repository.NewPostgresUsersRepository(db)
		patientsRepo = repository.NewPostgresPatientsRepository(db)
		shiftsRepo = repository.NewPostgresShiftsRepository(db)
		reportsRepo = repository.NewPostgresReportsRepository(db)
		invitesRepo = repository.NewPostgresInvitesRepository(db)
	} else {
		usersRepo = repository.NewMemoryUsersRepository()
		patientsRepo = repository.NewMemoryPatientsRepository()
		shiftsRepo = repository.NewMemoryShiftsRepository()
		reportsRepo = repository.NewMemoryReportsRepository()
		invitesRepo = repository.NewMemoryInvitesRepository()
	}

	// Services
	jwtManager := service.NewJWTManager(service.JWTConfig{
		SecretKey:            cfg.JWT.Secret,
		AccessTokenDuration:  cfg.JWT.AccessTTL,
		RefreshTokenDuration: cfg.JWT.RefreshTTL,
		Issuer:               "opieka-data",
	})
	pushGateway := service.NewPushGatewayClient(cfg.Push.GatewayURL, logger)
	hostname, _ := os.Hostname()
	pushService := service.NewPushService(pushTokens, pushGateway, redisClient, hostname, logger)

	authService := service.NewAuthService(usersRepo, jwtManager, logger)
	shiftService := service.NewShiftService(shiftsRepo, patientsRepo, usersRepo, pushService, logger)
	patientService := service.NewPatientService(patientsRepo, usersRepo, logger)
	reportService := service.NewReportService(reportsRepo, shiftsRepo, patientsRepo, usersRepo, pushService, logger)
	inviteService := service.NewInviteService(inviteStore, usersRepo, invitesRepo, pushService, cfg.Invite.TTL, logger)
	statsService := service.NewStatsService(shiftsRepo, usersRepo, patientsRepo, nameCache, logger)

	// HTTP
	authMW := httpapi.NewAuthMiddleware(jwtManager, logger)
	router := httpapi.NewRouter(logger)
	router.RegisterHealthRoutes()
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authService, logger))
	router.RegisterCareRoutes(
		authMW,
		httpapi.NewShiftHandler(shiftService, logger),
		httpapi.NewPatientHandler(patientService, logger),
		httpapi.NewReportHandler(reportService, logger),
		httpapi.NewInviteHandler(inviteService, logger),
		httpapi.NewStatsHandler(statsService, logger),
		httpapi.NewPushHandler(pushService, logger),
	)

	srv := service.NewServer(cfg.HTTP.Addr, router, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 推送投递消费者（禁用时事件仍会进入队列，便于后续补投）
	if cfg.Push.Enabled {
		go func() {
			if err := pushService.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("Push consumer stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = pkgredis.Close(redisClient)
	if db != nil {
		_ = database.Close(db)
	}
}
