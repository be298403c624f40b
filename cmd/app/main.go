package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"quad-backend/docs"
	"quad-backend/internal/common/config"
	"quad-backend/internal/common/logger"
	"quad-backend/internal/common/middleware"
	accounthttp "quad-backend/internal/features/account/delivery/http"
	"quad-backend/internal/features/account/models"
	"quad-backend/internal/features/account/repository"
	accountmem "quad-backend/internal/features/account/repository/memory"
	accountredis "quad-backend/internal/features/account/repository/redis"
	accountservice "quad-backend/internal/features/account/service"
	"quad-backend/internal/features/token"
	"quad-backend/internal/features/token/httpgw"
	tokenmem "quad-backend/internal/features/token/memory"
	wallethttp "quad-backend/internal/features/wallet/handler/http"
	walletrepo "quad-backend/internal/features/wallet/repository"
	walletmem "quad-backend/internal/features/wallet/repository/memory"
	walletredis "quad-backend/internal/features/wallet/repository/redis"
	walletservice "quad-backend/internal/features/wallet/service"
	"quad-backend/internal/platform/metrics"
	"quad-backend/internal/platform/ratelimiter"
	platformredis "quad-backend/internal/platform/redis"
	"quad-backend/internal/workers"
)

// @title           Quad Ledger API
// @version         1.0
// @description     User registry and token-backed balance ledger for a Telegram Mini App.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name init_data
// @description Telegram Mini App init_data string for authentication

// @tag.name accounts
// @tag.description Registration and profiles

// @tag.name ledger
// @tag.description Deposits, transfers and bookkeeping

// @tag.name wallet
// @tag.description TON wallet linking via ton_proof

type storage struct {
	accounts repository.AccountStore
	locker   repository.Locker
	wallets  walletrepo.Repository
	close    func()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.Init(cfg.ServiceName, cfg.Debug)
	log.Info().
		Str("store", cfg.Store).
		Str("gateway", cfg.Token.Gateway).
		Str("reregister_policy", cfg.Ledger.ReregisterPolicy).
		Msg("Starting Quad backend")

	custody, err := models.ParseIdentity(cfg.Token.CustodyAddress)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid TOKEN_CUSTODY_ADDRESS")
	}

	st, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer st.close()

	gateway, err := newGateway(cfg, custody)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create token gateway")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	accountSvc := accountservice.NewAccountService(st.accounts, st.locker, gateway, m, accountservice.Config{
		IgnoreReregistration: cfg.Ledger.ReregisterPolicy == config.ReregisterIgnore,
		LockTimeout:          cfg.Ledger.LockTimeout,
	})
	walletSvc := walletservice.NewService(st.wallets, walletservice.Config{
		Domain:     cfg.TonProof.Domain,
		ProofTTL:   cfg.TonProof.TTL,
		PayloadTTL: cfg.TonProof.PayloadTTL,
	})

	go workers.NewAuditWorker(accountSvc, cfg.Ledger.AuditInterval).Start(ctx)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics(m))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "init_data", "X-Request-ID", "X-Caller-Address"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.TelegramInitData(cfg.Telegram.BotToken, cfg.Telegram.InitDataTTL, cfg.Debug))

	limiter := ratelimiter.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 10*time.Minute)
	accounthttp.NewAccountHandler(accountSvc).RegisterRoutes(v1, accounthttp.Guards{
		Caller:    middleware.Caller(walletSvc, cfg.Debug),
		RateLimit: middleware.RateLimit(limiter),
		Admin:     middleware.RequireAdmin(cfg.Telegram.AdminIDs),
	})
	wallethttp.NewHandler(walletSvc).RegisterRoutes(v1, middleware.RequireAuth(), middleware.RateLimit(limiter))

	setupProbes(router, cfg, st.accounts, reg)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn().Msg("Using in-memory storage, state is lost on restart")
		return &storage{
			accounts: accountmem.NewStore(int(cfg.Ledger.JournalMaxLen)),
			locker:   accountmem.NewLocker(),
			wallets:  walletmem.NewRepository(),
			close:    func() {},
		}, nil
	case config.StoreRedis:
		rdb, err := platformredis.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info().Str("addr", cfg.RedisAddr()).Msg("Redis connection established")

		keys := platformredis.Keyspace(cfg.Redis.Prefix)
		return &storage{
			accounts: accountredis.NewAccountStore(rdb, cfg.Redis.Prefix, cfg.Ledger.JournalMaxLen),
			locker:   platformredis.NewLock(rdb, keys.Key("lock", "ledger"), cfg.Ledger.LockTTL),
			wallets:  walletredis.NewRepository(rdb, cfg.Redis.Prefix),
			close: func() {
				if err := rdb.Close(); err != nil {
					log.Error().Err(err).Msg("Failed to close redis")
				}
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
	}
}

func newGateway(cfg *config.Config, custody models.Identity) (token.Gateway, error) {
	switch cfg.Token.Gateway {
	case config.GatewayHTTP:
		return httpgw.NewClient(cfg.Token.GatewayURL, cfg.Token.GatewayToken, custody, cfg.Token.GatewayTimeout), nil
	case config.GatewayMemory:
		tok := tokenmem.NewToken("Quad Token", "QUAD")
		if err := applyDevMint(tok, custody, cfg.Token.DevMint); err != nil {
			return nil, err
		}
		log.Warn().Int("dev_mints", len(cfg.Token.DevMint)).Msg("Using in-process token")
		return tokenmem.NewGateway(tok, custody), nil
	default:
		return nil, fmt.Errorf("unknown TOKEN_GATEWAY %q", cfg.Token.Gateway)
	}
}

// applyDevMint mints "address=amount" pairs and pre-approves custody for them.
func applyDevMint(tok *tokenmem.Token, custody models.Identity, entries []string) error {
	for _, e := range entries {
		addr, amount, ok := strings.Cut(e, "=")
		if !ok {
			return fmt.Errorf("TOKEN_DEV_MINT entry %q: want address=amount", e)
		}
		id, err := models.ParseIdentity(addr)
		if err != nil {
			return fmt.Errorf("TOKEN_DEV_MINT entry %q: %w", e, err)
		}
		n, err := models.ParseAmount(amount)
		if err != nil {
			return fmt.Errorf("TOKEN_DEV_MINT entry %q: %w", e, err)
		}
		if err := tok.Mint(id, n); err != nil {
			return err
		}
		if err := tok.Approve(id, custody, n); err != nil {
			return err
		}
	}
	return nil
}

func setupProbes(router *gin.Engine, cfg *config.Config, store repository.AccountStore, reg *prometheus.Registry) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   cfg.ServiceName,
		})
	})

	// Liveness probe
	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// Readiness probe
	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "store unavailable",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   cfg.ServiceName,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
