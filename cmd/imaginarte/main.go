// Command imaginarte serves the order and inventory API.
//
// @title                      Imagin'Arte orders API
// @version                    1.0
// @description                Orders, catalog stock and cash figures for the Imagin'Arte shop.
// @BasePath                   /
// @securityDefinitions.apikey Bearer
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/imaginarte/gestao/internal/auth"
	"github.com/imaginarte/gestao/internal/config"
	"github.com/imaginarte/gestao/internal/db"
	"github.com/imaginarte/gestao/internal/finance"
	"github.com/imaginarte/gestao/internal/health"
	"github.com/imaginarte/gestao/internal/logging"
	"github.com/imaginarte/gestao/internal/memstore"
	"github.com/imaginarte/gestao/internal/order"
	"github.com/imaginarte/gestao/internal/product"
	"github.com/imaginarte/gestao/internal/report"
	"github.com/imaginarte/gestao/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info", "json")
		log.Fatal().Err(err).Msg("config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	cfg.LogSummary()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("store")
	}
	defer closeStore()

	productSvc := product.NewService(st.products)
	orderSvc := order.NewService(st.orders, st.products)
	financeSvc := finance.NewService(st.finance)
	userSvc := user.NewService(st.users)
	checker := health.NewChecker(st.pinger)

	if cfg.AdminUsername != "" {
		if err := userSvc.Ensure(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Fatal().Err(err).Str("username", cfg.AdminUsername).Msg("bootstrap user")
		}
	}

	a := &app{
		products: productSvc,
		orders:   orderSvc,
		finance:  financeSvc,
		reports:  report.NewService(orderSvc, productSvc, financeSvc),
		users:    userSvc,
		tokens:   auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		health:   checker,
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, checker.Server())
	go checker.Watch(ctx, 15*time.Second)

	go func() {
		l, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Error().Err(err).Str("addr", cfg.GRPCAddr).Msg("grpc listen")
			return
		}
		log.Info().Str("addr", cfg.GRPCAddr).Msg("grpc health listening")
		if err := gs.Serve(l); err != nil {
			log.Error().Err(err).Msg("grpc serve")
		}
	}()

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http serve")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	gs.GracefulStop()
}

type store struct {
	products product.Repository
	orders   order.Repository
	finance  finance.Repository
	users    user.Repository
	pinger   health.Pinger
}

func openStore(ctx context.Context, cfg config.Config) (store, func(), error) {
	if cfg.Store == "memory" {
		log.Warn().Msg("memory store: data is lost on restart")
		m := memstore.New()
		return store{
			products: m.Products(),
			orders:   m.Orders(),
			finance:  m.Finance(),
			users:    m.Users(),
			pinger:   m,
		}, func() {}, nil
	}

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.PostgresDSN); err != nil {
			return store{}, nil, err
		}
	}
	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return store{}, nil, err
	}
	return store{
		products: product.NewPGRepo(pool),
		orders:   order.NewPGRepo(pool),
		finance:  finance.NewPGRepo(pool),
		users:    user.NewPGRepo(pool),
		pinger:   pool,
	}, pool.Close, nil
}
