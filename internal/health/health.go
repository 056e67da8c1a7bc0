// Package health reports database reachability through the standard gRPC
// health service and the HTTP /healthz probe.
package health

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Checker struct {
	db     Pinger
	server *health.Server
}

func NewChecker(db Pinger) *Checker {
	return &Checker{db: db, server: health.NewServer()}
}

// Server is the gRPC health implementation to register on a grpc.Server.
func (c *Checker) Server() *health.Server { return c.server }

// Check pings the database once and publishes the result.
func (c *Checker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := c.db.Ping(ctx)
	st := healthpb.HealthCheckResponse_SERVING
	if err != nil {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	c.server.SetServingStatus("", st)
	return err
}

// Watch re-checks every interval until ctx is done.
func (c *Checker) Watch(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		if err := c.Check(ctx); err != nil {
			log.Warn().Err(err).Msg("health: database unreachable")
		}
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-t.C:
		}
	}
}
