package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts failed Redis commands by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "empleos_redis_errors_total",
	Help: "Total number of Redis command errors",
}, []string{"command"})

// RateLimitRejections counts requests refused by Limit, per quota.
var RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "empleos_rate_limit_rejections_total",
	Help: "Requests rejected by the Redis rate limiter",
}, []string{"quota"})

var promMiddleware *fiberprometheus.FiberPrometheus

// InitMetrics creates the HTTP metrics collector once per process.
// fiberprometheus registers on the default registry, so repeated
// construction would panic in tests that build several servers.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	if promMiddleware == nil {
		promMiddleware = fiberprometheus.New(serviceName)
	}
	return promMiddleware
}

// MetricsMiddleware records request counts and latencies.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
