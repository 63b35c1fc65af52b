package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/cache"
	"github.com/localnerve/equirecords/internal/config"
	"github.com/localnerve/equirecords/internal/utils"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer"`
	Cache        string            `json:"cache"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// Healthy reports whether every dependency answered
func (r HealthCheckResult) Healthy() bool {
	return r.Status == "healthy"
}

func (r *HealthCheckResult) fail(component, detailKey string, err error) {
	r.Status = "unhealthy"
	r.Details[detailKey] = err.Error()
	msg := fmt.Sprintf("%s check failed: %v", component, err)
	if r.ErrorMessage == "" {
		r.ErrorMessage = msg
	} else {
		r.ErrorMessage += "; " + msg
	}
	zap.L().Warn("health check failed", zap.String("component", component), zap.Error(err))
}

// HealthCheck pings the database, the Authorizer and, when configured, Redis
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, c cache.Cache) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Cache:   "disabled",
		Details: make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	// Check database connectivity
	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		result.Database = "unreachable"
		result.fail("database", "database_error", err)
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	// Check Authorizer connectivity
	if err := utils.PingAuthorizer(ctx, cfg.AuthzURL); err != nil {
		result.Authorizer = "unreachable"
		result.fail("authorizer", "authorizer_error", err)
	} else {
		result.Authorizer = "ok"
		result.Details["authorizer_url"] = cfg.AuthzURL
	}

	if cfg.RedisAddr != "" && c != nil {
		if err := c.Ping(ctx); err != nil {
			result.Cache = "unreachable"
			result.fail("cache", "cache_error", err)
		} else {
			result.Cache = "ok"
		}
	}

	return result
}
