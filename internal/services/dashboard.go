package services

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/hints"

	"github.com/localnerve/equirecords/internal/cache"
	"github.com/localnerve/equirecords/internal/metrics"
	"github.com/localnerve/equirecords/internal/models"
)

// CountItem is one bucket of a distribution
type CountItem struct {
	ID    string `json:"_id"`
	Count int64  `json:"count"`
}

// HealthCounts counts non-radiated horses per health state
type HealthCounts struct {
	Malade           int64 `json:"malade"`
	Sain             int64 `json:"sain"`
	EnRetablissement int64 `json:"enRetablissement"`
}

// Dashboard is the aggregated overview of the herd
type Dashboard struct {
	TotalHorses         int64        `json:"totalHorses"`
	RadiatedHorses      int64        `json:"radiatedHorses"`
	RadiationRatio      float64      `json:"radiationRatio"`
	RadiationReasons    []CountItem  `json:"radiationReasons"`
	HealthStatus        HealthCounts `json:"healthStatus"`
	RaceDistribution    []CountItem  `json:"raceDistribution"`
	RobeDistribution    []CountItem  `json:"robeDistribution"`
	DisciplineBreakdown []CountItem  `json:"disciplineDistribution"`
	TopPathologies      []CountItem  `json:"topPathologies"`
}

// RadiationRatio is radiated / (radiated + nonRadiated) as a percentage rounded to one decimal; 0 on an empty herd
func RadiationRatio(radiated, nonRadiated int64) float64 {
	total := radiated + nonRadiated
	if total == 0 {
		return 0
	}
	return math.Round(float64(radiated)/float64(total)*100*10) / 10
}

// dashboardQuery tags the aggregation statements so they are recognizable in the database logs
func dashboardQuery(db *gorm.DB) *gorm.DB {
	return db.Clauses(hints.CommentBefore("select", "dashboard"))
}

// BuildDashboard runs the independent aggregation queries. The result is not a snapshot.
func BuildDashboard(db *gorm.DB) (*Dashboard, error) {
	start := time.Now()
	defer func() { metrics.DashboardBuildDuration.Observe(time.Since(start).Seconds()) }()

	d := &Dashboard{}

	if err := dashboardQuery(db).Model(&models.Horse{}).Where("is_radie = ?", false).Count(&d.TotalHorses).Error; err != nil {
		return nil, err
	}
	if err := dashboardQuery(db).Model(&models.Horse{}).Where("is_radie = ?", true).Count(&d.RadiatedHorses).Error; err != nil {
		return nil, err
	}
	d.RadiationRatio = RadiationRatio(d.RadiatedHorses, d.TotalHorses)

	var err error
	if d.RadiationReasons, err = groupCount(dashboardQuery(db).Model(&models.Horse{}).
		Where("is_radie = ? AND motifderadiation IS NOT NULL", true), "motifderadiation", 0); err != nil {
		return nil, err
	}

	if err := dashboardQuery(db).Model(&models.Horse{}).
		Select(
			"COALESCE(SUM(CASE WHEN etat = ? THEN 1 ELSE 0 END), 0) AS malade, "+
				"COALESCE(SUM(CASE WHEN etat = ? THEN 1 ELSE 0 END), 0) AS sain, "+
				"COALESCE(SUM(CASE WHEN etat = ? THEN 1 ELSE 0 END), 0) AS en_retablissement",
			models.EtatMalade, models.EtatSain, models.EtatEnRetablissement,
		).
		Where("is_radie = ?", false).
		Scan(&d.HealthStatus).Error; err != nil {
		return nil, err
	}

	nonRadiated := func() *gorm.DB {
		return dashboardQuery(db).Model(&models.Horse{}).Where("is_radie = ?", false)
	}
	if d.RaceDistribution, err = groupCount(nonRadiated(), "race", 10); err != nil {
		return nil, err
	}
	if d.RobeDistribution, err = groupCount(nonRadiated(), "robe", 10); err != nil {
		return nil, err
	}
	if d.DisciplineBreakdown, err = groupCount(nonRadiated(), "discipline", 10); err != nil {
		return nil, err
	}

	d.TopPathologies = []CountItem{}
	if err := dashboardQuery(db).Model(&models.Test{}).
		Select("tests.type AS id, COUNT(*) AS count").
		Joins("JOIN horses ON horses.id = tests.horse").
		Where("horses.is_radie = ? AND tests.is_radie = ?", false, false).
		Group("tests.type").
		Order("count DESC, id ASC").
		Limit(5).
		Scan(&d.TopPathologies).Error; err != nil {
		return nil, err
	}

	return d, nil
}

// groupCount counts rows per non-empty value of column, descending; limit 0 returns every group
func groupCount(query *gorm.DB, column string, limit int) ([]CountItem, error) {
	items := []CountItem{}
	query = query.
		Select(column+" AS id, COUNT(*) AS count").
		Where(column+" IS NOT NULL AND "+column+" <> ?", "").
		Group(column).
		Order("count DESC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Scan(&items).Error
	return items, err
}

// GetDashboard serves the dashboard from cache when present, otherwise builds and caches it
func GetDashboard(ctx context.Context, db *gorm.DB, c cache.Cache, ttl time.Duration) (*Dashboard, error) {
	if c != nil {
		var cached Dashboard
		hit, err := c.Get(ctx, cache.DashboardKey, &cached)
		if err != nil {
			zap.L().Warn("dashboard cache read failed", zap.Error(err))
		}
		if hit {
			metrics.DashboardCacheRequests.WithLabelValues("hit").Inc()
			return &cached, nil
		}
		metrics.DashboardCacheRequests.WithLabelValues("miss").Inc()
	}

	d, err := BuildDashboard(db)
	if err != nil {
		return nil, err
	}

	if c != nil && ttl > 0 {
		if err := c.Set(ctx, cache.DashboardKey, d, ttl); err != nil {
			zap.L().Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return d, nil
}

// InvalidateDashboard drops the cached dashboard after a horse or test mutation
func InvalidateDashboard(ctx context.Context, c cache.Cache) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, cache.DashboardKey); err != nil {
		zap.L().Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
