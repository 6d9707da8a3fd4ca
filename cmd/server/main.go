package main // entry point

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/ai"
	"github.com/floodwatch/flood-alert/internal/config"
	"github.com/floodwatch/flood-alert/internal/database"
	"github.com/floodwatch/flood-alert/internal/handler"
	appmw "github.com/floodwatch/flood-alert/internal/middleware"
	"github.com/floodwatch/flood-alert/internal/model"
	"github.com/floodwatch/flood-alert/internal/queue"
	"github.com/floodwatch/flood-alert/internal/repository"
	"github.com/floodwatch/flood-alert/internal/router"
	"github.com/floodwatch/flood-alert/internal/storage"
)

// activityFeed adapts the report, SOS and user repositories to the admin
// activity feed interface.
type activityFeed struct {
	reports *repository.ReportRepo
	sos     *repository.SOSRepo
	users   *repository.UserRepo
}

func (a activityFeed) RecentReports(ctx context.Context, limit int) ([]model.FloodReport, error) {
	return a.reports.Recent(ctx, limit)
}

func (a activityFeed) RecentSOS(ctx context.Context, limit int) ([]model.SOSRequest, error) {
	return a.sos.Recent(ctx, limit)
}

func (a activityFeed) RecentUsers(ctx context.Context, limit int) ([]model.User, error) {
	return a.users.Recent(ctx, limit)
}

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	cfg := config.Load()

	// The server keeps serving in a degraded mode when the database is down
	// so the health endpoint and static uploads stay reachable during an
	// outage; requests needing the database fail individually.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Printf("database unreachable, starting degraded: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unreachable, cache and rate limiting disabled")
	}

	provider, err := ai.FromConfig(cfg)
	if err != nil {
		log.Fatalf("ai config: %v", err)
	}
	if provider == nil {
		log.Printf("ai provider not configured, using placeholder responses")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	reports := repository.NewReportRepo(db)
	sosReqs := repository.NewSOSRepo(db)
	shelters := repository.NewShelterRepo(db)
	comments := repository.NewCommentRepo(db)
	stats := repository.NewStatsRepo(db)
	uploads := storage.New(cfg.UploadDir)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	reportH := handler.NewReportHandler(reports, uploads, stats)
	sosH := handler.NewSOSHandler(sosReqs, stats)
	shelterH := handler.NewShelterHandler(shelters, stats)
	commentH := handler.NewCommentHandler(comments, reports)
	adminH := handler.NewAdminHandler(stats, activityFeed{reports: reports, sos: sosReqs, users: users}, reports)
	aiH := handler.NewAIHandler(reports, provider)

	e := echo.New()
	e.HideBanner = true
	e.Validator = router.NewValidator()
	e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	public := e.Group("/api")
	protected := e.Group("/api",
		appmw.JWTAuth(cfg.JWTSecret),
		appmw.RequireRole(model.RoleUser, model.RoleAdmin),
	)
	admin := e.Group("/api",
		appmw.JWTAuth(cfg.JWTSecret),
		appmw.RequireRole(model.RoleAdmin),
	)

	cache := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)
	router.RegisterRoutes(e, db, cfg.UploadDir)
	router.RegisterAuth(public, protected, authH)
	router.RegisterPublic(public, reportH, commentH, shelterH, cache)
	router.RegisterUser(protected, reportH, sosH, commentH, shelterH)
	router.RegisterAdmin(admin, authH, reportH, sosH, shelterH, adminH, aiH)

	go func() {
		if err := queue.StartSOSConsumer(); err != nil {
			log.Printf("sos consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
