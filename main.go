package main

import (
	"context"
	"net/http"
	"time"

	"marketplace/bizerror"
	"marketplace/client/es"
	"marketplace/common"
	"marketplace/config"
	"marketplace/domain"
	"marketplace/domain/listing"
	"marketplace/domain/project"
	"marketplace/domain/project/projectrest"
	"marketplace/event"
	"marketplace/indices"
	"marketplace/indices/search"
	"marketplace/infra/cors"
	"marketplace/infra/ratelimit"
	"marketplace/infra/tracing"
	"marketplace/owner"
	"marketplace/persistence"
	"marketplace/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	config.LoadDotEnv()
	logrus.Info("service start")

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config failed: %v", err)
	}

	closer, err := tracing.InitGlobalTracer(common.GetServiceName())
	if err != nil {
		logrus.Warnf("tracing disabled: %v", err)
	} else {
		defer closer.Close()
	}

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		logrus.Fatalf("parse database config failed: %v", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == persistence.DriverMysql {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database: %v", err)
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed: %v", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	if err := project.Migrate(ds.GormDB(context.Background())); err != nil {
		logrus.Fatalf("database migration failed: %v", err)
	}
	if err := owner.Migrate(context.Background()); err != nil {
		logrus.Fatalf("database migration failed: %v", err)
	}

	if err := common.RegisterBindingValidations(); err != nil {
		logrus.Fatalf("register validations failed: %v", err)
	}

	if cfg.Search.Enabled() {
		startSearchBackend()
	}

	if cfg.Security.AdminToken != "" {
		session.Register(&session.Session{
			Token:       cfg.Security.AdminToken,
			Identity:    session.Identity{ID: 1, Name: "admin"},
			Role:        domain.RoleAdmin,
			SigningTime: time.Now(),
		})
	}

	engine := gin.New()
	engine.Use(gin.Logger())
	if mw := cors.Middleware(cfg.Server.AllowedOrigins); mw != nil {
		engine.Use(mw)
	}
	engine.Use(bizerror.ErrorHandling(), tracing.TracingIngress())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.GetServiceName())
	})

	adminOnly := []gin.HandlerFunc{session.SimpleAuthFilter(), session.RequireRole(domain.RoleAdmin)}
	projectrest.RegisterProjectsRestAPI(engine, ratelimit.Limit(ratelimit.NewLimiter(cfg.Listing.RateLimit, cfg.Listing.RateBurst)))
	owner.RegisterOwnersRestAPI(engine, adminOnly...)
	session.RegisterSessionsRestAPI(engine)
	if cfg.Search.Enabled() {
		indices.RegisterIndicesRestAPI(engine, adminOnly...)
	}

	if err := engine.Run(cfg.Server.Addr); err != nil {
		panic(err)
	}
}

// startSearchBackend switches listings to the search index and keeps the index in sync.
func startSearchBackend() {
	client, err := es.CreateClientFromEnv()
	if err != nil {
		logrus.Fatalf("create elasticsearch client failed: %v", err)
	}
	es.ActiveESClient = client

	if err := indices.EnsureProjectIndex(context.Background()); err != nil {
		logrus.Fatalf("prepare project index failed: %v", err)
	}
	event.EventHandlers = append(event.EventHandlers, indices.IndexProjectEventHandle)
	listing.ActiveBackend = &search.ElasticBackend{}

	if _, err := indices.StartCron(); err != nil {
		logrus.Fatalf("start index cron failed: %v", err)
	}
}
