package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"      // Loads .env files into the environment
	"github.com/labstack/echo/v4"   // Echo web framework
	"github.com/robfig/cron/v3"     // Cron scheduler for periodic refreshes

	"github.com/iliyamo/movie-times/internal/collector"
	"github.com/iliyamo/movie-times/internal/config"
	"github.com/iliyamo/movie-times/internal/database"
	"github.com/iliyamo/movie-times/internal/fandango"
	"github.com/iliyamo/movie-times/internal/handler"
	"github.com/iliyamo/movie-times/internal/middleware"
	"github.com/iliyamo/movie-times/internal/notify"
	"github.com/iliyamo/movie-times/internal/queue"
	"github.com/iliyamo/movie-times/internal/reconcile"
	"github.com/iliyamo/movie-times/internal/repository"
	"github.com/iliyamo/movie-times/internal/router"
	"github.com/iliyamo/movie-times/internal/schedule"
	"github.com/iliyamo/movie-times/internal/theater"
)

func main() {
	_ = godotenv.Load() // Optional .env file for local development
	cfg := config.Load()

	// Open the database and make sure the tables exist.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.InitSchema(context.Background(), db); err != nil {
		log.Fatalf("database schema: %v", err)
	}

	// Theater registry: an explicit YAML file wins, otherwise the
	// built-in set is used.
	registry := theater.NewRegistry(theater.Defaults())
	if cfg.TheatersFile != "" {
		registry, err = theater.LoadRegistry(cfg.TheatersFile)
		if err != nil {
			log.Fatalf("theaters: %v", err)
		}
	}

	// Default zone for date expressions on endpoints that are not tied
	// to a single theater.
	loc := time.Local
	if cfg.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("timezone: %v", err)
		}
	}

	showtimeRepo := repository.NewShowtimeRepo(db)
	metadataRepo := repository.NewMetadataRepo(db)
	plannerRepo := repository.NewPlannerRepo(db)
	engine := reconcile.New(showtimeRepo)
	col := collector.New(fandango.NewClient(), showtimeRepo, engine, cfg.AmqpURL)

	// Email reporting is optional; without a token results stay in logs.
	var mailer *notify.Mailer
	if cfg.MailtrapToken != "" {
		mailer = notify.NewMailer(cfg.MailtrapToken, cfg.MailSender, cfg.MailSenderName, cfg.MailReceiver)
	}

	// Redis backs the response cache and rate limiter; nil means both
	// are disabled and the server runs without them.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable: cache and rate limiting disabled")
	}

	e := echo.New()
	e.Use(middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterShowtimes(e, &handler.ShowtimeHandler{
		ShowtimeRepo: showtimeRepo,
		MetadataRepo: metadataRepo,
		Theaters:     registry,
	}, &handler.DeletedHandler{Engine: engine, Loc: loc}, cache)
	router.RegisterAdmin(e,
		&handler.MovieHandler{MetadataRepo: metadataRepo},
		&handler.PlannerHandler{PlannerRepo: plannerRepo, Loc: loc},
	)

	// Consume deletion events so cancellations end up in the audit log
	// even when they were published by another process.
	if cfg.AmqpURL != "" {
		go func() {
			if err := queue.StartDeletionConsumer(cfg.AmqpURL); err != nil {
				log.Printf("deletion consumer: %v", err)
			}
		}()
	}

	if cfg.UpdateCron != "" {
		c := startScheduler(cfg, registry, col, engine, mailer, loc)
		defer c.Stop()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// startScheduler runs the collector for every registered theater on the
// configured cron expression.  SkipIfStillRunning guarantees a single
// refresh pass at a time, so two passes never reconcile the same
// theater concurrently.
func startScheduler(cfg config.Config, registry *theater.Registry, col *collector.Collector, engine *reconcile.Engine, mailer *notify.Mailer, loc *time.Location) *cron.Cron {
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	_, err := c.AddFunc(cfg.UpdateCron, func() {
		runUpdatePass(cfg, registry, col, engine, mailer, loc)
	})
	if err != nil {
		log.Fatalf("scheduler: bad cron expression %q: %v", cfg.UpdateCron, err)
	}
	c.Start()
	log.Printf("scheduler: refreshing %q on %q", cfg.UpdateDates, cfg.UpdateCron)
	return c
}

// runUpdatePass refreshes every theater over the configured date
// expression, then emails the day's deletion report when anything
// genuinely disappeared.  A failing theater is reported and skipped so
// the rest of the pass still runs.
func runUpdatePass(cfg config.Config, registry *theater.Registry, col *collector.Collector, engine *reconcile.Engine, mailer *notify.Mailer, loc *time.Location) {
	ctx := context.Background()

	for _, name := range registry.Names() {
		th, _ := registry.Get(name)
		thLoc, err := th.Location()
		if err != nil {
			log.Printf("update %s: %v", name, err)
			continue
		}
		first, last, err := schedule.NewParser(thLoc).ParseDateRange(cfg.UpdateDates)
		if err != nil {
			log.Printf("update %s: %v", name, err)
			continue
		}
		if _, err := col.Update(ctx, th, first, last); err != nil {
			log.Printf("update %s: %v", name, err)
			if mailer != nil {
				if mailErr := mailer.EmailError(ctx, name, err); mailErr != nil {
					log.Printf("update %s: email error report: %v", name, mailErr)
				}
			}
		}
	}

	records, err := engine.DeletionReport(ctx, time.Now().In(loc))
	if err != nil {
		log.Printf("deletion report: %v", err)
		return
	}
	if len(records) == 0 || mailer == nil {
		return
	}
	if err := mailer.EmailDeletionReport(ctx, records); err != nil {
		log.Printf("deletion report: email: %v", err)
	}
}
