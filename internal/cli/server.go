package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"quizboard/internal/app"
	"quizboard/internal/auth"
	"quizboard/internal/config"
	"quizboard/internal/domain"
	"quizboard/internal/infra/bunstore"
	"quizboard/internal/infra/memory"
	pgloader "quizboard/internal/infra/postgres"
	"quizboard/internal/infra/rabbit"
	rediscache "quizboard/internal/infra/redis"
	"quizboard/internal/jobs"
	transport "quizboard/internal/transport/http"
)

// contentStore is what every database backend provides.
type contentStore interface {
	app.QuizStore
	app.ResultStore
}

// quizCache serves quiz content and drops it after admin writes.
type quizCache interface {
	app.QuizRepository
	app.QuizCache
}

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	var store contentStore
	var loader memory.QuizLoader
	switch driver := cfg.DatabaseDriver(); driver {
	case config.DriverMemory:
		seeded := memory.NewSeededStore(sampleQuizzes()...)
		store, loader = seeded, seeded
		log.Printf("using in-memory store with sample quizzes")
	default:
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		closers = append(closers, func() { db.Close() })
		if err := migrate(ctx, db); err != nil {
			return err
		}
		bstore := bunstore.NewStore(db)
		store, loader = bstore, bstore
		log.Printf("using %s store", driver)
	}

	if cfg.DatabaseDriver() == config.DriverPostgres {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		closers = append(closers, pool.Close)
		loader = pgloader.NewQuizLoader(pool)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { redisClient.Close() })
	}
	idleTTL := config.TTLDuration(cfg.Session.IdleTTL, 30*time.Minute)
	redisTTL := config.TTLDuration(cfg.Redis.TTL, idleTTL)

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo quizCache
	if redisClient != nil {
		quizRepo = rediscache.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = rediscache.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	var publisher app.ResultPublisher
	if cfg.RabbitMQ.URL != "" {
		pub, err := rabbit.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Printf("result events disabled: %v", err)
		} else {
			publisher = pub
			closers = append(closers, func() { pub.Close() })
		}
	}

	grader := app.NewGrader(store, publisher)
	service := app.NewQuizService(sessions, quizRepo, store, store, grader)
	admin := app.NewAdminService(store, store, quizRepo)

	authSvc := auth.NewService(cfg.Admin.Email, cfg.Admin.PasswordHash, cfg.Admin.JWTSecret,
		config.TTLDuration(cfg.Admin.TokenTTL, 8*time.Hour))
	if !authSvc.Enabled() {
		log.Printf("admin account not configured; admin API will reject all requests")
	}

	sweeper := jobs.NewSessionSweeper(sessions, idleTTL)
	if err := sweeper.Start(cfg.Session.SweepSchedule); err != nil {
		return err
	}
	closers = append(closers, sweeper.Stop)

	handler := transport.NewHandler(service, admin, authSvc)
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(handler, cfg.CORS.Origins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	for _, s := range sessions.List() {
		s.Close()
	}
	return err
}

// sampleQuizzes seeds the in-memory store so the service is usable without a database.
func sampleQuizzes() []domain.Quiz {
	return []domain.Quiz{
		{
			ID:               "go-basics",
			Title:            "Go Basics",
			Description:      "A short warm-up on Go fundamentals.",
			Difficulty:       domain.DifficultyEasy,
			TimeLimitSeconds: 300,
			Questions: []domain.Question{
				{Text: "What is the zero value of an int?", Options: []string{"0", "nil", "1", "undefined"}, CorrectOption: 0},
				{Text: "Which keyword starts a goroutine?", Options: []string{"async", "spawn", "go", "thread"}, CorrectOption: 2},
				{Text: "What does len(nil map) return?", Options: []string{"panic", "0", "-1", "nil"}, CorrectOption: 1},
				{Text: "Which package formats output?", Options: []string{"io", "os", "strings", "fmt"}, CorrectOption: 3},
			},
		},
		{
			ID:          "concurrency",
			Title:       "Concurrency",
			Description: "Channels and synchronization, untimed.",
			Difficulty:  domain.DifficultyMedium,
			Questions: []domain.Question{
				{Text: "Receiving from a closed channel returns?", Options: []string{"panic", "the zero value", "blocks", "an error"}, CorrectOption: 1},
				{Text: "Which type guards a critical section?", Options: []string{"sync.Mutex", "sync.Pool", "atomic.Value", "context.Context"}, CorrectOption: 0},
			},
		},
	}
}
