package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"quizboard/internal/app"
	"quizboard/internal/domain"
	"quizboard/internal/infra/bunstore"
	"quizboard/internal/infra/bunstore/migrations"
	pgloader "quizboard/internal/infra/postgres"
	infraredis "quizboard/internal/infra/redis"
)

func TestSubmitQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db, err := bunstore.Open(bunstore.DriverPostgres, pgURL)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if _, err := migrations.Apply(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store := bunstore.NewStore(db)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	loader := pgloader.NewQuizLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()
	quizRepo := infraredis.NewQuizRepository(redisClient, loader, 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)

	admin := app.NewAdminService(store, store, quizRepo)
	service := app.NewQuizService(sessionStore, quizRepo, store, store, app.NewGrader(store, nil))

	quiz, err := admin.CreateQuiz(ctx, app.QuizInput{
		Title:            "Arithmetic",
		Description:      "Small sums",
		TimeLimitSeconds: 120,
		Questions: []app.QuestionInput{
			{Text: "What is 2 + 2?", Options: []string{"3", "4", "5", "6"}, CorrectOption: 1},
			{Text: "What is 3 + 3?", Options: []string{"6", "7", "8", "9"}, CorrectOption: 0},
		},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	session, err := service.StartSession(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	defer service.EndSession(session.ID())

	if _, err := session.Begin(domain.Identity{Name: "Bob", Email: "bob@example.com"}); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := session.SelectAnswer(1); err != nil {
		t.Fatalf("answer: %v", err)
	}
	resultID, err := session.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	lb, err := service.Leaderboard(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Entries) != 1 || lb.Entries[0].ResultID != resultID || lb.Entries[0].Percentage != 50 {
		t.Fatalf("unexpected leaderboard %+v", lb.Entries)
	}

	report, err := service.Report(ctx, resultID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.TimeEfficiency == nil || report.Tier != app.TierKeepTrying {
		t.Fatalf("unexpected report %+v", report)
	}

	// admin edits must not be hidden by the redis cache
	if _, err := admin.UpdateQuiz(ctx, quiz.ID, app.QuizInput{
		Title:       "Arithmetic II",
		Description: "Small sums",
		Questions: []app.QuestionInput{
			{Text: "What is 1 + 1?", Options: []string{"1", "2", "3", "4"}, CorrectOption: 1},
		},
	}); err != nil {
		t.Fatalf("update quiz: %v", err)
	}
	updated, err := service.GetQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if updated.Title != "Arithmetic II" || len(updated.Questions) != 1 {
		t.Fatalf("expected refreshed quiz, got %+v", updated)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
