package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/api"
	api_i "github.com/beka-birhanu/vinom-labyrinth/api/i"
	"github.com/beka-birhanu/vinom-labyrinth/api/identity"
	levelapi "github.com/beka-birhanu/vinom-labyrinth/api/level"
	runapi "github.com/beka-birhanu/vinom-labyrinth/api/run"
	"github.com/beka-birhanu/vinom-labyrinth/config"
	jsonencoder "github.com/beka-birhanu/vinom-labyrinth/game/json_encoder"
	"github.com/beka-birhanu/vinom-labyrinth/infrastruture/levelstore"
	logger "github.com/beka-birhanu/vinom-labyrinth/infrastruture/log"
	"github.com/beka-birhanu/vinom-labyrinth/infrastruture/repo"
	"github.com/beka-birhanu/vinom-labyrinth/infrastruture/sortedstorage"
	"github.com/beka-birhanu/vinom-labyrinth/infrastruture/token"
	"github.com/beka-birhanu/vinom-labyrinth/service"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const shutdownTimeout = 10 * time.Second

// Global variables for dependencies
var (
	mongoClient     *mongo.Client
	redisClient     *redis.Client
	userRepo        *repo.UserRepo
	runRepo         *repo.RunRepo
	levelStore      i.LevelStore
	leaderboard     i.Leaderboard
	levelService    i.LevelGenerator
	runManager      *service.RunManager
	jwtTokenizer    i.Tokenizer
	authService     i.Authenticator
	authController  api_i.Controller
	levelController api_i.Controller
	runController   api_i.Controller
	router          *api.Router
	appLogger       i.Logger
)

func newLogger(prefix, color string) i.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %s logger: %v", prefix, err))
		os.Exit(1)
	}
	return l
}

func initMongo(ctx context.Context) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initRedis(ctx context.Context) {
	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
		DB:       config.Envs.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
}

func initRepos(ctx context.Context, client *mongo.Client) {
	userRepo = repo.NewUserRepo(client, config.Envs.DBName, "users")
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Creating user indexes: %v", err))
		os.Exit(1)
	}
	appLogger.Info("User repository initialized")

	runRepo = repo.NewRunRepo(client, config.Envs.DBName, "runs")
	if err := runRepo.EnsureIndexes(ctx); err != nil {
		appLogger.Error(fmt.Sprintf("Creating run indexes: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Run repository initialized")
}

func initRedisStores(client *redis.Client) {
	levelStore = levelstore.NewRedisLevelStore(client, config.Envs.LeaderboardPrefix, config.Envs.LevelTTLSeconds)
	appLogger.Info("Level store initialized")

	var err error
	leaderboard, err = service.NewLeaderboard(
		sortedstorage.NewRedisSortedSet(client),
		newLogger("LEADERBOARD", config.ColorYellow),
		config.Envs.LeaderboardPrefix,
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating leaderboard: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Leaderboard initialized")
}

func initLevelService() {
	var err error
	levelService, err = service.NewLevelService(levelStore, newLogger("LEVEL", config.ColorBlue), &service.LevelOptions{
		MaxDimension: config.Envs.MaxMazeDimension,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating level service: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Level service initialized")
}

func initRunManager() {
	var err error
	runManager, err = service.NewRunManager(service.RunManagerConfig{
		Width:         config.Envs.MazeWidth,
		Height:        config.Envs.MazeHeight,
		Tick:          time.Duration(config.Envs.TickMillis) * time.Millisecond,
		AttachTimeout: time.Duration(config.Envs.AttachTimeoutSecs) * time.Second,
		Encoder:       &jsonencoder.JSON{},
		Store:         levelStore,
		Runs:          runRepo,
		Users:         userRepo,
		Leaderboard:   leaderboard,
		Logger:        newLogger("RUN-MANAGER", config.ColorCyan),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating run manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Run manager initialized")
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initAuthService() {
	var err error
	authService, err = service.NewAuthService(userRepo, jwtTokenizer)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating auth service: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Auth service initialized")
}

func initControllers() {
	authController = identity.NewIdentityServer(authService)
	appLogger.Info("Auth controller initialized")

	var err error
	levelController, err = levelapi.NewLevelController(levelService, leaderboard)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating level controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Level controller initialized")

	runController, err = runapi.NewRunController(runManager, runRepo, newLogger("RUN-API", config.ColorMagenta))
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating run controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Run controller initialized")
}

func initRouter(t i.Tokenizer) {
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		GinMode:                 config.Envs.GinMode,
		Controllers:             []api_i.Controller{authController, levelController, runController},
		AuthorizationMiddleware: identity.Authoriz(t),
	})
	appLogger.Info("Router initialized")
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel() // Ensure the context is always canceled

	// Initialize dependencies
	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)

	initMongo(ctx)
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	initRedis(ctx)
	defer redisClient.Close()

	initRepos(ctx, mongoClient)
	initRedisStores(redisClient)
	initLevelService()
	initRunManager()
	initJWTTokenizer()
	initAuthService()
	initControllers()
	initRouter(jwtTokenizer)

	server := &http.Server{
		Addr:    router.Addr(),
		Handler: router.Handler(),
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info(fmt.Sprintf("Listening on %s", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(fmt.Sprintf("Starting server: %v", err))
		}
	case sig := <-quit:
		appLogger.Info(fmt.Sprintf("Received %s, shutting down", sig))
	}

	// Runs end first so their last levels are recorded before the stores close.
	runManager.StopAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(fmt.Sprintf("Shutting down server: %v", err))
	}
}
