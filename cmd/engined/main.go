package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"questline/engine/internal/common"
	"questline/engine/internal/config"
	"questline/engine/internal/db"
	"questline/engine/internal/logging"
	"questline/engine/internal/metrics"
	"questline/engine/internal/routes"
	"questline/engine/internal/services"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Questline engine starting up",
		"environment", cfg.AppEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	gdb, err := db.Open(cfg)
	if err != nil {
		logging.Fatal("failed to open store", "error", err.Error())
	}
	if err := db.Migrate(gdb); err != nil {
		logging.Fatal("failed to migrate store", "error", err.Error())
	}
	logging.Info("Store connected and migrated")

	rdb, err := db.OpenRead(cfg)
	if err != nil {
		logging.Fatal("failed to open read db", "error", err.Error())
	}

	var cache common.CacheInterface
	if cfg.Redis.Enabled() {
		redisCache, err := common.NewRedisCacheService(cfg.Redis)
		if err != nil {
			logging.Fatal("failed to connect to Redis", "error", err.Error())
		}
		cache = redisCache
		logging.Info("Using Redis cache backend", "addr", cfg.Redis.Addr())
	} else {
		cache = common.NewCacheService(5*time.Minute, 10*time.Minute)
		logging.Info("Using in-memory cache backend")
	}
	defer cache.Close()

	metricsReg := metrics.NewRegistry()

	// Role grants are logged until a presentation adapter registers a real
	// notifier; the engine only ever emits the intent.
	deps, err := services.InitDependencies(cfg, gdb, rdb, cache, nil, metricsReg)
	if err != nil {
		logging.Fatal("failed to initialize engine", "error", err.Error())
	}

	logging.Info("Engine ready",
		"max_level", deps.Curve.MaxLevel(),
		"level_roles", len(cfg.LevelRoles),
		"clamp_negative_xp", cfg.ClampNegativeXP,
	)

	upSince := time.Now()
	router := routes.NewOpsRouter(rdb, upSince)

	logging.Info("Ops listener starting", "addr", cfg.HTTPAddr)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, router))
}
