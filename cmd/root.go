package cmd

import (
	"context"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/souqtrack/souqtrack/core/config"
	"github.com/souqtrack/souqtrack/core/database"
	domainCache "github.com/souqtrack/souqtrack/domains/cache"
	domainCatalog "github.com/souqtrack/souqtrack/domains/catalog"
	domainPriceHistory "github.com/souqtrack/souqtrack/domains/pricehistory"
	domainUsage "github.com/souqtrack/souqtrack/domains/usage"
	"github.com/souqtrack/souqtrack/infrastructure/cachemanager"
	"github.com/souqtrack/souqtrack/infrastructure/scraper"
	"github.com/souqtrack/souqtrack/infrastructure/valkey"
	"github.com/souqtrack/souqtrack/repository"
	"github.com/souqtrack/souqtrack/usecase"
)

var (
	cfg *config.Config
	db  *gorm.DB
	vk  *valkey.Client

	cacheManager *cachemanager.Manager

	catalogUsecase      domainCatalog.ICatalogUsecase
	priceHistoryUsecase domainPriceHistory.IPriceHistoryUsecase
	usageUsecase        domainUsage.IUsageUsecase
	cacheUsecase        domainCache.ICacheUsecase
	syncService         *usecase.SyncService

	flagPort  string
	flagDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "souqtrack",
	Short: "Amazon.sa product data aggregation service",
	Long: `souqtrack serves amazon.sa product, search, deals and review data through
a tiered cache (valkey, durable snapshots, upstream scraper) and keeps
daily price history for tracked products.`,
}

func init() {
	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&flagPort, "port", "p", "", "override the HTTP port | example: --port=8080")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "enable debug logging | example: --debug=true")

	cobra.OnInitialize(initApp)
}

func initApp() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		logrus.Fatalf("[APP] Failed to load configuration: %v", err)
	}
	if flagPort != "" {
		cfg.App.Port = flagPort
	}
	if flagDebug {
		cfg.App.Debug = true
	}
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	db, err = database.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("[APP] Failed to open database: %v", err)
	}

	ctx := context.Background()

	snapshotRepo := repository.NewSnapshotGormRepository(db)
	observationRepo := repository.NewPriceHistoryGormRepository(db)
	usageRepo := repository.NewUsageGormRepository(db)
	if err := snapshotRepo.Init(ctx); err != nil {
		logrus.Fatalf("[APP] Failed to migrate snapshot schema: %v", err)
	}
	if err := observationRepo.Init(ctx); err != nil {
		logrus.Fatalf("[APP] Failed to migrate observation schema: %v", err)
	}
	if err := usageRepo.Init(ctx); err != nil {
		logrus.Fatalf("[APP] Failed to migrate usage schema: %v", err)
	}

	vk, err = valkey.NewClient(valkey.Config{
		Address:   cfg.Valkey.Address,
		Password:  cfg.Valkey.Password,
		DB:        cfg.Valkey.DB,
		KeyPrefix: cfg.Valkey.KeyPrefix,
	})
	if err != nil {
		logrus.Fatalf("[APP] Failed to connect to valkey: %v", err)
	}

	kv := repository.NewValkeyKVStore(vk)
	cacheManager = cachemanager.New(kv, snapshotRepo)

	usageUsecase = usecase.NewUsageService(usageRepo, cfg.Quota)
	scraperClient := scraper.NewClient(cfg.Scraper, usageUsecase)

	catalogUsecase = usecase.NewCatalogService(cacheManager, scraperClient, cfg.CacheTTL)
	priceHistoryUsecase = usecase.NewCachedPriceHistoryService(
		usecase.NewPriceHistoryService(observationRepo), cacheManager, cfg.CacheTTL.PriceHistory)
	cacheUsecase = usecase.NewCacheService(cacheManager)
	syncService = usecase.NewSyncService(observationRepo, scraperClient)
}

// Execute runs the selected subcommand.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp closes shared connections on shutdown.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if vk != nil {
		vk.Close()
	}
	if db != nil {
		if err := database.Close(db); err != nil {
			logrus.Errorf("[APP] Error closing database: %v", err)
		}
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
