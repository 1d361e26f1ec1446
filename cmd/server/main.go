package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"

	"medilink/internal/config"
	"medilink/internal/db"
	"medilink/internal/events"
	grpcserver "medilink/internal/grpc"
	"medilink/internal/httpapi"
	"medilink/internal/lock"
	"medilink/internal/logger"
	"medilink/internal/marketplace"
	"medilink/internal/storage"
	"medilink/repository"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		os.Exit(migrateDown())
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	level := logger.ParseLevel(cfg.Log.Level)
	log, err := logger.New(logger.Options{Level: level, Dir: cfg.Log.Dir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()
	log.Infof("SERVER", "Configuration loaded: %v", cfg)

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("open db: %v", err))
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Errorf("DATABASE", "close db: %v", err)
		}
	}()
	if v, err := db.CurrentVersion(d); err == nil {
		log.Infof("DATABASE", "Schema at migration %04d", v)
	}

	users := repository.NewUserRepository(d)
	pharmacies := repository.NewPharmacyRepository(d)
	orders := repository.NewOrderRepository(d)
	bids := repository.NewBidRepository(d)
	notes := repository.NewNotificationRepository(d)

	images, err := storage.NewImageStore(storage.Config{
		BasePath: cfg.Upload.Dir,
		BaseURL:  cfg.Upload.PublicPath,
		MaxBytes: cfg.Upload.MaxBytes,
	})
	if err != nil {
		log.Fatal("STORAGE", fmt.Sprintf("init uploads: %v", err))
	}

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.Redis.LockTTL)
		log.Infof("SERVER", "Order locks via redis at %s", cfg.Redis.Addr)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Infof("SERVER", "Publishing events to kafka topic %s", cfg.Kafka.Topic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Errorf("EVENTS", "close publisher: %v", err)
		}
	}()

	notifier := marketplace.NewNotifier(notes, publisher, log)
	notifications := marketplace.NewNotificationService(notes)
	api := httpapi.NewServer(httpapi.Deps{
		Accounts:       marketplace.NewAccountService(users, pharmacies, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log),
		Orders:         marketplace.NewOrderService(orders, pharmacies, bids, images, notifier, log),
		Bids:           marketplace.NewBidService(bids, orders, pharmacies, locker, notifier, log),
		Notifications:  notifications,
		JWTSecret:      cfg.Auth.JWTSecret,
		UploadDir:      images.Dir(),
		MaxUploadBytes: images.MaxBytes(),
		Health:         d.PingContext,
		Log:            log,
		Debug:          level == logger.DEBUG,
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      api.Engine(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	go func() {
		log.Infof("SERVER", "HTTP listening on %s", cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("SERVER", fmt.Sprintf("http: %v", err))
		}
	}()

	stopGRPC := func(context.Context) error { return nil }
	if cfg.GRPC.Address != "" {
		stopGRPC, err = grpcserver.StartGRPC(cfg, notifications, log)
		if err != nil {
			log.Fatal("GRPC", fmt.Sprintf("start grpc: %v", err))
		}
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	log.Info("SERVER", "Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("SERVER", "http shutdown: %v", err)
	}
	if err := stopGRPC(ctx); err != nil {
		log.Errorf("GRPC", "shutdown: %v", err)
	}
}

// migrateDown reverts the newest migration, for rolling back to an older build.
// It only needs the database path, so JWT_SECRET may be unset.
func migrateDown() int {
	cfg, err := config.LoadWithDefaults()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	log, err := logger.New(logger.Options{Level: logger.ParseLevel(cfg.Log.Level), Dir: cfg.Log.Dir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 1
	}
	defer log.Close()

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Errorf("DATABASE", "open db: %v", err)
		return 1
	}
	defer d.Close()
	if err := db.RollbackLast(d); err != nil {
		log.Errorf("DATABASE", "rollback: %v", err)
		return 1
	}
	v, err := db.CurrentVersion(d)
	if err != nil {
		log.Errorf("DATABASE", "read version: %v", err)
		return 1
	}
	log.Infof("DATABASE", "Rolled back; schema now at migration %04d", v)
	return 0
}
