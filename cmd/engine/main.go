package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sheikh-saqib/payments-engine/internal/engine"
	"github.com/sheikh-saqib/payments-engine/internal/events/kafka"
	"github.com/sheikh-saqib/payments-engine/internal/interfaces"
	"github.com/sheikh-saqib/payments-engine/internal/storage/memory"
	"github.com/sheikh-saqib/payments-engine/internal/storage/postgres"
)

const prefix = "PAYMENTS_ENGINE"

func main() {
	if err := run(); err != nil {
		log.Fatalf("main: exited with error: %s", err.Error())
	}
}

func run() error {
	// a missing .env is fine, the environment may already be set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "loading .env")
	}

	var cfg struct {
		Input    string        `conf:"optional"`
		LogLevel string        `conf:"default:info"`
		Timeout  time.Duration `conf:"default:1m"`
		Postgres struct {
			DSN string `conf:"optional,mask"`
		}
		Kafka struct {
			Enabled      bool          `conf:"default:false"`
			Brokers      []string      `conf:"default:localhost:9092"`
			Topic        string        `conf:"default:client-balances"`
			WriteTimeout time.Duration `conf:"default:10s"`
		}
	}

	// the input file may be given as the first positional argument
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cfg.Input = args[0]
		args = args[1:]
	}

	if err := conf.Parse(args, prefix, &cfg); err != nil {
		switch {
		case errors.Is(err, conf.ErrHelpWanted):
			usage, err := conf.Usage(prefix, &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config usage")
			}
			fmt.Fprintln(os.Stderr, usage)
			return nil
		case errors.Is(err, conf.ErrVersionWanted):
			version, err := conf.VersionString(prefix, &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config version")
			}
			fmt.Fprintln(os.Stderr, version)
			return nil
		}
		return errors.Wrap(err, "parsing config")
	}
	if cfg.Input == "" {
		return errors.New("no input file path provided")
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "parsing log level")
	}
	// stdout carries the balances, logs go to stderr
	config := zap.NewProductionConfig()
	config.Level = level
	config.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)
	logger, err := config.Build()
	if err != nil {
		return errors.Wrap(err, "creating logger")
	}
	defer logger.Sync()
	sLogger := logger.Sugar()

	out, err := conf.String(&cfg)
	if err != nil {
		return errors.Wrap(err, "generating config for output")
	}
	sLogger.Debugf("main: Config :\n%v\n", out)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	var store interfaces.SnapshotStore = memory.NewMemorySnapshotStore()
	if cfg.Postgres.DSN != "" {
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer db.Close()

		pgStore := postgres.NewPostgresSnapshotStore(db)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return err
		}
		store = pgStore
	}

	var publisher interfaces.EventPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.WriteTimeout)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				sLogger.Warnw("closing kafka publisher", "error", err)
			}
		}()
		publisher = kafkaPublisher
	}

	file, err := os.Open(cfg.Input)
	if err != nil {
		return errors.Wrap(err, "cannot open csv file")
	}
	defer file.Close()

	summary, err := engine.New(store, publisher, sLogger).Run(ctx, file, os.Stdout)
	if err != nil {
		sLogger.Errorw("run failed", "run", summary.RunID.String(), "error", err)
		return err
	}
	return nil
}
