package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/restaurant-service/internal/app"
	"github.com/vladislavdragonenkov/restaurant-service/internal/version"
)

const (
	envPort               = "PORT"
	envHTTPAddr           = "RESTAURANTS_HTTP_ADDR"
	envMetricsAddr        = "RESTAURANTS_METRICS_ADDR"
	envGRPCHealthAddr     = "RESTAURANTS_GRPC_HEALTH_ADDR"
	envStorageDriver      = "RESTAURANTS_STORAGE_DRIVER"
	envMongoURI           = "RESTAURANTS_MONGO_URI"
	envMongoDatabase      = "RESTAURANTS_MONGO_DATABASE"
	envMongoCollection    = "RESTAURANTS_MONGO_COLLECTION"
	envMongoConnTimeout   = "RESTAURANTS_MONGO_CONNECT_TIMEOUT"
	envRequestTimeout     = "RESTAURANTS_REQUEST_TIMEOUT"
	envHealthPollInterval = "RESTAURANTS_HEALTH_POLL_INTERVAL"
	envKafkaBrokers       = "KAFKA_BROKERS"
	envKafkaTopic         = "RESTAURANTS_KAFKA_TOPIC"
	envLogLevel           = "RESTAURANTS_LOG_LEVEL"
	envLogFormat          = "RESTAURANTS_LOG_FORMAT"
	envEnvFile            = "RESTAURANTS_ENV_FILE"
)

const defaultEnvFile = ".env"

type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(lookup envLookup) []error {
	var warnings []error

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if format, ok := nonEmpty(lookup, envLogFormat); ok {
		switch strings.ToLower(format) {
		case "json":
			log.SetFormatter(&log.JSONFormatter{})
		case "text":
		default:
			warnings = append(warnings, fmt.Errorf("%s: unsupported format %q", envLogFormat, format))
		}
	}

	log.SetLevel(log.InfoLevel)
	if raw, ok := nonEmpty(lookup, envLogLevel); ok {
		level, err := log.ParseLevel(raw)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%s: %w", envLogLevel, err))
		} else {
			log.SetLevel(level)
		}
	}

	return warnings
}

// readConfigFromEnv формирует конфигурацию приложения. Некорректные значения
// не прерывают запуск: остаётся значение по умолчанию, а ошибка попадает в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []error) {
	cfg := app.DefaultConfig()
	var warnings []error

	if v, ok := nonEmpty(lookup, envPort); ok {
		port, err := parseInt(v, func(p int) bool { return p > 0 && p <= 65535 }, "must be in 1..65535")
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%s: %w", envPort, err))
		} else {
			cfg.HTTPAddr = net.JoinHostPort("", strconv.Itoa(port))
		}
	}
	if v, ok := nonEmpty(lookup, envHTTPAddr); ok {
		cfg.HTTPAddr = v
	}
	if v, ok := nonEmpty(lookup, envMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := nonEmpty(lookup, envGRPCHealthAddr); ok {
		cfg.GRPCHealthAddr = v
	}
	if v, ok := nonEmpty(lookup, envStorageDriver); ok {
		cfg.StorageDriver = strings.ToLower(v)
	}
	if v, ok := nonEmpty(lookup, envMongoURI); ok {
		cfg.Mongo.URI = v
	}
	if v, ok := nonEmpty(lookup, envMongoDatabase); ok {
		cfg.Mongo.Database = v
	}
	if v, ok := nonEmpty(lookup, envMongoCollection); ok {
		cfg.Mongo.Collection = v
	}

	positive := func(d time.Duration) bool { return d > 0 }
	durations := []struct {
		key    string
		target *time.Duration
	}{
		{envMongoConnTimeout, &cfg.Mongo.ConnectTimeout},
		{envRequestTimeout, &cfg.Mongo.OperationTimeout},
		{envHealthPollInterval, &cfg.HealthPollInterval},
	}
	for _, d := range durations {
		v, ok := nonEmpty(lookup, d.key)
		if !ok {
			continue
		}
		value, err := parseDuration(v, positive, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%s: %w", d.key, err))
			continue
		}
		*d.target = value
	}

	if v, ok := nonEmpty(lookup, envKafkaBrokers); ok {
		cfg.KafkaBrokers = v
	}
	if v, ok := nonEmpty(lookup, envKafkaTopic); ok {
		cfg.KafkaTopic = v
	}

	return cfg, warnings
}

func nonEmpty(lookup envLookup, key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if valid != nil && !valid(value) {
		return 0, fmt.Errorf("invalid value %d: %s", value, rule)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if valid != nil && !valid(value) {
		return 0, fmt.Errorf("invalid value %s: %s", value, rule)
	}
	return value, nil
}

// loadEnvFile подгружает переменные из файла; уже заданные в окружении не перезаписываются.
// Отсутствие файла по умолчанию не считается ошибкой.
func loadEnvFile(lookup envLookup) error {
	path, explicit := nonEmpty(lookup, envEnvFile)
	if !explicit {
		path = defaultEnvFile
	}
	err := godotenv.Load(path)
	if err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func main() {
	envErr := loadEnvFile(os.LookupEnv)
	logWarnings := setupLogger(os.LookupEnv)
	if envErr != nil {
		logWarnings = append(logWarnings, fmt.Errorf("%s: %w", envEnvFile, envErr))
	}
	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, w := range append(logWarnings, warnings...) {
		log.WithError(w).Warn("некорректная переменная окружения, используется значение по умолчанию")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":        cfg.HTTPAddr,
		"metrics_addr":     cfg.MetricsAddr,
		"grpc_health_addr": cfg.GRPCHealthAddr,
		"storage_driver":   cfg.StorageDriver,
		"version":          version.GetVersion(),
	}).Info("запускаем restaurant-service")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("restaurant-service остановлен")
}
