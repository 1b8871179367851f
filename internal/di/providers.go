package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"EquityPulse/internal/domain/repository"
	"EquityPulse/internal/handler/api"
	internalrepo "EquityPulse/internal/repository"
	"EquityPulse/internal/service/marketdata"
	"EquityPulse/internal/usecase"
	pkgcache "EquityPulse/pkg/cache"
	pkgch "EquityPulse/pkg/clickhouse"
	"EquityPulse/pkg/config"
	pkgkafka "EquityPulse/pkg/kafka"
	applogger "EquityPulse/pkg/logger"
	"EquityPulse/pkg/metrics"
	"EquityPulse/pkg/server"
)

// ProvideLogger creates the application logger. Console output in
// development, JSON elsewhere.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	level := "info"
	if cfg.Environment == "development" {
		format = "console"
		level = "debug"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and applies the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.Schema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvidePriceStore creates the ClickHouse-backed price store.
func ProvidePriceStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.PriceStore {
	store := internalrepo.NewCHPriceStore(chClient, cfg.ClickHouse.Database)
	store.SetLogger(l)
	return store
}

// ProvideCache selects the cache backend: layered memory+Redis when Redis is
// enabled, in-process memory otherwise.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Analytics.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}

	host, port := splitAddr(cfg.Analytics.Redis.Addr)
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Analytics.Redis.Password),
		pkgcache.WithRedisDB(cfg.Analytics.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

func splitAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideMarketDataClient creates the upstream daily-bar API client.
func ProvideMarketDataClient(cfg *config.Config, l *applogger.Logger) *marketdata.Client {
	opts := []marketdata.Option{marketdata.WithLogger(l)}
	if cfg.Ingest.Retries > 0 {
		opts = append(opts, marketdata.WithRetries(cfg.Ingest.Retries, cfg.Ingest.RetryBackoff))
	}
	if cfg.Ingest.Timeout > 0 {
		opts = append(opts, marketdata.WithTimeout(cfg.Ingest.Timeout))
	}
	return marketdata.New(cfg.Ingest.BaseURL, cfg.Ingest.APIKey, opts...)
}

// ProvideBarPublisher creates a Kafka bar publisher when the kafka backend is
// active, nil otherwise.
func ProvideBarPublisher(cfg *config.Config) (repository.BarPublisher, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return internalrepo.NewKafkaBarPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideKafkaConsumer creates a Kafka consumer when the kafka backend is
// active, nil otherwise.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}

	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaBarsHandler registers the handler that persists bar events.
func ProvideKafkaBarsHandler(store repository.PriceStore, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaBarsHandler {
	if cfg.Backend.Type != "kafka" {
		return nil
	}
	return usecase.NewKafkaBarsHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideIngestor creates the scheduled ingestion use case.
func ProvideIngestor(
	client *marketdata.Client,
	store repository.PriceStore,
	publisher repository.BarPublisher,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.Ingestor {
	opts := []usecase.IngestorOption{
		usecase.WithMetrics(m),
		usecase.WithSchedule(cfg.Ingest.Schedule, cfg.Ingest.RunOnStart),
	}
	if publisher != nil {
		opts = append(opts, usecase.WithPublisher(publisher))
	}
	return usecase.NewIngestor(client, store, l, cfg.Ingest.Symbols, cfg.Ingest.HistoryDays, opts...)
}

// ProvideMarketAnalytics creates the read-side analytics use case.
func ProvideMarketAnalytics(store repository.PriceStore, cache pkgcache.Service, cfg *config.Config, l *applogger.Logger) *usecase.MarketAnalytics {
	ttls := usecase.CacheTTLs{
		Prices:    cfg.Analytics.CacheTTL.Prices,
		Summary:   cfg.Analytics.CacheTTL.Summary,
		Compare:   cfg.Analytics.CacheTTL.Compare,
		Forecast:  cfg.Analytics.CacheTTL.Forecast,
		Sentiment: cfg.Analytics.CacheTTL.Sentiment,
		Movers:    cfg.Analytics.CacheTTL.Movers,
	}
	return usecase.NewMarketAnalytics(store, cache, ttls, l)
}

// ProvideMarketHandler creates the Echo HTTP handler.
func ProvideMarketHandler(l *applogger.Logger, market *usecase.MarketAnalytics, chClient *pkgch.Client) *api.MarketEchoHandler {
	return api.NewMarketEchoHandler(l, market, chClient.Health)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	ingestor *usecase.Ingestor,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaBarsHandler,
	chClient *pkgch.Client,
	publisher repository.BarPublisher,
	handler *api.MarketEchoHandler,
	l *applogger.Logger,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}

	// A nil *KafkaBarsHandler must not reach the app as a non-nil interface.
	var mh pkgkafka.MessageHandler
	if kh != nil {
		mh = kh
	}

	app := server.New(cfg, ingestor, consumer, mh, chClient, l)
	app.SetHTTPHandler(handler)
	if publisher != nil {
		app.SetPublisher(publisher)
	}
	return app
}
