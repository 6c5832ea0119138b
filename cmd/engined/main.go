package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/corefin/matchbook/config"
	"github.com/corefin/matchbook/pkg/api"
	"github.com/corefin/matchbook/pkg/engine"
	"github.com/corefin/matchbook/pkg/engine/risk"
	"github.com/corefin/matchbook/pkg/feed"
	redis_wrapper "github.com/corefin/matchbook/pkg/infra/redis"
	"github.com/corefin/matchbook/pkg/logging"
	"github.com/corefin/matchbook/pkg/quotecache"
	"github.com/corefin/matchbook/pkg/stream"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	go func() {
		http.ListenAndServe("localhost:6060", nil)
	}()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	if cfg.API == nil {
		cfg.API = &config.APIConfig{Addr: ":8080"}
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel))
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	eng := engine.New(cfg.Engine,
		engine.WithLogger(logger),
		engine.WithRules(buildRules(ctx, cfg.Risk, logger)...),
	)

	var quotes *quotecache.Cache
	if cfg.Redis != nil && cfg.Redis.ConnectionURL != "" {
		rdb, err := redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			logger.Fatal(ctx, "init redis", zap.Error(err))
		}
		ttl := time.Duration(cfg.Redis.QuoteTTLSeconds) * time.Second
		quotes = quotecache.New(rdb, ttl)
		eng.RegisterQuoteSink(quotes)
	}

	if cfg.Kafka != nil && len(cfg.Kafka.Brokers) > 0 {
		producer := stream.NewProducer(stream.ProducerConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.TradeTopic,
		})
		defer producer.Close()
		eng.RegisterTradeSink(stream.NewTradePublisher(producer, logger))

		if cfg.Kafka.OrderEventTopic != "" {
			eventProducer := stream.NewProducer(stream.ProducerConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.OrderEventTopic,
			})
			defer eventProducer.Close()
			eng.RegisterEventSink(stream.NewOrderEventPublisher(eventProducer, logger))
		}
	}

	hub := feed.NewHub(logger)
	defer hub.Close()
	eng.RegisterTradeSink(hub)

	eng.Start(ctx)
	defer eng.Stop()

	router := gin.Default()
	api.RegisterRoutes(router, eng, quotes, hub)

	srv := &http.Server{
		Addr:    cfg.API.Addr,
		Handler: router,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "api server", zap.Error(err))
		}
	}()

	fmt.Printf("%s started on %s. Press Ctrl+C to exit.\n", cfg.ServiceName, cfg.API.Addr)

	<-sigs
	fmt.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	cancel()

	fmt.Println("Exited cleanly.")
}

func buildRules(ctx context.Context, cfg *config.RiskConfig, logger *logging.Logger) []risk.Rule {
	if cfg == nil {
		return nil
	}

	var rules []risk.Rule
	if cfg.MaxQuantity > 0 {
		rules = append(rules, risk.NewMaxQuantityRule(decimal.NewFromInt(cfg.MaxQuantity)))
	}
	if len(cfg.PriceBands) > 0 {
		bands := make(map[string]risk.PriceBand, len(cfg.PriceBands))
		for symbol, band := range cfg.PriceBands {
			bands[symbol] = risk.PriceBand{
				Floor: decimal.NewFromFloat(band.Floor),
				Ceil:  decimal.NewFromFloat(band.Ceil),
			}
		}
		rules = append(rules, risk.NewPriceBandRule(bands))
	}
	if cfg.TickSizeFile != "" {
		rule, err := risk.NewTickSizeRuleFromFile(cfg.TickSizeFile)
		if err != nil {
			logger.Warn(ctx, "tick size rule disabled", zap.Error(err))
		} else {
			rules = append(rules, rule)
		}
	}

	return rules
}
