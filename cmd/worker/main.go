package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/corefin/matchbook/config"
	postgres_wrapper "github.com/corefin/matchbook/pkg/infra/postgres"
	"github.com/corefin/matchbook/pkg/logging"
	"github.com/corefin/matchbook/pkg/repo"
	"github.com/corefin/matchbook/pkg/stream"
	"github.com/corefin/matchbook/pkg/worker"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel))
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	db := postgres_wrapper.InitPostgresWithBackoff(cfg.JournalDB)
	journal := repo.NewRepo(db)

	tradeCG := stream.NewConsumerGroup(stream.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.TradeTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer tradeCG.Close()

	eventCG := stream.NewConsumerGroup(stream.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.OrderEventTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer eventCG.Close()

	w := worker.NewWorker(journal, logger)

	errc := make(chan error, 2)
	go func() { errc <- w.RunTrades(ctx, tradeCG) }()
	go func() { errc <- w.RunOrderEvents(ctx, eventCG) }()

	err = <-errc
	fatal := err != nil && ctx.Err() == nil
	cancel()
	<-errc

	if fatal {
		logger.Fatal(ctx, "worker stopped", zap.Error(err))
	}
}
