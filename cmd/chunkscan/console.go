package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/chunk-inspector/internal/analysis"
	"github.com/annel0/chunk-inspector/internal/api"
	"github.com/annel0/chunk-inspector/internal/auth"
	"github.com/annel0/chunk-inspector/internal/command"
	"github.com/annel0/chunk-inspector/internal/config"
	"github.com/annel0/chunk-inspector/internal/eventbus"
	"github.com/annel0/chunk-inspector/internal/inspector"
	"github.com/annel0/chunk-inspector/internal/logging"
	"github.com/annel0/chunk-inspector/internal/marker"
	"github.com/annel0/chunk-inspector/internal/observability"
	"github.com/annel0/chunk-inspector/internal/players"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// locator - локатор игроков, которому консоль может задавать позиции
type locator interface {
	players.Locator
	command.Teleporter
}

func openLocator(ctx context.Context, cfg config.RedisConfig) (locator, func(), error) {
	if !cfg.Enabled {
		return players.NewMemoryLocator(), func() {}, nil
	}
	rl, err := players.NewRedisLocator(ctx, cfg.RedisConfig)
	if err != nil {
		return nil, nil, err
	}
	return rl, func() {
		if err := rl.Close(); err != nil {
			logging.Warn("⚠️ Закрытие Redis: %v", err)
		}
	}, nil
}

func openEventBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		return eventbus.NewMemoryBus(1024), nil
	}
	return eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
}

func runConsole(args []string) error {
	fs := flag.NewFlagSet("console", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML конфигурация (или CHUNKS_CONFIG)")
	savePath := fs.String("save", "", "Файл сохранения (перекрывает save.path)")
	fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *savePath != "" {
		cfg.Save.Path = *savePath
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logging.SetDefaultLevel(level)
	logging.GetLoggerManager().SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.InitTelemetry(ctx, "chunk-inspector", version, cfg.Telemetry.Enabled)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer shutdownTelemetry(context.Background())

	// === Метрики ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	engine := inspector.New(analysis.NewMetrics(reg))

	// === Шина событий ===
	bus, err := openEventBus(cfg.EventBus)
	if err != nil {
		return fmt.Errorf("eventbus: %w", err)
	}
	defer bus.Close()
	eventbus.Init(bus)
	defer eventbus.Init(nil)
	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		return err
	}
	exporter := eventbus.NewMetricsExporter(bus, reg)
	exporter.Start()
	defer exporter.Stop()

	// === Внешние зависимости хоста ===
	source, closeSource, err := openSource(cfg.Save)
	if err != nil {
		return err
	}
	defer closeSource()

	loc, closeLocator, err := openLocator(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer closeLocator()

	var issuer *auth.TokenIssuer
	if secret := cfg.Server.GetJWTSecret(); secret != "" {
		if issuer, err = auth.NewTokenIssuer(secret, cfg.Authorized); err != nil {
			return err
		}
	}

	if len(cfg.Authorized) == 0 {
		logging.Warn("⚠️ Список authorized пуст: все команды /chunks будут отклонены")
	}

	dispatcher := command.NewDispatcher(engine, command.Deps{
		Saves:   source,
		Players: loc,
		Spawner: marker.NewMemorySpawner(),
		Replier: command.NewWriterReplier(os.Stdout),
	}, cfg.Authorized)

	gin.SetMode(gin.ReleaseMode)
	server := api.NewStatusServer(api.Config{
		Port:     cfg.Server.GetStatusPort(),
		Engine:   engine,
		Issuer:   issuer,
		Registry: reg,
		Version:  version,
	})

	// Консоль блокируется на stdin и не реагирует на отмену, поэтому живёт вне errgroup:
	// EOF завершает работу так же, как сигнал.
	go func() {
		if err := command.RunConsole(ctx, os.Stdin, dispatcher, loc); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error("❌ Консоль: %v", err)
		}
		stop()
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shCtx)
	})

	logging.Info("✅ Консоль готова: <игрок> <in|analyze|count|mark|markall|clear>, <игрок> tp x y [z]")
	err = g.Wait()
	logging.Info("👋 Инспектор остановлен")
	return err
}
