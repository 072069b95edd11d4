package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/blockverse-mods/internal/api"
	"github.com/annel0/blockverse-mods/internal/app"
	"github.com/annel0/blockverse-mods/internal/command"
	"github.com/annel0/blockverse-mods/internal/config"
	"github.com/annel0/blockverse-mods/internal/eventbus"
	"github.com/annel0/blockverse-mods/internal/gameevent"
	"github.com/annel0/blockverse-mods/internal/host"
	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/mods/commandexample"
	"github.com/annel0/blockverse-mods/internal/mods/eventexample"
	"github.com/annel0/blockverse-mods/internal/mods/worldexample"
	"github.com/annel0/blockverse-mods/internal/observability"
	"github.com/annel0/blockverse-mods/internal/plugin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "путь к YAML-конфигурации (по умолчанию $MODHOST_CONFIG)")
	noConsole := flag.Bool("no-console", false, "не запускать консоль, ждать сигнала")
	flag.Parse()

	if err := logging.InitDefaultLogger("modhost"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	if err := run(*configPath, !*noConsole); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
}

func run(configPath string, console bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Default().SetLevels(logging.ParseLevel(cfg.Log.Level), logging.TRACE)
	logging.Info("🎮 Запуск хоста модов (генератор %s, seed %d)", cfg.World.Generator, cfg.World.Seed)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("телеметрия: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logging.Warn("Остановка телеметрии: %v", err)
		}
	}()

	// === МИР ===
	w, err := app.Open(ctx, cfg, app.Options{})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := w.Close(sctx); err != nil {
			logging.Error("❌ Закрытие мира: %v", err)
		}
	}()
	eventbus.Init(w.Bus)

	positions, err := app.OpenPositions(ctx, cfg.Positions)
	if err != nil {
		return err
	}
	defer positions.Close()

	busMetrics := eventbus.NewMetricsExporter(w.Bus, nil)
	defer busMetrics.Stop()

	if _, err := eventbus.StartLoggingListener(ctx, w.Bus, logging.GetComponentLogger("events")); err != nil {
		logging.Warn("Журнал событий не подключён: %v", err)
	}

	// === КОМАНДЫ, СОБЫТИЯ, МОДЫ ===
	registry := command.NewRegistry(
		command.WithLogger(logging.GetComponentLogger("commands")),
		command.WithMetrics(command.NewMetrics(nil)),
	)
	events := gameevent.NewBus()

	mods := plugin.NewManager(plugin.Deps{
		Commands:   registry,
		Events:     events,
		Config:     cfg,
		WorldEdit:  w.Edits,
		HostLogger: logging.GetHostLogger(),
	})
	if err := mods.Load(ctx, commandexample.New(), eventexample.New(), worldexample.New()); err != nil {
		return err
	}
	defer func() {
		if err := mods.Unload(); err != nil {
			logging.Error("❌ Выгрузка модов: %v", err)
		}
	}()

	h := host.New(host.Deps{
		Commands:  registry,
		Events:    events,
		WorldEdit: w.Edits,
		Positions: positions,
		Color:     true,
	})

	// === REST API ===
	if cfg.Server.RESTEnabled {
		rest := api.NewRestServer(api.Config{
			Port:      cfg.Server.GetRESTPort(),
			WorldEdit: w.Edits,
			Audit:     w.Audit,
		})
		go func() {
			if err := rest.Start(); err != nil {
				logging.Error("❌ %v", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := rest.Shutdown(sctx); err != nil {
				logging.Error("❌ Остановка REST API: %v", err)
			}
		}()
		busMetrics.Start()
		logging.Info("   🌐 REST API: http://localhost:%d", cfg.Server.GetRESTPort())
		logging.Info("   ❤️  Health check: http://localhost:%d/health", cfg.Server.GetRESTPort())
	} else {
		busMetrics.StartHTTP(fmt.Sprintf(":%d", cfg.Server.GetMetricsPort()))
	}

	go h.Autosave(ctx, cfg.World.AutosaveInterval())
	logging.Info("✅ Хост запущен, моды: %v", mods.Loaded())

	if console {
		if err := h.RunConsole(ctx, os.Stdin); err != nil {
			logging.Warn("Консоль: %v", err)
		}
		stop()
	} else {
		<-ctx.Done()
	}

	// === GRACEFUL SHUTDOWN ===
	logging.Info("📡 Завершение работы...")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := h.Shutdown(sctx); err != nil {
		logging.Error("❌ Сохранение при остановке: %v", err)
	}
	logging.Info("👋 Хост остановлен")
	return nil
}
