package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/annel0/blockverse-mods/internal/app"
	"github.com/annel0/blockverse-mods/internal/config"
	"github.com/annel0/blockverse-mods/internal/logging"
	"github.com/annel0/blockverse-mods/internal/scripting"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config path (default $MODHOST_CONFIG)")
		scriptPath = flag.String("script", "", "Lua script to run; bare names are looked up in scripts.dir")
		actor      = flag.String("actor", "worldscript", "Actor name recorded in the audit log")
		showAudit  = flag.Int("audit", 0, "Print the last N audit records after the script")
	)
	flag.Parse()

	if *scriptPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, *scriptPath, *actor, *showAudit); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run(configPath, scriptPath, actor string, showAudit int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level := logging.ParseLevel(cfg.Log.Level)
	newLogger := func(component string) *logging.Logger {
		return logging.NewWriterLogger(component, os.Stderr, level)
	}

	path, err := resolveScript(scriptPath, cfg.Scripts.Dir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := app.Open(ctx, cfg, app.Options{Logger: newLogger})
	if err != nil {
		return err
	}

	start := time.Now()
	engine := scripting.NewEngine(ctx, w.Edits, actor, newLogger("lua"))
	runErr := engine.RunFile(path)
	engine.Close()

	if runErr == nil {
		fmt.Printf("✅ %s finished in %s, dirty chunks: %d\n", path, time.Since(start).Round(time.Millisecond), len(w.Manager.DirtyChunks()))
		if showAudit > 0 {
			printAudit(ctx, w, showAudit)
		}
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return errors.Join(runErr, w.Close(closeCtx))
}

// resolveScript ищет скрипт как есть, затем в каталоге скриптов
func resolveScript(path, dir string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if dir != "" && !filepath.IsAbs(path) {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("script %s not found", path)
}

func printAudit(ctx context.Context, w *app.World, limit int) {
	records, err := w.Audit.Recent(ctx, limit)
	if err != nil {
		fmt.Printf("⚠️  audit: %v\n", err)
		return
	}
	for _, r := range records {
		status := "ok"
		if r.Error != "" {
			status = r.Error
		}
		fmt.Printf("%s %-12s %-13s %s..%s %s changed=%d %s\n",
			r.Time.Format(time.RFC3339), r.Actor, r.Op, r.Min, r.Max, r.Block, r.Changed, status)
	}
}
