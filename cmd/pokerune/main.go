package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pokerune/engine/internal/assets"
	"github.com/pokerune/engine/internal/config"
	"github.com/pokerune/engine/internal/core/ecs"
	"github.com/pokerune/engine/internal/core/event"
	coresys "github.com/pokerune/engine/internal/core/system"
	"github.com/pokerune/engine/internal/data"
	"github.com/pokerune/engine/internal/loader"
	"github.com/pokerune/engine/internal/persist"
	"github.com/pokerune/engine/internal/scripting"
	"github.com/pokerune/engine/internal/system"
	"github.com/pokerune/engine/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            PokeRune Engine v0.1.0         \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1minstance:\033[0m %s\n\n", name)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main engine logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := os.Getenv("POKERUNE_CONFIG")
	var cfg *config.Config
	var err error
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.Default()
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Engine.Name)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 3. Object templates: Postgres when a DSN is configured, YAML otherwise.
	printSection("data")

	var templates *data.TemplateTable
	if cfg.Database.DSN != "" {
		db, derr := persist.Connect(ctx, cfg.Database, log)
		if derr != nil {
			return fmt.Errorf("database: %w", derr)
		}
		defer db.Close()
		printOK("postgres connected")

		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")

		templates, err = persist.NewTemplateRepo(db).LoadTable(ctx)
		if err != nil {
			return fmt.Errorf("load templates: %w", err)
		}
	} else {
		templates, err = data.LoadTemplateTable(filepath.Join(cfg.Assets.Root, cfg.Assets.TemplateFile))
		if err != nil {
			return fmt.Errorf("load templates: %w", err)
		}
	}
	printStat("object templates", templates.Count())

	manifests, err := data.LoadManifests(filepath.Join(cfg.Assets.Root, cfg.Assets.ManifestFile))
	if err != nil {
		return fmt.Errorf("load sprite manifests: %w", err)
	}
	printStat("sprite manifests", manifests.Count())

	// 4. Lua scripting engine
	luaEngine, err := scripting.NewEngine(filepath.Join(cfg.Assets.Root, cfg.Assets.ScriptsDir), log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	printOK("lua scripts loaded")

	// 5. World, spatial index, event bus, loader
	ecsWorld := ecs.NewWorld(cfg.Engine.InitialCapacity)
	bus := event.NewBus()
	idx := world.NewIndex()
	maps := world.NewMaps(ecsWorld, idx, bus, log)

	textures := assets.NewCache(
		assets.NewFileSource(cfg.Assets.Root),
		cfg.Assets.TextureCacheSize,
		log,
	)
	mapLoader := loader.New(ecsWorld, maps, textures, templates, manifests, luaEngine, log)

	event.Subscribe(bus, func(ev event.MapLoaded) {
		luaEngine.MapLoadedHook(int(ev.MapID), ev.Name)
	})

	// 6. Load every map in the maps directory
	mapsDir := filepath.Join(cfg.Assets.Root, cfg.Assets.MapsDir)
	loaded, err := loadAllMaps(mapLoader, mapsDir, log)
	if err != nil {
		return err
	}
	printStat("maps", loaded)
	printStat("entities", ecsWorld.Count())
	fmt.Println()

	// 7. Register systems
	runner := coresys.NewRunner()
	runner.Register(system.NewMovementSystem(ecsWorld, maps, bus, log))
	runner.Register(system.NewSpriteAnimationSystem(ecsWorld, manifests, bus, log))
	runner.Register(system.NewTileAnimationSystem(ecsWorld, maps))
	runner.Register(system.NewLifecycleSystem(maps))
	runner.Register(system.NewCleanupSystem(ecsWorld))

	// 8. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Engine.TickRate)
	defer ticker.Stop()

	printReady(fmt.Sprintf("running at %v per tick", cfg.Engine.TickRate))
	log.Info("engine started",
		zap.Duration("tick_rate", cfg.Engine.TickRate),
		zap.Int("entities", ecsWorld.Count()))

	for {
		select {
		case <-ticker.C:
			bus.BeginFrame()
			runner.Tick(cfg.Engine.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			return nil
		}
	}
}

// loadAllMaps loads every YAML map document under dir. A missing directory
// is not an error; an invalid document is.
func loadAllMaps(l *loader.Loader, dir string, log *zap.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("maps directory missing", zap.String("dir", dir))
			return 0, nil
		}
		return 0, fmt.Errorf("read maps dir: %w", err)
	}
	loaded := 0
	for _, e := range entries {
		if e.IsDir() || (filepath.Ext(e.Name()) != ".yaml" && filepath.Ext(e.Name()) != ".yml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		doc, err := data.LoadMapDocument(path)
		if err != nil {
			return loaded, fmt.Errorf("map %s: %w", e.Name(), err)
		}
		if _, err := l.LoadMap(doc); err != nil {
			return loaded, fmt.Errorf("map %s: %w", e.Name(), err)
		}
		loaded++
	}
	return loaded, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
