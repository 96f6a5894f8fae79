package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/blockworld/internal/api"
	"github.com/annel0/blockworld/internal/changes"
	"github.com/annel0/blockworld/internal/config"
	"github.com/annel0/blockworld/internal/engine"
	"github.com/annel0/blockworld/internal/loader"
	"github.com/annel0/blockworld/internal/logging"
	"github.com/annel0/blockworld/internal/observability"
	"github.com/annel0/blockworld/internal/pos"
	"github.com/annel0/blockworld/internal/render"
	"github.com/annel0/blockworld/internal/world"
	"github.com/annel0/blockworld/internal/world/gen"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (или WORLD_CONFIG)")
	walk := flag.Float64("walk", 0, "скорость наблюдателя по оси X в блоках за тик, 0 - без наблюдателя")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	logging.SetOutputDir(cfg.Logging.Dir)
	if err := logging.InitDefaultLogger("worldsim"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer func() { _ = logging.GetLoggerManager().CloseAll() }()

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	logging.SetDefaultLevel(level)

	if err := run(cfg, *walk); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error("❌ %v", err)
		os.Exit(1)
	}
	logging.Info("✅ Симуляция остановлена")
}

func newGenerator(cfg *config.Config) (world.Generator, error) {
	soils, err := gen.LoadSoils(cfg.Generator.SoilsPath)
	if err != nil {
		return nil, err
	}
	logging.Info("🌱 Загружено %d почв из %s", len(soils.Rows()), cfg.Generator.SoilsPath)

	opts := gen.Options{
		Seed:         cfg.World.Seed,
		NoiseScale:   cfg.Generator.NoiseScale,
		ClimateScale: cfg.Generator.ClimateScale,
		SurfaceDepth: cfg.Generator.SurfaceDepth,
		SeaLevel:     cfg.Generator.SeaLevel,
		FillStone:    cfg.Generator.FillStone,
		TreeChance:   cfg.Generator.TreeChance,
	}
	switch cfg.Generator.Kind {
	case "", "terrain":
		return gen.NewTerrain(opts, soils), nil
	case "wave":
		return gen.NewWave(opts, soils), nil
	}
	return nil, fmt.Errorf("неизвестный генератор %q", cfg.Generator.Kind)
}

// walker двигает одного наблюдателя вдоль оси X
func walker(speed float64) func(tick uint64) []loader.Viewer {
	id := uuid.New()
	start := pos.BlockPos{Y: world.MaxGenHeight}
	return func(tick uint64) []loader.Viewer {
		p := start.AddVec(pos.Vec3{X: speed * float64(tick)})
		return []loader.Viewer{{ID: id, Pos: p}}
	}
}

func run(cfg *config.Config, walk float64) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry := observability.ShutdownFunc(observability.Noop)
	if cfg.Telemetry.Enabled {
		sd, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			logging.Warn("⚠️ Телеметрия недоступна: %v", err)
		} else {
			shutdownTelemetry = sd
		}
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logging.Warn("Ошибка остановки телеметрии: %v", err)
		}
	}()

	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	orch := loader.New(loader.Options{
		Radius:       cfg.Loader.Radius,
		LoadsPerStep: cfg.Loader.LoadsPerStep,
	})
	queue := changes.New(orch, changes.Options{
		PerStep:     cfg.Changes.PerStep,
		BackoffBase: cfg.Changes.BackoffBase,
		BackoffMax:  cfg.Changes.BackoffMax,
	})
	store := world.NewStore(generator, queue, world.StoreOptions{WorldRadius: cfg.World.Radius})
	view := render.NewRegistry(store, orch)

	engOpts := engine.Options{
		Workers:      cfg.Loader.Workers,
		SweepEvery:   cfg.Engine.SweepEvery,
		TickInterval: cfg.Engine.TickInterval(),
	}
	if walk != 0 {
		engOpts.Input = walker(walk)
		logging.Info("🚶 Наблюдатель идёт вдоль X со скоростью %.2f блока за тик", walk)
	}
	eng := engine.New(store, queue, orch, view, engOpts)

	logging.Info("🌍 Мир: seed=%d, генератор=%s, радиус загрузки=%d",
		cfg.World.Seed, cfg.Generator.Kind, cfg.Loader.Radius)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(ctx) })

	if cfg.API.Enabled {
		srv := api.NewServer(api.Config{
			Port:        fmt.Sprintf(":%d", cfg.API.GetPort()),
			ServiceName: cfg.Telemetry.ServiceName,
			Engine:      eng,
		})
		g.Go(srv.Start)
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
