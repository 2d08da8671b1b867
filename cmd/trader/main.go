package main

import (
	"context"
	"flag"
	"log"
	"time"

	"trailstop/internal/bus"
	"trailstop/internal/cache"
	"trailstop/internal/event"
	"trailstop/internal/mdg"
	"trailstop/internal/model"
	"trailstop/internal/obs"
	"trailstop/internal/ops"
	"trailstop/internal/sim"
	"trailstop/internal/state"
	"trailstop/internal/store"
	"trailstop/internal/strategy"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config (empty=built-in defaults)")
	barCount := flag.Int("bars", 0, "Number of bars to run (0=until interrupted)")
	barInterval := flag.Duration("bar-interval", time.Second, "Delay between synthetic bars")
	storeBackend := flag.String("store", "", "Store backend override (bypass|postgres)")
	recoverEnabled := flag.Bool("recover", false, "Recover controller state from the store")
	profileAddr := flag.String("profile-addr", "", "Pyroscope server address (empty=disabled)")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *storeBackend != "" {
		loaded.Backend = *storeBackend
	}

	if *profileAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "trailstop.trader",
			ServerAddress:   *profileAddr,
			Logger:          emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, closeStore, err := openStore(ctx, loaded)
	if err != nil {
		log.Fatalf("store open failed: %v", err)
	}
	defer closeStore()

	if err := run(ctx, loaded, st, *barCount, *barInterval, *recoverEnabled); err != nil {
		log.Fatalf("run failed: %v", err)
	}
}

func run(ctx context.Context, loaded ops.Loaded, st store.Store, barCount int, barInterval time.Duration, recoverEnabled bool) error {
	ca := cache.New()
	ca.AddInstrument(loaded.Instrument)
	positions := state.NewPositions()
	metrics := obs.NewMetrics()
	queue := bus.NewQueue(1024)
	gateway := sim.NewGateway(queue, loaded.Instrument)
	ctrl := strategy.NewController(loaded.Strategy, gateway, ca, positions, st, metrics)

	if err := st.AddAccount(loaded.TraderID, model.Account{
		ID:            "SIM-001",
		Currency:      "USD",
		Balance:       1_000_000,
		UpdatedTsNano: time.Now().UTC().UnixNano(),
	}); err != nil {
		logs.Errorf("seed account: %+v", err)
	}

	// start and recovery run before the consumer so live events see a
	// fully initialized controller
	ctrl.Handle(event.Start{})
	if recoverEnabled {
		if err := ctrl.Recover(); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		queue.Run(ctx, ctrl.Handle)
	}()

	gen, err := mdg.NewGenerator(loaded.Feed)
	if err != nil {
		return err
	}
	if barInterval <= 0 {
		barInterval = time.Millisecond
	}
	ticker := time.NewTicker(barInterval)
	defer ticker.Stop()

	produced := 0
loop:
	for {
		select {
		case <-sys.Shutdown():
			logs.Info("shutdown signal received")
			break loop
		case <-ctx.Done():
			break loop
		case now := <-ticker.C:
			bar := gen.Next(now.UTC())
			if err := queue.TryPublish(event.BarReceived{Bar: bar}); err != nil {
				logs.Errorf("drop bar: %+v", err)
			}
			gateway.OnBar(bar)
			produced++
			if barCount > 0 && produced >= barCount {
				break loop
			}
		}
	}

	if err := queue.TryPublish(event.Stop{}); err != nil {
		logs.Errorf("publish stop: %+v", err)
	}
	queue.Close()
	<-done

	snapshot := metrics.Snapshot()
	logs.Infof("run complete: bars=%d submits=%d cancels=%d fills=%d stale_acks=%d flattens=%d",
		snapshot.Bars, snapshot.Submits, snapshot.Cancels, snapshot.Fills,
		snapshot.StaleAcks, snapshot.Flattens)
	return nil
}

func openStore(ctx context.Context, loaded ops.Loaded) (store.Store, func(), error) {
	switch loaded.Backend {
	case ops.StorePostgres:
		pg, err := store.NewPostgres(loaded.Postgres)
		if err != nil {
			return nil, nil, err
		}
		pg.Start(ctx)
		return pg, func() {
			if err := pg.Close(); err != nil {
				logs.Errorf("close store: %+v", err)
			}
		}, nil
	default:
		return store.NewBypass(), func() {}, nil
	}
}

type emptyLogger struct{}

func (emptyLogger) Infof(_ string, _ ...interface{})  {}
func (emptyLogger) Debugf(_ string, _ ...interface{}) {}
func (emptyLogger) Errorf(_ string, _ ...interface{}) {}
