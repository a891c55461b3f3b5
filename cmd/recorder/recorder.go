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

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/pointcloud.recorder/internal/config"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/export"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/monitor"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/render"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/session"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/source"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/storage/sqlite"
	"github.com/banshee-data/pointcloud.recorder/internal/fsutil"
	"github.com/banshee-data/pointcloud.recorder/internal/monitoring"
	"github.com/banshee-data/pointcloud.recorder/internal/timeutil"
	"github.com/banshee-data/pointcloud.recorder/internal/version"
)

var (
	configPath  = flag.String("config", "", "Path to a recorder JSON config (defaults are used when empty)")
	listen      = flag.String("listen", ":8082", "HTTP listen address")
	grpcListen  = flag.String("grpc-listen", "localhost:50061", "gRPC listen address for renderer streams")
	dbFile      = flag.String("db", "pointcloud.db", "Path to the export catalog SQLite database (empty disables it)")
	exportDir   = flag.String("export-dir", "", "Directory for .xyz exports (overrides config)")
	replayPath  = flag.String("replay", "", "Replay frames from a recording instead of the synthetic room")
	recordPath  = flag.String("record", "", "Record incoming frames to this file")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("recorder: %v", err)
	}
}

// loadConfig reads path, or returns the built-in defaults when path is empty.
func loadConfig(path string) (*config.RecorderConfig, error) {
	if path == "" {
		return config.EmptyRecorderConfig(), nil
	}
	return config.LoadRecorderConfig(path)
}

// newSource picks the frame source: a replay when replay is set, otherwise
// the synthetic room scanned with the calibrated geometry.
func newSource(cfg *config.RecorderConfig, fs fsutil.FileSystem, replay string) (source.Source, error) {
	interval := time.Duration(float64(time.Second) / cfg.GetSyntheticFrameRate())
	if replay != "" {
		r, err := source.LoadReplay(fs, replay)
		if err != nil {
			return nil, err
		}
		r.SetPacing(timeutil.RealClock{}, interval)
		monitoring.Logf("[Recorder] Replaying %s recorded %s", replay, r.Created().Format(time.RFC3339))
		return r, nil
	}

	cal := session.ConfigFromRecorder(cfg).Calibration
	syn := source.DefaultSyntheticConfig(cal.Width, cal.Height, cal.FOV)
	syn.Near = cfg.GetNear()
	syn.FrameRate = cfg.GetSyntheticFrameRate()
	return source.NewSynthetic(syn)
}

func run(ctx context.Context) error {
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if err := monitoring.SetLevel(cfg.GetLogLevel()); err != nil {
		return err
	}
	if w := monitoring.DebugWriter(); w != nil {
		session.SetDebugLogger(w)
		source.SetDebugLogger(w)
	}
	monitoring.Logf("[Recorder] %s", version.String())

	dir := cfg.GetExportDir()
	if *exportDir != "" {
		dir = *exportDir
	}

	var (
		db      *sqlite.DB
		catalog session.Catalog
		lister  monitor.ExportLister
	)
	if *dbFile != "" {
		db, err = sqlite.Open(*dbFile)
		if err != nil {
			return err
		}
		defer db.Close()
		c := sqlite.NewCatalog(db.DB)
		catalog, lister = c, c
	}

	sess, err := session.New(session.ConfigFromRecorder(cfg), export.New(export.Config{Dir: dir}), catalog)
	if err != nil {
		return err
	}

	osfs := fsutil.OSFileSystem{}
	src, err := newSource(cfg, osfs, *replayPath)
	if err != nil {
		return err
	}

	// A finished session (end of a replay) stops the publisher and web server.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	frames := make(chan source.Frame, 1)
	g.Go(func() error {
		defer close(frames)
		return src.Run(ctx, frames)
	})

	var in <-chan source.Frame = frames
	if *recordPath != "" {
		rec, err := source.CreateRecorder(osfs, *recordPath, nil)
		if err != nil {
			return err
		}
		in = source.Tee(ctx, frames, rec)
	}
	g.Go(func() error {
		defer cancel()
		return sess.Run(ctx, in)
	})

	publisher := render.NewPublisher(render.Config{
		ListenAddr: *grpcListen,
		Interval:   cfg.GetRenderInterval(),
		MaxClients: cfg.GetMaxStreamClients(),
	}, sess.Buffer(), sess.Mailbox())
	if err := publisher.Start(); err != nil {
		return err
	}
	g.Go(func() error {
		<-ctx.Done()
		publisher.Stop()
		return nil
	})

	ws := monitor.NewWebServer(monitor.WebServerConfig{
		Address: *listen,
		Session: sess,
		Exports: lister,
		DB:      db,
	})
	g.Go(func() error { return ws.Start(ctx) })

	err = g.Wait()
	st := sess.State()
	monitoring.Logf("[Recorder] Session %s ended: frames=%d points=%d", st.SessionID, st.FramesReceived, st.PointCount)
	return err
}
