package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"mirror-warp/internal/angle"
	"mirror-warp/internal/compensation"
	"mirror-warp/internal/config"
	"mirror-warp/internal/frame"
	"mirror-warp/internal/logging"
	"mirror-warp/internal/rig"
	"mirror-warp/internal/warpmap"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	frames := flag.Int("frames", 8, "Frames to simulate (0 = until interrupted)")
	start := flag.Float64("angle", 0, "Initial rotation angle in degrees")
	speed := flag.Float64("speed", 0, "Rotation speed in degrees/sec (default: config or 30)")
	children := flag.Int("children", 3, "Number of child models on the rig")
	mapFile := flag.String("map", "", "Encoded warp map to decode before the first frame")
	realtime := flag.Bool("realtime", false, "Pace frames at the configured FPS")
	verbose := flag.Bool("v", false, "Debug logging to stderr")

	flag.Parse()

	if *verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{})
	if *speed != 0 {
		cfg.RotationSpeed = *speed
	}
	if cfg.RotationSpeed == 0 {
		cfg.RotationSpeed = 30
	}

	if *mapFile != "" {
		img, err := warpmap.Load(*mapFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		m, err := warpmap.Decode(img, cfg.DecodeOptions(false))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Warp map: %dx%d, %d texels outside [0,1]\n", m.Width, m.Height, m.OutOfRange())
	}

	src := angle.NewSource(*start)

	nodes := make([]*rig.Transform, *children)
	for i := range nodes {
		nodes[i] = &rig.Transform{Name: fmt.Sprintf("child%d", i)}
	}
	models, err := rig.NewChildren(*cfg.RotationAxis, src, nodes...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	material := compensation.NewMaterialParams()
	warp, err := compensation.NewWarp(src, cfg.Aspect(), cfg.Params(), material)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var loop frame.Loop
	loop.AddUpdater(&angle.Spinner{Source: src, Speed: cfg.RotationSpeed})
	loop.AddUpdater(models)
	loop.AddLateUpdater(warp)
	loop.AddLateUpdater(printer{loop: &loop, angle: src, material: material})

	dt := time.Second / time.Duration(cfg.FPS)
	var interval time.Duration
	if *realtime {
		interval = dt
	}

	fmt.Printf("Aspect %g:%g, speed %g°/s, %d fps, axis %d\n",
		cfg.TabletScale[0], cfg.TabletScale[1], cfg.RotationSpeed, cfg.FPS, *cfg.RotationAxis)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := loop.Run(ctx, *frames, dt, interval); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printer reports the material parameters after the warp has pushed them.
type printer struct {
	loop     *frame.Loop
	angle    angle.Provider
	material *compensation.MaterialParams
}

func (p printer) LateUpdate() {
	m, _ := p.material.Vector(compensation.UniformTexRotation)
	power, _ := p.material.Float(compensation.UniformPower)
	alpha, _ := p.material.Float(compensation.UniformAlpha)
	fmt.Printf("frame %4d  angle %8.3f  %s (% .5f % .5f % .5f % .5f)  power %g alpha %g\n",
		p.loop.Frames(), p.angle.Degrees(), compensation.UniformTexRotation,
		m[0], m[1], m[2], m[3], power, alpha)
}
