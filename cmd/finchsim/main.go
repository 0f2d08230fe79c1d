// finchsim runs Finch movement programs without a robot and shows what the
// pen drew.
//
// Usage:
//
//	finchsim run    [flags] program.yaml   # run and print the final state
//	finchsim render [flags] program.yaml   # run and write SVG (and PNG)
//	finchsim serve  [flags] program.yaml   # run and open a browser viewer
//	finchsim watch  [flags] program.yaml   # viewer plus re-run on every save
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-finch/internal/config"
	"github.com/teslashibe/go-finch/internal/log"
	"github.com/teslashibe/go-finch/pkg/finch"
	"github.com/teslashibe/go-finch/pkg/program"
	"github.com/teslashibe/go-finch/pkg/render"
	"github.com/teslashibe/go-finch/pkg/render/raster"
	"github.com/teslashibe/go-finch/pkg/web"
)

// options are the flags shared by every subcommand.
type options struct {
	output    string
	port      string
	wheelbase float64
	penUp     bool
	noPNG     bool
	debug     bool
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd := os.Args[1]

	opts, file, err := parseFlags(cmd, os.Args[2:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(2)
	}

	level := config.LogLevel()
	if opts.debug {
		level = "debug"
	}
	log.Init(level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case "run":
		err = runCmd(ctx, opts, file)
	case "render":
		err = renderCmd(ctx, opts, file)
	case "serve":
		err = serveCmd(ctx, opts, file)
	case "watch":
		err = watchCmd(ctx, opts, file)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("finchsim failed", "cmd", cmd, "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: finchsim run|render|serve|watch [flags] program.yaml")
	fmt.Fprintln(os.Stderr, "       finchsim <cmd> -h for flags")
}

// parseFlags parses the flags of subcommand cmd and returns the program path.
func parseFlags(cmd string, args []string) (options, string, error) {
	switch cmd {
	case "run", "render", "serve", "watch":
	default:
		return options{}, "", fmt.Errorf("unknown command %q", cmd)
	}

	var opts options
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.StringVar(&opts.output, "o", config.OutputPath(), "PNG output path; the SVG is written next to it (or set FINCH_SIM_OUTPUT)")
	fs.StringVar(&opts.port, "port", config.ViewerPort(), "Viewer port (or set FINCH_VIEWER_PORT)")
	fs.Float64Var(&opts.wheelbase, "wheelbase", config.Wheelbase(), "Wheel separation in cm (or set FINCH_WHEELBASE_CM)")
	fs.BoolVar(&opts.penUp, "pen-up", false, "Start with the pen lifted")
	fs.BoolVar(&opts.noPNG, "no-png", false, "Skip PNG rendering (SVG only)")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return options{}, "", err
	}
	if fs.NArg() != 1 {
		return options{}, "", errors.New("expected exactly one program file")
	}
	return opts, fs.Arg(0), nil
}

func (o options) rasterizer() render.Rasterizer {
	if o.noPNG {
		return nil
	}
	return raster.New()
}

// newRobot builds a fresh robot that shows its drawing on display.
func (o options) newRobot(display render.Display) *finch.Robot {
	robotOpts := []finch.Option{
		finch.WithWheelbase(o.wheelbase),
		finch.WithLogger(log.L()),
		finch.WithRasterizer(o.rasterizer()),
	}
	if display != nil {
		robotOpts = append(robotOpts, finch.WithDisplay(display))
	}
	if o.penUp {
		robotOpts = append(robotOpts, finch.WithPenUp())
	}
	return finch.New(robotOpts...)
}

// execute runs prog on a fresh robot and shows the result. A program that
// fails part way still shows what was drawn before the failure.
func execute(ctx context.Context, o options, prog *program.Program, display render.Display) (*finch.Robot, error) {
	r := o.newRobot(display)
	runErr := prog.Run(ctx, r)
	if display != nil {
		if err := r.Show(ctx); err != nil {
			return r, errors.Join(runErr, err)
		}
	}
	log.Info("program finished",
		"program", prog.Name,
		"pose", r.Pose().String(),
		"segments", r.SegmentCount(),
		"drawn_cm", r.DrawnLength(),
	)
	return r, runErr
}

func runCmd(ctx context.Context, o options, file string) error {
	prog, err := program.Load(file)
	if err != nil {
		return err
	}
	r, err := execute(ctx, o, prog, nil)
	fmt.Println(r)
	return err
}

func renderCmd(ctx context.Context, o options, file string) error {
	prog, err := program.Load(file)
	if err != nil {
		return err
	}
	display := render.NewFileDisplay(o.output, o.rasterizer(), log.L())
	_, err = execute(ctx, o, prog, display)
	return err
}

func serveCmd(ctx context.Context, o options, file string) error {
	prog, err := program.Load(file)
	if err != nil {
		return err
	}
	viewer := web.NewServer(o.port, web.WithRasterizer(o.rasterizer()), web.WithLogger(log.L()))
	if _, err := execute(ctx, o, prog, viewer); err != nil {
		log.Warn("program failed, serving the partial drawing", "error", err)
	}
	return viewer.Start(ctx)
}

func watchCmd(ctx context.Context, o options, file string) error {
	viewer := web.NewServer(o.port, web.WithRasterizer(o.rasterizer()), web.WithLogger(log.L()))
	display := render.Displays{
		viewer,
		render.NewFileDisplay(o.output, o.rasterizer(), log.L()),
	}
	viewer.StartAsync(ctx)

	w := program.NewWatcher(file, func(prog *program.Program, err error) {
		if err != nil {
			return
		}
		if _, err := execute(ctx, o, prog, display); err != nil {
			log.Warn("run failed", "program", prog.Name, "error", err)
		}
	}, log.With("component", "watcher"))
	return w.Run(ctx)
}
