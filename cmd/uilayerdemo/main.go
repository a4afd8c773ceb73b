// Command uilayerdemo is an interactive terminal demo of package uilayer,
// with one layout per local player, rendered side by side.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	eventloop "github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/go-uilayer"
	"github.com/joeycumines/go-uilayer/config"
	"github.com/joeycumines/go-uilayer/streaming"
	"github.com/joeycumines/go-uilayer/termui"
	"github.com/joeycumines/logiface"
)

const defaultLogFile = `uilayerdemo.log`

const defaultCatalog = `
[classes."/ui/hud"]
name = "HUD"
latency = "50ms"

[classes."/ui/pause"]
name = "PauseMenu"
latency = "400ms"

[classes."/ui/inventory"]
name = "Inventory"
latency = "1200ms"

[classes."/ui/confirm"]
name = "ConfirmDialog"
latency = "200ms"

[classes."/ui/slow"]
name = "SlowLoader"
latency = "5s"

[classes."/ui/broken"]
name = "Broken"
unusable = true
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet(`uilayerdemo`, flag.ContinueOnError)
	configPath := fs.String(`config`, ``, `config file (TOML)`)
	catalogPath := fs.String(`catalog`, ``, `class catalog (TOML), overrides streaming.catalog`)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *catalogPath != `` {
		cfg.Streaming.Catalog = *catalogPath
	}

	logFile := cfg.Log.File
	if logFile == `` {
		logFile = defaultLogFile
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	logger, err := config.NewLogger(cfg.Log, f)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(cfg.Streaming.Catalog)
	if err != nil {
		return err
	}

	a, stop, err := newApp(cfg, catalog, logger)
	if err != nil {
		return err
	}
	defer stop()

	p := tea.NewProgram(model{app: a}, tea.WithAltScreen())
	a.send = func(frame frameMsg) { p.Send(frame) }
	_, err = p.Run()
	return err
}

func loadCatalog(path string) (*streaming.Catalog, error) {
	if path != `` {
		return streaming.LoadCatalog(path)
	}
	return streaming.ParseCatalog(defaultCatalog)
}

// newApp starts a loop, and wires the subsystem to it. The returned stop
// function stops the streamer, then the loop.
func newApp(cfg config.Config, catalog *streaming.Catalog, logger *logiface.Logger[logiface.Event]) (_ *app, stop func(), err error) {
	layers, err := cfg.LayerIDs()
	if err != nil {
		return nil, nil, err
	}
	if len(layers) == 0 {
		layers = termui.DefaultLayers
	}
	coreOpts, err := cfg.Options(logger)
	if err != nil {
		return nil, nil, err
	}

	loop, err := eventloop.New()
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Err().Err(err).Log(`uilayerdemo: loop stopped`)
		}
	}()
	stopLoop := func() {
		cancel()
		<-done
	}

	streamer, err := streaming.New(loop, catalog, cfg.StreamingOptions(logger)...)
	if err != nil {
		stopLoop()
		return nil, nil, err
	}
	stop = func() {
		_ = streamer.Close()
		stopLoop()
	}

	a := &app{
		loop:     loop,
		streamer: streamer,
		screen:   &termui.Screen{Width: 48},
		logger:   logger,
		classes:  append(catalog.Paths(), missingClass),
		layers:   layers,
		ops:      make(map[*termui.Player][]*uilayer.PushOperation),
		suspend:  cfg.Input.SuspendOnPush,
	}
	a.newMgr = func(sub *uilayer.Subsystem) (*uilayer.LayoutManager, error) {
		return uilayer.NewLayoutManager(
			uilayer.LayoutFactoryFunc(func(player uilayer.Player) (*uilayer.Layout, error) {
				return a.newLayout(sub, player)
			}),
			sub.Options(
				uilayer.WithZOrder(cfg.Layout.ZOrder),
				uilayer.WithOnDetached(func(player uilayer.Player, _ *uilayer.Layout) {
					logger.Info().Str(`player`, fmt.Sprint(player)).Log(`uilayerdemo: layout detached`)
				}),
				uilayer.WithOnReleased(func(player uilayer.Player, _ *uilayer.Layout) {
					if p, ok := player.(*termui.Player); ok {
						a.screen.Forget(p)
					}
				}),
			)...,
		)
	}

	a.sub, err = uilayer.NewSubsystem(a.newMgr, append(coreOpts,
		uilayer.WithLoop(loop),
		uilayer.WithToolkit(&termui.Toolkit{}),
		uilayer.WithStreamer(streamer),
	)...)
	if err != nil {
		stop()
		return nil, nil, err
	}
	a.run(func() string {
		a.sub.Initialize()
		return ``
	})
	return a, stop, nil
}

func (x *app) newLayout(sub *uilayer.Subsystem, player uilayer.Player) (*uilayer.Layout, error) {
	p, ok := player.(*termui.Player)
	if !ok {
		return nil, fmt.Errorf(`%w: unsupported player %T`, uilayer.ErrInvalidArgument, player)
	}
	root := x.screen.NewRoot(p, x.layers...)
	layout, err := uilayer.NewLayout(root, p, sub.Options()...)
	if err != nil {
		return nil, err
	}
	if err := root.Register(layout); err != nil {
		return nil, err
	}
	return layout, nil
}
