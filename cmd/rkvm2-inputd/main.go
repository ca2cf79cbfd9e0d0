package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/bfix/gospel/logger"

	"github.com/markrileybot/rkvm2/internal/config"
	"github.com/markrileybot/rkvm2/internal/inputsvc"
	"github.com/markrileybot/rkvm2/internal/proto"
)

func main() {
	defer func() {
		logger.Println(logger.INFO, "[inputd] Bye.")
		logger.Flush()
	}()

	var (
		cfgFile  string
		logLevel int
	)
	flag.StringVar(&cfgFile, "c", "", "configuration file (default: $XDG_CONFIG_HOME/rkvm2/config.json)")
	flag.IntVar(&logLevel, "L", logger.INFO, "log level")
	flag.Parse()

	logger.SetLogLevel(logLevel)

	path := config.ResolvePath(cfgFile)
	cfg, err := config.Load(path)
	if err != nil {
		logger.Printf(logger.ERROR, "[inputd] configuration failed: %s", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf(logger.INFO, "[inputd] terminating on signal %q", sig)
		cancel()
	}()

	srv := inputsvc.New(cfg.InputSocketPath, cfg.SocketGID, &nullEventSource{})
	logger.Printf(logger.INFO, "[inputd] listening on %s", cfg.InputSocketPath)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Printf(logger.ERROR, "[inputd] %s", err)
		os.Exit(1)
	}
}

// nullEventSource is the platform capture/synthesis boundary left
// unimplemented (spec.md §1: OS-specific evdev/uinput backends are
// out of scope). It never produces events and logs anything the
// coordinator asks it to play out, so the socket bridge in
// internal/inputsvc is fully exercisable without a real device.
type nullEventSource struct{}

func (nullEventSource) Read(ctx context.Context) (*proto.InputEvent, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (nullEventSource) Write(ctx context.Context, e *proto.InputEvent) error {
	logger.Printf(logger.DBG, "[inputd] play out kind=%d code=%d down=%v delta=%d", e.Kind, e.Code, e.Down, e.Delta)
	return nil
}
