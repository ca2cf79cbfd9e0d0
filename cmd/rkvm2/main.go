package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bfix/gospel/logger"

	"github.com/markrileybot/rkvm2/internal/clipboard"
	"github.com/markrileybot/rkvm2/internal/config"
	"github.com/markrileybot/rkvm2/internal/conn"
	"github.com/markrileybot/rkvm2/internal/coordinator"
	"github.com/markrileybot/rkvm2/internal/inputconn"
	"github.com/markrileybot/rkvm2/internal/netconn"
	"github.com/markrileybot/rkvm2/internal/notify"
	"github.com/markrileybot/rkvm2/internal/ping"
	"github.com/markrileybot/rkvm2/internal/proto"
	"github.com/markrileybot/rkvm2/internal/statusapi"
)

// messageQueueSize bounds the coordinator's merged inbound channel. Input,
// net and ping traffic all land here; the coordinator drains it on one
// goroutine (spec.md §5).
const messageQueueSize = 64

func main() {
	defer func() {
		logger.Println(logger.INFO, "[rkvm2] Bye.")
		logger.Flush()
	}()

	var (
		cfgFile    string
		dumpConfig bool
		logLevel   int
	)
	flag.StringVar(&cfgFile, "c", "", "configuration file (default: $XDG_CONFIG_HOME/rkvm2/config.json)")
	flag.BoolVar(&dumpConfig, "dump-config", false, "print the effective configuration and exit")
	flag.IntVar(&logLevel, "L", logger.INFO, "log level")
	flag.Parse()

	logger.SetLogLevel(logLevel)

	path := config.ResolvePath(cfgFile)
	cfg, err := config.Load(path)
	if err != nil {
		logger.Printf(logger.ERROR, "[rkvm2] configuration failed: %s", err)
		os.Exit(1)
	}

	if dumpConfig {
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			logger.Printf(logger.ERROR, "[rkvm2] dump configuration: %s", err)
			os.Exit(1)
		}
		fmt.Println(string(b))
		return
	}
	logger.Printf(logger.INFO, "[rkvm2] node %q commander=%v, config %s", cfg.NodeName, cfg.Commander, path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages := make(chan *proto.Message, messageQueueSize)

	inputSup := conn.NewSupervisor(ctx, inputconn.New(cfg.InputSocketPath), messages)
	netSup := conn.NewSupervisor(ctx, netconn.New(cfg.BroadcastAddress), messages)

	go ping.Run(ctx, messages)

	coordCfg := coordinator.Config{
		Name:          cfg.NodeName,
		Commander:     cfg.Commander,
		SwitchKeys:    config.ResolveKeys(cfg.SwitchKeys),
		CommanderKeys: config.ResolveKeys(cfg.CommanderKeys),
	}
	c := coordinator.New(coordCfg, inputSup, netSup, notify.LogNotifier{}, &clipboard.MemClipboard{})

	status := statusapi.New(cfg.StatusAddress, c)
	go status.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf(logger.INFO, "[rkvm2] terminating on signal %q", sig)
		cancel()
	}()

	c.Run(ctx, messages)
}
