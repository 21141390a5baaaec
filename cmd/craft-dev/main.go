package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/craftkit/web-runtime/reload"
)

func main() {
	var (
		projectDir  = flag.String("config", ".", "Project directory holding craft.yaml")
		addr        = flag.String("addr", "", "Listen address for the reload websocket")
		root        = flag.String("root", "", "Directory to watch (overrides craft.yaml roots)")
		debounce    = flag.Duration("debounce", 0, "Quiet period before a change burst triggers")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	cfg, err := reload.LoadOptional(*projectDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *root != "" {
		cfg.Roots = []string{*root}
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *debounce > 0 {
		cfg.Debounce = *debounce
	}
	cfg.Resolve(*projectDir)

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *reload.Config) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := reload.NewServer(cfg, logger)
	srv.OnTrigger = func(kind reload.Kind) {
		logger.Info("reload",
			zap.Stringer("kind", kind),
			zap.Int("clients", srv.Broadcaster().ClientCount()))
	}

	fmt.Printf("Watching %v\n", cfg.Roots)
	fmt.Printf("Reload socket on ws://%s/ws (debounce %s)\n", cfg.Addr, cfg.Debounce)
	return srv.Run(ctx)
}
