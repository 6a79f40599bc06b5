package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"petfeeder/host/sim"
)

func main() {
	var (
		configFlag = flag.String("config", "feeder-sim.yaml", "Configuration file path")
		addrFlag   = flag.String("addr", "", "HTTP listen address (overrides config)")
		speedFlag  = flag.Float64("speed", 0, "Virtual seconds per real second (overrides config)")
		debugFlag  = flag.Bool("debug", false, "Log firmware debug output")
	)
	flag.Parse()

	cfg, err := sim.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *addrFlag != "" {
		cfg.HTTP.Addr = *addrFlag
	}
	if *speedFlag > 0 {
		cfg.Sim.Speed = *speedFlag
	}
	if *debugFlag {
		cfg.Sim.Debug = true
	}

	simulator, err := sim.New(cfg)
	if err != nil {
		log.Fatalf("Failed to start simulator: %v", err)
	}
	defer func() {
		if err := simulator.Close(); err != nil {
			log.Printf("Failed to save NVM: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := sim.NewMetrics()

	if cfg.MQTT.Enabled {
		pub, err := sim.ConnectMQTT(ctx, cfg.MQTT)
		if err != nil {
			log.Printf("Telemetry disabled: %v", err)
		} else {
			tel := sim.NewTelemetry(simulator, pub, cfg.MQTT, metrics)
			go tel.Run(ctx)
		}
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           sim.NewServer(simulator, metrics).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("HTTP listening on %s", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server failed: %v", err)
			stop()
		}
	}()

	log.Printf("Simulating at %gx from %s", cfg.Sim.Speed, cfg.Sim.StartTime)
	simulator.Run(ctx)

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	log.Println("Simulator stopped")
}
