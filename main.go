// Starts an http server that validates and stores incoming ActivityPub activities.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tkrehbiel/activitynode/server"
	"github.com/tkrehbiel/activitynode/server/storage"
	"github.com/tkrehbiel/activitynode/server/telemetry"
)

func readConfig(filename string) server.Config {
	var cfg server.Config
	b, err := os.ReadFile(filename)
	if err != nil {
		telemetry.Error(err, "opening config [%s]", filename)
	} else {
		c, err := server.ReadConfig(b)
		if err != nil {
			telemetry.Error(err, "parsing config [%s]", filename)
		}
		cfg = c
	}

	return cfg
}

func main() {
	configFile := flag.String("config", "config.json", "config json file")
	host := flag.String("host", "", "this hostname")
	pubCert := flag.String("cert", "", "public certificate")
	privCert := flag.String("key", "", "private key")
	port := flag.Int("port", 0, "listen port")
	driver := flag.String("storage", "", "storage driver, sqlite or redis")
	connection := flag.String("connection", "", "storage connection string or address")
	table := flag.String("table", "", "storage table for received activities")
	trace := flag.Bool("trace", false, "log trace messages")

	flag.Parse()

	telemetry.Log("starting activitynode")

	// a missing .env file is normal
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		telemetry.Error(err, "loading .env")
	}

	cfg := readConfig(*configFile)
	if err := cfg.ApplyEnv(); err != nil {
		telemetry.Error(err, "reading environment")
		os.Exit(1)
	}
	if *host != "" {
		cfg.Server.HostName = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *pubCert != "" {
		cfg.Server.Certificate = *pubCert
	}
	if *privCert != "" {
		cfg.Server.PrivateKey = *privCert
	}
	if *driver != "" {
		cfg.Storage.Driver = *driver
	}
	if *connection != "" {
		cfg.Storage.Connection = *connection
	}
	if *table != "" {
		cfg.Storage.Table = *table
	}
	if *trace {
		cfg.Server.Trace = true
	}
	telemetry.SetTrace(cfg.Server.Trace)

	store, err := storage.New(cfg.StorageOptions())
	if err != nil {
		telemetry.Error(err, "configuring storage")
		os.Exit(1)
	}
	if err := store.Open(); err != nil {
		telemetry.Error(err, "opening storage [%s]", cfg.StorageOptions().Driver)
		os.Exit(1)
	}

	svc, err := server.NewService(cfg, store)
	if err != nil {
		telemetry.Error(err, "configuring service")
		store.Close()
		os.Exit(1)
	}

	// Startup the service to listen for http requests
	svc.Start(context.Background())

	// Wait for ^C
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	telemetry.Log("stopping activitynode")

	// Shut down the service
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*60)
	defer cancel()
	svc.Stop(ctx)
	telemetry.Log("stopped activitynode cleanly")
}
