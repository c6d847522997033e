package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/hatcher/secretaria/pkg/cfg"
	"github.com/hatcher/secretaria/pkg/logs"
	"github.com/hatcher/secretaria/secretaria/app"
)

func main() {
	configDir := flag.String("config-dir", "conf", "config directory")
	configFile := flag.String("config-file", "secretaria", "config file name without suffix")
	flag.Parse()

	var config app.Config
	if err := cfg.LoadConfig(*configDir, *configFile, "yaml", &config); err != nil {
		logs.Fatalf("load config: %v", err)
	}
	logs.Init(config.Log)

	a, err := app.New(config)
	if err != nil {
		logs.Fatalf("build app: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logs.Infof("secretaria up, talk to the bot on Telegram")
	if err := a.Run(ctx); err != nil {
		logs.Fatalf("run: %v", err)
	}
}
