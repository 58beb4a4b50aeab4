package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dalbodeule/calbot/internal/bot"
	"github.com/dalbodeule/calbot/internal/config"
	"github.com/dalbodeule/calbot/internal/discord"
	"github.com/dalbodeule/calbot/internal/gcal"
	"github.com/dalbodeule/calbot/internal/llm"
	appLog "github.com/dalbodeule/calbot/internal/log"
	"github.com/dalbodeule/calbot/internal/schedule"
	"github.com/dalbodeule/calbot/internal/summary"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	appLog.Info("calbot starting", "version", "0.1.0")

	flags := parseFlags()

	// .env overlay for secrets; missing file is fine.
	if err := godotenv.Load(); err == nil {
		appLog.Info("loaded .env file")
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	conf.ApplyEnv()

	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	appLog.SetLevel(conf.LogLevel)

	loc, err := conf.Location()
	if err != nil {
		appLog.Error("invalid timezone", err, "timezone", conf.Timezone)
		os.Exit(1)
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", loc.String(),
		"daily_summary_time", conf.DailySummaryTime,
		"calendar_id", conf.Google.CalendarID,
		"notify_channel", conf.Discord.NotifyChannelID != "",
		"once", flags.once,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	// Calendar provider. A failed build disables schedule features but the
	// bot keeps running; every schedule command then reports the provider
	// as unavailable.
	var provider schedule.Provider
	if gc, err := gcal.New(ctx, conf.Google, loc); err != nil {
		appLog.Error("google calendar unavailable, schedule features disabled", err)
	} else {
		provider = gc
	}

	svc := schedule.NewService(provider, loc)
	handler := bot.New(svc, llm.New(conf.LLM))
	rest := discord.NewClient(conf.Discord.BotToken)
	notifier := discord.NewChannelNotifier(rest, conf.Discord.NotifyChannelID)

	// Daily summary loop; needs a delivery channel to be useful.
	var sched *summary.Scheduler
	if notifier != nil {
		sched, err = summary.New(svc, notifier, conf.DailySummaryTime, loc)
		if err != nil {
			appLog.Error("failed to build daily summary scheduler", err)
			os.Exit(1)
		}
	} else {
		appLog.Warn("daily summary disabled: bot token or notify_channel_id not configured")
	}

	if flags.once {
		if sched == nil {
			appLog.Error("cannot run -once", errors.New("daily summary not configured"))
			os.Exit(1)
		}
		sched.Fire(ctx)
		return
	}

	if sched != nil {
		sched.Start()
		defer sched.Stop()
	}

	server, err := discord.NewServer(handler, rest, conf.Discord.PublicKey)
	if err != nil {
		appLog.Error("failed to build interactions server", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              conf.Listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("interactions endpoint listening", "addr", conf.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("http server failed", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLog.Error("http shutdown failed", err)
	}
	appLog.Info("calbot exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/calbot/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Send one daily summary now and exit")

	flag.Parse()

	return cfg
}
