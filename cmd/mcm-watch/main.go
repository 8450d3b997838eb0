// mcm-watch is a terminal client for MCM Alerts. By default it logs in and
// runs the notification poll loop, rendering each new alert to the terminal
// with a bell cue. The subscription flags manage preferences instead of
// watching.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mcm-alerts/mcm-alerts/internal/alert"
	"github.com/mcm-alerts/mcm-alerts/internal/client"
	"github.com/mcm-alerts/mcm-alerts/internal/logger"
	"github.com/mcm-alerts/mcm-alerts/internal/panel"
	"github.com/mcm-alerts/mcm-alerts/internal/types"
	"github.com/mcm-alerts/mcm-alerts/internal/watch"
	"go.uber.org/zap"
)

// terminalDisplay renders the single alert slot as terminal lines.
type terminalDisplay struct{}

func (terminalDisplay) Show(a alert.Alert) {
	fmt.Printf("\n[%s] %s\n  %s\n", a.Type, a.Title, a.Message)
}

func (terminalDisplay) Dismiss(a alert.Alert) {}

func (terminalDisplay) Remove(a alert.Alert) {}

// bell rings the terminal bell.
type bell struct{}

func (bell) Play() {
	fmt.Print("\a")
}

// silent is used when the subscription has sound disabled.
type silent struct{}

func (silent) Play() {}

// envRegistrar grants registration only when a delivery token was provided
// via MCM_FCM_TOKEN; a terminal cannot mint browser push tokens itself.
type envRegistrar struct {
	token string
}

func (r envRegistrar) Register(ctx context.Context) (panel.Registration, error) {
	if r.token == "" {
		return panel.Registration{Granted: false}, nil
	}
	return panel.Registration{Granted: true, Token: r.token}, nil
}

// presenterAdapter feeds watcher output into the alert presenter.
type presenterAdapter struct {
	presenter *alert.Presenter
}

func (p presenterAdapter) Present(n watch.Notification) {
	p.presenter.Present(alert.Alert{
		ID:      n.ID,
		Title:   n.Title,
		Message: n.Message,
		Type:    n.Type,
	})
}

// fetcherAdapter narrows the API client to what the watcher needs.
type fetcherAdapter struct {
	client *client.Client
}

func (f fetcherAdapter) LatestNotification(ctx context.Context) (*watch.Notification, error) {
	latest, err := f.client.LatestNotification(ctx)

	if err != nil {
		return nil, err
	}

	if latest == nil {
		return nil, nil
	}

	return &watch.Notification{
		ID:      latest.ID,
		Title:   latest.Title,
		Message: latest.Message,
		Type:    latest.Type,
	}, nil
}

func main() {
	_ = godotenv.Load()

	server := flag.String("server", envOr("MCM_SERVER", "http://localhost:3000"), "MCM Alerts server URL")
	username := flag.String("username", envOr("MCM_USERNAME", "user"), "login username")
	password := flag.String("password", os.Getenv("MCM_PASSWORD"), "login password")
	logLevel := flag.String("log-level", envOr("LOG_LEVEL", "warn"), "log level")
	enable := flag.Bool("enable", false, "enable the site monitoring subscription and exit")
	disable := flag.Bool("disable", false, "disable the site monitoring subscription and exit")
	channel := flag.String("channel", "", "channel preference to change: sound, browser or email")
	value := flag.String("value", "", "channel value: on or off")
	flag.Parse()

	if *password == "" {
		log.Fatal("password required (flag -password or MCM_PASSWORD)")
	}

	zlog, err := logger.New(*logLevel)

	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	defer zlog.Sync()

	api, err := client.New(*server)

	if err != nil {
		zlog.Fatal("failed to build API client", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	user, err := api.Login(ctx, *username, *password)

	if err != nil {
		zlog.Fatal("login failed", zap.Error(err))
	}

	if *enable || *disable || *channel != "" {
		runPanel(ctx, api, zlog, *enable, *disable, *channel, *value)
		return
	}

	fmt.Printf("Logged in as %s. Watching for alerts (Ctrl-C to quit).\n", user.Username)

	var sound alert.Sound = bell{}

	// Honor the stored sound preference when a subscription exists.
	if sub, err := api.Subscription(ctx, types.SubscriptionSiteMonitoring); err == nil && sub != nil && !sub.EnableSound {
		sound = silent{}
	}

	presenter := alert.NewPresenter(terminalDisplay{}, sound)
	defer presenter.Close()

	watcher := watch.New(fetcherAdapter{client: api}, presenterAdapter{presenter: presenter}, zlog.Named("watch"))
	watcher.Run(ctx)

	if err := api.Logout(context.Background()); err != nil {
		zlog.Warn("logout failed", zap.Error(err))
	}
}

func runPanel(ctx context.Context, api *client.Client, zlog *zap.Logger, enable, disable bool, channel, value string) {
	p := panel.New(api, envRegistrar{token: os.Getenv("MCM_FCM_TOKEN")}, zlog.Named("panel"))

	switch {
	case enable:
		sub, err := p.SetEnabled(ctx, true)
		if err != nil {
			zlog.Fatal("enable failed", zap.Error(err))
		}
		fmt.Printf("Subscription enabled (sound=%t browser=%t email=%t).\n",
			sub.EnableSound, sub.EnableBrowser, sub.EnableEmail)
	case disable:
		if _, err := p.SetEnabled(ctx, false); err != nil {
			zlog.Fatal("disable failed", zap.Error(err))
		}
		fmt.Println("Subscription disabled.")
	default:
		if value != "on" && value != "off" {
			log.Fatal("-value must be on or off")
		}
		sub, err := p.SetChannel(ctx, panel.Channel(channel), value == "on")
		if err != nil {
			zlog.Fatal("channel update failed", zap.Error(err))
		}
		fmt.Printf("Preferences saved (sound=%t browser=%t email=%t).\n",
			sub.EnableSound, sub.EnableBrowser, sub.EnableEmail)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
