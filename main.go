package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/WasteWatch/WW-Client/internal/api"
	"github.com/WasteWatch/WW-Client/internal/config"
	"github.com/WasteWatch/WW-Client/internal/guard"
	"github.com/WasteWatch/WW-Client/internal/live"
	"github.com/WasteWatch/WW-Client/internal/offline"
	"github.com/WasteWatch/WW-Client/internal/session"
	"github.com/WasteWatch/WW-Client/internal/store"
)

const usage = `wastewatch <command> [flags]

Commands:
  login       -email -password        authenticate and store the session
  logout                              end the session
  whoami                              show the current identity
  register    -name -email -password -role
  routes                              today's assigned routes
  collect     -waypoint -photo        submit a waypoint collection (offline-aware)
  sync                                replay queued offline submissions
  pending                             list queued offline submissions
  complaint   -category -description -area
  complaints                          list my complaints
  attendance  -status [-remarks]      mark today's attendance
  schedule    [-date]                 pickup schedule
  status                              connectivity and queue status
  watch                               stream live vehicle positions
`

// app bundles the wired client subsystems for the command handlers.
type app struct {
	cfg     config.Config
	durable store.DurableStore
	client  *api.Client
	manager *session.Manager
	queue   *offline.Queue
	guard   *guard.Guard
}

func main() {
	_ = godotenv.Load(".env.local")

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load(os.Getenv("WW_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	a, cleanup, err := wire(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// wire builds the client stack: stores, API client, session manager, offline
// queue and connectivity watcher.
func wire(cfg config.Config) (*app, func(), error) {
	durable, err := store.OpenFileStore(filepath.Join(cfg.DataDir, "session.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}
	tab := store.NewMemoryStore()

	client := api.NewClient(cfg.BaseURL, session.TokenFrom(durable))
	client.SetTimeout(cfg.RequestTimeout)

	manager := session.NewManager(client, durable, tab, session.Options{
		SessionTTL:       cfg.SessionTTL,
		InactivityWindow: cfg.InactivityWindow,
	})

	queueStore, err := offline.OpenQueueStore(filepath.Join(cfg.DataDir, "queue.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("open offline queue: %w", err)
	}
	queue := offline.NewQueue(client, queueStore, true)

	watcher := offline.NewWatcher(cfg.BaseURL+"/api/health", cfg.ProbeInterval, queue.SetOnline)
	watcher.Start()

	a := &app{
		cfg:     cfg,
		durable: durable,
		client:  client,
		manager: manager,
		queue:   queue,
		guard:   guard.New(manager, "/login", "/", "/about", "/services", "/contact", "/register"),
	}
	cleanup := func() {
		watcher.Stop()
		manager.Close()
	}
	return a, cleanup, nil
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		a.manager.Logout(ctx)
		fmt.Println("logged out")
		return nil
	case "whoami":
		return a.cmdWhoami(ctx)
	case "register":
		return a.cmdRegister(ctx, args)
	case "routes":
		return a.authed(ctx, "/employee/route", a.cmdRoutes)
	case "collect":
		return a.authed(ctx, "/employee/route", func(ctx context.Context) error {
			return a.cmdCollect(ctx, args)
		})
	case "sync":
		return a.queue.SyncPending(ctx)
	case "pending":
		return a.cmdPending()
	case "complaint":
		return a.authed(ctx, "/complaint", func(ctx context.Context) error {
			return a.cmdComplaint(ctx, args)
		})
	case "complaints":
		return a.authed(ctx, "/complaint/status", a.cmdComplaints)
	case "attendance":
		return a.authed(ctx, "/employee/attendance", func(ctx context.Context) error {
			return a.cmdAttendance(ctx, args)
		})
	case "schedule":
		return a.cmdSchedule(ctx, args)
	case "status":
		return a.cmdStatus()
	case "watch":
		return a.authed(ctx, "/monitoring", a.cmdWatch)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// authed applies the route-guard contract before running a protected
// command: anonymous callers are pointed at login and the requested view is
// remembered.
func (a *app) authed(ctx context.Context, path string, fn func(context.Context) error) error {
	a.manager.Current(ctx)
	if d := a.guard.Check(path); !d.Allow {
		return fmt.Errorf("not logged in (run `wastewatch login`, you will be returned to %s)", path)
	}
	a.manager.TouchActivity()
	return fn(ctx)
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	ident, err := a.manager.Login(ctx, api.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	if ident != nil {
		fmt.Printf("logged in as %s (%s)\n", ident.Name, ident.Role)
	} else {
		fmt.Println("logged in")
	}
	if intended := a.guard.ConsumeIntended(); intended != "" {
		fmt.Printf("continue to %s\n", intended)
	}
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	ident := a.manager.Current(ctx)
	if ident == nil {
		fmt.Println("anonymous")
		return nil
	}
	fmt.Printf("%s <%s> role=%s id=%d\n", ident.Name, ident.Email, ident.Role, ident.ID)
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	role := fs.String("role", "CITIZEN", "role: CITIZEN, EMPLOYEE, SUPERVISOR, ADMIN")
	fs.Parse(args)

	_, err := a.manager.Register(ctx, api.RegisterPayload{
		Name:     *name,
		Email:    *email,
		Password: *password,
		Role:     api.Role(*role),
	})
	if err != nil {
		var ve *api.ValidationError
		if errors.As(err, &ve) {
			for field, msg := range ve.Fields {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
			}
		}
		return err
	}
	fmt.Println("registered")
	return nil
}

func (a *app) cmdRoutes(ctx context.Context) error {
	routes, err := a.client.TodayRoutes(ctx)
	if err != nil {
		return err
	}
	if len(routes) == 0 {
		fmt.Println("no routes assigned today")
		return nil
	}
	for _, r := range routes {
		fmt.Printf("#%d %s (%s) vehicle=%d completed=%v\n",
			r.ID, r.Name, r.Area, r.VehicleID, r.Completed)
	}
	return nil
}

func (a *app) cmdCollect(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("collect", flag.ExitOnError)
	waypoint := fs.Int64("waypoint", 0, "waypoint id")
	photoPath := fs.String("photo", "", "path to the collection photo")
	fs.Parse(args)

	if *waypoint == 0 || *photoPath == "" {
		return errors.New("collect requires -waypoint and -photo")
	}

	photo, err := os.ReadFile(*photoPath)
	if err != nil {
		return fmt.Errorf("read photo: %w", err)
	}

	contentType, body, err := api.BuildCollectionForm(photo, filepath.Base(*photoPath), *waypoint, time.Now())
	if err != nil {
		return err
	}

	res, err := a.queue.Submit(ctx, api.CollectionsEndpoint, contentType, body)
	if err != nil {
		return err
	}
	if res.Cached {
		fmt.Println("offline: collection saved and will be submitted when connection is restored")
	} else {
		fmt.Println("collection submitted")
	}
	return nil
}

func (a *app) cmdPending() error {
	pending, err := a.queue.Pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("queue empty")
		return nil
	}
	for _, sub := range pending {
		fmt.Printf("%s  %s  %s  %s\n",
			sub.ID, sub.Endpoint, sub.EnqueuedAt.Format(time.RFC3339), sub.Status)
	}
	return nil
}

func (a *app) cmdComplaint(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("complaint", flag.ExitOnError)
	category := fs.String("category", "MISSED_PICKUP", "complaint category")
	description := fs.String("description", "", "what happened")
	area := fs.String("area", "", "affected area")
	fs.Parse(args)

	created, err := a.client.CreateComplaint(ctx, api.ComplaintRequest{
		Category:    *category,
		Description: *description,
		Area:        *area,
	})
	if err != nil {
		return err
	}
	fmt.Printf("complaint #%d filed (%s)\n", created.ID, created.Status)
	return nil
}

func (a *app) cmdComplaints(ctx context.Context) error {
	complaints, err := a.client.MyComplaints(ctx)
	if err != nil {
		return err
	}
	for _, c := range complaints {
		fmt.Printf("#%d [%s] %s: %s\n", c.ID, c.Status, c.Category, c.Description)
	}
	return nil
}

func (a *app) cmdAttendance(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("attendance", flag.ExitOnError)
	status := fs.String("status", "PRESENT", "PRESENT, ABSENT or LEAVE")
	remarks := fs.String("remarks", "", "optional remarks")
	fs.Parse(args)

	if err := a.client.MarkAttendance(ctx, *status, *remarks); err != nil {
		return err
	}
	fmt.Println("attendance marked:", *status)
	return nil
}

func (a *app) cmdSchedule(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	date := fs.String("date", "", "YYYY-MM-DD (default today)")
	fs.Parse(args)

	entries, err := a.client.Schedule(ctx, *date)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s  %-20s %s\n", e.Date, e.Area, e.RouteName)
	}
	return nil
}

func (a *app) cmdStatus() error {
	count, err := a.queue.Pending()
	if err != nil {
		return err
	}
	out := map[string]any{
		"online":        a.queue.IsOnline(),
		"authenticated": a.manager.Authenticated(),
		"pendingSync":   len(count),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (a *app) cmdWatch(ctx context.Context) error {
	if a.cfg.WebSocketURL == "" {
		return errors.New("websocket_url is not configured")
	}

	feed, err := live.Dial(ctx, a.cfg.WebSocketURL, session.TokenFrom(a.durable)())
	if err != nil {
		return err
	}
	defer feed.Close()

	fmt.Println("watching live vehicle positions (ctrl-c to stop)")
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-feed.Updates():
			if !ok {
				return errors.New("feed closed")
			}
			fmt.Printf("vehicle %d route %d at %.5f,%.5f (%.0f%%)\n",
				update.VehicleID, update.RouteID, update.Latitude, update.Longitude, update.Progress*100)
		}
	}
}
