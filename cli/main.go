package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"sproutsync"
	"sproutsync/config"
	"sproutsync/host"
	"sproutsync/server"
	"sproutsync/sprout"
)

func main() {
	log.SetFlags(log.LstdFlags)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "sync":
		cmdSync(args)
	case "tag":
		cmdTag(args)
	case "whoami":
		cmdWhoami(args)
	case "serve":
		cmdServe(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `sproutsync - SproutVideo video sync and tagging

Usage:
  sproutsync sync [flags]               Sync the video list into the local store
  sproutsync tag <video-id> <tag>       Add a tag to a video
  sproutsync whoami                     Show the connected account
  sproutsync serve [flags]              Serve the HTTP API
  sproutsync help                       Show this help message

Configuration is read from sproutsync.json and SPROUTSYNC_* environment
variables. SPROUTSYNC_API_KEY is required.

Examples:
  sproutsync sync                      # Sync until complete, resuming if interrupted
  sproutsync sync -max-pages 2         # Fetch two pages, leave the run resumable
  sproutsync sync -reset -start-from 250
  sproutsync tag d398dab91815e1c45a "Launch"

For help on specific command: sproutsync <command> -h
`)
}

func cmdSync(args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	maxPages := fs.Int("max-pages", 0, "Stop after this many pages (0 = config max_pages, then until complete)")
	startFrom := fs.Int("start-from", 0, "Start a fresh run near the N-th most recent video")
	reset := fs.Bool("reset", false, "Discard any interrupted run and start over")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sproutsync sync [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if *maxPages < 0 || *startFrom < 0 {
		fmt.Fprintf(os.Stderr, "Error: -max-pages and -start-from must be non-negative\n")
		os.Exit(1)
	}

	cfg := mustLoadConfig()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sproutsync.OpenStore(ctx, cfg)
	if err != nil {
		fatalf("Error opening store: %v", err)
	}
	defer store.Close()

	client := sproutsync.NewClient(cfg)
	manager := host.NewSyncManager(client, store, host.WithMaxPages(cfg.MaxPages))

	result, err := manager.Run(ctx, host.RunOptions{
		MaxPages:  *maxPages,
		StartFrom: *startFrom,
		Reset:     *reset,
	})
	if err != nil {
		fatalf("Error syncing videos: %v", err)
	}

	status := "paused (run again to resume)"
	if result.Complete {
		status = "complete"
	}
	fmt.Fprintf(os.Stderr, "Run %s %s: %d pages, %d rows\n", result.RunID, status, result.Pages, result.Rows)

	total, err := store.CountVideos(ctx)
	if err == nil {
		fmt.Fprintf(os.Stderr, "Store holds %d videos\n", total)
	}
}

func cmdTag(args []string) {
	fs := flag.NewFlagSet("tag", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sproutsync tag <video-id> <tag>\n")
	}
	fs.Parse(args)

	argv := fs.Args()
	if len(argv) != 2 {
		fmt.Fprintf(os.Stderr, "Error: expected video-id and tag\n")
		fs.Usage()
		os.Exit(1)
	}

	cfg := mustLoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Timeout)
	defer cancel()

	store, err := sproutsync.OpenStore(ctx, cfg)
	if err != nil {
		fatalf("Error opening store: %v", err)
	}
	defer store.Close()

	video, err := host.ApplyTag(ctx, sproutsync.NewClient(cfg), store, argv[0], argv[1])
	if err != nil {
		if sprout.IsUserError(err) {
			fatalf("Error: %v", err)
		}
		fatalf("Error tagging video: %v", err)
	}

	printVideos([]sprout.Video{*video})
}

func cmdWhoami(args []string) {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	fs.Parse(args)

	cfg := mustLoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	name, err := sproutsync.NewClient(cfg).ConnectionName(ctx)
	if err != nil {
		if errors.Is(err, sprout.ErrUnauthorized) {
			fatalf("Error: API key rejected")
		}
		fatalf("Error fetching account: %v", err)
	}
	fmt.Println(name)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "Listen address (default from config listen_addr)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sproutsync serve [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg := mustLoadConfig()
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sproutsync.OpenStore(ctx, cfg)
	if err != nil {
		fatalf("Error opening store: %v", err)
	}
	defer store.Close()

	srv := server.New(sproutsync.NewClient(cfg), store, cfg.ListenAddr, host.WithMaxPages(cfg.MaxPages))
	if err := srv.Start(); err != nil {
		fatalf("Error starting server: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Serving on http://%s (Ctrl-C to stop)\n", srv.Addr())

	<-ctx.Done()
	if err := srv.Stop(); err != nil {
		log.Printf("sproutsync: %v", err)
	}
}

// mustLoadConfig loads configuration and requires an API key, exiting on failure.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fatalf("Error loading config: %v", err)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		fatalf("Error: %v", err)
	}
	return cfg
}

func printVideos(videos []sprout.Video) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VIDEO ID\tTITLE\tDURATION\tPRIVACY\tTAGS")
	for _, v := range videos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			v.VideoID,
			truncate(v.Title, 50),
			v.Duration,
			v.Privacy,
			joinTags(v.Tags),
		)
	}
	w.Flush()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
