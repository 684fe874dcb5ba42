package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/handiism/asset-loader/internal/audio"
	"github.com/handiism/asset-loader/internal/config"
	"github.com/handiism/asset-loader/internal/loader"
	"github.com/handiism/asset-loader/internal/logger"
	"github.com/handiism/asset-loader/internal/manifest"
	"github.com/handiism/asset-loader/internal/model"
)

func main() {
	// Command line flags
	var (
		manifestFlag   = flag.String("manifest", "", "Path to the asset manifest (YAML or JSON)")
		configFlag     = flag.String("config", "", "Path to config file")
		baseURLFlag    = flag.String("base-url", "", "Base URL for relative asset URLs (overrides config)")
		rootFlag       = flag.String("root", "", "Directory for file:// and bare-path assets (overrides config)")
		widthFlag      = flag.Int("width", 0, "Viewport width used to pick the size variant")
		heightFlag     = flag.Int("height", 0, "Viewport height used to pick the size variant")
		sequentialFlag = flag.Bool("sequential", false, "Load one asset at a time")
		cacheAllFlag   = flag.Bool("cache-all", false, "Keep every result in the cache")
		strictFlag     = flag.Bool("strict", false, "Report descriptors no task type accepts as errors")
		playlistFlag   = flag.String("playlist", "", "Write the loaded audio tracks to this playlist file")
		verboseFlag    = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag     = flag.Bool("dry-run", false, "Read the manifest without loading")
	)

	flag.Parse()

	if *manifestFlag == "" && flag.NArg() == 0 {
		fmt.Println("Asset Loader - Load asset manifests")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  assetload -manifest <path> [options]")
		fmt.Println("  assetload <path> [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: assetload-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *baseURLFlag != "" {
		settings.BaseURL = *baseURLFlag
	}
	if *rootFlag != "" {
		settings.AssetRoot = *rootFlag
	}
	if *verboseFlag {
		settings.LogLevel = "debug"
	}

	log := logger.Setup(settings.LogLevel, settings.LogFormat, os.Stderr)

	path := *manifestFlag
	if path == "" {
		path = flag.Arg(0)
	}
	mf, err := manifest.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading manifest: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Asset Loader")
	fmt.Println("----------------------------------------")
	fmt.Printf("Manifest: %s (%d assets, %d files)\n", path, len(mf.Assets), mf.Count())
	fmt.Println()

	if *dryRunFlag {
		for i, d := range mf.Assets {
			fmt.Printf("  %s\n", describeDescriptor(i, d))
		}
		fmt.Println("\n[Dry run - not loading]")
		return
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, stopping...")
		cancel()
	}()

	mgr, err := loader.New(settings,
		loader.WithLogger(log),
		loader.WithEventHandler(func(e loader.Event) {
			if e.Level == loader.LevelVerbose && !*verboseFlag {
				return
			}
			fmt.Println(eventPrefix(e.Level) + e.Message)
		}),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer mgr.Close()

	if *widthFlag > 0 && *heightFlag > 0 {
		variant := mgr.Refresh(*widthFlag, *heightFlag)
		log.Info("selected size variant", "variant", variant, "width", *widthFlag, "height", *heightFlag)
	}

	opts := mf.Options.LoadOptions()
	opts.Sequential = opts.Sequential || *sequentialFlag
	opts.CacheAll = opts.CacheAll || *cacheAllFlag
	opts.Strict = opts.Strict || *strictFlag

	h, err := mgr.Load(mf.Assets, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if opts.Deferred {
		h.Start()
	}

	results, err := h.Wait(ctx)
	if err != nil {
		h.Stop()
		if errors.Is(err, loader.ErrStopped) || ctx.Err() != nil {
			fmt.Println("\nLoad cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error during load: %v\n", err)
		os.Exit(1)
	}

	for _, d := range h.Unmatched() {
		fmt.Printf("!  skipped %s: no task type accepts it\n", d.URL)
	}

	failed := 0
	fmt.Println()
	fmt.Println("----------------------------------------")
	if results != nil {
		model.Walk(results, func(key string, v any) {
			if v == nil {
				failed++
			}
			fmt.Printf("  %s: %s\n", key, model.Describe(v))
		})
	}

	if *playlistFlag != "" {
		if err := writePlaylist(*playlistFlag, results, settings); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing playlist: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Playlist written to %s\n", *playlistFlag)
	}

	fmt.Println()
	total := 0
	if results != nil {
		total = results.Len()
	}
	fmt.Printf("Complete! %d entries, %d failed\n", total, failed)
	if failed > 0 {
		os.Exit(2)
	}
}

func eventPrefix(level loader.Level) string {
	switch level {
	case loader.LevelError:
		return "x  "
	case loader.LevelWarning:
		return "!  "
	case loader.LevelSuccess:
		return "ok "
	case loader.LevelInfo:
		return "i  "
	}
	return "   "
}

func describeDescriptor(i int, d loader.Descriptor) string {
	name := d.ID
	if name == "" {
		name = fmt.Sprintf("#%d", i)
	}
	if len(d.Assets) > 0 {
		return fmt.Sprintf("%s: list of %d", name, len(d.Assets))
	}
	if d.Type != "" {
		return fmt.Sprintf("%s: %s (%s)", name, d.URL, d.Type)
	}
	return fmt.Sprintf("%s: %s", name, d.URL)
}

// writePlaylist exports every loaded audio track. The format follows the
// file extension, falling back to the configured format.
func writePlaylist(path string, results model.Results, settings *config.Settings) error {
	if results == nil {
		return errors.New("nothing was loaded")
	}
	tracks := model.AudioTracks(results)
	if len(tracks) == 0 {
		return errors.New("no audio tracks were loaded")
	}

	format := audio.DetectFormat(path)
	if format == audio.FormatUnknown {
		format = audio.DetectFormat("playlist." + settings.PlaylistFormat)
	}

	entries := make([]audio.Entry, len(tracks))
	for i, t := range tracks {
		title := t.Title
		if title == "" {
			title = filepath.Base(t.URL)
		}
		entries[i] = audio.Entry{URL: t.URL, Title: title, Duration: -1}
	}

	content := audio.CreatePlaylist(entries, format, settings.M3UExtended)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0644)
}
