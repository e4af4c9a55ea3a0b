// Command irondropd runs the IronDrop HTTP file server: it loads
// SPEC_FULL.md §6's configuration (INI file plus CLI overrides), starts the
// listener, optionally advertises itself over mDNS and prints a startup QR
// code, and serves until SIGINT/SIGTERM. Grounded on
// _examples/zulfikawr-warp/cmd/warp/main.go's hostCmd, which follows the
// same shape: build a server, start it, print a banner, block on a signal
// channel, shut down gracefully.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dev-harsh1998/irondrop/internal/config"
	"github.com/dev-harsh1998/irondrop/internal/discovery"
	"github.com/dev-harsh1998/irondrop/internal/logging"
	"github.com/dev-harsh1998/irondrop/internal/network"
	"github.com/dev-harsh1998/irondrop/internal/qr"
	"github.com/dev-harsh1998/irondrop/internal/router"
	"github.com/dev-harsh1998/irondrop/internal/searchindex"
	"github.com/dev-harsh1998/irondrop/internal/server"
)

func main() {
	log.SetFlags(0)

	fs := flag.NewFlagSet("irondropd", flag.ExitOnError)
	configFile := fs.String("config-file", "", "path to an irondrop.ini config file")
	listen := fs.String("listen", "", "address to bind (overrides config)")
	port := fs.Int("port", 0, "port to bind (overrides config)")
	threads := fs.Int("threads", 0, "worker pool size (overrides config)")
	root := fs.String("root", ".", "directory to serve")
	uploadEnabled := fs.Bool("upload", false, "enable the upload endpoints (overrides config)")
	uploadDir := fs.String("upload-dir", "", "default upload destination (overrides config)")
	maxUploadSize := fs.String("max-upload-size", "", "maximum upload size, e.g. 512MB (overrides config)")
	authUser := fs.String("auth-username", "", "Basic auth username (overrides config)")
	authPass := fs.String("auth-password", "", "Basic auth password (overrides config)")
	allowedExt := fs.String("allowed-extensions", "", "comma-separated glob allowlist (overrides config)")
	verbose := fs.Bool("verbose", false, "info-level logging")
	detailed := fs.Bool("detailed", false, "debug-level logging")
	noQR := fs.Bool("no-qr", false, "skip printing the startup QR code")
	mdns := fs.Bool("mdns", false, "advertise this instance over mDNS (_irondrop._tcp)")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	overrides := config.Overrides{Root: root}
	if *listen != "" {
		overrides.Listen = listen
	}
	if *port != 0 {
		overrides.Port = port
	}
	if *threads != 0 {
		overrides.Threads = threads
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "upload" {
			overrides.UploadEnabled = uploadEnabled
		}
	})
	if *uploadDir != "" {
		overrides.UploadDir = uploadDir
	}
	if *maxUploadSize != "" {
		overrides.MaxUploadSize = maxUploadSize
	}
	if *authUser != "" {
		overrides.AuthUsername = authUser
	}
	if *authPass != "" {
		overrides.AuthPassword = authPass
	}
	if *allowedExt != "" {
		overrides.AllowedExtensions = allowedExt
	}
	if *verbose {
		overrides.Verbose = verbose
	}
	if *detailed {
		overrides.Detailed = detailed
	}
	if err := overrides.Apply(cfg); err != nil {
		log.Fatalf("applying flags: %v", err)
	}

	logging.SetVerbosity(cfg.Verbose, cfg.Detailed)
	defer logging.Sync()

	idx := searchindex.New(cfg.Root)
	if err := idx.Initialize(); err != nil {
		log.Fatalf("building search index: %v", err)
	}

	rt := router.New()
	rt.Use(router.BasicAuth(cfg.AuthUsername, cfg.AuthPassword))

	srv := server.New(cfg, rt, idx)
	server.Register(rt, cfg, srv.Stats(), idx)
	rt.Fallback = router.FSHandler(router.FSConfig{
		Root:              cfg.Root,
		AllowedExtensions: cfg.ExtensionPatterns(),
		ChunkSize:         cfg.ChunkSize,
	})

	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Listen, cfg.Port))
	if err != nil {
		log.Fatalf("binding listener: %v", err)
	}

	var advertiser *discovery.Advertiser
	if *mdns {
		if ip, derr := network.DiscoverLANIP(""); derr == nil {
			advertiser, err = discovery.Advertise("irondrop", cfg.UploadEnabled, ip, cfg.Port)
			if err != nil {
				logging.Warnf("mDNS advertise failed: %v", err)
			}
		} else {
			logging.Warnf("mDNS advertise skipped: %v", derr)
		}
	}
	defer advertiser.Close()

	address := network.AdvertiseAddress(cfg.Listen, cfg.Port)
	fmt.Fprintf(os.Stderr, "IronDrop serving %s\n", cfg.Root)
	fmt.Fprintf(os.Stderr, "Listening on http://%s\n", address)
	if cfg.UploadEnabled {
		fmt.Fprintln(os.Stderr, "Uploads: enabled")
	}
	if cfg.RateLimitMbps > 0 {
		fmt.Fprintf(os.Stderr, "Bandwidth limit: %s Mbps\n", strconv.FormatFloat(cfg.RateLimitMbps, 'f', -1, 64))
	}
	if !*noQR {
		fmt.Fprintln(os.Stderr)
		if err := qr.Print("http://" + address); err != nil {
			logging.Warnf("printing startup QR code: %v", err)
		}
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			log.Fatalf("serve: %v", err)
		}
	case <-sigCh:
		fmt.Fprintln(os.Stderr, "\nShutting down gracefully...")
		srv.Shutdown()
	}
}
