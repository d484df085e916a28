// Command imposed runs the imposition HTTP server: upload, preview,
// impose, re-download, and preset management.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sheetwright/imposer/internal/server"
)

func main() {
	var host, port, presetsDir string
	flag.StringVar(&host, "host", "127.0.0.1", "listen host")
	flag.StringVar(&port, "port", "8888", "listen port")
	flag.StringVar(&presetsDir, "presets-dir", defaultPresetsDir(), "directory for saved presets")
	flag.Parse()

	s, err := server.New(host, port, presetsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "imposed: %v\n", err)
		os.Exit(1)
	}

	s.Start()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-s.Notify():
		fmt.Fprintf(os.Stderr, "imposed: server error: %v\n", err)
	case sig := <-interrupt:
		fmt.Printf("imposed: received %s, shutting down\n", sig)
	}

	if err := s.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "imposed: shutdown error: %v\n", err)
		os.Exit(1)
	}
}

func defaultPresetsDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return dir + "/imposer/presets"
}
