// Package main is the container health probe. It exits non-zero unless the
// server answers 200 on the probed path.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/nvnfont/nvnfont-bot-go/internal/config"
)

func main() {
	path := flag.String("path", "/livez", "path to probe (/livez or /readyz)")
	timeout := flag.Duration("timeout", 5*time.Second, "probe timeout")
	flag.Parse()

	if err := probe(*path, *timeout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "healthcheck: %v\n", err)
		os.Exit(1)
	}
}

func probe(path string, timeout time.Duration) error {
	port := os.Getenv(config.EnvPort)
	if port == "" {
		port = "3000"
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://127.0.0.1:"+port+path, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d", path, resp.StatusCode)
	}
	return nil
}
