// SPDX-License-Identifier: GPL-3.0-or-later

// Command dnsprobe runs DNS compliance checks against a server.
//
// The defaults come from the DC_SERVER, DC_SERVER_IP and REALM
// environment variables and may be overridden using flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bassosimone/dnsprobe"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Getenv, os.Stderr))
}

func run(ctx context.Context, args []string, getenv func(string) string, stderr io.Writer) int {
	cfg := dnsprobe.NewConfig()
	if realm := getenv("REALM"); realm != "" {
		cfg.Domain = strings.ToLower(realm)
	}

	fset := flag.NewFlagSet("dnsprobe", flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.StringVar(&cfg.ServerAddr, "addr", getenv("DC_SERVER_IP"), "address of the server under test")
	fset.StringVar(&cfg.ServerName, "server", getenv("DC_SERVER"), "name of the server under test")
	fset.StringVar(&cfg.Domain, "domain", cfg.Domain, "zone served by the server under test")
	fset.IntVar(&cfg.Port, "port", cfg.Port, "port of the server under test")
	fset.DurationVar(&cfg.Timeout, "timeout", 0, "per-transaction timeout (zero means no timeout)")
	verbose := fset.Bool("v", false, "log every transaction")
	if err := fset.Parse(args); err != nil {
		return 2
	}
	if cfg.ServerAddr == "" {
		fmt.Fprintln(stderr, "dnsprobe: missing server address (use -addr or DC_SERVER_IP)")
		return 2
	}

	logger := slog.New(slog.NewTextHandler(stderr, nil))
	if *verbose {
		cfg.Logger = logger
	}

	failed := 0
	for _, result := range dnsprobe.RunChecks(ctx, cfg) {
		if result.Err != nil {
			failed++
			logger.Error("checkFailed",
				slog.String("check", result.Name),
				slog.String("endpoint", cfg.Endpoint()),
				slog.Any("err", result.Err),
			)
			continue
		}
		logger.Info("checkPassed",
			slog.String("check", result.Name),
			slog.String("endpoint", cfg.Endpoint()),
		)
	}
	if failed > 0 {
		return 1
	}
	return 0
}
