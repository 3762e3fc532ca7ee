// Command devcerts writes a development CA with server and client
// certificates for running the lifecycle API over mutual TLS.
package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/bibbank/loan-lifecycle/pkg/tlsutil"
)

func main() {
	out := flag.String("out", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server names and IPs")
	validity := flag.Duration("validity", 365*24*time.Hour, "certificate lifetime")
	flag.Parse()

	var names []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			names = append(names, h)
		}
	}

	if err := tlsutil.WriteDevBundle(*out, names, *validity); err != nil {
		slog.Error("generate certificates", "error", err)
		os.Exit(1)
	}
	slog.Info("certificates written", "dir", *out, "hosts", names)
}
