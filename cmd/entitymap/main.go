// Command entitymap translates dictionary entries between their transfer
// form and the persisted entity graph.
//
// Commands:
//
//	migrate   apply goose migrations
//	save      save one entry
//	plan      show the operations saving an entry would stage
//	import    bulk-import entries
//	export    export entries as transfer objects
//	list      list the latest version of each entry
//
// Configuration is read from CONFIG_PATH (default ./config.yaml) and the
// environment. Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/heartmarshall/entitymap/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
