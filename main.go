package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ByLCY/folio/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCmd(version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "folio:", err)
		stop()
		os.Exit(1)
	}
}
