package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/goliatone/go-formdraft/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx, &cli.App{}, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "formdraft:", err)
		os.Exit(1)
	}
}
