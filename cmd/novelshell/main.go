// Command novelshell runs the novel platform client shell: a local server exposing the
// session and navigation over HTTP, and one-shot session commands.
//
// @title Novel Shell API
// @version 1.0
// @description Local shell of the novel platform: session state, navigation and a proxy to the platform API.
// @host localhost:8080
// @BasePath /
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
