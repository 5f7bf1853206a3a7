// Command appdom validates, renders and diffs app documents and inspects
// their stored editing history.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/appdom/internal/cli"
)

// version is set at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	cmd := cli.NewRootCommand()
	cmd.Version = version

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "appdom: %v\n", err)
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}
