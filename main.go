/*
assetparser converts source assets (images, shaders, bitmap fonts) into the
binary runtime formats loaded by the engine.
*/
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/assetparser/engine/core"
)

func main() {
	// signal context to capture system calls; only watch mode blocks on it
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		core.LogError("[ERROR] %s", err)
		stop()
		os.Exit(1)
	}
}
