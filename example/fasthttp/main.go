package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/coriolin/logtree"
	"github.com/coriolin/logtree/compat"
)

func main() {
	// Create the supervisor tree with a dedicated child for the server
	root, err := logtree.NewBuilder().
		Name("webapp").
		LevelString("debug").
		Directory("./logs").
		Build()
	if err != nil {
		panic(err)
	}
	defer root.Close()

	serverLog, err := root.NewChild("fasthttp")
	if err != nil {
		panic(err)
	}

	// Create fasthttp adapter with custom level detection
	fasthttpAdapter := compat.NewFastHTTPAdapter(
		serverLog,
		compat.WithDefaultLevel(logtree.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)

	// Configure fasthttp server
	server := &fasthttp.Server{
		Handler: requestHandler,
		Logger:  fasthttpAdapter,

		// Other server settings
		Name:              "MyServer",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	// Start server
	root.Info("starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain")
	fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
}

func customLevelDetector(msg string) (logtree.Level, bool) {
	// Can inspect specific fasthttp message patterns
	if strings.Contains(msg, "connection cannot be served") {
		return logtree.LevelWarn, true
	}
	if strings.Contains(msg, "error when serving connection") {
		return logtree.LevelError, true
	}

	// Use default detection
	return compat.DetectLogLevel(msg)
}
