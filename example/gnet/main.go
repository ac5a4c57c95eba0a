package main

import (
	"github.com/panjf2000/gnet/v2"

	"github.com/coriolin/logtree"
	"github.com/coriolin/logtree/compat"
)

// Example gnet event handler
type echoServer struct {
	gnet.BuiltinEventEngine
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	c.Write(buf)
	return gnet.None
}

func main() {
	root, err := logtree.NewBuilder().
		Name("echo").
		LevelString("debug").
		Directory("./logs").
		Build()
	if err != nil {
		panic(err)
	}
	defer root.Close()

	serverLog, err := root.NewChild("gnet")
	if err != nil {
		panic(err)
	}

	gnetAdapter := compat.NewGnetAdapter(serverLog)

	// Configure gnet server with the logger
	err = gnet.Run(
		&echoServer{},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(gnetAdapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		panic(err)
	}
}
