package main

import (
	"context"
	"time"

	"latchfw/bus"
	"latchfw/port"
	"latchfw/services/config"
	"latchfw/services/heartbeat"
	"latchfw/services/latch"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot", port.Board())

	ctx := context.Background()
	b := bus.NewBus(8)
	reg := port.NewRegistry(port.DefaultProvider())

	go latch.New(b.NewConnection("latch"), reg).Run(ctx)
	go monitor(b.NewConnection("monitor"))

	hb := &heartbeat.Service{Out: consoleOutput()}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	config.NewConfigService().Start(config.WithDevice(ctx, port.Board()), b.NewConnection("config"))

	select {}
}

// monitor prints firmware state changes and button events.
func monitor(conn *bus.Connection) {
	state := conn.Subscribe(latch.StateTopic())
	buttons := conn.Subscribe(bus.T("fw", "button", "#"))
	for {
		select {
		case m := <-state.Channel():
			printTopic("[monitor]", m.Topic)
		case m := <-buttons.Channel():
			printTopic("[monitor]", m.Topic)
		}
	}
}

func printTopic(prefix string, t bus.Topic) {
	print(prefix, " ")
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			print("/")
		}
		switch v := t.At(i).(type) {
		case string:
			print(v)
		case int:
			print(v)
		default:
			print("?")
		}
	}
	println()
}
