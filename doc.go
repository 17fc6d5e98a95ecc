/*
Package gokeyence implements the Keyence KV upper link protocol
for reading and writing controller registers over UDP or TCP.

Commands and replies are short ASCII lines terminated by CR LF:

	RD DM100            ->  00042
	RDS DM100 3         ->  00001 00002 00003
	WR DM100 00042      ->  OK
	WRS DM100 2 00001 00002 -> OK

# Quick Start

	import (
		"context"
		"log"
		"time"

		"github.com/bronystylecrazy/gokeyence"
	)

	func main() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, err := gokeyence.Dial(ctx, "udp", "192.168.0.10:8501")
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()

		resp, err := client.Read(ctx, "DM100", 5)
		if err != nil {
			log.Printf("Read error: %v", err)
			return
		}
		log.Printf("Values: %v", resp.Values)

		ok, err := client.Write(ctx, "DM100", []int{1, 2, 3})
		if err != nil || !ok {
			log.Printf("Write failed: ok=%v err=%v", ok, err)
		}
	}

# Data Schemes

Two encodings of register values are supported, chosen per client with WithCodec:

  - FixedWidthCodec (default) - every value is a 5-digit zero-padded decimal, 0..99999
  - PackedCodec - every register holds two ASCII characters packed into 16 bits

The packed scheme lets text be stored in registers:

	client := gokeyence.NewClient(transport, gokeyence.WithCodec(gokeyence.PackedCodec{
		ByteOrder: binary.LittleEndian,
	}))
	client.Write(ctx, "DM200", "ABC") // WRS DM200 2 16961 12355
	resp, _ := client.Read(ctx, "DM200", 2)
	log.Println(resp.Text) // "ABC0"

Odd-length text is padded with a trailing '0'.

Payloads are validated before anything is sent, so an out-of-range value
never reaches the controller.

# Timeouts

The client imposes no timeout of its own. Pass a context with a deadline:
UDP is lossy and a lost reply otherwise blocks the call until the context ends.

# Monitoring and Heartbeat

A Monitor polls a register range and reports changes and connectivity loss,
each edge-triggered:

	m := gokeyence.NewMonitor(client, "DM0",
		gokeyence.WithPollCount(2),
		gokeyence.WithPollInterval(500*time.Millisecond),
		gokeyence.WithChangeHandler(func(r gokeyence.Response) { log.Println(r) }),
		gokeyence.WithDisconnectHandler(func(err error) { log.Println("lost:", err) }),
	)
	m.Start()
	defer m.Stop()

A Heartbeat writes an alternating 1/0 so the controller can watch for a
stalled supervisor:

	hb := gokeyence.NewHeartbeat(client, "MR1000",
		gokeyence.WithFailureHandler(func(err error) { log.Println(err) }))
	hb.Start()
	defer hb.Stop()

Monitors and heartbeats may share one client; every exchange holds the
client's lock for its full round trip.

# Interceptors

Interceptors wrap every Read and Write:

	logger, _ := zap.NewProduction()
	client.AddInterceptor(gokeyence.LoggingInterceptor(logger))

	metrics := gokeyence.NewMetricsCollector()
	client.Use(metrics)

	client.AddInterceptor(gokeyence.ReadOnlyInterceptor())

# Error Handling

  - InvalidPayloadError - write data out of range or of the wrong type
  - EmptyResponseError - the reply carried no data
  - MalformedResponseError - a reply token violated the framing
  - OutOfRangeError - a packed register exceeded 16 bits
  - ControllerError - the controller answered E0, E1, ...
  - ClientClosedError - operation on a closed client

# Testing with PLC Simulator

	sim, err := gokeyence.NewPLCSimulator("127.0.0.1:0")
	if err != nil {
		log.Fatal(err)
	}
	defer sim.Close()

	client, _ := gokeyence.Dial(ctx, sim.Network(), sim.Addr().String())

For tests without sockets, sim.InlineClient(nil) answers through the same
command handler.
*/
package gokeyence
