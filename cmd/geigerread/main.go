// geigerread reads random bytes from a GeigerRNG kit over its serial
// cable. It can read a fixed byte count once, one complete session, or
// batches at a fixed interval.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/RyanPierce/GeigerRNG/kitserial"
)

func main() {
	port := flag.String("port", "", "serial port (empty = autodetect the FTDI cable)")
	byteCount := flag.Int("bytes", 64, "number of random bytes to read per batch")
	session := flag.Bool("session", false, "read one complete session instead of a byte count")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall read timeout")
	interval := flag.Duration("interval", 0, "interval between batches (e.g. 2s). 0 for one-shot")
	flag.Parse()

	if *port == "" {
		present, err := kitserial.Detect()
		if err != nil {
			log.Fatalf("detect error: %v", err)
		}
		if !present {
			log.Fatal("GeigerRNG cable not found")
		}
	}

	if *session {
		data, err := kitserial.ReadSession(*port, *timeout)
		if err != nil {
			log.Fatalf("read error: %v", err)
		}
		fmt.Printf("session of %d bytes\n", len(data))
		fmt.Printf("%s\n", hex.EncodeToString(data))
		return
	}

	if *interval == 0 {
		data, err := kitserial.ReadBytes(*port, *byteCount, *timeout)
		if err != nil {
			log.Fatalf("read error: %v", err)
		}
		fmt.Printf("%s\n", hex.EncodeToString(data))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	log.Printf("reading %d bytes every %s. press Ctrl+C to stop...", *byteCount, interval.String())
	err := kitserial.CollectAtInterval(ctx, *port, *byteCount, *interval, func(b []byte) {
		fmt.Printf("%s  %s\n", time.Now().Format(time.RFC3339), hex.EncodeToString(b))
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("collect error: %v", err)
	}
}
