// geigersim runs the full random number pipeline against the simulated
// detector and prints hex sessions on stdout, the way the hardware does
// on its serial port. In triggered mode, pressing Enter stands in for
// the pushbutton; continuous mode streams sessions until interrupted.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/RyanPierce/GeigerRNG/config"
	"github.com/RyanPierce/GeigerRNG/decaysim"
	"github.com/RyanPierce/GeigerRNG/geiger"
)

// limitSink counts terminators and stops the run after the requested
// number of sessions.
type limitSink struct {
	geiger.ByteSink
	remaining int
	stop      func()
}

func (s *limitSink) WriteTerminator() error {
	if err := s.ByteSink.WriteTerminator(); err != nil {
		return err
	}
	s.remaining--
	if s.remaining == 0 {
		s.stop()
	}
	return nil
}

func main() {
	configPath := flag.String("config", "", "path to TOML config (defaults match the hardware)")
	sessions := flag.Int("sessions", 0, "stop after this many sessions (0 = run until Ctrl+C)")
	seed := flag.Uint64("seed", 0, "simulator seed (0 = random)")
	cps := flag.Float64("cps", decaysim.DefaultPulsesPerSecond, "simulated detector counts per second")
	raceProb := flag.Float64("race", 0, "probability of a fine/coarse counter race per pulse")
	realtime := flag.Bool("realtime", false, "pace pulses at wall-clock speed")
	ackDelay := flag.Duration("ack", 0, "acknowledgment duration per byte (e.g. 10ms)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
	}

	src, err := decaysim.New(decaysim.Config{
		Seed:            *seed,
		PulsesPerSecond: *cps,
		RaceProbability: *raceProb,
		Realtime:        *realtime,
	})
	if err != nil {
		log.Fatalf("simulator: %v", err)
	}

	gen := geiger.NewGenerator(cfg.Generator())

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	var sink geiger.ByteSink = geiger.NewHexWriter(&lineFlusher{w: out})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if *sessions > 0 {
		sink = &limitSink{ByteSink: sink, remaining: *sessions, stop: cancel}
	}

	var ack func()
	if *ackDelay > 0 {
		ack = func() { time.Sleep(*ackDelay) }
	}
	sess := geiger.NewSession(gen, sink, ack)

	go func() {
		if err := src.Run(ctx, gen); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("simulator stopped: %v", err)
			cancel()
		}
	}()

	if !gen.Continuous() {
		log.Printf("triggered mode: press Enter to start a %d-byte session", gen.SessionLength())
		go watchTrigger(ctx, gen)
	}

	if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("session: %v", err)
	}
}

// watchTrigger turns Enter keypresses into trigger events. Repeated
// presses while a session is running are ignored by the generator, just
// like a bouncing pushbutton.
func watchTrigger(ctx context.Context, gen *geiger.Generator) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !gen.Trigger() {
			log.Print("session already in progress")
		}
	}
}

// lineFlusher flushes the buffered writer after every write so hex pairs
// appear as they are produced.
type lineFlusher struct {
	w *bufio.Writer
}

func (l *lineFlusher) Write(p []byte) (int, error) {
	n, err := l.w.Write(p)
	if err != nil {
		return n, err
	}
	return n, l.w.Flush()
}
