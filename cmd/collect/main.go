// collect captures batches of random bytes at a fixed interval into a
// paired .bin (raw bytes) and .csv (timestamp, ones count) file, named
// by the naming convention so the spreadsheet exporter can recover the
// sample parameters. The source is either the simulated detector or a
// real kit on its serial cable.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/bits"
	"os"
	"os/signal"
	"time"

	"github.com/RyanPierce/GeigerRNG/config"
	"github.com/RyanPierce/GeigerRNG/decaysim"
	"github.com/RyanPierce/GeigerRNG/geiger"
	"github.com/RyanPierce/GeigerRNG/kitserial"
	"github.com/RyanPierce/GeigerRNG/naming"
)

// countOnes returns the number of set bits in buf.
func countOnes(buf []byte) int {
	total := 0
	for _, b := range buf {
		total += bits.OnesCount8(b)
	}
	return total
}

// chanSink feeds produced bytes into a channel. The blocking send is the
// backpressure: while the consumer lags, the generator stays parked in
// ByteReady and the simulator's timeline waits with it.
type chanSink struct {
	ctx context.Context
	ch  chan<- byte
}

func (s *chanSink) WriteRandomByte(b byte) error {
	select {
	case s.ch <- b:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

func (s *chanSink) WriteTerminator() error { return nil }

// startSim wires up a continuous simulated pipeline and returns a batch
// reader over it.
func startSim(ctx context.Context, cfg config.Config, seed uint64, cps float64, byteCount int) (func(context.Context) ([]byte, error), error) {
	src, err := decaysim.New(decaysim.Config{Seed: seed, PulsesPerSecond: cps})
	if err != nil {
		return nil, err
	}

	gc := cfg.Generator()
	gc.Continuous = true
	gen := geiger.NewGenerator(gc)

	ch := make(chan byte, byteCount)
	sess := geiger.NewSession(gen, &chanSink{ctx: ctx, ch: ch}, nil)
	go func() { _ = sess.Run(ctx) }()
	go func() { _ = src.Run(ctx, gen) }()

	return func(ctx context.Context) ([]byte, error) {
		buf := make([]byte, 0, byteCount)
		for len(buf) < byteCount {
			select {
			case b := <-ch:
				buf = append(buf, b)
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return buf, nil
	}, nil
}

func main() {
	deviceFlag := flag.String("device", "sim", "byte source: sim|geiger")
	byteCount := flag.Int("bytes", 64, "bytes per sample (required > 0)")
	intervalSec := flag.Int("interval", 60, "interval between samples in seconds (required > 0)")
	outDir := flag.String("outdir", "data", "output directory for files")
	configPath := flag.String("config", "", "path to TOML config")
	seed := flag.Uint64("seed", 0, "simulator seed (0 = random)")
	cps := flag.Float64("cps", decaysim.DefaultPulsesPerSecond, "simulated counts per second")
	flag.Parse()

	if *byteCount <= 0 {
		log.Fatal("-bytes must be > 0")
	}
	if *intervalSec <= 0 {
		log.Fatal("-interval must be > 0")
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
	}

	var dev naming.Device
	switch *deviceFlag {
	case string(naming.DeviceSim):
		dev = naming.DeviceSim
	case string(naming.DeviceGeiger):
		dev = naming.DeviceGeiger
	default:
		log.Fatalf("invalid -device: %s (allowed: sim, geiger)", *deviceFlag)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("creating outdir: %v", err)
	}

	bitCount := *byteCount * 8
	binPath, csvPath, err := naming.BuildBinCSVPaths(*outDir, time.Now(), dev, bitCount, *intervalSec)
	if err != nil {
		log.Fatalf("build filenames: %v", err)
	}

	binFile, err := os.OpenFile(binPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		log.Fatalf("open bin file: %v", err)
	}
	defer func() { _ = binFile.Close() }()
	binBuf := bufio.NewWriter(binFile)
	defer binBuf.Flush()

	csvFile, err := os.OpenFile(csvPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		log.Fatalf("open csv file: %v", err)
	}
	defer func() { _ = csvFile.Close() }()
	csvBuf := bufio.NewWriter(csvFile)
	defer csvBuf.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var readBatch func(context.Context) ([]byte, error)
	switch dev {
	case naming.DeviceSim:
		readBatch, err = startSim(ctx, cfg, *seed, *cps, *byteCount)
		if err != nil {
			log.Fatalf("sim: %v", err)
		}
	case naming.DeviceGeiger:
		if cfg.Detector.Port == "" {
			present, derr := kitserial.Detect()
			if derr != nil {
				log.Fatalf("detect: %v", derr)
			}
			if !present {
				log.Fatal("GeigerRNG cable not found")
			}
		}
		budget := time.Duration(*intervalSec)*time.Second + 30*time.Second
		readBatch = func(ctx context.Context) ([]byte, error) {
			return kitserial.ReadBytes(cfg.Detector.Port, *byteCount, budget)
		}
	}

	interval := time.Duration(*intervalSec) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("collecting %d bytes every %s from %s", *byteCount, interval.String(), string(dev))
	sampleNum := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		batch, rerr := readBatch(ctx)
		if rerr != nil {
			if !errors.Is(rerr, context.Canceled) {
				log.Printf("read error: %v", rerr)
			}
			return
		}

		if _, werr := binBuf.Write(batch); werr != nil {
			log.Fatalf("write bin: %v", werr)
		}
		_ = binBuf.Flush()

		ones := countOnes(batch)
		sampleNum++
		ts := time.Now().Format("20060102T15:04:05")
		if _, werr := fmt.Fprintf(csvBuf, "%s,%d\n", ts, ones); werr != nil {
			log.Fatalf("write csv: %v", werr)
		}
		_ = csvBuf.Flush()

		fmt.Printf("sample %d: ones=%d/%d at %s\n", sampleNum, ones, bitCount, ts)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
