/*------------------------------------------------------------------------------
* main.go : console-mode receiver-synchronous observables engine
*
*          Copyright (C) 2022-2025 by feng xuebin, All rights reserved.
*
*-----------------------------------------------------------------------------*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/odrisci/gnss-sdr/dump"
	"github.com/odrisci/gnss-sdr/gnsstime"
	"github.com/odrisci/gnss-sdr/observables"
)

var help []string = []string{
	"",
	" usage: gnss-observables [-channels n] [-rate hz] [-dump file] [-dump-mat file] [-mirror port#baud]",
	"",
	" Reads whitespace-separated lines from stdin, one of two kinds:",
	"",
	"   chan prn sys sig freqnum sample_count sample_rate week tow_ms code_phase doppler_hz phase_cyc valid_word",
	"     a tracking channel's report, aligned onto the receiver time grid.",
	"",
	"   corr delta_seconds",
	"     a scalar PVT clock correction (the pvt_to_observables message port).",
	"",
	" Epochs are written to a binary dump file and/or mirrored live over a",
	" serial port at the configured rate. Stop with ctrl-c.",
	"",
	" -channels n       number of tracking channels (default 12)",
	" -rate hz          observable output rate in Hz (default 50)",
	" -transit ms       nominal bootstrap transit time in ms (default 70)",
	" -dump file        binary observable dump file path",
	" -dump-mat file    also render the dump as a text matrix on exit",
	" -mirror port#baud live-mirror epochs over a serial port, e.g. /dev/ttyUSB0#115200",
	"",
}

func printHelp() {
	for _, s := range help {
		fmt.Fprintln(os.Stderr, s)
	}
}

func systemFromCode(code string) gnsstime.System {
	switch strings.ToUpper(code) {
	case "G", "GPS":
		return gnsstime.Gps
	case "E", "GAL":
		return gnsstime.Galileo
	case "R", "GLO":
		return gnsstime.Glonass
	case "C", "BDS":
		return gnsstime.BeiDou
	case "J", "QZS":
		return gnsstime.Qzss
	case "I", "IRN":
		return gnsstime.Irnss
	case "S", "SBS":
		return gnsstime.Sbas
	default:
		return gnsstime.Gps
	}
}

func main() {
	channels := flag.Int("channels", 12, "")
	rateHz := flag.Float64("rate", 50.0, "")
	transitMs := flag.Float64("transit", 70.0, "")
	dumpFile := flag.String("dump", "", "")
	dumpMatFile := flag.String("dump-mat", "", "")
	mirror := flag.String("mirror", "", "")
	flag.Usage = printHelp
	flag.Parse()

	cfg := observables.DefaultConfig()
	cfg.RateHz = *rateHz
	cfg.NominalTransitTimeMs = *transitMs

	var sinks dump.MultiSink
	var binSink *dump.Sink

	if *dumpFile != "" {
		s, err := dump.NewSink(*dumpFile)
		if err != nil {
			log.Fatalf("gnss-observables: %v", err)
		}
		binSink = s
		sinks = append(sinks, s)
	}

	if *mirror != "" {
		parts := strings.SplitN(*mirror, "#", 2)
		baud := 115200
		if len(parts) == 2 {
			if b, err := strconv.Atoi(parts[1]); err == nil {
				baud = b
			}
		}
		s, err := dump.OpenStreamSink(parts[0], baud)
		if err != nil {
			log.Fatalf("gnss-observables: %v", err)
		}
		defer s.Close()
		sinks = append(sinks, s)
	}

	var sink observables.Sink
	if len(sinks) > 0 {
		sink = sinks
	}

	const instanceID = uint32(0)

	converter := gnsstime.NewTimeConverter()
	engine := observables.NewObservablesEngine(converter, instanceID, cfg, sink)
	engine.SetChannelCount(*channels)

	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-interrupted
		if binSink != nil {
			if err := binSink.Close(); err != nil {
				log.Printf("gnss-observables: closing dump file: %v", err)
			}
			if *dumpMatFile != "" {
				if err := dump.WriteMatrix(*dumpFile, *dumpMatFile); err != nil {
					log.Printf("gnss-observables: writing matrix export: %v", err)
				}
			}
		}
		os.Exit(0)
	}()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / cfg.RateHz))
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			if err := engine.FlushEpoch(engine.NextEpochTime()); err != nil {
				log.Printf("gnss-observables: flush epoch: %v", err)
			}
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if strings.EqualFold(fields[0], "corr") {
			readClockCorrection(engine, fields)
			continue
		}
		if len(fields) < 12 {
			continue
		}
		readMeasurement(engine, fields, instanceID)
	}

	if binSink != nil {
		if err := binSink.Close(); err != nil {
			log.Printf("gnss-observables: closing dump file: %v", err)
		}
		if *dumpMatFile != "" {
			if err := dump.WriteMatrix(*dumpFile, *dumpMatFile); err != nil {
				log.Printf("gnss-observables: writing matrix export: %v", err)
			}
		}
	}
}

// readClockCorrection handles a "corr delta_seconds" stdin line: the
// message port pvt_to_observables (spec.md §6), here modelled as a typed
// line on the same stream rather than an untyped side channel (spec.md §9:
// "re-architect as a typed channel carrying a sum type"). Anything that
// doesn't parse as a scalar float is logged and dropped, matching
// BadCorrectionMessage in the error taxonomy.
func readClockCorrection(engine *observables.ObservablesEngine, fields []string) {
	if len(fields) < 2 {
		log.Printf("gnss-observables: malformed clock correction line ignored")
		return
	}
	delta, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		log.Printf("gnss-observables: clock correction %q is not a scalar float, dropped", fields[1])
		return
	}
	engine.HandlePvtClockCorrection(delta)
}

func readMeasurement(engine *observables.ObservablesEngine, fields []string, instanceID uint32) {
	chanID, _ := strconv.Atoi(fields[0])
	prn, _ := strconv.Atoi(fields[1])
	sys := systemFromCode(fields[2])
	sig := observables.Signal(fields[3][0])
	freqNum, _ := strconv.Atoi(fields[4])
	sampleCount, _ := strconv.ParseInt(fields[5], 10, 64)
	sampleRate, _ := strconv.ParseFloat(fields[6], 64)
	week, _ := strconv.ParseInt(fields[7], 10, 64)
	towMs, _ := strconv.ParseFloat(fields[8], 64)
	codePhase, _ := strconv.ParseFloat(fields[9], 64)
	dopplerHz, _ := strconv.ParseFloat(fields[10], 64)
	phaseCyc, _ := strconv.ParseFloat(fields[11], 64)
	validWord := true
	if len(fields) > 12 {
		validWord = fields[12] != "0"
	}

	m := observables.ChannelMeasurement{
		ChannelID:             chanID,
		PRN:                   prn,
		System:                sys,
		Signal:                sig,
		FreqNum:               freqNum,
		SampleRateHz:          sampleRate,
		TrackingSampleCounter: sampleCount,
		Week:                  week,
		TowMs:                 towMs,
		CodePhaseSamples:      codePhase,
		ValidWord:             validWord,
		CarrierDopplerHz:      dopplerHz,
		CarrierPhaseCyc:       phaseCyc,
	}
	engine.HandleChannelMeasurement(m)
}
