// Command kelp-uci is the UCI entry point: it wires up logging, constructs
// the engine, and hands stdin/stdout to the protocol loop.
package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/kelp/internal/engine"
	"github.com/hailam/kelp/internal/enginelog"
	"github.com/hailam/kelp/internal/uci"
)

const defaultHashMB = 64

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()

	enginelog.Configure()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	eng := engine.NewEngine(defaultHashMB)

	protocol := uci.New(eng)
	protocol.Run()
}
