package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/halcyonchess/halcyon/internal/engine"
	"github.com/halcyonchess/halcyon/internal/uci"
)

// Default weight file name searched for at startup.
const defaultNet = "halcyon.hlnw"

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	threads    = flag.Int("threads", 1, "search worker count")
	hashMB     = flag.Int("hash", 64, "transposition table size in MB")
)

func main() {
	flag.Parse()

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
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	n := *threads
	if n < 1 {
		n = 1
	}
	if n > runtime.NumCPU() {
		n = runtime.NumCPU()
	}

	eng, err := engine.NewEngine(n, *hashMB)
	if err != nil {
		log.Fatal("could not start engine: ", err)
	}
	defer eng.Close()

	if err := autoLoadNetwork(eng); err != nil {
		log.Printf("Warning: no weight file loaded: %v (using classical evaluation)", err)
	}

	protocol := uci.New(eng)
	protocol.Run(os.Stdin)
}

// autoLoadNetwork attempts to load weights from standard locations.
func autoLoadNetwork(eng *engine.Engine) error {
	searchPaths := []string{
		filepath.Join(getHomeDir(), ".halcyon"),
		"./nets",
		".",
	}

	for _, dir := range searchPaths {
		path := filepath.Join(dir, defaultNet)
		if !fileExists(path) {
			continue
		}
		if err := eng.LoadNetwork(path); err != nil {
			log.Printf("Failed to load weights from %s: %v", path, err)
			continue
		}
		return nil
	}
	return os.ErrNotExist
}

func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
