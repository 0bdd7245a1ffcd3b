// ABOUTME: Console walkthrough for record, export, reload, and playback
// ABOUTME: Parses CLI flags and drives the recorder, loader, and pool interactively
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/clipkit/clipkit-go/pkg/loader"
	"github.com/clipkit/clipkit-go/pkg/pool"
	"github.com/clipkit/clipkit-go/pkg/recorder"
)

var outPath = flag.String("out", "output.wav", "Path for the exported recording")

func main() {
	flag.Parse()

	stdin := bufio.NewScanner(os.Stdin)

	rec, err := recorder.NewDefault()
	if err != nil {
		log.Fatalf("Failed to create recorder: %v", err)
	}

	fmt.Println("Press enter to start recording...")
	stdin.Scan()
	rec.Start()

	fmt.Println("Recording. Press enter to stop...")
	stdin.Scan()
	rec.Stop()

	c, err := rec.Clip()
	if err != nil {
		log.Fatalf("No recording captured: %v", err)
	}
	log.Printf("Captured %d bytes (%.2fs)", c.Size(), c.Duration())

	if err := c.Export(*outPath); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	log.Printf("Exported recording to %s", *outPath)

	// Reload through the loader and play it back via the pool.
	abs, err := filepath.Abs(*outPath)
	if err != nil {
		log.Fatalf("Resolve %s: %v", *outPath, err)
	}

	l := loader.New()
	loaded, err := l.LoadAbsolute(abs)
	if err != nil {
		log.Fatalf("Failed to load %s: %v", abs, err)
	}

	p := pool.New()
	id := p.Submit(loaded)
	fmt.Printf("Playing clip %d (%.2fs)...\n", id, loaded.Duration())

	for p.Contains(id) && p.IsPlaying(id) {
		time.Sleep(100 * time.Millisecond)
	}

	p.StopAll()
	fmt.Println("Done.")
}
