// Command profile captures pprof profiles of the column fill path under a
// synthetic CSV workload.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/ajitpratap0/quasar/pkg/ingest"
	"github.com/ajitpratap0/quasar/pkg/metrics"
	"github.com/ajitpratap0/quasar/pkg/source"
	"github.com/ajitpratap0/quasar/pkg/table"
)

func main() {
	var (
		duration     = flag.Duration("duration", 30*time.Second, "Profiling duration")
		rows         = flag.Int("rows", 100000, "Rows per synthetic table fill")
		outputDir    = flag.String("output", "./profiles", "Output directory for profiles")
		profileTypes = flag.String("types", "cpu,memory", "Profile types (cpu,memory,block,mutex,goroutine,all)")
		cpuFile      = flag.String("cpuprofile", "", "Write CPU profile to file")
		memFile      = flag.String("memprofile", "", "Write memory profile to file")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -types cpu -duration 30s -rows 500000\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -cpuprofile cpu.prof -memprofile mem.prof\n", os.Args[0])
	}

	flag.Parse()

	types := parseProfileTypes(*profileTypes)

	fmt.Printf("Profiling table fills...\n")
	fmt.Printf("Duration: %v\n", *duration)
	fmt.Printf("Rows per fill: %d\n", *rows)
	fmt.Printf("Profile types: %s\n", *profileTypes)
	fmt.Printf("Output directory: %s\n", *outputDir)

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	if *cpuFile != "" || contains(types, "cpu") {
		cpuProfileFile := *cpuFile
		if cpuProfileFile == "" {
			cpuProfileFile = fmt.Sprintf("%s/cpu.prof", *outputDir)
		}

		f, err := os.Create(cpuProfileFile)
		if err != nil {
			log.Fatalf("Failed to create CPU profile: %v", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("Failed to start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()

		fmt.Printf("CPU profiling enabled, writing to: %s\n", cpuProfileFile)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	runFillWorkload(ctx, *rows)

	if *memFile != "" || contains(types, "memory") {
		memProfileFile := *memFile
		if memProfileFile == "" {
			memProfileFile = fmt.Sprintf("%s/mem.prof", *outputDir)
		}

		f, err := os.Create(memProfileFile)
		if err != nil {
			log.Fatalf("Failed to create memory profile: %v", err)
		}
		defer f.Close()

		runtime.GC() // Get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatalf("Failed to write memory profile: %v", err)
		}

		fmt.Printf("Memory profile written to: %s\n", memProfileFile)
	}

	for _, profileType := range types {
		switch profileType {
		case "block":
			writeProfile("block", fmt.Sprintf("%s/block.prof", *outputDir))
		case "mutex":
			writeProfile("mutex", fmt.Sprintf("%s/mutex.prof", *outputDir))
		case "goroutine":
			writeProfile("goroutine", fmt.Sprintf("%s/goroutine.prof", *outputDir))
		}
	}

	fmt.Printf("Profiling completed successfully\n")
}

// runFillWorkload repeatedly parses a synthetic CSV source and fills a
// fresh table from it until the context expires. Every seventh price cell
// is empty so the fill also walks the null-handling path.
func runFillWorkload(ctx context.Context, rows int) {
	fmt.Printf("Running fill workload...\n")

	data := syntheticCSV(rows)
	start := time.Now()
	fills, total := 0, 0
	lat := metrics.NewLatencyTracker(4096)

	for {
		select {
		case <-ctx.Done():
			elapsed := time.Since(start).Seconds()
			if elapsed > 0 {
				fmt.Printf("Filled %d rows across %d tables (%.0f rows/sec)\n",
					total, fills, float64(total)/elapsed)
			}
			if fills > 0 {
				fmt.Printf("Fill latency p50=%v p95=%v p99=%v\n",
					lat.GetPercentile(50), lat.GetPercentile(95), lat.GetPercentile(99))
			}
			return
		default:
		}

		acc, err := source.NewCSVAccessor(bytes.NewReader(data), source.CSVOptions{Comma: ','})
		if err != nil {
			log.Fatalf("Failed to build accessor: %v", err)
		}

		loader := ingest.NewLoader(acc)
		if err := loader.Init(); err != nil {
			log.Fatalf("Failed to init loader: %v", err)
		}
		sch, err := loader.Schema()
		if err != nil {
			log.Fatalf("Failed to infer schema: %v", err)
		}
		n, err := loader.RowCount()
		if err != nil {
			log.Fatalf("Failed to count rows: %v", err)
		}

		tbl := table.New(n)
		fillStart := time.Now()
		if err := loader.FillTable(tbl, sch, "", 0, math.MaxUint32, false); err != nil {
			log.Fatalf("Fill failed: %v", err)
		}
		lat.Record(time.Since(fillStart))

		total += n
		fills++
	}
}

// syntheticCSV builds an in-memory CSV body with numeric, string and bool
// columns.
func syntheticCSV(rows int) []byte {
	var buf bytes.Buffer
	buf.WriteString("id,symbol,price,size,active\n")
	for i := 0; i < rows; i++ {
		price := fmt.Sprintf("%.4f", float64(i)*1.0001)
		if i%7 == 0 {
			price = ""
		}
		fmt.Fprintf(&buf, "%d,SYM%03d,%s,%d,%t\n", i, i%500, price, i%10000, i%2 == 0)
	}
	return buf.Bytes()
}

// writeProfile writes a runtime profile to file.
func writeProfile(profileName, filename string) {
	profile := pprof.Lookup(profileName)
	if profile == nil {
		fmt.Printf("Profile %s not found\n", profileName)
		return
	}

	f, err := os.Create(filename)
	if err != nil {
		log.Printf("Failed to create %s profile: %v", profileName, err)
		return
	}
	defer f.Close()

	if err := profile.WriteTo(f, 0); err != nil {
		log.Printf("Failed to write %s profile: %v", profileName, err)
		return
	}

	fmt.Printf("%s profile written to: %s\n", profileName, filename)
}

// parseProfileTypes parses the profile types string.
func parseProfileTypes(typesStr string) []string {
	if typesStr == "all" {
		return []string{"cpu", "memory", "block", "mutex", "goroutine"}
	}

	parts := strings.Split(typesStr, ",")
	types := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "cpu", "memory", "mem", "block", "mutex", "goroutine":
			if part == "mem" {
				part = "memory"
			}
			types = append(types, part)
		}
	}

	return types
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
