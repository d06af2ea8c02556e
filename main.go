package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/wildstyl3r/gbeam/internal/config"
	"github.com/wildstyl3r/gbeam/internal/model"
	"github.com/wildstyl3r/gbeam/internal/optics"
	"github.com/wildstyl3r/gbeam/internal/render"
	"github.com/wildstyl3r/gbeam/internal/utils"
)

type job struct {
	name       string
	parameters config.RunParameters
}

type outcome struct {
	job
	result model.Result
	err    error
}

func main() {
	dataFlags := model.NewDataFlags(flag.CommandLine)
	var configFileNamePointer = flag.String("input", "beam", "run configuration in toml format")
	var threads = flag.Int("threads", runtime.NumCPU(), "runs simulated in parallel")
	var verbose = flag.Bool("v", false, "log element crossings")
	var savePNG = flag.Bool("png", false, "save the beam envelope as png")
	var printASCII = flag.Bool("ascii", false, "print the beam envelope to the terminal")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	optics.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	startTime := time.Now()
	fmt.Printf("Current time: %s\n", startTime.UTC().Format(time.UnixDate))

	configFileName := strings.TrimSuffix(*configFileNamePointer, ".toml")
	cfg, meta, err := config.LoadConfig(configFileName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, key := range config.UnknownKeys(meta) {
		optics.Logger().Warn("unknown configuration key", slog.String("key", key.String()))
	}

	outputPath := ""
	if cfg.OutputDir != "" && cfg.OutputDir != "." {
		if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		outputPath += cfg.OutputDir + "/"
	}
	dataFlags.SetOutputPath(outputPath)

	var jobs []job
	failed := false
	for _, name := range cfg.RunNames() {
		parameters := cfg.Runs[name]
		if err := parameters.CheckAndUnify(name, &cfg, &meta); err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed = true
			continue
		}
		jobs = append(jobs, job{name, parameters})
	}

	outcomes := simulate(jobs, max(*threads, 1))

	var summary utils.CSV
	for _, o := range outcomes {
		fmt.Println("\n" + o.name)
		if o.err != nil {
			fmt.Fprintf(os.Stderr, "run %s: %v\n", o.name, o.err)
			failed = true
			continue
		}
		de := model.NewDataExtractor(&o.result, o.parameters)
		if err := de.Save(o.name, dataFlags); err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed = true
		}
		summary = append(summary, de.Summary(o.name))
		if *printASCII {
			fmt.Println(render.ASCII(o.result.Positions, o.result.Radius, 80, 12))
		}
		if *savePNG {
			path := filepath.Join(dataFlags.GetOutputPath(), o.name+".png")
			if err := render.Envelope(path, o.result.Positions, o.result.Radius, o.result.Elements, render.DefaultOptions); err != nil {
				fmt.Fprintln(os.Stderr, err)
				failed = true
			}
		}
	}
	if len(summary) > 0 {
		if err := utils.WriteAsCSV(summary, outputPath, "summary", configFileName, model.SummaryColumns); err != nil {
			fmt.Fprintln(os.Stderr, "unable to save summary:", err)
			failed = true
		}
	}
	fmt.Printf("Elapsed time: %v\n", time.Since(startTime))
	if failed {
		os.Exit(1)
	}
}

// simulate runs every job on a pool of workers and returns the outcomes
// in job order.
func simulate(jobs []job, threads int) []outcome {
	outcomes := make([]outcome, len(jobs))
	computeflow := make(chan int)
	var wg sync.WaitGroup
	for range threads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range computeflow {
				o := outcome{job: jobs[i]}
				m, err := model.FromParameters(jobs[i].parameters)
				if err == nil {
					o.result, err = m.Run()
				}
				o.err = err
				outcomes[i] = o
			}
		}()
	}
	for i := range jobs {
		computeflow <- i
	}
	close(computeflow)
	wg.Wait()
	return outcomes
}
