package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"jpegscaler/internal/config"
	"jpegscaler/internal/pipeline"
	"jpegscaler/internal/scale"
	"jpegscaler/internal/storage"
	"jpegscaler/internal/worker"
)

const (
	programName = "jpegscaler"
	version     = "1.0.0"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	input, output                      string
	width, height, maxWidth, maxHeight int
	quality                            float64
	verbose, help, version             bool
}

func newFlagSet(opts *options, defaultQuality float64) *flag.FlagSet {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)

	for _, name := range []string{"i", "input"} {
		fs.StringVar(&opts.input, name, "", "Input JPEG file path")
	}
	for _, name := range []string{"o", "output"} {
		fs.StringVar(&opts.output, name, "", "Output JPEG file path (a directory when several inputs are given, default $OUTPUT_DIR)")
	}
	for _, name := range []string{"w", "width"} {
		fs.IntVar(&opts.width, name, 0, "Target width in pixels")
	}
	for _, name := range []string{"h", "height"} {
		fs.IntVar(&opts.height, name, 0, "Target height in pixels")
	}
	for _, name := range []string{"mw", "max-width"} {
		fs.IntVar(&opts.maxWidth, name, 0, "Maximum width in pixels (maintains aspect ratio)")
	}
	for _, name := range []string{"mh", "max-height"} {
		fs.IntVar(&opts.maxHeight, name, 0, "Maximum height in pixels (maintains aspect ratio)")
	}
	for _, name := range []string{"q", "quality"} {
		fs.Float64Var(&opts.quality, name, defaultQuality, fmt.Sprintf("JPEG quality (0.0 to 1.0, default: %v)", defaultQuality))
	}
	for _, name := range []string{"v", "verbose"} {
		fs.BoolVar(&opts.verbose, name, false, "Enable verbose output")
	}
	fs.BoolVar(&opts.help, "help", false, "Show help message")
	fs.BoolVar(&opts.version, "version", false, "Show version information")
	return fs
}

func printHelp(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "usage: %s -i <input> -o <output> [options] [more inputs...]\n", programName)
	fmt.Fprintln(w, "A command line tool for scaling JPEG images")
	fmt.Fprintln(w)
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintf(w, "  %s -i input.jpg -o output.jpg -w 800 -h 600\n", programName)
	fmt.Fprintf(w, "  %s -i input.jpg -o output.jpg --max-width 1024\n", programName)
	fmt.Fprintf(w, "  %s -i input.jpg -o output.jpg -w 800 -q 0.9 -v\n", programName)
	fmt.Fprintf(w, "  %s -i a.jpg -o thumbs/ -mw 256 b.jpg c.jpg\n", programName)
	fmt.Fprintf(w, "  %s -i a.jpg -mw 256 b.jpg   (batch into $OUTPUT_DIR)\n", programName)
}

// run is main without the process exit, returning the exit status.
func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	var opts options
	fs := newFlagSet(&opts, cfg.Quality)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "Error parsing command line arguments: %v\n", err)
		printHelp(stderr, fs)
		return 1
	}

	if opts.help {
		printHelp(stdout, fs)
		return 0
	}
	if opts.version {
		fmt.Fprintf(stdout, "%s version %s\n", programName, version)
		return 0
	}

	inputs := append([]string{opts.input}, fs.Args()...)
	batch := len(inputs) > 1

	// a batch without -o writes into OUTPUT_DIR
	if batch && opts.output == "" {
		opts.output = cfg.OutputDir
	}
	if opts.input == "" || opts.output == "" {
		fmt.Fprintln(stderr, "Error: Both input and output files are required.")
		printHelp(stderr, fs)
		return 1
	}
	if opts.width == 0 && opts.height == 0 && opts.maxWidth == 0 && opts.maxHeight == 0 {
		fmt.Fprintln(stderr, "Error: At least one dimension parameter is required (width, height, max-width, or max-height).")
		printHelp(stderr, fs)
		return 1
	}

	req, err := scale.ParseRequest(opts.width, opts.height, opts.maxWidth, opts.maxHeight)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	quality := pipeline.Quality(opts.quality)
	if err := quality.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// worker and pipeline log through the standard logger
	if opts.verbose {
		defer swapLogOutput(stderr)()
	} else {
		defer swapLogOutput(io.Discard)()
	}

	// local files are not uploads
	cfg.MaxUploadBytes = 0

	outDir := filepath.Dir(opts.output)
	if batch {
		outDir = opts.output
	}
	store := storage.New(outDir)

	w := worker.NewWorker(store, cfg, min(len(inputs), runtime.NumCPU()))
	// only OUTPUT_DIR belongs to us; other output dirs are the user's
	if batch && filepath.Clean(outDir) == filepath.Clean(cfg.OutputDir) {
		w.SweepStaleTemp()
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	jobs := make([]worker.Job, len(inputs))
	for i, in := range inputs {
		jobs[i] = worker.Job{ID: int64(i + 1), Input: in, Request: req, Quality: quality}
		if !batch {
			jobs[i].Output = opts.output
		}
		if opts.verbose {
			printInputDetails(stdout, stderr, jobs[i], store, quality)
		}
	}

	// read only after Results is closed
	var submitErr error
	go func() {
		for _, job := range jobs {
			if err := w.Submit(job); err != nil {
				submitErr = fmt.Errorf("%s: %w", job.Input, err)
				break
			}
		}
		w.Stop()
	}()

	failed := 0
	for res := range w.Results() {
		if res.Err != nil {
			failed++
			reportError(stderr, res, batch)
			continue
		}
		if opts.verbose {
			fmt.Fprintf(stdout, "Scaled dimensions: %s\n", res.Target)
		}
	}

	if submitErr != nil {
		fmt.Fprintf(stderr, "Error: %v\n", submitErr)
		return 1
	}
	if failed > 0 {
		if batch {
			fmt.Fprintf(stderr, "Error: %d of %d images failed\n", failed, len(inputs))
		}
		return 1
	}
	fmt.Fprintln(stdout, "Image scaling completed successfully!")
	return 0
}

func printInputDetails(stdout, stderr io.Writer, job worker.Job, store *storage.Storage, quality pipeline.Quality) {
	out := job.Output
	if out == "" {
		out = store.PathFor(job.Input)
	}
	fmt.Fprintf(stdout, "Input file: %s\n", absPath(job.Input))
	fmt.Fprintf(stdout, "Output file: %s\n", absPath(out))
	fmt.Fprintf(stdout, "Quality: %v\n", float64(quality))

	data, err := os.ReadFile(job.Input)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: Could not read original image dimensions: %v\n", err)
		return
	}
	d, err := pipeline.Measure(data)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: Could not read original image dimensions: %v\n", err)
		return
	}
	fmt.Fprintf(stdout, "Original dimensions: %s\n", d)
	fmt.Fprintf(stdout, "Scaling: %s\n", job.Request)
}

func reportError(stderr io.Writer, res worker.Result, batch bool) {
	prefix := "Error processing image"
	if errors.Is(res.Err, scale.ErrInvalidDimensions) || errors.Is(res.Err, pipeline.ErrInvalidQuality) {
		prefix = "Error"
	}
	if batch {
		fmt.Fprintf(stderr, "%s: %s: %v\n", prefix, res.Job.Input, res.Err)
		return
	}
	fmt.Fprintf(stderr, "%s: %v\n", prefix, res.Err)
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func swapLogOutput(w io.Writer) (restore func()) {
	prev := log.Writer()
	log.SetOutput(w)
	return func() { log.SetOutput(prev) }
}
