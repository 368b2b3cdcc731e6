package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/EzraMarks/obsidian-image-converter/core"
	"github.com/EzraMarks/obsidian-image-converter/core/exifcodec"
	"github.com/EzraMarks/obsidian-image-converter/core/jpg"
	"github.com/EzraMarks/obsidian-image-converter/core/scan"
	"github.com/EzraMarks/obsidian-image-converter/core/source"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "extract":
		err = runExtract(os.Args[2:])
	case "stamp":
		err = runStamp(os.Args[2:])
	case "view":
		err = runView(os.Args[2:])
	case "scan":
		err = runScan(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err != nil {
		core.PrintError(err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `Usage: imgmeta <command> [options] <path>

Commands:
  extract   Print the date taken and original-filename annotation of a JPEG
  stamp     Record a file's original name inside its EXIF user comment
  view      List every EXIF field found in a JPEG
  scan      Walk a directory or S3 bucket and report annotation coverage

Run 'imgmeta <command> -h' for command options.
`)
}

func verboseFlag(fs *flag.FlagSet) *bool {
	return fs.Bool("v", false, "Enable debug logging")
}

func applyVerbosity(verbose bool) {
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// readFileHeader reads at most the header window from the start of a
// file. Smaller files come back whole.
func readFileHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, core.HeaderBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return buf[:n], nil
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "Emit JSON instead of text")
	verbose := verboseFlag(fs)
	fs.Parse(args)
	applyVerbosity(*verbose)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: imgmeta extract [-json] <image.jpg>")
	}
	file := fs.Arg(0)

	head, err := readFileHeader(file)
	if err != nil {
		return err
	}
	if !core.IsJPEG(head) {
		return fmt.Errorf("%s: not a JPEG file", file)
	}

	ex := core.ExtractMetadata(head, exifcodec.New())
	core.NewPrinter(*jsonOut).PrintExtraction(file, ex)
	return nil
}

func runStamp(args []string) error {
	fs := flag.NewFlagSet("stamp", flag.ExitOnError)
	name := fs.String("name", "", "Original filename to record (default: the file's own base name)")
	outPath := fs.String("out", "", "Write the result to this path instead of in place")
	verbose := verboseFlag(fs)
	fs.Parse(args)
	applyVerbosity(*verbose)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: imgmeta stamp [-name NAME] [-out PATH] <image.jpg>")
	}
	file := fs.Arg(0)

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	if !core.IsJPEG(data) {
		return fmt.Errorf("%s: not a JPEG file", file)
	}

	fileName := *name
	if fileName == "" {
		fileName = filepath.Base(file)
	}

	codec := exifcodec.New()
	container, err := codec.Parse(data)
	if err != nil {
		// No parseable EXIF means no date-taken tag either, which the
		// writer treats as a no-op.
		log.Debug().Err(err).Str("file", file).Msg("no exif container found")
		container = core.Container{}
	}

	p := core.NewPrinter(false)
	before, _ := container.Exif().Text(core.TagUserComment)
	core.EncodeOriginalFilename(fileName, container)
	after, _ := container.Exif().Text(core.TagUserComment)
	if before == after {
		p.PrintInfo("nothing to do: annotation already present or no date-taken tag")
		return nil
	}

	out, err := codec.Dump(container, data)
	if err != nil {
		return fmt.Errorf("rewrite exif: %w", err)
	}

	dst := core.ResolveOutPath(file, *outPath)
	if err := os.WriteFile(dst, out, 0644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	p.PrintSuccess(fmt.Sprintf("recorded %q in %s", fileName, dst))
	return nil
}

func runView(args []string) error {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	jsonOut := fs.Bool("json", false, "Emit JSON instead of text")
	verbose := verboseFlag(fs)
	fs.Parse(args)
	applyVerbosity(*verbose)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: imgmeta view [-json] <image.jpg>")
	}
	file := fs.Arg(0)

	if id, ok := core.ExtFormat(file); !ok || id != core.FmtJPEG {
		return fmt.Errorf("%s: only JPEG files are supported", file)
	}

	m, err := jpg.View(file)
	if err != nil {
		return err
	}
	core.NewPrinter(*jsonOut).PrintMetadata(m)
	return nil
}

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to the YAML config file")
	workers := fs.Int("workers", 0, "Number of concurrent workers (0 = one per CPU)")
	useCache := fs.Bool("cache", false, "Cache extraction results between runs")
	useExiftool := fs.Bool("exiftool", false, "Probe stubborn files with a local exiftool binary")
	useS3 := fs.Bool("s3", false, "Scan the configured S3 bucket instead of a directory")
	jsonOut := fs.Bool("json", false, "Emit the report as JSON")
	verbose := verboseFlag(fs)
	fs.Parse(args)
	applyVerbosity(*verbose)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *workers == 0 {
		*workers = cfg.Scan.Workers
	}
	cacheOn := *useCache || cfg.Scan.Cache
	exiftoolOn := *useExiftool || cfg.Scan.Exiftool

	var (
		src       source.Source
		cacheRoot string
	)
	if *useS3 {
		if cfg.S3 == nil {
			return fmt.Errorf("-s3 requires an s3 block in %s", defaultConfigPath())
		}
		bucket, err := source.NewBucket(*cfg.S3)
		if err != nil {
			return err
		}
		src = bucket
		if dir, err := os.UserCacheDir(); err == nil {
			cacheRoot = filepath.Join(dir, "imgmeta", cfg.S3.Bucket)
		}
	} else {
		dir := fs.Arg(0)
		if dir == "" {
			dir = "."
		}
		src = source.NewDir(dir)
		cacheRoot = dir
	}

	opts := scan.Options{Workers: *workers}
	if cacheOn {
		if cacheRoot == "" {
			log.Warn().Msg("no usable cache location, scanning uncached")
		} else if c, err := scan.OpenCache(cacheRoot); err != nil {
			log.Warn().Err(err).Msg("cache unavailable, scanning uncached")
		} else {
			defer c.Close()
			opts.Cache = c
		}
	}
	if exiftoolOn {
		prober := scan.NewExiftoolProber()
		defer prober.Close()
		opts.Prober = prober
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := scan.Run(ctx, src, exifcodec.New(), opts)
	if err != nil {
		return err
	}

	p := core.NewPrinter(*jsonOut)
	if *jsonOut {
		p.PrintJSON(report)
		return nil
	}
	printScanReport(p, report)
	return nil
}

func printScanReport(p *core.Printer, r *scan.Report) {
	for _, row := range r.Rows {
		marker := " "
		if row.FromCache {
			marker = "*"
		}
		fmt.Fprintf(p.Writer, "%s %-48s %-11s %s\n", marker, row.Name, orDash(row.DateTaken), row.OriginalFileName)
	}
	if len(r.Rows) > 0 {
		fmt.Fprintln(p.Writer)
	}

	fmt.Fprintf(p.Writer, "Scanned  : %d JPEG files (%s)\n", r.Scanned, humanize.Bytes(uint64(r.Bytes)))
	fmt.Fprintf(p.Writer, "Skipped  : %d other images\n", r.Skipped)
	fmt.Fprintf(p.Writer, "Dated    : %d\n", r.Dated)
	fmt.Fprintf(p.Writer, "Annotated: %d\n", r.Annotated)
	if r.FromCache > 0 || r.Pruned > 0 {
		fmt.Fprintf(p.Writer, "Cache    : %d hits, %d stale entries pruned\n", r.FromCache, r.Pruned)
	}
	if r.Probed > 0 {
		fmt.Fprintf(p.Writer, "Probed   : %d via exiftool\n", r.Probed)
	}
	if r.Errors > 0 {
		fmt.Fprintf(p.Writer, "Errors   : %d\n", r.Errors)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
