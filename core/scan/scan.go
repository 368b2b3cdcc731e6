// Package scan walks a source of images and reports which files carry
// a usable date and an original-filename annotation. It is the bulk
// counterpart of the single-file extract command.
package scan

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/maruel/natural"
	"github.com/rs/zerolog/log"

	"github.com/EzraMarks/obsidian-image-converter/core"
	"github.com/EzraMarks/obsidian-image-converter/core/source"
)

// Options configure a scan run.
type Options struct {
	// Workers is the number of concurrent extractors. Zero means one
	// per CPU.
	Workers int
	// Cache, when non-nil, short-circuits files whose size and mtime
	// have not changed and is pruned of deleted files afterwards.
	Cache *Cache
	// Prober, when non-nil, is consulted with the whole file whenever
	// the header-window parse yields nothing.
	Prober Prober
}

// Row is one scanned file's outcome.
type Row struct {
	Name             string `json:"name"`
	Size             int64  `json:"size"`
	DateTaken        string `json:"dateTaken"`
	OriginalFileName string `json:"originalFileName"`
	FromCache        bool   `json:"fromCache"`
}

// Report sums up a scan run.
type Report struct {
	Scanned   int   `json:"scanned"`   // JPEG files examined
	Skipped   int   `json:"skipped"`   // recognized images of other formats
	Dated     int   `json:"dated"`     // files with a usable date-taken value
	Annotated int   `json:"annotated"` // files carrying an annotation line
	FromCache int   `json:"fromCache"`
	Probed    int   `json:"probed"` // fallback probe successes
	Errors    int   `json:"errors"`
	Bytes     int64 `json:"bytes"` // total size of scanned files
	Pruned    int64 `json:"pruned"` // stale cache entries removed
	Rows      []Row `json:"rows"`
}

// Run lists the source and extracts metadata from every JPEG in it.
// Read failures are counted and logged, never fatal; the returned error
// covers listing problems and context cancellation only.
func Run(ctx context.Context, src source.Source, codec core.Codec, opts Options) (*Report, error) {
	entries, err := src.List(ctx)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	var (
		mu     sync.Mutex
		report Report
	)

	scanOne := func(e source.Entry) {
		if opts.Cache != nil {
			if ex, ok := opts.Cache.Get(e.Name, e.Size, e.ModTime); ok {
				mu.Lock()
				report.tally(e, ex, true, false)
				mu.Unlock()
				return
			}
		}

		head, err := src.ReadHeader(ctx, e.Name)
		if err != nil {
			log.Warn().Err(err).Str("file", e.Name).Msg("header read failed")
			mu.Lock()
			report.Errors++
			mu.Unlock()
			return
		}
		if core.SniffFormat(head) != core.FmtJPEG {
			mu.Lock()
			report.Skipped++
			mu.Unlock()
			return
		}

		ex := core.ExtractMetadata(head, codec)
		probed := false
		if ex == (core.Extraction{}) && opts.Prober != nil {
			full, err := src.ReadFile(ctx, e.Name)
			if err != nil {
				log.Warn().Err(err).Str("file", e.Name).Msg("full read for probe failed")
			} else if probeEx, ok := opts.Prober.Probe(full); ok {
				ex = probeEx
				probed = true
			}
		}

		if opts.Cache != nil {
			if err := opts.Cache.Put(e.Name, e.Size, e.ModTime, ex); err != nil {
				log.Debug().Err(err).Str("file", e.Name).Msg("cache put dropped")
			}
		}
		mu.Lock()
		report.tally(e, ex, false, probed)
		mu.Unlock()
	}

	jobs := make(chan source.Entry, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range jobs {
				scanOne(e)
			}
		}()
	}

feed:
	for _, e := range entries {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- e:
		}
	}
	close(jobs)
	wg.Wait()

	sort.Slice(report.Rows, func(i, j int) bool {
		return natural.Less(report.Rows[i].Name, report.Rows[j].Name)
	})

	if opts.Cache != nil {
		valid := make(map[string]bool, len(entries))
		for _, e := range entries {
			valid[e.Name] = true
		}
		pruned, err := opts.Cache.PruneDeleted(valid)
		if err != nil {
			log.Warn().Err(err).Msg("cache prune failed")
		}
		report.Pruned = pruned
	}

	return &report, ctx.Err()
}

// tally folds one outcome into the report. Callers hold the mutex.
func (r *Report) tally(e source.Entry, ex core.Extraction, fromCache, probed bool) {
	r.Scanned++
	r.Bytes += e.Size
	if ex.DateTaken != "" {
		r.Dated++
	}
	if ex.OriginalFileName != "" {
		r.Annotated++
	}
	if fromCache {
		r.FromCache++
	}
	if probed {
		r.Probed++
	}
	r.Rows = append(r.Rows, Row{
		Name:             e.Name,
		Size:             e.Size,
		DateTaken:        ex.DateTaken,
		OriginalFileName: ex.OriginalFileName,
		FromCache:        fromCache,
	})
}
