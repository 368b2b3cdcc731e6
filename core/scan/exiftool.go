package scan

import (
	"os"
	"sync"
	"time"

	"github.com/barasher/go-exiftool"
	"github.com/rs/zerolog/log"

	"github.com/EzraMarks/obsidian-image-converter/core"
)

// Prober is the scan's second opinion: when the in-process parse of a
// file's header window finds nothing, the prober gets the whole file.
type Prober interface {
	Probe(data []byte) (core.Extraction, bool)
	Close()
}

// ExiftoolProber shells out to a stayopen exiftool process. The process
// starts lazily on first use, so scans that never need the fallback pay
// nothing for it; a missing exiftool binary just disables the fallback.
type ExiftoolProber struct {
	mu      sync.Mutex
	et      *exiftool.Exiftool
	started bool
}

// NewExiftoolProber returns a prober. No process is started yet.
func NewExiftoolProber() *ExiftoolProber {
	return &ExiftoolProber{}
}

func (p *ExiftoolProber) ensure() *exiftool.Exiftool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		p.started = true
		et, err := exiftool.NewExiftool()
		if err != nil {
			log.Warn().Err(err).Msg("exiftool unavailable, fallback probing disabled")
			return nil
		}
		p.et = et
	}
	return p.et
}

// Close stops the exiftool process if one was started.
func (p *ExiftoolProber) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.et != nil {
		p.et.Close()
		p.et = nil
	}
	p.started = true
}

// Probe writes data to a scratch file and asks exiftool for the two
// fields the scan cares about. Exiftool reports the comment with its
// character set prefix already stripped; DecodeUserComment tolerates
// that.
func (p *ExiftoolProber) Probe(data []byte) (core.Extraction, bool) {
	et := p.ensure()
	if et == nil {
		return core.Extraction{}, false
	}

	tmp, err := os.CreateTemp("", "imgmeta-probe-*.jpg")
	if err != nil {
		return core.Extraction{}, false
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return core.Extraction{}, false
	}
	tmp.Close()

	var ex core.Extraction
	for _, fm := range et.ExtractMetadata(tmp.Name()) {
		if fm.Err != nil {
			continue
		}
		if s, ok := fm.Fields["DateTimeOriginal"].(string); ok {
			if t, err := time.Parse("2006:01:02 15:04:05", s); err == nil {
				ex.DateTaken = t.Format("2006-01-02")
			}
		}
		if s, ok := fm.Fields["UserComment"].(string); ok {
			if v, found := core.AnnotationValue(core.DecodeUserComment(s)); found {
				ex.OriginalFileName = v
			}
		}
	}
	return ex, ex != core.Extraction{}
}
