package site2pdf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alnah/go-site2pdf/internal/fileutil"
)

type jsonReport struct {
	BatchID string       `json:"batchId"`
	Stats   jsonStats    `json:"stats"`
	Results []jsonResult `json:"results"`
	Publish *jsonPublish `json:"publish,omitempty"`
}

type jsonStats struct {
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	Degraded   int       `json:"degraded"`
	StartTime  time.Time `json:"startTime"`
	DurationMS int64     `json:"durationMs"`
}

type jsonResult struct {
	Source     string `json:"source"`
	Type       string `json:"type"`
	Status     string `json:"status"` // "ok", "degraded" or "failed"
	Output     string `json:"output,omitempty"`
	Bytes      int64  `json:"bytes,omitempty"`
	Pages      int    `json:"pages,omitempty"`
	Annotated  bool   `json:"annotated,omitempty"`
	DurationMS int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

type jsonPublish struct {
	Dir      string   `json:"dir"`
	Skipped  bool     `json:"skipped"`
	Copied   int      `json:"copied"`
	Failures []string `json:"failures,omitempty"`
}

// Status labels a result for humans and machines.
func (r ConversionResult) Status() string {
	switch {
	case !r.Succeeded():
		return "failed"
	case r.Degraded:
		return "degraded"
	default:
		return "ok"
	}
}

// WriteJSON encodes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	out := jsonReport{
		BatchID: r.ID,
		Stats: jsonStats{
			Total:      r.Stats.Total,
			Successful: r.Stats.Successful,
			Failed:     r.Stats.Failed,
			Degraded:   r.Stats.Degraded,
			StartTime:  r.Stats.StartTime,
			DurationMS: r.Stats.Duration.Milliseconds(),
		},
		Results: make([]jsonResult, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		jr := jsonResult{
			Source:     res.Document.RelPath,
			Type:       res.Document.Type.String(),
			Status:     res.Status(),
			Output:     res.OutputPath,
			Bytes:      res.Bytes,
			Pages:      res.Pages,
			Annotated:  res.Annotated,
			DurationMS: res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		out.Results = append(out.Results, jr)
	}
	if p := r.Publish; p != nil {
		jp := &jsonPublish{Dir: p.Dir, Skipped: p.Skipped, Copied: len(p.Copied)}
		for _, f := range p.Failures {
			jp.Failures = append(jp.Failures, fmt.Sprintf("%s: %v", f.Path, f.Err))
		}
		out.Publish = jp
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// SaveJSON writes the report to path atomically.
func (r *Report) SaveJSON(path string) error {
	var buf bytes.Buffer
	if err := r.WriteJSON(&buf); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes())
}
