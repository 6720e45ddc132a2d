package site2pdf

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sampleReport() *Report {
	return &Report{
		ID: "b-1",
		Stats: BatchStats{
			Total: 3, Successful: 2, Failed: 1, Degraded: 1,
			StartTime: fixedNow, Duration: 1500 * time.Millisecond,
		},
		Results: []ConversionResult{
			{Document: Document{RelPath: "a.html"}, OutputPath: "out/a.pdf", Bytes: 100, Pages: 2, Duration: time.Second},
			{Document: Document{RelPath: "b.html"}, OutputPath: "out/b.pdf", Degraded: true, Annotated: true},
			{Document: Document{RelPath: "c.html"}, Err: ErrCaptureTime},
		},
		Publish: &PublishReport{
			Dir:      "site/pdf",
			Copied:   []string{"site/pdf/a.pdf"},
			Failures: []PublishFailure{{Path: "out/b.pdf", Err: ErrPublishCopy}},
		},
	}
}

func TestConversionResult_Status(t *testing.T) {
	t.Parallel()

	r := sampleReport()
	for i, want := range []string{"ok", "degraded", "failed"} {
		if got := r.Results[i].Status(); got != want {
			t.Errorf("Results[%d].Status() = %q, want %q", i, got, want)
		}
	}
	if n := len(r.Failures()); n != 1 {
		t.Errorf("Failures() = %d, want 1", n)
	}
}

func TestReport_WriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := sampleReport().WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}

	var got jsonReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.BatchID != "b-1" || got.Stats.DurationMS != 1500 || got.Stats.Degraded != 1 {
		t.Errorf("header = %+v", got)
	}
	if len(got.Results) != 3 {
		t.Fatalf("results = %d", len(got.Results))
	}
	if got.Results[0].Type != "default" || got.Results[0].Pages != 2 {
		t.Errorf("results[0] = %+v", got.Results[0])
	}
	if got.Results[2].Status != "failed" || got.Results[2].Error == "" {
		t.Errorf("results[2] = %+v", got.Results[2])
	}
	if got.Publish == nil || got.Publish.Copied != 1 || len(got.Publish.Failures) != 1 {
		t.Errorf("publish = %+v", got.Publish)
	}
}

func TestReport_SaveJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reports", "batch.json")
	if err := sampleReport().SaveJSON(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Error("saved report is not valid JSON")
	}
}
