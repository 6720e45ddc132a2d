// Package site2pdf converts a tree of statically built HTML pages into
// print-ready PDFs using headless Chrome.
//
// Pages whose charts, SVGs or notebook cells render asynchronously are
// polled until their content settles, then styled for print, optionally
// stamped with a QR code linking back to the live page, and captured.
//
// # Quick Start
//
//	cfg := site2pdf.DefaultConfig()
//	cfg.Output.Dir = "dist/pdf"
//
//	engine, err := site2pdf.LaunchEngine(ctx, site2pdf.EngineOptionsFromEnv())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	batch, err := site2pdf.NewBatch(engine, cfg, site2pdf.Options{Workers: 4})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := batch.Run(ctx, "dist/site")
//
// Run returns an error only for batch-level problems (the output directory
// cannot be created or is locked, the input root is missing). Each document's
// failure is recorded in report.Results and never stops the others.
//
// # Conversion Pipeline
//
// Every document goes through these stages in its own browser page:
//
//  1. Resolve page and QR rules for the document type
//  2. Navigate to the file and wait for the load event
//  3. Await readiness (Ready, or Degraded when a deadline expires)
//  4. Inject print.css, the print date and the compact-table class
//  5. Annotate with a QR code (failures only log a warning)
//  6. Print to PDF under a hard timeout and write the file atomically
//
// # Document Types
//
// Keys of the documents and qrCode.documents config blocks declare document
// types. A document takes the first directory of its relative path that
// matches a type, else its file name (the parent directory for index.html),
// else the default type. Per-type rules override the defaults field by field.
//
// # Concurrency
//
// One Chrome instance serves the whole batch; each conversion owns one page.
// Options.Workers bounds the number of conversions in flight.
package site2pdf
