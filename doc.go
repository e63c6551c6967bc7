// Package weasyreport renders ERP report PDFs with a CSS paged-media engine
// (WeasyPrint), falling back to the original wkhtmltopdf renderer.
//
// # Quick Start
//
// Build a Reporter around an engine, a fallback and the host's parameter
// store, then render report requests:
//
//	legacy, err := weasyreport.NewWkhtmltopdfRenderer(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	opts := []weasyreport.Option{
//	    weasyreport.WithFallback(legacy),
//	    weasyreport.WithParamStore(store),
//	}
//	// Without an engine (weasyprint not installed) every report falls back.
//	if engine, err := weasyreport.NewWeasyPrintEngine(nil); err == nil {
//	    opts = append(opts, weasyreport.WithEngine(engine))
//	}
//
//	rep, err := weasyreport.NewReporter(opts...)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rep.Close()
//
//	pdf, err := rep.Render(ctx, &weasyreport.Request{
//	    ReportRef: "sale.report_saleorder",
//	    Bodies:    []string{body},
//	    Header:    header,
//	    Paper:     weasyreport.PaperFormat{MarginTop: weasyreport.MM(40)},
//	})
//
// # Backend Selection
//
// Three parameters, read fresh on every call, decide the backend:
//
//	report_weasyprint.enabled          global switch
//	report_weasyprint.allowed_modules  used when the switch is off
//	report_weasyprint.blocked_modules  used when the switch is on
//
// A report's module is the part of its reference before the first dot
// unless a ModuleResolver says otherwise.
//
// # Document Assembly
//
// Each body becomes its own HTML document with an embedded stylesheet:
// compatibility rules first, then the @page rule computed from the paper
// format, then header and footer placement. Header and footer fragments
// become CSS running elements in the top-center and bottom-center margin
// boxes. Several bodies are merged into one PDF in input order.
//
// # Errors
//
// A failing body aborts the render with a *UserError that matches
// ErrRenderFailed. The engine's message is kept in the error text.
package weasyreport
