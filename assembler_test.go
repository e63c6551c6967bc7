package weasyreport

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestAssemble - Document assembly
// ---------------------------------------------------------------------------

func TestAssemble_Structure(t *testing.T) {
	t.Parallel()

	doc := Assemble("<p>S00042</p>", "<b>ACME</b>", "<i>Page</i>", PaperFormat{MarginTop: MM(40)})

	mustContain(t, doc,
		"<!DOCTYPE html>",
		`<meta charset="utf-8">`,
		`<div class="container">`,
		`<div id="header-content" style="position: running(header);"><b>ACME</b></div>`,
		`<div id="footer-content" style="position: running(footer);"><i>Page</i></div>`,
		"<p>S00042</p>",
		"margin-top: 40mm;",
	)

	// Running elements precede the body so they apply from the first page.
	if strings.Index(doc, "header-content") > strings.Index(doc, "<p>S00042</p>") {
		t.Error("header container should come before the body")
	}
}

func TestAssemble_RuleOrder(t *testing.T) {
	t.Parallel()

	doc := Assemble("<p>x</p>", "<b>h</b>", "<i>f</i>", PaperFormat{MarginTop: MM(10), Landscape: true})

	order := []string{
		"html, body {",
		"@page { size: auto; margin: 0; }",
		"@page { margin-top: 10mm; size: landscape; }",
		"@top-center { content: element(header);",
		"@bottom-center { content: element(footer);",
	}
	last := -1
	for _, want := range order {
		i := strings.Index(doc, want)
		if i < 0 {
			t.Fatalf("missing %q", want)
		}
		if i <= last {
			t.Errorf("%q out of order", want)
		}
		last = i
	}
}

func TestAssemble_OptionalParts(t *testing.T) {
	t.Parallel()

	doc := Assemble("<p>x</p>", "", "", PaperFormat{})

	for _, absent := range []string{"header-content", "footer-content", "element(header)", "element(footer)", "margin-top"} {
		if strings.Contains(doc, absent) {
			t.Errorf("document should not contain %q", absent)
		}
	}
}

func TestAssemble_FragmentsVerbatim(t *testing.T) {
	t.Parallel()

	header := `<span class="o_company">A &amp; B <script>x()</script></span>`
	doc := Assemble("<p>x</p>", header, "", PaperFormat{})

	if !strings.Contains(doc, header) {
		t.Error("header fragment should be inserted without escaping")
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	t.Parallel()

	p := PaperFormat{MarginTop: MM(10), MarginBottom: MM(20), PageWidth: MM(100), PageHeight: MM(150)}
	a := Assemble("<p>x</p>", "<b>h</b>", "<i>f</i>", p)
	b := Assemble("<p>x</p>", "<b>h</b>", "<i>f</i>", p)
	if a != b {
		t.Error("Assemble is not deterministic")
	}
}
