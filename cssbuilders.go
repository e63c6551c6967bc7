package weasyreport

import "strings"

// cssDeclaration is a single "property: value;" pair.
type cssDeclaration struct {
	Property string
	Value    string
}

// cssRule is a selector (or at-rule prelude) with its declarations and
// nested rules, e.g. @page containing @top-center.
type cssRule struct {
	Selector     string
	Declarations []cssDeclaration
	Rules        []cssRule
}

// stylesheet is an ordered list of rules. Order is cascade order: later
// rules override earlier ones.
type stylesheet []cssRule

// String serializes the stylesheet, one top-level rule per line.
func (s stylesheet) String() string {
	var buf strings.Builder
	for i, r := range s {
		if i > 0 {
			buf.WriteByte('\n')
		}
		r.writeTo(&buf)
	}
	return buf.String()
}

// String serializes a single rule.
func (r cssRule) String() string {
	var buf strings.Builder
	r.writeTo(&buf)
	return buf.String()
}

func (r cssRule) writeTo(buf *strings.Builder) {
	buf.WriteString(r.Selector)
	buf.WriteString(" {")
	for _, d := range r.Declarations {
		buf.WriteByte(' ')
		buf.WriteString(d.Property)
		buf.WriteString(": ")
		buf.WriteString(d.Value)
		buf.WriteByte(';')
	}
	for _, nested := range r.Rules {
		buf.WriteByte(' ')
		nested.writeTo(buf)
	}
	buf.WriteString(" }")
}

// decl is shorthand for building declarations.
func decl(property, value string) cssDeclaration {
	return cssDeclaration{Property: property, Value: value}
}

// Running element names and the page-margin boxes they are placed in.
const (
	headerElement = "header"
	footerElement = "footer"
	headerRegion  = "@top-center"
	footerRegion  = "@bottom-center"
)

// buildCompatibilityRules returns the baseline rules emitted before anything
// computed, so more specific rules can override them by cascade order.
// They smooth over report markup written for the Webkit renderer.
func buildCompatibilityRules() stylesheet {
	return stylesheet{
		{
			Selector: "html, body",
			Declarations: []cssDeclaration{
				decl("width", "100%"),
				decl("margin", "0"),
				decl("padding", "0"),
			},
		},
		// Background colors must print.
		{
			Selector: "*",
			Declarations: []cssDeclaration{
				decl("-webkit-print-color-adjust", "exact !important"),
				decl("print-color-adjust", "exact !important"),
			},
		},
		// Bootstrap containers are capped for screen widths.
		{
			Selector: ".container",
			Declarations: []cssDeclaration{
				decl("width", "100% !important"),
				decl("max-width", "none !important"),
			},
		},
		{
			Selector: "tr",
			Declarations: []cssDeclaration{
				decl("break-inside", "avoid"),
				decl("page-break-inside", "avoid"),
			},
		},
		{
			Selector: ".force-page-break",
			Declarations: []cssDeclaration{
				decl("break-after", "page !important"),
				decl("page-break-after", "always !important"),
				decl("clear", "both !important"),
				decl("height", "0 !important"),
				decl("display", "block !important"),
			},
		},
		{
			Selector: "@page",
			Declarations: []cssDeclaration{
				decl("size", "auto"),
				decl("margin", "0"),
			},
		},
	}
}

// buildPageRule returns the @page rule for the paper format, or ok=false
// when the format sets nothing. Explicit dimensions win over landscape.
func buildPageRule(p PaperFormat) (rule cssRule, ok bool) {
	margins := []struct {
		side  string
		value *float64
	}{
		{"top", p.MarginTop},
		{"bottom", p.MarginBottom},
		{"left", p.MarginLeft},
		{"right", p.MarginRight},
	}

	rule.Selector = "@page"
	for _, m := range margins {
		if m.value != nil {
			rule.Declarations = append(rule.Declarations, decl("margin-"+m.side, formatMM(*m.value)))
		}
	}

	switch {
	case p.hasExplicitSize():
		rule.Declarations = append(rule.Declarations,
			decl("size", formatMM(*p.PageWidth)+" "+formatMM(*p.PageHeight)))
	case p.Landscape:
		rule.Declarations = append(rule.Declarations, decl("size", "landscape"))
	}

	return rule, len(rule.Declarations) > 0
}

// buildRunningElementRule places a named running element into a page-margin
// box, full width.
func buildRunningElementRule(element, region string) cssRule {
	return cssRule{
		Selector: "@page",
		Rules: []cssRule{{
			Selector: region,
			Declarations: []cssDeclaration{
				decl("content", "element("+element+")"),
				decl("width", "100%"),
			},
		}},
	}
}

// sanitizeStyle escapes sequences that could close the <style> block early.
func sanitizeStyle(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
