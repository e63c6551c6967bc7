package weasyreport

import "strings"

// Assemble builds the complete HTML document for one page body.
//
// The header and footer, when non-empty, become CSS running elements placed
// in the top and bottom page-margin boxes. Fragments are inserted verbatim:
// they come from the host's template engine and are not escaped here.
// The output is deterministic for identical inputs.
func Assemble(body, header, footer string, paper PaperFormat) string {
	css := buildCompatibilityRules()
	if rule, ok := buildPageRule(paper); ok {
		css = append(css, rule)
	}
	if header != "" {
		css = append(css, buildRunningElementRule(headerElement, headerRegion))
	}
	if footer != "" {
		css = append(css, buildRunningElementRule(footerElement, footerRegion))
	}

	var buf strings.Builder
	buf.Grow(len(body) + len(header) + len(footer) + 1024)

	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<style>\n")
	buf.WriteString(sanitizeStyle(css.String()))
	buf.WriteString("\n</style>\n</head>\n<body>\n<div class=\"container\">")
	if header != "" {
		writeRunningElement(&buf, "header-content", headerElement, header)
	}
	if footer != "" {
		writeRunningElement(&buf, "footer-content", footerElement, footer)
	}
	buf.WriteString(body)
	buf.WriteString("</div>\n</body>\n</html>\n")

	return buf.String()
}

// writeRunningElement wraps a fragment in a container taken out of the flow
// as a named running element.
func writeRunningElement(buf *strings.Builder, id, element, content string) {
	buf.WriteString(`<div id="`)
	buf.WriteString(id)
	buf.WriteString(`" style="position: running(`)
	buf.WriteString(element)
	buf.WriteString(`);">`)
	buf.WriteString(content)
	buf.WriteString("</div>")
}
