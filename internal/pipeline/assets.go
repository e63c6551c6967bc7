package pipeline

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ResolveLocalAssets rewrites relative img[src] and link[href] references in
// fragment to file:// URLs when the target exists under dir. References that
// do not exist locally, absolute paths and URLs are left alone so they keep
// resolving against the report's base URL. An empty dir is a no-op.
func ResolveLocalAssets(fragment, dir string) (string, error) {
	if dir == "" {
		return fragment, nil
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", err
	}

	changed := false
	for _, n := range nodes {
		if rewriteAssets(n, absDir) {
			changed = true
		}
	}
	if !changed {
		return fragment, nil
	}

	var buf strings.Builder
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// rewriteAssets walks n and reports whether any attribute was rewritten.
func rewriteAssets(n *html.Node, dir string) bool {
	changed := false
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			changed = rewriteAttr(n, "src", dir)
		case atom.Link:
			changed = rewriteAttr(n, "href", dir)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if rewriteAssets(c, dir) {
			changed = true
		}
	}
	return changed
}

func rewriteAttr(n *html.Node, key, dir string) bool {
	for i, attr := range n.Attr {
		if attr.Key != key || !isLocalCandidate(attr.Val) {
			continue
		}
		abs := filepath.Join(dir, filepath.FromSlash(attr.Val))
		if !isPathUnderDir(abs, dir) {
			continue
		}
		if info, err := os.Stat(abs); err != nil || info.IsDir() {
			continue
		}
		n.Attr[i].Val = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
		return true
	}
	return false
}

// isLocalCandidate reports whether ref is a relative path (no scheme, no
// leading slash, no fragment-only reference).
func isLocalCandidate(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "/") || filepath.IsAbs(ref) {
		return false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// isPathUnderDir checks that path stays under dir after cleaning.
func isPathUnderDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
