package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedBody is returned for body files that are neither Markdown
// nor HTML.
var ErrUnsupportedBody = errors.New("unsupported body file")

// BodyLoader reads body files and turns them into HTML fragments.
type BodyLoader struct {
	// Markdown converts .md and .markdown files.
	Markdown *MarkdownConverter
	// LocalAssets rewrites relative references to files next to the body.
	LocalAssets bool
}

// NewBodyLoader creates a BodyLoader with a default Markdown converter.
func NewBodyLoader(localAssets bool) *BodyLoader {
	return &BodyLoader{Markdown: NewMarkdownConverter(), LocalAssets: localAssets}
}

// Load reads path and returns its HTML fragment.
func (l *BodyLoader) Load(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided
	if err != nil {
		return "", err
	}

	var fragment string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		if fragment, err = l.Markdown.ToFragment(ctx, string(data)); err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
	case ".html", ".htm", ".xhtml":
		fragment = string(data)
	default:
		return "", fmt.Errorf("%w: %s (want .md, .markdown, .html or .htm)", ErrUnsupportedBody, path)
	}

	if !l.LocalAssets {
		return fragment, nil
	}
	resolved, err := ResolveLocalAssets(fragment, filepath.Dir(path))
	if err != nil {
		return "", fmt.Errorf("%s: resolving local assets: %w", path, err)
	}
	return resolved, nil
}

// LoadAll loads every path in order.
func (l *BodyLoader) LoadAll(ctx context.Context, paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fragment, err := l.Load(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, fragment)
	}
	return out, nil
}
