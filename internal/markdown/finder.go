package markdown

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/muesli/gitcha"
)

var (
	// Extensions are the file patterns treated as markdown.
	Extensions = []string{
		"*.md", "*.mdown", "*.mkdn", "*.mkd", "*.markdown",
	}

	ignorePatterns = []string{"node_modules", "vendor"}
)

// IsDocument reports whether name has one of the markdown Extensions.
func IsDocument(name string) bool {
	base := path.Base(filepath.ToSlash(name))
	for _, pattern := range Extensions {
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// Document is a markdown file found on disk.
type Document struct {
	// Path is absolute.
	Path string

	// Name is Path relative to the search root, with forward slashes.
	Name string

	ModTime time.Time
	Size    int64
}

// FindDocuments lists the markdown files under dir sorted by name. Unless
// all is set, files ignored by git and common dependency folders are skipped.
func FindDocuments(dir string, all bool) ([]Document, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve %s: %w", dir, err)
	}

	var ch chan gitcha.SearchResult
	if all {
		ch, err = gitcha.FindAllFilesExcept(root, Extensions, nil)
	} else {
		ch, err = gitcha.FindFilesExcept(root, Extensions, ignorePatterns)
	}
	if err != nil {
		return nil, fmt.Errorf("error finding local files: %w", err)
	}

	var docs []Document
	for res := range ch {
		name, err := filepath.Rel(root, res.Path)
		if err != nil {
			name = filepath.Base(res.Path)
		}
		docs = append(docs, Document{
			Path:    res.Path,
			Name:    filepath.ToSlash(name),
			ModTime: res.Info.ModTime(),
			Size:    res.Info.Size(),
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}
