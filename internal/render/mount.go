package render

import (
	"hash/adler32"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// ChecksumAttr is stamped on the root element of server-rendered markup.
const ChecksumAttr = "data-render-checksum"

// Checksum returns the adler32 checksum of markup in decimal.
func Checksum(markup string) string {
	return strconv.FormatUint(uint64(adler32.Checksum([]byte(markup))), 10)
}

// Mount checks that container holds exactly one element, stamps hash on it
// and hands it to render. A nil render only stamps.
func Mount(container *goquery.Selection, hash string, render func(root *goquery.Selection) error) error {
	if container == nil || container.Length() == 0 {
		return ErrNoContainer
	}

	children := container.Contents()
	if children.Length() != 1 {
		return ErrChildCount
	}

	root := children.First()
	if name := goquery.NodeName(root); name == "" || name[0] == '#' {
		return ErrNotElement
	}
	if hash == "" {
		return ErrMissingChecksum
	}

	root.SetAttr(ChecksumAttr, hash)
	if render == nil {
		return nil
	}
	return render(root)
}
