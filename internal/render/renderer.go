package render

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
)

// Memo is the get/set capability a Renderer memoizes through. Owners are
// compared by identity.
type Memo interface {
	Get(owner any, key string) ([]byte, bool)
	Set(owner any, key string, value []byte) error
}

// Options configures a Renderer.
type Options struct {
	// Codec encodes markup before it is cached. Defaults to Raw.
	Codec Codec

	Logger *log.Logger
}

// Renderer renders elements, serving Cached components from a Memo.
type Renderer struct {
	memo   Memo
	codec  Codec
	logger *log.Logger
}

// NewRenderer creates a renderer backed by memo.
func NewRenderer(memo Memo, opts Options) *Renderer {
	codec := opts.Codec
	if codec == nil {
		codec = Raw
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("render")
	}
	return &Renderer{memo: memo, codec: codec, logger: logger}
}

// Render returns the markup for el and whether it came from the cache.
func (r *Renderer) Render(el Element) (string, bool, error) {
	owner, key, cacheable, err := el.cacheKey()
	if err != nil {
		if !errors.Is(err, ErrCacheKey) {
			err = fmt.Errorf("%w: %w", ErrCacheKey, err)
		}
		return "", false, fmt.Errorf("%s: %w", el.Name(), err)
	}

	if cacheable {
		if markup, ok := r.lookup(el, owner, key); ok {
			return markup, true, nil
		}
	}

	start := time.Now()
	markup, err := el.render()
	if err != nil {
		return "", false, fmt.Errorf("unable to render %s: %w", el.Name(), err)
	}
	r.logger.Debug("rendered", "component", el.Name(), "bytes", len(markup), "duration", time.Since(start))

	if cacheable {
		if err := r.memo.Set(owner, key, r.codec.Encode([]byte(markup))); err != nil {
			// The markup is still good; only memoization failed.
			r.logger.Warn("unable to cache markup", "component", el.Name(), "err", err)
		}
	}

	return markup, false, nil
}

// RenderToStaticMarkup renders el without a checksum.
func (r *Renderer) RenderToStaticMarkup(el Element) (string, error) {
	markup, _, err := r.Render(el)
	return markup, err
}

// RenderToString renders el and stamps the checksum of its markup on the
// root element. The markup must have exactly one root element.
func (r *Renderer) RenderToString(el Element) (string, error) {
	markup, _, err := r.Render(el)
	if err != nil {
		return "", err
	}
	return StampChecksum(markup)
}

// StampChecksum stamps the checksum of the serialized markup on its single
// root element. The checksum covers the markup exactly as it is returned,
// minus the checksum attribute itself.
func StampChecksum(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(strings.TrimSpace(markup)))
	if err != nil {
		return "", fmt.Errorf("unable to parse markup: %w", err)
	}

	body := doc.Find("body")
	normalized, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("unable to serialize markup: %w", err)
	}
	if err := Mount(body, Checksum(normalized), nil); err != nil {
		return "", err
	}

	out, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("unable to serialize markup: %w", err)
	}
	return out, nil
}

func (r *Renderer) lookup(el Element, owner any, key string) (string, bool) {
	b, ok := r.memo.Get(owner, key)
	if !ok {
		r.logger.Debug("cache miss", "component", el.Name())
		return "", false
	}

	markup, err := r.codec.Decode(b)
	if err != nil {
		r.logger.Warn("discarding cached markup", "component", el.Name(), "err", err)
		return "", false
	}

	r.logger.Debug("cache hit", "component", el.Name(), "bytes", len(b))
	return string(markup), true
}
