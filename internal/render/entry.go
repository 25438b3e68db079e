package render

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Mode selects which entry point a server renders through.
type Mode string

const (
	// Production trusts cached markup.
	Production Mode = "production"

	// Development re-renders on every cache hit and warns when the cached
	// markup differs from a fresh render.
	Development Mode = "development"
)

// EnvConfig is read from the environment.
type EnvConfig struct {
	Env string `env:"RENDERCACHE_ENV" envDefault:"development"`
}

// ModeFromEnv reads the render mode from RENDERCACHE_ENV.
func ModeFromEnv() (Mode, error) {
	cfg, err := env.ParseAs[EnvConfig]()
	if err != nil {
		return "", fmt.Errorf("error parsing environment: %w", err)
	}
	return ParseMode(cfg.Env)
}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Production, Development:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Entry is the pair of render functions a server uses.
type Entry struct {
	Mode                 Mode
	RenderToString       func(el Element) (string, error)
	RenderToStaticMarkup func(el Element) (string, error)
}

// SelectEntry returns the entry point for mode.
func SelectEntry(r *Renderer, mode Mode) (Entry, error) {
	switch mode {
	case Production:
		return Entry{
			Mode:                 mode,
			RenderToString:       r.RenderToString,
			RenderToStaticMarkup: r.RenderToStaticMarkup,
		}, nil
	case Development:
		return Entry{
			Mode: mode,
			RenderToString: func(el Element) (string, error) {
				markup, err := r.renderVerified(el)
				if err != nil {
					return "", err
				}
				return StampChecksum(markup)
			},
			RenderToStaticMarkup: r.renderVerified,
		}, nil
	default:
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// renderVerified renders el and, on a cache hit, checks the cached markup
// against a fresh render. The fresh markup wins on mismatch.
func (r *Renderer) renderVerified(el Element) (string, error) {
	markup, hit, err := r.Render(el)
	if err != nil || !hit {
		return markup, err
	}

	fresh, err := el.render()
	if err != nil {
		return "", fmt.Errorf("unable to render %s: %w", el.Name(), err)
	}
	if fresh != markup {
		r.logger.Warn("cached markup differs from a fresh render; component is not reproducible",
			"component", el.Name(), "cached", len(markup), "fresh", len(fresh))
		return fresh, nil
	}
	return markup, nil
}
