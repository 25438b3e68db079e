package render

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Component renders markup from props. Rendering the same props twice must
// produce the same markup.
type Component[P any] interface {
	Render(props P) (string, error)
}

// ComponentFunc adapts a function to a Component.
type ComponentFunc[P any] func(props P) (string, error)

// Render calls f(props).
func (f ComponentFunc[P]) Render(props P) (string, error) {
	return f(props)
}

// KeyFunc derives the content key for a set of props.
type KeyFunc[P any] func(props P) (string, error)

// DefaultKey serializes props to JSON.
func DefaultKey[P any](props P) (string, error) {
	b, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCacheKey, err)
	}
	return string(b), nil
}

// Cached is a component whose output is memoized by a Renderer. Each Cached
// value is its own cache owner, so two wrappers of the same component never
// share entries.
type Cached[P any] struct {
	wrapped Component[P]
	keyFn   KeyFunc[P]
	name    string
}

// Cache wraps c so a Renderer memoizes it under keys produced by keyFn. A nil
// keyFn uses DefaultKey.
func Cache[P any](c Component[P], keyFn KeyFunc[P]) *Cached[P] {
	if keyFn == nil {
		keyFn = DefaultKey[P]
	}
	return &Cached[P]{
		wrapped: c,
		keyFn:   keyFn,
		name:    fmt.Sprintf("Cache(%s)", DisplayName(c)),
	}
}

// Render renders the wrapped component without consulting any cache.
func (c *Cached[P]) Render(props P) (string, error) {
	return c.wrapped.Render(props)
}

// CacheKey returns the content key for props.
func (c *Cached[P]) CacheKey(props P) (string, error) {
	return c.keyFn(props)
}

// DisplayName returns "Cache(<wrapped name>)".
func (c *Cached[P]) DisplayName() string {
	return c.name
}

// Unwrap returns the wrapped component.
func (c *Cached[P]) Unwrap() Component[P] {
	return c.wrapped
}

// DisplayName names a component for logs: its DisplayName method if it has
// one, otherwise its type name.
func DisplayName(c any) string {
	if n, ok := c.(interface{ DisplayName() string }); ok {
		return n.DisplayName()
	}

	t := reflect.TypeOf(c)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "Component"
	}
	return t.Name()
}

// Element is a component bound to its props.
type Element interface {
	Name() string

	render() (string, error)
	cacheKey() (owner any, key string, ok bool, err error)
}

type element[P any] struct {
	c     Component[P]
	props P
}

// Elem binds props to c. Elements of a Cached component are memoized; all
// others render every time.
func Elem[P any](c Component[P], props P) Element {
	return element[P]{c: c, props: props}
}

func (e element[P]) Name() string {
	return DisplayName(e.c)
}

func (e element[P]) render() (string, error) {
	return e.c.Render(e.props)
}

func (e element[P]) cacheKey() (any, string, bool, error) {
	cached, ok := e.c.(*Cached[P])
	if !ok {
		return nil, "", false, nil
	}
	key, err := cached.CacheKey(e.props)
	if err != nil {
		return nil, "", false, err
	}
	return cached, key, true, nil
}
