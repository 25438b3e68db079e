// Package markdown provides the markdown components rendercache serves: an
// HTML component built on goldmark and a terminal component built on
// glamour. Both take Props and are meant to be wrapped with render.Cache.
package markdown
