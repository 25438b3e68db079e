// Package render memoizes component rendering through a cache.
//
// A component is wrapped with Cache to give it a content key (JSON of its
// props by default). A Renderer looks the (component, key) pair up in its
// Memo before rendering and stores the markup afterwards. RenderToString
// stamps an adler32 checksum on the root element of the markup; Mount checks
// and stamps a container the same way.
package render
