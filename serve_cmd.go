package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rendercache/internal/cache"
	"github.com/dgnsrekt/rendercache/internal/markdown"
	"github.com/dgnsrekt/rendercache/internal/render"
	"github.com/fsnotify/fsnotify"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

var (
	showAllFiles bool

	serveCmd = &cobra.Command{
		Use:   "serve [DIR]",
		Short: "Serve a directory of markdown as HTML",
		Long: paragraph(fmt.Sprintf("\n%s the markdown files under DIR as HTML. Rendered pages are cached; changing cache.capacity in the config file resizes the cache without a restart.",
			keyword("Serve"))),
		Example: paragraph("rendercache serve docs\nRENDERCACHE_ENV=production rendercache serve --addr :8080 ."),
		Args:    cobra.MaximumNArgs(1),
		RunE:    executeServe,
	}
)

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<div id="root">{{.Body}}</div>
</body>
</html>
`))

var indexTemplate = template.Must(template.New("index").Parse(`<ul class="documents">
{{- range .}}
<li><a href="/doc/{{.Name}}">{{.Name}}</a></li>
{{- end}}
</ul>`))

type page struct {
	Title string
	Body  template.HTML
}

// statser is the part of the cache the server reports on and resizes.
type statser interface {
	Stats() cache.Stats
	Resize(capacity int64) error
}

// errRateLimited is returned by a throttled render when the limiter has no
// tokens left.
var errRateLimited = errors.New("render rate exceeded")

// throttledHTML renders markdown as HTML, spending one limiter token per
// render. Wrapped with render.Cache it is only reached on cache misses.
type throttledHTML struct {
	html    *markdown.HTML
	limiter *rate.Limiter
}

func (t throttledHTML) Render(p markdown.Props) (string, error) {
	if !t.limiter.Allow() {
		return "", errRateLimited
	}
	return t.html.Render(p)
}

func (throttledHTML) DisplayName() string { return "HTML" }

type server struct {
	root     string
	realRoot string
	all      bool
	entry    render.Entry
	article  *render.Cached[markdown.Props]
	memo     statser
	logger   *log.Logger
}

func newServer(root string, all bool, entry render.Entry, memo statser, limiter *rate.Limiter) *server {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		realRoot = root
	}
	return &server{
		root:     root,
		realRoot: realRoot,
		all:      all,
		entry:    entry,
		article:  render.Cache[markdown.Props](throttledHTML{html: markdown.NewHTML(), limiter: limiter}, nil),
		memo:     memo,
		logger:   log.Default().WithPrefix("serve"),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /doc/{path...}", s.handleDoc)
	mux.HandleFunc("GET /stats", s.handleStats)
	return mux
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	docs, err := markdown.FindDocuments(s.root, s.all)
	if err != nil {
		s.logger.Error("error finding local files", "err", err)
		http.Error(w, "unable to list documents", http.StatusInternalServerError)
		return
	}
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		docs = filterDocuments(docs, q)
	}

	var body strings.Builder
	if err := indexTemplate.Execute(&body, docs); err != nil {
		s.logger.Error("unable to render index", "err", err)
		http.Error(w, "unable to render index", http.StatusInternalServerError)
		return
	}
	s.writePage(w, page{Title: filepath.Base(s.root), Body: template.HTML(body.String())}) //nolint:gosec
}

func (s *server) handleDoc(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("path")
	file, ok := s.resolve(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	src, err := os.ReadFile(file)
	if err != nil {
		s.logger.Error("unable to read document", "path", file, "err", err)
		http.Error(w, "unable to read document", http.StatusInternalServerError)
		return
	}

	start := time.Now()
	out, err := s.entry.RenderToString(render.Elem[markdown.Props](s.article, markdown.Props{Source: string(src)}))
	if errors.Is(err, errRateLimited) {
		w.Header().Set("Retry-After", "1")
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}
	if err != nil {
		s.logger.Error("unable to render document", "path", file, "err", err)
		http.Error(w, "unable to render document", http.StatusInternalServerError)
		return
	}
	s.logger.Debug("served", "doc", name, "duration", time.Since(start))

	s.writePage(w, page{Title: documentTitle(name), Body: template.HTML(out)}) //nolint:gosec
}

func (s *server) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.memo.Stats()); err != nil {
		s.logger.Error("unable to write stats", "err", err)
	}
}

// filterDocuments keeps the documents whose names fuzzy-match q, best
// match first.
func filterDocuments(docs []markdown.Document, q string) []markdown.Document {
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}

	matches := fuzzy.Find(q, names)
	out := make([]markdown.Document, 0, len(matches))
	for _, m := range matches {
		out = append(out, docs[m.Index])
	}
	return out
}

var titleCaser = cases.Title(language.English)

// documentTitle turns "guides/getting-started.md" into "Getting Started".
func documentTitle(name string) string {
	base := path.Base(name)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return titleCaser.String(base)
}

// resolve maps a document name from the URL to a markdown file under root.
// Names that leave root, directly or through a symlink, do not resolve.
func (s *server) resolve(name string) (string, bool) {
	if name == "" || !markdown.IsDocument(name) {
		return "", false
	}

	target, err := filepath.EvalSymlinks(filepath.Join(s.root, filepath.FromSlash(name)))
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(s.realRoot, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}

	info, err := os.Stat(target)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return target, true
}

func (s *server) writePage(w http.ResponseWriter, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, p); err != nil {
		s.logger.Error("unable to write page", "err", err)
	}
}

// reloadCapacity resizes the cache to the configured capacity.
func (s *server) reloadCapacity() {
	capacity, err := cache.ParseCapacity(viper.Get("cache.capacity"))
	if err != nil {
		s.logger.Warn("ignoring invalid cache.capacity", "err", err)
		return
	}
	if err := s.memo.Resize(capacity); err != nil {
		s.logger.Warn("unable to resize cache", "err", err)
		return
	}
	s.logger.Info("resized cache", "capacity", cache.FormatCapacity(capacity))
}

func newLimiter() *rate.Limiter {
	r := viper.GetFloat64("serve.rate")
	if r <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(r), max(1, int(r)))
}

func executeServe(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	root, err := filepath.Abs(expandPath(dir))
	if err != nil {
		return fmt.Errorf("unable to get absolute path: %w", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	memo, err := newMemo()
	if err != nil {
		return err
	}
	entry, closer, err := newRenderer(memo)
	if err != nil {
		return err
	}
	defer closer() //nolint:errcheck

	srv := newServer(root, showAllFiles, entry, memo, newLimiter())

	if viper.ConfigFileUsed() != "" {
		viper.OnConfigChange(func(e fsnotify.Event) {
			log.Debug("config changed", "path", e.Name, "op", e.Op)
			srv.reloadCapacity()
		})
		viper.WatchConfig()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	httpSrv := &http.Server{
		Addr:              viper.GetString("serve.addr"),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- httpSrv.ListenAndServe()
	}()
	log.Info("serving", "dir", root, "addr", httpSrv.Addr, "mode", entry.Mode)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", keyword(root), httpSrv.Addr)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("unable to shut down: %w", err)
	}
	printStats(cmd.ErrOrStderr(), memo.Stats())
	return nil
}

func init() {
	serveCmd.Flags().String("addr", "localhost:8080", "address to listen on")
	serveCmd.Flags().Float64("rate", 20, "renders per second (0 disables the limit)")
	serveCmd.Flags().BoolVarP(&showAllFiles, "all", "a", false, "serve files ignored by git as well")

	_ = viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("serve.rate", serveCmd.Flags().Lookup("rate"))
}
