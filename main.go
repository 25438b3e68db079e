// Package main provides the entry point for the rendercache CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/rendercache/internal/cache"
	"github.com/dgnsrekt/rendercache/internal/render"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	capacity   string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "rendercache",
		Short: "Render markdown through a weighted LRU cache",
		Long: paragraph(
			fmt.Sprintf("\nRender markdown through a %s, keyed per component and props.", keyword("weighted LRU cache")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(expandPath(configFile))
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	if os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	if _, err := cache.ParseCapacity(viper.Get("cache.capacity")); err != nil {
		return fmt.Errorf("invalid cache.capacity: %w", err)
	}
	if level := viper.GetInt("cache.compression"); level < 0 || level > 22 {
		return fmt.Errorf("cache.compression must be between 0 and 22, got %d", level)
	}
	return validateStyle(viper.GetString("render.style"))
}

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		style = expandPath(style)
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

// expandPath expands environment variables and a leading tilde.
func expandPath(path string) string {
	p, err := homedir.Expand(os.ExpandEnv(path))
	if err != nil {
		return path
	}
	return p
}

// newMemo builds the shared render cache from the loaded configuration.
func newMemo() (*cache.SyncCache[any, string, []byte], error) {
	capacity, err := cache.ParseCapacity(viper.Get("cache.capacity"))
	if err != nil {
		return nil, err
	}

	logger := log.Default().WithPrefix("cache")
	return cache.NewSync(cache.Config[any, string, []byte]{
		Capacity:          capacity,
		ReclaimOverwrites: viper.GetBool("cache.reclaim_overwrites"),
		Logger:            logger,
		OnEvict: func(token cache.Token, e cache.Entry[any, string, []byte]) {
			logger.Debug("evicted", "token", token, "component", render.DisplayName(e.Owner), "bytes", len(e.Value))
		},
	})
}

// newRenderer wires a renderer to memo using the configured codec and the
// render mode from the environment. The returned closer releases the codec.
func newRenderer(memo render.Memo) (render.Entry, func() error, error) {
	opts := render.Options{Logger: log.Default().WithPrefix("render")}
	closer := func() error { return nil }

	if level := viper.GetInt("cache.compression"); level > 0 {
		codec, err := render.NewZstdCodec(level)
		if err != nil {
			return render.Entry{}, nil, err
		}
		opts.Codec = codec
		closer = codec.Close
	}

	mode, err := render.ModeFromEnv()
	if err != nil {
		_ = closer()
		return render.Entry{}, nil, err
	}
	log.Debug("render mode", "mode", mode)

	entry, err := render.SelectEntry(render.NewRenderer(memo, opts), mode)
	if err != nil {
		_ = closer()
		return render.Entry{}, nil, err
	}
	return entry, closer, nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	dirs, err := configDirs()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	configFile = loadConfig(viper.GetViper(), dirs)

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", configFile, "config file")
	rootCmd.PersistentFlags().StringVarP(&capacity, "capacity", "c", "", "cache capacity in bytes, e.g. 64MiB")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug messages")

	// Config bindings
	_ = viper.BindPFlag("cache.capacity", rootCmd.PersistentFlags().Lookup("capacity"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	viper.SetDefault("cache.capacity", cache.FormatCapacity(cache.DefaultCapacity))
	viper.SetDefault("cache.reclaim_overwrites", false)
	viper.SetDefault("cache.compression", 0)
	viper.SetDefault("render.style", styles.AutoStyle)
	viper.SetDefault("render.width", 0)
	viper.SetDefault("serve.addr", "localhost:8080")
	viper.SetDefault("serve.rate", 20.0)

	rootCmd.AddCommand(renderCmd, serveCmd, replayCmd, configCmd, manCmd)
}

// configDirs lists where rendercache.yml is looked up, most specific first.
func configDirs() ([]string, error) {
	dirs, err := gap.NewScope(gap.User, "rendercache").ConfigDirs()
	if err != nil {
		return nil, fmt.Errorf("unable to find configuration directories: %w", err)
	}
	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "rendercache")}, dirs...)
	}
	if c := os.Getenv("RENDERCACHE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}
	return dirs, nil
}

// loadConfig reads rendercache.yml from the first of dirs holding one and
// returns the path the config command edits. It never writes a file.
func loadConfig(v *viper.Viper, dirs []string) string {
	for _, d := range dirs {
		v.AddConfigPath(d)
	}
	v.SetConfigName("rendercache")
	v.SetConfigType("yaml")
	v.SetEnvPrefix("rendercache")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := v.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return used
	}
	if len(dirs) == 0 {
		return ""
	}
	return filepath.Join(dirs[0], "rendercache.yml")
}
