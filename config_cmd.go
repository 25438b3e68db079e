package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# cache settings
cache:
  # maximum total weight, e.g. 128MiB. a value's weight is its length plus
  # twice the length of its key.
  capacity: "128MiB"
  # drop the superseded entry when a key is written again
  reclaim_overwrites: false
  # zstd level for cached markup (0 disables compression)
  compression: 0

# terminal rendering
render:
  # style name or JSON path (default "auto")
  style: "auto"
  # word-wrap at width (0 detects the terminal width)
  width: 0

# rendercache serve
serve:
  addr: "localhost:8080"
  # renders per second
  rate: 20
`

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Edit the rendercache config file",
	Long:    paragraph(fmt.Sprintf("\n%s the rendercache config file with $EDITOR. A commented default file is written first if none exists.", keyword("Edit"))),
	Example: paragraph("rendercache config\nrendercache config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		file, err := ensureConfigFile(configFile)
		if err != nil {
			return err
		}

		c, err := editor.Cmd("rendercache", file)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = cmd.OutOrStdout()
		c.Stderr = cmd.ErrOrStderr()
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Wrote config file to:", file)
		return nil
	},
}

// ensureConfigFile writes defaultConfig to file unless it already exists and
// returns the expanded path. An empty file means the config file viper loaded.
func ensureConfigFile(file string) (string, error) {
	if file == "" {
		file = viper.ConfigFileUsed()
	}
	if file == "" {
		return "", errors.New("no config file location")
	}
	file = expandPath(file)

	switch ext := filepath.Ext(file); ext {
	case ".yaml", ".yml":
	default:
		return "", fmt.Errorf("%q is not a supported configuration type: use .yaml or .yml", ext)
	}

	_, err := os.Stat(file)
	switch {
	case err == nil:
		return file, nil
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("unable to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return "", fmt.Errorf("unable to create directory: %w", err)
	}
	if err := os.WriteFile(file, []byte(defaultConfig), 0o600); err != nil {
		return "", fmt.Errorf("unable to write config file: %w", err)
	}
	log.Info("wrote default configuration", "path", file)
	return file, nil
}
