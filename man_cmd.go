package main

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:                   "man",
	Short:                 "Generates manpages",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Hidden:                true,
	Args:                  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return fmt.Errorf("unable to build man page: %w", err)
		}

		manPage = manPage.WithSection("Environment",
			"RENDERCACHE_ENV selects the render mode: production or development (default).\n"+
				"RENDERCACHE_CONFIG_HOME overrides the config directory.\n"+
				"Any config key can be set as RENDERCACHE_<KEY>, e.g. RENDERCACHE_CACHE_CAPACITY.")
		fmt.Println(manPage.Build(roff.NewDocument()))
		return nil
	},
}
