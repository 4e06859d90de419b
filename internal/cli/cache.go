package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacogips/mkapp/internal/config"
)

// cacheCmd groups the template cache commands
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local template cache",
	Long: `Manage downloaded template trees.

A cached template is reused on every run. Remove it to pick up changes made
to the template repository.`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached templates",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean [template]",
	Short: "Remove one cached template, or all of them",
	Long: `Remove a cached template tree. Without an argument the whole cache is
removed.

Examples:
  mkapp cache clean
  mkapp cache clean hello-world-react`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCacheClean,
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
}

func runCacheList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(globalConfig)
	if err != nil {
		return err
	}
	cache, err := newTemplateCache(cfg, "")
	if err != nil {
		return err
	}

	names, err := cache.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		printInfo(fmt.Sprintf("No cached templates in %s", cache.Root))
		return nil
	}

	printHeader(cache.Root)
	for _, name := range names {
		printInfo("  " + name)
	}
	return nil
}

func runCacheClean(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(globalConfig)
	if err != nil {
		return err
	}
	cache, err := newTemplateCache(cfg, "")
	if err != nil {
		return err
	}

	if len(args) == 1 {
		if err := cache.Remove(args[0]); err != nil {
			return err
		}
		printSuccess(fmt.Sprintf("Removed cached template %s", args[0]))
		return nil
	}

	if err := cache.Clean(); err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("Cleaned %s", cache.Root))
	return nil
}
