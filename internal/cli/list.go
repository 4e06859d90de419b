package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacogips/mkapp/internal/config"
	"github.com/tacogips/mkapp/internal/scaffold"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available scaffolds",
	Long: `List the scaffolds a project can be created from.

Featured scaffolds are shown first.

Examples:
  mkapp list
  mkapp list --json
  mkapp list --scaffolds-dir ./scaffolds`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// List command flags
var (
	listJSON         bool
	listScaffoldsDir string
)

func init() {
	listCmd.Flags().BoolVar(&listJSON, FlagJSON, false, DescJSON)
	listCmd.Flags().StringVar(&listScaffoldsDir, FlagScaffoldsDir, "", DescScaffoldsDir)
}

// listOutput is the JSON form of a listing.
type listOutput struct {
	Featured []scaffold.Entry `json:"featured"`
	Others   []scaffold.Entry `json:"others"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(globalConfig)
	if err != nil {
		return err
	}
	registry, err := newRegistry(cfg, listScaffoldsDir)
	if err != nil {
		return err
	}
	listing, err := registry.List()
	if err != nil {
		return err
	}
	return writeListing(listing, listJSON)
}

func writeListing(listing *scaffold.Listing, asJSON bool) error {
	if asJSON {
		out := listOutput{Featured: listing.Featured, Others: listing.Others}
		if out.Featured == nil {
			out.Featured = []scaffold.Entry{}
		}
		if out.Others == nil {
			out.Others = []scaffold.Entry{}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal listing: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
		return nil
	}

	if len(listing.Featured) == 0 && len(listing.Others) == 0 {
		printWarning("No scaffolds found")
		return nil
	}

	for _, e := range listing.Featured {
		printEntry(e)
	}
	if len(listing.Featured) > 0 && len(listing.Others) > 0 {
		printSeparator()
	}
	for _, e := range listing.Others {
		printEntry(e)
	}
	return nil
}

func printEntry(e scaffold.Entry) {
	if e.ShortDescription == "" {
		printInfo(e.Name)
		return
	}
	printInfo(fmt.Sprintf("%-24s %s", e.Name, styled(dimStyle, e.ShortDescription)))
}
