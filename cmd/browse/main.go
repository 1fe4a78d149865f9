// Command browse is a terminal front end for the apartments listing. It
// drives the same filter and pagination state a browser page would, against
// a running API.
package main

import (
	"apartmenthub/client"
	"apartmenthub/config"
	"apartmenthub/listing"
	"apartmenthub/logging"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "browse [query]",
	Short: "Browse apartment listings from the terminal",
	Long: `Browse apartment listings from the terminal.

The optional query restores a listing URL, for example "search=view&project=Skyline+Towers&page=2".

Commands:
  s <text>          search (debounced)
  p <project|all>   filter by project
  g <page>          go to page
  m                 load more
  r                 retry the last request
  u                 print the current listing URL
  q                 quit`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runBrowse,
}

func init() {
	rootCmd.Flags().String("api", "", "API base URL (defaults to API_BASE_URL)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

	baseURL, _ := cmd.Flags().GetString("api")
	if baseURL == "" {
		baseURL = cfg.APIBaseURL
	}

	initial := listing.DefaultFilters()
	if len(args) == 1 {
		values, err := url.ParseQuery(strings.TrimPrefix(args[0], "?"))
		if err != nil {
			return fmt.Errorf("invalid query %q: %w", args[0], err)
		}
		initial = listing.ParseFilters(values)
	}

	api, err := client.New(baseURL, client.WithLogger(logger))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	l := listing.New(cmd.Context(), api, initial, listing.WithSnapshots(func(s listing.Snapshot) {
		printSnapshot(out, s)
	}))
	defer l.Close()

	return newSession(l, cmd.InOrStdin(), out).run(cmd.Context())
}
