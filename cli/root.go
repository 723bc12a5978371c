// Package cli implements the blogsyndicator command line.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"sjsage522/blogsyndicator/config"
	"sjsage522/blogsyndicator/internal"
	"sjsage522/blogsyndicator/internal/syndicator"
)

// Execute runs the root command with ctx
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. The root command keeps the
// -s, -p and -d shortcuts of the original bot.
func NewRootCommand() *cobra.Command {
	var showPosts, purgeDB, deleteAll bool

	rootCmd := &cobra.Command{
		Use:           "blogsyndicator",
		Short:         "Share a blog's archive on social feeds",
		Long:          `Scrapes a blog archive, remembers every post in SQLite and publishes new posts to X, Slack and Redis streams.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !showPosts && !purgeDB && !deleteAll {
				return cmd.Help()
			}
			if deleteAll {
				if err := runDeleteAll(cmd, false); err != nil {
					return err
				}
			}
			if purgeDB {
				if err := runPurge(cmd, false); err != nil {
					return err
				}
			}
			if showPosts {
				return runShow(cmd)
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVarP(&showPosts, "show-posts", "s", false, "show posts in database")
	rootCmd.Flags().BoolVarP(&purgeDB, "purge-db", "p", false, "purge the database")
	rootCmd.Flags().BoolVarP(&deleteAll, "delete-all", "d", false, "delete all tweets")

	rootCmd.AddCommand(
		newSyncCommand(),
		newRunCommand(),
		newShowCommand(),
		newPurgeCommand(),
		newDeleteAllCommand(),
	)
	return rootCmd
}

// withServices loads the configuration, builds the services, runs fn and
// cleans up
func withServices(cmd *cobra.Command, fn func(cfg *config.Config, deps *internal.Dependencies) error) error {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	deps, err := initializeServices(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	return fn(cfg, deps)
}

func newSyndicator(deps *internal.Dependencies) *syndicator.Syndicator {
	return syndicator.New(deps.Crawler, deps.Store, feedPublisher(deps))
}

// confirm asks question on the command's input. An empty answer or "y"
// confirms.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), question)

	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "" || answer == "y", nil
}
