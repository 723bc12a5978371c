package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sjsage522/blogsyndicator/config"
	"sjsage522/blogsyndicator/internal"
	"sjsage522/blogsyndicator/logger"
	apperrors "sjsage522/blogsyndicator/pkg/errors"
	"sjsage522/blogsyndicator/services/publisher"
	"sjsage522/blogsyndicator/services/worker"
)

const (
	purgeQuestion     = "You're about to purge the database, proceed? [Y/n]: "
	deleteAllQuestion = "Are you sure you want to delete ALL your tweets? [Y/n]: "
)

func newSyncCommand() *cobra.Command {
	var publish bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Crawl the archive once and store new posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(cfg *config.Config, deps *internal.Dependencies) error {
				if publish && feedPublisher(deps) == nil {
					logger.Warn("No feed configured, new posts are only stored")
				}

				result, err := newSyndicator(deps).Sync(cmd.Context(), publish)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for _, p := range result.Inserted {
					fmt.Fprintf(out, "New: %s\n", p)
				}
				fmt.Fprintf(out, "Crawled %d posts, %d new, %d already known\n",
					result.Crawled, len(result.Inserted), result.Skipped)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&publish, "publish", false, "publish new posts to the configured feeds")
	return cmd
}

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Sync and publish periodically until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(cfg *config.Config, deps *internal.Dependencies) error {
				log := logger.ForWorker()
				log.Info().
					Str("environment", cfg.Environment).
					Str("archive", cfg.ArchiveURL).
					Dur("sync_interval", cfg.SyncInterval).
					Int("publishers", deps.Publisher.Len()).
					Msg("Starting application")

				var trimmer publisher.Trimmer
				if cfg.RedisAddr != "" {
					trimmer = deps.Publisher
				}

				w := worker.NewWorker(cmd.Context(), newSyndicator(deps), trimmer, cfg.SyncInterval)
				w.Start()

				log.Info().Msg("Shutting down gracefully...")
				return nil
			})
		},
	}
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print every stored post",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd)
		},
	}
}

func runShow(cmd *cobra.Command) error {
	return withServices(cmd, func(cfg *config.Config, deps *internal.Dependencies) error {
		posts, err := newSyndicator(deps).Posts(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, p := range posts {
			fmt.Fprintf(out, "%d. %s\n", i, p)
		}
		return nil
	})
}

func newPurgeCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Drop every stored post",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPurge(cmd, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func runPurge(cmd *cobra.Command, yes bool) error {
	if !yes {
		ok, err := confirm(cmd, purgeQuestion)
		if err != nil || !ok {
			return err
		}
	}

	return withServices(cmd, func(cfg *config.Config, deps *internal.Dependencies) error {
		if err := newSyndicator(deps).Purge(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database purged.")
		return nil
	})
}

func newDeleteAllCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every tweet of the configured X account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeleteAll(cmd, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func runDeleteAll(cmd *cobra.Command, yes bool) error {
	if !yes {
		ok, err := confirm(cmd, deleteAllQuestion)
		if err != nil || !ok {
			return err
		}
	}

	return withServices(cmd, func(cfg *config.Config, deps *internal.Dependencies) error {
		if deps.Twitter == nil {
			return apperrors.NewConfiguration("deleting tweets needs CONSUMER_KEY, CONSUMER_SECRET, ACCESS_TOKEN and ACCESS_SECRET", nil)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Deleting all tweets...")
		start := time.Now()
		deleted, err := deps.Twitter.DeleteAll(cmd.Context(), deps.Policy)
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d tweets in %s\n", deleted, time.Since(start).Round(time.Second))
		return err
	})
}
