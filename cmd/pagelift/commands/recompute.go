package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// recomputeCmd represents the recompute command
var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Rebuild page scores and site metrics",
	Long: `Recomputes the derived score caches from the section ratings.

Without flags every page and site is recomputed. Individual page failures
are logged and skipped; the run continues.

Example:
  go run ./cmd/pagelift recompute
  go run ./cmd/pagelift recompute --site site-42`,
	RunE: runRecompute,
}

var recomputeSite string

func init() {
	rootCmd.AddCommand(recomputeCmd)

	recomputeCmd.Flags().StringVar(&recomputeSite, "site", "", "recompute a single site")
}

func runRecompute(cmd *cobra.Command, args []string) error {
	fmt.Println("=== pagelift Score Recompute ===")

	svcs, err := buildServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	start := time.Now()

	if recomputeSite != "" {
		result, err := svcs.metrics.UpdateAllPagesInSite(ctx, recomputeSite)
		if err != nil {
			return fmt.Errorf("❌ recompute site %s: %w", recomputeSite, err)
		}
		fmt.Printf("✅ Site %s: %d pages updated, %d failed (%.1fs)\n",
			recomputeSite, result.Pages, result.PagesFailed, time.Since(start).Seconds())
		return nil
	}

	result, err := svcs.metrics.UpdateAllScores(ctx)
	if err != nil {
		return fmt.Errorf("❌ recompute all: %w", err)
	}

	fmt.Printf("✅ %d sites, %d pages updated, %d pages failed, %d sites failed (%.1fs)\n",
		result.Sites, result.Pages, result.PagesFailed, result.SitesFailed, time.Since(start).Seconds())
	return nil
}
