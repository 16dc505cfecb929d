package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sidhant-sriv/gallery-api/store"
)

type checkResult struct {
	Category string
	Items    int
	Err      error
}

func newCheckCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Read every category collection and report problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := checkAll(cmd.Context(), e.store)
			if err != nil {
				return err
			}
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %-10s %v\n", r.Category, r.Err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %-10s %d item(s)\n", r.Category, r.Items)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d categories failed", failed, len(results))
			}
			return nil
		},
	}
}

// checkAll lists every category concurrently. Per-category store failures are
// reported in the results; only cancellation aborts the run.
func checkAll(ctx context.Context, s store.ItemStore) ([]checkResult, error) {
	cats := s.Categories()
	results := make([]checkResult, len(cats))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, cat := range cats {
		i, cat := i, cat
		g.Go(func() error {
			items, err := s.List(gctx, cat.Name)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			results[i] = checkResult{Category: cat.Name, Items: len(items), Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
