package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sidhant-sriv/gallery-api/store"
)

func newImportCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Seed the database backend from the JSON collection files",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbStore, ok := e.store.(*store.DBStore)
			if !ok {
				return errors.New("import needs STORE_BACKEND=postgres or sqlite")
			}
			for _, cat := range e.cats {
				items, err := e.json.List(cmd.Context(), cat.Name)
				if err != nil {
					e.log.Warn("skipping category", zap.String("category", cat.Name), zap.Error(err))
					continue
				}
				seeded, err := dbStore.Seed(cmd.Context(), cat.Name, items)
				if err != nil {
					return fmt.Errorf("seeding %s: %w", cat.Name, err)
				}
				state := "skipped (not empty)"
				switch {
				case len(items) == 0:
					state = "nothing to import"
				case seeded:
					state = fmt.Sprintf("imported %d item(s)", len(items))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", cat.Name, state)
			}
			return nil
		},
	}
}
