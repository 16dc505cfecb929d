package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sidhant-sriv/gallery-api/upload"
)

func newItemsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Inspect and edit a category's collection",
	}
	cmd.AddCommand(newItemsListCommand(e), newItemsAddCommand(e), newItemsRemoveCommand(e))
	return cmd
}

func newItemsListCommand(e *env) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list <category>",
		Short: "Print the items of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := e.store.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tURL")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\n", it.ID, it.URL)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw collection")
	return cmd
}

func newItemsAddCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "add <category> <image file>",
		Short: "Copy an image into a category and append its record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := e.store.Category(args[0])
			if err != nil {
				return err
			}
			if !cat.Manageable() {
				return fmt.Errorf("category %q is read-only", cat.Name)
			}

			saver := upload.NewSaver(e.cfg.MaxUploadBytes, e.log)
			filename, err := saver.SaveFile(cat, args[1])
			if err != nil {
				return err
			}
			item, err := e.store.Append(cmd.Context(), cat.Name, filename)
			if err != nil {
				if derr := saver.Discard(cat, filename); derr != nil {
					e.log.Warn("could not discard asset", zap.String("file", filename), zap.Error(derr))
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", item.ID, item.URL)
			return nil
		},
	}
}

func newItemsRemoveCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <category> <id>...",
		Short: "Remove items by id (image files are kept)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := e.store.Category(args[0])
			if err != nil {
				return err
			}
			if !cat.Manageable() {
				return fmt.Errorf("category %q is read-only", cat.Name)
			}
			if err := e.store.Remove(cmd.Context(), cat.Name, args[1:]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d id(s) from %s\n", len(args)-1, cat.Name)
			return nil
		},
	}
}
