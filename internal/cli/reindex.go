package cli

import (
	"fmt"
	"io"

	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/deppfellow/pixelmags/internal/service"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func ReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex [kind...]",
		Short: "Rebuild search indexes from the entity store",
		Long: `Rebuild the search index of each given kind, or of every kind when none
is given. Documents whose record no longer exists are removed.

Examples:
  pixelmags reindex
  pixelmags reindex magazines subscription-plans`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(args)
			if err != nil {
				return err
			}

			rt, err := newApp()
			if err != nil {
				return err
			}
			defer rt.close()

			srv, services, err := rt.openServices()
			if err != nil {
				return err
			}
			defer srv.Close()

			results, err := services.Reindex(cmd.Context(), kinds...)
			printReindexResults(cmd.OutOrStdout(), results)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", color.New(color.FgRed).Sprint("FAILED"), err)
				return err
			}

			return nil
		},
	}
}

func parseKinds(args []string) ([]model.Kind, error) {
	kinds := make([]model.Kind, 0, len(args))
	for _, arg := range args {
		kind, ok := model.ParseKind(arg)
		if !ok {
			return nil, fmt.Errorf("unknown kind %q", arg)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func printReindexResults(w io.Writer, results []service.ReindexResult) {
	for _, result := range results {
		fmt.Fprintf(w, "%-18s %s indexed  %s removed\n",
			color.New(color.FgCyan).Sprint(result.Kind),
			color.New(color.FgGreen).Sprintf("%6d", result.Indexed),
			color.New(color.FgYellow).Sprintf("%6d", result.Removed),
		)
	}
}
