package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/deppfellow/pixelmags/internal/lib/utils"
	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/deppfellow/pixelmags/internal/search"
	"github.com/deppfellow/pixelmags/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type searcher interface {
	Reindex(ctx context.Context, kinds ...model.Kind) ([]service.ReindexResult, error)
	Search(ctx context.Context, kind model.Kind, text string, page search.Page) (any, error)
}

// runSearch queries the index of kind. An in-memory index starts out empty,
// so it is first rebuilt from the store.
func runSearch(ctx context.Context, s searcher, inMemory bool, kind model.Kind, text string, page search.Page, logger *zerolog.Logger) (any, error) {
	if inMemory {
		results, err := s.Reindex(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to build in-memory %s index: %w", kind, err)
		}
		for _, r := range results {
			logger.Debug().Str("kind", r.Kind.String()).Int("indexed", r.Indexed).Msg("built in-memory index")
		}
	}

	return s.Search(ctx, kind, text, page)
}

func SearchCmd() *cobra.Command {
	var (
		page int
		size int
	)

	cmd := &cobra.Command{
		Use:   "search <kind> <query>",
		Short: "Query a search index and print the matching records as JSON",
		Long: `Query the index of one kind with the query string syntax and print the
rehydrated records.

Examples:
  pixelmags search magazines 'code:AAA'
  pixelmags search issues 'title:spring publishedAt:>"2024-01-01"'`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := model.ParseKind(args[0])
			if !ok {
				return fmt.Errorf("unknown kind %q", args[0])
			}
			if page < 0 || page > search.MaxPage || size <= 0 || size > search.MaxPageSize {
				return fmt.Errorf("page must be in [0, %d] and size in [1, %d]", search.MaxPage, search.MaxPageSize)
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

			records, err := runSearch(cmd.Context(), services, rt.cfg.Search.Path == "", kind,
				strings.Join(args[1:], " "), search.PageAt(page, size), rt.logger)
			if err != nil {
				return err
			}

			return utils.PrintJSON(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "zero-based result page")
	cmd.Flags().IntVar(&size, "size", 20, "results per page")

	return cmd
}
