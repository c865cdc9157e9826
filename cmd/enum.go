package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/marquee/internal/catalog/domain"
	"github.com/zjrosen/marquee/internal/presentation"
)

func newEnumCmd(app *session) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "enum:list",
		Short: "List rating and genre codes",
		Long: `List the codes accepted for movie ratings and genres.

Either the code or the name can be passed to movie:add and movie:update.`,
		Args:        cobra.NoArgs,
		Annotations: noCatalogAnnotations,
		RunE: func(_ *cobra.Command, _ []string) error {
			all := []presentation.EnumDTO{
				presentation.FromEnumeration("rating", domain.Ratings),
				presentation.FromEnumeration("genre", domain.Genres),
			}
			if name == "" {
				return app.out.FormatEnums(all)
			}
			for _, e := range all {
				if strings.EqualFold(e.Name, strings.TrimSuffix(name, "s")) {
					return app.out.FormatEnums([]presentation.EnumDTO{e})
				}
			}
			return fmt.Errorf("unknown enumeration %q (want rating or genre)", name)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "only list one enumeration: rating or genre")
	return cmd
}
