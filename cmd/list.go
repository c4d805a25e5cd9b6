package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/marcus/bizdesk/internal/intl"
	"github.com/marcus/bizdesk/internal/models"
	"github.com/marcus/bizdesk/pkg/console/entityform"
)

var listCmd = &cobra.Command{
	Use:   "list <entity>",
	Short: "Print a collection as a table",
	Long: `Prints every record of a collection using the same columns as the
console. Filters are passed to the backend as query parameters.

Examples:
  bizdesk list leads
  bizdesk list deals --filter status=won
  bizdesk list products --search chair`,
	GroupID:           "data",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeEntities,
	RunE:              runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringArrayP("filter", "f", nil, "Filter as field=value (repeatable)")
	listCmd.Flags().String("search", "", "Free text search")
}

func completeEntities(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, e := range entityform.Catalog() {
		if strings.HasPrefix(e.Name, toComplete) {
			names = append(names, e.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func lookupEntity(name string) (entityform.Entity, error) {
	e, ok := entityform.Lookup(strings.ToLower(strings.TrimSpace(name)))
	if !ok {
		names := make([]string, 0, len(entityform.Catalog()))
		for _, e := range entityform.Catalog() {
			names = append(names, e.Name)
		}
		return entityform.Entity{}, fmt.Errorf("unknown entity %q (one of: %s)", name, strings.Join(names, ", "))
	}
	return e, nil
}

// parseFilters turns field=value pairs into a query filter.
func parseFilters(pairs []string, search string) (map[string]string, error) {
	filter := map[string]string{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid filter %q, want field=value", p)
		}
		filter[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if search != "" {
		filter["search"] = search
	}
	return filter, nil
}

func runList(cmd *cobra.Command, args []string) error {
	e, err := lookupEntity(args[0])
	if err != nil {
		return err
	}
	pairs, _ := cmd.Flags().GetStringArray("filter")
	search, _ := cmd.Flags().GetString("search")
	filter, err := parseFilters(pairs, search)
	if err != nil {
		return err
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	client, err := s.client()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), s.cfg.SubmitTimeout)
	defer cancel()
	page, err := client.List(ctx, e.Name, filter)
	if err != nil {
		return fmt.Errorf("list %s: %w", e.Name, err)
	}
	renderList(cmd.OutOrStdout(), e, page.Results, s.cfg.Currency, s.translator())
	return nil
}

var (
	listHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	listCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	listBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// renderList writes records as a bordered table followed by a count.
func renderList(w io.Writer, e entityform.Entity, recs []models.Record, currency string, t *intl.Translator) {
	headers := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		headers[i] = t.T("columns."+c.Field, c.Label)
	}
	rows := make([][]string, len(recs))
	for i, rec := range recs {
		row := make([]string, len(e.Columns))
		for j, c := range e.Columns {
			row[j] = c.Format(rec, currency)
		}
		rows[i] = row
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(listBorderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			return listCellStyle
		})

	fmt.Fprintln(w, tbl.Render())
	fmt.Fprintln(w, t.Tf("page.count", "{{.Count}} records", map[string]any{"Count": len(recs)}))
}
