package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/marcus/bizdesk/internal/intl"
	"github.com/marcus/bizdesk/internal/models"
	"github.com/marcus/bizdesk/pkg/console/entityform"
)

var exportCmd = &cobra.Command{
	Use:   "export <entity>...",
	Short: "Export collections to an Excel workbook",
	Long: `Writes one sheet per collection using the console's columns. Collections
are fetched in parallel.

Examples:
  bizdesk export leads --out leads.xlsx
  bizdesk export products services --out catalog.xlsx`,
	GroupID:           "data",
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeEntities,
	RunE:              runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("out", "o", "export.xlsx", "Output file")
}

// sheet is one exported collection.
type sheet struct {
	entity  entityform.Entity
	records []models.Record
}

func runExport(cmd *cobra.Command, args []string) error {
	entities := make([]entityform.Entity, 0, len(args))
	for _, a := range args {
		e, err := lookupEntity(a)
		if err != nil {
			return err
		}
		entities = append(entities, e)
	}
	out, _ := cmd.Flags().GetString("out")
	if filepath.Ext(out) != ".xlsx" {
		return fmt.Errorf("output file must end in .xlsx")
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
	sheets := make([]sheet, len(entities))
	g, gctx := errgroup.WithContext(ctx)
	for i, e := range entities {
		g.Go(func() error {
			page, err := client.List(gctx, e.Name, nil)
			if err != nil {
				return fmt.Errorf("list %s: %w", e.Name, err)
			}
			sheets[i] = sheet{entity: e, records: page.Results}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f, err := buildWorkbook(sheets, s.cfg.Currency, s.translator())
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(out); err != nil {
		return fmt.Errorf("save %s: %w", out, err)
	}

	total := 0
	for _, sh := range sheets {
		total += len(sh.records)
	}
	s.log.Info("export", zap.String("file", out), zap.Int("sheets", len(sheets)), zap.Int("records", total))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", total, out)
	return nil
}

// buildWorkbook lays out one sheet per collection: a bold header row, then
// one row per record formatted as in the console.
func buildWorkbook(sheets []sheet, currency string, t *intl.Translator) (*excelize.File, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, sh := range sheets {
		name := t.T("entities."+sh.entity.Name, sh.entity.Label)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
		if t.IsRTL() {
			rtl := true
			if err := f.SetSheetView(name, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
				f.Close()
				return nil, err
			}
		}

		for col, c := range sh.entity.Columns {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(name, cell, t.T("columns."+c.Field, c.Label)); err != nil {
				f.Close()
				return nil, err
			}
			colName, _ := excelize.ColumnNumberToName(col + 1)
			if err := f.SetColWidth(name, colName, colName, float64(c.Width)+2); err != nil {
				f.Close()
				return nil, err
			}
		}
		last, _ := excelize.CoordinatesToCellName(len(sh.entity.Columns), 1)
		if err := f.SetCellStyle(name, "A1", last, header); err != nil {
			f.Close()
			return nil, err
		}

		for r, rec := range sh.records {
			row := make([]any, len(sh.entity.Columns))
			for j, c := range sh.entity.Columns {
				row[j] = c.Format(rec, currency)
			}
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				f.Close()
				return nil, err
			}
		}
	}
	return f, nil
}
