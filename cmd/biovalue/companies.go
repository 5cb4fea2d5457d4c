package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jask/biovalue/internal/wizard"
)

func newCompaniesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "companies",
		Aliases: []string{"company", "co"},
		Short:   "List, add, import and remove tracked companies",
	}
	cmd.AddCommand(newCompaniesListCmd(root))
	cmd.AddCommand(newCompaniesAddCmd(root))
	cmd.AddCommand(newCompaniesImportCmd(root))
	cmd.AddCommand(newCompaniesRemoveCmd(root))
	return cmd
}

func newCompaniesListCmd(root *rootOptions) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the tracked companies as a table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv(cmd.Context(), root.configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			list, err := env.catalog.List(cmd.Context())
			if err != nil {
				return err
			}
			renderCompanies(cmd.OutOrStdout(), wizard.Rank(list, filter))
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only companies matching this name or ticker")
	return cmd
}

func renderCompanies(w io.Writer, list []wizard.Company) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Name", "Ticker", "Stage", "Area", "Cash $M", "Burn $M/mo", "Runway"})
	for _, c := range list {
		t.AppendRow(table.Row{
			c.ID, c.Name, c.Ticker, c.Stage, c.TherapeuticArea,
			amount(c.CashPosition), amount(c.BurnRate),
			wizard.DraftFromCompany(c).Runway().String(),
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d companies", len(list))})
	t.Render()
}

func amount(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.StringFixed(1)
}

type addOptions struct {
	values map[wizard.Field]*string
}

func newCompaniesAddCmd(root *rootOptions) *cobra.Command {
	opts := addOptions{values: map[wizard.Field]*string{}}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a company to the collection",
		Example: `  biovalue companies add --name "Zephyr Bio" --ticker ZPHR --cash 120 --burn 8.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft, err := opts.draft()
			if err != nil {
				return err
			}
			env, err := openEnv(cmd.Context(), root.configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			c, err := env.catalog.Create(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s), runway %s\n", c.Name, c.ID, wizard.DraftFromCompany(c).Runway())
			return nil
		},
	}
	flags := []struct {
		field wizard.Field
		name  string
		usage string
	}{
		{wizard.FieldName, "name", "company name (required)"},
		{wizard.FieldTicker, "ticker", "exchange ticker"},
		{wizard.FieldStage, "stage", "development stage, e.g. \"Phase 2\""},
		{wizard.FieldTherapeuticArea, "area", "therapeutic area"},
		{wizard.FieldDescription, "description", "one-line description"},
		{wizard.FieldCashPosition, "cash", "cash position in $M"},
		{wizard.FieldBurnRate, "burn", "monthly burn in $M"},
	}
	for _, f := range flags {
		opts.values[f.field] = cmd.Flags().String(f.name, "", f.usage)
	}
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// draft applies the flag values through the same rules the evaluation form
// uses.
func (o addOptions) draft() (wizard.Draft, error) {
	var d wizard.Draft
	for _, f := range wizard.Fields() {
		v, ok := o.values[f]
		if !ok {
			continue
		}
		if err := d.Set(f, *v); err != nil {
			return wizard.Draft{}, err
		}
	}
	if err := d.Validate(); err != nil {
		return wizard.Draft{}, err
	}
	return d, nil
}

func newCompaniesImportCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import companies from CSV (name,ticker,stage,area,cash,burn)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context(), root.configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			res, err := env.importer.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d\n", res.Imported, res.Skipped)
			for _, e := range res.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), e)
			}
			if len(res.Errors) > 0 {
				return fmt.Errorf("%d rows failed", len(res.Errors))
			}
			return nil
		},
	}
}

var errNoSuchCompany = errors.New("no such company")

func newCompaniesRemoveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a company by id",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context(), root.configPath)
			if err != nil {
				return err
			}
			defer env.Close()

			c, ok, err := env.catalog.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", errNoSuchCompany, args[0])
			}
			if err := env.catalog.Delete(cmd.Context(), c.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", c.Name)
			return nil
		},
	}
}
