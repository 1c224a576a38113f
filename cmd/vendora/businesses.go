package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naveenspark/vendora/internal/validate"
	"github.com/naveenspark/vendora/pkg/api"
	"github.com/naveenspark/vendora/pkg/domain"
)

func newBusinessesCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "businesses",
		Aliases: []string{"business", "biz"},
		Short:   "Manage vendor businesses",
	}
	cmd.AddCommand(
		newBusinessesListCmd(d),
		newBusinessesGetCmd(d),
		newBusinessesCreateCmd(d),
		newBusinessesDeleteCmd(d),
	)
	return cmd
}

func newBusinessesListCmd(d *deps) *cobra.Command {
	var p api.BusinessParams
	var active string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List businesses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			switch strings.ToLower(active) {
			case "":
			case "true", "yes":
				v := true
				p.Active = &v
			case "false", "no":
				v := false
				p.Active = &v
			default:
				return fmt.Errorf("--active: want true or false, got %q", active)
			}
			d.defaultLimit(&p.Pagination)
			page, err := d.api.ListBusinesses(cmd.Context(), tok, p)
			if err != nil {
				return friendly(err)
			}
			if d.flags.jsonOut {
				return printJSON(out(cmd), page)
			}
			if len(page.Items) == 0 {
				fmt.Fprintln(out(cmd), "No businesses found")
				return nil
			}
			w := newTable(out(cmd))
			printTableHeader(w, "ID", "NAME", "CATEGORY", "EMAIL", "ACTIVE")
			for _, b := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", b.ID, truncate(b.Name, 28), b.Category, b.Email, yesNo(b.Active))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printPageFooter(out(cmd), page)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Search, "search", "", "search by name")
	cmd.Flags().StringVar(&p.Category, "category", "", "filter by category")
	cmd.Flags().StringVar(&active, "active", "", "filter by active state (true or false)")
	pageFlags(cmd, &p.Pagination)
	return cmd
}

func newBusinessesGetCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "get BUSINESS_ID",
		Short: "Show one business",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			b, err := d.api.GetBusiness(cmd.Context(), tok, args[0])
			if err != nil {
				return friendly(err)
			}
			if d.flags.jsonOut {
				return printJSON(out(cmd), b)
			}
			printBusiness(cmd, b)
			return nil
		},
	}
}

func printBusiness(cmd *cobra.Command, b *domain.Business) {
	w := out(cmd)
	fmt.Fprintln(w, titleStyle.Render(b.Name))
	printField(w, "id", b.ID)
	printField(w, "category", b.Category)
	printField(w, "email", b.Email)
	printField(w, "phone", b.Phone)
	printField(w, "address", b.Address)
	printField(w, "active", yesNo(b.Active))
	if !b.CreatedAt.IsZero() {
		printField(w, "created", day(b.CreatedAt))
	}
	if b.Description != "" {
		fmt.Fprintln(w, "\n"+mutedStyle.Render(b.Description))
	}
}

func newBusinessesCreateCmd(d *deps) *cobra.Command {
	var in api.BusinessInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a business",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			in.Name = strings.TrimSpace(in.Name)
			if err := validate.Struct(in); err != nil {
				return err
			}
			b, err := d.api.CreateBusiness(cmd.Context(), tok, in)
			if err != nil {
				return friendly(err)
			}
			d.log.WithField("business_id", b.ID).Info("business created")
			if d.flags.jsonOut {
				return printJSON(out(cmd), b)
			}
			fmt.Fprintf(out(cmd), "%s Created %s (%s)\n", okStyle.Render("✓"), b.Name, b.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "business name (required)")
	cmd.Flags().StringVar(&in.Category, "category", "", "category")
	cmd.Flags().StringVar(&in.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "contact phone")
	cmd.Flags().StringVar(&in.Address, "address", "", "street address")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	return cmd
}

func newBusinessesDeleteCmd(d *deps) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete BUSINESS_ID",
		Short: "Delete a business",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			id := args[0]
			if !force && !confirm(cmd.InOrStdin(), out(cmd), fmt.Sprintf("Delete business %s? This cannot be undone.", id)) {
				fmt.Fprintln(out(cmd), "Aborted")
				return nil
			}
			if err := d.api.DeleteBusiness(cmd.Context(), tok, id); err != nil {
				return friendly(err)
			}
			d.log.WithField("business_id", id).Info("business deleted")
			fmt.Fprintf(out(cmd), "%s Deleted business %s\n", okStyle.Render("✓"), id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	return cmd
}
