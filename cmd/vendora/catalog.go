package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naveenspark/vendora/internal/validate"
	"github.com/naveenspark/vendora/pkg/api"
	"github.com/naveenspark/vendora/pkg/client"
)

func pageFlags(cmd *cobra.Command, p *api.Pagination) {
	cmd.Flags().IntVar(&p.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "rows per page (default ui.page_size)")
}

func (d *deps) defaultLimit(p *api.Pagination) {
	if p.Limit == 0 {
		p.Limit = d.cfg.UI.PageSize
	}
}

func newProductsCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product"},
		Short:   "Browse, add and edit products",
	}
	cmd.AddCommand(newProductsListCmd(d), newProductsCreateCmd(d), newProductsUpdateCmd(d))
	return cmd
}

func newProductsListCmd(d *deps) *cobra.Command {
	var p api.ProductParams
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			d.defaultLimit(&p.Pagination)
			page, err := d.api.ListProducts(cmd.Context(), tok, p)
			if err != nil {
				return friendly(err)
			}
			if d.flags.jsonOut {
				return printJSON(out(cmd), page)
			}
			if len(page.Items) == 0 {
				fmt.Fprintln(out(cmd), "No products found")
				return nil
			}
			w := newTable(out(cmd))
			printTableHeader(w, "ID", "NAME", "CATEGORY", "PRICE", "STOCK", "AVAILABLE")
			for _, pr := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", pr.ID, truncate(pr.Name, 28), pr.Category, money(pr.Price), pr.Stock, yesNo(pr.Available))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printPageFooter(out(cmd), page)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.BusinessID, "business", "", "filter by business id")
	cmd.Flags().StringVar(&p.SubgroupID, "subgroup", "", "filter by subgroup id")
	cmd.Flags().StringVar(&p.Category, "category", "", "filter by category")
	cmd.Flags().StringVar(&p.Search, "search", "", "search by name")
	pageFlags(cmd, &p.Pagination)
	return cmd
}

func newProductsCreateCmd(d *deps) *cobra.Command {
	var in api.ProductInput
	var image string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product, optionally with an image",
		Long: `Create a product. With --image the product is uploaded as multipart form data.

Examples:
  vendora products create --business b1 --name "Al pastor taco" --price 4.25 --stock 40
  vendora products create --business b1 --name Horchata --price 3 --image horchata.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			in.Name = strings.TrimSpace(in.Name)
			if err := validate.Struct(in); err != nil {
				return err
			}

			var file *client.File
			if image != "" {
				f, err := os.Open(image)
				if err != nil {
					return fmt.Errorf("open image: %w", err)
				}
				defer f.Close() //nolint:errcheck
				file = &client.File{
					Name:        filepath.Base(image),
					ContentType: mime.TypeByExtension(filepath.Ext(image)),
					Content:     f,
				}
			}

			pr, err := d.api.CreateProduct(cmd.Context(), tok, in, file)
			if err != nil {
				return friendly(err)
			}
			d.log.WithField("product_id", pr.ID).Info("product created")
			if d.flags.jsonOut {
				return printJSON(out(cmd), pr)
			}
			fmt.Fprintf(out(cmd), "%s Created %s (%s) at %s\n", okStyle.Render("✓"), pr.Name, pr.ID, money(pr.Price))
			return nil
		},
	}
	cmd.Flags().StringVar(&in.BusinessID, "business", "", "owning business id (required)")
	cmd.Flags().StringVar(&in.Name, "name", "", "product name (required)")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().Float64Var(&in.Price, "price", 0, "unit price")
	cmd.Flags().IntVar(&in.Stock, "stock", 0, "units in stock")
	cmd.Flags().StringVar(&in.Category, "category", "", "category")
	cmd.Flags().StringVar(&in.SubgroupID, "subgroup", "", "subgroup id")
	cmd.Flags().BoolVar(&in.Available, "available", true, "list the product as available")
	cmd.Flags().StringVar(&image, "image", "", "image file to upload")
	return cmd
}

var productFields = []string{"name", "description", "price", "stock", "category", "subgroup", "available"}

func newProductsUpdateCmd(d *deps) *cobra.Command {
	var in api.ProductInput
	cmd := &cobra.Command{
		Use:   "update PRODUCT_ID",
		Short: "Change fields of a product",
		Long: `Change fields of a product. Only the flags given are changed.

Examples:
  vendora products update p1 --price 4.50
  vendora products update p1 --stock 0 --available=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !slices.ContainsFunc(productFields, flags.Changed) {
				return errors.New("nothing to change: pass at least one of --" + strings.Join(productFields, ", --"))
			}
			cur, err := d.api.GetProduct(cmd.Context(), tok, args[0])
			if err != nil {
				return friendly(err)
			}

			next := api.ProductInput{
				Name:        cur.Name,
				Description: cur.Description,
				Price:       cur.Price,
				Stock:       cur.Stock,
				Category:    cur.Category,
				BusinessID:  cur.BusinessID,
				SubgroupID:  cur.SubgroupID,
				Available:   cur.Available,
			}
			if flags.Changed("name") {
				next.Name = strings.TrimSpace(in.Name)
			}
			if flags.Changed("description") {
				next.Description = in.Description
			}
			if flags.Changed("price") {
				next.Price = in.Price
			}
			if flags.Changed("stock") {
				next.Stock = in.Stock
			}
			if flags.Changed("category") {
				next.Category = in.Category
			}
			if flags.Changed("subgroup") {
				next.SubgroupID = in.SubgroupID
			}
			if flags.Changed("available") {
				next.Available = in.Available
			}
			if err := validate.Struct(next); err != nil {
				return err
			}

			pr, err := d.api.UpdateProduct(cmd.Context(), tok, cur.ID, next)
			if err != nil {
				return friendly(err)
			}
			d.log.WithField("product_id", pr.ID).Info("product updated")
			if d.flags.jsonOut {
				return printJSON(out(cmd), pr)
			}
			fmt.Fprintf(out(cmd), "%s Updated %s (%s): %s, %d in stock\n", okStyle.Render("✓"), pr.Name, pr.ID, money(pr.Price), pr.Stock)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "product name")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().Float64Var(&in.Price, "price", 0, "unit price")
	cmd.Flags().IntVar(&in.Stock, "stock", 0, "units in stock")
	cmd.Flags().StringVar(&in.Category, "category", "", "category")
	cmd.Flags().StringVar(&in.SubgroupID, "subgroup", "", "subgroup id")
	cmd.Flags().BoolVar(&in.Available, "available", true, "list the product as available")
	return cmd
}

func newMealsCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "meals",
		Aliases: []string{"meal"},
		Short:   "Manage meals",
	}
	var p api.MealParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List meals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			d.defaultLimit(&p.Pagination)
			page, err := d.api.ListMeals(cmd.Context(), tok, p)
			if err != nil {
				return friendly(err)
			}
			if d.flags.jsonOut {
				return printJSON(out(cmd), page)
			}
			if len(page.Items) == 0 {
				fmt.Fprintln(out(cmd), "No meals found")
				return nil
			}
			w := newTable(out(cmd))
			printTableHeader(w, "ID", "NAME", "PRICE", "PREP", "AVAILABLE")
			for _, m := range page.Items {
				prep := "-"
				if m.PrepMinutes > 0 {
					prep = fmt.Sprintf("%d min", m.PrepMinutes)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.ID, truncate(m.Name, 28), money(m.Price), prep, yesNo(m.Available))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printPageFooter(out(cmd), page)
			return nil
		},
	}
	list.Flags().StringVar(&p.BusinessID, "business", "", "filter by business id")
	list.Flags().StringVar(&p.SubgroupID, "subgroup", "", "filter by subgroup id")
	list.Flags().StringVar(&p.Search, "search", "", "search by name")
	pageFlags(list, &p.Pagination)
	cmd.AddCommand(list, newMealsGetCmd(d), newMealsCreateCmd(d), newDeleteCmd(d, "meal", (*api.Client).DeleteMeal))
	return cmd
}

func newSubgroupsCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subgroups",
		Aliases: []string{"subgroup"},
		Short:   "Manage menu subgroups",
	}
	var p api.SubgroupParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List subgroups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			d.defaultLimit(&p.Pagination)
			page, err := d.api.ListSubgroups(cmd.Context(), tok, p)
			if err != nil {
				return friendly(err)
			}
			if d.flags.jsonOut {
				return printJSON(out(cmd), page)
			}
			if len(page.Items) == 0 {
				fmt.Fprintln(out(cmd), "No subgroups found")
				return nil
			}
			w := newTable(out(cmd))
			printTableHeader(w, "ID", "NAME", "BUSINESS", "POSITION")
			for _, s := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", s.ID, s.Name, s.BusinessID, s.Position)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printPageFooter(out(cmd), page)
			return nil
		},
	}
	list.Flags().StringVar(&p.BusinessID, "business", "", "filter by business id")
	pageFlags(list, &p.Pagination)
	cmd.AddCommand(list, newSubgroupsCreateCmd(d), newDeleteCmd(d, "subgroup", (*api.Client).DeleteSubgroup))
	return cmd
}

func newMealsGetCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "get MEAL_ID",
		Short: "Show one meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			m, err := d.api.GetMeal(cmd.Context(), tok, args[0])
			if err != nil {
				return friendly(err)
			}
			if d.flags.jsonOut {
				return printJSON(out(cmd), m)
			}
			w := out(cmd)
			fmt.Fprintln(w, titleStyle.Render(m.Name))
			printField(w, "id", m.ID)
			printField(w, "business", m.BusinessID)
			printField(w, "subgroup", m.SubgroupID)
			printField(w, "price", money(m.Price))
			if m.PrepMinutes > 0 {
				printField(w, "prep", fmt.Sprintf("%d min", m.PrepMinutes))
			}
			printField(w, "available", yesNo(m.Available))
			if m.Description != "" {
				fmt.Fprintln(w, "\n"+mutedStyle.Render(m.Description))
			}
			return nil
		},
	}
}

func newMealsCreateCmd(d *deps) *cobra.Command {
	var in api.MealInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a meal",
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
			m, err := d.api.CreateMeal(cmd.Context(), tok, in)
			if err != nil {
				return friendly(err)
			}
			d.log.WithField("meal_id", m.ID).Info("meal created")
			if d.flags.jsonOut {
				return printJSON(out(cmd), m)
			}
			fmt.Fprintf(out(cmd), "%s Created %s (%s) at %s\n", okStyle.Render("✓"), m.Name, m.ID, money(m.Price))
			return nil
		},
	}
	cmd.Flags().StringVar(&in.BusinessID, "business", "", "owning business id (required)")
	cmd.Flags().StringVar(&in.Name, "name", "", "meal name (required)")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().Float64Var(&in.Price, "price", 0, "price")
	cmd.Flags().IntVar(&in.PrepMinutes, "prep", 0, "preparation time in minutes")
	cmd.Flags().StringVar(&in.SubgroupID, "subgroup", "", "subgroup id")
	cmd.Flags().BoolVar(&in.Available, "available", true, "list the meal as available")
	return cmd
}

func newSubgroupsCreateCmd(d *deps) *cobra.Command {
	var in api.SubgroupInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a subgroup",
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
			g, err := d.api.CreateSubgroup(cmd.Context(), tok, in)
			if err != nil {
				return friendly(err)
			}
			d.log.WithField("subgroup_id", g.ID).Info("subgroup created")
			if d.flags.jsonOut {
				return printJSON(out(cmd), g)
			}
			fmt.Fprintf(out(cmd), "%s Created %s (%s)\n", okStyle.Render("✓"), g.Name, g.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.BusinessID, "business", "", "owning business id (required)")
	cmd.Flags().StringVar(&in.Name, "name", "", "subgroup name (required)")
	cmd.Flags().IntVar(&in.Position, "position", 0, "display position")
	return cmd
}

// newDeleteCmd builds "delete ID" for a resource, confirming unless --force.
func newDeleteCmd(d *deps, noun string, del func(c *api.Client, ctx context.Context, token, id string) error) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete " + strings.ToUpper(noun) + "_ID",
		Short: "Delete a " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			id := args[0]
			if !force && !confirm(cmd.InOrStdin(), out(cmd), fmt.Sprintf("Delete %s %s? This cannot be undone.", noun, id)) {
				fmt.Fprintln(out(cmd), "Aborted")
				return nil
			}
			if err := del(d.api, cmd.Context(), tok, id); err != nil {
				return friendly(err)
			}
			d.log.WithField(noun+"_id", id).Info(noun + " deleted")
			fmt.Fprintf(out(cmd), "%s Deleted %s %s\n", okStyle.Render("✓"), noun, id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation prompt")
	return cmd
}

func newUsersCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Browse platform accounts",
	}
	var p api.UserParams
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			d.defaultLimit(&p.Pagination)
			page, err := d.api.ListUsers(cmd.Context(), tok, p)
			if err != nil {
				return friendly(err)
			}
			if d.flags.jsonOut {
				return printJSON(out(cmd), page)
			}
			if len(page.Items) == 0 {
				fmt.Fprintln(out(cmd), "No users found")
				return nil
			}
			w := newTable(out(cmd))
			printTableHeader(w, "ID", "NAME", "EMAIL", "ROLE", "ACTIVE", "LAST LOGIN")
			for _, u := range page.Items {
				last := "never"
				if u.LastLoginAt != nil {
					last = day(*u.LastLoginAt)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", u.ID, truncate(u.FullName, 24), u.Email, u.Role, yesNo(u.Active), last)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printPageFooter(out(cmd), page)
			return nil
		},
	}
	list.Flags().StringVar(&p.Role, "role", "", "filter by role (admin, manager, vendor, customer)")
	list.Flags().StringVar(&p.Search, "search", "", "search by name or email")
	pageFlags(list, &p.Pagination)
	cmd.AddCommand(list)
	return cmd
}
