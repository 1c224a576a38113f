package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/naveenspark/vendora/internal/browser"
	"github.com/naveenspark/vendora/pkg/api"
	"github.com/naveenspark/vendora/pkg/domain"
)

// orderFilters are the flags shared by orders list and orders export.
type orderFilters struct {
	status   string
	business string
	search   string
	from     string
	to       string
	page     int
	limit    int
}

func (f *orderFilters) bind(cmd *cobra.Command, paged bool) {
	cmd.Flags().StringVar(&f.status, "status", "", "filter by status ("+statusList()+")")
	cmd.Flags().StringVar(&f.business, "business", "", "filter by business id")
	cmd.Flags().StringVar(&f.search, "search", "", "search order number or customer")
	cmd.Flags().StringVar(&f.from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "last day, YYYY-MM-DD")
	if paged {
		cmd.Flags().IntVar(&f.page, "page", 1, "page number")
		cmd.Flags().IntVar(&f.limit, "limit", 0, "rows per page (default ui.page_size)")
	}
}

func (f orderFilters) params(defaultLimit int) (api.OrderParams, error) {
	p := api.OrderParams{
		BusinessID: f.business,
		Search:     strings.TrimSpace(f.search),
		Pagination: api.Pagination{Page: f.page, Limit: f.limit},
	}
	if p.Limit == 0 {
		p.Limit = defaultLimit
	}
	if f.status != "" {
		s := domain.OrderStatus(strings.ToLower(f.status))
		if !domain.ValidOrderStatus(string(s)) {
			return p, fmt.Errorf("unknown status %q: want one of %s", f.status, statusList())
		}
		p.Status = s
	}
	var err error
	if p.StartDate, err = parseDay("from", f.from); err != nil {
		return p, err
	}
	if p.EndDate, err = parseDay("to", f.to); err != nil {
		return p, err
	}
	if !p.StartDate.IsZero() && !p.EndDate.IsZero() && p.EndDate.Before(p.StartDate) {
		return p, fmt.Errorf("--to %s is before --from %s", f.to, f.from)
	}
	return p, nil
}

func parseDay(flag, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: want YYYY-MM-DD, got %q", flag, v)
	}
	return t, nil
}

func statusList() string {
	names := make([]string, len(domain.OrderStatuses))
	for i, s := range domain.OrderStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func newOrdersCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order"},
		Short:   "List, inspect, update and export orders",
	}
	cmd.AddCommand(
		newOrdersListCmd(d),
		newOrdersGetCmd(d),
		newOrdersStatusCmd(d),
		newOrdersExportCmd(d),
	)
	return cmd
}

func newOrdersListCmd(d *deps) *cobra.Command {
	var f orderFilters
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			p, err := f.params(d.cfg.UI.PageSize)
			if err != nil {
				return err
			}
			page, err := d.api.ListOrders(cmd.Context(), tok, p)
			if err != nil {
				return friendly(err)
			}
			if d.flags.jsonOut {
				return printJSON(out(cmd), page)
			}
			if len(page.Items) == 0 {
				fmt.Fprintln(out(cmd), "No orders found")
				return nil
			}
			w := newTable(out(cmd))
			printTableHeader(w, "ORDER", "STATUS", "BUSINESS", "CUSTOMER", "TOTAL", "PLACED")
			for _, o := range page.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					orderRef(o), o.Status, truncate(o.BusinessName, 24), truncate(o.CustomerName, 20), money(o.Total), day(o.CreatedAt))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			printPageFooter(out(cmd), page)
			return nil
		},
	}
	f.bind(cmd, true)
	return cmd
}

func newOrdersGetCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "get ORDER_ID",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			o, err := d.api.GetOrder(cmd.Context(), tok, args[0])
			if err != nil {
				return friendly(err)
			}
			if d.flags.jsonOut {
				return printJSON(out(cmd), o)
			}
			printOrder(cmd, o)
			return nil
		},
	}
}

func printOrder(cmd *cobra.Command, o *domain.Order) {
	w := out(cmd)
	fmt.Fprintf(w, "%s  %s\n", titleStyle.Render("Order "+orderRef(*o)), o.Status)
	printField(w, "id", o.ID)
	printField(w, "business", o.BusinessName)
	printField(w, "customer", o.CustomerName)
	printField(w, "placed", day(o.CreatedAt))
	printField(w, "notes", o.Notes)
	if len(o.Items) > 0 {
		fmt.Fprintln(w)
		t := newTable(w)
		printTableHeader(t, "QTY", "ITEM", "AMOUNT")
		for _, it := range o.Items {
			fmt.Fprintf(t, "%d\t%s\t%s\n", it.Quantity, it.Name, money(it.Price*float64(it.Quantity)))
		}
		t.Flush() //nolint:errcheck
	}
	fmt.Fprintf(w, "\n%s %s\n", labelStyle.Render("total"), money(o.Total))
}

func newOrdersStatusCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "status ORDER_ID STATUS",
		Short: "Change the status of an order",
		Long:  "Change the status of an order. STATUS is one of " + statusList() + ".",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			status := domain.OrderStatus(strings.ToLower(args[1]))
			if !domain.ValidOrderStatus(string(status)) {
				return fmt.Errorf("unknown status %q: want one of %s", args[1], statusList())
			}
			o, err := d.api.UpdateOrderStatus(cmd.Context(), tok, args[0], status)
			if err != nil {
				return friendly(err)
			}
			d.log.WithField("order_id", o.ID).WithField("status", o.Status).Info("order status changed")
			if d.flags.jsonOut {
				return printJSON(out(cmd), o)
			}
			fmt.Fprintf(out(cmd), "%s Order %s is now %s\n", okStyle.Render("✓"), orderRef(*o), o.Status)
			return nil
		},
	}
}

func newOrdersExportCmd(d *deps) *cobra.Command {
	var f orderFilters
	var output string
	var open bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download orders as CSV",
		Long: `Download every order matching the filters as CSV.

Examples:
  vendora orders export --status delivered --from 2026-10-01 --to 2026-10-31
  vendora orders export -o october.csv --open`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			p, err := f.params(0)
			if err != nil {
				return err
			}
			blob, err := d.api.ExportOrders(cmd.Context(), tok, p)
			if err != nil {
				return friendly(err)
			}

			path := output
			if path == "" {
				path = filepath.Base(blob.Filename)
			}
			if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
				return fmt.Errorf("save export: %w", err)
			}
			fmt.Fprintf(out(cmd), "%s Saved %d bytes to %s\n", okStyle.Render("✓"), len(blob.Data), path)

			if open {
				if err := browser.Open(path); err != nil {
					fmt.Fprintf(out(cmd), "Could not open the file: %v\n", err)
				}
			}
			return nil
		},
	}
	f.bind(cmd, false)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: name sent by the server)")
	cmd.Flags().BoolVar(&open, "open", false, "open the file when done")
	return cmd
}
