package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/naveenspark/vendora/pkg/api"
	"github.com/naveenspark/vendora/pkg/domain"
)

func newDashboardCmd(d *deps) *cobra.Command {
	var business, from, to string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the dashboard figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			p := api.AnalyticsParams{BusinessID: business}
			if p.StartDate, err = parseDay("from", from); err != nil {
				return err
			}
			if p.EndDate, err = parseDay("to", to); err != nil {
				return err
			}

			var stats *domain.DashboardStats
			var recent *domain.PagedResult[domain.Order]
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				var err error
				stats, err = d.api.Dashboard(ctx, tok, p)
				return err
			})
			g.Go(func() error {
				var err error
				recent, err = d.api.ListOrders(ctx, tok, api.OrderParams{
					BusinessID: business,
					Pagination: api.Pagination{Page: 1, Limit: 5},
				})
				return err
			})
			if err := g.Wait(); err != nil {
				return friendly(err)
			}

			if d.flags.jsonOut {
				return printJSON(out(cmd), map[string]any{"stats": stats, "recentOrders": recent.Items})
			}
			printDashboard(cmd, stats, recent.Items)
			return nil
		},
	}
	cmd.Flags().StringVar(&business, "business", "", "limit figures to one business")
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")
	return cmd
}

func printDashboard(cmd *cobra.Command, s *domain.DashboardStats, recent []domain.Order) {
	w := out(cmd)
	fmt.Fprintln(w, titleStyle.Render("Dashboard"))
	printField(w, "orders", fmt.Sprintf("%d", s.TotalOrders))
	printField(w, "revenue", money(s.TotalRevenue))
	printField(w, "businesses", fmt.Sprintf("%d", s.TotalBusinesses))
	printField(w, "users", fmt.Sprintf("%d (%d active)", s.TotalUsers, s.ActiveUsers))

	fmt.Fprintln(w, "\n"+labelStyle.Render("Orders by status"))
	t := newTable(w)
	for _, st := range domain.OrderStatuses {
		fmt.Fprintf(t, "  %s\t%d\n", st, s.OrdersByStatus[string(st)])
	}
	t.Flush() //nolint:errcheck

	if len(s.RevenueByDay) > 0 {
		days := append([]domain.DailyRevenue(nil), s.RevenueByDay...)
		sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
		fmt.Fprintln(w, "\n"+labelStyle.Render("Revenue by day"))
		t = newTable(w)
		for _, dr := range days {
			fmt.Fprintf(t, "  %s\t%s\t%d orders\n", dr.Date, money(dr.Revenue), dr.Orders)
		}
		t.Flush() //nolint:errcheck
	}

	if len(s.TopBusinesses) > 0 {
		fmt.Fprintln(w, "\n"+labelStyle.Render("Top businesses"))
		t = newTable(w)
		for i, b := range s.TopBusinesses {
			fmt.Fprintf(t, "  %d.\t%s\t%s\t%d orders\n", i+1, b.Name, money(b.Revenue), b.Orders)
		}
		t.Flush() //nolint:errcheck
	}

	if len(recent) > 0 {
		fmt.Fprintln(w, "\n"+labelStyle.Render("Recent orders"))
		t = newTable(w)
		for _, o := range recent {
			fmt.Fprintf(t, "  %s\t%s\t%s\t%s\n", orderRef(o), o.Status, money(o.Total), day(o.CreatedAt))
		}
		t.Flush() //nolint:errcheck
	}
}
