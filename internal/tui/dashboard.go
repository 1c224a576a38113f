package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/vendora/pkg/api"
	"github.com/naveenspark/vendora/pkg/domain"
	"github.com/naveenspark/vendora/pkg/query"
)

// dashboardPollInterval is how often the dashboard auto-refreshes.
const dashboardPollInterval = time.Minute

type dashboardTickMsg time.Time

func dashboardTickCmd() tea.Cmd {
	return tea.Tick(dashboardPollInterval, func(t time.Time) tea.Msg {
		return dashboardTickMsg(t)
	})
}

type dashboardModel struct {
	env    *Env
	stats  *query.Query[api.AnalyticsParams, *domain.DashboardStats]
	recent *query.Query[api.OrderParams, *domain.PagedResult[domain.Order]]
	width  int
	height int
}

func newDashboardModel(env *Env) dashboardModel {
	log := env.logger()
	return dashboardModel{
		env:    env,
		stats:  query.New(env.API.Dashboard, query.WithName("dashboard"), query.WithLogger(log)),
		recent: query.New(env.API.ListOrders, query.WithName("recent-orders"), query.WithLogger(log)),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	token := m.env.Token()
	return tea.Batch(
		m.stats.Use(token, api.AnalyticsParams{}),
		m.recent.Use(token, api.OrderParams{Pagination: api.Pagination{Page: 1, Limit: 5}}),
	)
}

func (m dashboardModel) refresh() tea.Cmd {
	return tea.Batch(m.stats.Refetch(), m.recent.Refetch())
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	if m.stats.Update(msg) {
		return m, expiredCmd(m.stats.Error())
	}
	if m.recent.Update(msg) {
		return m, expiredCmd(m.recent.Error())
	}

	switch msg := msg.(type) {
	case dashboardTickMsg:
		return m, tea.Batch(m.refresh(), dashboardTickCmd())
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		if msg.String() == "r" {
			return m, m.refresh()
		}
	}
	return m, nil
}

func (m dashboardModel) helpKeys() string {
	return helpBar("1-6", "tabs", "r", "refresh", "h", "help", "q", "quit")
}

func (m dashboardModel) View() string {
	s := m.stats.Data()
	if s == nil {
		if m.stats.Err() != "" {
			return " " + errorStyle.Render("error: "+m.stats.Err())
		}
		return " " + dimStyle.Render("loading dashboard...")
	}

	var b strings.Builder
	cards := []struct{ label, value string }{
		{"orders", fmt.Sprintf("%d", s.TotalOrders)},
		{"revenue", formatMoney(s.TotalRevenue)},
		{"businesses", fmt.Sprintf("%d", s.TotalBusinesses)},
		{"users", fmt.Sprintf("%d (%d active)", s.TotalUsers, s.ActiveUsers)},
	}
	var line strings.Builder
	for _, c := range cards {
		line.WriteString(" " + sectionHeaderStyle.Render(c.label) + " " + moneyStyle.Render(c.value) + "   ")
	}
	b.WriteString(line.String() + "\n\n")

	b.WriteString(" " + sectionHeaderStyle.Render("orders by status") + "\n")
	maxCount := 0
	for _, n := range s.OrdersByStatus {
		maxCount = max(maxCount, n)
	}
	for _, st := range domain.OrderStatuses {
		n := s.OrdersByStatus[string(st)]
		fmt.Fprintf(&b, "   %s %4d %s\n",
			StatusStyle(st).Render(padRight(string(st), 10)), n,
			StatusStyle(st).Render(bar(float64(n), float64(maxCount), 30)))
	}

	if len(s.RevenueByDay) > 0 {
		b.WriteString("\n " + sectionHeaderStyle.Render("revenue by day") + "\n")
		days := append([]domain.DailyRevenue(nil), s.RevenueByDay...)
		sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
		if len(days) > 7 {
			days = days[len(days)-7:]
		}
		maxRev := 0.0
		for _, d := range days {
			maxRev = max(maxRev, d.Revenue)
		}
		for _, d := range days {
			fmt.Fprintf(&b, "   %s %s %s\n", metaStyle.Render(d.Date), moneyStyle.Render(fmt.Sprintf("%11s", formatMoney(d.Revenue))), accentStyle.Render(bar(d.Revenue, maxRev, 30)))
		}
	}

	if len(s.TopBusinesses) > 0 {
		b.WriteString("\n " + sectionHeaderStyle.Render("top businesses") + "\n")
		for i, tb := range s.TopBusinesses {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "   %s %s %s %s\n",
				rankStyle(i+1).Render(fmt.Sprintf("%d.", i+1)),
				normalStyle.Render(padRight(tb.Name, 24)),
				moneyStyle.Render(fmt.Sprintf("%11s", formatMoney(tb.Revenue))),
				dimStyle.Render(fmt.Sprintf("%d orders", tb.Orders)))
		}
	}

	if page := m.recent.Data(); page != nil && len(page.Items) > 0 {
		b.WriteString("\n " + sectionHeaderStyle.Render("recent orders") + "\n")
		for _, o := range page.Items {
			fmt.Fprintf(&b, "   %s %s %s %s\n",
				padRight(orderLabel(o), 10),
				StatusStyle(o.Status).Render(padRight(string(o.Status), 10)),
				moneyStyle.Render(fmt.Sprintf("%10s", formatMoney(o.Total))),
				metaStyle.Render(formatTime(o.CreatedAt)))
		}
	}
	return b.String()
}
