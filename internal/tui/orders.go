package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/vendora/pkg/api"
	"github.com/naveenspark/vendora/pkg/client"
	"github.com/naveenspark/vendora/pkg/domain"
	"github.com/naveenspark/vendora/pkg/query"
)

type orderUpdatedMsg struct {
	order *domain.Order
	err   error
}

type orderCopiedMsg struct {
	id  string
	err error
}

type ordersModel struct {
	env     *Env
	list    *query.Query[api.OrderParams, *domain.PagedResult[domain.Order]]
	detailQ *query.Query[string, *domain.Order]
	params  api.OrderParams
	push    func(searchInput)

	cursor    int
	searching bool
	search    string
	detail    bool
	busy      bool
	status    string
	width     int
	height    int
}

func newOrdersModel(env *Env, push func(searchInput)) ordersModel {
	log := env.logger()
	return ordersModel{
		env:     env,
		list:    query.New(env.API.ListOrders, query.WithName("orders"), query.WithLogger(log)),
		detailQ: query.New(env.API.GetOrder, query.WithName("order"), query.WithLogger(log)),
		params:  api.OrderParams{Pagination: api.Pagination{Page: 1, Limit: env.pageSize()}},
		push:    push,
	}
}

func (m ordersModel) Init() tea.Cmd {
	return m.list.Use(m.env.Token(), m.params)
}

func (m ordersModel) selected() (domain.Order, bool) {
	page := m.list.Data()
	if page == nil || m.cursor < 0 || m.cursor >= len(page.Items) {
		return domain.Order{}, false
	}
	return page.Items[m.cursor], true
}

// current is the order the detail pane or the list cursor points at.
func (m ordersModel) current() (domain.Order, bool) {
	if m.detail {
		if o := m.detailQ.Data(); o != nil {
			return *o, true
		}
	}
	return m.selected()
}

func (m ordersModel) Update(msg tea.Msg) (ordersModel, tea.Cmd) {
	if m.list.Update(msg) {
		m.clampCursor()
		return m, expiredCmd(m.list.Error())
	}
	if m.detailQ.Update(msg) {
		return m, expiredCmd(m.detailQ.Error())
	}

	switch msg := msg.(type) {
	case searchSettledMsg:
		if msg.target != searchOrders {
			return m, nil
		}
		return m.applySearch(msg.text)

	case orderUpdatedMsg:
		m.busy = false
		if msg.err != nil {
			m.status = errorStyle.Render(client.Message(msg.err))
			return m, expiredCmd(msg.err)
		}
		m.status = successStyle.Render(fmt.Sprintf("%s → %s", orderLabel(*msg.order), msg.order.Status))
		cmds := []tea.Cmd{m.list.Refetch()}
		if m.detail {
			cmds = append(cmds, m.detailQ.Refetch())
		}
		return m, tea.Batch(cmds...)

	case orderCopiedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("copy failed: %v", msg.err))
		} else {
			m.status = successStyle.Render("copied " + msg.id)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m ordersModel) updateSearch(msg tea.KeyMsg) (ordersModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		return m, nil
	case "enter":
		m.searching = false
		return m.applySearch(m.search)
	}
	next := editRune(m.search, msg.String())
	if next != m.search {
		m.search = next
		if m.push != nil {
			m.push(searchInput{target: searchOrders, text: next})
		}
	}
	return m, nil
}

func (m ordersModel) applySearch(text string) (ordersModel, tea.Cmd) {
	m.search = text
	m.params.Search = strings.TrimSpace(text)
	m.params.Page = 1
	m.cursor = 0
	return m, m.list.Use(m.env.Token(), m.params)
}

func (m ordersModel) updateKeys(msg tea.KeyMsg) (ordersModel, tea.Cmd) {
	m.status = ""

	if m.detail {
		switch msg.String() {
		case "esc", "backspace":
			m.detail = false
			return m, nil
		case "a", "x", "c", "r":
		default:
			return m, nil
		}
	}

	switch msg.String() {
	case "j", "down":
		if page := m.list.Data(); page != nil && m.cursor < len(page.Items)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.searching = true
	case "s":
		m.params.Status = nextStatusFilter(m.params.Status)
		m.params.Page = 1
		m.cursor = 0
		return m, m.list.Use(m.env.Token(), m.params)
	case "]", "n":
		if page := m.list.Data(); page != nil && page.HasNext() {
			m.params.Page++
			m.cursor = 0
			return m, m.list.Use(m.env.Token(), m.params)
		}
	case "[", "p":
		if m.params.Page > 1 {
			m.params.Page--
			m.cursor = 0
			return m, m.list.Use(m.env.Token(), m.params)
		}
	case "enter":
		if o, ok := m.selected(); ok {
			m.detail = true
			return m, m.detailQ.Use(m.env.Token(), o.ID)
		}
	case "a":
		if o, ok := m.current(); ok {
			next := o.Status.Next()
			if next == "" {
				m.status = dimStyle.Render(orderLabel(o) + " is " + string(o.Status))
				return m, nil
			}
			return m.changeStatus(o, next)
		}
	case "x":
		if o, ok := m.current(); ok {
			if o.Status.Terminal() {
				m.status = dimStyle.Render(orderLabel(o) + " is " + string(o.Status))
				return m, nil
			}
			return m.changeStatus(o, domain.OrderCancelled)
		}
	case "c":
		if o, ok := m.current(); ok {
			id := o.ID
			return m, func() tea.Msg {
				return orderCopiedMsg{id: id, err: clipboard.WriteAll(id)}
			}
		}
	case "r":
		if m.detail {
			return m, tea.Batch(m.list.Refetch(), m.detailQ.Refetch())
		}
		return m, m.list.Refetch()
	}
	return m, nil
}

func (m ordersModel) changeStatus(o domain.Order, to domain.OrderStatus) (ordersModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.status = dimStyle.Render("updating " + orderLabel(o) + "...")
	env := m.env
	return m, func() tea.Msg {
		updated, err := env.API.UpdateOrderStatus(context.Background(), env.Token(), o.ID, to)
		return orderUpdatedMsg{order: updated, err: err}
	}
}

func (m *ordersModel) clampCursor() {
	page := m.list.Data()
	if page == nil || len(page.Items) == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= len(page.Items) {
		m.cursor = len(page.Items) - 1
	}
}

// nextStatusFilter cycles "" → pending → … → cancelled → "".
func nextStatusFilter(cur domain.OrderStatus) domain.OrderStatus {
	if cur == "" {
		return domain.OrderStatuses[0]
	}
	for i, s := range domain.OrderStatuses {
		if s == cur && i+1 < len(domain.OrderStatuses) {
			return domain.OrderStatuses[i+1]
		}
	}
	return ""
}

func (m ordersModel) helpKeys() string {
	switch {
	case m.searching:
		return helpBar("enter", "apply", "esc", "done")
	case m.detail:
		return helpBar("a", "advance", "x", "cancel", "c", "copy id", "esc", "back")
	}
	return helpBar("1-6", "tabs", "j/k", "nav", "s", "status", "[ ]", "page", "/", "search", "a", "advance", "enter", "open", "q", "quit")
}

func (m ordersModel) View() string {
	if m.detail {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(m.filterLine() + "\n")
	b.WriteString(renderSearch(m.search, m.searching) + "\n")

	page := m.list.Data()
	switch {
	case m.list.Err() != "":
		b.WriteString(" " + errorStyle.Render("error: "+m.list.Err()) + "\n")
	case m.list.Loading() && page == nil:
		b.WriteString(" " + dimStyle.Render("loading orders...") + "\n")
	case page == nil || len(page.Items) == 0:
		b.WriteString(" " + dimStyle.Render("no orders") + "\n")
	default:
		for i, o := range page.Items {
			row := fmt.Sprintf("%s  %s  %s  %s  %s  %s",
				padRight(orderLabel(o), 10),
				StatusStyle(o.Status).Render(padRight(string(o.Status), 10)),
				normalStyle.Render(padRight(o.BusinessName, 18)),
				dimStyle.Render(padRight(o.CustomerName, 16)),
				moneyStyle.Render(fmt.Sprintf("%10s", formatMoney(o.Total))),
				metaStyle.Render(formatTime(o.CreatedAt)),
			)
			if i == m.cursor {
				b.WriteString(accentStyle.Render(" > ") + selectedRowBg.Render(row) + "\n")
			} else {
				b.WriteString("   " + row + "\n")
			}
		}
	}

	b.WriteString("\n " + metaStyle.Render(pageLine(page)))
	if m.list.Loading() && page != nil {
		b.WriteString(" " + dimStyle.Render("refreshing..."))
	}
	if m.status != "" {
		b.WriteString("\n " + m.status)
	}
	return b.String()
}

func (m ordersModel) filterLine() string {
	parts := []string{sectionHeaderStyle.Render("status")}
	label := "all"
	if m.params.Status == "" {
		parts = append(parts, selectedStyle.Underline(true).Render(label))
	} else {
		parts = append(parts, dimStyle.Render(label))
	}
	for _, s := range domain.OrderStatuses {
		if s == m.params.Status {
			parts = append(parts, StatusStyle(s).Underline(true).Render(string(s)))
		} else {
			parts = append(parts, dimStyle.Render(string(s)))
		}
	}
	return " " + strings.Join(parts, "  ")
}

func (m ordersModel) detailView() string {
	o := m.detailQ.Data()
	if o == nil {
		if m.detailQ.Err() != "" {
			return " " + errorStyle.Render("error: "+m.detailQ.Err())
		}
		return " " + dimStyle.Render("loading order...")
	}

	var b strings.Builder
	fmt.Fprintf(&b, " %s  %s\n", selectedStyle.Render("Order "+orderLabel(*o)), StatusStyle(o.Status).Render(string(o.Status)))
	fmt.Fprintf(&b, " %s %s\n", sectionHeaderStyle.Render("id        "), dimStyle.Render(o.ID))
	fmt.Fprintf(&b, " %s %s\n", sectionHeaderStyle.Render("business  "), normalStyle.Render(o.BusinessName))
	fmt.Fprintf(&b, " %s %s\n", sectionHeaderStyle.Render("customer  "), normalStyle.Render(o.CustomerName))
	fmt.Fprintf(&b, " %s %s\n", sectionHeaderStyle.Render("placed    "), dimStyle.Render(formatTime(o.CreatedAt)))
	if o.Notes != "" {
		fmt.Fprintf(&b, " %s %s\n", sectionHeaderStyle.Render("notes     "), normalStyle.Render(o.Notes))
	}
	b.WriteString("\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "   %3d × %s %s\n", it.Quantity, padRight(it.Name, 28), moneyStyle.Render(formatMoney(it.Price*float64(it.Quantity))))
	}
	fmt.Fprintf(&b, "\n   %s %s\n", padRight("total", 34), moneyStyle.Render(formatMoney(o.Total)))
	if next := o.Status.Next(); next != "" {
		fmt.Fprintf(&b, "\n %s\n", dimStyle.Render("a: mark "+string(next)))
	}
	if m.status != "" {
		b.WriteString(" " + m.status)
	}
	return b.String()
}
