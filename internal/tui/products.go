package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/vendora/pkg/api"
	"github.com/naveenspark/vendora/pkg/domain"
	"github.com/naveenspark/vendora/pkg/query"
)

type productsModel struct {
	env    *Env
	list   *query.Query[api.ProductParams, *domain.PagedResult[domain.Product]]
	params api.ProductParams
	push   func(searchInput)

	cursor    int
	searching bool
	search    string
	width     int
	height    int
}

func newProductsModel(env *Env, push func(searchInput)) productsModel {
	return productsModel{
		env:    env,
		list:   query.New(env.API.ListProducts, query.WithName("products"), query.WithLogger(env.logger())),
		params: api.ProductParams{Pagination: api.Pagination{Page: 1, Limit: env.pageSize()}},
		push:   push,
	}
}

func (m productsModel) Init() tea.Cmd {
	return m.list.Use(m.env.Token(), m.params)
}

func (m productsModel) Update(msg tea.Msg) (productsModel, tea.Cmd) {
	if m.list.Update(msg) {
		if page := m.list.Data(); page != nil && m.cursor >= len(page.Items) {
			m.cursor = max(len(page.Items)-1, 0)
		}
		return m, expiredCmd(m.list.Error())
	}

	switch msg := msg.(type) {
	case searchSettledMsg:
		if msg.target != searchProducts {
			return m, nil
		}
		m.search = msg.text
		m.params.Search = strings.TrimSpace(msg.text)
		m.params.Page = 1
		m.cursor = 0
		return m, m.list.Use(m.env.Token(), m.params)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "esc", "enter":
				m.searching = false
				return m, nil
			}
			if next := editRune(m.search, msg.String()); next != m.search {
				m.search = next
				if m.push != nil {
					m.push(searchInput{target: searchProducts, text: next})
				}
			}
			return m, nil
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
		case "]":
			if page := m.list.Data(); page != nil && page.HasNext() {
				m.params.Page++
				m.cursor = 0
				return m, m.list.Use(m.env.Token(), m.params)
			}
		case "[":
			if m.params.Page > 1 {
				m.params.Page--
				m.cursor = 0
				return m, m.list.Use(m.env.Token(), m.params)
			}
		case "r":
			return m, m.list.Refetch()
		}
	}
	return m, nil
}

func (m productsModel) helpKeys() string {
	if m.searching {
		return helpBar("esc", "done")
	}
	return helpBar("1-6", "tabs", "j/k", "nav", "[ ]", "page", "/", "search", "r", "refresh", "q", "quit")
}

func (m productsModel) View() string {
	var b strings.Builder
	b.WriteString(renderSearch(m.search, m.searching) + "\n")

	page := m.list.Data()
	switch {
	case m.list.Err() != "":
		b.WriteString(" " + errorStyle.Render("error: "+m.list.Err()) + "\n")
	case m.list.Loading() && page == nil:
		b.WriteString(" " + dimStyle.Render("loading products...") + "\n")
	case page == nil || len(page.Items) == 0:
		b.WriteString(" " + dimStyle.Render("no products") + "\n")
	default:
		for i, p := range page.Items {
			stock := dimStyle.Render(fmt.Sprintf("%4d in stock", p.Stock))
			if p.Stock == 0 {
				stock = errorStyle.Render("  sold out   ")
			}
			row := fmt.Sprintf("%s  %s  %s  %s",
				normalStyle.Render(padRight(p.Name, 26)),
				dimStyle.Render(padRight(p.Category, 14)),
				moneyStyle.Render(fmt.Sprintf("%9s", formatMoney(p.Price))),
				stock,
			)
			if !p.Available {
				row += " " + metaStyle.Render("hidden")
			}
			if i == m.cursor {
				b.WriteString(accentStyle.Render(" > ") + selectedRowBg.Render(row) + "\n")
			} else {
				b.WriteString("   " + row + "\n")
			}
		}
	}
	b.WriteString("\n " + metaStyle.Render(pageLine(page)))
	return b.String()
}
