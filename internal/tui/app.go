package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/vendora/pkg/debounce"
	"github.com/naveenspark/vendora/pkg/guard"
	"github.com/naveenspark/vendora/pkg/session"
)

type view int

const (
	viewDashboard view = iota
	viewOrders
	viewBusinesses
	viewProducts
	viewUsers
	viewYou
	viewLogin
)

// defaultSearchDebounce is the pause after the last keystroke before a search runs.
const defaultSearchDebounce = 300 * time.Millisecond

// sessionChangedMsg carries a session reloaded after the session file changed.
type sessionChangedMsg struct {
	sess session.Session
}

// sessionWatchClosedMsg ends the session watch loop.
type sessionWatchClosedMsg struct{}

// searchClosedMsg ends the debounce wait loop.
type searchClosedMsg struct{}

// Options tunes the App.
type Options struct {
	SearchDebounce time.Duration
	// Sessions delivers session snapshots when another process changes the session file.
	Sessions <-chan session.Session
}

// App is the root Bubbletea model.
type App struct {
	env        *Env
	search     *debounce.Debouncer[searchInput]
	sessions   <-chan session.Session
	view       view
	dashboard  dashboardModel
	orders     ordersModel
	businesses businessesModel
	products   productsModel
	users      usersModel
	you        youModel
	login      loginModel
	expired    bool
	helpOpen   bool
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates a new TUI application. It starts on the sign-in screen when
// no token is available.
func NewApp(env *Env, opts Options) App {
	delay := opts.SearchDebounce
	if delay <= 0 {
		delay = defaultSearchDebounce
	}
	search := debounce.New[searchInput](delay)
	a := App{
		env:        env,
		search:     search,
		sessions:   opts.Sessions,
		dashboard:  newDashboardModel(env),
		orders:     newOrdersModel(env, search.Push),
		businesses: newBusinessesModel(env, search.Push),
		products:   newProductsModel(env, search.Push),
		users:      newUsersModel(env, search.Push),
		you:        newYouModel(env),
		login:      newLoginModel(env, false),
	}
	if env.Token() == "" {
		a.view = viewLogin
	}
	return a
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{shimmerTickCmd(), waitSearch(a.search), waitSession(a.sessions), dashboardTickCmd()}
	if a.view != viewLogin {
		cmds = append(cmds, a.dashboard.Init())
	}
	return tea.Batch(cmds...)
}

// Close stops the debouncer and cancels in-flight fetches.
func (a App) Close() {
	a.search.Close()
	a.closeQueries()
}

func (a App) closeQueries() {
	a.dashboard.stats.Close()
	a.dashboard.recent.Close()
	a.orders.list.Close()
	a.orders.detailQ.Close()
	a.businesses.list.Close()
	a.businesses.detailQ.Close()
	a.products.list.Close()
	a.users.list.Close()
	a.you.me.Close()
}

func waitSearch(d *debounce.Debouncer[searchInput]) tea.Cmd {
	return func() tea.Msg {
		in, ok := <-d.C()
		if !ok {
			return searchClosedMsg{}
		}
		return searchSettledMsg(in)
	}
}

func waitSession(ch <-chan session.Session) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		sess, ok := <-ch
		if !ok {
			return sessionWatchClosedMsg{}
		}
		return sessionChangedMsg{sess: sess}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + help(1) = 4 lines
		body := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 4}
		a.dashboard, _ = a.dashboard.Update(body)
		a.orders, _ = a.orders.Update(body)
		a.businesses, _ = a.businesses.Update(body)
		a.products, _ = a.products.Update(body)
		a.users, _ = a.users.Update(body)
		a.you, _ = a.you.Update(body)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case searchClosedMsg, sessionWatchClosedMsg:
		return a, nil

	case dashboardTickMsg:
		// Signed out: keep the clock running but send nothing.
		if a.view == viewLogin {
			return a, dashboardTickCmd()
		}
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.Update(msg)
		return a, cmd

	case searchSettledMsg:
		var cmd tea.Cmd
		switch msg.target {
		case searchOrders:
			a.orders, cmd = a.orders.Update(msg)
		case searchBusinesses:
			a.businesses, cmd = a.businesses.Update(msg)
		case searchProducts:
			a.products, cmd = a.products.Update(msg)
		case searchUsers:
			a.users, cmd = a.users.Update(msg)
		}
		return a, tea.Batch(cmd, waitSearch(a.search))

	case sessionChangedMsg:
		next := waitSession(a.sessions)
		if a.env.TokenOverride != "" {
			return a, next
		}
		if !msg.sess.Authenticated() && a.view != viewLogin {
			a, cmd := a.expire()
			return a, tea.Batch(cmd, next)
		}
		if msg.sess.Authenticated() && a.view == viewLogin {
			a, cmd := a.resume()
			return a, tea.Batch(cmd, next)
		}
		return a, next

	case sessionExpiredMsg:
		return a.expire()

	case loginDoneMsg:
		a.login, _ = a.login.Update(msg)
		if msg.err != nil {
			return a, nil
		}
		return a.resume()

	case loggedOutMsg:
		a.you, _ = a.you.Update(msg)
		if msg.err != nil {
			return a, nil
		}
		a.closeQueries()
		a.expired = false
		a.login = newLoginModel(a.env, false)
		a.view = viewLogin
		return a, nil

	case tea.KeyMsg:
		return a.updateKeys(msg)
	}

	// Results and ticks go to every screen: a fetch started on one tab may
	// finish after the operator switched away.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.dashboard, cmd = a.dashboard.Update(msg)
	cmds = append(cmds, cmd)
	a.orders, cmd = a.orders.Update(msg)
	cmds = append(cmds, cmd)
	a.businesses, cmd = a.businesses.Update(msg)
	cmds = append(cmds, cmd)
	a.products, cmd = a.products.Update(msg)
	cmds = append(cmds, cmd)
	a.users, cmd = a.users.Update(msg)
	cmds = append(cmds, cmd)
	a.you, cmd = a.you.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// expire switches to the expired screen. Repeated expiries are ignored.
func (a App) expire() (App, tea.Cmd) {
	if a.expired || a.view == viewLogin {
		return a, nil
	}
	a.expired = true
	a.search.Cancel()
	a.closeQueries()
	a.login = newLoginModel(a.env, true)
	a.view = viewLogin
	return a, nil
}

// resume leaves the sign-in screen for the dashboard.
func (a App) resume() (App, tea.Cmd) {
	a.expired = false
	a.view = viewDashboard
	return a, a.dashboard.Init()
}

func (a App) updateKeys(msg tea.KeyMsg) (App, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.helpOpen {
		switch msg.String() {
		case "h", "esc":
			a.helpOpen = false
		case "q":
			return a, tea.Quit
		}
		return a, nil
	}

	if a.view == viewLogin {
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		return a, cmd
	}

	if !a.isEditing() {
		switch msg.String() {
		case "q":
			return a, tea.Quit
		case "h", "?":
			a.helpOpen = true
			return a, nil
		case "1", "2", "3", "4", "5", "6":
			return a.switchTo(view(msg.String()[0] - '1'))
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case viewOrders:
		a.orders, cmd = a.orders.Update(msg)
	case viewBusinesses:
		a.businesses, cmd = a.businesses.Update(msg)
	case viewProducts:
		a.products, cmd = a.products.Update(msg)
	case viewUsers:
		a.users, cmd = a.users.Update(msg)
	case viewYou:
		a.you, cmd = a.you.Update(msg)
	}
	return a, cmd
}

func (a App) switchTo(v view) (App, tea.Cmd) {
	if v == a.view {
		return a, nil
	}
	a.view = v
	switch v {
	case viewDashboard:
		return a, a.dashboard.Init()
	case viewOrders:
		return a, a.orders.Init()
	case viewBusinesses:
		return a, a.businesses.Init()
	case viewProducts:
		return a, a.products.Init()
	case viewUsers:
		return a, a.users.Init()
	case viewYou:
		return a, a.you.Init()
	}
	return a, nil
}

func (a App) isEditing() bool {
	switch a.view {
	case viewOrders:
		return a.orders.searching
	case viewBusinesses:
		return a.businesses.editing()
	case viewProducts:
		return a.products.searching
	case viewUsers:
		return a.users.searching
	case viewYou:
		return a.you.confirming
	case viewLogin:
		return true
	}
	return false
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	header := center(logo, a.width)

	userLine := ""
	if a.env.Session != nil {
		if u := a.env.Session.Session().User; u != nil && a.view != viewLogin {
			userLine = metaStyle.Render(u.FullName) + " " + RoleStyle(u.Role).Render(u.Role)
		}
	}
	header += "\n" + center(userLine, a.width)

	tabs := []struct {
		key  string
		name string
		v    view
	}{
		{"1", "Dashboard", viewDashboard},
		{"2", "Orders", viewOrders},
		{"3", "Businesses", viewBusinesses},
		{"4", "Products", viewProducts},
		{"5", "Users", viewUsers},
		{"6", "You", viewYou},
	}
	colWidth := 0
	if len(tabs) > 0 {
		colWidth = a.width / len(tabs)
	}
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max((colWidth-labelWidth)/2, 0)
		rightPad := max(colWidth-labelWidth-leftPad, 0)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, help string
	switch a.view {
	case viewDashboard:
		body, help = a.dashboard.View(), a.dashboard.helpKeys()
	case viewOrders:
		body, help = a.orders.View(), a.orders.helpKeys()
	case viewBusinesses:
		body, help = a.businesses.View(), a.businesses.helpKeys()
	case viewProducts:
		body, help = a.products.View(), a.products.helpKeys()
	case viewUsers:
		body, help = a.users.View(), a.users.helpKeys()
	case viewYou:
		body, help = a.you.View(), a.you.helpKeys()
	case viewLogin:
		body, help = a.login.View(), a.login.helpKeys()
	}

	if a.helpOpen {
		body = helpView(a.env.APIURL)
		help = helpBar("esc", "close")
	}

	chrome := 4
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")
	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabBar.String(), body, help)
}

func center(s string, width int) string {
	pad := max((width-lipgloss.Width(s))/2, 0)
	return strings.Repeat(" ", pad) + s
}

// Run starts the TUI and blocks until the operator quits. A 401 reported by g
// and a sign-out by another process both switch to the expired screen.
func Run(env *Env, g *guard.Guard, opts Options) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if opts.Sessions == nil && env.Session != nil {
		ch, err := env.Session.Watch(ctx)
		if err != nil {
			env.logger().WithError(err).Debug("session watch unavailable")
		} else {
			opts.Sessions = ch
		}
	}

	app := NewApp(env, opts)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if g != nil {
		g.OnExpired(func() { p.Send(sessionExpiredMsg{}) })
	}
	_, err := p.Run()
	return err
}
