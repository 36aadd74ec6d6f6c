package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/bus"
	"github.com/matheus3301/chatterm/internal/state"
	"github.com/matheus3301/chatterm/internal/tui/keys"
	"github.com/matheus3301/chatterm/internal/tui/model"
	"github.com/matheus3301/chatterm/internal/tui/ui"
	"github.com/matheus3301/chatterm/internal/tui/views"
)

// Page names.
const (
	pageLogin   = "login"
	pageSignup  = "signup"
	pageHome    = "home"
	pageProfile = "profile"
	pageHelp    = "help"

	// scopeThread is the key scope of the home page while the
	// conversation pane has focus.
	scopeThread = "thread"
)

const (
	headerHeight = 7
	sidebarWidth = 42
	flashTick    = time.Second
)

// Options configures the TUI shell.
type Options struct {
	Profile        string
	Server         string
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// App is the main TUI application shell.
type App struct {
	app      *tview.Application
	theme    *ui.Theme
	pages    *ui.Pages
	vm       *model.ViewModel
	bus      *bus.Bus
	registry *keys.Registry
	logger   *zap.Logger
	opts     Options

	root        *tview.Flex
	sessionInfo *ui.SessionInfo
	menu        *ui.Menu
	crumbs      *ui.Crumbs
	flashBar    *ui.FlashBar
	prompt      *ui.Prompt

	login   *views.LoginView
	signup  *views.SignupView
	users   *views.UserList
	thread  *views.MessageThread
	profile *views.ProfileView
	help    *views.HelpView
	home    *tview.Flex

	promptOpen  bool
	promptFocus tview.Primitive

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application on top of vm. b is the bus vm
// publishes on.
func NewApp(vm *model.ViewModel, b *bus.Bus, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:         tview.NewApplication(),
		theme:       theme,
		pages:       ui.NewPages(),
		vm:          vm,
		bus:         b,
		registry:    keys.NewRegistry(),
		logger:      opts.Logger,
		opts:        opts,
		sessionInfo: ui.NewSessionInfo(theme),
		menu:        ui.NewMenu(theme),
		crumbs:      ui.NewCrumbs(theme),
		flashBar:    ui.NewFlashBar(theme),
		prompt:      ui.NewPrompt(theme),
		login:       views.NewLoginView(theme),
		signup:      views.NewSignupView(theme),
		users:       views.NewUserList(theme),
		thread:      views.NewMessageThread(theme),
		profile:     views.NewProfileView(theme),
		help:        views.NewHelpView(theme),
		ctx:         ctx,
		cancel:      cancel,
	}

	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

// homePage names the two-pane home screen in the crumbs and menu.
type homePage struct{ a *App }

func (h homePage) Name() string { return "Chats" }
func (h homePage) Start()       {}
func (h homePage) Stop()        {}
func (h homePage) Hints() []ui.MenuHint {
	if h.a.inThread() {
		return append(h.a.thread.Hints(), ui.MenuHint{Key: "d", Description: "Profile"})
	}
	return append(h.a.users.Hints(),
		ui.MenuHint{Key: "p", Description: "Profile"},
		ui.MenuHint{Key: "r", Description: "Reload"},
		ui.MenuHint{Key: "L", Description: "Logout"},
		ui.MenuHint{Key: "q", Description: "Quit"},
	)
}

func (a *App) setupBindings() {
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: ':',
		Description: "Command", Visible: true,
		Handler: func() { a.openPrompt(ui.PromptCommand) },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: '?',
		Description: "Help", Visible: true,
		Handler: func() { a.pages.Push(pageHelp) },
	})

	for _, page := range []string{pageProfile, pageHelp} {
		for _, k := range []tcell.Key{tcell.KeyEscape, tcell.KeyRune} {
			a.registry.AddView(page, &keys.Action{
				Key: k, Rune: 'q',
				Handler: a.back,
			})
		}
	}

	a.registry.AddView(pageHome, &keys.Action{Key: tcell.KeyRune, Rune: 'q', Handler: a.Stop})
	a.registry.AddView(pageHome, &keys.Action{Key: tcell.KeyRune, Rune: '/', Handler: func() { a.openPrompt(ui.PromptFilter) }})
	a.registry.AddView(pageHome, &keys.Action{Key: tcell.KeyRune, Rune: 'p', Handler: func() { a.showProfile(a.vm.Session()) }})
	a.registry.AddView(pageHome, &keys.Action{Key: tcell.KeyRune, Rune: 'r', Handler: a.loadUsers})
	a.registry.AddView(pageHome, &keys.Action{Key: tcell.KeyRune, Rune: 'L', Handler: a.logout})
	a.registry.AddView(pageHome, &keys.Action{Key: tcell.KeyTab, Handler: a.focusThread})
	for n := 1; n <= 9; n++ {
		a.registry.AddView(pageHome, &keys.Action{
			Key: tcell.KeyRune, Rune: rune('0' + n),
			Handler: func() { a.openPartner(a.users.UserByIndex(n)) },
		})
	}

	a.registry.AddView(scopeThread, &keys.Action{Key: tcell.KeyEscape, Handler: a.closePartner})
	a.registry.AddView(scopeThread, &keys.Action{Key: tcell.KeyTab, Handler: a.focusUsers})
	a.registry.AddView(scopeThread, &keys.Action{Key: tcell.KeyRune, Rune: 'i', Handler: func() { a.app.SetFocus(a.thread.Composer()) }})
	a.registry.AddView(scopeThread, &keys.Action{Key: tcell.KeyRune, Rune: 'a', Handler: func() { a.openPrompt(ui.PromptAttach) }})
	a.registry.AddView(scopeThread, &keys.Action{Key: tcell.KeyRune, Rune: 'x', Handler: a.detach})
	a.registry.AddView(scopeThread, &keys.Action{Key: tcell.KeyRune, Rune: 'd', Handler: func() { a.showProfile(a.vm.Partner()) }})
}

func (a *App) setupCallbacks() {
	a.login.SetOnSubmit(func(req api.LoginRequest) {
		a.login.SetBusy(true)
		a.async("login", func(ctx context.Context) error {
			return a.vm.Login(ctx, req)
		}, func(error) { a.login.SetBusy(false) })
	})
	a.login.SetOnSwitch(func() { a.navigate(state.PathSignup) })

	a.signup.SetOnSubmit(func(req api.SignupRequest) {
		a.signup.SetBusy(true)
		a.async("signup", func(ctx context.Context) error {
			return a.vm.Signup(ctx, req)
		}, func(error) { a.signup.SetBusy(false) })
	})
	a.signup.SetOnSwitch(func() { a.navigate(state.PathLogin) })

	a.users.SetSelectedFunc(func(row, _ int) {
		a.openPartner(a.users.UserByIndex(row))
	})

	a.thread.SetOnChange(func(text string) {
		a.vm.Composer().SetText(text)
	})
	a.thread.SetOnSend(func(string) { a.send() })

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.closePrompt()
		switch mode {
		case ui.PromptCommand:
			a.runCommand(ParseCommand(text))
		case ui.PromptFilter:
			a.users.SetFilter(text)
		case ui.PromptAttach:
			a.attach(text)
		}
	})
	a.prompt.SetOnCancel(func() {
		if a.prompt.Mode() == ui.PromptFilter {
			a.users.ClearFilter()
		}
		a.closePrompt()
	})

	a.pages.SetOnChange(func(stack []string) {
		labels := make([]string, 0, len(stack))
		for _, name := range stack {
			if c := a.pages.Component(name); c != nil {
				labels = append(labels, c.Name())
			}
		}
		a.crumbs.Update(labels)
		a.refreshHeader()
	})
}

func (a *App) setupLayout() {
	a.home = tview.NewFlex().
		AddItem(a.users, sidebarWidth, 0, true).
		AddItem(a.thread, 0, 1, false)

	a.pages.Register(pageLogin, center(a.login, 60, 11), a.login)
	a.pages.Register(pageSignup, center(a.signup, 60, 13), a.signup)
	a.pages.Register(pageHome, a.home, homePage{a: a})
	a.pages.Register(pageProfile, a.profile, a.profile)
	a.pages.Register(pageHelp, a.help, a.help)

	header := tview.NewFlex().
		AddItem(a.sessionInfo, 40, 0, false).
		AddItem(a.menu, 0, 1, false).
		AddItem(ui.NewLogo(a.theme), 16, 0, false)

	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, headerHeight, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.flashBar, 1, 0, false)

	a.app.SetRoot(a.root, true)
	a.app.SetInputCapture(a.captureKey)
}

func (a *App) captureKey(event *tcell.EventKey) *tcell.EventKey {
	if a.promptOpen {
		return event
	}

	focused := a.app.GetFocus()
	if focused == a.thread.Composer() && event.Key() == tcell.KeyEscape {
		a.app.SetFocus(a.thread.Messages())
		a.refreshHeader()
		return nil
	}
	// Text input widgets and the auth forms get every key.
	if _, ok := focused.(*tview.InputField); ok {
		return event
	}
	page := a.pages.Current()
	if page == pageLogin || page == pageSignup {
		return event
	}

	if a.registry.HandleEvent(a.scope(), event) {
		a.refreshHeader()
		return nil
	}
	return event
}

func (a *App) scope() string {
	page := a.pages.Current()
	if page == pageHome && a.inThread() {
		return scopeThread
	}
	return page
}

func (a *App) inThread() bool {
	focused := a.app.GetFocus()
	return focused == a.thread.Messages() || focused == a.thread.Composer()
}

// navigate applies the session guard to path and shows the resulting page.
func (a *App) navigate(path string) {
	switch a.vm.Route(path) {
	case state.PathLogin:
		a.pages.Reset(pageLogin)
		a.app.SetFocus(a.login)
	case state.PathSignup:
		a.pages.Reset(pageSignup)
		a.app.SetFocus(a.signup)
	default:
		if stack := a.pages.Stack(); len(stack) > 0 && stack[0] == pageHome {
			return
		}
		a.pages.Reset(pageHome)
		a.focusUsers()
		a.mountHome()
	}
}

// route re-evaluates the current page after a session change.
func (a *App) route() {
	path := state.PathHome
	switch a.pages.Current() {
	case pageLogin:
		path = state.PathLogin
	case pageSignup:
		path = state.PathSignup
	}
	a.navigate(path)
}

// mountHome resets the home panes and requests the users snapshot.
func (a *App) mountHome() {
	a.users.ClearFilter()
	a.refreshThread()
	a.loadUsers()
}

func (a *App) loadUsers() {
	a.users.Update(a.vm.Users(), a.vm.IsOnline, true)
	a.async("list users", a.vm.LoadUsers, func(error) {
		a.users.Update(a.vm.Users(), a.vm.IsOnline, false)
	})
}

func (a *App) openPartner(u *api.User) {
	if u == nil {
		return
	}
	a.thread.SetPartner(u, a.vm.IsOnline(u.ID))
	a.thread.Update(nil, a.vm.IsOwn, true)
	a.thread.ClearInput()
	a.thread.SetAttachment("")
	a.users.SetActive(u.ID)
	a.focusThread()
	a.async("list messages", func(ctx context.Context) error {
		return a.vm.SelectPartner(ctx, u)
	}, func(error) { a.refreshThread() })
}

func (a *App) closePartner() {
	a.vm.ClosePartner()
	a.users.SetActive("")
	a.refreshThread()
	a.focusUsers()
}

func (a *App) send() {
	if !a.vm.Composer().CanSubmit() {
		return
	}
	a.thread.SetBusy(true)
	a.async("send", a.vm.Send, func(err error) {
		a.thread.SetBusy(false)
		if err == nil && a.vm.Composer().Text() == "" {
			a.thread.ClearInput()
			a.thread.SetAttachment("")
		}
		a.refreshThread()
		a.app.SetFocus(a.thread.Composer())
	})
}

func (a *App) attach(path string) {
	if err := a.vm.Attach(path); err != nil {
		a.logger.Debug("attach rejected", zap.Error(err))
	}
	a.thread.SetAttachment(a.vm.Composer().ImageName())
	a.refreshFlash()
}

func (a *App) detach() {
	a.vm.Composer().Detach()
	a.thread.SetAttachment("")
}

func (a *App) logout() {
	a.async("logout", a.vm.Logout, nil)
}

func (a *App) showProfile(u *api.User) {
	if u == nil {
		return
	}
	a.profile.Update(u, a.vm.IsOnline(u.ID))
	a.pages.Push(pageProfile)
	a.app.SetFocus(a.profile)
}

func (a *App) back() {
	a.pages.Pop()
	if a.pages.Current() == pageHome {
		if a.vm.Partner() != nil {
			a.focusThread()
		} else {
			a.focusUsers()
		}
	}
}

func (a *App) focusUsers() {
	a.app.SetFocus(a.users)
	a.refreshHeader()
}

func (a *App) focusThread() {
	if a.vm.Partner() == nil {
		return
	}
	a.app.SetFocus(a.thread.Messages())
	a.refreshHeader()
}

func (a *App) runCommand(cmd Command) {
	if err := cmd.Validate(); err != nil {
		a.vm.Flash.Error(err.Error())
		a.refreshFlash()
		return
	}
	authenticated := a.vm.Session() != nil
	switch cmd.Kind() {
	case CmdQuit:
		a.Stop()
	case CmdHelp:
		a.pages.Push(pageHelp)
	case CmdBack:
		a.back()
	case CmdLogout:
		if authenticated {
			a.logout()
		}
	case CmdProfile:
		a.showProfile(a.vm.Session())
	case CmdUsers:
		if authenticated {
			a.loadUsers()
		}
	case CmdChat:
		if u := a.users.UserByName(cmd.Args); u != nil {
			a.pages.Reset(pageHome)
			a.openPartner(u)
		} else {
			a.vm.Flash.Error("No user matches " + cmd.Args)
		}
	case CmdAttach:
		if a.vm.Partner() != nil {
			a.attach(cmd.Args)
		}
	case CmdDetach:
		a.detach()
	}
	a.refreshFlash()
}

func (a *App) openPrompt(mode ui.PromptMode) {
	if mode == ui.PromptAttach && a.vm.Partner() == nil {
		return
	}
	a.promptFocus = a.app.GetFocus()
	a.promptOpen = true
	a.prompt.Activate(mode)
	if mode == ui.PromptFilter {
		a.prompt.SetText(a.users.Filter())
	}
	a.root.ResizeItem(a.prompt, 3, 0)
	a.app.SetFocus(a.prompt)
}

func (a *App) closePrompt() {
	a.promptOpen = false
	a.root.ResizeItem(a.prompt, 0, 0)
	if a.promptFocus != nil {
		a.app.SetFocus(a.promptFocus)
	}
}

// async runs fn off the event loop with the request timeout, then runs
// after on the event loop.
func (a *App) async(name string, fn func(context.Context) error, after func(error)) {
	go func() {
		ctx, cancel := context.WithTimeout(a.ctx, a.opts.RequestTimeout)
		defer cancel()
		err := fn(ctx)
		if err != nil {
			a.logger.Debug("request failed", zap.String("op", name), zap.Error(err))
		}
		a.app.QueueUpdateDraw(func() {
			if after != nil {
				after(err)
			}
			a.refreshFlash()
		})
	}()
}

func (a *App) handleEvent(evt bus.Event) {
	switch evt.Kind {
	case bus.SessionChanged:
		a.route()
	case bus.PartnerChanged:
		if a.vm.Partner() == nil {
			a.users.SetActive("")
		}
		a.refreshThread()
	case bus.LivePresence:
		a.users.Refresh()
		a.refreshThread()
	case bus.LiveMessage, bus.MessageSent:
		a.refreshThread()
	}
	a.refreshHeader()
	a.refreshFlash()
}

func (a *App) refreshThread() {
	partner := a.vm.Partner()
	online := partner != nil && a.vm.IsOnline(partner.ID)
	a.thread.SetPartner(partner, online)
	a.thread.Update(a.vm.Messages(), a.vm.IsOwn, a.vm.MessagesLoading())
}

func (a *App) refreshHeader() {
	data := &ui.SessionData{
		Profile: a.opts.Profile,
		Status:  string(a.vm.Status()),
		Online:  a.vm.OnlineCount(),
		Server:  a.opts.Server,
	}
	if u := a.vm.Session(); u != nil {
		data.User = u.DisplayName()
		data.Email = u.Email
	}
	a.sessionInfo.Update(data)

	var hints []ui.MenuHint
	if c := a.pages.Component(a.pages.Current()); c != nil {
		hints = c.Hints()
	}
	page := a.pages.Current()
	if page != pageLogin && page != pageSignup {
		hints = append(hints, a.registry.Hints(a.scope())...)
	}
	a.menu.Update(hints)
}

func (a *App) refreshFlash() {
	msg, level := a.vm.Flash.Get()
	uiLevel := ui.FlashInfo
	if level == model.FlashError {
		uiLevel = ui.FlashErr
	}
	a.flashBar.Update(msg, uiLevel)
}

// Run starts the TUI application. It blocks until the user quits.
func (a *App) Run() error {
	events, unsub := a.bus.Subscribe("", 256)
	go func() {
		defer unsub()
		ticker := time.NewTicker(flashTick)
		defer ticker.Stop()
		for {
			select {
			case evt := <-events:
				a.app.QueueUpdateDraw(func() { a.handleEvent(evt) })
			case <-ticker.C:
				a.app.QueueUpdateDraw(a.refreshFlash)
			case <-a.ctx.Done():
				return
			}
		}
	}()

	a.navigate(state.PathHome)
	a.refreshHeader()
	a.async("check session", a.vm.CheckSession, nil)

	return a.app.Run()
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}

// center places p in the middle of the screen at the given size.
func center(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().
			SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}
