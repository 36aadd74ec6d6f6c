package views

import (
	"github.com/rivo/tview"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/tui/ui"
)

// authForm is the shared frame of the login and signup pages.
type authForm struct {
	*tview.Form
	theme      *ui.Theme
	submit     string
	submitting string
	onSwitch   func()
}

func newAuthForm(theme *ui.Theme, title, submit, submitting, switchLabel string) *authForm {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetTitle(" " + title + " ")
	form.SetTitleColor(theme.TitleColor)
	form.SetFieldBackgroundColor(theme.BgColor)
	form.SetFieldTextColor(theme.FgColor)
	form.SetLabelColor(theme.MenuKeyColor)
	form.SetButtonBackgroundColor(theme.TableCursorBg)
	form.SetButtonTextColor(theme.TableCursorFg)
	form.SetButtonsAlign(tview.AlignCenter)

	f := &authForm{Form: form, theme: theme, submit: submit, submitting: submitting}
	form.AddButton(submit, nil)
	form.AddButton(switchLabel, func() {
		if f.onSwitch != nil {
			f.onSwitch()
		}
	})
	return f
}

// SetOnSwitch sets the callback of the "other page" button.
func (f *authForm) SetOnSwitch(fn func()) {
	f.onSwitch = fn
}

// SetBusy relabels the submit button while a request is in flight.
func (f *authForm) SetBusy(busy bool) {
	label := f.submit
	if busy {
		label = f.submitting
	}
	f.GetButton(0).SetLabel(label)
	f.GetButton(0).SetDisabled(busy)
}

func (f *authForm) text(label string) string {
	if item, ok := f.GetFormItemByLabel(label).(*tview.InputField); ok {
		return item.GetText()
	}
	return ""
}

func (f *authForm) clearPassword() {
	if item, ok := f.GetFormItemByLabel("Password").(*tview.InputField); ok {
		item.SetText("")
	}
}

func (f *authForm) setSubmit(fn func()) {
	f.GetButton(0).SetSelectedFunc(fn)
}

// LoginView is the email and password form shown at /login.
type LoginView struct {
	*authForm
	onSubmit func(api.LoginRequest)
}

// NewLoginView creates the login page.
func NewLoginView(theme *ui.Theme) *LoginView {
	f := newAuthForm(theme, "Login", "Login", "Logging in...", "Create an account")
	f.AddInputField("Email", "", 40, nil, nil)
	f.AddPasswordField("Password", "", 40, '*', nil)

	lv := &LoginView{authForm: f}
	f.setSubmit(func() {
		if lv.onSubmit != nil {
			lv.onSubmit(lv.Request())
		}
	})
	return lv
}

// Name implements Component.
func (lv *LoginView) Name() string { return "Login" }

// Start implements Component.
func (lv *LoginView) Start() { lv.SetFocus(0) }

// Stop implements Component.
func (lv *LoginView) Stop() {
	lv.clearPassword()
	lv.SetBusy(false)
}

// Hints implements Component.
func (lv *LoginView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Press button"},
		{Key: "Ctrl-C", Description: "Quit"},
	}
}

// SetOnSubmit sets the callback of the Login button.
func (lv *LoginView) SetOnSubmit(fn func(api.LoginRequest)) {
	lv.onSubmit = fn
}

// Request returns the form contents.
func (lv *LoginView) Request() api.LoginRequest {
	return api.LoginRequest{
		Email:    lv.text("Email"),
		Password: lv.text("Password"),
	}
}

// SignupView is the account creation form shown at /signup.
type SignupView struct {
	*authForm
	onSubmit func(api.SignupRequest)
}

// NewSignupView creates the signup page.
func NewSignupView(theme *ui.Theme) *SignupView {
	f := newAuthForm(theme, "Create an account", "Sign Up", "Creating account...", "Already have an account? Login")
	f.AddInputField("Full Name", "", 40, nil, nil)
	f.AddInputField("Email", "", 40, nil, nil)
	f.AddPasswordField("Password", "", 40, '*', nil)

	sv := &SignupView{authForm: f}
	f.setSubmit(func() {
		if sv.onSubmit != nil {
			sv.onSubmit(sv.Request())
		}
	})
	return sv
}

// Name implements Component.
func (sv *SignupView) Name() string { return "Signup" }

// Start implements Component.
func (sv *SignupView) Start() { sv.SetFocus(0) }

// Stop implements Component.
func (sv *SignupView) Stop() {
	sv.clearPassword()
	sv.SetBusy(false)
}

// Hints implements Component.
func (sv *SignupView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Press button"},
		{Key: "Ctrl-C", Description: "Quit"},
	}
}

// SetOnSubmit sets the callback of the Sign Up button.
func (sv *SignupView) SetOnSubmit(fn func(api.SignupRequest)) {
	sv.onSubmit = fn
}

// Request returns the form contents.
func (sv *SignupView) Request() api.SignupRequest {
	return api.SignupRequest{
		FullName: sv.text("Full Name"),
		Email:    sv.text("Email"),
		Password: sv.text("Password"),
	}
}
