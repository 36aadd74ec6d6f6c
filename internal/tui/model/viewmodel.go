package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/matheus3301/chatterm/internal/api"
	"github.com/matheus3301/chatterm/internal/bus"
	"github.com/matheus3301/chatterm/internal/chat"
	"github.com/matheus3301/chatterm/internal/compose"
	"github.com/matheus3301/chatterm/internal/live"
	"github.com/matheus3301/chatterm/internal/state"
	"github.com/matheus3301/chatterm/internal/status"
)

// Notification texts shown to the user.
const (
	MsgUsersFailed    = "Failed to fetch users"
	MsgMessagesFailed = "Failed to fetch messages"
	MsgSendFailed     = "Failed to send message"
	MsgLoginFailed    = "Something went wrong"
	MsgSignupFailed   = "Something went wrong"
	MsgLogoutFailed   = "Failed to logout"
	MsgSignedUp       = "Account created successfully!"
	MsgLoggedIn       = "Logged in successfully"
	MsgLoggedOut      = "Logged out successfully"
	MsgLiveFailed     = "Live updates unavailable"
	MsgLiveLost       = "Live updates disconnected"
)

// Backend is the slice of the REST client the view model drives.
// *api.Client implements it.
type Backend interface {
	compose.Sender
	CheckSession(ctx context.Context) (*api.User, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.User, error)
	Signup(ctx context.Context, req api.SignupRequest) (*api.User, error)
	Logout(ctx context.Context) error
	ListUsers(ctx context.Context) ([]api.User, error)
	ListMessages(ctx context.Context, partnerID string) ([]api.Message, error)
}

// Live opens and closes the push channel for the signed-in user.
// *live.Subscriber implements it.
type Live interface {
	Start(ctx context.Context, userID string, h live.Handler, onEnd func(error)) error
	Stop()
}

// Deps are the collaborators of a ViewModel. Context bounds the live
// channel; it defaults to context.Background.
type Deps struct {
	Context  context.Context
	Backend  Backend
	Live     Live
	State    *state.State
	Status   *status.Machine
	Thread   *chat.Thread
	Presence *chat.Presence
	Sync     *chat.Sync
	Composer *compose.Composer
	Bus      *bus.Bus
	Logger   *zap.Logger
}

// ViewModel owns the screen-independent client logic: session lifecycle,
// the users and message snapshots, live merge and the composer. Every
// method is safe to call from a goroutine; views read through the getters.
type ViewModel struct {
	ctx      context.Context
	backend  Backend
	live     Live
	state    *state.State
	status   *status.Machine
	thread   *chat.Thread
	presence *chat.Presence
	sync     *chat.Sync
	composer *compose.Composer
	bus      *bus.Bus
	logger   *zap.Logger

	mu              sync.RWMutex
	users           []api.User
	usersLoaded     bool
	usersLoading    bool
	messagesLoading bool

	Flash Flash
}

// NewViewModel wires d into a view model. Nil optional collaborators are
// replaced with fresh instances.
func NewViewModel(d Deps) *ViewModel {
	vm := &ViewModel{
		ctx:      d.Context,
		backend:  d.Backend,
		live:     d.Live,
		state:    d.State,
		status:   d.Status,
		thread:   d.Thread,
		presence: d.Presence,
		sync:     d.Sync,
		composer: d.Composer,
		bus:      d.Bus,
		logger:   d.Logger,
	}
	if vm.ctx == nil {
		vm.ctx = context.Background()
	}
	if vm.logger == nil {
		vm.logger = zap.NewNop()
	}
	if vm.state == nil {
		vm.state = state.New(vm.bus)
	}
	if vm.status == nil {
		vm.status = status.NewMachine(vm.bus)
	}
	if vm.thread == nil {
		vm.thread = chat.NewThread()
	}
	if vm.presence == nil {
		vm.presence = chat.NewPresence()
	}
	if vm.sync == nil {
		vm.sync = chat.NewSync(vm.thread, vm.presence, vm.bus, vm.logger)
	}
	if vm.composer == nil {
		vm.composer = compose.New(0)
	}
	return vm
}

// CheckSession re-derives the session from the stored cookie.
// A rejected cookie is not an error for the caller: the user lands on login.
func (vm *ViewModel) CheckSession(ctx context.Context) error {
	u, err := vm.backend.CheckSession(ctx)
	if err != nil {
		vm.transition(status.SignedOut)
		if errors.Is(err, api.ErrUnauthorized) {
			vm.logger.Info("no stored session")
			return nil
		}
		vm.logger.Warn("session check failed", zap.Error(err))
		vm.Flash.Error(api.UserMessage(err, "Could not reach server"))
		return fmt.Errorf("check session: %w", err)
	}
	vm.signedIn(u)
	return nil
}

// Login validates the form, then authenticates.
func (vm *ViewModel) Login(ctx context.Context, req api.LoginRequest) error {
	if err := req.Validate(); err != nil {
		vm.Flash.Error(err.Error())
		return err
	}
	u, err := vm.backend.Login(ctx, req)
	if err != nil {
		vm.logger.Warn("login failed", zap.Error(err))
		vm.Flash.Error(api.UserMessage(err, MsgLoginFailed))
		return fmt.Errorf("login: %w", err)
	}
	vm.Flash.Info(MsgLoggedIn)
	vm.signedIn(u)
	return nil
}

// Signup validates the form, then creates the account and its session.
func (vm *ViewModel) Signup(ctx context.Context, req api.SignupRequest) error {
	if err := req.Validate(); err != nil {
		vm.Flash.Error(err.Error())
		return err
	}
	u, err := vm.backend.Signup(ctx, req)
	if err != nil {
		vm.logger.Warn("signup failed", zap.Error(err))
		vm.Flash.Error(api.UserMessage(err, MsgSignupFailed))
		return fmt.Errorf("signup: %w", err)
	}
	vm.Flash.Info(MsgSignedUp)
	vm.signedIn(u)
	return nil
}

// Logout ends the session on the server. The local session survives a
// failed call.
func (vm *ViewModel) Logout(ctx context.Context) error {
	if err := vm.backend.Logout(ctx); err != nil {
		vm.logger.Warn("logout failed", zap.Error(err))
		vm.Flash.Error(MsgLogoutFailed)
		return fmt.Errorf("logout: %w", err)
	}
	vm.signedOut()
	vm.Flash.Info(MsgLoggedOut)
	return nil
}

// LoadUsers replaces the sidebar list with a fresh snapshot. On failure the
// previous list stays.
func (vm *ViewModel) LoadUsers(ctx context.Context) error {
	vm.mu.Lock()
	vm.usersLoading = true
	vm.mu.Unlock()

	users, err := vm.backend.ListUsers(ctx)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.usersLoading = false
	if err != nil {
		vm.logger.Warn("list users failed", zap.Error(err))
		vm.Flash.Error(MsgUsersFailed)
		return fmt.Errorf("list users: %w", err)
	}
	vm.users = users
	vm.usersLoaded = true
	return nil
}

// SelectPartner opens the conversation with u: the thread is emptied at
// once, then filled from the history snapshot. A nil u closes the thread.
func (vm *ViewModel) SelectPartner(ctx context.Context, u *api.User) error {
	if u == nil {
		vm.ClosePartner()
		return nil
	}
	vm.state.SetPartner(u)
	gen := vm.thread.Reset(u.ID)
	vm.composer.Detach()

	vm.mu.Lock()
	vm.messagesLoading = true
	vm.mu.Unlock()

	msgs, err := vm.backend.ListMessages(ctx, u.ID)

	if vm.thread.Generation() == gen {
		vm.mu.Lock()
		vm.messagesLoading = false
		vm.mu.Unlock()
	}
	if err != nil {
		vm.logger.Warn("list messages failed", zap.Error(err), zap.String("partner_id", u.ID))
		vm.Flash.Error(MsgMessagesFailed)
		return fmt.Errorf("list messages: %w", err)
	}
	if !vm.thread.ApplySnapshot(gen, msgs) {
		vm.logger.Debug("stale history dropped", zap.String("partner_id", u.ID))
	}
	return nil
}

// ClosePartner returns to the sidebar with no conversation selected.
func (vm *ViewModel) ClosePartner() {
	vm.state.ClearPartner()
	vm.thread.Reset("")
	vm.mu.Lock()
	vm.messagesLoading = false
	vm.mu.Unlock()
}

// Send submits the composer to the selected partner and appends the
// server's copy once acknowledged. Empty or concurrent submits are
// ignored silently.
func (vm *ViewModel) Send(ctx context.Context) error {
	partnerID := vm.state.PartnerID()
	msg, err := vm.composer.Submit(ctx, partnerID, vm.backend)
	switch {
	case errors.Is(err, compose.ErrEmpty), errors.Is(err, compose.ErrBusy):
		return nil
	case err != nil:
		vm.logger.Warn("send failed", zap.Error(err), zap.String("partner_id", partnerID))
		vm.Flash.Error(MsgSendFailed)
		return err
	}
	if vm.thread.PartnerID() == partnerID {
		vm.thread.Append(msg)
	}
	vm.bus.Emit(bus.MessageSent, msg)
	return nil
}

// Attach stages an image from path in the composer.
func (vm *ViewModel) Attach(path string) error {
	if err := vm.composer.Attach(path); err != nil {
		vm.Flash.Error(attachMessage(err))
		return err
	}
	vm.Flash.Info("Attached " + vm.composer.ImageName())
	return nil
}

func (vm *ViewModel) signedIn(u *api.User) {
	vm.state.SetSession(u)
	vm.logger.Info("signed in", zap.String("user_id", u.ID))
	vm.transition(status.Connecting)

	err := vm.live.Start(vm.ctx, u.ID, vm.sync, func(err error) {
		vm.sync.Closed(err)
		if vm.state.Authenticated() {
			vm.transition(status.Disconnected)
			vm.Flash.Error(MsgLiveLost)
		}
	})
	if err != nil {
		vm.logger.Warn("live channel unavailable", zap.Error(err))
		vm.transition(status.Disconnected)
		vm.Flash.Error(MsgLiveFailed)
		return
	}
	vm.transition(status.Online)
}

func (vm *ViewModel) signedOut() {
	vm.live.Stop()
	vm.presence.Clear()
	vm.thread.Reset("")
	vm.composer.SetText("")
	vm.composer.Detach()
	vm.state.SetSession(nil)

	vm.mu.Lock()
	vm.users = nil
	vm.usersLoaded = false
	vm.messagesLoading = false
	vm.mu.Unlock()

	vm.transition(status.SignedOut)
	vm.logger.Info("signed out")
}

func (vm *ViewModel) transition(to status.State) {
	if err := vm.status.Transition(to); err != nil {
		vm.logger.Debug("status transition skipped", zap.Error(err))
	}
}

// Session returns the signed-in user, or nil.
func (vm *ViewModel) Session() *api.User { return vm.state.Session() }

// Partner returns the selected conversation partner, or nil.
func (vm *ViewModel) Partner() *api.User { return vm.state.Partner() }

// Route applies the session guard to path.
func (vm *ViewModel) Route(path string) string { return vm.state.Route(path) }

func (vm *ViewModel) Status() status.State { return vm.status.Current() }

func (vm *ViewModel) Composer() *compose.Composer { return vm.composer }

// Users returns the last users snapshot.
func (vm *ViewModel) Users() []api.User {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	out := make([]api.User, len(vm.users))
	copy(out, vm.users)
	return out
}

// UsersLoading is true until the first snapshot after sign-in lands.
func (vm *ViewModel) UsersLoading() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.usersLoading && !vm.usersLoaded
}

func (vm *ViewModel) Messages() []api.Message { return vm.thread.Messages() }

func (vm *ViewModel) MessagesLoading() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.messagesLoading
}

func (vm *ViewModel) IsOnline(userID string) bool { return vm.presence.IsOnline(userID) }

func (vm *ViewModel) OnlineCount() int { return vm.presence.Count() }

// IsOwn reports whether m was sent by the signed-in user.
func (vm *ViewModel) IsOwn(m api.Message) bool {
	u := vm.state.Session()
	return u != nil && m.SenderID == u.ID
}

func attachMessage(err error) string {
	switch {
	case errors.Is(err, compose.ErrNotImage):
		return "Please select an image file"
	case errors.Is(err, compose.ErrTooLarge):
		return "Image is too large"
	default:
		return "Could not read image"
	}
}
