package compose

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matheus3301/chatterm/internal/api"
)

var (
	ErrEmpty     = errors.New("message is empty")
	ErrBusy      = errors.New("a message is already being sent")
	ErrNoPartner = errors.New("no conversation selected")
)

// Sender performs the single write of a submit. *api.Client implements it.
type Sender interface {
	SendMessage(ctx context.Context, partnerID string, req api.SendRequest) (api.Message, error)
}

// Composer holds the pending text and optional image for the next message.
// It is idle or submitting; while submitting further submits fail with
// ErrBusy.
type Composer struct {
	maxImageBytes int64

	mu        sync.Mutex
	text      string
	image     string
	imageName string
	busy      bool
}

// New returns an idle composer. maxImageBytes <= 0 means no limit.
func New(maxImageBytes int64) *Composer {
	return &Composer{maxImageBytes: maxImageBytes}
}

func (c *Composer) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
}

func (c *Composer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Attach replaces any pending image with the file at path. On error the
// previous attachment is left in place.
func (c *Composer) Attach(path string) error {
	dataURL, _, err := ReadImage(path, c.maxImageBytes)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.image = dataURL
	c.imageName = filepath.Base(path)
	return nil
}

// AttachData is Attach for bytes already in memory.
func (c *Composer) AttachData(name string, data []byte) error {
	dataURL, _, err := EncodeImage(data, c.maxImageBytes)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.image = dataURL
	c.imageName = name
	return nil
}

func (c *Composer) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.image = ""
	c.imageName = ""
}

// Image returns the pending data URL, or "".
func (c *Composer) Image() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.image
}

// ImageName is the base name of the attached file, shown as the preview.
func (c *Composer) ImageName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.imageName
}

func (c *Composer) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// CanSubmit reports whether Submit would attempt a send.
func (c *Composer) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.busy && c.hasContentLocked()
}

// Submit sends the pending content to partnerID through s. On success the
// inputs are cleared and the server's message is returned; on failure they
// are kept so the user can retry by hand.
func (c *Composer) Submit(ctx context.Context, partnerID string, s Sender) (api.Message, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return api.Message{}, ErrBusy
	}
	if !c.hasContentLocked() {
		c.mu.Unlock()
		return api.Message{}, ErrEmpty
	}
	if partnerID == "" {
		c.mu.Unlock()
		return api.Message{}, ErrNoPartner
	}
	req := api.SendRequest{Text: strings.TrimSpace(c.text)}
	if c.image != "" {
		image := c.image
		req.Image = &image
	}
	c.busy = true
	c.mu.Unlock()

	msg, err := s.SendMessage(ctx, partnerID, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if err != nil {
		return api.Message{}, fmt.Errorf("send message: %w", err)
	}
	c.text = ""
	c.image = ""
	c.imageName = ""
	return msg, nil
}

func (c *Composer) hasContentLocked() bool {
	return strings.TrimSpace(c.text) != "" || c.image != ""
}
