package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/longkey1/chatsim/internal/chatsim/responder"
)

// replyMsg carries a resolved reply into Update.
type replyMsg responder.Reply

// scrollBottomMsg asks Update to reveal the newest message.
type scrollBottomMsg struct{}

// Bridge moves events raised on timer goroutines into the bubbletea loop.
// Create it before the chat service so OnReply can be wired into it.
type Bridge struct {
	events chan tea.Msg
	done   chan struct{}
	once   sync.Once
}

func NewBridge() *Bridge {
	return &Bridge{
		events: make(chan tea.Msg, 64),
		done:   make(chan struct{}),
	}
}

// OnReply forwards a resolved reply to the UI.
func (b *Bridge) OnReply(r responder.Reply) {
	b.send(replyMsg(r))
}

func (b *Bridge) scrollToBottom() {
	b.send(scrollBottomMsg{})
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.events <- msg:
	case <-b.done:
	}
}

// Close releases senders blocked on a UI that has stopped reading.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

// wait returns a command that yields the next bridged event.
func (b *Bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.events:
			return msg
		case <-b.done:
			return nil
		}
	}
}
