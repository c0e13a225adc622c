package respond

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rbright/lma/internal/audit"
	"github.com/rbright/lma/internal/executor"
)

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type fakeNotifier struct {
	log    *eventLog
	sent   []string
	errors []string
}

func (n *fakeNotifier) Send(_ context.Context, text string) {
	n.sent = append(n.sent, text)
	n.log.add("send %s", text)
}

func (n *fakeNotifier) Error(_ context.Context, text string) {
	n.errors = append(n.errors, text)
	n.log.add("error %s", text)
}

type fakeConfirmer struct {
	answer   bool
	block    bool
	messages []string
	titles   []string
}

func (c *fakeConfirmer) Confirm(ctx context.Context, message string, title string) bool {
	c.messages = append(c.messages, message)
	c.titles = append(c.titles, title)
	if c.block {
		<-ctx.Done()
		return true
	}
	return c.answer
}

type fakeMouse struct {
	log *eventLog
	err error
}

func (m *fakeMouse) MoveTo(_ context.Context, x int, y int) error {
	m.log.add("move %d,%d", x, y)
	return m.err
}

func (m *fakeMouse) Click(_ context.Context, x int, y int) error {
	m.log.add("click %d,%d", x, y)
	return m.err
}

type fakeKeyboard struct {
	log *eventLog
}

func (k *fakeKeyboard) TypeText(_ context.Context, text string) error {
	k.log.add("type %s", text)
	return nil
}

func (k *fakeKeyboard) SendHotkey(_ context.Context, keys []string) error {
	k.log.add("hotkey %s", strings.Join(keys, "+"))
	return nil
}

type fakeExecutor struct {
	log      *eventLog
	commands []string
	results  map[string]executor.Result
}

func (e *fakeExecutor) Execute(_ context.Context, command string) executor.Result {
	e.commands = append(e.commands, command)
	e.log.add("exec %s", command)
	if result, ok := e.results[command]; ok {
		result.Command = command
		return result
	}
	return executor.Result{Command: command}
}

type fakeAudit struct {
	entries []audit.Entry
}

func (a *fakeAudit) Record(_ context.Context, entry audit.Entry) error {
	a.entries = append(a.entries, entry)
	return nil
}
