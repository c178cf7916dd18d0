package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"rippa/internal/logging"
)

// netlinkMonitor listens for udev events and nudges the rip loop when a
// disc lands in the configured drive, so insertion is picked up
// immediately instead of on the next tick. Polling remains the fallback:
// a failed netlink connect is logged and otherwise ignored.
type netlinkMonitor struct {
	logger *slog.Logger
	device string
	nudge  chan<- struct{}

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

func newNetlinkMonitor(device string, nudge chan<- struct{}, logger *slog.Logger) *netlinkMonitor {
	return &netlinkMonitor{
		logger: logging.NewComponentLogger(logger, "netlink"),
		device: strings.TrimSpace(device),
		nudge:  nudge,
	}
}

// Start begins listening for udev netlink events.
func (m *netlinkMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running || m.device == "" {
		return
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("netlink connect failed; relying on polling alone", logging.Error(err))
		return
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true
	go m.monitorLoop(ctx, m.quit)

	m.logger.Info("netlink monitor started", logging.String("device", m.device))
}

// Stop shuts the monitor down.
func (m *netlinkMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	close(m.quit)
	m.quit = nil
	_ = m.conn.Close()
	m.conn = nil
	m.running = false
}

func (m *netlinkMonitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	events := make(chan netlink.UEvent)
	errs := make(chan error)
	monitorQuit := m.conn.Monitor(events, errs, discInsertMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-events:
			m.handleEvent(uevent)
		case err := <-errs:
			m.logger.Warn("netlink monitor error", logging.Error(err))
		}
	}
}

func (m *netlinkMonitor) handleEvent(uevent netlink.UEvent) {
	devname := uevent.Env["DEVNAME"]
	if devname == "" {
		if devpath := uevent.Env["DEVPATH"]; devpath != "" {
			devname = "/dev/" + filepath.Base(devpath)
		}
	}
	if devname == "" || devname != m.device {
		return
	}

	m.logger.Info("disc media detected", logging.String("device", devname))
	select {
	case m.nudge <- struct{}{}:
	default:
		// Rip loop already has a pending nudge.
	}
}

// discInsertMatcher matches SUBSYSTEM=block, ID_CDROM=1,
// ID_CDROM_MEDIA=1, ACTION=add|change.
func discInsertMatcher() netlink.Matcher {
	action := "change|add"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM":      "block",
			"ID_CDROM":       "1",
			"ID_CDROM_MEDIA": "1",
		},
	})
	return rules
}
