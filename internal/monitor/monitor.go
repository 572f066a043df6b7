package monitor

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"cdrip/internal/logging"
)

// Handler is invoked for each detected disc insertion with the device short
// name (for example "sr0"). Invocations are serialized by the monitor.
type Handler func(ctx context.Context, device string)

// Monitor listens for udev netlink events and invokes the handler when media
// appears in the configured optical drive. This replaces a udev rule that
// would exec the CLI directly.
type Monitor struct {
	logger  *slog.Logger
	handler Handler
	device  string

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

// New creates a monitor for the given device short name. Returns nil when no
// device is configured.
func New(device string, logger *slog.Logger, handler Handler) *Monitor {
	device = strings.TrimPrefix(strings.TrimSpace(device), "/dev/")
	if device == "" {
		return nil
	}
	return &Monitor{
		logger:  logging.NewComponentLogger(logger, "monitor"),
		handler: handler,
		device:  device,
	}
}

// Start connects to the udev netlink socket and begins dispatching insertion
// events. A connection failure is non-fatal; rips can still be triggered
// manually.
func (m *Monitor) Start(ctx context.Context) error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("failed to connect to netlink socket, automatic detection unavailable",
			logging.Error(err),
		)
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.loop(ctx, quit)

	m.logger.Info("watching for disc insertions", logging.String("device", m.device))
	return nil
}

// Stop shuts the monitor down. Safe on a nil or unstarted monitor.
func (m *Monitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false
	m.logger.Info("stopped watching for disc insertions")
}

// Running reports whether the monitor is actively listening.
func (m *Monitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) loop(ctx context.Context, quit <-chan struct{}) {
	queue := make(chan netlink.UEvent)
	errs := make(chan error)

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(queue, errs, buildMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-queue:
			m.handleEvent(ctx, uevent)
		case err := <-errs:
			m.logger.Warn("netlink read error", logging.Error(err))
		}
	}
}

// buildMatcher matches media insertion events:
// SUBSYSTEM=block, ID_CDROM=1, ID_CDROM_MEDIA=1, ACTION=change|add.
func buildMatcher() netlink.Matcher {
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

func (m *Monitor) handleEvent(ctx context.Context, uevent netlink.UEvent) {
	devname := extractDeviceName(uevent)
	if devname == "" {
		m.logger.Debug("ignoring event without device name",
			logging.String("action", string(uevent.Action)),
			logging.String("kobj", uevent.KObj),
		)
		return
	}
	if devname != m.device {
		m.logger.Debug("ignoring event for other device",
			logging.String("device", devname),
			logging.String("configured_device", m.device),
		)
		return
	}

	m.logger.Info("disc media detected",
		logging.String("device", devname),
		logging.String("action", string(uevent.Action)),
	)
	if m.handler != nil {
		m.handler(ctx, devname)
	}
}

// extractDeviceName resolves the short device name from a uevent, falling
// back to the last DEVPATH component when DEVNAME is absent.
func extractDeviceName(uevent netlink.UEvent) string {
	if devname := uevent.Env["DEVNAME"]; devname != "" {
		return strings.TrimPrefix(devname, "/dev/")
	}
	devpath := uevent.Env["DEVPATH"]
	if devpath == "" {
		return ""
	}
	parts := strings.Split(devpath, "/")
	return parts[len(parts)-1]
}
