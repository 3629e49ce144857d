package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mugisham37/storesync/internal/env"
)

// command is caller intent delivered to the event loop.
type command struct {
	kind     cmdKind
	topic    string
	added    bool // cmdTopics: listener added (vs removed)
	announce bool // cmdTopics: topic gained its first / lost its last listener
}

type cmdKind int

const (
	cmdConnect cmdKind = iota
	cmdDisconnect
	cmdKick
	cmdTopics
	cmdEnv
)

// event is transport or timer input delivered to the event loop. Every
// event carries the generation it belongs to; the loop drops events from
// superseded connection attempts.
type event struct {
	kind  evKind
	gen   uint64
	conn  Conn
	code  int
	data  []byte
	err   error
	fatal bool // evDialDone: failure is not retryable
}

type evKind int

const (
	evDialDone evKind = iota
	evConnClosed
	evFrame
	evRetryTimer
	evHeartbeatTimer
)

// Manager owns the realtime connection: one event loop drives the state
// machine, a single live connection at most, the reconnect backoff, the
// heartbeat, and the outbound queue drain. All public methods are safe
// for concurrent use.
type Manager struct {
	cfg       Config
	logger    *slog.Logger
	transport Transport
	tokens    TokenProvider
	envmon    *env.Monitor
	codec     Codec

	queue    *sendQueue
	registry *topicRegistry

	commands chan command
	events   chan event
	done     chan struct{}
	runCtx   context.Context
	cancel   context.CancelFunc
	started  atomic.Bool
	wg       sync.WaitGroup

	// Status snapshot, readable without touching loop state.
	statusMu   sync.Mutex
	status     Status
	statusSubs map[int]func(Status)
	nextSub    int

	// Counters
	framesSent     atomic.Uint64
	framesReceived atomic.Uint64
	parseErrors    atomic.Uint64
	delivered      atomic.Uint64
	reconnects     atomic.Uint64

	// Loop-owned state. Only the run goroutine touches these.
	state       State
	gen         uint64
	conn        Conn
	connID      string
	attempts    int
	lastError   error
	suspended   bool
	lastInbound time.Time
	retryTimer  *time.Timer
	hbTimer     *time.Timer
	envCancel   func()
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithTransport replaces the websocket transport.
func WithTransport(t Transport) ManagerOption {
	return func(m *Manager) {
		m.transport = t
	}
}

// WithCodec replaces the wire codec selected by Config.Compression.
func WithCodec(c Codec) ManagerOption {
	return func(m *Manager) {
		m.codec = c
	}
}

// NewManager creates a Manager. tokens may be nil for unauthenticated
// endpoints; monitor may be nil, in which case the environment is treated
// as always foreground with network up. Zero config fields fall back to
// DefaultConfig values (MaxAttempts 0 means retry forever).
func NewManager(cfg Config, tokens TokenProvider, monitor *env.Monitor, opts ...ManagerOption) *Manager {
	cfg = withDefaults(cfg)

	m := &Manager{
		cfg:        cfg,
		logger:     slog.Default(),
		tokens:     tokens,
		envmon:     monitor,
		queue:      newSendQueue(cfg.QueueCapacity),
		registry:   newTopicRegistry(),
		commands:   make(chan command, cfg.EventBufferSize),
		events:     make(chan event, cfg.EventBufferSize),
		done:       make(chan struct{}),
		statusSubs: make(map[int]func(Status)),
		state:      StateDisconnected,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.codec == nil {
		m.codec = newCodec(cfg)
	}
	if m.transport == nil {
		m.transport = newWSTransport(cfg, m.logger)
	}
	m.status = Status{State: StateDisconnected, Since: time.Now()}
	return m
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Platform == "" {
		cfg.Platform = def.Platform
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = def.HeartbeatInterval
	}
	if cfg.MissedHeartbeats <= 0 {
		cfg.MissedHeartbeats = def.MissedHeartbeats
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = def.ConnectTimeout
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = def.QueueCapacity
	}
	if cfg.WriteQueueSize <= 0 {
		cfg.WriteQueueSize = def.WriteQueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.EventBufferSize <= 0 {
		cfg.EventBufferSize = def.EventBufferSize
	}
	return cfg
}

// Start launches the event loop. Returns ErrAlreadyStarted on repeat calls.
func (m *Manager) Start(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	m.runCtx, m.cancel = context.WithCancel(ctx)
	if m.envmon != nil {
		m.envCancel = m.envmon.Subscribe(func(env.Snapshot) {
			m.postCommand(command{kind: cmdEnv})
		})
	}

	m.wg.Add(1)
	go m.run(m.runCtx)

	m.logger.Info("realtime manager started", "url", m.cfg.URL, "platform", m.cfg.Platform)
	return nil
}

// Stop shuts the loop down, closing any live connection cleanly. Blocks
// until the loop exits or ctx expires.
func (m *Manager) Stop(ctx context.Context) error {
	if !m.started.Load() {
		return nil
	}
	if m.envCancel != nil {
		m.envCancel()
	}
	m.cancel()

	stopped := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		m.logger.Info("realtime manager stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("manager stop timeout: %w", ctx.Err())
	}
}

// Connect requests a connection. Clears the hold left by Disconnect, a
// credential failure, or exhausted reconnect attempts, and starts a fresh
// attempt cycle. No-op while already connected or connecting.
func (m *Manager) Connect() error {
	select {
	case <-m.done:
		return ErrManagerClosed
	default:
	}
	m.postCommand(command{kind: cmdConnect})
	return nil
}

// Disconnect closes the connection cleanly and holds the manager down
// until the next Connect call. Subscriptions and queued messages are kept.
func (m *Manager) Disconnect() error {
	select {
	case <-m.done:
		return ErrManagerClosed
	default:
	}
	m.postCommand(command{kind: cmdDisconnect})
	return nil
}

// Send queues an outbound message and returns its id. The payload may be
// any JSON-marshalable value, pre-encoded json.RawMessage bytes, or nil.
// Never blocks on the network: the message is delivered when a connection
// is available, and the oldest queued message is evicted if the queue is
// full. The only errors are a closed manager and a bad payload.
func (m *Manager) Send(msgType, topic string, payload any) (string, error) {
	select {
	case <-m.done:
		return "", ErrManagerClosed
	default:
	}
	if msgType == "" {
		return "", fmt.Errorf("message type is required")
	}

	raw, err := marshalPayload(payload)
	if err != nil {
		return "", err
	}

	msg := OutboundMessage{
		ID:         uuid.NewString(),
		Type:       msgType,
		Topic:      topic,
		Payload:    raw,
		EnqueuedAt: time.Now(),
	}
	if m.queue.push(msg) {
		m.logger.Warn("outbound queue full, dropped oldest message",
			"capacity", m.cfg.QueueCapacity,
		)
	}

	// Best-effort wakeup: a full command buffer already guarantees the
	// loop will run and drain the queue.
	select {
	case m.commands <- command{kind: cmdKick}:
	default:
	}
	return msg.ID, nil
}

func marshalPayload(payload any) (json.RawMessage, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return p, nil
	case []byte:
		return p, nil
	default:
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		return data, nil
	}
}

// Subscribe registers a listener for a topic and returns a cancel func.
// The first subscription creates demand: a disconnected manager connects.
// Removing the last listener never closes a live connection (disconnect
// is always explicit), but without demand a lost connection stays down.
// Listeners run on the event loop goroutine, so they must not block.
func (m *Manager) Subscribe(topic string, fn Listener) (func(), error) {
	select {
	case <-m.done:
		return nil, ErrManagerClosed
	default:
	}
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if fn == nil {
		return nil, fmt.Errorf("listener is required")
	}

	id, first := m.registry.add(topic, fn)
	m.postCommand(command{kind: cmdTopics, topic: topic, added: true, announce: first})

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			last := m.registry.remove(topic, id)
			m.postCommand(command{kind: cmdTopics, topic: topic, announce: last})
		})
	}
	return cancel, nil
}

// Status returns the current connection status.
func (m *Manager) Status() Status {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	return m.status
}

// OnStatus registers a status observer and returns a cancel func. The
// observer is called immediately with the current status, then on every
// change, from the event loop goroutine.
func (m *Manager) OnStatus(fn func(Status)) func() {
	m.statusMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.statusSubs[id] = fn
	cur := m.status
	m.statusMu.Unlock()

	fn(cur)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.statusMu.Lock()
			delete(m.statusSubs, id)
			m.statusMu.Unlock()
		})
	}
}

// Stats returns cumulative counters.
func (m *Manager) Stats() ManagerStats {
	m.statusMu.Lock()
	st := m.status
	m.statusMu.Unlock()

	return ManagerStats{
		State:          st.State,
		ConnectionID:   st.ConnectionID,
		QueueDepth:     m.queue.depth(),
		QueueDropped:   m.queue.dropped(),
		FramesSent:     m.framesSent.Load(),
		FramesReceived: m.framesReceived.Load(),
		ParseErrors:    m.parseErrors.Load(),
		Delivered:      m.delivered.Load(),
		Reconnects:     m.reconnects.Load(),
		Topics:         m.registry.count(),
		Subscriptions:  m.registry.listenerCount(),
	}
}

func (m *Manager) postCommand(cmd command) bool {
	select {
	case m.commands <- cmd:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) postEvent(ev event) {
	select {
	case m.events <- ev:
	case <-m.done:
	}
}

// run is the event loop. All state transitions happen here.
func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	m.reconcileDemand()
	m.publish()

	for {
		select {
		case <-ctx.Done():
			m.teardownConn(websocket.CloseNormalClosure, "client shutting down")
			m.state = StateDisconnected
			m.lastError = nil
			m.publish()
			close(m.done)
			return
		case cmd := <-m.commands:
			m.handleCommand(cmd)
		case ev := <-m.events:
			m.handleEvent(ev)
		}
		m.maybeDrain()
		m.publish()
	}
}

func (m *Manager) handleCommand(cmd command) {
	switch cmd.kind {
	case cmdConnect:
		m.suspended = false
		switch m.state {
		case StateConnected, StateConnecting:
			// Already up or in progress.
		default:
			m.attempts = 0
			m.lastError = nil
			m.beginAttempt()
		}

	case cmdDisconnect:
		m.logger.Info("disconnect requested")
		m.suspended = true
		m.teardownConn(websocket.CloseNormalClosure, "client disconnect")
		m.state = StateDisconnected
		m.attempts = 0
		m.lastError = nil

	case cmdKick:
		// Queue changed; maybeDrain runs after every command.

	case cmdTopics:
		if cmd.announce && m.state == StateConnected {
			typ := FrameTypeUnsubscribe
			if cmd.added {
				typ = FrameTypeSubscribe
			}
			m.sendControl(Frame{Type: typ, Topic: cmd.topic, TS: time.Now().UnixMilli()})
		}
		m.reconcileDemand()
		if m.state == StateReconnecting && !m.canReconnect() {
			m.pauseRecovery()
		}

	case cmdEnv:
		m.handleEnvChange()
	}
}

func (m *Manager) handleEvent(ev event) {
	if ev.gen != m.gen {
		// From a superseded attempt. A late successful dial still opened
		// a real connection; close it.
		if ev.kind == evDialDone && ev.conn != nil {
			m.logger.Debug("closing connection from superseded attempt")
			ev.conn.Close(websocket.CloseNormalClosure, "superseded")
		}
		return
	}

	switch ev.kind {
	case evDialDone:
		m.handleDialDone(ev)
	case evConnClosed:
		m.handleConnClosed(ev)
	case evFrame:
		m.handleFrame(ev)
	case evRetryTimer:
		m.handleRetryTimer()
	case evHeartbeatTimer:
		m.handleHeartbeatTimer()
	}
}

func (m *Manager) handleDialDone(ev event) {
	if ev.err == nil {
		wasRecovery := m.attempts > 0
		m.conn = ev.conn
		m.connID = uuid.NewString()
		m.attempts = 0
		m.lastError = nil
		m.lastInbound = time.Now()
		m.state = StateConnected
		if wasRecovery {
			m.reconnects.Add(1)
		}
		m.startHeartbeat()
		m.logger.Info("connected", "connection_id", m.connID)

		// Re-announce interest before user traffic flows.
		for _, topic := range m.registry.topicNames() {
			m.sendControl(Frame{Type: FrameTypeSubscribe, Topic: topic, TS: time.Now().UnixMilli()})
		}
		return
	}

	if ev.fatal {
		m.logger.Error("connect failed, not retryable", "error", ev.err)
		m.lastError = ev.err
		m.suspended = true
		m.stopRetryTimer()
		m.state = StateDisconnected
		return
	}

	m.logger.Warn("connect failed", "reconnect_attempt", m.attempts, "error", ev.err)
	m.lastError = ev.err
	m.enterRecovery()
}

func (m *Manager) handleConnClosed(ev event) {
	m.stopHeartbeat()
	m.gen++ // late frames from the dead connection are now stale
	m.conn = nil
	m.connID = ""

	if ev.code == websocket.CloseNormalClosure {
		m.logger.Info("server closed connection", "code", ev.code)
		m.state = StateDisconnected
		m.attempts = 0
		m.lastError = nil
		m.suspended = true
		return
	}

	m.logger.Warn("connection lost", "code", ev.code, "error", ev.err)
	m.lastError = ev.err
	m.enterRecovery()
}

// enterRecovery schedules the next reconnect attempt after a failure.
// Attempts are numbered from 1; attempt n waits delay(n) before dialing.
// Gives up when the attempt budget is spent, pauses to Disconnected when
// the reconnect gate is closed.
func (m *Manager) enterRecovery() {
	next := m.attempts + 1
	if m.cfg.MaxAttempts > 0 && next > m.cfg.MaxAttempts {
		m.logger.Error("reconnect attempts exhausted",
			"attempts", m.attempts,
			"error", m.lastError,
		)
		m.lastError = ErrMaxAttempts
		m.suspended = true
		m.stopRetryTimer()
		m.state = StateDisconnected
		return
	}
	if !m.canReconnect() {
		m.pauseRecovery()
		return
	}
	m.attempts = next
	m.state = StateReconnecting
	m.scheduleRetry()
}

// pauseRecovery abandons a pending retry because the reconnect gate is
// closed. The attempt count is kept; a fresh opportunity resets it.
func (m *Manager) pauseRecovery() {
	m.logger.Info("reconnect gate closed, pausing recovery")
	m.stopRetryTimer()
	m.state = StateDisconnected
}

func (m *Manager) handleFrame(ev event) {
	m.framesReceived.Add(1)
	m.lastInbound = time.Now()

	f, err := m.codec.Decode(ev.data)
	if err != nil {
		m.parseErrors.Add(1)
		m.logger.Warn("dropping undecodable frame", "error", err)
		return
	}

	switch f.Type {
	case FrameTypePing:
		m.sendControl(Frame{Type: FrameTypePong, ID: f.ID, TS: time.Now().UnixMilli()})
	case FrameTypePong:
		// Inbound traffic already refreshed the liveness clock.
	default:
		listeners := m.registry.listeners(f.Topic)
		if len(listeners) == 0 {
			m.logger.Debug("no listeners for topic", "topic", f.Topic, "type", f.Type)
			return
		}
		for _, fn := range listeners {
			m.dispatch(fn, f)
			m.delivered.Add(1)
		}
	}
}

// dispatch invokes a listener, isolating panics so one bad subscriber
// cannot take the loop down.
func (m *Manager) dispatch(fn Listener, f Frame) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("listener panic", "topic", f.Topic, "panic", r)
		}
	}()
	fn(f)
}

// handleRetryTimer executes a scheduled reconnect attempt, re-checking
// the gate right before dialing since signals may have changed during
// the wait.
func (m *Manager) handleRetryTimer() {
	if m.state != StateReconnecting {
		return
	}
	m.retryTimer = nil

	if !m.canReconnect() {
		m.pauseRecovery()
		return
	}
	m.beginAttempt()
}

func (m *Manager) handleHeartbeatTimer() {
	if m.state != StateConnected || m.conn == nil {
		return
	}

	threshold := time.Duration(m.cfg.MissedHeartbeats) * m.cfg.HeartbeatInterval
	if silent := time.Since(m.lastInbound); silent >= threshold {
		m.logger.Warn("connection stale, forcing reconnect",
			"silent_for", silent,
			"threshold", threshold,
		)
		m.teardownConn(websocket.CloseGoingAway, "heartbeat timeout")
		m.lastError = ErrStaleConnection
		m.enterRecovery()
		return
	}

	m.sendControl(Frame{Type: FrameTypePing, TS: time.Now().UnixMilli()})
	m.startHeartbeat()
}

func (m *Manager) handleEnvChange() {
	if m.envmon == nil {
		return
	}
	snap := m.envmon.Current()
	m.logger.Debug("environment changed",
		"foreground", snap.Foreground,
		"network_up", snap.NetworkUp,
	)

	switch m.state {
	case StateConnected:
		// Ride it out; a dead network surfaces as a transport error.

	case StateConnecting:
		if !snap.NetworkUp {
			m.logger.Info("network down, abandoning connect")
			m.teardownConn(websocket.CloseNormalClosure, "network down")
			m.lastError = ErrNetworkDown
			m.state = StateDisconnected
		}

	case StateReconnecting:
		if !m.canReconnect() {
			m.pauseRecovery()
		}

	case StateDisconnected:
		// A restored signal is a fresh opportunity, not a retry: connect
		// immediately with the backoff cycle reset.
		if !m.suspended && m.registry.count() > 0 && m.envAllows() {
			m.logger.Info("environment recovered, reconnecting")
			m.attempts = 0
			m.beginAttempt()
		}
	}
}

// reconcileDemand starts a connection when subscription demand exists.
// Losing the last subscription never closes a live connection; it only
// stops future reconnects.
func (m *Manager) reconcileDemand() {
	n := m.registry.count()
	if n > 0 && m.state == StateDisconnected && !m.suspended && m.envAllows() {
		m.logger.Info("subscription demand, connecting", "topics", n)
		m.attempts = 0
		m.beginAttempt()
	}
}

// beginAttempt starts a dial under a new generation. The machine shows
// Connecting while a dial is in flight, whether fresh or a retry.
func (m *Manager) beginAttempt() {
	m.stopRetryTimer()
	m.gen++
	gen := m.gen
	m.state = StateConnecting
	m.logger.Info("connecting", "reconnect_attempt", m.attempts)
	go m.dial(gen)
}

// dial runs off the event loop; every outcome is posted back as an event
// tagged with the attempt's generation.
func (m *Manager) dial(gen uint64) {
	ctx, cancel := context.WithTimeout(m.runCtx, m.cfg.ConnectTimeout)
	defer cancel()

	var token string
	if m.tokens != nil {
		t, err := m.tokens.Token(ctx)
		if err != nil {
			m.postEvent(event{kind: evDialDone, gen: gen, err: fmt.Errorf("acquire token: %w", err), fatal: true})
			return
		}
		token = t
	}

	wsURL, err := buildURL(m.cfg.URL, token, m.cfg.Platform)
	if err != nil {
		m.postEvent(event{kind: evDialDone, gen: gen, err: fmt.Errorf("build sync URL: %w", err), fatal: true})
		return
	}

	conn, err := m.transport.Dial(ctx, wsURL, ConnCallbacks{
		OnFrame: func(data []byte) {
			m.postEvent(event{kind: evFrame, gen: gen, data: data})
		},
		OnClose: func(code int, err error) {
			m.postEvent(event{kind: evConnClosed, gen: gen, code: code, err: err})
		},
	})
	if err != nil {
		m.postEvent(event{kind: evDialDone, gen: gen, err: err})
		return
	}
	m.postEvent(event{kind: evDialDone, gen: gen, conn: conn})
}

// maybeDrain flushes the outbound queue to the connection. Runs after
// every loop iteration; stops on transport backpressure and resumes on
// the next iteration.
func (m *Manager) maybeDrain() {
	if m.state != StateConnected || m.conn == nil {
		return
	}
	for {
		msg, ok := m.queue.peek()
		if !ok {
			return
		}
		f := Frame{
			Type:    msg.Type,
			ID:      msg.ID,
			Topic:   msg.Topic,
			TS:      msg.EnqueuedAt.UnixMilli(),
			Payload: msg.Payload,
		}
		data, err := m.codec.Encode(f)
		if err != nil {
			m.logger.Error("dropping unencodable message", "message_id", msg.ID, "error", err)
			m.queue.pop()
			continue
		}
		if !m.conn.Enqueue(data) {
			return
		}
		m.queue.pop()
		m.framesSent.Add(1)
	}
}

// sendControl encodes and enqueues a protocol frame, bypassing the
// outbound queue. Control traffic is per-connection and not retried.
func (m *Manager) sendControl(f Frame) {
	if m.conn == nil {
		return
	}
	data, err := m.codec.Encode(f)
	if err != nil {
		m.logger.Error("encode control frame", "type", f.Type, "error", err)
		return
	}
	if !m.conn.Enqueue(data) {
		m.logger.Warn("control frame dropped, write buffer full", "type", f.Type)
	}
}

func (m *Manager) canReconnect() bool {
	return m.envAllows() && m.registry.count() > 0 && !m.suspended
}

func (m *Manager) envAllows() bool {
	if m.envmon == nil {
		return true
	}
	snap := m.envmon.Current()
	return snap.Foreground && snap.NetworkUp
}

func (m *Manager) scheduleRetry() {
	d := retryDelay(m.attempts, m.cfg.BaseDelay, m.cfg.MaxDelay)
	gen := m.gen
	m.stopRetryTimer()
	m.retryTimer = time.AfterFunc(d, func() {
		m.postEvent(event{kind: evRetryTimer, gen: gen})
	})
	m.logger.Info("reconnect scheduled", "reconnect_attempt", m.attempts, "delay", d)
}

func (m *Manager) startHeartbeat() {
	gen := m.gen
	m.stopHeartbeat()
	m.hbTimer = time.AfterFunc(m.cfg.HeartbeatInterval, func() {
		m.postEvent(event{kind: evHeartbeatTimer, gen: gen})
	})
}

func (m *Manager) stopRetryTimer() {
	if m.retryTimer != nil {
		m.retryTimer.Stop()
		m.retryTimer = nil
	}
}

func (m *Manager) stopHeartbeat() {
	if m.hbTimer != nil {
		m.hbTimer.Stop()
		m.hbTimer = nil
	}
}

// teardownConn closes the live connection (if any), stops timers, and
// bumps the generation so in-flight events from this connection or a
// pending dial are dropped as stale.
func (m *Manager) teardownConn(code int, reason string) {
	m.gen++
	m.stopRetryTimer()
	m.stopHeartbeat()
	if m.conn != nil {
		m.conn.Close(code, reason)
		m.conn = nil
	}
	m.connID = ""
}

// publish refreshes the status snapshot and notifies observers when it
// changed. Called once per loop iteration.
func (m *Manager) publish() {
	m.statusMu.Lock()
	prev := m.status
	if prev.State == m.state &&
		prev.ConnectionID == m.connID &&
		prev.Attempts == m.attempts &&
		prev.LastError == m.lastError {
		m.statusMu.Unlock()
		return
	}
	st := Status{
		State:        m.state,
		ConnectionID: m.connID,
		Attempts:     m.attempts,
		LastError:    m.lastError,
		Since:        time.Now(),
	}
	m.status = st
	subs := make([]func(Status), 0, len(m.statusSubs))
	for _, fn := range m.statusSubs {
		subs = append(subs, fn)
	}
	m.statusMu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
}
