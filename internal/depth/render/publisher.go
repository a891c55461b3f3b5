package render

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/banshee-data/pointcloud.recorder/internal/depth/render/pb"
	"github.com/banshee-data/pointcloud.recorder/internal/depth/ringbuf"
	"github.com/banshee-data/pointcloud.recorder/internal/monitoring"
	"github.com/banshee-data/pointcloud.recorder/internal/timeutil"
)

// Config configures a Publisher.
type Config struct {
	// ListenAddr is the gRPC listen address, e.g. "localhost:50061".
	ListenAddr string

	// Interval is how often dirty ranges are drained and streamed.
	Interval time.Duration

	// MaxClients caps concurrent streams. Extra clients are refused.
	MaxClients int

	// ClientBuffer is the per-client queue length in chunks.
	ClientBuffer int
}

// DefaultConfig returns the defaults used by cmd/recorder.
func DefaultConfig() Config {
	return Config{
		ListenAddr:   "localhost:50061",
		Interval:     16 * time.Millisecond,
		MaxClients:   8,
		ClientBuffer: 64,
	}
}

// Publisher is the render-side consumer of a ring buffer. On every tick it
// mirrors the dirty range and frame stats and fans them out to streaming
// clients. Points chunks are deltas, so a client whose queue overflows is
// marked stale and sent the whole mirror before anything newer.
type Publisher struct {
	pb.UnimplementedRendererServer

	config  Config
	buf     *ringbuf.Buffer
	mailbox *Mailbox
	clock   timeutil.Clock

	server   *grpc.Server
	listener net.Listener

	// mu serialises ticks with client registration so a new client's
	// initial snapshot and its queued chunks never overlap.
	mu        sync.Mutex
	mirror    *Mirror
	lastCount int
	lastFrame *pb.Chunk
	clients   map[string]*client

	chunkCount    atomic.Uint64
	droppedChunks atomic.Uint64
	resyncCount   atomic.Uint64
	clientCount   atomic.Int32

	running atomic.Bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewPublisher returns a publisher draining buf. mailbox may be nil.
func NewPublisher(cfg Config, buf *ringbuf.Buffer, mailbox *Mailbox) *Publisher {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MaxClients <= 0 {
		cfg.MaxClients = def.MaxClients
	}
	if cfg.ClientBuffer <= 0 {
		cfg.ClientBuffer = def.ClientBuffer
	}
	return &Publisher{
		config:  cfg,
		buf:     buf,
		mailbox: mailbox,
		clock:   timeutil.RealClock{},
		mirror:  NewMirror(buf.Capacity()),
		clients: make(map[string]*client),
		stopCh:  make(chan struct{}),
	}
}

// SetClock replaces the tick clock. Call before Start.
func (p *Publisher) SetClock(c timeutil.Clock) { p.clock = c }

// Start listens on ListenAddr and serves until Stop.
func (p *Publisher) Start() error {
	lis, err := net.Listen("tcp", p.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	monitoring.Logf("[Publisher] Listening on %s", lis.Addr())
	return p.Serve(lis)
}

// Serve starts the gRPC server and the tick loop on lis.
func (p *Publisher) Serve(lis net.Listener) error {
	if !p.running.CompareAndSwap(false, true) {
		return fmt.Errorf("publisher already running")
	}
	p.listener = lis

	const maxMsgSize = 16 * 1024 * 1024
	p.server = grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMsgSize),
		grpc.MaxSendMsgSize(maxMsgSize),
	)
	pb.RegisterRendererServer(p.server, p)

	p.wg.Add(2)
	go p.tickLoop()
	go func() {
		defer p.wg.Done()
		if err := p.server.Serve(lis); err != nil && p.running.Load() {
			monitoring.Logf("[Publisher] gRPC server error: %v", err)
		}
	}()
	return nil
}

// Stop closes every stream and waits for the goroutines to exit.
func (p *Publisher) Stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.stopCh)
	p.server.Stop()
	p.wg.Wait()
	monitoring.Logf("[Publisher] Stopped: chunks=%d dropped=%d resyncs=%d", p.chunkCount.Load(), p.droppedChunks.Load(), p.resyncCount.Load())
}

func (p *Publisher) tickLoop() {
	defer p.wg.Done()
	ticker := p.clock.NewTicker(p.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C():
			p.Tick()
		}
	}
}

// client is one registered stream. stale is guarded by Publisher.mu.
type client struct {
	id    string
	ch    chan *pb.Chunk
	stale bool
}

// Tick drains the ring once and queues the resulting chunks for every
// client. It is called by the tick loop and may be called directly.
func (p *Publisher) Tick() {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := p.mirror.Sync(p.buf)
	count := p.mirror.Count()

	var chunks []*pb.Chunk
	for _, s := range d.Spans() {
		chunks = append(chunks, spanChunks(p.mirror.data, s, count, p.mirror.Capacity())...)
	}
	if len(chunks) == 0 && count != p.lastCount {
		// A clear shrinks the count without dirtying anything.
		chunks = append(chunks, pointsChunk(nil, ringbuf.Span{}, count, p.mirror.Capacity()))
	}
	p.lastCount = count

	if p.mailbox != nil {
		if stats, ok := p.mailbox.Take(); ok {
			p.lastFrame = frameChunk(stats, p.mailbox.Visible())
			chunks = append(chunks, p.lastFrame)
		}
	}

	p.chunkCount.Add(uint64(len(chunks)))
	for _, c := range p.clients {
		if c.stale {
			continue
		}
		for _, msg := range chunks {
			if !p.enqueue(c, msg) {
				monitoring.Logf("[Publisher] Client %s fell behind, resync pending", c.id)
				break
			}
		}
	}
}

// enqueue queues msg for c without blocking. On overflow it counts the
// drop and marks c stale. The caller holds p.mu.
func (p *Publisher) enqueue(c *client, msg *pb.Chunk) bool {
	select {
	case c.ch <- msg:
		return true
	default:
		p.droppedChunks.Add(1)
		c.stale = true
		return false
	}
}

// snapshotChunks describes the whole mirror plus the latest frame stats.
// The caller holds p.mu.
func (p *Publisher) snapshotChunks() []*pb.Chunk {
	count := p.mirror.Count()
	out := spanChunks(p.mirror.data, ringbuf.Span{Begin: 0, Count: count}, count, p.mirror.Capacity())
	if len(out) == 0 {
		out = append(out, pointsChunk(nil, ringbuf.Span{}, 0, p.mirror.Capacity()))
	}
	if p.lastFrame != nil {
		out = append(out, p.lastFrame)
	}
	return out
}

// Mirror returns the points the publisher last streamed.
func (p *Publisher) Mirror() []ringbuf.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mirror.Points()
}

// Stats reports streaming counters.
func (p *Publisher) Stats() (chunks, dropped uint64, clients int) {
	return p.chunkCount.Load(), p.droppedChunks.Load(), int(p.clientCount.Load())
}

// Resyncs reports how many times a lagging client was sent the whole mirror.
func (p *Publisher) Resyncs() uint64 { return p.resyncCount.Load() }

// addClient registers a stream and returns the chunks describing the
// current mirror, so the client starts from a full copy.
func (p *Publisher) addClient() (*client, []*pb.Chunk, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.clients) >= p.config.MaxClients {
		return nil, nil, status.Errorf(codes.ResourceExhausted, "too many clients (%d)", len(p.clients))
	}

	c := &client{id: uuid.NewString(), ch: make(chan *pb.Chunk, p.config.ClientBuffer)}
	p.clients[c.id] = c
	n := p.clientCount.Add(1)
	monitoring.Logf("[Publisher] Client connected: %s (total: %d)", c.id, n)
	return c, p.snapshotChunks(), nil
}

func (p *Publisher) removeClient(id string) {
	p.mu.Lock()
	_, ok := p.clients[id]
	delete(p.clients, id)
	p.mu.Unlock()
	if ok {
		n := p.clientCount.Add(-1)
		monitoring.Logf("[Publisher] Client disconnected: %s (remaining: %d)", id, n)
	}
}

// outgoing returns what to send for msg, just received from c's queue. For
// a stale client the queue is discarded and the whole mirror is returned
// instead; later ticks queue after it, so the client sees no gap.
func (p *Publisher) outgoing(c *client, msg *pb.Chunk) []*pb.Chunk {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !c.stale {
		return []*pb.Chunk{msg}
	}
	for drained := false; !drained; {
		select {
		case <-c.ch:
		default:
			drained = true
		}
	}
	c.stale = false
	p.resyncCount.Add(1)
	return p.snapshotChunks()
}

// StreamPoints serves one renderer until it disconnects or the publisher
// stops.
func (p *Publisher) StreamPoints(_ *pb.StreamRequest, stream pb.Renderer_StreamPointsServer) error {
	c, initial, err := p.addClient()
	if err != nil {
		return err
	}
	defer p.removeClient(c.id)

	for _, msg := range initial {
		if err := stream.Send(msg); err != nil {
			return err
		}
	}

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case msg := <-c.ch:
			for _, out := range p.outgoing(c, msg) {
				if err := stream.Send(out); err != nil {
					return err
				}
			}
		}
	}
}

// Subscribe opens a point stream on conn and calls fn for every chunk until
// the stream ends, ctx is cancelled or fn returns an error.
func Subscribe(ctx context.Context, conn grpc.ClientConnInterface, fn func(*pb.Chunk) error) error {
	stream, err := pb.NewRendererClient(conn).StreamPoints(ctx, &pb.StreamRequest{})
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	for {
		c, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
	}
}
