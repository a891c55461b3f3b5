package session

// CommandKind identifies a control request.
type CommandKind int

const (
	CommandExport CommandKind = iota + 1
	CommandClear
	CommandSetRecording
	CommandToggleRecording
	CommandTogglePointsVisible
)

func (k CommandKind) String() string {
	switch k {
	case CommandExport:
		return "export"
	case CommandClear:
		return "clear"
	case CommandSetRecording:
		return "set-recording"
	case CommandToggleRecording:
		return "toggle-recording"
	case CommandTogglePointsVisible:
		return "toggle-points-visible"
	}
	return "unknown"
}

// Command is a fire-and-forget control request. Enabled is only read by
// CommandSetRecording.
type Command struct {
	Kind    CommandKind
	Enabled bool
}

// Submit queues cmd. When the queue is full the oldest pending command is
// discarded to make room.
func (s *Session) Submit(cmd Command) {
	for {
		select {
		case s.commands <- cmd:
			return
		default:
		}
		select {
		case old := <-s.commands:
			s.commandsDropped.Add(1)
			debugf("dropped %s command", old.Kind)
		default:
		}
	}
}

// Export requests an export of the current buffer contents.
func (s *Session) Export() { s.Submit(Command{Kind: CommandExport}) }

// Clear requests that all accumulated points be discarded.
func (s *Session) Clear() { s.Submit(Command{Kind: CommandClear}) }

// SetRecording requests that sampling be enabled or disabled.
func (s *Session) SetRecording(on bool) {
	s.Submit(Command{Kind: CommandSetRecording, Enabled: on})
}

// ToggleRecording requests that sampling be flipped.
func (s *Session) ToggleRecording() { s.Submit(Command{Kind: CommandToggleRecording}) }

// TogglePointsVisible requests that renderers show or hide the points.
func (s *Session) TogglePointsVisible() { s.Submit(Command{Kind: CommandTogglePointsVisible}) }
