package core

import (
	"errors"
	"strings"
	"sync"

	"petfeeder/protocol"
)

// ErrUnknownCommand is returned when no handler matches the command word
var ErrUnknownCommand = errors.New("unknown command")

// CommandHandler handles one parsed command line. The handler is
// responsible for checking its own arguments.
type CommandHandler func(f *protocol.Fields) error

// Command is a registered text command
type Command struct {
	ID      uint16
	Name    string
	Format  string // Usage shown by help, e.g. "N DUR PWM HH MM"
	Handler CommandHandler
}

// CommandRegistry holds the registered commands
type CommandRegistry struct {
	mu         sync.RWMutex
	commands   map[uint16]*Command
	nameToID   map[string]uint16
	nextID     uint16
	dictionary string // help text, one command per line
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[uint16]*Command),
		nameToID: make(map[string]uint16),
	}
}

// Register adds a command to the registry. Names are matched case-insensitively.
// Registering a name twice returns the existing ID.
func (r *CommandRegistry) Register(name string, format string, handler CommandHandler) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.ToLower(name)
	if id, exists := r.nameToID[name]; exists {
		return id
	}

	id := r.nextID
	r.nextID++

	r.commands[id] = &Command{
		ID:      id,
		Name:    name,
		Format:  format,
		Handler: handler,
	}
	r.nameToID[name] = id

	r.rebuildDictionary()

	return id
}

// GetCommand retrieves a command by ID
func (r *CommandRegistry) GetCommand(id uint16) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

// GetCommandByName retrieves a command by name
func (r *CommandRegistry) GetCommandByName(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.nameToID[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return r.commands[id], true
}

// Count returns the number of registered commands
func (r *CommandRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Dispatch calls the handler registered for the line's command word
func (r *CommandRegistry) Dispatch(f *protocol.Fields) error {
	if f == nil || f.Count() == 0 {
		return ErrUnknownCommand
	}
	cmd, ok := r.GetCommandByName(f.Name())
	if !ok || cmd.Handler == nil {
		return ErrUnknownCommand
	}
	return cmd.Handler(f)
}

// GetDictionary returns the help text for all commands
func (r *CommandRegistry) GetDictionary() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dictionary
}

// rebuildDictionary rebuilds the help text
// Must be called with lock held
func (r *CommandRegistry) rebuildDictionary() {
	dict := ""
	for i := uint16(0); i < r.nextID; i++ {
		if cmd, ok := r.commands[i]; ok {
			if cmd.Format != "" {
				dict += cmd.Name + " " + cmd.Format + "\n"
			} else {
				dict += cmd.Name + "\n"
			}
		}
	}
	r.dictionary = dict
}
