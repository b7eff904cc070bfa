package rules

import (
	"fmt"
	"sort"
	"sync"
)

const BuiltinPack = "builtin"

// builtins is filled by init() in the rule_*.go files.
var builtins []Checkpoint

func registerBuiltin(c Checkpoint) {
	c.Pack = BuiltinPack
	builtins = append(builtins, c)
}

// Registry holds checkpoints by id. It is safe for concurrent use; packs
// can be swapped while evaluations read.
type Registry struct {
	mu       sync.RWMutex
	byID     map[string]Checkpoint
	settings Settings
}

func NewRegistry() *Registry {
	return &Registry{
		byID:     map[string]Checkpoint{},
		settings: defaultSettings(),
	}
}

// Builtin returns a registry seeded with the built-in checkpoints.
func Builtin() *Registry {
	r := NewRegistry()
	for _, c := range builtins {
		if err := r.Register(c); err != nil {
			panic(fmt.Sprintf("builtin checkpoint: %v", err))
		}
	}
	return r
}

func (r *Registry) Register(c Checkpoint) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := normID(c.ID)
	if _, ok := r.byID[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, c.ID)
	}
	r.byID[id] = c
	return nil
}

// Replace swaps every checkpoint registered by pack for cs. Nothing changes
// unless all of cs are valid and none collide with another pack.
func (r *Registry) Replace(pack string, cs []Checkpoint) error {
	next := make(map[string]Checkpoint, len(cs))
	for _, c := range cs {
		c.Pack = pack
		if err := c.Validate(); err != nil {
			return err
		}
		id := normID(c.ID)
		if _, ok := next[id]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicate, c.ID)
		}
		next[id] = c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range next {
		if cur, ok := r.byID[id]; ok && cur.Pack != pack {
			return fmt.Errorf("%w: %s (already registered by %s)", ErrDuplicate, id, cur.Pack)
		}
	}
	for id, cur := range r.byID {
		if cur.Pack == pack {
			delete(r.byID, id)
		}
	}
	for id, c := range next {
		r.byID[id] = c
	}
	return nil
}

// Lookup returns a checkpoint by id, disabled or not.
func (r *Registry) Lookup(id string) (Checkpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[normID(id)]
	if !ok {
		return Checkpoint{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, nil
}

// List returns enabled checkpoints sorted by id.
func (r *Registry) List() []Checkpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Checkpoint, 0, len(r.byID))
	for id, c := range r.byID {
		if r.settings.Disabled[id] {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ForFile returns the enabled checkpoints applicable to path.
func (r *Registry) ForFile(path string) []Checkpoint {
	var out []Checkpoint
	for _, c := range r.List() {
		if c.AppliesTo(path) {
			out = append(out, c)
		}
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
