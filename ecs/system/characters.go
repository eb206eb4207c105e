package system

import (
	"log"
	"sort"

	"github.com/milk9111/overworld/ecs"
)

// Characters indexes live character controllers by name and by entity.
// Everything that wants to drive a character (input, scripts, tests) goes
// through here instead of holding controller pointers of its own.
type Characters struct {
	byName   map[string]*CharacterController
	byEntity map[ecs.Entity]*CharacterController
}

func NewCharacters() *Characters {
	return &Characters{
		byName:   make(map[string]*CharacterController),
		byEntity: make(map[ecs.Entity]*CharacterController),
	}
}

func (c *Characters) Add(ctrl *CharacterController) {
	if ctrl == nil {
		return
	}
	if _, ok := c.byName[ctrl.Name()]; ok {
		log.Printf("characters: replacing controller %q", ctrl.Name())
	}
	c.byName[ctrl.Name()] = ctrl
	c.byEntity[ctrl.Entity()] = ctrl
}

func (c *Characters) Remove(name string) {
	ctrl, ok := c.byName[name]
	if !ok {
		return
	}
	delete(c.byName, name)
	delete(c.byEntity, ctrl.Entity())
}

// Get returns the controller registered under name. Misses are logged; the
// caller checks ok and moves on.
func (c *Characters) Get(name string) (*CharacterController, bool) {
	ctrl, ok := c.byName[name]
	if !ok {
		log.Printf("characters: no controller named %q", name)
		return nil, false
	}
	return ctrl, true
}

func (c *Characters) ByEntity(e ecs.Entity) (*CharacterController, bool) {
	ctrl, ok := c.byEntity[e]
	return ctrl, ok
}

// Names returns the registered controller names, sorted.
func (c *Characters) Names() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
