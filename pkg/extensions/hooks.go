// Package extensions lets deployments attach behavior to application
// lifecycle points without touching the services, for example pushing
// live notifications after a calendar write.
package extensions

import (
	"context"
	"fmt"
	"sync"
)

// HookPoint represents a point in the application where hooks can be registered
type HookPoint string

const (
	// Calendar event lifecycle
	HookAfterEventCreate HookPoint = "after_event_create"
	HookAfterEventUpdate HookPoint = "after_event_update"
	HookAfterEventDelete HookPoint = "after_event_delete"

	// Membership lifecycle
	HookAfterMemberInvite HookPoint = "after_member_invite"
	HookAfterRoleChange   HookPoint = "after_role_change"
	HookAfterMemberRemove HookPoint = "after_member_remove"

	// Team lifecycle
	HookAfterTeamCreate HookPoint = "after_team_create"
	HookAfterTeamDelete HookPoint = "after_team_delete"

	// Authentication & Authorization
	HookAfterAuthentication HookPoint = "after_authentication"
	HookAfterAuthorization  HookPoint = "after_authorization"
)

// Hook represents a function that can be executed at a hook point
type Hook func(ctx context.Context, data HookData) error

// HookData carries what happened to the hooks
type HookData struct {
	TeamID    string                 `json:"team_id,omitempty"`
	EntityID  string                 `json:"entity_id"`
	Operation string                 `json:"operation"`
	ActorID   string                 `json:"actor_id"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// HookManager manages hooks for extension points
type HookManager struct {
	hooks map[HookPoint][]Hook
	mu    sync.RWMutex
}

// NewHookManager creates a new hook manager
func NewHookManager() *HookManager {
	return &HookManager{
		hooks: make(map[HookPoint][]Hook),
	}
}

// Register registers a hook for a specific hook point
func (m *HookManager) Register(point HookPoint, hook Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hooks[point] = append(m.hooks[point], hook)
}

// Execute executes all hooks for a specific hook point
func (m *HookManager) Execute(ctx context.Context, point HookPoint, data HookData) error {
	m.mu.RLock()
	hooks := m.hooks[point]
	m.mu.RUnlock()

	for i, hook := range hooks {
		if err := hook(ctx, data); err != nil {
			return fmt.Errorf("hook %d at %s failed: %w", i, point, err)
		}
	}
	return nil
}

// ExecuteAsync executes hooks without waiting for them. Hook errors are
// the hook's problem; the triggering operation has already succeeded.
func (m *HookManager) ExecuteAsync(ctx context.Context, point HookPoint, data HookData) {
	m.mu.RLock()
	hooks := m.hooks[point]
	m.mu.RUnlock()

	for _, hook := range hooks {
		go func(h Hook) {
			_ = h(ctx, data)
		}(hook)
	}
}

// Clear removes all hooks for a specific hook point
func (m *HookManager) Clear(point HookPoint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.hooks, point)
}

// ClearAll removes all registered hooks
func (m *HookManager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hooks = make(map[HookPoint][]Hook)
}
