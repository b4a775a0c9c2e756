// Package memory provides an in-process Repository used by the dev server
// and the test suite. It keeps insertion order for branches and
// conversations so read paths behave deterministically.
package memory

import (
	"context"
	"sync"
	"time"

	"branchpoint-backend/internal/domain"
	appErrors "branchpoint-backend/pkg/errors"
)

// Repository stores everything in maps guarded by a single RWMutex.
type Repository struct {
	mu sync.RWMutex

	decisions     map[string]domain.Decision // decisionID -> decision
	decisionOrder map[string][]string        // userID -> decisionIDs in insertion order

	branches    map[string]domain.Branch // branchID -> branch
	branchOrder map[string][]string      // decisionID -> branchIDs in insertion order

	conversations map[string][]domain.Conversation // branchID -> conversations in insertion order

	comparisons map[string][]domain.Comparison // decisionID -> comparisons

	groups     map[string]domain.DecisionGroup // groupID -> group
	groupOrder map[string][]string             // userID -> groupIDs

	events []domain.Event

	err error // injected failure, returned by every call when set
}

// NewRepository returns an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{
		decisions:     make(map[string]domain.Decision),
		decisionOrder: make(map[string][]string),
		branches:      make(map[string]domain.Branch),
		branchOrder:   make(map[string][]string),
		conversations: make(map[string][]domain.Conversation),
		comparisons:   make(map[string][]domain.Comparison),
		groups:        make(map[string]domain.DecisionGroup),
		groupOrder:    make(map[string][]string),
	}
}

// SetError makes every subsequent call fail with err. Pass nil to clear.
// Used by tests to exercise storage failure paths.
func (r *Repository) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Repository) CreateDecision(ctx context.Context, d domain.Decision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.decisions[d.DecisionID] = d
	r.decisionOrder[d.UserID] = append(r.decisionOrder[d.UserID], d.DecisionID)
	return nil
}

func (r *Repository) FindDecision(ctx context.Context, userID, decisionID string) (*domain.Decision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	d, ok := r.decisions[decisionID]
	if !ok || d.UserID != userID {
		return nil, nil
	}
	copied := d
	return &copied, nil
}

func (r *Repository) ListDecisions(ctx context.Context, userID string) ([]domain.Decision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	ids := r.decisionOrder[userID]
	out := make([]domain.Decision, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.decisions[id])
	}
	return out, nil
}

func (r *Repository) SaveDecision(ctx context.Context, d domain.Decision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.decisions[d.DecisionID]; !ok {
		return appErrors.NewNotFound("decision not found")
	}
	r.decisions[d.DecisionID] = d
	return nil
}

func (r *Repository) CreateBranch(ctx context.Context, b domain.Branch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.branches[b.BranchID] = b
	r.branchOrder[b.DecisionID] = append(r.branchOrder[b.DecisionID], b.BranchID)
	return nil
}

func (r *Repository) FindBranch(ctx context.Context, branchID string) (*domain.Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	b, ok := r.branches[branchID]
	if !ok {
		return nil, nil
	}
	copied := b
	return &copied, nil
}

func (r *Repository) ListBranches(ctx context.Context, decisionID string) ([]domain.Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	ids := r.branchOrder[decisionID]
	out := make([]domain.Branch, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.branches[id])
	}
	return out, nil
}

func (r *Repository) MarkBranchSimulated(ctx context.Context, branchID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	b, ok := r.branches[branchID]
	if !ok {
		return appErrors.NewNotFound("branch not found")
	}
	b.LastSimulatedAt = &at
	r.branches[branchID] = b
	return nil
}

func (r *Repository) CreateConversation(ctx context.Context, c domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.conversations[c.BranchID] = append(r.conversations[c.BranchID], c)
	return nil
}

func (r *Repository) ListConversations(ctx context.Context, branchID string) ([]domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Conversation, len(r.conversations[branchID]))
	copy(out, r.conversations[branchID])
	return out, nil
}

func (r *Repository) CreateComparison(ctx context.Context, c domain.Comparison) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.comparisons[c.DecisionID] = append(r.comparisons[c.DecisionID], c)
	return nil
}

func (r *Repository) CreateGroup(ctx context.Context, g domain.DecisionGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.groups[g.GroupID] = g
	r.groupOrder[g.UserID] = append(r.groupOrder[g.UserID], g.GroupID)
	return nil
}

func (r *Repository) ListGroups(ctx context.Context, userID string) ([]domain.DecisionGroup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	ids := r.groupOrder[userID]
	out := make([]domain.DecisionGroup, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.groups[id])
	}
	return out, nil
}

func (r *Repository) AppendEvent(ctx context.Context, e domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

// Events returns a snapshot of all appended events, oldest first.
// Test helper; the service layer never reads events back.
func (r *Repository) Events() []domain.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Event, len(r.events))
	copy(out, r.events)
	return out
}
