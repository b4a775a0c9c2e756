package decision

import (
	"context"
	"time"

	"branchpoint-backend/internal/domain"
	appErrors "branchpoint-backend/pkg/errors"
)

// TreeNode is one decision in the forest with its branches and spawned
// sub-decisions.
type TreeNode struct {
	Decision domain.Decision `json:"decision"`
	Branches []domain.Branch `json:"branches"`
	Children []*TreeNode     `json:"children"`
}

// TreeResult is the caller's whole decision forest plus depth metrics.
type TreeResult struct {
	RootDecision   *domain.Decision `json:"rootDecision"`
	Nodes          []*TreeNode      `json:"nodes"`
	MaxDepth       int              `json:"maxDepth"`
	TotalDecisions int              `json:"totalDecisions"`
}

// BuildTree groups the caller's decisions by parent into a forest.
// MaxDepth is the longest parent chain plus one; an empty forest has
// depth zero.
func (s *Service) BuildTree(ctx context.Context, userID string) (*TreeResult, error) {
	decisions, err := s.repo.ListDecisions(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list decisions")
	}
	if len(decisions) == 0 {
		return &TreeResult{Nodes: []*TreeNode{}}, nil
	}

	byParent := make(map[string][]domain.Decision)
	byID := make(map[string]domain.Decision, len(decisions))
	for _, d := range decisions {
		byParent[d.ParentDecisionID] = append(byParent[d.ParentDecisionID], d)
		byID[d.DecisionID] = d
	}

	var build func(parentID string) ([]*TreeNode, error)
	build = func(parentID string) ([]*TreeNode, error) {
		nodes := make([]*TreeNode, 0, len(byParent[parentID]))
		for _, d := range byParent[parentID] {
			branches, err := s.repo.ListBranches(ctx, d.DecisionID)
			if err != nil {
				return nil, appErrors.Wrap(err, "failed to list branches")
			}
			children, err := build(d.DecisionID)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &TreeNode{
				Decision: d,
				Branches: branches,
				Children: children,
			})
		}
		return nodes, nil
	}

	roots, err := build("")
	if err != nil {
		return nil, err
	}

	maxDepth := 0
	for _, d := range decisions {
		depth := 1
		current := d
		for current.ParentDecisionID != "" {
			parent, ok := byID[current.ParentDecisionID]
			if !ok {
				break
			}
			depth++
			current = parent
		}
		if depth > maxDepth {
			maxDepth = depth
		}
	}

	result := &TreeResult{
		Nodes:          roots,
		MaxDepth:       maxDepth,
		TotalDecisions: len(decisions),
	}
	if len(roots) > 0 {
		result.RootDecision = &roots[0].Decision
	}
	return result, nil
}

// GroupDecisions labels two or more of the caller's decisions. Every
// referenced decision must exist and belong to the caller.
func (s *Service) GroupDecisions(ctx context.Context, userID string, decisionIDs []string, name, description string) (*domain.DecisionGroup, error) {
	if len(decisionIDs) < 2 {
		return nil, appErrors.NewValidation("At least 2 decisions are required to create a group")
	}
	if name == "" {
		return nil, appErrors.NewValidation("Group name is required")
	}

	for _, id := range decisionIDs {
		decision, err := s.repo.FindDecision(ctx, userID, id)
		if err != nil {
			return nil, appErrors.Wrap(err, "failed to load decision")
		}
		if decision == nil {
			return nil, appErrors.NewValidation("Some decisions not found or do not belong to user")
		}
	}

	group := domain.DecisionGroup{
		GroupID:     newID("group"),
		UserID:      userID,
		Name:        name,
		Description: description,
		DecisionIDs: decisionIDs,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, "failed to create group")
	}
	return &group, nil
}

// GroupDetail is a group with its member decisions resolved to full
// objects.
type GroupDetail struct {
	domain.DecisionGroup
	Decisions []domain.Decision `json:"decisions"`
}

// ListGroups returns the caller's groups with member decisions attached.
// Members that have since become unreadable are skipped rather than
// failing the whole listing.
func (s *Service) ListGroups(ctx context.Context, userID string) ([]GroupDetail, error) {
	groups, err := s.repo.ListGroups(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to list groups")
	}

	details := make([]GroupDetail, 0, len(groups))
	for _, group := range groups {
		detail := GroupDetail{
			DecisionGroup: group,
			Decisions:     make([]domain.Decision, 0, len(group.DecisionIDs)),
		}
		for _, id := range group.DecisionIDs {
			decision, err := s.repo.FindDecision(ctx, userID, id)
			if err != nil {
				return nil, appErrors.Wrap(err, "failed to load decision")
			}
			if decision != nil {
				detail.Decisions = append(detail.Decisions, *decision)
			}
		}
		details = append(details, detail)
	}
	return details, nil
}
