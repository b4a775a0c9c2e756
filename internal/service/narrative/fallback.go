package narrative

import (
	"fmt"
	"strings"
)

// BranchOption is a generated candidate branch, not yet persisted.
type BranchOption struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// branchRule maps a recognizable decision shape to a deterministic pair of
// branches. Rules are checked in order; the first match wins.
type branchRule struct {
	matches func(title, description string) bool
	build   func(title, description string) []BranchOption
}

var knownCompanies = []string{"Amazon", "Microsoft", "Apple", "Google", "Meta", "Netflix"}

var branchRules = []branchRule{
	{
		// Job decisions naming specific companies become accept-offer pairs.
		matches: func(title, description string) bool {
			combined := strings.ToLower(title + " " + description)
			if !strings.Contains(combined, "job") {
				return false
			}
			count := 0
			for _, company := range knownCompanies {
				if strings.Contains(combined, strings.ToLower(company)) {
					count++
				}
			}
			return count > 0
		},
		build: func(title, description string) []BranchOption {
			combined := strings.ToLower(title + " " + description)
			var found []string
			for _, company := range knownCompanies {
				if strings.Contains(combined, strings.ToLower(company)) {
					found = append(found, company)
				}
			}
			first := "Company A"
			second := "Company B"
			if len(found) > 0 {
				first = found[0]
			}
			if len(found) > 1 {
				second = found[1]
			}
			return []BranchOption{
				{
					Name:        fmt.Sprintf("Accept %s Offer", first),
					Description: fmt.Sprintf("Choose the %s position and move forward with their offer.", first),
				},
				{
					Name:        fmt.Sprintf("Accept %s Offer", second),
					Description: fmt.Sprintf("Choose the %s position and move forward with their offer.", second),
				},
			}
		},
	},
}

// FallbackBranches returns a deterministic pair of branches for a decision
// when generation is unavailable. The rule table is tried first; anything
// unmatched gets the generic yes/no pair.
func FallbackBranches(title, description string) []BranchOption {
	for _, rule := range branchRules {
		if rule.matches(title, description) {
			return rule.build(title, description)
		}
	}
	return []BranchOption{
		{
			Name:        "Yes - Take Action",
			Description: "Move forward with this decision and embrace the opportunities it brings",
		},
		{
			Name:        "No - Wait or Decline",
			Description: "Hold off on this decision and explore alternative options",
		},
	}
}
