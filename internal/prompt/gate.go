// Package prompt implements the post-login completion workflow: the gate
// deciding which prompt requirements are still unanswered, and the
// propagator applying incremental user-field edits.
package prompt

import (
	"github.com/dropDatabas3/frontdoor/internal/domain"
	"github.com/dropDatabas3/frontdoor/internal/metrics"
)

// RequirementKind distinguishes the two requirement shapes.
type RequirementKind string

const (
	KindAffiliation RequirementKind = "affiliation"
	KindProvider    RequirementKind = "provider"
)

// Requirement is one piece of profile data the application demands before
// the user may proceed past the prompt page.
type Requirement struct {
	Kind RequirementKind
	// Name is the provider item name for provider requirements,
	// "Affiliation" otherwise.
	Name string
	// Key is the user field the answer lives in.
	Key string
}

// IsAnswered reports whether the user already satisfies the requirement.
// A nil user answers nothing.
func (r Requirement) IsAnswered(user *domain.User) bool {
	if user == nil {
		return false
	}
	v, ok := user.Field(r.Key)
	return ok && v != ""
}

// Requirements lists every prompt requirement of the application, in
// configuration order with affiliation first.
func Requirements(app *domain.Application) []Requirement {
	if app == nil {
		return nil
	}
	var reqs []Requirement
	if app.IsAffiliationPrompted() {
		reqs = append(reqs, Requirement{Kind: KindAffiliation, Name: "Affiliation", Key: "affiliation"})
	}
	for _, item := range app.PromptedProviderItems() {
		if item.Provider == nil {
			continue
		}
		reqs = append(reqs, Requirement{Kind: KindProvider, Name: item.Name, Key: item.Provider.Key()})
	}
	return reqs
}

// UnansweredRequirements derives, fresh from the current application and
// user state, the requirements still missing an answer. Never cached;
// recomputed after every field edit.
func UnansweredRequirements(app *domain.Application, user *domain.User) []Requirement {
	metrics.GateEvaluations.Inc()
	var missing []Requirement
	for _, r := range Requirements(app) {
		if !r.IsAnswered(user) {
			missing = append(missing, r)
		}
	}
	return missing
}

// IsComplete reports whether the user may proceed: every requirement
// answered. Unloaded application or user blocks rather than errors.
func IsComplete(app *domain.Application, user *domain.User) bool {
	if app == nil || user == nil {
		return false
	}
	return len(UnansweredRequirements(app, user)) == 0
}
