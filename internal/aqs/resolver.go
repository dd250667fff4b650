package aqs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// CodeLister fetches a code list from the AQS list service. Scope carries
// the extra query parameters some list filters require (e.g. the enclosing
// state for countiesByState).
type CodeLister interface {
	ListCodes(ctx context.Context, listFilter string, scope map[string]string) (CodeTable, error)
}

// kindSpec maps a coded parameter kind to its list filter and the scoping
// parameters that filter needs.
type kindSpec struct {
	listFilter string
	scopeKeys  []string
	fixedScope map[string]string
}

var kindSpecs = map[string]kindSpec{
	ParamParam:  {listFilter: "parametersByClass", fixedScope: map[string]string{ParamClass: "ALL"}},
	ParamState:  {listFilter: "states"},
	ParamCounty: {listFilter: "countiesByState", scopeKeys: []string{ParamState}},
	ParamSite:   {listFilter: "sitesByCounty", scopeKeys: []string{ParamState, ParamCounty}},
	ParamCBSA:   {listFilter: "cbsas"},
	ParamPQAO:   {listFilter: "pqaos"},
	ParamMA:     {listFilter: "mas"},
	ParamClass:  {listFilter: "classes"},
}

// Resolver resolves human-supplied values (exact codes or descriptive
// labels) to the canonical codes the data API expects. Each resolution
// fetches the authoritative list fresh; nothing is cached.
type Resolver struct {
	lists  CodeLister
	logger zerolog.Logger
}

// NewResolver creates a resolver backed by the given list fetcher.
func NewResolver(lists CodeLister, logger zerolog.Logger) *Resolver {
	return &Resolver{lists: lists, logger: logger}
}

// Resolve maps value to the canonical code for the given parameter kind.
// Scope supplies dependent values: state for county resolution, state and
// county for site resolution.
func (r *Resolver) Resolve(ctx context.Context, kind, value string, scope map[string]string) (string, error) {
	table, err := r.candidates(ctx, kind, scope)
	if err != nil {
		return "", err
	}

	entry, ok := table.Find(value)
	if !ok {
		return "", &UnresolvedCodeError{Kind: kind, Value: value, Candidates: table}
	}

	r.logger.Debug().
		Str("kind", kind).
		Str("value", value).
		Str("code", entry.Code).
		Msg("resolved code")
	return entry.Code, nil
}

// candidates fetches the authoritative code list for a parameter kind.
func (r *Resolver) candidates(ctx context.Context, kind string, scope map[string]string) (CodeTable, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return nil, fmt.Errorf("parameter %q has no predefined code list", kind)
	}

	query := make(map[string]string, len(spec.scopeKeys)+len(spec.fixedScope))
	for k, v := range spec.fixedScope {
		query[k] = v
	}
	for _, k := range spec.scopeKeys {
		v, present := scope[k]
		if !present {
			return nil, fmt.Errorf("resolving %q requires %q in scope (%s)", kind, k, joinScope(scope))
		}
		query[k] = v
	}

	table, err := r.lists.ListCodes(ctx, spec.listFilter, query)
	if err != nil {
		return nil, fmt.Errorf("fetch %s list: %w", spec.listFilter, err)
	}
	return table, nil
}

// MemberCodes expands a parameter class into its member parameter codes.
// The class is verified against the classes list first so an unknown class
// fails with the valid class set rather than an empty expansion.
func (r *Resolver) MemberCodes(ctx context.Context, class string) ([]string, error) {
	classes, err := r.lists.ListCodes(ctx, "classes", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch classes list: %w", err)
	}
	entry, ok := classes.Find(class)
	if !ok {
		return nil, &UnresolvedCodeError{Kind: ParamClass, Value: class, Candidates: classes}
	}

	members, err := r.lists.ListCodes(ctx, "parametersByClass", map[string]string{ParamClass: entry.Code})
	if err != nil {
		return nil, fmt.Errorf("fetch parametersByClass list: %w", err)
	}
	return members.Codes(), nil
}
