package netsync

import (
	"fmt"
	"sort"
)

// RuleKey addresses one invalidation rule.
type RuleKey struct {
	Module Module
	Action Action
}

// ModuleSet is an unordered set of modules.
type ModuleSet map[Module]struct{}

// Contains reports set membership.
func (s ModuleSet) Contains(m Module) bool {
	_, ok := s[m]

	return ok
}

// Modules returns the set in stable order.
func (s ModuleSet) Modules() []Module {
	out := make([]Module, 0, len(s))
	for m := range s {
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

func newModuleSet(modules ...Module) ModuleSet {
	set := make(ModuleSet, len(modules))
	for _, m := range modules {
		set[m] = struct{}{}
	}

	return set
}

// RuleTable maps each (module, action) to the set of modules whose caches
// the write invalidates. The initiating module is always in the set.
// Cross-module edges encode where a write's effect actually lands: a
// server connectivity test updates health shown on the dashboard, project
// start and stop change equipment state, applying a policy changes the
// aggregated views, and a discovery run feeds the dashboard summary.
type RuleTable struct {
	rules map[RuleKey]ModuleSet
}

// NewRuleTable builds the invalidation table, failing on any rule that
// names an unknown module.
func NewRuleTable() (*RuleTable, error) {
	rules := map[RuleKey]ModuleSet{
		{ModuleClients, ActionRegisterClient}: newModuleSet(ModuleClients),
		{ModuleClients, ActionTestServer}:     newModuleSet(ModuleClients, ModuleDashboard),
		{ModuleGNS3, ActionCreateProject}:     newModuleSet(ModuleGNS3),
		{ModuleGNS3, ActionStartProject}:      newModuleSet(ModuleGNS3, ModuleEquipment),
		{ModuleGNS3, ActionStopProject}:       newModuleSet(ModuleGNS3, ModuleEquipment),
		{ModuleGNS3, ActionStartNode}:         newModuleSet(ModuleGNS3),
		{ModuleGNS3, ActionStopNode}:          newModuleSet(ModuleGNS3),
		{ModuleQoS, ActionCreatePolicy}:       newModuleSet(ModuleQoS),
		{ModuleQoS, ActionUpdatePolicy}:       newModuleSet(ModuleQoS),
		{ModuleQoS, ActionApplyPolicy}:        newModuleSet(ModuleQoS, ModuleViews),
		{ModuleEquipment, ActionDiscover}:     newModuleSet(ModuleEquipment, ModuleDashboard),
		{ModuleDashboard, ActionSaveLayout}:   newModuleSet(ModuleDashboard),
	}

	known := make(ModuleSet)
	for _, m := range KnownModules() {
		known[m] = struct{}{}
	}

	for key, set := range rules {
		if !known.Contains(key.Module) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownModule, key.Module)
		}

		if !set.Contains(key.Module) {
			return nil, fmt.Errorf("rule %s/%s does not invalidate its own module", key.Module, key.Action)
		}

		for m := range set {
			if !known.Contains(m) {
				return nil, fmt.Errorf("%w: %s (rule %s/%s)", ErrUnknownModule, m, key.Module, key.Action)
			}
		}
	}

	return &RuleTable{rules: rules}, nil
}

// AffectedBy returns every module invalidated by (module, action),
// including the initiator. Unknown pairs fall back to the initiator alone.
func (t *RuleTable) AffectedBy(module Module, action Action) []Module {
	set, ok := t.rules[RuleKey{module, action}]
	if !ok {
		return []Module{module}
	}

	return set.Modules()
}

// Dependents returns the modules invalidated by (module, action) other
// than the initiator.
func (t *RuleTable) Dependents(module Module, action Action) []Module {
	affected := t.AffectedBy(module, action)

	out := make([]Module, 0, len(affected))

	for _, m := range affected {
		if m != module {
			out = append(out, m)
		}
	}

	return out
}

// Knows reports whether an explicit rule exists for (module, action).
func (t *RuleTable) Knows(module Module, action Action) bool {
	_, ok := t.rules[RuleKey{module, action}]

	return ok
}
