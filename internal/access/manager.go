package access

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clockops/clockctl/internal/export"
	"github.com/clockops/clockctl/internal/services"
	"github.com/clockops/clockctl/internal/services/project"
)

// Scope selects which projects the procedure touches. Empty means all
// projects; at most one field should be set.
type Scope struct {
	ClientID    string
	ClientName  string
	ProjectID   string
	ProjectName string
}

type Action string

const (
	ActionGrant  Action = "grant"
	ActionRevoke Action = "revoke"
)

// Operation is one planned assignee edge change.
type Operation struct {
	Action        Action `json:"action"`
	ProjectID     string `json:"projectId"`
	ProjectName   string `json:"projectName"`
	TaskID        string `json:"taskId"`
	TaskName      string `json:"taskName"`
	PrincipalID   string `json:"principalId"`
	PrincipalName string `json:"principalName"`
	MatchedRule   string `json:"matchedRule"`
}

// Plan is the full set of intended changes plus everything that could not be
// resolved. Resolution failures are collected, never fatal.
type Plan struct {
	Projects         int         `json:"projects"`
	TasksScanned     int         `json:"tasksScanned"`
	Operations       []Operation `json:"operations"`
	ResolutionErrors []string    `json:"resolutionErrors,omitempty"`
}

// OperationFailure records one failed mutation; the rest of the plan still
// executes.
type OperationFailure struct {
	Operation Operation `json:"operation"`
	Error     string    `json:"error"`
}

// Result is a plan plus what actually happened.
type Result struct {
	Plan    *Plan              `json:"plan"`
	Applied []Operation        `json:"applied"`
	Failed  []OperationFailure `json:"failed"`
	DryRun  bool               `json:"dryRun"`
}

// Manager orchestrates the grant/revoke procedure. State-free between runs;
// re-running after a partial failure is the recovery path.
type Manager struct {
	svc      *services.Services
	exporter *export.Exporter
	logger   *slog.Logger
	rules    *RuleSet

	// apply gates every mutating call
	apply bool
}

func NewManager(svc *services.Services, exporter *export.Exporter, logger *slog.Logger, rules *RuleSet, apply bool) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{svc: svc, exporter: exporter, logger: logger, rules: rules, apply: apply}
}

// ResolveScope turns a scope filter into a concrete project list.
func (m *Manager) ResolveScope(ctx context.Context, scope Scope) ([]project.Project, error) {
	switch {
	case scope.ProjectID != "":
		p, err := m.svc.Projects.GetByID(ctx, scope.ProjectID)
		if err != nil {
			return nil, err
		}
		return []project.Project{*p}, nil
	case scope.ProjectName != "":
		p, err := m.svc.Projects.GetByName(ctx, scope.ProjectName)
		if err != nil {
			return nil, err
		}
		return []project.Project{*p}, nil
	case scope.ClientName != "":
		c, err := m.svc.Clients.GetByName(ctx, scope.ClientName)
		if err != nil {
			return nil, err
		}
		scope.ClientID = c.ID
		fallthrough
	case scope.ClientID != "":
		all, err := m.svc.Projects.List(ctx)
		if err != nil {
			return nil, err
		}
		return project.FilterByClientID(all, scope.ClientID), nil
	default:
		return m.svc.Projects.List(ctx)
	}
}

// principals is the resolved allow-list (target set) and deny-list.
type principals struct {
	target     map[string]string // id -> display name
	restricted map[string]string
	errs       []string
}

func (m *Manager) resolvePrincipals(ctx context.Context) principals {
	p := principals{target: map[string]string{}, restricted: map[string]string{}}

	users, errs := m.svc.Users.FindByNames(ctx, m.rules.AuthorizedUsers)
	for name, u := range users {
		p.target[u.ID] = name
	}
	groups, groupErrs := m.svc.Groups.FindByNames(ctx, m.rules.AuthorizedGroups)
	for name, g := range groups {
		p.target[g.ID] = name
	}
	errs = append(errs, groupErrs...)

	// Restricted principals may be groups or users; try groups first.
	for _, name := range m.rules.RestrictedPrincipals {
		if g, err := m.svc.Groups.GetByName(ctx, name); err == nil {
			p.restricted[g.ID] = name
			continue
		}
		u, err := m.svc.Users.GetByName(ctx, name)
		if err != nil {
			errs = append(errs, fmt.Errorf("restricted principal %q: no matching group or user", name))
			continue
		}
		p.restricted[u.ID] = name
	}

	for _, err := range errs {
		p.errs = append(p.errs, err.Error())
	}
	return p
}

// BuildPlan runs the linear pass: resolve scope, enumerate tasks, partition by
// rule matches, and diff assignee sets. It performs no mutations.
func (m *Manager) BuildPlan(ctx context.Context, scope Scope) (*Plan, error) {
	projects, err := m.ResolveScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("resolve project scope: %w", err)
	}

	prins := m.resolvePrincipals(ctx)
	plan := &Plan{Projects: len(projects), ResolutionErrors: prins.errs}

	for _, proj := range projects {
		tasks, err := m.svc.Tasks.ListByProject(ctx, proj.ID)
		if err != nil {
			return nil, err
		}
		plan.TasksScanned += len(tasks)

		for _, t := range tasks {
			if rule, ok := m.rules.MatchAuthorized(t.Name); ok {
				// Grant only the missing principals; existing assignees are
				// left untouched, which keeps re-runs free of mutations.
				for id, name := range prins.target {
					if t.HasAssignee(id) {
						continue
					}
					plan.Operations = append(plan.Operations, Operation{
						Action:      ActionGrant,
						ProjectID:   proj.ID,
						ProjectName: proj.Name,
						TaskID:      t.ID,
						TaskName:    t.Name,
						PrincipalID: id, PrincipalName: name,
						MatchedRule: rule.Name,
					})
				}
			}
			if ruleName, ok := m.rules.MatchRestricted(t.Name); ok {
				for id, name := range prins.restricted {
					if !t.HasAssignee(id) {
						continue
					}
					plan.Operations = append(plan.Operations, Operation{
						Action:      ActionRevoke,
						ProjectID:   proj.ID,
						ProjectName: proj.Name,
						TaskID:      t.ID,
						TaskName:    t.Name,
						PrincipalID: id, PrincipalName: name,
						MatchedRule: ruleName,
					})
				}
			}
		}
	}

	m.logger.Info("access plan built",
		slog.Int("projects", plan.Projects),
		slog.Int("tasks_scanned", plan.TasksScanned),
		slog.Int("operations", len(plan.Operations)),
		slog.Int("resolution_errors", len(plan.ResolutionErrors)))
	return plan, nil
}

// Run builds the plan, exports it, and applies it when changes are approved.
// Every planned change is recorded before any mutation executes. There is no
// rollback: a failure leaves earlier grants in place and the idempotent re-run
// is the remediation path.
func (m *Manager) Run(ctx context.Context, scope Scope) (*Result, error) {
	plan, err := m.BuildPlan(ctx, scope)
	if err != nil {
		return nil, err
	}

	if m.exporter != nil {
		if rows, err := export.Rows(plan.Operations); err == nil {
			if err := m.exporter.Snapshot("access_plan", rows); err != nil {
				m.logger.Warn("failed to export access plan", slog.Any("error", err))
			}
		}
	}

	result := &Result{Plan: plan, DryRun: !m.apply}
	if !m.apply {
		m.logger.Warn("changes not approved, skipping all mutations; set APPROVE_CHANGES=true to apply",
			slog.Int("skipped_operations", len(plan.Operations)))
		return result, nil
	}

	for _, op := range plan.Operations {
		var opErr error
		switch op.Action {
		case ActionGrant:
			opErr = m.svc.Tasks.AddAssignee(ctx, op.ProjectID, op.TaskID, op.PrincipalID)
		case ActionRevoke:
			opErr = m.svc.Tasks.RemoveAssignee(ctx, op.ProjectID, op.TaskID, op.PrincipalID)
		}
		if opErr != nil {
			m.logger.Error("access operation failed",
				slog.String("action", string(op.Action)),
				slog.String("task", op.TaskName),
				slog.String("principal", op.PrincipalName),
				slog.Any("error", opErr))
			result.Failed = append(result.Failed, OperationFailure{Operation: op, Error: opErr.Error()})
			continue
		}
		m.logger.Info("access operation applied",
			slog.String("action", string(op.Action)),
			slog.String("task", op.TaskName),
			slog.String("principal", op.PrincipalName))
		result.Applied = append(result.Applied, op)
	}

	if m.exporter != nil {
		if _, err := m.exporter.JSON("access_results", result); err != nil {
			m.logger.Warn("failed to export access results", slog.Any("error", err))
		}
	}
	return result, nil
}
