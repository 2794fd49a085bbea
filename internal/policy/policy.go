// Package policy decides what a principal may do with a task. Handlers never
// inspect roles directly; they ask this package.
package policy

import "github.com/phrazzld/taskdesk/internal/domain"

// assigneeFields is what a team member may change on a task assigned to them.
var assigneeFields = domain.NewFieldSet(domain.FieldStatus)

// CanEdit returns the set of fields p may modify on task. An empty set means
// the principal may not edit the task at all.
func CanEdit(task *domain.Task, p domain.Principal) domain.FieldSet {
	switch {
	case p.IsAdmin():
		return domain.AllTaskFields
	case p.Role == domain.RoleTeamMember && task.IsAssignee(p.UserID):
		return assigneeFields
	default:
		return 0
	}
}

// CanView reports whether p may read task and its comments.
func CanView(task *domain.Task, p domain.Principal) bool {
	return p.IsAdmin() || task.IsAssignee(p.UserID) || task.CreatedByID == p.UserID
}

// CanComment reports whether p may comment on task.
func CanComment(task *domain.Task, p domain.Principal) bool {
	return CanView(task, p)
}

// CanManage reports whether p may perform administrative operations:
// creating and deleting tasks, broadcasting email, reading dashboard
// statistics and listing users.
func CanManage(p domain.Principal) bool {
	return p.IsAdmin()
}
