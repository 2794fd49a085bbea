package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCanEdit(t *testing.T) {
	assignee := uuid.New()
	creator := uuid.New()
	task := &domain.Task{ID: uuid.New(), AssignedToID: &assignee, CreatedByID: creator}
	unassigned := &domain.Task{ID: uuid.New(), CreatedByID: creator}

	tests := []struct {
		name      string
		task      *domain.Task
		principal domain.Principal
		want      domain.FieldSet
	}{
		{"admin edits everything", task, domain.Principal{UserID: uuid.New(), Role: domain.RoleAdmin}, domain.AllTaskFields},
		{"admin who is the assignee", task, domain.Principal{UserID: assignee, Role: domain.RoleAdmin}, domain.AllTaskFields},
		{"assignee edits status", task, domain.Principal{UserID: assignee, Role: domain.RoleTeamMember}, domain.NewFieldSet(domain.FieldStatus)},
		{"creator who is not admin", task, domain.Principal{UserID: creator, Role: domain.RoleTeamMember}, 0},
		{"stranger", task, domain.Principal{UserID: uuid.New(), Role: domain.RoleTeamMember}, 0},
		{"unassigned task", unassigned, domain.Principal{UserID: assignee, Role: domain.RoleTeamMember}, 0},
		{"unknown role", task, domain.Principal{UserID: assignee, Role: "GUEST"}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanEdit(tc.task, tc.principal))
		})
	}
}

func TestCanEditRejectsFieldsOutsideTheSet(t *testing.T) {
	assignee := uuid.New()
	task := &domain.Task{AssignedToID: &assignee}
	allowed := CanEdit(task, domain.Principal{UserID: assignee, Role: domain.RoleTeamMember})

	assert.True(t, allowed.Covers(domain.NewFieldSet(domain.FieldStatus)))
	assert.False(t, allowed.Covers(domain.NewFieldSet(domain.FieldStatus, domain.FieldPriority)))
	assert.Equal(t, []string{"priority"}, domain.NewFieldSet(domain.FieldStatus, domain.FieldPriority).Minus(allowed).Names())
}

func TestCanViewAndComment(t *testing.T) {
	assignee := uuid.New()
	creator := uuid.New()
	task := &domain.Task{AssignedToID: &assignee, CreatedByID: creator}

	tests := []struct {
		name      string
		principal domain.Principal
		want      bool
	}{
		{"admin", domain.Principal{UserID: uuid.New(), Role: domain.RoleAdmin}, true},
		{"assignee", domain.Principal{UserID: assignee, Role: domain.RoleTeamMember}, true},
		{"creator", domain.Principal{UserID: creator, Role: domain.RoleTeamMember}, true},
		{"stranger", domain.Principal{UserID: uuid.New(), Role: domain.RoleTeamMember}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanView(task, tc.principal))
			assert.Equal(t, tc.want, CanComment(task, tc.principal))
		})
	}
}

func TestCanManage(t *testing.T) {
	assert.True(t, CanManage(domain.Principal{Role: domain.RoleAdmin}))
	assert.False(t, CanManage(domain.Principal{Role: domain.RoleTeamMember}))
}
