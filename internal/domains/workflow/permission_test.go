package workflow

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCan_Guest(t *testing.T) {
	for _, action := range AllActions() {
		for _, status := range AllStatuses() {
			for _, isAuthor := range []bool{false, true} {
				want := action == ActionViewAny && status == StatusPublished
				assert.Equal(t, want, Can(RoleGuest, action, status, isAuthor),
					"guest %s on %s author=%v", action, status, isAuthor)
			}
		}
	}
}

func TestCan_Wartawan(t *testing.T) {
	tests := []struct {
		name     string
		action   Action
		status   Status
		isAuthor bool
		want     bool
	}{
		{"create", ActionCreate, "", true, true},
		{"edit own draft", ActionEditContent, StatusDraft, true, true},
		{"edit someone else's draft", ActionEditContent, StatusDraft, false, false},
		{"edit own submitted article", ActionEditContent, StatusPendingEditor, true, false},
		{"edit own published article", ActionEditContent, StatusPublished, true, false},
		{"submit own draft", ActionSubmitForEditorReview, StatusDraft, true, true},
		{"submit someone else's draft", ActionSubmitForEditorReview, StatusDraft, false, false},
		{"view published", ActionViewAny, StatusPublished, false, true},
		{"view own draft", ActionViewAny, StatusDraft, true, true},
		{"view someone else's pending", ActionViewAny, StatusPendingAdmin, false, false},
		{"approve as editor", ActionApproveAsEditor, StatusPendingEditor, true, false},
		{"publish", ActionApproveAsRedaktur, StatusPendingAdmin, true, false},
		{"reject", ActionReject, StatusPendingEditor, false, false},
		{"delete", ActionDeleteAny, StatusDraft, true, false},
		{"manage users", ActionManageUsers, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(RoleWartawan, tt.action, tt.status, tt.isAuthor))
		})
	}
}

func TestCan_Editor(t *testing.T) {
	for _, status := range AllStatuses() {
		assert.Equal(t, status == StatusPendingEditor, Can(RoleEditor, ActionApproveAsEditor, status, false), "approve from %s", status)
		assert.Equal(t, status == StatusPendingEditor, Can(RoleEditor, ActionReject, status, false), "reject from %s", status)
		assert.True(t, Can(RoleEditor, ActionEditContent, status, false), "edit in %s", status)
		assert.True(t, Can(RoleEditor, ActionDeleteAny, status, false), "delete in %s", status)
		assert.True(t, Can(RoleEditor, ActionViewAny, status, false), "view in %s", status)
		assert.False(t, Can(RoleEditor, ActionApproveAsRedaktur, status, true), "publish from %s", status)
		assert.False(t, Can(RoleEditor, ActionSubmitForEditorReview, status, true), "submit from %s", status)
	}
	assert.False(t, Can(RoleEditor, ActionManageUsers, "", false))
	assert.False(t, Can(RoleEditor, ActionCreate, "", true))
}

func TestCan_RedakturUnconditional(t *testing.T) {
	for _, action := range AllActions() {
		for _, status := range append(AllStatuses(), "") {
			assert.True(t, Can(RoleRedaktur, action, status, false), "%s on %q", action, status)
		}
	}
}

func TestCan_UnknownRoleDenied(t *testing.T) {
	for _, action := range AllActions() {
		assert.False(t, Can(Role("admin"), action, StatusPublished, true))
	}
}

func TestAuthorize_CarriesContext(t *testing.T) {
	err := Authorize(RoleWartawan, ActionReject, StatusPendingEditor, false)
	require.Error(t, err)

	var denied *PermissionDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, ActionReject, denied.Action)
	assert.Equal(t, RoleWartawan, denied.Role)
	assert.Equal(t, StatusPendingEditor, denied.Status)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, ErrCodePermissionDenied, ErrorCode(err))
}

func TestReviewTarget(t *testing.T) {
	st, ok := ReviewTarget(RoleEditor)
	assert.True(t, ok)
	assert.Equal(t, StatusPendingEditor, st)

	st, ok = ReviewTarget(RoleRedaktur)
	assert.True(t, ok)
	assert.Equal(t, StatusPendingAdmin, st)

	_, ok = ReviewTarget(RoleWartawan)
	assert.False(t, ok)
	_, ok = ReviewTarget(RoleGuest)
	assert.False(t, ok)
}

func TestAllowedActions_ReviewControlsOnlyOnTarget(t *testing.T) {
	editor := Actor{ID: uuid.New(), Role: RoleEditor}
	redaktur := Actor{ID: uuid.New(), Role: RoleRedaktur}

	assert.ElementsMatch(t,
		[]Action{ActionApproveAsEditor, ActionReject, ActionEditContent, ActionViewAny, ActionDeleteAny},
		AllowedActions(editor, StatusPendingEditor, false))

	// redaktur punya hak reject di pending_editor, tapi kontrolnya tidak ditampilkan
	actions := AllowedActions(redaktur, StatusPendingEditor, false)
	assert.NotContains(t, actions, ActionReject)
	assert.NotContains(t, actions, ActionApproveAsEditor)

	assert.ElementsMatch(t,
		[]Action{ActionApproveAsRedaktur, ActionReject, ActionEditContent, ActionViewAny, ActionDeleteAny},
		AllowedActions(redaktur, StatusPendingAdmin, false))

	author := Actor{ID: uuid.New(), Role: RoleWartawan}
	assert.ElementsMatch(t,
		[]Action{ActionSubmitForEditorReview, ActionEditContent, ActionViewAny},
		AllowedActions(author, StatusDraft, true))

	assert.Empty(t, AllowedActions(Guest(), StatusDraft, false))
	assert.Equal(t, []Action{ActionViewAny}, AllowedActions(Guest(), StatusPublished, false))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Redaktur ")
	require.NoError(t, err)
	assert.Equal(t, RoleRedaktur, r)

	_, err = ParseRole("admin")
	assert.Error(t, err)

	assert.False(t, RoleGuest.IsAssignable())
	assert.True(t, RoleEditor.IsAssignable())
}
