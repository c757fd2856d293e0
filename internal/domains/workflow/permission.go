package workflow

// Can trả lời câu hỏi: role R có được thực hiện action A trên bài viết
// đang ở trạng thái S (isAuthor = actor là tác giả) hay không.
// Hàm thuần: không I/O, không side effect.
//
// Với các action không gắn với bài viết cụ thể (create, manageUsers,
// deleteAny) status có thể để rỗng.
func Can(role Role, action Action, status Status, isAuthor bool) bool {
	switch role {
	case RoleGuest:
		return action == ActionViewAny && status == StatusPublished

	case RoleWartawan:
		switch action {
		case ActionCreate:
			return true
		case ActionEditContent, ActionSubmitForEditorReview:
			return isAuthor && status == StatusDraft
		case ActionViewAny:
			// Draft và bài đang duyệt chỉ tác giả thấy
			return status == StatusPublished || isAuthor
		case ActionApproveAsEditor, ActionApproveAsRedaktur, ActionReject,
			ActionDeleteAny, ActionManageUsers:
			return false
		}
		return false

	case RoleEditor:
		switch action {
		case ActionApproveAsEditor, ActionReject:
			return status == StatusPendingEditor
		case ActionEditContent, ActionDeleteAny, ActionViewAny:
			return true
		case ActionCreate, ActionSubmitForEditorReview, ActionApproveAsRedaktur,
			ActionManageUsers:
			return false
		}
		return false

	case RoleRedaktur:
		return true
	}

	return false
}

// Authorize is Can with a typed error.
func Authorize(role Role, action Action, status Status, isAuthor bool) error {
	if Can(role, action, status, isAuthor) {
		return nil
	}
	return &PermissionDeniedError{Action: action, Role: role, Status: status}
}

// ReviewTarget returns the status a role reviews, if any.
// Editor duyệt pending_editor, redaktur duyệt pending_admin.
func ReviewTarget(role Role) (Status, bool) {
	switch role {
	case RoleEditor:
		return StatusPendingEditor, true
	case RoleRedaktur:
		return StatusPendingAdmin, true
	case RoleGuest, RoleWartawan:
		return "", false
	}
	return "", false
}

// AllowedActions lists the article actions the UI may expose for an
// article in the given state. Review controls are only offered on the
// role's own review target.
func AllowedActions(actor Actor, status Status, isAuthor bool) []Action {
	var out []Action
	for _, action := range AllActions() {
		if action == ActionCreate || action == ActionManageUsers {
			continue
		}
		if action == ActionApproveAsEditor || action == ActionApproveAsRedaktur || action == ActionReject {
			target, ok := ReviewTarget(actor.Role)
			if !ok || target != status {
				continue
			}
		}
		switch action {
		case ActionViewAny, ActionDeleteAny:
			if !Can(actor.Role, action, status, isAuthor) {
				continue
			}
		default:
			if _, err := Transition(status, action, actor.Role, isAuthor); err != nil {
				continue
			}
		}
		out = append(out, action)
	}
	return out
}
