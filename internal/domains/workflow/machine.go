package workflow

// edge là một cạnh của state machine: (from, action) -> to
type edge struct {
	to Status
	// reasonRequired: bắt buộc lý do (reject)
	reasonRequired bool
	// setsPublishedAt: lần publish đầu tiên ghi published_at
	setsPublishedAt bool
}

type edgeKey struct {
	from   Status
	action Action
}

// transitions là bảng cạnh duy nhất của workflow. Không có cạnh draft -> published.
var transitions = map[edgeKey]edge{
	{StatusDraft, ActionSubmitForEditorReview}:    {to: StatusPendingEditor},
	{StatusPendingEditor, ActionApproveAsEditor}:  {to: StatusPendingAdmin},
	{StatusPendingEditor, ActionReject}:           {to: StatusDraft, reasonRequired: true},
	{StatusPendingAdmin, ActionApproveAsRedaktur}: {to: StatusPublished, setsPublishedAt: true},
	{StatusPendingAdmin, ActionReject}:            {to: StatusDraft, reasonRequired: true},

	// editContent không đổi status
	{StatusDraft, ActionEditContent}:         {to: StatusDraft},
	{StatusPendingEditor, ActionEditContent}: {to: StatusPendingEditor},
	{StatusPendingAdmin, ActionEditContent}:  {to: StatusPendingAdmin},
	{StatusPublished, ActionEditContent}:     {to: StatusPublished},
}

// InitialStatus is the state every new article starts in.
const InitialStatus = StatusDraft

// HasEdge reports whether action is defined from the given state,
// regardless of who asks.
func HasEdge(from Status, action Action) bool {
	_, ok := transitions[edgeKey{from, action}]
	return ok
}

// Transition tính trạng thái kế tiếp.
//
// Thứ tự kiểm tra cố định:
//  1. cạnh (from, action) có tồn tại không -> InvalidTransition
//  2. role có được phép trên cạnh đó không -> PermissionDenied
//  3. nếu cạnh yêu cầu tác giả thì actor có phải tác giả không -> PermissionDenied
//
// Bước 2 và 3 cùng được trả lời bởi permission model (Can), nên
// một state không hợp lệ luôn trả InvalidTransition bất kể role.
func Transition(from Status, action Action, role Role, isAuthor bool) (Status, error) {
	e, ok := transitions[edgeKey{from, action}]
	if !ok {
		return "", &InvalidTransitionError{Action: action, From: from}
	}
	if err := Authorize(role, action, from, isAuthor); err != nil {
		return "", err
	}
	return e.to, nil
}

// Create checks the create action and returns the initial state.
func Create(role Role) (Status, error) {
	if err := Authorize(role, ActionCreate, "", true); err != nil {
		return "", err
	}
	return InitialStatus, nil
}

// RequiresReason reports whether the edge needs a non-empty reason.
func RequiresReason(from Status, action Action) bool {
	return transitions[edgeKey{from, action}].reasonRequired
}

// SetsPublishedAt reports whether the edge stamps the first-publication time.
func SetsPublishedAt(from Status, action Action) bool {
	return transitions[edgeKey{from, action}].setsPublishedAt
}

// ChangesStatus reports whether the edge moves the article to another state.
func ChangesStatus(from Status, action Action) bool {
	e, ok := transitions[edgeKey{from, action}]
	return ok && e.to != from
}

// Next returns the actions with an outgoing edge from a state.
func Next(from Status) []Action {
	var out []Action
	for _, action := range AllActions() {
		if HasEdge(from, action) {
			out = append(out, action)
		}
	}
	return out
}
