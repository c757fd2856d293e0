package model

import (
	"sort"

	"github.com/google/uuid"

	"newsroom-backend/internal/domains/workflow"
)

// ReviewQueue trả về các bài mà role cần xử lý tiếp theo:
// editor -> pending_editor, redaktur -> pending_admin, còn lại -> rỗng.
// Hàm thuần: không sửa slice đầu vào, kết quả sắp xếp bài mới gửi lên trước.
func ReviewQueue(role workflow.Role, articles []*Article) []*Article {
	target, ok := workflow.ReviewTarget(role)
	if !ok {
		return []*Article{}
	}

	out := make([]*Article, 0, len(articles))
	for _, a := range articles {
		if a != nil && a.Status == target {
			out = append(out, a)
		}
	}
	SortBySubmission(out)
	return out
}

// AuthoredBy filters the articles written by authorID, newest first.
func AuthoredBy(authorID uuid.UUID, articles []*Article) []*Article {
	out := make([]*Article, 0, len(articles))
	for _, a := range articles {
		if a != nil && a.AuthorID == authorID {
			out = append(out, a)
		}
	}
	SortByCreated(out)
	return out
}

// VisibleTo filters the articles the actor may view.
func VisibleTo(actor workflow.Actor, articles []*Article) []*Article {
	out := make([]*Article, 0, len(articles))
	for _, a := range articles {
		if a != nil && workflow.Can(actor.Role, workflow.ActionViewAny, a.Status, actor.Owns(a.AuthorID)) {
			out = append(out, a)
		}
	}
	return out
}

// SortBySubmission: status_changed_at DESC, created_at DESC, id
func SortBySubmission(articles []*Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		if !a.StatusChangedAt.Equal(b.StatusChangedAt) {
			return a.StatusChangedAt.After(b.StatusChangedAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

// SortByCreated: created_at DESC, id
func SortByCreated(articles []*Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

// SortByPublished: published_at DESC (nil cuối), created_at DESC
func SortByPublished(articles []*Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		switch {
		case a.PublishedAt == nil && b.PublishedAt != nil:
			return false
		case a.PublishedAt != nil && b.PublishedAt == nil:
			return true
		case a.PublishedAt != nil && b.PublishedAt != nil && !a.PublishedAt.Equal(*b.PublishedAt):
			return a.PublishedAt.After(*b.PublishedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

// LatestRejection picks the newest reject note, notes in any order.
func LatestRejection(notes []*ReviewNote) *RejectionInfo {
	var latest *ReviewNote
	for _, n := range notes {
		if n == nil || n.Action != workflow.ActionReject || n.Reason == nil {
			continue
		}
		if latest == nil || n.CreatedAt.After(latest.CreatedAt) {
			latest = n
		}
	}
	if latest == nil {
		return nil
	}
	return &RejectionInfo{
		Reason:     *latest.Reason,
		ByRole:     latest.ActorRole,
		FromStatus: latest.From,
		At:         latest.CreatedAt,
	}
}
