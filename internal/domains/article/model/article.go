package model

import (
	"time"

	"github.com/google/uuid"

	"newsroom-backend/internal/domains/workflow"
)

// Article là đơn vị công việc biên tập - ánh xạ bảng news
type Article struct {
	ID uuid.UUID `json:"id"`

	// Content
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Image    string `json:"image"`

	// Ownership - không bao giờ chuyển giao
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`

	// Workflow
	Status          workflow.Status `json:"status"`
	StatusChangedAt time.Time       `json:"status_changed_at"`

	// Counters
	Views      int64 `json:"views"`
	IsFeatured bool  `json:"is_featured"`

	// Timestamps
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"` // lần publish đầu tiên, không bao giờ bị xoá
}

// IsPublished reports whether the article is currently public.
func (a *Article) IsPublished() bool {
	return a.Status == workflow.StatusPublished
}

// Clone returns a copy safe to hand out of a store.
func (a *Article) Clone() *Article {
	if a == nil {
		return nil
	}
	c := *a
	if a.PublishedAt != nil {
		t := *a.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}

// ContentFields là tập field nội dung mà editContent được phép thay đổi.
// Field nil = giữ nguyên.
type ContentFields struct {
	Title    *string
	Excerpt  *string
	Content  *string
	Category *string
	Image    *string
}

// IsEmpty reports whether no field is set.
func (f ContentFields) IsEmpty() bool {
	return f.Title == nil && f.Excerpt == nil && f.Content == nil && f.Category == nil && f.Image == nil
}

// Apply copies the set fields onto the article.
func (f ContentFields) Apply(a *Article) {
	if f.Title != nil {
		a.Title = *f.Title
	}
	if f.Excerpt != nil {
		a.Excerpt = *f.Excerpt
	}
	if f.Content != nil {
		a.Content = *f.Content
	}
	if f.Category != nil {
		a.Category = *f.Category
	}
	if f.Image != nil {
		a.Image = *f.Image
	}
}

// ReviewNote là một dòng lịch sử workflow (audit + lý do từ chối)
type ReviewNote struct {
	ID        uuid.UUID       `json:"id"`
	ArticleID uuid.UUID       `json:"article_id"`
	ActorID   uuid.UUID       `json:"actor_id"`
	ActorRole workflow.Role   `json:"actor_role"`
	Action    workflow.Action `json:"action"`
	From      workflow.Status `json:"from_status"`
	To        workflow.Status `json:"to_status"`
	Reason    *string         `json:"reason,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// StatusUpdate là lệnh CAS gửi xuống store:
// chỉ ghi khi status hiện tại == Expected.
type StatusUpdate struct {
	ID       uuid.UUID
	Expected workflow.Status
	Next     workflow.Status
	At       time.Time

	// SetPublishedAt: ghi published_at = At nếu đang NULL
	SetPublishedAt bool

	// Note được ghi cùng transaction với update
	Note *ReviewNote
}

// ListFilter dùng cho các truy vấn danh sách
type ListFilter struct {
	Statuses []workflow.Status
	AuthorID *uuid.UUID
	Category string
	Page     int
	Limit    int

	// OwnOrPublished: chỉ lấy bài của user này hoặc bài đã published (view của wartawan)
	OwnOrPublished *uuid.UUID
}

// Offset computes the SQL offset for the filter's page.
func (f ListFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// StatusCounts đếm số bài theo status (dashboard)
type StatusCounts map[workflow.Status]int
