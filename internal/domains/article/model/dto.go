package model

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"newsroom-backend/internal/domains/workflow"
)

// =====================================================
// REQUEST DTOs
// =====================================================

// CreateArticleRequest - createDraft payload
type CreateArticleRequest struct {
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

func (r CreateArticleRequest) Validate() error {
	// Fields() lưu title đã trim, nên validate đúng giá trị đó
	r.Title = strings.TrimSpace(r.Title)
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(MinTitleLength, MaxTitleLength),
		),
		validation.Field(&r.Excerpt, validation.Length(0, MaxExcerptLength)),
		validation.Field(&r.Category,
			validation.Required.Error("category is required"),
			validation.By(knownCategory),
		),
		validation.Field(&r.Image, is.URL),
	)
}

// Fields converts the create payload into content fields.
func (r CreateArticleRequest) Fields() ContentFields {
	category, _ := NormalizeCategory(r.Category)
	title := strings.TrimSpace(r.Title)
	return ContentFields{
		Title:    &title,
		Excerpt:  &r.Excerpt,
		Content:  &r.Content,
		Category: &category,
		Image:    &r.Image,
	}
}

// UpdateArticleRequest - edit payload, field nil = giữ nguyên
type UpdateArticleRequest struct {
	Title          *string `json:"title"`
	Excerpt        *string `json:"excerpt"`
	Content        *string `json:"content"`
	Category       *string `json:"category"`
	Image          *string `json:"image"`
	ExpectedStatus *string `json:"expected_status"`
}

func (r UpdateArticleRequest) Validate() error {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		r.Title = &title
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.NilOrNotEmpty.Error("title cannot be empty"),
			validation.Length(MinTitleLength, MaxTitleLength),
		),
		validation.Field(&r.Excerpt, validation.Length(0, MaxExcerptLength)),
		validation.Field(&r.Category, validation.NilOrNotEmpty, validation.By(knownCategory)),
		validation.Field(&r.Image, is.URL),
		validation.Field(&r.ExpectedStatus, validation.By(knownStatus)),
	)
}

// Fields converts the update payload into content fields.
func (r UpdateArticleRequest) Fields() ContentFields {
	f := ContentFields{
		Excerpt: r.Excerpt,
		Content: r.Content,
		Image:   r.Image,
	}
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		f.Title = &title
	}
	if r.Category != nil {
		category, _ := NormalizeCategory(*r.Category)
		f.Category = &category
	}
	return f
}

// TransitionRequest - body cho submit/approve/publish
// ExpectedStatus: nếu có, dùng làm điều kiện CAS thay cho status đọc được
type TransitionRequest struct {
	ExpectedStatus *string `json:"expected_status"`
}

func (r TransitionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ExpectedStatus, validation.By(knownStatus)),
	)
}

// RejectRequest - body cho reject
type RejectRequest struct {
	Reason         string  `json:"reason"`
	ExpectedStatus *string `json:"expected_status"`
}

func (r RejectRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	return validation.ValidateStruct(&r,
		validation.Field(&r.Reason,
			validation.Required.Error("reason is required"),
			validation.Length(1, MaxReasonLength),
		),
		validation.Field(&r.ExpectedStatus, validation.By(knownStatus)),
	)
}

// ListArticlesRequest - admin listing
type ListArticlesRequest struct {
	Status   string `form:"status"`
	Category string `form:"category"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

func (r *ListArticlesRequest) Validate() error {
	normalizePage(&r.Page, &r.Limit)
	return validation.ValidateStruct(r,
		validation.Field(&r.Status, validation.By(knownStatus)),
		validation.Field(&r.Category, validation.By(knownCategory)),
	)
}

// PublicListRequest - public listing (published only)
type PublicListRequest struct {
	Category string `form:"category"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

func (r *PublicListRequest) Validate() error {
	normalizePage(&r.Page, &r.Limit)
	return validation.ValidateStruct(r,
		validation.Field(&r.Category, validation.By(knownCategory)),
	)
}

// ParseExpected converts an optional expected-status string.
func ParseExpected(s *string) (*workflow.Status, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	st, err := workflow.ParseStatus(*s)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func normalizePage(page, limit *int) {
	if *page < 1 {
		*page = 1
	}
	if *limit < 1 || *limit > MaxPageSize {
		*limit = DefaultPageSize
	}
}

func knownCategory(value interface{}) error {
	s, ok := stringValue(value)
	if !ok || s == "" {
		return nil
	}
	if _, ok := NormalizeCategory(s); !ok {
		return errors.New("unknown category")
	}
	return nil
}

func knownStatus(value interface{}) error {
	s, ok := stringValue(value)
	if !ok || s == "" {
		return nil
	}
	if _, err := workflow.ParseStatus(s); err != nil {
		return errors.New("unknown status")
	}
	return nil
}

func stringValue(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}

// =====================================================
// RESPONSE DTOs
// =====================================================

// ArticleResponse - chi tiết bài viết cho admin
type ArticleResponse struct {
	*Article

	// Actions actor hiện tại được phép thực hiện (UI chỉ hiện các nút này)
	AllowedActions []workflow.Action `json:"allowed_actions"`

	// Lý do từ chối gần nhất, hiển thị cho tác giả
	LastRejection *RejectionInfo `json:"last_rejection,omitempty"`
}

// RejectionInfo tóm tắt lần từ chối gần nhất
type RejectionInfo struct {
	Reason     string          `json:"reason"`
	ByRole     workflow.Role   `json:"by_role"`
	FromStatus workflow.Status `json:"from_status"`
	At         time.Time       `json:"at"`
}

// PublicArticleResponse - bài viết cho độc giả
type PublicArticleResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	Category    string     `json:"category"`
	Image       string     `json:"image"`
	AuthorName  string     `json:"author_name"`
	Views       int64      `json:"views"`
	IsFeatured  bool       `json:"is_featured"`
	PublishedAt *time.Time `json:"published_at"`
}

// ToPublic strips workflow fields from an article.
func ToPublic(a *Article) PublicArticleResponse {
	return PublicArticleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Excerpt:     a.Excerpt,
		Content:     a.Content,
		Category:    a.Category,
		Image:       a.Image,
		AuthorName:  a.AuthorName,
		Views:       a.Views,
		IsFeatured:  a.IsFeatured,
		PublishedAt: a.PublishedAt,
	}
}

// ListArticlesResponse - danh sách admin
type ListArticlesResponse struct {
	Articles   []*Article     `json:"articles"`
	Pagination PaginationMeta `json:"pagination"`
}

// PublicListResponse - danh sách cho độc giả
type PublicListResponse struct {
	Articles   []PublicArticleResponse `json:"articles"`
	Pagination PaginationMeta          `json:"pagination"`
}

// PaginationMeta pagination metadata
type PaginationMeta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewPaginationMeta fills the derived pagination fields.
func NewPaginationMeta(page, limit, total int) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// DashboardStats - thống kê trang tổng quan admin
type DashboardStats struct {
	Role          workflow.Role `json:"role"`
	Published     int           `json:"published"`
	PendingEditor int           `json:"pending_editor"`
	PendingAdmin  int           `json:"pending_admin"`
	Draft         int           `json:"draft"`
	MyDrafts      int           `json:"my_drafts"`
	MyPublished   int           `json:"my_published"`
	ReviewQueue   int           `json:"review_queue"`
}
