package shared

import "time"

// =====================================================
// ASYNQ TASK TYPES & QUEUES
// =====================================================

const (
	TypeFlushViews           = "views:flush"
	TypeArticleStatusChanged = "article:status_changed"
	TypeProcessFailedLogin   = "auth:process_failed_login"

	QueueViews    = "views"
	QueueArticles = "articles"
	QueueAuth     = "auth"
	QueueDefault  = "default"
)

// ArticleStatusChangedPayload được enqueue sau mỗi transition thành công
type ArticleStatusChangedPayload struct {
	ArticleID string    `json:"articleId"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ActorID   string    `json:"actorId"`
	ActorRole string    `json:"actorRole"`
	At        time.Time `json:"at"`
}

// FailedLoginPayload - một lần đăng nhập sai mật khẩu
type FailedLoginPayload struct {
	UserID    string    `json:"userId"`
	IPAddress string    `json:"ipAddress"`
	Timestamp time.Time `json:"timestamp"`
}

// FlushViewsPayload - payload của scheduler, chỉ để trace
type FlushViewsPayload struct {
	TriggeredAt time.Time `json:"triggeredAt"`
}

// =====================================================
// CACHE KEYS
// =====================================================

const (
	CacheKeyPublicArticle = "news:article:%s"    // news:article:<id>
	CacheKeyPublicList    = "news:list:%s:%d:%d" // news:list:<category>:<page>:<limit>
	CacheKeyPublicListAll = "news:list:*"        // pattern dùng để invalidate
	CacheKeyUser          = "user:%s"            // user:<id>
	CacheKeyViewSeen      = "views:seen:%s:%s"   // views:seen:<article>:<session>
	CacheKeyViewPending   = "views:pending"      // hash article_id -> delta
	CacheKeyViewFlushing  = "views:flushing"     // hash đang được worker flush
	CacheKeyFailedLogin   = "failed_login:%s"    // failed_login:<user>
	CacheKeyAccountLocked = "account_locked:%s"  // account_locked:<user>
)

// UserBasicInfo - thông tin user tối thiểu (tránh import cycle với user domain)
type UserBasicInfo struct {
	ID       string
	Email    string
	FullName string
	Role     string
}
