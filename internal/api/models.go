package api

// Timestamps are kept as the ISO strings the server emits; the client never
// does arithmetic on them.

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type FileInfo struct {
	FileID      string `json:"file_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type Post struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	TechStack     []string   `json:"tech_stack"`
	GithubLink    string     `json:"github_link"`
	Files         []FileInfo `json:"files"`
	UserID        string     `json:"user_id"`
	Username      string     `json:"username"`
	LikesCount    int        `json:"likes_count"`
	CommentsCount int        `json:"comments_count"`
	CreatedAt     string     `json:"created_at"`
	UpdatedAt     string     `json:"updated_at,omitempty"`

	// Populated only on the single-post detail endpoint.
	Likes    []Like    `json:"likes,omitempty"`
	Comments []Comment `json:"comments,omitempty"`
}

type Like struct {
	ID        string `json:"id"`
	User      User   `json:"user"`
	PostID    string `json:"post_id,omitempty"`
	CommentID string `json:"comment_id,omitempty"`
	ReplyID   string `json:"reply_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

type Comment struct {
	ID           string  `json:"id"`
	Content      string  `json:"content"`
	User         User    `json:"user"`
	PostID       string  `json:"post_id"`
	Replies      []Reply `json:"replies"`
	RepliesCount int     `json:"replies_count"`
	LikesCount   int     `json:"likes_count"`
	Liked        bool    `json:"liked"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type Reply struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	User       User   `json:"user"`
	CommentID  string `json:"comment_id"`
	PostID     string `json:"post_id"`
	LikesCount int    `json:"likes_count"`
	Liked      bool   `json:"liked"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type FeedFilters struct {
	TechStack string `json:"tech_stack"`
	Search    string `json:"search"`
	Sort      string `json:"sort"`
}

type FeedPage struct {
	Posts      []Post      `json:"posts"`
	Pagination Pagination  `json:"pagination"`
	Filters    FeedFilters `json:"filters"`
}

type Profile struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	PostsCount    int    `json:"posts_count"`
	LikesReceived int    `json:"likes_received"`
	CreatedAt     string `json:"created_at"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Message    string `json:"message,omitempty"`
	Liked      bool   `json:"liked"`
	LikesCount int    `json:"likes_count"`
}

type Notification struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Message        string `json:"message"`
	Actor          *User  `json:"actor"`
	PostID         string `json:"post_id"`
	PostTitle      string `json:"post_title"`
	CommentID      string `json:"comment_id"`
	ReplyID        string `json:"reply_id"`
	CommentContent string `json:"comment_content"`
	Read           bool   `json:"read"`
	CreatedAt      string `json:"created_at"`
}

// NotificationPage carries the list plus the totals the server reports in
// response headers.
type NotificationPage struct {
	Notifications []Notification
	Total         int
	Page          int
	Limit         int
}
