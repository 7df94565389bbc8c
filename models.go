package supportdesk

import (
	"time"

	"github.com/uptrace/bun"
)

// MessageRole is the author of a chat turn
type MessageRole = string

const (
	// RoleUser is a turn authored by the end user
	RoleUser MessageRole = "user"
	// RoleAssistant is a turn authored by the agent runtime
	RoleAssistant MessageRole = "assistant"
)

// User is the user model. IDs are issued by the external identity provider
// and are opaque strings, not UUIDs.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            string     `bun:"id,pk" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	EmailVerified bool       `bun:"email_verified" json:"email_verified,omitempty"`
	Image         string     `bun:"image" json:"image,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`

	Sessions []*Session `bun:"rel:has-many,join:id=user_id" json:"sessions,omitempty"`
}

// Session is a server issued session record. The opaque token is unique and
// identity can only be resolved through a store lookup. A session is active
// while its expiry is strictly in the future; a user may own many rows.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:ses"`
	ID            string     `bun:"id,pk" json:"id,omitempty"`
	UserID        string     `bun:"user_id,notnull" json:"user_id,omitempty"`
	Token         string     `bun:"token,notnull,unique" json:"-"`
	ExpiresAt     time.Time  `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	IPAddress     string     `bun:"ip_address" json:"ip_address,omitempty"`
	UserAgent     string     `bun:"user_agent" json:"user_agent,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}

// Active reports whether the session expiry is strictly after now.
func (s *Session) Active(now time.Time) bool {
	if s == nil {
		return false
	}
	return s.ExpiresAt.After(now)
}

// ChatMessage is one persisted turn of a user's conversation
type ChatMessage struct {
	bun.BaseModel `bun:"table:chat_messages,alias:msg"`
	ID            string     `bun:"id,pk" json:"id,omitempty"`
	UserID        string     `bun:"user_id,notnull" json:"user_id,omitempty"`
	Role          string     `bun:"role,notnull" json:"role,omitempty"`
	Content       string     `bun:"content,notnull" json:"content,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Task is a todo item owned by a user. Mutations are exposed to the agent
// runtime through the tool server and always filter by owner.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:tsk"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id,omitempty"`
	UserID        string     `bun:"user_id,notnull" json:"user_id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Completed     bool       `bun:"completed" json:"completed"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
