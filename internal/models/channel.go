package models

import "time"

type ChannelRole string

const (
	ChannelRoleAdmin  ChannelRole = "admin"
	ChannelRoleMember ChannelRole = "member"
)

type Channel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Kind        string `gorm:"type:varchar(20);default:'standard'" json:"kind"`
	Description string `gorm:"size:255" json:"description"`
	CreatorID   uint   `gorm:"not null" json:"creator_id"`
	IsPublic    bool   `gorm:"default:false;index" json:"is_public"`

	// Posting/interaction settings. Admins can always post regardless of
	// AllowMemberPosts.
	AllowMemberPosts bool `gorm:"default:true" json:"allow_member_posts"`
	AllowReactions   bool `gorm:"default:true" json:"allow_reactions"`
	AllowReplies     bool `gorm:"default:true" json:"allow_replies"`

	Active bool `gorm:"default:true;index" json:"active"`

	Members []ChannelMember `gorm:"foreignKey:ChannelID" json:"members,omitempty"`
}

type ChannelMember struct {
	ChannelID uint        `gorm:"primaryKey" json:"channel_id"`
	UserID    uint        `gorm:"primaryKey" json:"user_id"`
	Role      ChannelRole `gorm:"type:varchar(20);default:'member'" json:"role"`
	JoinedAt  time.Time   `gorm:"autoCreateTime" json:"joined_at"`
}

func (c *Channel) MemberIDs() []uint {
	ids := make([]uint, 0, len(c.Members))
	for _, m := range c.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

func (c *Channel) AdminIDs() []uint {
	var ids []uint
	for _, m := range c.Members {
		if m.Role == ChannelRoleAdmin {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

func (c *Channel) RoleOf(userID uint) (ChannelRole, bool) {
	for _, m := range c.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

type ChannelSettings struct {
	AllowMemberPosts bool `json:"allow_member_posts"`
	AllowReactions   bool `json:"allow_reactions"`
	AllowReplies     bool `json:"allow_replies"`
}

type ChannelResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	CreatorID   uint            `json:"creator_id"`
	IsPublic    bool            `json:"is_public"`
	Settings    ChannelSettings `json:"settings"`
	AdminIDs    []uint          `json:"admin_ids"`
	MemberIDs   []uint          `json:"member_ids"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (c *Channel) ToResponse() ChannelResponse {
	return ChannelResponse{
		ID:          c.ID,
		Name:        c.Name,
		Kind:        c.Kind,
		Description: c.Description,
		CreatorID:   c.CreatorID,
		IsPublic:    c.IsPublic,
		Settings: ChannelSettings{
			AllowMemberPosts: c.AllowMemberPosts,
			AllowReactions:   c.AllowReactions,
			AllowReplies:     c.AllowReplies,
		},
		AdminIDs:  c.AdminIDs(),
		MemberIDs: c.MemberIDs(),
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
