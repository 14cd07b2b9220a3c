package models

import "time"

type MessageKind string

const (
	TextMessage MessageKind = "text"
	FileMessage MessageKind = "file"
)

// FileMetadata describes an uploaded attachment. The blob itself lives in
// external storage; the core only records the reference.
type FileMetadata struct {
	Name        string `gorm:"column:file_name;size:255" json:"name,omitempty"`
	Size        int64  `gorm:"column:file_size" json:"size,omitempty"`
	ContentType string `gorm:"column:file_content_type;size:100" json:"content_type,omitempty"`
	StorageRef  string `gorm:"column:file_storage_ref;size:512" json:"storage_ref,omitempty"`
}

type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ClientID is a client-supplied UUID. The unique index with SenderID
	// dedupes retried posts under at-least-once delivery.
	ClientID string `gorm:"type:varchar(36);uniqueIndex:idx_client_sender;not null" json:"client_id"`

	SenderID uint `gorm:"not null;uniqueIndex:idx_client_sender;index" json:"sender_id"`

	// Exactly one of RoomID / ChannelID is set.
	RoomID    *uint `gorm:"index" json:"room_id,omitempty"`
	ChannelID *uint `gorm:"index" json:"channel_id,omitempty"`

	ParentID *uint `gorm:"index" json:"parent_id,omitempty"`

	Content string       `gorm:"type:text;not null" json:"content"`
	Kind    MessageKind  `gorm:"type:varchar(20);default:'text'" json:"kind"`
	File    FileMetadata `gorm:"embedded" json:"file_metadata,omitempty"`

	IsEdited bool `gorm:"default:false" json:"is_edited"`

	// Soft delete is an explicit flag rather than gorm.DeletedAt: deleted
	// messages are excluded from listings but must stay retrievable by id.
	IsDeleted bool `gorm:"default:false;index" json:"is_deleted"`

	Reads     []MessageRead     `gorm:"foreignKey:MessageID" json:"-"`
	Reactions []MessageReaction `gorm:"foreignKey:MessageID" json:"-"`
}

// MessageRead is one member of a message's read_by set. The composite
// primary key makes inserting an existing member a no-op upstream.
type MessageRead struct {
	MessageID uint      `gorm:"primaryKey" json:"message_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	ReadAt    time.Time `gorm:"autoCreateTime" json:"read_at"`
}

type MessageReaction struct {
	MessageID uint      `gorm:"primaryKey" json:"message_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	Emoji     string    `gorm:"primaryKey;size:32" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupRef resolves the group this message belongs to.
func (m *Message) GroupRef() GroupRef {
	if m.ChannelID != nil {
		return ChannelRef(*m.ChannelID)
	}
	if m.RoomID != nil {
		return RoomRef(*m.RoomID)
	}
	return GroupRef{}
}

func (m *Message) ReadBy() []uint {
	ids := make([]uint, 0, len(m.Reads))
	for _, r := range m.Reads {
		ids = append(ids, r.UserID)
	}
	return ids
}

// ReactionSets groups reactions by emoji into user-id sets.
func (m *Message) ReactionSets() map[string][]uint {
	sets := make(map[string][]uint)
	for _, r := range m.Reactions {
		sets[r.Emoji] = append(sets[r.Emoji], r.UserID)
	}
	return sets
}

type MessageResponse struct {
	ID           uint              `json:"id"`
	ClientID     string            `json:"client_id"`
	SenderID     uint              `json:"sender_id"`
	RoomID       *uint             `json:"room_id,omitempty"`
	ChannelID    *uint             `json:"channel_id,omitempty"`
	ParentID     *uint             `json:"parent_id,omitempty"`
	Content      string            `json:"content"`
	Kind         MessageKind       `json:"kind"`
	FileMetadata *FileMetadata     `json:"file_metadata,omitempty"`
	IsEdited     bool              `json:"is_edited"`
	IsDeleted    bool              `json:"is_deleted"`
	ReadBy       []uint            `json:"read_by"`
	Reactions    map[string][]uint `json:"reactions"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (m *Message) ToResponse() MessageResponse {
	resp := MessageResponse{
		ID:        m.ID,
		ClientID:  m.ClientID,
		SenderID:  m.SenderID,
		RoomID:    m.RoomID,
		ChannelID: m.ChannelID,
		ParentID:  m.ParentID,
		Content:   m.Content,
		Kind:      m.Kind,
		IsEdited:  m.IsEdited,
		IsDeleted: m.IsDeleted,
		ReadBy:    m.ReadBy(),
		Reactions: m.ReactionSets(),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Kind == FileMessage {
		file := m.File
		resp.FileMetadata = &file
	}
	return resp
}
