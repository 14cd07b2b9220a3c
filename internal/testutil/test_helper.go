package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/workzen-hq/collab-backend/internal/models"
	"gorm.io/gorm"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestRoom creates a group room with the given participants.
func (h *TestHelper) CreateTestRoom(id uint, kind models.RoomKind, participantIDs ...uint) *models.Room {
	if id == 0 {
		id = 1
	}
	if kind == "" {
		kind = models.RoomGroup
	}
	creatorID := uint(1)
	if len(participantIDs) > 0 {
		creatorID = participantIDs[0]
	}

	room := &models.Room{
		ID:        id,
		Name:      "Test Room",
		Kind:      kind,
		CreatorID: creatorID,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	for _, uid := range participantIDs {
		room.Participants = append(room.Participants, models.RoomParticipant{
			RoomID:   id,
			UserID:   uid,
			JoinedAt: time.Now(),
		})
	}
	if kind == models.RoomDirect && len(participantIDs) == 2 {
		key := models.DirectRoomKey(participantIDs[0], participantIDs[1])
		room.DirectKey = &key
	}
	return room
}

// CreateTestChannel creates a channel with the first member as creator/admin.
func (h *TestHelper) CreateTestChannel(id uint, isPublic bool, memberIDs ...uint) *models.Channel {
	if id == 0 {
		id = 1
	}
	creatorID := uint(1)
	if len(memberIDs) > 0 {
		creatorID = memberIDs[0]
	}

	ch := &models.Channel{
		ID:               id,
		Name:             "Test Channel",
		CreatorID:        creatorID,
		IsPublic:         isPublic,
		AllowMemberPosts: true,
		AllowReactions:   true,
		AllowReplies:     true,
		Active:           true,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	for i, uid := range memberIDs {
		role := models.ChannelRoleMember
		if i == 0 {
			role = models.ChannelRoleAdmin
		}
		ch.Members = append(ch.Members, models.ChannelMember{
			ChannelID: id,
			UserID:    uid,
			Role:      role,
			JoinedAt:  time.Now(),
		})
	}
	return ch
}

// CreateTestMessage creates a room message with default values.
func (h *TestHelper) CreateTestMessage(id uint, senderID uint, content string) *models.Message {
	if id == 0 {
		id = 1
	}
	if senderID == 0 {
		senderID = 1
	}
	if content == "" {
		content = "Test message"
	}

	roomID := uint(1)
	return &models.Message{
		ID:        id,
		ClientID:  "11111111-1111-1111-1111-111111111111",
		SenderID:  senderID,
		RoomID:    &roomID,
		Content:   content,
		Kind:      models.TextMessage,
		Reads:     []models.MessageRead{{MessageID: id, UserID: senderID, ReadAt: time.Now()}},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// SetupTestEnv sets up required environment variables for testing
func (h *TestHelper) SetupTestEnv() {
	os.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	os.Setenv("DATABASE_URL", "")
	os.Setenv("MAX_MESSAGE_LENGTH", "")
}

// TeardownTestEnv cleans up environment variables after testing
func (h *TestHelper) TeardownTestEnv() {
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("MAX_MESSAGE_LENGTH")
}

// AssertError checks if an error occurred when it should (or shouldn't)
func (h *TestHelper) AssertError(err error, shouldErr bool, testName string) {
	if (err != nil) != shouldErr {
		if shouldErr {
			h.t.Errorf("%s: expected error but got nil", testName)
		} else {
			h.t.Errorf("%s: unexpected error: %v", testName, err)
		}
	}
}

// AssertEqual checks if two values are equal
func (h *TestHelper) AssertEqual(got, want interface{}, testName string) {
	if got != want {
		h.t.Errorf("%s: got %v, want %v", testName, got, want)
	}
}

// AssertNotNil checks if a value is not nil
func (h *TestHelper) AssertNotNil(value interface{}, testName string) {
	if value == nil {
		h.t.Errorf("%s: expected non-nil value", testName)
	}
}

// GetRecordNotFoundError returns the not-found error repositories surface.
func GetRecordNotFoundError() error {
	return gorm.ErrRecordNotFound
}
