package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/workzen-hq/collab-backend/internal/models"
)

// fakePageCache records which group keys were invalidated.
type fakePageCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (f *fakePageCache) GetFirstPage(ref models.GroupRef) ([]models.Message, bool) {
	return nil, false
}

func (f *fakePageCache) SetFirstPage(ref models.GroupRef, messages []models.Message) error {
	return nil
}

func (f *fakePageCache) Invalidate(ref models.GroupRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, ref.Key())
	return nil
}

func (f *fakePageCache) invalidations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.invalidated...)
}

func newMessageTestServices() (*MessageService, *MockMessageRepository, *MockRoomRepository, *MockChannelRepository) {
	roomRepo := NewMockRoomRepository()
	channelRepo := NewMockChannelRepository()
	messageRepo := NewMockMessageRepository()
	access := NewAccessService(roomRepo, channelRepo)
	return NewMessageService(messageRepo, access, &fakePageCache{}, nil), messageRepo, roomRepo, channelRepo
}

func seedRoom(roomRepo *MockRoomRepository, creatorID uint, participantIDs ...uint) *models.Room {
	room := &models.Room{Kind: models.RoomGroup, CreatorID: creatorID, Active: true}
	for _, id := range participantIDs {
		room.Participants = append(room.Participants, models.RoomParticipant{UserID: id})
	}
	roomRepo.Create(room)
	return room
}

func TestPostMessage(t *testing.T) {
	svc, _, roomRepo, channelRepo := newMessageTestServices()
	room := seedRoom(roomRepo, 1, 1, 2)

	channel := &models.Channel{Name: "general", CreatorID: 1, IsPublic: true, AllowMemberPosts: false, Active: true}
	channelRepo.Create(channel)
	channelRepo.AddMember(channel.ID, 1, models.ChannelRoleAdmin)
	channelRepo.AddMember(channel.ID, 2, models.ChannelRoleMember)

	tests := []struct {
		name      string
		senderID  uint
		input     PostMessageInput
		wantErr   error
		shouldErr bool
	}{
		{
			name:     "Post text message to room",
			senderID: 1,
			input:    PostMessageInput{RoomID: &room.ID, Content: "hello"},
		},
		{
			name:      "Reject post with no target",
			senderID:  1,
			input:     PostMessageInput{Content: "hello"},
			wantErr:   ErrInvalidInput,
			shouldErr: true,
		},
		{
			name:      "Reject post with both targets",
			senderID:  1,
			input:     PostMessageInput{RoomID: &room.ID, ChannelID: &channel.ID, Content: "hello"},
			wantErr:   ErrInvalidInput,
			shouldErr: true,
		},
		{
			name:      "Reject empty content",
			senderID:  1,
			input:     PostMessageInput{RoomID: &room.ID, Content: "   "},
			wantErr:   ErrInvalidInput,
			shouldErr: true,
		},
		{
			name:      "Reject file message without storage ref",
			senderID:  1,
			input:     PostMessageInput{RoomID: &room.ID, Kind: models.FileMessage, File: &models.FileMetadata{Name: "report.pdf"}},
			wantErr:   ErrInvalidInput,
			shouldErr: true,
		},
		{
			name:     "Accept file message with storage ref",
			senderID: 1,
			input: PostMessageInput{
				RoomID: &room.ID,
				Kind:   models.FileMessage,
				File:   &models.FileMetadata{Name: "report.pdf", Size: 1024, StorageRef: "files/abc"},
			},
		},
		{
			name:      "Reject post from non-participant",
			senderID:  99,
			input:     PostMessageInput{RoomID: &room.ID, Content: "hi"},
			wantErr:   ErrForbidden,
			shouldErr: true,
		},
		{
			name:     "Admin posts despite disabled member posts",
			senderID: 1,
			input:    PostMessageInput{ChannelID: &channel.ID, Content: "announcement"},
		},
		{
			name:      "Member blocked when member posts disabled",
			senderID:  2,
			input:     PostMessageInput{ChannelID: &channel.ID, Content: "hi"},
			wantErr:   ErrForbidden,
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.PostMessage(tt.senderID, tt.input)
			if (err != nil) != tt.shouldErr {
				t.Fatalf("PostMessage error = %v, wantErr %v", err, tt.shouldErr)
			}
			if tt.shouldErr {
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("PostMessage error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if result == nil {
				t.Fatal("PostMessage returned nil message")
			}
			if len(result.ReadBy()) != 1 || result.ReadBy()[0] != tt.senderID {
				t.Errorf("new message read_by = %v, want just the sender", result.ReadBy())
			}
			if result.ClientID == "" {
				t.Error("server did not assign a client_id")
			}
		})
	}
}

func TestPostMessageClientIDDedupe(t *testing.T) {
	svc, _, roomRepo, _ := newMessageTestServices()
	room := seedRoom(roomRepo, 1, 1, 2)

	input := PostMessageInput{RoomID: &room.ID, Content: "once", ClientID: "11111111-1111-1111-1111-111111111111"}
	first, err := svc.PostMessage(1, input)
	if err != nil {
		t.Fatalf("first post: %v", err)
	}
	second, err := svc.PostMessage(1, input)
	if err != nil {
		t.Fatalf("retried post: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("retried post created a new message: first=%d second=%d", first.ID, second.ID)
	}

	// A different sender reusing the same client_id gets its own message.
	other, err := svc.PostMessage(2, input)
	if err != nil {
		t.Fatalf("other sender post: %v", err)
	}
	if other.ID == first.ID {
		t.Error("client_id dedupe must be scoped per sender")
	}
}

func TestEditMessage(t *testing.T) {
	svc, _, roomRepo, _ := newMessageTestServices()
	room := seedRoom(roomRepo, 1, 1, 2)

	posted, err := svc.PostMessage(1, PostMessageInput{RoomID: &room.ID, Content: "draft"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	if _, err := svc.EditMessage(posted.ID, 2, "hijacked"); !errors.Is(err, ErrForbidden) {
		t.Errorf("edit by non-sender error = %v, want ErrForbidden", err)
	}

	edited, err := svc.EditMessage(posted.ID, 1, "final")
	if err != nil {
		t.Fatalf("edit by sender: %v", err)
	}
	if edited.Content != "final" || !edited.IsEdited {
		t.Errorf("edited message = %q edited=%v, want final/true", edited.Content, edited.IsEdited)
	}

	if _, err := svc.EditMessage(posted.ID, 1, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("edit to empty content error = %v, want ErrInvalidInput", err)
	}

	if err := svc.DeleteMessage(posted.ID, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.EditMessage(posted.ID, 1, "zombie"); !errors.Is(err, ErrNotFound) {
		t.Errorf("edit of deleted message error = %v, want ErrNotFound", err)
	}
}

func TestDeleteMessage(t *testing.T) {
	svc, _, roomRepo, _ := newMessageTestServices()
	room := seedRoom(roomRepo, 1, 1, 2, 3)
	ref := models.RoomRef(room.ID)

	posted, err := svc.PostMessage(2, PostMessageInput{RoomID: &room.ID, Content: "to delete"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	if err := svc.DeleteMessage(posted.ID, 3); !errors.Is(err, ErrForbidden) {
		t.Errorf("delete by bystander error = %v, want ErrForbidden", err)
	}

	// Room creator moderates even without authorship.
	if err := svc.DeleteMessage(posted.ID, 1); err != nil {
		t.Fatalf("delete by moderator: %v", err)
	}

	listed, err := svc.ListMessages(ref, 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, msg := range listed {
		if msg.ID == posted.ID {
			t.Error("deleted message still appears in listing")
		}
	}

	// Direct lookup still works for audit.
	fetched, err := svc.GetMessage(posted.ID)
	if err != nil {
		t.Fatalf("get deleted message: %v", err)
	}
	if !fetched.IsDeleted {
		t.Error("fetched message not flagged deleted")
	}
}

func TestMarkReadIdempotent(t *testing.T) {
	svc, _, roomRepo, _ := newMessageTestServices()
	room := seedRoom(roomRepo, 1, 1, 2)

	posted, err := svc.PostMessage(1, PostMessageInput{RoomID: &room.ID, Content: "read me"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.MarkRead(posted.ID, 2); err != nil {
			t.Fatalf("mark read attempt %d: %v", i, err)
		}
	}

	fetched, _ := svc.GetMessage(posted.ID)
	if got := len(fetched.ReadBy()); got != 2 {
		t.Errorf("read_by size = %d, want 2 (sender plus one reader)", got)
	}

	if err := svc.MarkRead(9999, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("mark read on missing message error = %v, want ErrNotFound", err)
	}
}

func TestReactions(t *testing.T) {
	svc, _, roomRepo, channelRepo := newMessageTestServices()
	room := seedRoom(roomRepo, 1, 1, 2)

	posted, err := svc.PostMessage(1, PostMessageInput{RoomID: &room.ID, Content: "react"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	if err := svc.AddReaction(posted.ID, 2, "bad emoji"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("whitespace emoji error = %v, want ErrInvalidInput", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.AddReaction(posted.ID, 2, "👍"); err != nil {
			t.Fatalf("add reaction attempt %d: %v", i, err)
		}
	}
	fetched, _ := svc.GetMessage(posted.ID)
	if got := len(fetched.ReactionSets()["👍"]); got != 1 {
		t.Errorf("reaction set size = %d, want 1 after repeated adds", got)
	}

	if err := svc.RemoveReaction(posted.ID, 2, "👍"); err != nil {
		t.Fatalf("remove reaction: %v", err)
	}
	fetched, _ = svc.GetMessage(posted.ID)
	if len(fetched.Reactions) != 0 {
		t.Errorf("reactions = %v, want empty after removal", fetched.Reactions)
	}
	// Removing an absent reaction stays a no-op.
	if err := svc.RemoveReaction(posted.ID, 2, "👍"); err != nil {
		t.Errorf("remove of absent reaction: %v", err)
	}

	// Channel with reactions disabled rejects the add.
	channel := &models.Channel{Name: "quiet", CreatorID: 1, IsPublic: true, AllowMemberPosts: true, AllowReactions: false, Active: true}
	channelRepo.Create(channel)
	channelRepo.AddMember(channel.ID, 1, models.ChannelRoleAdmin)
	chMsg, err := svc.PostMessage(1, PostMessageInput{ChannelID: &channel.ID, Content: "no reacting"})
	if err != nil {
		t.Fatalf("channel post: %v", err)
	}
	if err := svc.AddReaction(chMsg.ID, 1, "🎉"); !errors.Is(err, ErrForbidden) {
		t.Errorf("reaction on disabled channel error = %v, want ErrForbidden", err)
	}
}

func TestReadAndReactionWritesInvalidateCache(t *testing.T) {
	roomRepo := NewMockRoomRepository()
	channelRepo := NewMockChannelRepository()
	messageRepo := NewMockMessageRepository()
	pageCache := &fakePageCache{}
	svc := NewMessageService(messageRepo, NewAccessService(roomRepo, channelRepo), pageCache, nil)
	room := seedRoom(roomRepo, 1, 1, 2)

	posted, err := svc.PostMessage(1, PostMessageInput{RoomID: &room.ID, Content: "cached page"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	wantKey := posted.GroupRef().Key()

	// Reads and reactions render on the newest page, so each write must
	// drop the cached copy.
	steps := []struct {
		name string
		run  func() error
	}{
		{"mark read", func() error { return svc.MarkRead(posted.ID, 2) }},
		{"add reaction", func() error { return svc.AddReaction(posted.ID, 2, "👍") }},
		{"remove reaction", func() error { return svc.RemoveReaction(posted.ID, 2, "👍") }},
	}

	before := len(pageCache.invalidations())
	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		got := pageCache.invalidations()
		if len(got) != before+1 {
			t.Fatalf("%s left %d invalidations, want %d", step.name, len(got), before+1)
		}
		if got[len(got)-1] != wantKey {
			t.Errorf("%s invalidated %q, want %q", step.name, got[len(got)-1], wantKey)
		}
		before = len(got)
	}
}

func TestConcurrentReactionsConverge(t *testing.T) {
	svc, _, roomRepo, _ := newMessageTestServices()
	room := seedRoom(roomRepo, 1, 1, 2)

	posted, err := svc.PostMessage(1, PostMessageInput{RoomID: &room.ID, Content: "pile on"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.AddReaction(posted.ID, 2, "🔥"); err != nil {
				t.Errorf("concurrent add reaction: %v", err)
			}
		}()
	}
	wg.Wait()

	fetched, _ := svc.GetMessage(posted.ID)
	if got := len(fetched.ReactionSets()["🔥"]); got != 1 {
		t.Errorf("reaction set size = %d after concurrent adds, want 1", got)
	}
}

func TestSearchMessages(t *testing.T) {
	svc, _, roomRepo, _ := newMessageTestServices()
	room := seedRoom(roomRepo, 1, 1, 2)
	ref := models.RoomRef(room.ID)

	kept, err := svc.PostMessage(1, PostMessageInput{RoomID: &room.ID, Content: "Quarterly Report draft"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	deleted, err := svc.PostMessage(1, PostMessageInput{RoomID: &room.ID, Content: "quarterly numbers, old"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if err := svc.DeleteMessage(deleted.ID, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	results, err := svc.SearchMessages(ref, "quarterly", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != kept.ID {
		t.Errorf("search results = %v, want only the live match", results)
	}

	if _, err := svc.SearchMessages(ref, "   ", 10); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank query error = %v, want ErrInvalidInput", err)
	}
}

func TestListMessagesOrder(t *testing.T) {
	svc, messageRepo, roomRepo, _ := newMessageTestServices()
	room := seedRoom(roomRepo, 1, 1)
	ref := models.RoomRef(room.ID)

	for i := 0; i < 5; i++ {
		roomID := room.ID
		messageRepo.Create(&models.Message{
			ClientID: string(rune('a' + i)),
			SenderID: 1,
			RoomID:   &roomID,
			Content:  "m",
		})
	}

	listed, err := svc.ListMessages(ref, 3, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("page size = %d, want 3", len(listed))
	}
	for i := 1; i < len(listed); i++ {
		if listed[i].ID > listed[i-1].ID {
			t.Errorf("listing not newest-first: %d before %d", listed[i-1].ID, listed[i].ID)
		}
	}
}
