package service

import (
	"errors"
	"strings"
	"sync"

	"github.com/workzen-hq/collab-backend/internal/models"
	"gorm.io/gorm"
)

// MockRoomRepository is an in-memory RoomRepositoryInterface for testing.
type MockRoomRepository struct {
	rooms  map[uint]*models.Room
	nextID uint

	// createErr makes the next Create fail; racedRoom, when set, is stored
	// before the failure to simulate a concurrent writer winning the unique
	// index on direct_key.
	createErr error
	racedRoom *models.Room
}

func NewMockRoomRepository() *MockRoomRepository {
	return &MockRoomRepository{
		rooms:  make(map[uint]*models.Room),
		nextID: 1,
	}
}

func (m *MockRoomRepository) Create(room *models.Room) error {
	if m.createErr != nil {
		err := m.createErr
		m.createErr = nil
		if m.racedRoom != nil {
			m.rooms[m.racedRoom.ID] = m.racedRoom
			m.racedRoom = nil
		}
		return err
	}
	// The unique index on direct_key covers inactive rows too.
	if room.DirectKey != nil {
		for _, existing := range m.rooms {
			if existing.DirectKey != nil && *existing.DirectKey == *room.DirectKey {
				return errors.New("duplicate key value violates unique constraint \"idx_rooms_direct_key\" (SQLSTATE 23505)")
			}
		}
	}
	if room.ID == 0 {
		room.ID = m.nextID
		m.nextID++
	}
	for i := range room.Participants {
		room.Participants[i].RoomID = room.ID
	}
	m.rooms[room.ID] = room
	return nil
}

func (m *MockRoomRepository) FindByID(id uint) (*models.Room, error) {
	if room, ok := m.rooms[id]; ok {
		return room, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockRoomRepository) FindDirectByKey(directKey string) (*models.Room, error) {
	for _, room := range m.rooms {
		if room.DirectKey != nil && *room.DirectKey == directKey && room.Active {
			return room, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockRoomRepository) AddParticipant(roomID, userID uint) error {
	room, ok := m.rooms[roomID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if room.HasParticipant(userID) {
		return nil
	}
	room.Participants = append(room.Participants, models.RoomParticipant{RoomID: roomID, UserID: userID})
	return nil
}

func (m *MockRoomRepository) RemoveParticipant(roomID, userID uint) error {
	room, ok := m.rooms[roomID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	kept := room.Participants[:0]
	for _, p := range room.Participants {
		if p.UserID != userID {
			kept = append(kept, p)
		}
	}
	room.Participants = kept
	return nil
}

func (m *MockRoomRepository) GetParticipantIDs(roomID uint) ([]uint, error) {
	room, ok := m.rooms[roomID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return room.ParticipantIDs(), nil
}

func (m *MockRoomRepository) IsParticipant(roomID, userID uint) (bool, error) {
	room, ok := m.rooms[roomID]
	if !ok {
		return false, nil
	}
	return room.HasParticipant(userID), nil
}

func (m *MockRoomRepository) ListForUser(userID uint) ([]models.Room, error) {
	var result []models.Room
	for _, room := range m.rooms {
		if room.Active && room.HasParticipant(userID) {
			result = append(result, *room)
		}
	}
	return result, nil
}

func (m *MockRoomRepository) Deactivate(roomID uint) error {
	room, ok := m.rooms[roomID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	room.Active = false
	room.DirectKey = nil
	return nil
}

// MockChannelRepository is an in-memory ChannelRepositoryInterface for testing.
type MockChannelRepository struct {
	channels map[uint]*models.Channel
	nextID   uint
}

func NewMockChannelRepository() *MockChannelRepository {
	return &MockChannelRepository{
		channels: make(map[uint]*models.Channel),
		nextID:   1,
	}
}

func (m *MockChannelRepository) Create(channel *models.Channel) error {
	if channel.ID == 0 {
		channel.ID = m.nextID
		m.nextID++
	}
	m.channels[channel.ID] = channel
	return nil
}

func (m *MockChannelRepository) FindByID(id uint) (*models.Channel, error) {
	if channel, ok := m.channels[id]; ok {
		return channel, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockChannelRepository) AddMember(channelID, userID uint, role models.ChannelRole) error {
	channel, ok := m.channels[channelID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if _, exists := channel.RoleOf(userID); exists {
		return nil
	}
	channel.Members = append(channel.Members, models.ChannelMember{
		ChannelID: channelID,
		UserID:    userID,
		Role:      role,
	})
	return nil
}

func (m *MockChannelRepository) RemoveMember(channelID, userID uint) error {
	channel, ok := m.channels[channelID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	kept := channel.Members[:0]
	for _, member := range channel.Members {
		if member.UserID != userID {
			kept = append(kept, member)
		}
	}
	channel.Members = kept
	return nil
}

func (m *MockChannelRepository) GetMemberIDs(channelID uint) ([]uint, error) {
	channel, ok := m.channels[channelID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return channel.MemberIDs(), nil
}

func (m *MockChannelRepository) IsMember(channelID, userID uint) (bool, error) {
	channel, ok := m.channels[channelID]
	if !ok {
		return false, nil
	}
	_, exists := channel.RoleOf(userID)
	return exists, nil
}

func (m *MockChannelRepository) GetMemberRole(channelID, userID uint) (models.ChannelRole, error) {
	channel, ok := m.channels[channelID]
	if !ok {
		return "", gorm.ErrRecordNotFound
	}
	role, exists := channel.RoleOf(userID)
	if !exists {
		return "", gorm.ErrRecordNotFound
	}
	return role, nil
}

func (m *MockChannelRepository) ListForUser(userID uint) ([]models.Channel, error) {
	var result []models.Channel
	for _, channel := range m.channels {
		if !channel.Active {
			continue
		}
		if _, exists := channel.RoleOf(userID); exists {
			result = append(result, *channel)
		}
	}
	return result, nil
}

func (m *MockChannelRepository) ListPublic(limit int) ([]models.Channel, error) {
	var result []models.Channel
	for _, channel := range m.channels {
		if len(result) >= limit {
			break
		}
		if channel.Active && channel.IsPublic {
			result = append(result, *channel)
		}
	}
	return result, nil
}

func (m *MockChannelRepository) UpdateSettings(channelID uint, settings models.ChannelSettings) error {
	channel, ok := m.channels[channelID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	channel.AllowMemberPosts = settings.AllowMemberPosts
	channel.AllowReactions = settings.AllowReactions
	channel.AllowReplies = settings.AllowReplies
	return nil
}

func (m *MockChannelRepository) Deactivate(channelID uint) error {
	channel, ok := m.channels[channelID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	channel.Active = false
	return nil
}

// MockMessageRepository is an in-memory MessageRepositoryInterface for
// testing. The mutex keeps AddReaction safe under concurrent callers.
type MockMessageRepository struct {
	mu       sync.Mutex
	messages map[uint]*models.Message
	nextID   uint
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{
		messages: make(map[uint]*models.Message),
		nextID:   1,
	}
}

func (m *MockMessageRepository) Create(message *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if message.ID == 0 {
		message.ID = m.nextID
		m.nextID++
	}
	for i := range message.Reads {
		message.Reads[i].MessageID = message.ID
	}
	m.messages[message.ID] = message
	return nil
}

func (m *MockMessageRepository) FindByID(id uint) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[id]; ok {
		return msg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockMessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.ClientID == clientID && msg.SenderID == senderID {
			return msg, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockMessageRepository) UpdateContent(messageID uint, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[messageID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	msg.Content = content
	msg.IsEdited = true
	return nil
}

func (m *MockMessageRepository) SoftDelete(messageID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[messageID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	msg.IsDeleted = true
	return nil
}

func (m *MockMessageRepository) AddRead(messageID, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[messageID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, r := range msg.Reads {
		if r.UserID == userID {
			return nil
		}
	}
	msg.Reads = append(msg.Reads, models.MessageRead{MessageID: messageID, UserID: userID})
	return nil
}

func (m *MockMessageRepository) AddReaction(messageID, userID uint, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[messageID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, r := range msg.Reactions {
		if r.UserID == userID && r.Emoji == emoji {
			return nil
		}
	}
	msg.Reactions = append(msg.Reactions, models.MessageReaction{
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
	})
	return nil
}

func (m *MockMessageRepository) RemoveReaction(messageID, userID uint, emoji string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[messageID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	kept := msg.Reactions[:0]
	for _, r := range msg.Reactions {
		if !(r.UserID == userID && r.Emoji == emoji) {
			kept = append(kept, r)
		}
	}
	msg.Reactions = kept
	return nil
}

func (m *MockMessageRepository) ListByGroup(ref models.GroupRef, limit, offset int) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []models.Message
	for _, msg := range m.messages {
		if msg.IsDeleted || msg.GroupRef() != ref {
			continue
		}
		matched = append(matched, *msg)
	}
	// Newest first, id breaking ties
	for i := 0; i < len(matched); i++ {
		for j := i + 1; j < len(matched); j++ {
			a, b := matched[i], matched[j]
			if b.CreatedAt.After(a.CreatedAt) || (b.CreatedAt.Equal(a.CreatedAt) && b.ID > a.ID) {
				matched[i], matched[j] = matched[j], matched[i]
			}
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *MockMessageRepository) SearchByGroup(ref models.GroupRef, query string, limit int) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lowered := strings.ToLower(query)
	var result []models.Message
	for _, msg := range m.messages {
		if len(result) >= limit {
			break
		}
		if msg.IsDeleted || msg.GroupRef() != ref {
			continue
		}
		if strings.Contains(strings.ToLower(msg.Content), lowered) {
			result = append(result, *msg)
		}
	}
	return result, nil
}

// MockNotificationRepository is an in-memory NotificationRepositoryInterface
// for testing. failFor makes Create fail for specific recipients.
type MockNotificationRepository struct {
	notifications map[uint]*models.Notification
	nextID        uint
	failFor       map[uint]bool
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		notifications: make(map[uint]*models.Notification),
		nextID:        1,
		failFor:       make(map[uint]bool),
	}
}

func (m *MockNotificationRepository) Create(notification *models.Notification) error {
	if m.failFor[notification.UserID] {
		return gorm.ErrInvalidData
	}
	if notification.ID == 0 {
		notification.ID = m.nextID
		m.nextID++
	}
	m.notifications[notification.ID] = notification
	return nil
}

func (m *MockNotificationRepository) FindByID(id uint) (*models.Notification, error) {
	if n, ok := m.notifications[id]; ok {
		return n, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockNotificationRepository) MarkRead(id uint) error {
	n, ok := m.notifications[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n.IsRead = true
	return nil
}

func (m *MockNotificationRepository) MarkAllRead(userID uint) (int64, error) {
	var cleared int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			cleared++
		}
	}
	return cleared, nil
}

func (m *MockNotificationRepository) ListUnread(userID uint, limit int) ([]models.Notification, error) {
	var result []models.Notification
	for _, n := range m.notifications {
		if len(result) >= limit {
			break
		}
		if n.UserID == userID && !n.IsRead {
			result = append(result, *n)
		}
	}
	return result, nil
}

func (m *MockNotificationRepository) CountUnread(userID uint) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// MockPresenceRepository is an in-memory PresenceRepositoryInterface for testing.
type MockPresenceRepository struct {
	records map[uint]*models.PresenceRecord
}

func NewMockPresenceRepository() *MockPresenceRepository {
	return &MockPresenceRepository{records: make(map[uint]*models.PresenceRecord)}
}

func (m *MockPresenceRepository) Upsert(userID uint, isOnline bool) error {
	if record, ok := m.records[userID]; ok {
		record.IsOnline = isOnline
		return nil
	}
	m.records[userID] = &models.PresenceRecord{UserID: userID, IsOnline: isOnline}
	return nil
}

func (m *MockPresenceRepository) Get(userID uint) (*models.PresenceRecord, error) {
	if record, ok := m.records[userID]; ok {
		return record, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockPresenceRepository) ListOnline(userIDs []uint) ([]models.PresenceRecord, error) {
	filter := make(map[uint]bool, len(userIDs))
	for _, id := range userIDs {
		filter[id] = true
	}
	var result []models.PresenceRecord
	for _, record := range m.records {
		if !record.IsOnline {
			continue
		}
		if len(filter) > 0 && !filter[record.UserID] {
			continue
		}
		result = append(result, *record)
	}
	return result, nil
}
