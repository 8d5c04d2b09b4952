package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"rebooks-backend/internal/apperr"
	"rebooks-backend/internal/models"
	"rebooks-backend/internal/repository"
)

const maxMessageLen = 500

type ChatService struct {
	chats    repository.ChatRepo
	messages repository.MessageRepo
	users    repository.UserRepo
}

func NewChatService(chats repository.ChatRepo, messages repository.MessageRepo, users repository.UserRepo) *ChatService {
	return &ChatService{chats: chats, messages: messages, users: users}
}

// CreateOrGet returns the chat between the two users, creating it on first
// contact.
func (s *ChatService) CreateOrGet(ctx context.Context, me, other primitive.ObjectID) (*models.Chat, error) {
	if other.IsZero() {
		return nil, apperr.BadRequest("User ID of the other participant must be provided")
	}
	chat, err := s.chats.FindBetween(ctx, me, other)
	if err != nil {
		return nil, err
	}
	if chat != nil {
		return chat, nil
	}

	chat = &models.Chat{Participants: []primitive.ObjectID{me, other}}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// ChatSummary is one row of the chat list: the conversation and its peer.
type ChatSummary struct {
	ID       primitive.ObjectID `json:"id"`
	PeerID   primitive.ObjectID `json:"peerId"`
	PeerName string             `json:"peerName"`
}

func (s *ChatService) ListForUser(ctx context.Context, me primitive.ObjectID) ([]ChatSummary, error) {
	chats, err := s.chats.ListForUser(ctx, me)
	if err != nil {
		return nil, err
	}

	summaries := []ChatSummary{}
	for _, chat := range chats {
		var peerID primitive.ObjectID
		for _, p := range chat.Participants {
			if p != me {
				peerID = p
				break
			}
		}
		peerName := ""
		if peer, err := s.users.FindByID(ctx, peerID); err == nil && peer != nil {
			peerName = fmt.Sprintf("%s %s", peer.FirstName, peer.LastName)
		}
		summaries = append(summaries, ChatSummary{ID: chat.ID, PeerID: peerID, PeerName: peerName})
	}
	return summaries, nil
}

// MessageView is a message shaped for clients.
type MessageView struct {
	ID        primitive.ObjectID `json:"id"`
	SenderID  primitive.ObjectID `json:"senderId"`
	Text      string             `json:"text"`
	Timestamp time.Time          `json:"timestamp"`
}

// GetWithMessages returns a chat and its message history. Non-participants
// get NotFound rather than a hint the chat exists.
func (s *ChatService) GetWithMessages(ctx context.Context, me, chatID primitive.ObjectID) (*models.Chat, []MessageView, error) {
	chat, err := s.loadParticipantChat(ctx, me, chatID)
	if err != nil {
		return nil, nil, err
	}

	msgs, err := s.messages.ListByChat(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, MessageView{ID: m.ID, SenderID: m.Sender, Text: m.Message, Timestamp: m.Timestamp})
	}
	return chat, views, nil
}

// SendMessage persists a message from a participant and bumps the chat's
// last-message timestamp. Used by the realtime channel.
func (s *ChatService) SendMessage(ctx context.Context, me, chatID primitive.ObjectID, text string) (*models.Message, error) {
	if text == "" {
		return nil, apperr.BadRequest("Message is required")
	}
	if len(text) > maxMessageLen {
		return nil, apperr.BadRequest("Message cannot exceed 500 characters")
	}
	if _, err := s.loadParticipantChat(ctx, me, chatID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		Chat:      chatID,
		Sender:    me,
		Message:   text,
		Timestamp: time.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.chats.TouchLastMessage(ctx, chatID, msg.Timestamp); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *ChatService) loadParticipantChat(ctx context.Context, me, chatID primitive.ObjectID) (*models.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, apperr.NotFound("Chat not found")
	}
	participant := false
	for _, p := range chat.Participants {
		if p == me {
			participant = true
			break
		}
	}
	if !participant {
		return nil, apperr.NotFound("User is not a participant of this chat")
	}
	return chat, nil
}
