// Package events carries thread mutations from the thread service to the
// components that maintain derived state (activity counters, notifications).
// Handlers run synchronously inside the emitting transaction, so derived
// updates commit or roll back together with the source mutation.
package events

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// CommentAdded is emitted when a top-level comment is created.
type CommentAdded struct {
	PostID       uint
	CommentID    uint
	AuthorID     uint
	PostAuthorID uint
	Text         string
}

// ReplyAdded is emitted when a reply to a top-level comment is created.
type ReplyAdded struct {
	PostID         uint
	ParentID       uint
	ParentAuthorID uint
	ReplyID        uint
	AuthorID       uint
	PostAuthorID   uint
	Text           string
}

// CommentRemoved is emitted when a comment is deleted. ReplyCount is the
// number of replies cascaded along with a top-level comment; zero when a
// single reply was removed.
type CommentRemoved struct {
	PostID     uint
	CommentID  uint
	ReplyCount int
}

// Handler reacts to thread mutations. The tx argument is the transaction the
// mutation runs in; a handler error aborts the whole operation.
type Handler interface {
	HandleCommentAdded(ctx context.Context, tx *gorm.DB, ev CommentAdded) error
	HandleReplyAdded(ctx context.Context, tx *gorm.DB, ev ReplyAdded) error
	HandleCommentRemoved(ctx context.Context, tx *gorm.DB, ev CommentRemoved) error
}

// Bus fans thread mutation events out to subscribed handlers in subscription
// order.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler. Handlers are invoked in subscription order.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) snapshot() []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.handlers
}

// PublishCommentAdded dispatches a CommentAdded event to all handlers.
func (b *Bus) PublishCommentAdded(ctx context.Context, tx *gorm.DB, ev CommentAdded) error {
	for _, h := range b.snapshot() {
		if err := h.HandleCommentAdded(ctx, tx, ev); err != nil {
			return err
		}
	}
	return nil
}

// PublishReplyAdded dispatches a ReplyAdded event to all handlers.
func (b *Bus) PublishReplyAdded(ctx context.Context, tx *gorm.DB, ev ReplyAdded) error {
	for _, h := range b.snapshot() {
		if err := h.HandleReplyAdded(ctx, tx, ev); err != nil {
			return err
		}
	}
	return nil
}

// PublishCommentRemoved dispatches a CommentRemoved event to all handlers.
func (b *Bus) PublishCommentRemoved(ctx context.Context, tx *gorm.DB, ev CommentRemoved) error {
	for _, h := range b.snapshot() {
		if err := h.HandleCommentRemoved(ctx, tx, ev); err != nil {
			return err
		}
	}
	return nil
}
