package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/wardenbot/warden/internal/store"
)

type noteListStore interface {
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string) ([]string, error)
	Del(ctx context.Context, keys ...string) error
}

// NoteBook keeps free-form context notes staff attach to a member.
type NoteBook struct {
	store noteListStore
}

func NewNoteBook(store noteListStore) *NoteBook {
	return &NoteBook{store: store}
}

// Add appends a timestamped, attributed note entry.
func (n *NoteBook) Add(ctx context.Context, memberID, authorID int64, note string) (string, error) {
	entry := fmt.Sprintf("[%s] %d: %s", time.Now().UTC().Format("2006-01-02 15:04 UTC"), authorID, note)
	if err := n.store.RPush(ctx, store.NotesKey(memberID), entry); err != nil {
		return "", err
	}
	return entry, nil
}

func (n *NoteBook) List(ctx context.Context, memberID int64) ([]string, error) {
	return n.store.LRange(ctx, store.NotesKey(memberID))
}

func (n *NoteBook) Clear(ctx context.Context, memberID int64) error {
	return n.store.Del(ctx, store.NotesKey(memberID))
}
