// Package comments builds the store transitions that move a comment through
// Optimistic -> {Confirmed, Discarded} and that edit or delete confirmed ones.
package comments

import (
	"errors"
	"time"

	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/store"
)

// ErrTemporaryID is returned for edits, deletes and likes aimed at a comment
// the server has not confirmed yet.
var ErrTemporaryID = errors.New("comment is not confirmed yet")

// Create mints an optimistic comment and the transition that puts it at the
// head of its parent's list and bumps the parent's totalComments.
func Create(parentId string, author domain.ActorRef, content string, now time.Time) (domain.Comment, store.Transition) {
	c := domain.Comment{
		Id:           domain.NewTempCommentID(),
		ParentId:     parentId,
		Author:       author,
		Content:      content,
		CreatedAt:    now,
		IsOptimistic: true,
		IsPending:    true,
	}
	return c, store.EditComments{
		ParentId: parentId,
		Edit: func(list []domain.Comment) ([]domain.Comment, int, bool) {
			return append([]domain.Comment{c}, list...), 1, true
		},
	}
}

// Confirm swaps the optimistic entry for the server's copy in place. When the
// optimistic entry is gone the confirmed comment goes to the head unless its
// id is already listed. totalComments is never bumped a second time.
func Confirm(parentId string, pending, confirmed domain.Comment) store.Transition {
	confirmed.ParentId = parentId
	confirmed.IsOptimistic = false
	confirmed.IsPending = false

	return store.EditComments{
		ParentId: parentId,
		Edit: func(list []domain.Comment) ([]domain.Comment, int, bool) {
			at := matchPending(list, pending)
			exists := indexOf(list, confirmed.Id) >= 0

			switch {
			case at >= 0 && exists:
				return removeAt(list, at), 0, true
			case at >= 0:
				list[at] = confirmed
				return list, 0, true
			case exists:
				return list, 0, false
			default:
				return append([]domain.Comment{confirmed}, list...), 0, true
			}
		},
	}
}

// Discard removes a failed optimistic comment and gives back its count
func Discard(parentId string, pending domain.Comment) store.Transition {
	return store.EditComments{
		ParentId: parentId,
		Edit: func(list []domain.Comment) ([]domain.Comment, int, bool) {
			at := matchPending(list, pending)
			if at < 0 {
				return list, 0, false
			}
			return removeAt(list, at), -1, true
		},
	}
}

// Delete removes a confirmed comment. Callers apply it only after the server
// acknowledged the delete.
func Delete(parentId string, id domain.CommentID) (store.Transition, error) {
	if id.IsTemporary() {
		return nil, ErrTemporaryID
	}
	return store.EditComments{
		ParentId: parentId,
		Edit: func(list []domain.Comment) ([]domain.Comment, int, bool) {
			at := indexOf(list, id)
			if at < 0 {
				return list, 0, false
			}
			return removeAt(list, at), -1, true
		},
	}, nil
}

// SetPending flags a confirmed comment while a request about it is in flight
func SetPending(parentId string, id domain.CommentID, pending bool) (store.Transition, error) {
	if id.IsTemporary() {
		return nil, ErrTemporaryID
	}
	return store.PatchComment{
		ParentId: parentId,
		Id:       id,
		Patch: func(c domain.Comment) domain.Comment {
			c.IsPending = pending
			return c
		},
	}, nil
}

// Edit replaces the content of a confirmed comment and nothing else
func Edit(parentId string, id domain.CommentID, content string) (store.Transition, error) {
	if id.IsTemporary() {
		return nil, ErrTemporaryID
	}
	return store.PatchComment{
		ParentId: parentId,
		Id:       id,
		Patch: func(c domain.Comment) domain.Comment {
			c.Content = content
			return c
		},
	}, nil
}

func matchPending(list []domain.Comment, pending domain.Comment) int {
	if i := indexOf(list, pending.Id); i >= 0 {
		return i
	}
	for i, c := range list {
		if c.IsOptimistic && c.Author.Id == pending.Author.Id && c.CreatedAt.Equal(pending.CreatedAt) {
			return i
		}
	}
	return -1
}

func indexOf(list []domain.Comment, id domain.CommentID) int {
	for i, c := range list {
		if c.Id == id {
			return i
		}
	}
	return -1
}

func removeAt(list []domain.Comment, i int) []domain.Comment {
	return append(list[:i:i], list[i+1:]...)
}
