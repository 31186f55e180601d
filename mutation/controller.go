// Package mutation applies user actions optimistically and reconciles them
// with the server outcome.
//
// Each (kind, entity) pair runs the state machine
// Idle -> Applied -> {Committed, RolledBack}. A new action on a pair that is
// still Applied supersedes the running one: its request is cancelled and its
// outcome ignored, and a later rollback restores the state from before the
// first action of the chain.
package mutation

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/deemkeen/feedsync/comments"
	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/interaction"
	"github.com/deemkeen/feedsync/notify"
	"github.com/deemkeen/feedsync/store"
)

type Kind int

const (
	LikePost Kind = iota
	LikeReel
	LikeComment
	Save
	CreateComment
	EditComment
	DeleteComment
	DeletePost
)

func (k Kind) String() string {
	switch k {
	case LikePost:
		return "like post"
	case LikeReel:
		return "like reel"
	case LikeComment:
		return "like comment"
	case Save:
		return "save"
	case CreateComment:
		return "comment"
	case EditComment:
		return "edit comment"
	case DeleteComment:
		return "delete comment"
	case DeletePost:
		return "delete post"
	default:
		return "unknown"
	}
}

// Key identifies one state machine
type Key struct {
	Kind Kind
	Id   string
}

func (k Key) String() string {
	return fmt.Sprintf("%s %s", k.Kind, k.Id)
}

type State int

const (
	Idle State = iota
	Applied
	Committed
	RolledBack
)

func (s State) String() string {
	return [...]string{"idle", "applied", "committed", "rolled back"}[s]
}

// Outcome is the result of a Task, to be handed back to Settle
type Outcome struct {
	Key     Key
	Seq     uint64
	Like    LikeResult
	Comment domain.Comment
	Err     error
}

// Task performs the request half of a mutation. It may run on any goroutine.
type Task func() Outcome

// Settlement reports what Settle did with an outcome
type Settlement struct {
	Key   Key
	State State
	Stale bool
	Error ErrorKind
	Err   error
}

// Notifier receives the user-visible side effects of a failed mutation
type Notifier interface {
	Publish(e notify.Event)
	ClearOnAuthLoss(err error)
}

type op struct {
	seq      uint64
	state    State
	cancel   context.CancelFunc
	undo     store.Transition
	parentId string
	comment  domain.Comment
}

// Controller owns every in-flight mutation
type Controller struct {
	mu        sync.Mutex
	store     *store.Store
	transport Transport
	notifier  Notifier
	actor     domain.ActorRef
	grace     time.Duration
	now       func() time.Time

	seq  uint64
	ops  map[Key]*op
	held map[Key]time.Time
}

// NewController wires a controller. grace is how long after settlement the
// entity keeps ignoring externally sourced like/save updates.
func NewController(s *store.Store, t Transport, n Notifier, actor domain.ActorRef, grace time.Duration) *Controller {
	return &Controller{
		store:     s,
		transport: t,
		notifier:  n,
		actor:     actor,
		grace:     grace,
		now:       time.Now,
		ops:       make(map[Key]*op),
		held:      make(map[Key]time.Time),
	}
}

// SetClock replaces the time source
func (c *Controller) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *Controller) GraceWindow() time.Duration {
	return c.grace
}

// State returns the current state of a key
func (c *Controller) State(key Key) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if o, ok := c.ops[key]; ok {
		return o.state
	}
	return Idle
}

// Interacted reports whether key is in flight or inside its grace window
func (c *Controller) Interacted(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interactedLocked(key)
}

func (c *Controller) interactedLocked(key Key) bool {
	if o, ok := c.ops[key]; ok && o.state == Applied {
		return true
	}
	until, ok := c.held[key]
	return ok && c.now().Before(until)
}

// Holds adapts Interacted for store transitions that merge external data
func (c *Controller) Holds(field store.Field, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch field {
	case store.FieldLike:
		return c.interactedLocked(Key{LikePost, id}) || c.interactedLocked(Key{LikeReel, id})
	case store.FieldSave:
		return c.interactedLocked(Key{Save, id})
	case store.FieldCommentLike:
		return c.interactedLocked(Key{LikeComment, id})
	}
	return false
}

// Prune forgets grace windows that have expired and returns how many
func (c *Controller) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for k, until := range c.held {
		if !now.Before(until) {
			delete(c.held, k)
			n++
		}
	}
	for k, o := range c.ops {
		if o.state != Applied {
			if _, ok := c.held[k]; !ok {
				delete(c.ops, k)
			}
		}
	}
	return n
}

// LikePost toggles the viewer's like on a post
func (c *Controller) LikePost(postId string) (Task, error) {
	p, ok := c.store.Post(postId)
	if !ok {
		return nil, fmt.Errorf("like post %s: %w", postId, ErrUnknownEntity)
	}
	like := !p.IsLiked
	base := p.LikeFields()
	actor := c.actor

	optimistic := store.PatchPost{Id: postId, Patch: func(p domain.Post) domain.Post {
		return interaction.ToggleLike(p, actor, p.IsLiked)
	}}
	undo := store.PatchPost{Id: postId, Patch: func(p domain.Post) domain.Post {
		return p.WithLikeFields(base)
	}}

	return c.begin(Key{LikePost, postId}, optimistic, undo, &op{}, func(ctx context.Context) Outcome {
		res, err := c.transport.SetPostLike(ctx, postId, like)
		return Outcome{Like: res, Err: err}
	}), nil
}

// LikeReel toggles the viewer in a reel's liker set
func (c *Controller) LikeReel(reelId string) (Task, error) {
	r, ok := c.store.Reel(reelId)
	if !ok {
		return nil, fmt.Errorf("like reel %s: %w", reelId, ErrUnknownEntity)
	}
	viewer := c.actor.Id
	like := !r.LikedByActor(viewer)
	base := append([]string(nil), r.LikedBy...)

	optimistic := store.PatchReel{Id: reelId, Patch: func(r domain.Reel) domain.Reel {
		return interaction.ToggleReelLike(r, viewer)
	}}
	undo := store.PatchReel{Id: reelId, Patch: func(r domain.Reel) domain.Reel {
		r.LikedBy = append([]string(nil), base...)
		return r
	}}

	return c.begin(Key{LikeReel, reelId}, optimistic, undo, &op{}, func(ctx context.Context) Outcome {
		res, err := c.transport.SetReelLike(ctx, reelId, like)
		return Outcome{Like: res, Err: err}
	}), nil
}

// LikeComment toggles the viewer's like on a confirmed comment
func (c *Controller) LikeComment(parentId string, id domain.CommentID) (Task, error) {
	if id.IsTemporary() {
		return nil, comments.ErrTemporaryID
	}
	cm, ok := c.store.Comment(parentId, id)
	if !ok {
		return nil, fmt.Errorf("like comment %s: %w", id, ErrUnknownEntity)
	}
	like := !cm.IsLiked
	baseLikes, baseLiked := cm.TotalLikes, cm.IsLiked

	optimistic := store.PatchComment{ParentId: parentId, Id: id, Patch: interaction.ToggleCommentLike}
	undo := store.PatchComment{ParentId: parentId, Id: id, Patch: func(c domain.Comment) domain.Comment {
		c.TotalLikes = baseLikes
		c.IsLiked = baseLiked
		return c
	}}

	return c.begin(commentKey(LikeComment, parentId, id), optimistic, undo, &op{parentId: parentId, comment: cm}, func(ctx context.Context) Outcome {
		res, err := c.transport.SetCommentLike(ctx, string(id), like)
		return Outcome{Like: res, Err: err}
	}), nil
}

// ToggleSave flips the saved state of a post or reel
func (c *Controller) ToggleSave(id string) (Task, error) {
	saved := !c.store.IsSaved(id)
	return c.begin(Key{Save, id}, store.SetSaved{Id: id, Saved: saved}, store.SetSaved{Id: id, Saved: !saved}, &op{}, func(ctx context.Context) Outcome {
		return Outcome{Err: c.transport.SetSaved(ctx, id, saved)}
	}), nil
}

// CreateComment inserts an optimistic comment and returns it with the task
// that confirms it.
func (c *Controller) CreateComment(parentId, content string) (domain.Comment, Task, error) {
	if err := comments.ValidateContent(content); err != nil {
		return domain.Comment{}, nil, err
	}
	pending, insert := comments.Create(parentId, c.actor, content, c.now())

	task := c.begin(Key{CreateComment, string(pending.Id)}, insert, comments.Discard(parentId, pending), &op{parentId: parentId, comment: pending}, func(ctx context.Context) Outcome {
		created, err := c.transport.CreateComment(ctx, parentId, content)
		return Outcome{Comment: created, Err: err}
	})
	return pending, task, nil
}

// EditComment replaces a confirmed comment's content
func (c *Controller) EditComment(parentId string, id domain.CommentID, content string) (Task, error) {
	if err := comments.ValidateContent(content); err != nil {
		return nil, err
	}
	cm, ok := c.store.Comment(parentId, id)
	if !ok && !id.IsTemporary() {
		return nil, fmt.Errorf("edit comment %s: %w", id, ErrUnknownEntity)
	}
	optimistic, err := comments.Edit(parentId, id, content)
	if err != nil {
		return nil, err
	}
	undo, _ := comments.Edit(parentId, id, cm.Content)

	return c.begin(commentKey(EditComment, parentId, id), optimistic, undo, &op{parentId: parentId, comment: cm}, func(ctx context.Context) Outcome {
		updated, err := c.transport.EditComment(ctx, string(id), content)
		return Outcome{Comment: updated, Err: err}
	}), nil
}

// DeleteComment asks the server to delete a confirmed comment. The entry is
// only flagged pending until the server acknowledges.
func (c *Controller) DeleteComment(parentId string, id domain.CommentID) (Task, error) {
	mark, err := comments.SetPending(parentId, id, true)
	if err != nil {
		return nil, err
	}
	cm, ok := c.store.Comment(parentId, id)
	if !ok {
		return nil, fmt.Errorf("delete comment %s: %w", id, ErrUnknownEntity)
	}
	unmark, _ := comments.SetPending(parentId, id, false)

	return c.begin(commentKey(DeleteComment, parentId, id), mark, unmark, &op{parentId: parentId, comment: cm}, func(ctx context.Context) Outcome {
		return Outcome{Err: c.transport.DeleteComment(ctx, string(id))}
	}), nil
}

// DeletePost asks the server to delete a post; removal waits for the ack
func (c *Controller) DeletePost(postId string) (Task, error) {
	if _, ok := c.store.Post(postId); !ok {
		return nil, fmt.Errorf("delete post %s: %w", postId, ErrUnknownEntity)
	}
	return c.begin(Key{DeletePost, postId}, nil, nil, &op{}, func(ctx context.Context) Outcome {
		return Outcome{Err: c.transport.DeletePost(ctx, postId)}
	}), nil
}

// Run executes a task on the calling goroutine and settles it
func (c *Controller) Run(t Task) Settlement {
	return c.Settle(t())
}

func (c *Controller) begin(key Key, optimistic, undo store.Transition, o *op, call func(ctx context.Context) Outcome) Task {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.seq++
	o.seq = c.seq
	o.state = Applied
	o.cancel = cancel
	o.undo = undo
	if prev, ok := c.ops[key]; ok && prev.state == Applied {
		prev.cancel()
		o.undo = prev.undo
		log.Printf("Controller: %s seq %d superseded by seq %d", key, prev.seq, o.seq)
	}
	c.ops[key] = o
	delete(c.held, key)
	seq := o.seq
	c.mu.Unlock()

	if optimistic != nil {
		c.store.Apply(optimistic)
	}

	return func() Outcome {
		out := call(ctx)
		out.Key = key
		out.Seq = seq
		return out
	}
}

// Settle reconciles the store with a task outcome. Outcomes of superseded or
// already settled tasks are ignored.
func (c *Controller) Settle(out Outcome) Settlement {
	c.mu.Lock()
	o, ok := c.ops[out.Key]
	if !ok || o.seq != out.Seq || o.state != Applied {
		c.mu.Unlock()
		log.Printf("Controller: ignoring stale outcome for %s seq %d", out.Key, out.Seq)
		return Settlement{Key: out.Key, Stale: true, State: c.State(out.Key)}
	}
	o.cancel()

	kind := Classify(out.Err)
	committed := kind == ErrorNone || kind == ErrorConflict
	if committed {
		o.state = Committed
	} else {
		o.state = RolledBack
	}
	c.held[out.Key] = c.now().Add(c.grace)
	c.mu.Unlock()

	if committed {
		c.commit(out, o)
	} else {
		c.rollback(out, o, kind)
	}
	return Settlement{Key: out.Key, State: o.state, Error: kind, Err: out.Err}
}

func (c *Controller) commit(out Outcome, o *op) {
	switch out.Key.Kind {
	case LikePost:
		if out.Like.IsLiked == nil && out.Like.TotalLikes == nil {
			return
		}
		actor := c.actor
		c.store.Apply(store.PatchPost{Id: out.Key.Id, Patch: func(p domain.Post) domain.Post {
			if out.Like.IsLiked != nil && *out.Like.IsLiked != p.IsLiked {
				p = interaction.SetRecentLiker(p, actor, *out.Like.IsLiked)
				p.IsLiked = *out.Like.IsLiked
			}
			if out.Like.TotalLikes != nil {
				p.TotalLikes = interaction.Clamp(*out.Like.TotalLikes)
			}
			return p
		}})

	case LikeReel:
		if out.Like.IsLiked == nil {
			return
		}
		viewer := c.actor.Id
		c.store.Apply(store.PatchReel{Id: out.Key.Id, Patch: func(r domain.Reel) domain.Reel {
			if r.LikedByActor(viewer) != *out.Like.IsLiked {
				return interaction.ToggleReelLike(r, viewer)
			}
			return r
		}})

	case LikeComment:
		if out.Like.IsLiked == nil && out.Like.TotalLikes == nil {
			return
		}
		c.store.Apply(store.PatchComment{ParentId: o.parentId, Id: o.comment.Id, Patch: func(cm domain.Comment) domain.Comment {
			if out.Like.IsLiked != nil {
				cm.IsLiked = *out.Like.IsLiked
			}
			if out.Like.TotalLikes != nil {
				cm.TotalLikes = interaction.Clamp(*out.Like.TotalLikes)
			}
			return cm
		}})

	case CreateComment:
		if out.Comment.Id == "" || out.Comment.Id.IsTemporary() {
			log.Printf("Controller: %s settled without a server comment, discarding", out.Key)
			c.store.Apply(comments.Discard(o.parentId, o.comment))
			return
		}
		c.store.Apply(comments.Confirm(o.parentId, o.comment, out.Comment))

	case EditComment:
		if out.Comment.Content == "" {
			return
		}
		if t, err := comments.Edit(o.parentId, o.comment.Id, out.Comment.Content); err == nil {
			c.store.Apply(t)
		}

	case DeleteComment:
		if t, err := comments.Delete(o.parentId, o.comment.Id); err == nil {
			c.store.Apply(t)
		}

	case DeletePost:
		c.store.Apply(store.RemovePost{Id: out.Key.Id})
	}
}

func (c *Controller) rollback(out Outcome, o *op, kind ErrorKind) {
	if o.undo != nil {
		c.store.Apply(o.undo)
	}

	switch kind {
	case ErrorNetwork:
		log.Printf("Controller: %s rolled back, network unavailable: %v", out.Key, out.Err)
	case ErrorAuth:
		log.Printf("Controller: %s rolled back, authentication lost: %v", out.Key, out.Err)
		if c.notifier != nil {
			c.notifier.ClearOnAuthLoss(out.Err)
		}
	default:
		log.Printf("Controller: %s rolled back: %v", out.Key, out.Err)
		if c.notifier != nil {
			c.notifier.Publish(notify.MutationFailed{
				Op:       out.Key.Kind.String(),
				EntityId: entityId(out.Key, o),
				Err:      out.Err,
			})
		}
	}
}

func commentKey(kind Kind, parentId string, id domain.CommentID) Key {
	return Key{Kind: kind, Id: store.CommentRef(parentId, id)}
}

func entityId(key Key, o *op) string {
	if o.comment.Id != "" {
		return string(o.comment.Id)
	}
	return key.Id
}
