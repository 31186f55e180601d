// Package commentview shows the comments of one post or reel. New comments
// appear immediately as pending entries and are promoted in place once the
// server confirms them.
package commentview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/feedsync/comments"
	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/feed"
	"github.com/deemkeen/feedsync/pagination"
	"github.com/deemkeen/feedsync/store"
	"github.com/deemkeen/feedsync/ui/common"
	"github.com/deemkeen/feedsync/util"
)

const commentHeight = 3

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_DIM))

	composerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(common.COLOR_ACCENT)).
			Padding(0, 1)
)

type Model struct {
	Session   *common.Session
	ParentId  string
	Title     string
	Comments  []domain.Comment
	Selected  int
	Offset    int
	Width     int
	Height    int
	Composer  textinput.Model
	composing bool
	editing   domain.CommentID
	trigger   pagination.ScrollTrigger
}

func InitialModel(session *common.Session, width, height int) Model {
	ti := textinput.New()
	ti.Prompt = common.ListSelectedPrefix
	ti.CharLimit = comments.MaxContentLength
	ti.Width = common.ComposerWidth

	return Model{
		Session:  session,
		Comments: []domain.Comment{},
		Width:    width,
		Height:   height,
		Composer: ti,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Composing reports whether key input belongs to the composer
func (m Model) Composing() bool {
	return m.composing
}

func (m Model) perPage() int {
	return common.CalculateItemsPerPage(common.CalculateAvailableHeight(m.Height)-3, commentHeight)
}

func (m *Model) refresh() {
	if m.ParentId == "" {
		m.Comments = nil
		return
	}
	m.Comments = m.Session.Store.Comments(m.ParentId)
	if m.Selected >= len(m.Comments) {
		m.Selected = max(0, len(m.Comments)-1)
	}
	m.Offset = common.ScrollWindow(m.Selected, min(m.Offset, m.Selected), m.perPage())
}

func (m Model) loadComments(refresh bool) tea.Cmd {
	loader, ctx, parent := m.Session.Loader, m.Session.Ctx, m.ParentId
	return common.LoadCmd(func() feed.Result {
		return loader.LoadComments(ctx, parent, refresh)
	})
}

func (m *Model) loadMore(force bool) tea.Cmd {
	visible := common.AtEnd(len(m.Comments), m.Offset, m.perPage())
	if !m.trigger.Observe(visible) && !force {
		return nil
	}
	if !m.Session.Store.Cursor(store.CommentsKey(m.ParentId)).CanLoadMore() {
		return nil
	}
	return m.loadComments(false)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case common.OpenCommentsMsg:
		m.ParentId = msg.ParentId
		m.Title = msg.Title
		m.Selected, m.Offset = 0, 0
		m.cancelComposer()
		m.trigger.Reset()
		m.refresh()
		return m, m.loadComments(true)

	case common.SettledMsg, common.StoreChangedMsg:
		m.refresh()
		return m, nil

	case common.LoadedMsg:
		if m.ParentId == "" || msg.Result.Key != store.CommentsKey(m.ParentId) {
			return m, nil
		}
		before := len(m.Comments)
		m.refresh()
		if len(m.Comments) > before {
			m.trigger.Reset()
		}
		return m, nil

	case tea.KeyMsg:
		if m.composing {
			return m.updateComposer(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	ctrl := m.Session.Controller

	switch msg.String() {
	case "esc", "q":
		return m, func() tea.Msg { return common.BackMsg{} }
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
			m.Offset = common.ScrollWindow(m.Selected, m.Offset, m.perPage())
		}
		return m, m.loadMore(false)
	case "down", "j":
		if m.Selected < len(m.Comments)-1 {
			m.Selected++
			m.Offset = common.ScrollWindow(m.Selected, m.Offset, m.perPage())
		}
		return m, m.loadMore(false)
	case "m":
		return m, m.loadMore(true)
	case "r":
		m.Selected, m.Offset = 0, 0
		m.trigger.Reset()
		return m, m.loadComments(true)
	case "c":
		m.openComposer("", "")
		return m, textinput.Blink
	}

	if m.Selected >= len(m.Comments) {
		return m, nil
	}
	c := m.Comments[m.Selected]

	switch msg.String() {
	case "l":
		cmd := common.RunTask(ctrl.LikeComment(m.ParentId, c.Id))
		m.refresh()
		return m, cmd
	case "x":
		cmd := common.RunTask(ctrl.DeleteComment(m.ParentId, c.Id))
		m.refresh()
		return m, cmd
	case "e":
		if c.Id.IsTemporary() {
			return m, nil
		}
		m.openComposer(c.Id, c.Content)
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) openComposer(editing domain.CommentID, value string) {
	m.composing = true
	m.editing = editing
	if editing == "" {
		m.Composer.Placeholder = "Add a comment..."
	} else {
		m.Composer.Placeholder = "Edit comment..."
	}
	m.Composer.SetValue(value)
	m.Composer.CursorEnd()
	m.Composer.Focus()
}

func (m *Model) cancelComposer() {
	m.composing = false
	m.editing = ""
	m.Composer.Blur()
	m.Composer.SetValue("")
}

func (m Model) updateComposer(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.cancelComposer()
		return m, nil
	case "enter":
		content := util.NormalizeInput(m.Composer.Value())
		if content == "" {
			return m, nil
		}
		ctrl := m.Session.Controller

		var cmd tea.Cmd
		if m.editing != "" {
			task, err := ctrl.EditComment(m.ParentId, m.editing, content)
			if err != nil {
				return m, common.ErrorCmd(err)
			}
			cmd = common.RunTask(task, nil)
		} else {
			_, task, err := ctrl.CreateComment(m.ParentId, content)
			if err != nil {
				return m, common.ErrorCmd(err)
			}
			cmd = common.RunTask(task, nil)
			m.Selected, m.Offset = 0, 0
		}
		m.cancelComposer()
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.Composer, cmd = m.Composer.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var s strings.Builder

	total, ok := m.Session.Store.CommentCount(m.ParentId)
	if !ok {
		total = len(m.Comments)
	}
	s.WriteString(common.CaptionStyle.Render(fmt.Sprintf("💬 %s (%d)", m.Title, total)))
	s.WriteString("\n")

	cursor := m.Session.Store.Cursor(store.CommentsKey(m.ParentId))
	if len(m.Comments) == 0 {
		if cursor.Loading {
			s.WriteString(common.ListEmptyStyle.Render("Loading..."))
		} else {
			s.WriteString(common.ListEmptyStyle.Render("No comments yet. Press c to write one."))
		}
	} else {
		width := common.ContentWidth(m.Width)
		end := min(m.Offset+m.perPage(), len(m.Comments))
		for i := m.Offset; i < end; i++ {
			s.WriteString(renderComment(m.Comments[i], i == m.Selected, width))
		}
		if cursor.Loading {
			s.WriteString(common.ListBadgeStyle.Render("  loading more..."))
			s.WriteString("\n")
		} else if cursor.HasMore {
			s.WriteString(common.ListBadgeStyle.Render("  m: load more"))
			s.WriteString("\n")
		}
	}

	if m.composing {
		s.WriteString("\n")
		s.WriteString(composerStyle.Render(m.Composer.View()))
	}
	return s.String()
}

func renderComment(c domain.Comment, selected bool, width int) string {
	author := common.AuthorStyle.Render(c.Author.Handle())
	if selected {
		author = common.ListItemSelectedStyle.Render(c.Author.Handle())
	}

	status := timeStyle.Render(util.FormatTimeAgo(c.CreatedAt))
	switch {
	case c.IsOptimistic:
		status = common.PendingStyle.Render("sending...")
	case c.IsPending:
		status = common.PendingStyle.Render("deleting...")
	}

	line1 := fmt.Sprintf("%s%s  %s", common.Prefix(selected), author, status)
	line2 := fmt.Sprintf("  %s  %s", util.TruncateWidth(c.Content, width-10), common.Heart(c.IsLiked, c.TotalLikes))
	return line1 + "\n" + line2 + "\n\n"
}
