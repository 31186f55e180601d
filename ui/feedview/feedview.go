// Package feedview lists feed posts and drives like, save, comment and
// delete actions through the mutation controller.
package feedview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/feedsync/comments"
	"github.com/deemkeen/feedsync/feed"
	"github.com/deemkeen/feedsync/pagination"
	"github.com/deemkeen/feedsync/store"
	"github.com/deemkeen/feedsync/ui/common"
	"github.com/deemkeen/feedsync/util"
)

// postHeight is the number of lines one post takes in the list
const postHeight = 4

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_DIM))

	contentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_WHITE))

	composerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(common.COLOR_ACCENT)).
			Padding(0, 1)
)

type Model struct {
	Session   *common.Session
	Posts     []store.PostView
	Selected  int
	Offset    int
	Width     int
	Height    int
	Composer  textinput.Model
	composing bool
	target    string
	trigger   pagination.ScrollTrigger
	isActive  bool
}

func InitialModel(session *common.Session, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "Add a comment..."
	ti.Prompt = common.ListSelectedPrefix
	ti.CharLimit = comments.MaxContentLength
	ti.Width = common.ComposerWidth

	return Model{
		Session:  session,
		Posts:    []store.PostView{},
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
	return common.CalculateItemsPerPage(common.CalculateAvailableHeight(m.Height)-1, postHeight)
}

// refresh re-reads the feed from the store and keeps the selection in range
func (m *Model) refresh() {
	m.Posts = m.Session.Store.PostViews()
	if m.Selected >= len(m.Posts) {
		m.Selected = max(0, len(m.Posts)-1)
	}
	m.Offset = common.ScrollWindow(m.Selected, min(m.Offset, m.Selected), m.perPage())
}

func (m Model) loadFeed(refresh bool) tea.Cmd {
	loader, ctx := m.Session.Loader, m.Session.Ctx
	return common.LoadCmd(func() feed.Result {
		return loader.LoadFeed(ctx, refresh)
	})
}

// loadMore fires a next-page fetch the first time the end of the list
// scrolls into view.
func (m *Model) loadMore() tea.Cmd {
	if !m.trigger.Observe(common.AtEnd(len(m.Posts), m.Offset, m.perPage())) {
		return nil
	}
	if !m.Session.Store.Cursor(store.FeedKey).CanLoadMore() {
		return nil
	}
	return m.loadFeed(false)
}

func (m Model) selected() (store.PostView, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Posts) {
		return store.PostView{}, false
	}
	return m.Posts[m.Selected], true
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case common.ActivateViewMsg:
		m.isActive = true
		m.refresh()
		if len(m.Posts) == 0 {
			m.trigger.Reset()
			return m, m.loadFeed(true)
		}
		return m, nil

	case common.DeactivateViewMsg:
		m.isActive = false
		m.cancelComposer()
		return m, nil

	case common.SettledMsg, common.StoreChangedMsg:
		m.refresh()
		return m, nil

	case common.LoadedMsg:
		if msg.Result.Key != store.FeedKey {
			return m, nil
		}
		before := len(m.Posts)
		m.refresh()
		// A short page can leave the end of the list in view; re-arm only
		// when the list grew so failed fetches are not retried in a loop.
		if len(m.Posts) > before {
			m.trigger.Reset()
			if m.isActive {
				return m, m.loadMore()
			}
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
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
			m.Offset = common.ScrollWindow(m.Selected, m.Offset, m.perPage())
		}
		return m, m.loadMore()
	case "down", "j":
		if m.Selected < len(m.Posts)-1 {
			m.Selected++
			m.Offset = common.ScrollWindow(m.Selected, m.Offset, m.perPage())
		}
		return m, m.loadMore()
	case "r":
		m.Selected, m.Offset = 0, 0
		m.trigger.Reset()
		return m, m.loadFeed(true)
	}

	post, ok := m.selected()
	if !ok {
		return m, nil
	}

	switch msg.String() {
	case "l":
		cmd := common.RunTask(ctrl.LikePost(post.Id))
		m.refresh()
		return m, cmd
	case "s":
		cmd := common.RunTask(ctrl.ToggleSave(post.Id))
		m.refresh()
		return m, cmd
	case "x":
		return m, common.RunTask(ctrl.DeletePost(post.Id))
	case "c":
		m.composing = true
		m.target = post.Id
		m.Composer.SetValue("")
		m.Composer.Focus()
		return m, textinput.Blink
	case "enter":
		title := fmt.Sprintf("%s: %s", post.Author.Handle(), util.TruncateWidth(post.Caption, 40))
		return m, func() tea.Msg {
			return common.OpenCommentsMsg{ParentId: post.Id, Title: title}
		}
	case "p":
		loader, ctx := m.Session.Loader, m.Session.Ctx
		id := post.Id
		return m, func() tea.Msg {
			if err := loader.RefreshPost(ctx, id); err != nil {
				return common.ErrorMsg{Text: err.Error()}
			}
			return common.StoreChangedMsg{}
		}
	}
	return m, nil
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
		_, task, err := m.Session.Controller.CreateComment(m.target, content)
		if err != nil {
			return m, common.ErrorCmd(err)
		}
		m.cancelComposer()
		m.refresh()
		return m, common.RunTask(task, nil)
	}

	var cmd tea.Cmd
	m.Composer, cmd = m.Composer.Update(msg)
	return m, cmd
}

func (m *Model) cancelComposer() {
	m.composing = false
	m.target = ""
	m.Composer.Blur()
	m.Composer.SetValue("")
}

func (m Model) View() string {
	var s strings.Builder

	cursor := m.Session.Store.Cursor(store.FeedKey)
	s.WriteString(common.CaptionStyle.Render(fmt.Sprintf("📰 Feed (%d)", len(m.Posts))))
	s.WriteString("\n")

	if len(m.Posts) == 0 {
		if cursor.Loading {
			s.WriteString(common.ListEmptyStyle.Render("Loading..."))
		} else {
			s.WriteString(common.ListEmptyStyle.Render("Nothing here yet. Press r to refresh."))
		}
		return s.String()
	}

	width := common.ContentWidth(m.Width)
	end := min(m.Offset+m.perPage(), len(m.Posts))
	for i := m.Offset; i < end; i++ {
		s.WriteString(m.renderPost(m.Posts[i], i == m.Selected, width))
	}

	if cursor.Loading {
		s.WriteString(common.ListBadgeStyle.Render("  loading more..."))
		s.WriteString("\n")
	} else if !cursor.HasMore {
		s.WriteString(common.ListBadgeStyle.Render("  end of feed"))
		s.WriteString("\n")
	}

	if m.composing {
		s.WriteString("\n")
		s.WriteString(composerStyle.Render(m.Composer.View()))
	}
	return s.String()
}

func (m Model) renderPost(p store.PostView, selected bool, width int) string {
	author := common.AuthorStyle.Render(p.Author.Handle())
	if selected {
		author = common.ListItemSelectedStyle.Render(p.Author.Handle())
	}
	line1 := fmt.Sprintf("%s%s  %s %s",
		common.Prefix(selected),
		author,
		timeStyle.Render(util.FormatTimeAgo(p.CreatedAt)),
		common.SavedMark(p.IsSaved))

	line2 := "  " + contentStyle.Render(util.TruncateWidth(p.Caption, width))

	likers := make([]string, 0, len(p.RecentLikedBy))
	for _, a := range p.RecentLikedBy {
		likers = append(likers, a.Handle())
	}
	line3 := fmt.Sprintf("  %s  💬 %s",
		common.Heart(p.IsLiked, p.TotalLikes),
		common.CounterStyle.Render(fmt.Sprint(p.TotalComments)))
	if len(likers) > 0 {
		line3 += "  " + common.ListBadgeStyle.Render(util.TruncateWidth("liked by "+strings.Join(likers, ", "), width/2))
	}

	return line1 + "\n" + line2 + "\n" + line3 + "\n\n"
}

