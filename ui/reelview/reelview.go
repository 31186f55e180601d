package reelview

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/feedsync/feed"
	"github.com/deemkeen/feedsync/pagination"
	"github.com/deemkeen/feedsync/store"
	"github.com/deemkeen/feedsync/ui/common"
	"github.com/deemkeen/feedsync/util"
)

const reelHeight = 3

var videoStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color(common.COLOR_MUTED)).
	Italic(true)

type Model struct {
	Session  *common.Session
	Reels    []store.ReelView
	Selected int
	Offset   int
	Width    int
	Height   int
	trigger  pagination.ScrollTrigger
	isActive bool
}

func InitialModel(session *common.Session, width, height int) Model {
	return Model{
		Session: session,
		Reels:   []store.ReelView{},
		Width:   width,
		Height:  height,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) perPage() int {
	return common.CalculateItemsPerPage(common.CalculateAvailableHeight(m.Height)-1, reelHeight)
}

func (m *Model) refresh() {
	m.Reels = m.Session.Store.ReelViews()
	if m.Selected >= len(m.Reels) {
		m.Selected = max(0, len(m.Reels)-1)
	}
	m.Offset = common.ScrollWindow(m.Selected, min(m.Offset, m.Selected), m.perPage())
}

func (m Model) loadReels(refresh bool) tea.Cmd {
	loader, ctx := m.Session.Loader, m.Session.Ctx
	return common.LoadCmd(func() feed.Result {
		return loader.LoadReels(ctx, refresh)
	})
}

func (m *Model) loadMore() tea.Cmd {
	if !m.trigger.Observe(common.AtEnd(len(m.Reels), m.Offset, m.perPage())) {
		return nil
	}
	if !m.Session.Store.Cursor(store.ReelsKey).CanLoadMore() {
		return nil
	}
	return m.loadReels(false)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case common.ActivateViewMsg:
		m.isActive = true
		m.refresh()
		if len(m.Reels) == 0 {
			m.trigger.Reset()
			return m, m.loadReels(true)
		}
		return m, nil

	case common.DeactivateViewMsg:
		m.isActive = false
		return m, nil

	case common.SettledMsg, common.StoreChangedMsg:
		m.refresh()
		return m, nil

	case common.LoadedMsg:
		if msg.Result.Key != store.ReelsKey {
			return m, nil
		}
		before := len(m.Reels)
		m.refresh()
		if len(m.Reels) > before {
			m.trigger.Reset()
			if m.isActive {
				return m, m.loadMore()
			}
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.Selected > 0 {
				m.Selected--
				m.Offset = common.ScrollWindow(m.Selected, m.Offset, m.perPage())
			}
			return m, m.loadMore()
		case "down", "j":
			if m.Selected < len(m.Reels)-1 {
				m.Selected++
				m.Offset = common.ScrollWindow(m.Selected, m.Offset, m.perPage())
			}
			return m, m.loadMore()
		case "r":
			m.Selected, m.Offset = 0, 0
			m.trigger.Reset()
			return m, m.loadReels(true)
		}

		if m.Selected >= len(m.Reels) {
			return m, nil
		}
		reel := m.Reels[m.Selected]
		switch msg.String() {
		case "l":
			cmd := common.RunTask(m.Session.Controller.LikeReel(reel.Id))
			m.refresh()
			return m, cmd
		case "s":
			cmd := common.RunTask(m.Session.Controller.ToggleSave(reel.Id))
			m.refresh()
			return m, cmd
		case "enter":
			title := fmt.Sprintf("%s: %s", reel.Author.Handle(), util.TruncateWidth(reel.Caption, 40))
			return m, func() tea.Msg {
				return common.OpenCommentsMsg{ParentId: reel.Id, Title: title}
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	cursor := m.Session.Store.Cursor(store.ReelsKey)
	s.WriteString(common.CaptionStyle.Render(fmt.Sprintf("🎬 Reels (%d)", len(m.Reels))))
	s.WriteString("\n")

	if len(m.Reels) == 0 {
		if cursor.Loading {
			s.WriteString(common.ListEmptyStyle.Render("Loading..."))
		} else {
			s.WriteString(common.ListEmptyStyle.Render("No reels yet."))
		}
		return s.String()
	}

	width := common.ContentWidth(m.Width)
	end := min(m.Offset+m.perPage(), len(m.Reels))
	for i := m.Offset; i < end; i++ {
		r := m.Reels[i]
		selected := i == m.Selected

		author := common.AuthorStyle.Render(r.Author.Handle())
		if selected {
			author = common.ListItemSelectedStyle.Render(r.Author.Handle())
		}
		caption := util.TruncateWidth(r.Caption, width/2)
		s.WriteString(fmt.Sprintf("%s%s  %s %s\n", common.Prefix(selected), author, caption, common.SavedMark(r.IsSaved)))
		s.WriteString(fmt.Sprintf("  %s  💬 %s  %s\n\n",
			common.Heart(r.IsLiked, r.TotalLikes),
			common.CounterStyle.Render(fmt.Sprint(r.TotalComments)),
			videoStyle.Render(util.TruncateWidth(r.VideoURL, width/2))))
	}

	if cursor.Loading {
		s.WriteString(common.ListBadgeStyle.Render("  loading more..."))
	}
	return s.String()
}
