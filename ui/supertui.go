package ui

import (
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/mutation"
	"github.com/deemkeen/feedsync/notify"
	"github.com/deemkeen/feedsync/store"
	"github.com/deemkeen/feedsync/ui/commentview"
	"github.com/deemkeen/feedsync/ui/common"
	"github.com/deemkeen/feedsync/ui/feedview"
	"github.com/deemkeen/feedsync/ui/header"
	"github.com/deemkeen/feedsync/ui/notifications"
	"github.com/deemkeen/feedsync/ui/reelview"
)

// pruneInterval is how often expired grace windows are forgotten
const pruneInterval = time.Second

var (
	focusedModelStyle = lipgloss.NewStyle().
		Align(lipgloss.Top, lipgloss.Top).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(common.COLOR_ACCENT)).MarginLeft(1)
)

// CommentBackup persists confirmed comments so they survive a restart
type CommentBackup interface {
	SaveComments(parentId string, comments []domain.Comment) error
	DeleteComments(parentId string) error
}

type MainModel struct {
	width              int
	height             int
	session            *common.Session
	events             <-chan notify.Event
	backup             CommentBackup
	state              common.SessionState
	returnTo           common.SessionState
	headerModel        header.Model
	feedModel          feedview.Model
	reelModel          reelview.Model
	commentModel       commentview.Model
	notificationsModel notifications.Model
	toastSeq           int
}

type pruneTickMsg struct{}

type clearToastMsg struct {
	seq int
}

// NewModel builds the root model. events is a bus subscription owned by the
// caller; backup may be nil.
func NewModel(session *common.Session, viewer domain.ActorRef, events <-chan notify.Event, backup CommentBackup, width, height int) MainModel {
	m := MainModel{state: common.FeedView, returnTo: common.FeedView}
	m.session = session
	m.events = events
	m.backup = backup
	m.headerModel = header.Model{Width: width, Viewer: viewer, UnreadCount: session.Store.Unread()}
	m.feedModel = feedview.InitialModel(session, width, height)
	m.reelModel = reelview.InitialModel(session, width, height)
	m.commentModel = commentview.InitialModel(session, width, height)
	m.notificationsModel = notifications.InitialModel(session, width, height)
	m.width = width
	m.height = height
	return m
}

func (m MainModel) Init() tea.Cmd {
	var cmds []tea.Cmd

	if m.events != nil {
		cmds = append(cmds, common.WaitForEvent(m.events))
	}

	// Feed is the start view
	cmds = append(cmds, func() tea.Msg { return activateMsg{state: common.FeedView} })

	// Saved ids and the unread badge are needed before their views are opened
	loader, ctx := m.session.Loader, m.session.Ctx
	cmds = append(cmds, func() tea.Msg {
		if err := loader.LoadSaved(ctx); err != nil {
			return common.ErrorMsg{Text: err.Error()}
		}
		return common.StoreChangedMsg{}
	})
	cmds = append(cmds, func() tea.Msg {
		loader.RefreshUnread(ctx)
		return common.StoreChangedMsg{}
	})

	cmds = append(cmds, tickPrune())
	return tea.Batch(cmds...)
}

// activateMsg activates one view without touching the others
type activateMsg struct {
	state common.SessionState
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Handle window resize - update all models that use width/height for layout
		m.width = msg.Width
		m.height = msg.Height
		panelWidth := common.CalculatePanelWidth(msg.Width)
		m.headerModel.Width = msg.Width
		m.feedModel.Width, m.feedModel.Height = panelWidth, msg.Height
		m.reelModel.Width, m.reelModel.Height = panelWidth, msg.Height
		m.commentModel.Width, m.commentModel.Height = panelWidth, msg.Height
		m.notificationsModel.Width, m.notificationsModel.Height = panelWidth, msg.Height
		return m, nil

	case activateMsg:
		return m, m.routeTo(msg.state, common.ActivateViewMsg{})

	case pruneTickMsg:
		if n := m.session.Controller.Prune(); n > 0 {
			log.Printf("Pruned %d expired grace windows", n)
		}
		return m, tickPrune()

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.headerModel.Toast = ""
		}
		return m, nil

	case common.ErrorMsg:
		return m, m.toast(msg.Text)

	case common.OutcomeMsg:
		settlement := m.session.Controller.Settle(msg.Outcome)
		if !settlement.Stale {
			cmds = append(cmds, m.backupCmd(settlement))
		}
		msg2 := common.SettledMsg{Settlement: settlement}
		cmds = append(cmds, m.broadcast(msg2)...)
		m.headerModel.UnreadCount = m.session.Store.Unread()
		return m, batch(cmds)

	case common.LoadedMsg:
		if msg.Result.Err != nil {
			cmds = append(cmds, m.toast(fmt.Sprintf("loading %s failed: %v", msg.Result.Key, msg.Result.Err)))
		}
		if m.commentModel.ParentId != "" && msg.Result.Key == store.CommentsKey(m.commentModel.ParentId) && !msg.Result.Skipped {
			cmds = append(cmds, m.backupParent(m.commentModel.ParentId))
		}
		cmds = append(cmds, m.broadcast(msg)...)
		m.headerModel.UnreadCount = m.session.Store.Unread()
		return m, batch(cmds)

	case common.StoreChangedMsg:
		cmds = append(cmds, m.broadcast(msg)...)
		m.headerModel.UnreadCount = m.session.Store.Unread()
		return m, batch(cmds)

	case common.BusMsg:
		cmds = append(cmds, m.handleEvent(msg.Event))
		m.notificationsModel, cmd = m.notificationsModel.Update(msg)
		cmds = append(cmds, cmd)
		// Keep listening
		cmds = append(cmds, common.WaitForEvent(m.events))
		return m, batch(cmds)

	case common.OpenCommentsMsg:
		if m.state != common.CommentsView {
			m.returnTo = m.state
		}
		cmds = append(cmds, m.switchTo(common.CommentsView))
		m.commentModel, cmd = m.commentModel.Update(msg)
		cmds = append(cmds, cmd)
		return m, batch(cmds)

	case common.BackMsg:
		return m, m.switchTo(m.returnTo)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if !m.composing() {
			switch msg.String() {
			case "tab":
				return m, m.switchTo(nextView(m.state, 1))
			case "shift+tab":
				return m, m.switchTo(nextView(m.state, -1))
			case "n":
				if m.state != common.NotificationsView {
					return m, m.switchTo(common.NotificationsView)
				}
			}
		}
		// Route keyboard input ONLY to active model
		return m, m.routeTo(m.state, msg)
	}
	return m, nil
}

// composing reports whether the active view owns all key input
func (m MainModel) composing() bool {
	switch m.state {
	case common.FeedView:
		return m.feedModel.Composing()
	case common.CommentsView:
		return m.commentModel.Composing()
	}
	return false
}

// nextView cycles feed -> reels -> notifications. The comments view is only
// reachable from a post or reel and tabs back to the feed.
func nextView(state common.SessionState, dir int) common.SessionState {
	order := []common.SessionState{common.FeedView, common.ReelsView, common.NotificationsView}
	i := 0
	for j, s := range order {
		if s == state {
			i = j
		}
	}
	if state == common.CommentsView {
		return common.FeedView
	}
	return order[(i+dir+len(order))%len(order)]
}

func (m *MainModel) switchTo(state common.SessionState) tea.Cmd {
	if state == m.state {
		return nil
	}
	var cmds []tea.Cmd
	cmds = append(cmds, m.routeTo(m.state, common.DeactivateViewMsg{}))
	m.state = state
	cmds = append(cmds, m.routeTo(state, common.ActivateViewMsg{}))
	return batch(cmds)
}

// routeTo delivers msg to the model of one view
func (m *MainModel) routeTo(state common.SessionState, msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch state {
	case common.FeedView:
		m.feedModel, cmd = m.feedModel.Update(msg)
	case common.ReelsView:
		m.reelModel, cmd = m.reelModel.Update(msg)
	case common.CommentsView:
		m.commentModel, cmd = m.commentModel.Update(msg)
	case common.NotificationsView:
		m.notificationsModel, cmd = m.notificationsModel.Update(msg)
	}
	return cmd
}

// broadcast delivers msg to every view; each one re-reads the store
func (m *MainModel) broadcast(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	for _, state := range []common.SessionState{common.FeedView, common.ReelsView, common.CommentsView, common.NotificationsView} {
		cmds = append(cmds, m.routeTo(state, msg))
	}
	return cmds
}

func (m *MainModel) handleEvent(e notify.Event) tea.Cmd {
	switch e := e.(type) {
	case notify.NotificationAdded:
		m.headerModel.UnreadCount = e.Unread
	case notify.NotificationsChanged:
		m.headerModel.UnreadCount = e.Unread
	case notify.MutationFailed:
		return m.toast(e.Message())
	case notify.AuthLost:
		m.headerModel.UnreadCount = 0
		return m.toast("signed out, please log in again")
	case notify.Connection:
		m.headerModel.Connected = e.Connected
	case notify.CallInvite:
		return m.toast(fmt.Sprintf("📞 %s is calling (%s)", e.Invite.Caller.Handle(), e.Invite.Media))
	case notify.CallResponse:
		if e.Response.Accepted {
			return m.toast("📞 call accepted")
		}
		return m.toast("📞 call declined")
	}
	return nil
}

func (m *MainModel) toast(text string) tea.Cmd {
	m.toastSeq++
	m.headerModel.Toast = text
	seq := m.toastSeq
	return tea.Tick(common.ToastSeconds*time.Second, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}

// backupCmd snapshots the comments touched by a settled comment mutation and
// drops the thread of a deleted post
func (m MainModel) backupCmd(settlement mutation.Settlement) tea.Cmd {
	switch settlement.Key.Kind {
	case mutation.CreateComment, mutation.EditComment, mutation.DeleteComment, mutation.LikeComment:
	case mutation.DeletePost:
		if settlement.State != mutation.Committed {
			return nil
		}
		return m.dropParent(settlement.Key.Id)
	default:
		return nil
	}
	if m.commentModel.ParentId == "" {
		return nil
	}
	return m.backupParent(m.commentModel.ParentId)
}

func (m MainModel) backupParent(parentId string) tea.Cmd {
	if m.backup == nil {
		return nil
	}
	backup := m.backup
	list := m.session.Store.Comments(parentId)
	return func() tea.Msg {
		if err := backup.SaveComments(parentId, list); err != nil {
			log.Printf("Comment backup for %s failed: %v", parentId, err)
		}
		return nil
	}
}

func (m MainModel) dropParent(parentId string) tea.Cmd {
	if m.backup == nil {
		return nil
	}
	backup := m.backup
	return func() tea.Msg {
		if err := backup.DeleteComments(parentId); err != nil {
			log.Printf("Dropping comment backup for %s failed: %v", parentId, err)
		}
		return nil
	}
}

func tickPrune() tea.Cmd {
	return tea.Tick(pruneInterval, func(time.Time) tea.Msg {
		return pruneTickMsg{}
	})
}

// batch filters out nil commands to minimize tea.Batch() goroutine accumulation
func batch(cmds []tea.Cmd) tea.Cmd {
	var nonNilCmds []tea.Cmd
	for _, cmd := range cmds {
		if cmd != nil {
			nonNilCmds = append(nonNilCmds, cmd)
		}
	}
	switch len(nonNilCmds) {
	case 0:
		return nil
	case 1:
		return nonNilCmds[0]
	default:
		return tea.Batch(nonNilCmds...)
	}
}

func (m MainModel) View() string {
	if m.width < common.MinWidth || m.height < common.MinHeight {
		message := fmt.Sprintf(
			"Terminal too small!\n\nMinimum required: %dx%d\nCurrent size: %dx%d\n\nPlease resize your terminal.",
			common.MinWidth, common.MinHeight, m.width, m.height,
		)
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(lipgloss.Color(common.COLOR_CRITICAL)).
			Bold(true).
			Render(message)
	}

	var s string
	s += m.headerModel.View() + "\n"

	availableHeight := common.CalculateAvailableHeight(m.height)
	panelWidth := common.CalculatePanelWidth(m.width)

	var body string
	switch m.state {
	case common.FeedView:
		body = m.feedModel.View()
	case common.ReelsView:
		body = m.reelModel.View()
	case common.CommentsView:
		body = m.commentModel.View()
	case common.NotificationsView:
		body = m.notificationsModel.View()
	}

	s += focusedModelStyle.Render(lipgloss.NewStyle().
		MaxHeight(availableHeight).
		Height(availableHeight).
		Width(panelWidth).
		MaxWidth(panelWidth).
		Render(body))
	s += "\n"

	// Help text
	var viewCommands string
	switch m.state {
	case common.FeedView:
		viewCommands = "↑/↓ • l: ♥ • s: save • c: comment • enter: comments • x: delete • r: refresh"
	case common.ReelsView:
		viewCommands = "↑/↓ • l: ♥ • s: save • enter: comments • r: refresh"
	case common.CommentsView:
		viewCommands = "↑/↓ • c: write • e: edit • x: delete • l: ♥ • m: more • esc: back"
	case common.NotificationsView:
		viewCommands = "j/k: nav • enter: read • a: read all • d: delete • D: delete all"
	}
	if m.composing() {
		viewCommands = "enter: send • esc: cancel"
	}

	helpText := fmt.Sprintf("focused > %s\t\tkeys > tab: next • n: notifications • %s • ctrl-c: exit", m.state, viewCommands)
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(common.COLOR_HELP)).
		Width(m.width).
		Align(lipgloss.Center)

	// Calculate remaining vertical space and add it before footer
	currentContentHeight := availableHeight + common.PanelMarginVertical
	remainingHeight := m.height - common.HeaderHeight - common.HeaderNewline - currentContentHeight - common.FooterHeight
	if remainingHeight > 0 {
		s += strings.Repeat("\n", remainingHeight)
	}

	s += helpStyle.Render(helpText)
	return s
}
