package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/feedsync/db"
	"github.com/deemkeen/feedsync/domain"
	"github.com/deemkeen/feedsync/feed"
	"github.com/deemkeen/feedsync/mutation"
	"github.com/deemkeen/feedsync/notify"
	"github.com/deemkeen/feedsync/push"
	"github.com/deemkeen/feedsync/store"
	"github.com/deemkeen/feedsync/transport"
	"github.com/deemkeen/feedsync/ui"
	"github.com/deemkeen/feedsync/ui/common"
	"github.com/deemkeen/feedsync/util"
	"github.com/deemkeen/feedsync/web"
	"golang.org/x/sync/errgroup"
)

// backupRetention is how long an untouched comment backup is kept
const backupRetention = 30 * 24 * time.Hour

// App represents the main application with all its components
type App struct {
	config     *util.AppConfig
	viewer     domain.ActorRef
	store      *store.Store
	bus        *notify.Bus
	controller *mutation.Controller
	loader     *feed.Loader
	inbox      *feed.Inbox
	backup     *db.DB
	push       *push.Client
}

// New creates a new App instance with the given configuration
func New(conf *util.AppConfig) (*App, error) {
	if conf.Conf.ActorId == "" {
		return nil, errors.New("actor_id is required")
	}
	return &App{
		config: conf,
		viewer: domain.ActorRef{Id: conf.Conf.ActorId},
	}, nil
}

// Initialize builds the store and everything around it, restoring the
// comments backup when one is configured
func (a *App) Initialize() error {
	a.store = store.New(a.viewer.Id)
	a.bus = notify.NewBus(a.store)

	client := transport.New(
		a.config.Conf.ApiBaseURL,
		a.config.Conf.AuthToken,
		a.config.Conf.PageSize,
		transport.NewDefaultHTTPClient(a.config.RequestTimeout()),
	)
	a.controller = mutation.NewController(a.store, client, a.bus, a.viewer, a.config.GraceWindow())
	a.loader = feed.New(a.store, client, a.bus, a.controller.Holds)
	a.inbox = feed.NewInbox(client, a.bus)

	if a.config.Conf.PushURL != "" {
		a.push = push.New(a.config.Conf.PushURL, a.config.Conf.AuthToken, a.bus)
	}

	if a.config.Conf.BackupDb != "" {
		backup, err := db.GetDB(a.config.Conf.BackupDb)
		if err != nil {
			return fmt.Errorf("failed to open comments backup: %w", err)
		}
		a.backup = backup
		if err := a.restore(); err != nil {
			log.Printf("Warning: could not restore comments backup: %v", err)
		}
	}
	return nil
}

// restore seeds the store with backed up threads and drops stale ones
func (a *App) restore() error {
	if n, err := a.backup.PruneBefore(time.Now().Add(-backupRetention)); err != nil {
		log.Printf("Pruning comments backup failed: %v", err)
	} else if n > 0 {
		log.Printf("Pruned %d stale comment threads", n)
	}

	err, threads := a.backup.LoadAll()
	if err != nil {
		return err
	}
	for parentId, list := range threads {
		a.store.Apply(store.SeedComments{ParentId: parentId, Comments: list})
	}
	log.Printf("Restored %d comment threads from backup", len(threads))
	return nil
}

// Session bundles what the views share
func (a *App) Session(ctx context.Context) *common.Session {
	return &common.Session{
		Ctx:        ctx,
		Store:      a.store,
		Controller: a.controller,
		Loader:     a.loader,
		Inbox:      a.inbox,
	}
}

// Start runs the UI plus the optional push and inspection servers. It blocks
// until the UI exits or a shutdown signal is received.
func (a *App) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if a.push != nil {
		g.Go(func() error {
			if err := a.push.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				// A rejected token ends the push channel, not the app
				log.Printf("Push channel stopped: %v", err)
			}
			return nil
		})
	}

	if a.config.Conf.WithInspect {
		g.Go(func() error {
			return web.Serve(ctx, a.config, a.store)
		})
	}

	events, unsubscribe := a.bus.Subscribe()
	g.Go(func() error {
		defer unsubscribe()
		var backup ui.CommentBackup
		if a.backup != nil {
			backup = a.backup
		}
		model := ui.NewModel(a.Session(ctx), a.viewer, events, backup, 0, 0)
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		// Quitting the UI stops everything else
		return errQuit
	})

	err := g.Wait()
	if errors.Is(err, errQuit) {
		err = nil
	}
	return errors.Join(err, a.Shutdown())
}

// errQuit cancels the group when the UI exits normally
var errQuit = errors.New("ui quit")

// Shutdown releases the comments backup
func (a *App) Shutdown() error {
	log.Println("Initiating shutdown...")
	if a.backup != nil {
		if err := a.backup.Close(); err != nil {
			log.Printf("Comments backup close error: %v", err)
			return err
		}
	}
	log.Println("All components stopped")
	return nil
}
