package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/minibank/internal/client/client"
	"github.com/dmitrijs2005/minibank/internal/client/config"
	"github.com/dmitrijs2005/minibank/internal/client/services"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	auth   services.AuthService
	bank   services.BankService
	reader *bufio.Reader
	out    io.Writer

	mu      sync.Mutex
	mode    Mode
	session *services.Session
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	db, err := client.InitDatabase(ctx, c.SessionDBPath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient, err := client.NewBankClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config: c,
		auth:   services.NewAuthService(apiClient, db),
		bank:   services.NewBankService(apiClient, c.StatementsDir),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) currentSession() *services.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

func (a *App) setSession(s *services.Session) {
	a.mu.Lock()
	a.session = s
	a.mu.Unlock()
}

func (a *App) isLoggedIn() bool {
	return a.currentSession() != nil
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ""
	if a.session != nil {
		s = a.session.Username + " "
	}
	s += string(a.mode)
	if s != "" {
		s = "(" + s + ")"
	}
	return s
}

// requestContext bounds a single server call by the configured timeout.
func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.auth.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// Run restores a saved session and serves the REPL on stdin until exit.
func (a *App) Run(ctx context.Context) {
	defer a.auth.Close(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Println("Welcome to minibank CLI (type 'help' for commands)")

	rctx, rcancel := a.requestContext(ctx)
	s, err := a.auth.Restore(rctx)
	rcancel()
	if err != nil {
		log.Printf("session restore failed: %v", err)
	}
	if s != nil {
		a.setSession(s)
		log.Printf("Restored session for %s", s.Username)
	}

	if a.config.OnlineCheckInterval > 0 {
		go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}
