package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/generation"
	"github.com/phrazzld/memoria/internal/notify"
	"github.com/phrazzld/memoria/internal/platform/generationapi"
	"github.com/phrazzld/memoria/internal/store"
	"github.com/phrazzld/memoria/internal/studysync"
)

// LocalUserID owns the sets of a memory-backed client that has not logged in.
const LocalUserID = "local"

// Accounts is the account API of the generation backend.
type Accounts interface {
	Register(ctx context.Context, email, password string) (generationapi.Credentials, error)
	Login(ctx context.Context, email, password string) (generationapi.Credentials, error)
}

// Option configures an App.
type Option func(*App)

// WithGenerator sets the generation client used by the generate command.
func WithGenerator(g generation.Client) Option {
	return func(a *App) { a.generator = g }
}

// WithAccounts sets the account client used by the auth commands.
func WithAccounts(acc Accounts) Option {
	return func(a *App) { a.accounts = acc }
}

// WithSessionFile sets where the login session is kept.
func WithSessionFile(f *SessionFile) Option {
	return func(a *App) { a.sessions = f }
}

// WithLocalSession lets commands run as LocalUserID when nobody is logged in.
// Only meaningful with the in-memory store.
func WithLocalSession() Option {
	return func(a *App) { a.localSession = true }
}

// WithNotificationTTL sets how long failures stay listed by "notices".
func WithNotificationTTL(ttl time.Duration) Option {
	return func(a *App) { a.ttl = ttl }
}

// WithIO replaces stdin, stdout and stderr.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *App) {
		a.in, a.out, a.errOut = in, out, errOut
	}
}

// WithLogger sets the logger handed to the controller.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// App holds what the commands share. The controller, and with it the active
// set, lives as long as the App, so it survives between shell lines.
type App struct {
	store        store.StudySetStore
	generator    generation.Client
	accounts     Accounts
	sessions     *SessionFile
	localSession bool
	ttl          time.Duration
	notices      *notify.Center
	logger       *slog.Logger

	in     io.Reader
	lines  *bufio.Reader
	out    io.Writer
	errOut io.Writer

	mu   sync.Mutex
	ctrl *studysync.Controller
}

// NewApp creates an App on top of st. It panics if st is nil.
func NewApp(st store.StudySetStore, opts ...Option) *App {
	if st == nil {
		panic("cli: NewApp requires a study set store")
	}
	a := &App{
		store:  st,
		ttl:    5 * time.Second,
		logger: slog.Default(),
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.lines = bufio.NewReader(a.in)
	a.notices = notify.NewCenter(a.ttl, notify.WithLogger(a.logger))
	a.notices.Subscribe(notify.HandlerFunc(func(_ context.Context, n notify.Notification) {
		fmt.Fprintf(a.errOut, "error (%s): %s\n", n.Kind, n.Message)
	}))
	return a
}

// Notifications returns the center failures are published to.
func (a *App) Notifications() *notify.Center {
	return a.notices
}

// session returns the logged-in session, or the local one when allowed.
func (a *App) session() (domain.Session, error) {
	if a.sessions != nil {
		creds, err := a.sessions.Load()
		if err == nil {
			return creds.Session(), nil
		}
		if !errors.Is(err, ErrNotLoggedIn) {
			return domain.Session{}, err
		}
	}
	if a.localSession {
		return domain.Session{UserID: LocalUserID}, nil
	}
	return domain.Session{}, ErrNotLoggedIn
}

// controller returns the shared controller, switching it to the current
// session when that changed.
func (a *App) controller() (*studysync.Controller, error) {
	sess, err := a.session()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctrl == nil {
		a.ctrl = studysync.New(a.store, sess,
			studysync.WithGenerator(a.generator),
			studysync.WithNotifications(a.notices),
			studysync.WithLogger(a.logger))
		return a.ctrl, nil
	}
	if a.ctrl.Session() != sess {
		a.ctrl.SetSession(sess)
	}
	return a.ctrl, nil
}

// selectSet makes id active. Without an id the current active set is kept,
// and it is an error to have none.
func (a *App) selectSet(ctx context.Context, ctrl *studysync.Controller, id string) error {
	if id == "" {
		if ctrl.Snapshot().ActiveSet == nil {
			return studysync.ErrNoActiveSet
		}
		return nil
	}
	if _, err := ctrl.LoadSets(ctx); err != nil {
		return err
	}
	return a.dispatch(ctx, ctrl, studysync.SelectSet{ID: id})
}

func (a *App) dispatch(ctx context.Context, ctrl *studysync.Controller, cmd studysync.Command) error {
	if err := ctrl.Dispatch(ctx, cmd); err != nil {
		return reportedError{err: err}
	}
	return nil
}

// runE adapts fn to cobra and publishes any failure that has not been
// published yet.
func (a *App) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil || IsReported(err) || errors.Is(err, context.Canceled) {
			return err
		}
		a.notices.PublishError(cmd.Context(), err)
		return reportedError{err: err}
	}
}

// reportedError marks a failure already shown to the user.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// IsReported reports whether err has already been printed as a notification.
func IsReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}
