package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/dealwatch/internal/client/client"
	"github.com/dmitrijs2005/dealwatch/internal/client/config"
	"github.com/dmitrijs2005/dealwatch/internal/client/models"
	"github.com/dmitrijs2005/dealwatch/internal/client/services"
	"github.com/dmitrijs2005/dealwatch/internal/client/signer"
	"github.com/dmitrijs2005/dealwatch/internal/logging"
	"github.com/dmitrijs2005/dealwatch/internal/metrics"
	"github.com/dmitrijs2005/dealwatch/internal/netx"
	"golang.org/x/term"
)

// dispatcher is the part of services.Dispatcher the App uses.
type dispatcher interface {
	Dispatch(ctx context.Context, a services.Action) (signer.Receipt, error)
	Invalidations() <-chan services.Invalidation
}

// viewRef remembers what the user looked at last so it can be reloaded.
type viewRef struct {
	kinds []models.Kind
	roles models.RoleSet
	raw   string

	// show mode when id is set
	kind models.Kind
	id   string
}

func (r viewRef) isShow() bool { return r.id != "" }

// key identifies the request in the result slots.
func (r viewRef) key() string {
	if r.isShow() {
		return string(r.kind) + "/" + r.id
	}
	return r.raw
}

type App struct {
	config     *config.Config
	reconciler services.Reconciler
	dispatcher dispatcher
	metrics    *metrics.Registry
	log        logging.Logger

	out io.Writer
	now func() time.Time

	lists   services.Slot[[]models.View]
	details services.Slot[*models.View]
	current *viewRef

	closer io.Closer
}

// NewApp connects to the node described by c and wires the services.
func NewApp(c *config.Config, log logging.Logger, m *metrics.Registry) (*App, error) {
	events := client.NewEventClient(c.RPCURL, c.APIToken, c.EventPageSize, m)

	objects, err := client.NewObjectClient(c.GRPCAddr, c.APIToken, c.GRPCInsecure, m)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", c.GRPCAddr, err)
	}

	rec := services.NewReconciler(events, objects, c.PackageID, log, m)
	sig := signer.NewCLISigner(c.SuiBinary, c.GasBudget, log)
	disp := services.NewDispatcher(sig, c.PackageID, log, m)

	a := newApp(c, rec, disp, log, m, os.Stdout)
	a.closer = objects
	return a, nil
}

func newApp(c *config.Config, rec services.Reconciler, disp dispatcher, log logging.Logger, m *metrics.Registry, out io.Writer) *App {
	return &App{
		config:     c,
		reconciler: rec,
		dispatcher: disp,
		metrics:    m,
		log:        log,
		out:        out,
		now:        time.Now,
	}
}

func (a *App) status() string {
	s := models.ShortAddress(a.config.Address)
	if a.current != nil {
		if a.current.isShow() {
			s += " " + string(a.current.kind) + " " + models.ShortAddress(a.current.id)
			if v, key, ok := a.details.Current(); ok && key == a.current.key() && v != nil {
				s += " " + string(v.Deal.State)
			}
		} else {
			s += " " + a.current.raw
			if views, key, ok := a.lists.Current(); ok && key == a.current.key() {
				s += fmt.Sprintf(" [%d]", len(views))
			}
		}
	}
	return fmt.Sprintf("dw (%s)> ", s)
}

func (a *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (a *App) startMetricsServer(ctx context.Context) {
	if err := netx.ListenAndServe(ctx, a.config.MetricsAddr, a.metrics.Handler(), a.log); err != nil {
		a.log.Error(ctx, "metrics server stopped", "error", err)
	}
}

// Run starts the REPL on standard input and blocks until the user exits,
// input ends or the process is signalled.
func (a *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	a.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	if a.config.MetricsAddr != "" && a.metrics != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.startMetricsServer(ctx)
		}()
	}

	var prompt func() string
	if term.IsTerminal(int(os.Stdin.Fd())) {
		printlnFn("Welcome to dealwatch (type 'help' for commands)")
		prompt = a.status
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		runREPL(ctx, a, prompt, bufio.NewScanner(os.Stdin))
	}()

	select {
	case <-done:
	case <-ctx.Done():
		printlnFn("Bye!")
	}

	cancelFunc()
	wg.Wait()

	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			a.log.Warn(ctx, "close object client", "error", err)
		}
	}
}
