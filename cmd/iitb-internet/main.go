package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"iitb-internet/internal/config"
	"iitb-internet/internal/metrics"
	"iitb-internet/internal/model"
	"iitb-internet/internal/portal"
	"iitb-internet/internal/session"
	"iitb-internet/internal/storage"
)

const failedMessage = "Command Failed. Check error logs for more information."

type controller interface {
	Status(ctx context.Context) (model.LoginStatus, error)
	Login(ctx context.Context, username, password string) (model.Outcome, error)
	Logout(ctx context.Context) (model.Outcome, error)
}

type app struct {
	configPath string
	verbose    bool
	status     bool
	login      string
	loginSet   bool
	logout     bool
	history    int64

	stdout io.Writer
	stderr io.Writer
	prompt func(io.Writer) (string, error)
	now    func() time.Time

	// set by tests; built from config otherwise
	logger     *zap.Logger
	controller controller
	store      storage.History

	code exitCode
}

func main() {
	os.Exit(int(execute(os.Args[1:], os.Stdout, os.Stderr)))
}

func execute(args []string, stdout, stderr io.Writer) exitCode {
	a := &app{stdout: stdout, stderr: stderr, prompt: stdinPrompt, now: time.Now}
	return a.execute(args)
}

func (a *app) execute(args []string) exitCode {
	cmd := a.command()
	cmd.SetArgs(args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		return exitBadInvocation
	}
	return a.code
}

func (a *app) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iitb-internet",
		Short: "Login and logout of the IIT Bombay internet access page",
		Long: `Tool to login and logout of the IIT Bombay internet access page.

Without flags the current login status is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.loginSet = cmd.Flags().Changed("login")
			if a.loginSet && strings.TrimSpace(a.login) == "" {
				return errors.New("--login needs a non-empty USERNAME")
			}
			cmd.SilenceUsage = true
			a.code = a.run(cmd.Context())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output")

	cmd.Flags().BoolVar(&a.status, "status", false, "current login status")
	cmd.Flags().StringVar(&a.login, "login", "", "login to IIT Bombay internet access page as `USERNAME`")
	cmd.Flags().BoolVar(&a.logout, "logout", false, "logout of IIT Bombay internet access page")
	cmd.Flags().Int64Var(&a.history, "history", 0, "show the last `N` recorded logins and logouts")
	cmd.MarkFlagsMutuallyExclusive("status", "login", "logout", "history")
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.DisableStacktrace = !verbose
	if !verbose {
		logConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return logConfig.Build()
}

func (a *app) run(ctx context.Context) exitCode {
	if a.logger == nil {
		logger, err := newLogger(a.verbose)
		if err != nil {
			fmt.Fprintf(a.stderr, "failed to initialize logger: %v\n", err)
			return exitUnknownError
		}
		defer logger.Sync()
		a.logger = logger
	}

	cfg, err := config.LoadFile(a.configPath)
	if err != nil {
		a.logger.Error("Config load failed", zap.Error(err))
		fmt.Fprintln(a.stdout, failedMessage)
		return exitBadInvocation
	}
	defer func() {
		if err := metrics.WriteFile(cfg.MetricsFile); err != nil {
			a.logger.Warn("Metrics write failed", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}()

	if a.controller == nil {
		client := portal.NewClient(cfg.RequestInterval, a.logger)
		locator := portal.NewLocator(cfg.Host(), nil, a.logger)
		a.controller = session.New(client, locator, a.logger)
	}
	if a.store == nil {
		store, err := storage.Open(ctx, cfg)
		if err != nil {
			a.logger.Warn("History disabled", zap.Error(err))
			if a.history > 0 {
				fmt.Fprintln(a.stdout, failedMessage)
				return codeFor(err)
			}
			store = storage.Nop{}
		}
		defer store.Close()
		a.store = store
	}

	msg, code, err := a.dispatch(ctx)
	if err != nil {
		a.logger.Error("Command failed", zap.Error(err), zap.Stringer("kind", model.KindOf(err)))
		msg, code = failedMessage, codeFor(err)
	}
	fmt.Fprintln(a.stdout, msg)
	return code
}

func (a *app) dispatch(ctx context.Context) (string, exitCode, error) {
	switch {
	case a.logout:
		out, err := a.controller.Logout(ctx)
		if err != nil {
			return "", 0, err
		}
		a.record(ctx, "logout", out)
		return out.Message, outcomeCode(out), nil

	case a.loginSet:
		password, err := a.prompt(a.stderr)
		if err != nil {
			return "", 0, err
		}
		out, err := a.controller.Login(ctx, a.login, password)
		if err != nil {
			return "", 0, err
		}
		a.record(ctx, "login", out)
		return out.Message, outcomeCode(out), nil

	case a.history > 0:
		events, err := a.store.Recent(ctx, a.history)
		if err != nil {
			return "", 0, err
		}
		if len(events) == 0 {
			return "No history recorded.", exitSuccess, nil
		}
		for _, e := range events[:len(events)-1] {
			fmt.Fprintln(a.stdout, formatEvent(e))
		}
		return formatEvent(events[len(events)-1]), exitSuccess, nil

	default:
		st, err := a.controller.Status(ctx)
		if err != nil {
			return "", 0, err
		}
		if st.LoggedIn {
			return fmt.Sprintf("Logged in as %s.", st.User), exitSuccess, nil
		}
		return "Not logged in.", exitSuccess, nil
	}
}

func (a *app) record(ctx context.Context, action string, out model.Outcome) {
	e := model.Event{
		Time:      a.now().UTC(),
		Action:    action,
		User:      out.User,
		IP:        out.IP,
		Succeeded: out.Succeeded,
		Message:   out.Message,
	}
	if err := a.store.Record(ctx, e); err != nil {
		a.logger.Warn("History record failed", zap.String("action", action), zap.Error(err))
	}
}

func formatEvent(e model.Event) string {
	return fmt.Sprintf("%s  %-6s  %-6s  %s", e.Time.Local().Format(time.DateTime), e.Action, e.Result(), e.Message)
}

func outcomeCode(out model.Outcome) exitCode {
	if out.Succeeded {
		return exitSuccess
	}
	return exitFailure
}
