// Command keyadmin manages invite codes and the platform session from the
// shell, against the same store the server uses.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"groupkeeper-backend/internal/app"
	"groupkeeper-backend/internal/config"
	"groupkeeper-backend/internal/jobs"
	"groupkeeper-backend/internal/logger"
)

const usage = `usage: keyadmin [-config path] <command> [flags]

commands:
  generate -n N [-length L]   mint N invite codes and print them
  list                        print unused codes
  wipe -yes                   delete every code, used or not
  check-session               verify the platform session cookie
  token -sub NAME [-roles a,b] mint a front-end access token
  run-job NAME                run a scheduled job once (check-session, report-active-codes, all)
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "keyadmin: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	global := flag.NewFlagSet("keyadmin", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	configPath := global.String("config", "config/config.dev.yaml", "Path to configuration file")
	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if global.NArg() == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.SetAuditChannel(cfg.Audit.ChannelID)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	command, rest := global.Arg(0), global.Args()[1:]
	switch command {
	case "generate":
		return runGenerate(ctx, a, rest, stdout)
	case "list":
		return runList(ctx, a, stdout)
	case "wipe":
		return runWipe(ctx, a, rest, stdout)
	case "check-session":
		return runCheckSession(ctx, a, stdout)
	case "token":
		return runToken(a, rest, stdout)
	case "run-job":
		return runJob(a, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func runGenerate(ctx context.Context, a *app.App, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	n := fs.Int("n", 1, "number of codes")
	length := fs.Int("length", 0, "code length (0 uses the configured default)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	codes, err := a.Keys.Generate(ctx, *n, *length)
	for _, code := range codes {
		fmt.Fprintln(stdout, code)
	}
	return err
}

func runList(ctx context.Context, a *app.App, stdout io.Writer) error {
	codes, err := a.Keys.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, code := range codes {
		fmt.Fprintln(stdout, code.Code)
	}
	return nil
}

func runWipe(ctx context.Context, a *app.App, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("wipe", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	yes := fs.Bool("yes", false, "confirm deletion of every code")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if !*yes {
		return fmt.Errorf("%w: wipe deletes every code; pass -yes to confirm", errUsage)
	}

	n, err := a.Keys.Wipe(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "removed %d codes\n", n)
	return nil
}

func runCheckSession(ctx context.Context, a *app.App, stdout io.Writer) error {
	user, err := a.Session.Check(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "session valid: %s (%d)\n", user.Name, user.ID)
	return nil
}

func runToken(a *app.App, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	subject := fs.String("sub", "", "token subject, e.g. the front-end name")
	roles := fs.String("roles", "member", "comma separated roles")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *subject == "" {
		return fmt.Errorf("%w: -sub is required", errUsage)
	}

	var roleList []string
	for _, r := range strings.Split(*roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roleList = append(roleList, r)
		}
	}

	token, err := a.Tokens.GenerateAccessToken(*subject, roleList)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, token)
	return nil
}

func runJob(a *app.App, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: run-job takes one job name", errUsage)
	}
	runner := jobs.NewJobRunner(&jobs.Services{Session: a.Session, Keys: a.Keys}, a.Metrics, a.Config)

	switch args[0] {
	case "check-session":
		runner.CheckSession()
	case "report-active-codes":
		runner.ReportActiveCodes()
	case "all":
		runner.RunAll()
	default:
		return fmt.Errorf("%w: unknown job %q", errUsage, args[0])
	}
	return nil
}
