package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/pkg/api"
	"github.com/taskdeck/taskdeck/pkg/config"
	"github.com/taskdeck/taskdeck/pkg/credstore"
	"github.com/taskdeck/taskdeck/pkg/directory"
	"github.com/taskdeck/taskdeck/pkg/events"
	"github.com/taskdeck/taskdeck/pkg/guard"
	"github.com/taskdeck/taskdeck/pkg/log"
	"github.com/taskdeck/taskdeck/pkg/session"
	"github.com/taskdeck/taskdeck/pkg/taskstore"
	"github.com/taskdeck/taskdeck/pkg/types"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "taskdeck",
	Short: "Taskdeck - shared task board client",
	Long: `Taskdeck is a command-line client for the shared task board.

It keeps a synchronized local view of the board: an authenticated
session, the task collection with optimistic mutations, and a cached
user directory for resolving assignees.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.taskdeck/config.yaml)")
	rootCmd.PersistentFlags().String("server", "", "Backend URL (overrides config)")
	rootCmd.PersistentFlags().Bool("json-log", false, "Emit JSON logs")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(watchCmd)
}

// app bundles the wired client-side components for one CLI invocation.
type app struct {
	cfg      config.Config
	client   *api.Client
	sessions *session.Manager
	resolver *directory.Resolver
	store    *taskstore.Store
	broker   *events.Broker
	creds    *credstore.Store
}

// newApp loads config, initializes logging and wires the component
// graph. The session starts in Loading; callers that need an identity
// run Initialize themselves.
func newApp(cmd *cobra.Command) (*app, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	if server, _ := cmd.Flags().GetString("server"); server != "" {
		cfg.Server.URL = server
	}
	jsonLog, _ := cmd.Flags().GetBool("json-log")

	log.Init(log.Config{
		Level:      log.Level(cfg.Log.Level),
		JSONOutput: cfg.Log.JSON || jsonLog,
		Output:     os.Stderr,
	})

	creds, err := credstore.Open(filepath.Join(config.DataDir(), "credentials.db"))
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(cfg.Server.URL,
		api.WithTimeout(cfg.Server.Timeout()),
		api.WithCookieStore(creds),
	)
	if err != nil {
		creds.Close()
		return nil, err
	}

	broker := events.NewBroker()
	broker.Start()

	resolver := directory.NewResolver(client, directory.WithEvents(broker))
	a := &app{
		cfg:      cfg,
		client:   client,
		sessions: session.NewManager(client, session.WithEvents(broker)),
		resolver: resolver,
		store:    taskstore.New(client, resolver, taskstore.WithEvents(broker)),
		broker:   broker,
		creds:    creds,
	}
	return a, nil
}

func (a *app) close() {
	a.store.Close()
	a.sessions.Close()
	a.broker.Stop()
	a.creds.Close()
}

// requireSession initializes the session and applies the route guard.
// It returns an error for anonymous sessions. The role gate is
// advisory: a USER running an admin command gets a warning, not a
// refusal, because the backend enforces authorization anyway.
func (a *app) requireSession(ctx context.Context, role types.Role) error {
	a.sessions.Initialize(ctx)

	switch guard.Check(a.sessions, role) {
	case guard.DecisionRender:
		return nil
	case guard.DecisionRedirectLogin:
		return fmt.Errorf("not logged in (run 'taskdeck login')")
	case guard.DecisionRedirectUnauthorized:
		fmt.Fprintln(os.Stderr, "Warning: this action normally requires the ADMIN role; the server may reject it.")
		return nil
	default:
		return fmt.Errorf("session not ready")
	}
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the task board",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if email == "" {
			email = prompt("Email: ")
		}
		if password == "" {
			password = prompt("Password: ")
		}

		a.sessions.Initialize(cmd.Context())
		resp, err := a.sessions.Login(cmd.Context(), types.Credentials{
			Email:    email,
			Password: password,
		})
		if err != nil {
			return fmt.Errorf("login failed: %v", err)
		}

		fmt.Printf("✓ Logged in as %s (%s)\n", resp.User.Name, resp.User.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		a.sessions.Initialize(cmd.Context())
		a.sessions.Logout(cmd.Context())
		fmt.Println("✓ Logged out")
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		roleFlag, _ := cmd.Flags().GetString("role")

		role := types.Role(strings.ToUpper(roleFlag))
		if !role.Valid() {
			return fmt.Errorf("invalid role %q (want ADMIN or USER)", roleFlag)
		}

		err = a.client.Register(cmd.Context(), types.Registration{
			Name:     name,
			Email:    email,
			Password: password,
			Role:     role,
		})
		if err != nil {
			return fmt.Errorf("registration failed: %v", err)
		}

		fmt.Printf("✓ Account created for %s. Run 'taskdeck login' to sign in.\n", email)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		a.sessions.Initialize(cmd.Context())
		user, ok := a.sessions.CurrentUser()
		if !ok {
			fmt.Println("Not logged in")
			return nil
		}
		fmt.Printf("%s <%s> (%s)\n", user.Name, user.Email, user.Role)
		return nil
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List the user directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.requireSession(cmd.Context(), ""); err != nil {
			return err
		}

		a.resolver.Fetch(cmd.Context())
		if a.resolver.Degraded() {
			fmt.Fprintln(os.Stderr, "Warning: directory service degraded, showing built-in fallback users.")
		}
		for _, u := range a.resolver.Users() {
			fmt.Printf("%-38s %-6s %s <%s>\n", u.ID, u.Role, u.Name, u.Email)
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password")

	registerCmd.Flags().String("name", "", "Display name")
	registerCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().String("password", "", "Account password")
	registerCmd.Flags().String("role", "USER", "Account role (ADMIN or USER)")
	_ = registerCmd.MarkFlagRequired("name")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
