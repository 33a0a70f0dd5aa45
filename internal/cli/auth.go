package cli

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lucidpack/pkg/lucidapi"
	"github.com/matzehuels/lucidpack/pkg/session"
)

// loginTimeout bounds how long login waits for the browser redirect.
const loginTimeout = 5 * time.Minute

// loginCommand creates the login command.
func (c *CLI) loginCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize lucidpack to create documents in your Lucid account",
		Long: `Start the OAuth authorization-code flow.

A browser opens on Lucid's consent page and a local server receives the
redirect on 127.0.0.1:<oauth.redirect_port>. The redirect URL registered for
your OAuth client must match. The session is stored in
~/.config/lucidpack/sessions/.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := session.NewFileStore("")
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			if !force {
				if existing, _ := store.Get(ctx, session.DefaultID); existing.IsValid(0) {
					printInfo("Already logged in")
					printDetail("Run '%s login --force' to re-authenticate", appName)
					return nil
				}
			}
			return c.runLogin(ctx, store)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "log in again even if a session exists")
	return cmd
}

// logoutCommand creates the logout command.
func (c *CLI) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored Lucid credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := session.NewFileStore("")
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			if err := store.Delete(cmd.Context(), session.DefaultID); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Logged out")
			return nil
		},
	}
}

// whoamiCommand creates the whoami command.
func (c *CLI) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored Lucid session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.session(cmd.Context())
			if err != nil {
				return err
			}

			printSuccess("Lucid Session")
			if len(sess.Scopes()) > 0 {
				printKeyValue("Scopes", strings.Join(sess.Scopes(), " "))
			}
			printKeyValue("Logged in", sess.CreatedAt.Format("Jan 2, 2006"))
			if sess.ExpiresAt.IsZero() {
				printKeyValue("Expires", "never")
			} else {
				printKeyValue("Expires", humanize.Time(sess.ExpiresAt))
			}
			if sess.RefreshToken != "" {
				printKeyValue("Refresh", "yes")
			}
			return nil
		},
	}
}

// =============================================================================
// Authorization Code Flow
// =============================================================================

func (c *CLI) runLogin(ctx context.Context, store session.Store) error {
	cfg := c.oauthConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	loginCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	printNewline()
	fmt.Println(StyleTitle.Render("Lucid Authorization"))
	printNewline()

	tok, err := lucidapi.Login(loginCtx, cfg, lucidapi.LoginOptions{
		Port: c.cfg.OAuth.RedirectPort,
		Open: func(authURL string) error {
			printKeyValue("URL", StyleLink.Render(authURL))
			printNewline()
			if err := openBrowser(authURL); err != nil {
				printDetail("Copy the URL above and paste it in your browser")
				return err
			}
			printDetail("Opening browser...")
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	sess := session.FromToken(session.DefaultID, tok)
	if err := store.Set(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	printSuccess("Logged in")
	if !sess.ExpiresAt.IsZero() {
		printDetail("Access token expires %s", humanize.Time(sess.ExpiresAt))
	}
	return nil
}

func openBrowser(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", rawURL)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
