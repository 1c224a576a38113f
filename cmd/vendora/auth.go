package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naveenspark/vendora/internal/validate"
	"github.com/naveenspark/vendora/pkg/api"
)

func newLoginCmd(d *deps) *cobra.Command {
	var email string
	var passwordStdin bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Long: `Sign in and store the session in ~/.vendora/session.json.

Without flags the interactive console opens on its sign-in screen.

Examples:
  vendora login
  echo "$PASSWORD" | vendora login --email ada@example.com --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" && !passwordStdin {
				if d.store.IsAuthenticated() {
					u := d.store.Session().User
					fmt.Fprintf(out(cmd), "Already signed in as %s. Run `vendora logout` first to switch accounts.\n", u.Email)
					return nil
				}
				return d.runTUI()
			}
			if email == "" || !passwordStdin {
				return errors.New("--email and --password-stdin are used together")
			}
			password, err := readLine(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			return d.login(cmd, api.Credentials{Email: strings.TrimSpace(email), Password: password})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func (d *deps) login(cmd *cobra.Command, creds api.Credentials) error {
	if err := validate.Struct(creds); err != nil {
		return err
	}
	res, err := d.api.Login(cmd.Context(), creds)
	if err != nil {
		return friendly(err)
	}
	if err := d.store.Login(res.Token, res.User); err != nil {
		return err
	}
	d.log.WithField("user_id", res.User.ID).Info("signed in")

	if d.flags.jsonOut {
		return printJSON(out(cmd), res.User)
	}
	fmt.Fprintf(out(cmd), "%s Signed in as %s (%s)\n", okStyle.Render("✓"), res.User.FullName, res.User.Role)
	return nil
}

func newLogoutCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !d.store.IsAuthenticated() {
				fmt.Fprintln(out(cmd), "Already signed out.")
				return nil
			}
			if err := d.store.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(out(cmd), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := d.token()
			if err != nil {
				return err
			}
			me, err := d.api.Me(cmd.Context(), tok)
			if err != nil {
				return friendly(err)
			}
			if d.flags.jsonOut {
				return printJSON(out(cmd), me)
			}
			w := out(cmd)
			fmt.Fprintln(w, titleStyle.Render(me.FullName))
			printField(w, "email", me.Email)
			printField(w, "role", me.Role)
			printField(w, "api", d.cfg.API.URL)
			if exp, ok := d.store.ExpiresAt(); ok && d.cfg.Token == "" {
				printField(w, "expires", day(exp))
			}
			if d.cfg.Token != "" {
				printField(w, "token", "from VENDORA_TOKEN")
			}
			return nil
		},
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks a yes/no question on w and reads the answer from r.
func confirm(r io.Reader, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s %s [y/N]: ", warnStyle.Render("⚠"), question)
	answer, err := readLine(r)
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
