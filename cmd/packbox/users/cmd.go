package users

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andrebq/packbox/auth"
	"github.com/andrebq/packbox/internal/cmdflags"
	"github.com/andrebq/packbox/internal/logutil"
	"github.com/andrebq/packbox/store"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage the accounts allowed to use the api",
		Subcommands: []*cli.Command{
			addCmd(),
		},
	}
}

func addCmd() *cli.Command {
	var username string
	return &cli.Command{
		Name:  "add",
		Usage: "Register a new user (password is read from the terminal or the first line of stdin)",
		Flags: append(cmdflags.Store(),
			&cli.StringFlag{
				Name:        "username",
				Aliases:     []string{"u", "user"},
				Usage:       "Name of the user to register",
				Destination: &username,
				Required:    true,
			},
		),
		Action: func(c *cli.Context) error {
			cfg, err := cmdflags.Load(c)
			if err != nil {
				return err
			}
			logger, err := logutil.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			ctx := logutil.WithLogger(c.Context, logger)
			password, err := readPassword(c.App.Reader, c.App.ErrWriter)
			if err != nil {
				return err
			}
			st, err := store.Open(ctx, store.Options{Driver: cfg.DBDriver, DSN: cfg.DBDSN})
			if err != nil {
				return err
			}
			defer st.Close()
			err = auth.Register(ctx, st, auth.NewHasher(auth.DefaultParams(), 1), username, password)
			if err != nil {
				return err
			}
			logger.Info().Str("user", username).Msg("User created")
			return nil
		},
	}
}

// readPassword prompts on a terminal, otherwise it takes the first line of
// in as is, only the line terminator is dropped.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if in == nil {
		in = os.Stdin
	}
	if prompt == nil {
		prompt = os.Stderr
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		buf, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("unable to read password, cause %w", err)
		}
		return checkPassword(string(buf))
	}
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		if sc.Err() != nil {
			return "", sc.Err()
		}
		return "", errors.New("missing password from stdin")
	}
	return checkPassword(sc.Text())
}

func checkPassword(password string) (string, error) {
	password = strings.TrimRight(password, "\r\n")
	if len(password) == 0 {
		return "", errors.New("password cannot be empty")
	}
	return password, nil
}
