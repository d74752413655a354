// Command initdata signs and verifies Telegram Mini App init data with a bot
// token, for exercising the API without a Telegram client.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"miniapp-tma-backend/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	if err := newApp(os.Stdout, time.Now).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer, now func() time.Time) *cli.Command {
	return &cli.Command{
		Name:   "initdata",
		Usage:  "sign or verify Telegram Mini App init data",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "token",
				Usage:    "bot token used as the signing secret",
				Sources:  cli.EnvVars("TELEGRAM_BOT_TOKEN", "BOT_TOKEN"),
				Required: true,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "sign",
				Usage: "print a signed init data string",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "user-id", Usage: "Telegram user id", Required: true},
					&cli.StringFlag{Name: "first-name", Value: "Dev"},
					&cli.StringFlag{Name: "username"},
					&cli.StringFlag{Name: "language", Value: "en"},
					&cli.StringFlag{Name: "query-id"},
					&cli.StringFlag{Name: "start-param"},
					&cli.IntFlag{Name: "auth-date", Usage: "unix seconds, defaults to now"},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return sign(cmd, now)
				},
			},
			{
				Name:      "verify",
				Usage:     "verify an init data string",
				ArgsUsage: "<init data>",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "max-age", Usage: "reject auth_date older than this, 0 disables"},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return verify(cmd, now)
				},
			},
		},
	}
}

func sign(cmd *cli.Command, now func() time.Time) error {
	user, err := json.Marshal(telegram.User{
		ID:        cmd.Int("user-id"),
		FirstName: cmd.String("first-name"),
		Username:  cmd.String("username"),
		Language:  cmd.String("language"),
	})
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	authDate := cmd.Int("auth-date")
	if authDate == 0 {
		authDate = now().Unix()
	}

	fields := []telegram.Field{
		{Key: "auth_date", Value: strconv.FormatInt(authDate, 10)},
		{Key: "user", Value: string(user)},
	}
	if v := cmd.String("query-id"); v != "" {
		fields = append(fields, telegram.Field{Key: "query_id", Value: v})
	}
	if v := cmd.String("start-param"); v != "" {
		fields = append(fields, telegram.Field{Key: "start_param", Value: v})
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, telegram.SignInitData(fields, cmd.String("token")))
	return err
}

func verify(cmd *cli.Command, now func() time.Time) error {
	raw := cmd.Args().First()
	if raw == "" {
		return errors.New("init data argument is required")
	}

	res, err := telegram.VerifyInitData(raw, cmd.String("token"), now(), cmd.Duration("max-age"))
	if err != nil {
		return fmt.Errorf("rejected: %s", telegram.ReasonOf(err))
	}

	out := cmd.Root().Writer
	fmt.Fprintf(out, "verified user %d", res.User.ID)
	if res.User.Username != "" {
		fmt.Fprintf(out, " (@%s)", res.User.Username)
	}
	if !res.AuthDate.IsZero() {
		fmt.Fprintf(out, ", auth_date %s", res.AuthDate.Format(time.RFC3339))
	}
	_, err = fmt.Fprintln(out)
	return err
}
