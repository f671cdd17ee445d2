package commands

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"

	"pomotaro/internal/notify"
)

var tagPattern = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

// ReportCmd prints today's study report, or sends it to Telegram.
type ReportCmd struct {
	Send bool `help:"Send the report to the configured Telegram chat instead of printing it"`
}

func (c *ReportCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := root.open(ctx, g)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	body, err := a.Reports.DailySummary(ctx, root.now(g).In(a.Stats.Location()))
	if err != nil {
		return err
	}
	if !c.Send {
		fmt.Fprintln(g.out(), plainText(body))
		return nil
	}

	if err := a.EnableTelegram(); err != nil {
		return err
	}
	if a.Bot == nil {
		return errors.New("telegram is not configured: set TELEGRAM_TOKEN and TELEGRAM_CHAT_ID")
	}
	ev := notify.Event{Kind: notify.KindDailyReport, Title: "Daily study report", Body: body}
	if err := a.Bot.Notify(ctx, ev); err != nil {
		return err
	}
	fmt.Fprintln(g.out(), "Report sent.")
	return nil
}

// plainText strips the Telegram HTML markup for terminal output.
func plainText(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}
