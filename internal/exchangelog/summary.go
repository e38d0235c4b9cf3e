package exchangelog

import (
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/colorstring"
)

// StatusClass is the presentation category of a response status.
type StatusClass uint8

const (
	// StatusNeutral covers informational, redirect and unknown statuses.
	StatusNeutral StatusClass = iota
	// StatusSuccess covers 2xx statuses.
	StatusSuccess
	// StatusClientError covers 4xx statuses.
	StatusClientError
	// StatusServerError covers 5xx statuses.
	StatusServerError
)

// summaryTimeLayout is the timestamp layout of the summary line.
const summaryTimeLayout = "2006-01-02 15:04:05 MST"

// ClassifyStatus returns the presentation category of code.
func ClassifyStatus(code int) StatusClass {
	switch {
	case code >= 200 && code <= 299:
		return StatusSuccess
	case code >= 400 && code <= 499:
		return StatusClientError
	case code >= 500 && code <= 599:
		return StatusServerError
	default:
		return StatusNeutral
	}
}

// String returns the name of the class.
func (c StatusClass) String() string {
	switch c {
	case StatusSuccess:
		return "success"
	case StatusClientError:
		return "client_error"
	case StatusServerError:
		return "server_error"
	default:
		return "neutral"
	}
}

// color returns the colorstring code for the class.
func (c StatusClass) color() string {
	switch c {
	case StatusSuccess:
		return "[light_green]"
	case StatusClientError:
		return "[light_yellow]"
	case StatusServerError:
		return "[light_red]"
	default:
		return "[white]"
	}
}

// painter wraps text in color codes, or leaves it bare when colors are disabled.
type painter struct {
	colorize colorstring.Colorize
}

func newPainter(enabled bool) painter {
	return painter{
		colorize: colorstring.Colorize{
			Colors:  colorstring.DefaultColors,
			Disable: !enabled,
		},
	}
}

// paint colors text without interpreting it, so brackets inside URLs are left alone.
func (p painter) paint(codes, text string) string {
	if p.colorize.Disable {
		return text
	}

	return p.colorize.Color(codes) + text + p.colorize.Color("[reset]")
}

// summaryLine renders the one-line human-readable form of an exchange:
//
//	> 200 : GET https://example.com/ @ 2006-01-02 15:04:05 UTC
func summaryLine(p painter, e *Exchange) string {
	var sb strings.Builder

	sb.WriteString(p.paint("[bold][light_magenta]", ">"))
	sb.WriteString(" ")
	sb.WriteString(p.paint("[bold]"+ClassifyStatus(e.Response.Status).color(), strconv.Itoa(e.Response.Status)))
	sb.WriteString(" : ")
	sb.WriteString(p.paint("[bold][light_magenta]", strings.ToUpper(e.Request.Method)))
	sb.WriteString(" ")
	sb.WriteString(p.paint("[light_magenta]", NormalizeURL(e.Request.URL)))
	sb.WriteString(" @ ")
	sb.WriteString(p.paint("[light_magenta]", e.CompletedAt.Format(summaryTimeLayout)))

	return sb.String()
}

// epochSeconds converts t to fractional seconds since the Unix epoch.
func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
