package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/getmockd/gqlbridge/pkg/admin"
	"github.com/getmockd/gqlbridge/pkg/cli/internal/flags"
	"github.com/getmockd/gqlbridge/pkg/cli/internal/parse"
	"github.com/getmockd/gqlbridge/pkg/config"
	"github.com/getmockd/gqlbridge/pkg/devtools"
)

// maxDetail caps the payload summary printed per event.
const maxDetail = 120

var (
	errorMessagePath = jp.MustParseString("$.error.message")
	kindPath         = jp.MustParseString("$.kind")
	dataPath         = jp.MustParseString("$.data")
)

// panelOptions configures a terminal panel session.
type panelOptions struct {
	baseURL    string
	path       string
	eventsPath string
	query      string
	vars       string
	tabID      int
	history    bool
	follow     bool
	count      int
	headers    http.Header
	timeout    time.Duration
	json       bool
}

var (
	panelFlags   panelOptions
	panelHeaders flags.Headers
)

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Attach a terminal devtools panel to a running bridge",
	Long: `Attach to a bridge's devtools websocket and print every relayed event.
A request can be injected into the client with --query; its operation and
results arrive on the same stream.`,
	Example: `  # Watch all traffic
  gqlbridge panel --url http://localhost:4000

  # Print cached history, then inject a request and wait for two events
  gqlbridge panel --history --query 'query GetUser($id: ID!) { user(id: $id) { name } }' \
    --vars '{"id": "1"}' --count 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := panelFlags
		opts.headers = panelHeaders.Header()
		opts.json = jsonOutput
		opts.follow = opts.follow || !opts.history || opts.query != "" || opts.count > 0
		return runPanel(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

func runPanel(ctx context.Context, w io.Writer, opts panelOptions) error {
	vars, err := parse.Vars(opts.vars)
	if err != nil {
		return err
	}
	base, err := url.Parse(opts.baseURL)
	if err != nil || base.Host == "" {
		return fmt.Errorf("invalid url %q", opts.baseURL)
	}
	header := opts.headers.Clone()
	if header == nil {
		header = http.Header{}
	}

	if opts.history {
		if err := printHistory(ctx, w, base, opts, header); err != nil {
			return err
		}
	}
	if !opts.follow {
		return nil
	}

	conn, err := dialPanel(ctx, base, opts, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	initMsg, err := devtools.EncodeInit(opts.tabID)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, initMsg); err != nil {
		return fmt.Errorf("failed to send init: %w", err)
	}
	if opts.query != "" {
		req, err := devtools.EncodeRequest(opts.query, vars)
		if err != nil {
			return err
		}
		if err := conn.WriteMessage(websocket.TextMessage, req); err != nil {
			return fmt.Errorf("failed to send request: %w", err)
		}
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	seen := 0
	for opts.count <= 0 || seen < opts.count {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		}
		if kind != websocket.TextMessage {
			continue
		}

		isInit, ev, err := devtools.DecodeOutbound(msg)
		switch {
		case err != nil:
			fmt.Fprintf(w, "unreadable message: %v\n", err)
		case isInit:
			if !opts.json {
				fmt.Fprintln(w, "bridge initialized")
			}
		default:
			if err := printEvent(w, ev, opts.json); err != nil {
				return err
			}
			seen++
		}
	}
	return nil
}

func dialPanel(ctx context.Context, base *url.URL, opts panelOptions, header http.Header) (*websocket.Conn, error) {
	wsURL := *base
	switch wsURL.Scheme {
	case "https", "wss":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	wsURL.Path = strings.TrimSuffix(wsURL.Path, "/") + opts.path

	dialer := websocket.Dialer{HandshakeTimeout: opts.timeout}
	conn, resp, err := dialer.DialContext(ctx, wsURL.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("connection failed: %v (HTTP %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("connection failed: %v", err)
	}
	return conn, nil
}

func printHistory(ctx context.Context, w io.Writer, base *url.URL, opts panelOptions, header http.Header) error {
	u := *base
	u.Path = strings.TrimSuffix(u.Path, "/") + opts.eventsPath

	reqCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header = header.Clone()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e admin.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("failed to fetch history: HTTP %d %s", resp.StatusCode, e.Message)
	}

	var out admin.EventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode history: %w", err)
	}
	for _, ev := range out.Events {
		if err := printEvent(w, ev, opts.json); err != nil {
			return err
		}
	}
	return nil
}

// printEvent writes one event per line: raw JSON, or a short summary.
func printEvent(w io.Writer, ev devtools.Event, asJSON bool) error {
	if asJSON {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	name := ev.OperationName()
	if name == "" {
		name = "(anonymous)"
	}
	ts := time.UnixMilli(ev.Timestamp).Format("15:04:05.000")
	_, err := fmt.Fprintf(w, "%s  %-9s  %-20s  %s\n", ts, ev.Type, name, summarize(ev))
	return err
}

func summarize(ev devtools.Event) string {
	data, err := ev.Value()
	if err != nil {
		return ""
	}

	var detail string
	switch ev.Type {
	case devtools.KindOperation:
		detail, _ = kindPath.First(data).(string)
	case devtools.KindError:
		detail, _ = errorMessagePath.First(data).(string)
		detail = strings.ReplaceAll(detail, "\n", "; ")
	default:
		detail = oj.JSON(dataPath.First(data), &oj.Options{Sort: true})
	}

	if len(detail) > maxDetail {
		detail = detail[:maxDetail-3] + "..."
	}
	return detail
}

func init() {
	f := panelCmd.Flags()
	f.StringVarP(&panelFlags.baseURL, "url", "u", "http://"+config.DefaultListen, "Bridge base URL")
	f.StringVar(&panelFlags.path, "path", config.DefaultPath, "Devtools websocket path")
	f.StringVar(&panelFlags.eventsPath, "events-path", config.DefaultEventsPath, "Devtools events path")
	f.StringVarP(&panelFlags.query, "query", "q", "", "GraphQL request to inject")
	f.StringVar(&panelFlags.vars, "vars", "", "Variables for --query as a JSON object")
	f.IntVar(&panelFlags.tabID, "tab-id", 1, "Tab ID announced in the init message")
	f.BoolVar(&panelFlags.history, "history", false, "Print cached events before streaming")
	f.BoolVarP(&panelFlags.follow, "follow", "f", false, "Keep streaming after --history")
	f.IntVarP(&panelFlags.count, "count", "n", 0, "Exit after this many live events (0 streams until interrupted)")
	f.DurationVarP(&panelFlags.timeout, "timeout", "t", 10*time.Second, "Connection timeout")
	f.VarP(&panelHeaders, "header", "H", "Custom headers (key:value), repeatable")
	rootCmd.AddCommand(panelCmd)
}
