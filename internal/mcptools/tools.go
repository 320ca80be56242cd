// Package mcptools exposes the journal and the questionnaire as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"apim/internal/assessment"
	"apim/internal/journal"
	"apim/internal/persona"
	"apim/internal/reporting"
	"apim/internal/rules"
)

type LogEventParams struct {
	Date        string `json:"date,omitempty" mcp:"event date, YYYY-MM-DD"`
	Description string `json:"description" mcp:"what happened"`
	Amount      string `json:"amount,omitempty" mcp:"amount in MXN, free text"`
	Context     string `json:"context,omitempty" mcp:"where or with whom"`
	Emotion     string `json:"emotion,omitempty" mcp:"declared emotion, e.g. tranquilo, estrés, pánico"`
}

type EvaluateParams struct{}

type WeeklyReportParams struct {
	Window  int  `json:"window,omitempty" mcp:"number of latest events to include (default 5)"`
	Persist bool `json:"persist,omitempty" mcp:"append the snapshot to the weekly history"`
}

type ContainmentParams struct {
	On bool `json:"on" mcp:"enable the softer containment suggestions"`
}

type ClassifyParams struct {
	SavingsPct          int  `json:"savings_pct" mcp:"percent of income saved monthly (0-50)"`
	ImpulseBuysPerWeek  int  `json:"impulse_buys_per_week" mcp:"impulse purchases per week"`
	TracksExpenses      bool `json:"tracks_expenses" mcp:"whether expenses are recorded"`
	EmergencyFundMonths int  `json:"emergency_fund_months" mcp:"months of expenses covered by the emergency fund (0-12)"`
}

type Server struct {
	journal *journal.Service
	assess  *assessment.Service
	window  int
}

func New(j *journal.Service, a *assessment.Service, window int) *Server {
	if window <= 0 {
		window = reporting.DefaultWindow
	}
	return &Server{journal: j, assess: a, window: window}
}

// Register adds every tool to the server.
func (s *Server) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_event",
		Description: "Logs a financial journal event and returns its zone, trend and coaching feedback",
	}, s.LogEvent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "evaluate_latest",
		Description: "Evaluates the latest journal event against the last known zone without saving",
	}, s.EvaluateLatest)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "weekly_report",
		Description: "Builds the weekly report table and snapshot over the latest events",
	}, s.WeeklyReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_containment",
		Description: "Turns containment mode on or off",
	}, s.SetContainment)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify_profile",
		Description: "Scores the financial questionnaire into a persona with an action plan",
	}, s.ClassifyProfile)
}

func textResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: "❌ " + fmt.Sprintf(format, args...)}},
	}
}

func jsonResult(v any) *mcp.CallToolResultFor[any] {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("failed to encode result: %v", err)
	}
	return textResult(string(data))
}

func (s *Server) LogEvent(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[LogEventParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	if strings.TrimSpace(args.Description) == "" && strings.TrimSpace(args.Context) == "" {
		return errorResult("description or context is required"), nil
	}
	log.Printf("📝 MCP Server: log_event %q", args.Description)

	res, err := s.journal.LogEvent(ctx, rules.Event{
		Date:        args.Date,
		Description: args.Description,
		Amount:      args.Amount,
		Context:     args.Context,
		Emotion:     args.Emotion,
	})
	if err != nil {
		return errorResult("failed to log event: %v", err), nil
	}
	return jsonResult(res), nil
}

func (s *Server) EvaluateLatest(ctx context.Context, _ *mcp.ServerSession, _ *mcp.CallToolParamsFor[EvaluateParams]) (*mcp.CallToolResultFor[any], error) {
	res, err := s.journal.Evaluate(ctx)
	if err != nil {
		return errorResult("failed to evaluate: %v", err), nil
	}
	return jsonResult(res), nil
}

func (s *Server) WeeklyReport(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[WeeklyReportParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	window := args.Window
	if window <= 0 {
		window = s.window
	}
	log.Printf("📊 MCP Server: weekly_report window=%d persist=%v", window, args.Persist)

	res, err := s.journal.WeeklyReport(ctx, window, args.Persist)
	if err != nil {
		return errorResult("failed to build report: %v", err), nil
	}

	var text strings.Builder
	if res.OK {
		if err := reporting.RenderTable(&text, res.Rows); err != nil {
			return errorResult("failed to render table: %v", err), nil
		}
		text.WriteString("\n")
	}
	text.WriteString(res.Summary())

	out := textResult(text.String())
	out.Meta = map[string]any{"ok": res.OK, "reason": res.Reason}
	if res.Snapshot != nil {
		out.Meta["snapshot"] = res.Snapshot
	}
	return out, nil
}

func (s *Server) SetContainment(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[ContainmentParams]) (*mcp.CallToolResultFor[any], error) {
	on := params.Arguments.On
	if err := s.journal.SetContainment(ctx, on); err != nil {
		return errorResult("failed to save containment: %v", err), nil
	}
	if on {
		return textResult("✅ Containment mode on"), nil
	}
	return textResult("✅ Containment mode off"), nil
}

func (s *Server) ClassifyProfile(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[ClassifyParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	res, err := s.assess.Assess(ctx, persona.Answers{
		SavingsPct:          args.SavingsPct,
		ImpulseBuysPerWeek:  args.ImpulseBuysPerWeek,
		TracksExpenses:      args.TracksExpenses,
		EmergencyFundMonths: args.EmergencyFundMonths,
	})
	if err != nil {
		return errorResult("failed to classify: %v", err), nil
	}
	return jsonResult(res), nil
}
