package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/samplespace/internal/estimate"
	"github.com/nvandessel/samplespace/internal/experiment"
	"github.com/nvandessel/samplespace/internal/export"
	"github.com/nvandessel/samplespace/internal/pathutil"
	"github.com/nvandessel/samplespace/internal/ratelimit"
	"github.com/nvandessel/samplespace/internal/runner"
	"github.com/nvandessel/samplespace/internal/sanitize"
	"github.com/nvandessel/samplespace/internal/scenario"
	"github.com/nvandessel/samplespace/internal/store"
)

// Tool names.
const (
	toolScenarios    = "samplespace_scenarios"
	toolProbability  = "samplespace_probability"
	toolDistribution = "samplespace_distribution"
	toolMoment       = "samplespace_moment"
	toolDescribe     = "samplespace_describe"
	toolHistory      = "samplespace_history"
)

const (
	// MaxIterations caps the reruns a single tool call may request.
	MaxIterations = 1_000_000

	defaultDistributionLimit = 1000
	defaultHistoryLimit      = 20

	scenariosURI = "samplespace://scenarios"
)

// registerTools registers all samplespace MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        toolScenarios,
		Description: "List the built-in scenarios and the keys each one resolves",
	}, s.handleScenarios)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        toolProbability,
		Description: "Estimate P(event | given) by rerunning a scenario and rejecting realizations where a given key is false",
	}, s.handleProbability)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        toolDistribution,
		Description: "Sample the empirical (joint) distribution of one or more keys over surviving realizations",
	}, s.handleDistribution)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        toolMoment,
		Description: "Estimate a raw, central or normalized moment, or the mean, variance, std, skewness or kurtosis of a key",
	}, s.handleMoment)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        toolDescribe,
		Description: "Summarize a key with mean, variance, standard deviation, min, max, skewness and kurtosis from one sample",
	}, s.handleDescribe)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        toolHistory,
		Description: "List recorded estimation runs, newest first",
	}, s.handleHistory)
}

// registerResources registers MCP resources for auto-loading into context.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         scenariosURI,
		Name:        "samplespace-scenarios",
		Description: "Built-in scenarios with their keys and the key expression syntax.",
		MIMEType:    "text/markdown",
	}, s.handleScenariosResource)
}

func (s *Server) handleScenariosResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	var sb strings.Builder
	sb.WriteString("# Scenarios\n\n")
	for _, e := range scenario.All() {
		fmt.Fprintf(&sb, "## %s\n\n%s\n\nKeys: %s\n\n", e.Name, e.Description, strings.Join(e.Keys, ", "))
	}
	sb.WriteString("# Key expressions\n\n")
	sb.WriteString("- `key` resolves a named attribute or derived quantity\n")
	sb.WriteString("- `key >= 3`, `key < 0.5`, `key = true`, `key != 2`\n")
	sb.WriteString("- `key in [6, 8]`, `key ~ 0 ± 0.1`\n")
	sb.WriteString("- `!expr` negates an expression\n")

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      scenariosURI,
				MIMEType: "text/markdown",
				Text:     sb.String(),
			},
		},
	}, nil
}

// logTool records one tool call at debug level.
func (s *Server) logTool(tool string, start time.Time, err error) {
	if err != nil {
		s.logger.Debug("tool call failed", "tool", tool, "duration", time.Since(start), "error", err)
		return
	}
	s.logger.Debug("tool call", "tool", tool, "duration", time.Since(start))
}

// open starts an estimation session for one tool call. Every call builds a
// fresh experiment.
func (s *Server) open(ctx context.Context, name string, given []string, iterations int, seed *uint64) (*runner.Session, error) {
	if name == "" {
		return nil, fmt.Errorf("scenario is required")
	}
	if iterations > MaxIterations {
		return nil, fmt.Errorf("iterations %d exceeds the limit of %d", iterations, MaxIterations)
	}
	given, err := sanitize.Expressions(given)
	if err != nil {
		return nil, err
	}
	return s.runner.Open(ctx, runner.Request{
		Scenario:   name,
		Given:      given,
		Iterations: iterations,
		Seed:       seed,
	})
}

// parseKey sanitizes expr and parses it into a key.
func parseKey(sess *runner.Session, expr string) (experiment.Key, error) {
	clean, err := sanitize.Expression(expr)
	if err != nil {
		return nil, err
	}
	return sess.Key(clean)
}

func runInfo(sess *runner.Session) RunInfo {
	rep := sess.LastReport()
	return RunInfo{
		Iterations: rep.Iterations,
		Survivors:  rep.Survivors,
		Seed:       rep.Seed,
		RunID:      sess.LastRunID(),
	}
}

func (s *Server) handleScenarios(ctx context.Context, req *sdk.CallToolRequest, args ScenariosInput) (_ *sdk.CallToolResult, _ ScenariosOutput, retErr error) {
	defer func(start time.Time) { s.logTool(toolScenarios, start, retErr) }(time.Now())

	if err := ratelimit.CheckLimit(s.toolLimiters, toolScenarios); err != nil {
		return nil, ScenariosOutput{}, err
	}

	entries := scenario.All()
	out := ScenariosOutput{
		Scenarios: make([]ScenarioInfo, 0, len(entries)),
		Count:     len(entries),
	}
	for _, e := range entries {
		out.Scenarios = append(out.Scenarios, ScenarioInfo{
			Name:        e.Name,
			Description: e.Description,
			Keys:        e.Keys,
		})
	}
	return nil, out, nil
}

func (s *Server) handleProbability(ctx context.Context, req *sdk.CallToolRequest, args ProbabilityInput) (_ *sdk.CallToolResult, _ ProbabilityOutput, retErr error) {
	defer func(start time.Time) { s.logTool(toolProbability, start, retErr) }(time.Now())

	if err := ratelimit.CheckLimit(s.toolLimiters, toolProbability); err != nil {
		return nil, ProbabilityOutput{}, err
	}
	if args.Event == "" {
		return nil, ProbabilityOutput{}, fmt.Errorf("event is required")
	}

	sess, err := s.open(ctx, args.Scenario, args.Given, args.Iterations, args.Seed)
	if err != nil {
		return nil, ProbabilityOutput{}, err
	}
	event, err := parseKey(sess, args.Event)
	if err != nil {
		return nil, ProbabilityOutput{}, err
	}

	p, err := sess.Estimator.ProbabilityOf(event, sess.Query()...)
	if err != nil {
		return nil, ProbabilityOutput{}, fmt.Errorf("failed to estimate probability: %w", err)
	}

	return nil, ProbabilityOutput{
		Scenario:    sess.Entry.Name,
		Event:       event.String(),
		Given:       sess.LastReport().Given,
		Probability: p,
		Run:         runInfo(sess),
	}, nil
}

func (s *Server) handleDistribution(ctx context.Context, req *sdk.CallToolRequest, args DistributionInput) (_ *sdk.CallToolResult, _ DistributionOutput, retErr error) {
	defer func(start time.Time) { s.logTool(toolDistribution, start, retErr) }(time.Now())

	if err := ratelimit.CheckLimit(s.toolLimiters, toolDistribution); err != nil {
		return nil, DistributionOutput{}, err
	}
	if len(args.Keys) == 0 {
		return nil, DistributionOutput{}, fmt.Errorf("at least one key is required")
	}
	limit := args.Limit
	if limit < 0 {
		return nil, DistributionOutput{}, fmt.Errorf("limit must not be negative")
	}
	if limit == 0 {
		limit = defaultDistributionLimit
	}

	sess, err := s.open(ctx, args.Scenario, args.Given, args.Iterations, args.Seed)
	if err != nil {
		return nil, DistributionOutput{}, err
	}
	exprs, err := sanitize.Expressions(args.Keys)
	if err != nil {
		return nil, DistributionOutput{}, err
	}
	keys, err := sess.Keys(exprs)
	if err != nil {
		return nil, DistributionOutput{}, err
	}

	var rows [][]float64
	if len(keys) == 1 {
		xs, err := sess.Estimator.DistributionOf(keys[0], sess.Query()...)
		if err != nil {
			return nil, DistributionOutput{}, fmt.Errorf("failed to sample distribution: %w", err)
		}
		rows = make([][]float64, len(xs))
		for i, x := range xs {
			rows[i] = []float64{x}
		}
	} else {
		rows, err = sess.Estimator.JointDistributionOf(keys, sess.Query()...)
		if err != nil {
			return nil, DistributionOutput{}, fmt.Errorf("failed to sample joint distribution: %w", err)
		}
	}

	out := DistributionOutput{
		Scenario: sess.Entry.Name,
		Keys:     sess.LastReport().Keys,
		Rows:     rows,
		Run:      runInfo(sess),
	}
	if args.Export != "" {
		path, err := s.exportRows(args.Export, out)
		if err != nil {
			return nil, DistributionOutput{}, err
		}
		out.Exported = path
	}
	if len(out.Rows) > limit {
		out.Rows = out.Rows[:limit]
		out.Truncated = true
	}
	out.Returned = len(out.Rows)
	return nil, out, nil
}

// exportRows writes out as an Arrow IPC file confined to the export
// directories and returns its path.
func (s *Server) exportRows(name string, out DistributionOutput) (string, error) {
	dirs, err := pathutil.ExportDirs(s.root)
	if err != nil {
		return "", err
	}
	path, err := pathutil.ResolveExport(name, dirs)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	table := export.Table{
		Columns: export.UniqueColumns(out.Keys),
		Rows:    out.Rows,
		Metadata: map[string]string{
			"scenario":   out.Scenario,
			"iterations": strconv.Itoa(out.Run.Iterations),
			"survivors":  strconv.Itoa(out.Run.Survivors),
			"seed":       strconv.FormatUint(out.Run.Seed, 10),
		},
	}
	if err := export.NewWriter().WriteFile(path, table); err != nil {
		return "", fmt.Errorf("failed to export %s: %w", pathutil.RedactPath(path), err)
	}
	return path, nil
}

func (s *Server) handleMoment(ctx context.Context, req *sdk.CallToolRequest, args MomentInput) (_ *sdk.CallToolResult, _ MomentOutput, retErr error) {
	defer func(start time.Time) { s.logTool(toolMoment, start, retErr) }(time.Now())

	if err := ratelimit.CheckLimit(s.toolLimiters, toolMoment); err != nil {
		return nil, MomentOutput{}, err
	}
	if args.Key == "" {
		return nil, MomentOutput{}, fmt.Errorf("key is required")
	}

	sess, err := s.open(ctx, args.Scenario, args.Given, args.Iterations, args.Seed)
	if err != nil {
		return nil, MomentOutput{}, err
	}
	key, err := parseKey(sess, args.Key)
	if err != nil {
		return nil, MomentOutput{}, err
	}

	est := sess.Estimator
	query := sess.Query()
	statistic := args.Statistic
	var value float64
	switch statistic {
	case "", "moment":
		statistic = "moment"
		n := args.N
		if n == 0 {
			n = 1
		}
		var shape []estimate.QueryOption
		if args.Central {
			shape = append(shape, estimate.Central())
		}
		if args.Normalized {
			shape = append(shape, estimate.Normalized())
		}
		value, err = est.NthMomentOf(key, n, sess.Query(shape...)...)
	case "mean":
		value, err = est.ExpectedValueOf(key, query...)
	case "variance":
		value, err = est.VarianceOf(key, query...)
	case "std":
		value, err = est.StandardDeviationOf(key, query...)
	case "skewness":
		value, err = est.SkewnessOf(key, query...)
	case "kurtosis":
		value, err = est.KurtosisOf(key, query...)
	default:
		return nil, MomentOutput{}, fmt.Errorf("unknown statistic %q (want moment, mean, variance, std, skewness or kurtosis)", args.Statistic)
	}
	if err != nil {
		return nil, MomentOutput{}, fmt.Errorf("failed to estimate %s: %w", statistic, err)
	}

	rep := sess.LastReport()
	return nil, MomentOutput{
		Scenario:   sess.Entry.Name,
		Key:        key.String(),
		Statistic:  statistic,
		Order:      rep.Order,
		Central:    rep.Central,
		Normalized: rep.Normalized,
		Value:      value,
		Run:        runInfo(sess),
	}, nil
}

func (s *Server) handleDescribe(ctx context.Context, req *sdk.CallToolRequest, args DescribeInput) (_ *sdk.CallToolResult, _ DescribeOutput, retErr error) {
	defer func(start time.Time) { s.logTool(toolDescribe, start, retErr) }(time.Now())

	if err := ratelimit.CheckLimit(s.toolLimiters, toolDescribe); err != nil {
		return nil, DescribeOutput{}, err
	}
	if args.Key == "" {
		return nil, DescribeOutput{}, fmt.Errorf("key is required")
	}

	sess, err := s.open(ctx, args.Scenario, args.Given, args.Iterations, args.Seed)
	if err != nil {
		return nil, DescribeOutput{}, err
	}
	key, err := parseKey(sess, args.Key)
	if err != nil {
		return nil, DescribeOutput{}, err
	}

	summary, err := sess.Estimator.Describe(key, sess.Query()...)
	if err != nil {
		return nil, DescribeOutput{}, fmt.Errorf("failed to describe %s: %w", key, err)
	}

	return nil, DescribeOutput{
		Scenario: sess.Entry.Name,
		Key:      key.String(),
		Summary:  summary,
		Run:      runInfo(sess),
	}, nil
}

func (s *Server) handleHistory(ctx context.Context, req *sdk.CallToolRequest, args HistoryInput) (_ *sdk.CallToolResult, _ HistoryOutput, retErr error) {
	defer func(start time.Time) { s.logTool(toolHistory, start, retErr) }(time.Now())

	if err := ratelimit.CheckLimit(s.toolLimiters, toolHistory); err != nil {
		return nil, HistoryOutput{}, err
	}
	if s.history == nil {
		return nil, HistoryOutput{Runs: []RunSummary{}}, nil
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	runs, err := s.history.List(ctx, store.Filter{
		Scenario:  args.Scenario,
		Statistic: args.Statistic,
		Limit:     limit,
	})
	if err != nil {
		return nil, HistoryOutput{}, fmt.Errorf("failed to list runs: %w", err)
	}

	out := HistoryOutput{
		Runs:    make([]RunSummary, 0, len(runs)),
		Count:   len(runs),
		Enabled: true,
	}
	for _, r := range runs {
		out.Runs = append(out.Runs, RunSummary{
			ID:         r.ID,
			Scenario:   r.Scenario,
			Statistic:  r.Statistic,
			Keys:       r.Keys,
			Given:      r.Given,
			Iterations: r.Iterations,
			Survivors:  r.Survivors,
			Seed:       r.Seed,
			Value:      r.Value,
			CreatedAt:  r.CreatedAt,
		})
	}
	return nil, out, nil
}
