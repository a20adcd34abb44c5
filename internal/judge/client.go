// Package judge wraps the Judge0 code-execution API. One Execute call judges
// one program run against one stdin/expected-output pair; batching across a
// problem's test cases is the caller's job.
package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/chefforces-tocode/backend/internal/domain"
)

// Config holds Judge0 connection settings
type Config struct {
	BaseURL        string
	APIKey         string
	APIHost        string
	CPUTimeLimit   float64
	RequestTimeout time.Duration
}

// Run is one execution request: a program, a language, and one test case
type Run struct {
	SourceCode     string
	LanguageID     int
	Stdin          string
	ExpectedOutput string
}

// Result is the judged outcome of one run. A Result is only produced when
// the remote call itself succeeded; transport failures surface as errors.
type Result struct {
	Verdict       string `json:"verdict"`
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr,omitempty"`
	CompileOutput string `json:"compile_output,omitempty"`
	Diagnostic    string `json:"diagnostic,omitempty"`
}

// Accepted reports whether the run passed
func (r *Result) Accepted() bool {
	return r.Verdict == domain.VerdictAccepted
}

// Runner is the judging contract consumed by the contest flow.
// Implemented by Client; test doubles stand in for the remote service.
type Runner interface {
	Execute(ctx context.Context, run Run) (*Result, error)
}

// Client is a synchronous Judge0 client. It performs no retries and no
// caching; the remote cpu_time_limit is the only execution bound.
type Client struct {
	config     Config
	httpClient *http.Client
	tracer     trace.Tracer
	logger     *zap.Logger
}

// NewClient creates a new Judge0 client
func NewClient(config Config, tracer trace.Tracer, logger *zap.Logger) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		tracer: tracer,
		logger: logger,
	}
}

// submissionRequest mirrors the Judge0 submission body
type submissionRequest struct {
	SourceCode     string  `json:"source_code"`
	LanguageID     int     `json:"language_id"`
	Stdin          string  `json:"stdin"`
	ExpectedOutput string  `json:"expected_output"`
	CPUTimeLimit   float64 `json:"cpu_time_limit"`
}

// submissionResponse mirrors the Judge0 submission result
type submissionResponse struct {
	Stdout        string `json:"stdout"`
	Stderr        string `json:"stderr"`
	CompileOutput string `json:"compile_output"`
	Status        struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
}

// Execute judges one run. The wait=true query parameter makes Judge0 block
// until the run finishes, so no polling loop is needed.
func (c *Client) Execute(ctx context.Context, run Run) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "judge.Execute")
	defer span.End()

	span.SetAttributes(attribute.Int("judge.language_id", run.LanguageID))

	body, err := json.Marshal(submissionRequest{
		SourceCode:     run.SourceCode,
		LanguageID:     run.LanguageID,
		Stdin:          run.Stdin,
		ExpectedOutput: run.ExpectedOutput,
		CPUTimeLimit:   c.config.CPUTimeLimit,
	})
	if err != nil {
		return nil, err
	}

	url := c.config.BaseURL + "/submissions?base64_encoded=false&wait=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.config.APIKey)
		req.Header.Set("X-RapidAPI-Host", c.config.APIHost)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Judge0 request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrJudgeUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Judge0 returned unexpected status",
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: status %d", domain.ErrJudgeUnavailable, resp.StatusCode)
	}

	var sub submissionResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&sub); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrJudgeUnavailable, err)
	}

	result := &Result{
		Verdict:       sub.Status.Description,
		Stdout:        sub.Stdout,
		Stderr:        sub.Stderr,
		CompileOutput: sub.CompileOutput,
	}
	if !result.Accepted() {
		result.Diagnostic = diagnostic(&sub)
	}

	span.SetAttributes(attribute.String("judge.verdict", result.Verdict))
	c.logger.Debug("Judge0 run completed",
		zap.String("verdict", result.Verdict),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}

// diagnostic picks the most specific failure detail available:
// runtime stderr, else compiler output, else the status description.
func diagnostic(sub *submissionResponse) string {
	if sub.Stderr != "" {
		return sub.Stderr
	}
	if sub.CompileOutput != "" {
		return sub.CompileOutput
	}
	return sub.Status.Description
}
