// Command casebrief analyzes a single case file and prints the brief as JSON.
//
//	casebrief -file judgment.pdf -question "What was held?" -premium
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/nikhilbhutani/casebrief/internal/app"
	"github.com/nikhilbhutani/casebrief/internal/auth"
	"github.com/nikhilbhutani/casebrief/internal/brief"
	"github.com/nikhilbhutani/casebrief/internal/config"
	"github.com/nikhilbhutani/casebrief/internal/issues"
	"github.com/nikhilbhutani/casebrief/internal/models"
	"github.com/nikhilbhutani/casebrief/internal/summarize"
)

type options struct {
	file      string
	question  string
	premium   bool
	highlight bool
	verbose   bool
}

type output struct {
	*models.Brief
	IssuesText string            `json:"issues_text"`
	Result     *summarize.Result `json:"result,omitempty"`
}

func main() {
	var opts options
	flag.StringVar(&opts.file, "file", "", "case file (pdf, docx, txt, image); - reads text from stdin")
	flag.StringVar(&opts.question, "question", "", "question to answer from the case text")
	flag.BoolVar(&opts.premium, "premium", false, "use the premium summary length")
	flag.BoolVar(&opts.highlight, "highlight", false, "include a keyword-highlighted summary")
	flag.BoolVar(&opts.verbose, "v", false, "log to stderr")
	flag.Parse()

	level := slog.LevelError
	if opts.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(context.Background(), opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "casebrief:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer) error {
	if opts.file == "" {
		return errors.New("-file is required")
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c, err := app.Build(cfg, app.Backends{})
	if err != nil {
		return err
	}

	req := brief.Request{Question: opts.question, Highlight: opts.highlight, Tier: auth.TierFree}
	if opts.premium {
		req.Tier = auth.TierPremium
	}

	if opts.file == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		req.Text = string(data)
		req.SourceType = "text"
	} else {
		f, err := os.Open(opts.file)
		if err != nil {
			return err
		}
		defer f.Close()

		doc, err := c.Documents.Load(ctx, opts.file, "", f)
		if err != nil {
			return err
		}
		req.Title, req.Text, req.SourceType = doc.Title, doc.Text, doc.Type
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if strings.TrimSpace(req.Text) == "" {
		return enc.Encode(map[string]string{"summary": brief.NoTextSummary})
	}

	b, res, err := c.Briefs.Analyze(ctx, req)
	if err != nil {
		return err
	}
	return enc.Encode(output{Brief: b, IssuesText: issues.Bullets(b.Issues), Result: res})
}
