// Command searchagent answers one question read from stdin. A language model
// researches it with Brave Search (and, when enabled, page content
// extraction) and the final answer is printed as "Response: <answer>".
//
// Configuration comes from an optional YAML file named by SEARCHAGENT_CONFIG,
// a .env file in the working directory, an extra env file named by
// SEARCHAGENT_ENV_FILE, and environment variables such as
// BRAVE_SEARCH_AI_API_KEY and OPENAI_API_KEY. Variables already set in the
// environment always win over env files.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"github.com/leofalp/searchagent/internal/config"
	"github.com/leofalp/searchagent/internal/logging"
	"github.com/leofalp/searchagent/internal/tracing"
)

const (
	questionPrompt = "What's your question? "
	responsePrefix = "Response: "
)

// errNoQuestion is returned when stdin closes before a question is entered.
var errNoQuestion = errors.New("no question given")

func main() {
	os.Exit(realMain())
}

func realMain() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "searchagent: %v\n", err)
		return 1
	}

	logger := newLogger(cfg.Logger, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := tracing.Setup(ctx, cfg.Tracer)
	if err != nil {
		logger.Error("tracing setup failed", "error", err.Error())
		return 1
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", "error", err.Error())
		}
	}()

	if err := run(ctx, cfg, logger, os.Stdin, os.Stdout); err != nil {
		logger.Error("searchagent failed", "error", err.Error())
		return 1
	}
	return 0
}

// loadConfig loads the env file named by SEARCHAGENT_ENV_FILE, if any, and
// then the configuration.
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("SEARCHAGENT_ENV_FILE"); path != "" {
		if err := config.LoadDotEnv(path); err != nil {
			return nil, err
		}
	}
	return config.Load(os.Getenv("SEARCHAGENT_CONFIG"))
}

// run prompts for a question on out, reads it from in, answers it and writes
// the answer to out.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, in io.Reader, out io.Writer) error {
	agent, err := buildAgent(cfg, logger, out)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprint(out, questionPrompt); err != nil {
		return fmt.Errorf("write prompt: %w", err)
	}

	question, err := readQuestion(in)
	if err != nil {
		return err
	}

	answer, err := agent.ProcessUserQuery(ctx, question)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(out, responsePrefix+answer); err != nil {
		return fmt.Errorf("write answer: %w", err)
	}
	return nil
}

// readQuestion returns the first line of in without its line terminator. A
// final line without a newline is accepted.
func readQuestion(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read question: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", errNoQuestion
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogger(cfg config.LoggerConfig, w io.Writer) *slog.Logger {
	level, levelErr := logging.ParseLevel(cfg.Level)
	logger := logging.New(logging.Options{
		Format: logging.ParseFormat(cfg.Format),
		Level:  level,
		Output: w,
	})
	if levelErr != nil {
		logger.Warn("falling back to INFO", "error", levelErr.Error())
	}
	return logger
}
