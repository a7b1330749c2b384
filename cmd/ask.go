package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bimmerbailey/soudan/internal/consult"
	"github.com/bimmerbailey/soudan/internal/output"
	"github.com/bimmerbailey/soudan/internal/prompt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	emptyInputWarning = "テキストを入力してください。"
	busyMessage       = "LLMが回答を生成しています..."
	upstreamFailure   = "回答の生成に失敗しました。時間をおいて再度お試しください。"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask an expert persona a single question",
	Long: `Ask sends one question to the language model playing the chosen expert
and prints the answer.

Personas: career_advisor, financial_planner. Other values are accepted and
answered by a generic expert.

Examples:
  soudan ask "未経験から生成AIエンジニアに転職するには?"
  soudan ask --persona financial_planner "老後資金はいくら必要?"
  soudan ask -p financial_planner --format json "NISAとiDeCoの違いは?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringP("persona", "p", string(prompt.CareerAdvisor), "expert persona to consult")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	personaStr, _ := cmd.Flags().GetString("persona")

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	applyLogLevel(cfg)
	logger := newLogger(cmd.ErrOrStderr())

	svc, _, err := newService(cfg, logger)
	if err != nil {
		return err
	}

	format := output.ParseFormat(cfg.Format)
	color := output.ParseColorMode(viper.GetString("color"))
	out := output.New(cmd.OutOrStdout(), format).WithColor(color)
	errOut := output.New(cmd.ErrOrStderr(), format).WithColor(color)

	return askWith(cmd.Context(), svc, out, errOut, prompt.Parse(personaStr), args[0])
}

// askWith runs one consultation. Answers and warnings go to out; progress and
// failures go to errOut. Empty input is a warning, not a failure.
func askWith(ctx context.Context, asker consult.Asker, out, errOut *output.Writer, persona prompt.Persona, question string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if strings.TrimSpace(question) == "" {
		return out.WriteWarning(emptyInputWarning)
	}
	_ = errOut.WriteStatus(busyMessage)

	answer, err := asker.Ask(ctx, persona, question)
	if errors.Is(err, consult.ErrEmptyInput) {
		return out.WriteWarning(emptyInputWarning)
	}
	if err != nil {
		_ = errOut.WriteFailure(upstreamFailure)
		return fmt.Errorf("consultation failed: %w", err)
	}

	return out.WriteAnswer(answer)
}
