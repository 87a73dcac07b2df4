package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trading-agent/internal/dto"
	"trading-agent/internal/repository"
	"trading-agent/pkg/console"
	"trading-agent/pkg/logger"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// TradingAgentService runs one pass of the agent: fetch the analysis, ask the
// model about it and swap when the signal is buy.
type TradingAgentService interface {
	Run(ctx context.Context) error
}

type tradingAgentService struct {
	log          *logger.Logger
	printer      *console.Printer
	analysisRepo repository.AnalysisRepository
	aiRepo       repository.AIRepository
	swapRepo     repository.SwapRepository
}

func NewTradingAgentService(
	log *logger.Logger,
	printer *console.Printer,
	analysisRepo repository.AnalysisRepository,
	aiRepo repository.AIRepository,
	swapRepo repository.SwapRepository,
) TradingAgentService {
	return &tradingAgentService{
		log:          log,
		printer:      printer,
		analysisRepo: analysisRepo,
		aiRepo:       aiRepo,
		swapRepo:     swapRepo,
	}
}

// Run returns an error only for faults that end the run: transport failures
// and payloads that cannot be read. Non-OK statuses are reported and the run
// carries on where it can.
func (s *tradingAgentService) Run(ctx context.Context) error {
	ctx, log := s.log.Scoped(ctx, logger.StringField("run_id", uuid.NewString()))

	s.printer.Heading("Fetching analysis data...")
	analysis, err := s.fetchAnalysis(ctx)
	if err != nil {
		return err
	}
	if analysis == nil {
		log.InfoContext(ctx, "no analysis data, nothing to do")
		return nil
	}

	signal := analysis.ParsedSignal()
	s.displaySignal(analysis, signal)
	log.InfoContext(ctx, "analysis data received", logger.StringField("signal", string(signal)))

	s.printer.Blank()
	s.printer.Heading("Analyzing response...")
	aiResult, err := s.requestAnalysis(ctx, analysis)
	if err != nil {
		return err
	}

	s.printer.Blank()
	s.printer.Heading("Analysis Result:")
	if aiResult != nil {
		s.printer.Plain(aiResult.Message.Content)
	} else {
		s.printer.Neutral("No analysis result available")
	}

	if !signal.IsBuy() {
		log.InfoContext(ctx, "signal is not buy, skipping swap", logger.StringField("signal", string(signal)))
		return nil
	}

	s.printer.Blank()
	s.printer.Heading("Executing swap...")
	return s.executeSwap(ctx)
}

func (s *tradingAgentService) fetchAnalysis(ctx context.Context) (*dto.AnalysisResult, error) {
	s.printer.Success("Agent started ✅")

	analysis, err := s.analysisRepo.Fetch(ctx)
	if err != nil {
		if statusErr, ok := repository.AsStatusError(err); ok {
			s.printer.Failure("Failed to fetch analysis data: %d ❌", statusErr.StatusCode)
			return nil, nil
		}
		s.log.ErrorContext(ctx, "failed to fetch analysis data", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to fetch analysis data: %w", err)
	}

	return analysis, nil
}

func (s *tradingAgentService) displaySignal(analysis *dto.AnalysisResult, signal dto.Signal) {
	text := analysis.SignalText()

	s.printer.Blank()
	s.printer.Heading("Analysis Data Received:")
	s.printer.Heading("Signal: %s", text)

	switch signal {
	case dto.SignalBuy:
		s.printer.Success("Signal is: %s ✅", text)
	case dto.SignalHold:
		s.printer.Failure("Signal is: %s ❌", text)
	default:
		s.printer.Neutral("Signal is: %s", text)
	}
}

// requestAnalysis returns nil without error when the model could not answer;
// the swap decision does not depend on it.
func (s *tradingAgentService) requestAnalysis(ctx context.Context, analysis *dto.AnalysisResult) (*dto.AIAnalysisResult, error) {
	prompt := repository.BuildAnalysisPrompt(analysis)
	s.log.DebugContext(ctx, "prompt rendered", logger.StringField("prompt", prompt))

	result, err := s.aiRepo.Analyze(ctx, prompt)
	if err != nil {
		if statusErr, ok := repository.AsStatusError(err); ok {
			s.printer.Failure("Failed to analyze response: %d ❌", statusErr.StatusCode)
			return nil, nil
		}
		if errors.Is(err, repository.ErrNoChoices) {
			s.printer.Failure("Failed to analyze response: no choices returned ❌")
			return nil, nil
		}
		s.log.ErrorContext(ctx, "failed to analyze response", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to analyze response: %w", err)
	}

	s.printer.Success("Analysis Time= %.2f seconds", result.Elapsed.Seconds())
	return result, nil
}

func (s *tradingAgentService) executeSwap(ctx context.Context) error {
	s.printer.Success("Swap started ✅")

	result, err := s.swapRepo.Execute(ctx)
	if result != nil {
		if result.Succeeded() {
			s.printer.Success("Swap executed successfully ✅")
		} else {
			s.printer.Failure("Failed to execute swap: %d ❌", result.StatusCode)
		}
	}
	if err != nil {
		s.log.ErrorContext(ctx, "failed to execute swap", logger.ErrorField(err))
		return fmt.Errorf("failed to execute swap: %w", err)
	}

	s.printer.Heading("Swap Result:")
	s.printer.Plain(strings.TrimSpace(gjson.GetBytes(result.Body, "@pretty").String()))
	return nil
}
