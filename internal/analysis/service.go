package analysis

import (
	"context"
	"fmt"

	"anemo-backend/internal/agent"
	"anemo-backend/internal/prompt"
	"anemo-backend/internal/schema"

	"github.com/rs/zerolog"
)

type Service interface {
	// DescribeImage gates the interview: an unusable photo is a successful
	// result with IsValid=false, model failures are returned as errors.
	DescribeImage(ctx context.Context, req AnalysisRequest) (ImageAnalysisResult, error)
	// AnalyzeCbcReport never fails on model problems; it falls back to
	// FallbackCbcReport. Only a malformed request returns an error.
	AnalyzeCbcReport(ctx context.Context, req AnalysisRequest) (CbcReport, error)
}

type service struct {
	ai agent.Client
}

func NewService(ai agent.Client) Service {
	return &service{ai: ai}
}

func parseRequest(req AnalysisRequest) (agent.Media, error) {
	if err := schema.Request(&req); err != nil {
		return agent.Media{}, err
	}
	media, err := agent.ParseDataURI(req.PhotoDataURI)
	if err != nil {
		return agent.Media{}, fmt.Errorf("%w: %v", schema.ErrInvalidInput, err)
	}
	return media, nil
}

func (s *service) DescribeImage(ctx context.Context, req AnalysisRequest) (ImageAnalysisResult, error) {
	media, err := parseRequest(req)
	if err != nil {
		return ImageAnalysisResult{}, err
	}

	text, err := prompt.Render(prompt.ImageDescription, nil)
	if err != nil {
		return ImageAnalysisResult{}, err
	}

	resp, err := s.ai.Generate(ctx, &agent.Request{
		Flow:   "image_description",
		Prompt: text,
		Media:  []agent.Media{media},
		Output: imageAnalysisSchema,
	})
	if err != nil {
		return ImageAnalysisResult{}, fmt.Errorf("describe image: %w", err)
	}

	var out imageAnalysisOutput
	if err := resp.Decode(&out); err != nil {
		return ImageAnalysisResult{}, fmt.Errorf("describe image: %w", err)
	}
	return ImageAnalysisResult{IsValid: *out.IsValid, Description: out.Description}, nil
}

func (s *service) AnalyzeCbcReport(ctx context.Context, req AnalysisRequest) (CbcReport, error) {
	logger := zerolog.Ctx(ctx)

	media, err := parseRequest(req)
	if err != nil {
		return CbcReport{}, err
	}

	text, err := prompt.Render(prompt.CbcReport, prompt.CbcReportData{
		NotReport:  SummaryNotReport,
		Unreadable: SummaryUnreadable,
		Anemia:     SummaryAnemia,
		Normal:     SummaryNormal,
		Parameters: promptParameters,
	})
	if err != nil {
		return CbcReport{}, err
	}

	resp, err := s.ai.Generate(ctx, &agent.Request{
		Flow:   "cbc_report",
		Prompt: text,
		Media:  []agent.Media{media},
		Output: cbcReportSchema,
	})
	if err != nil {
		logger.Warn().Err(err).Str("flow", "cbc_report").Msg("model call failed, returning fallback report")
		return FallbackCbcReport(), nil
	}

	var out cbcReportOutput
	if err := resp.Decode(&out); err != nil {
		logger.Warn().Err(err).Str("flow", "cbc_report").Msg("invalid model output, returning fallback report")
		return FallbackCbcReport(), nil
	}
	return normalizeReport(out), nil
}
