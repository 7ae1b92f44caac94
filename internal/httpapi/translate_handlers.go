package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/lingo/internal/batch"
	"horse.fit/lingo/internal/translation"
)

const maxTranslateBodyBytes = 1 << 20 // 1 MiB

type translateRequestBody struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
	SourceLang string `json:"source_lang,omitempty"`
	Force      bool   `json:"force,omitempty"`
}

func (s *Server) handleTranslate(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Cannot read request body", nil)
	}

	var req translateRequestBody
	if err := json.Unmarshal(body, &req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid JSON body", nil)
	}

	fieldErrors := map[string]string{}
	if strings.TrimSpace(req.Text) == "" {
		fieldErrors["text"] = "text is required"
	}
	if strings.TrimSpace(req.TargetLang) == "" {
		fieldErrors["target_lang"] = "target_lang is required"
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	result, err := s.manager.TranslateText(c.Request().Context(), req.Text, translation.RunOptions{
		TargetLang: req.TargetLang,
		SourceLang: req.SourceLang,
		Force:      req.Force,
	})
	if err != nil {
		return s.translationError(c, err)
	}

	return success(c, result)
}

func (s *Server) handleTranslateBatch(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Cannot read request body", nil)
	}

	validated, err := batch.ValidateRequest(json.RawMessage(body))
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid batch request", map[string]any{
			"detail": err.Error(),
		})
	}

	items := make([]translation.BatchItem, 0, len(validated.Items))
	for _, item := range validated.Items {
		items = append(items, translation.BatchItem{
			Text:       item.Text,
			SourceLang: item.SourceLang,
		})
	}

	stats, results, err := s.manager.TranslateBatch(c.Request().Context(), items, translation.RunOptions{
		TargetLang: validated.TargetLang,
		SourceLang: validated.SourceLang,
	}, nil)
	if err != nil {
		return s.translationError(c, err)
	}

	return success(c, map[string]any{
		"stats":   stats,
		"results": results,
	})
}

func (s *Server) handleProviders(c echo.Context) error {
	return success(c, map[string]any{
		"providers": s.manager.Providers(),
	})
}

func (s *Server) handleLanguages(c echo.Context) error {
	return success(c, map[string]any{
		"languages": translation.LanguageOptions(),
	})
}

func (s *Server) handleTranslationHistory(c echo.Context) error {
	limit := 50
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			return failValidation(c, map[string]string{"limit": "limit must be between 1 and 500"})
		}
		limit = parsed
	}

	rows, err := s.manager.RecentTranslations(c.Request().Context(), c.QueryParam("lang"), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("list translations failed")
		return internalError(c, "Cannot list translations")
	}

	history := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		history = append(history, map[string]any{
			"translation_uuid": row.TranslationUUID,
			"source_lang":      row.SourceLang,
			"target_lang":      row.TargetLang,
			"original_text":    row.OriginalText,
			"translated_text":  row.TranslatedText,
			"provider_name":    row.ProviderName,
			"key_index":        row.KeyIndex,
			"latency_ms":       row.LatencyMS,
			"created_at":       row.CreatedAt,
		})
	}

	return success(c, map[string]any{
		"translations": history,
		"count":        len(history),
	})
}

func (s *Server) handleStats(c echo.Context) error {
	rows, err := s.manager.ProviderStats(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("provider stats failed")
		return internalError(c, "Cannot compute provider stats")
	}

	stats := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, map[string]any{
			"provider_name":  row.ProviderName,
			"translations":   row.Translations,
			"avg_latency_ms": row.AvgLatencyMS,
			"last_used_at":   row.LastUsedAt,
		})
	}

	return success(c, map[string]any{
		"providers": stats,
	})
}

// translationError maps manager failures to HTTP responses. Provider
// exhaustion is the backend's fault, not the caller's.
func (s *Server) translationError(c echo.Context, err error) error {
	var exhausted *translation.ExhaustedError
	if errors.As(err, &exhausted) {
		s.logger.Error().
			Strs("attempted", exhausted.Attempted).
			Msg("all translation providers failed")
		return c.JSON(http.StatusBadGateway, jsendResponse{
			Status:  "error",
			Message: "All translation providers failed",
			Code:    http.StatusBadGateway,
			Data: map[string]any{
				"attempted_providers": exhausted.Attempted,
			},
		})
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fail(c, http.StatusRequestTimeout, "Translation cancelled", nil)
	}
	return fail(c, http.StatusBadRequest, err.Error(), nil)
}

func readBody(c echo.Context) ([]byte, error) {
	return io.ReadAll(io.LimitReader(c.Request().Body, maxTranslateBodyBytes))
}
