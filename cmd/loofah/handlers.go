package main

import (
	"github.com/loofah-social/loofah/tonemod"
	"github.com/loofah-social/loofah/tonemod/styles"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
)

type classifyRequest struct {
	Items         []tonemod.Item `json:"items"`
	Level         string         `json:"level,omitempty"`
	LikeTokens    []string       `json:"like_tokens,omitempty"`
	DislikeTokens []string       `json:"dislike_tokens,omitempty"`
}

type classifyResponse struct {
	Results map[string]tonemod.ClassificationResult `json:"results"`
}

func (s *Server) handleClassify(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "handleClassify")
	defer span.End()

	var req classifyRequest
	if err := c.Bind(&req); err != nil {
		return &echo.HTTPError{Code: 400, Message: "invalid request body"}
	}
	span.SetAttributes(attribute.Int("items.length", len(req.Items)))
	classifyBatches.Inc()

	results := s.coordinator.Classify(ctx, req.Items, tonemod.ParseLevel(req.Level), req.LikeTokens, req.DislikeTokens)
	return c.JSON(200, classifyResponse{Results: results})
}

type rewriteRequest struct {
	Items []tonemod.Item `json:"items"`
	Style string         `json:"style"`
}

type rewriteResponse struct {
	Results map[string]string `json:"results"`
	Meta    rewriteMeta       `json:"meta"`
}

type rewriteMeta struct {
	// how many items each path served: remote, local, passthrough
	Sources map[string]int `json:"sources"`
}

func (s *Server) handleRewrite(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "handleRewrite")
	defer span.End()

	var req rewriteRequest
	if err := c.Bind(&req); err != nil {
		return &echo.HTTPError{Code: 400, Message: "invalid request body"}
	}
	span.SetAttributes(attribute.Int("items.length", len(req.Items)), attribute.String("style", req.Style))
	rewriteBatches.Inc()

	results := s.coordinator.Rewrite(ctx, req.Items, normalizeStyle(req.Style))

	out := rewriteResponse{
		Results: make(map[string]string, len(results)),
		Meta:    rewriteMeta{Sources: make(map[string]int, 3)},
	}
	for id, res := range results {
		out.Results[id] = res.Text
		out.Meta.Sources[res.Source]++
	}
	return c.JSON(200, out)
}

type learnRequest struct {
	Like    []string `json:"like,omitempty"`
	Dislike []string `json:"dislike,omitempty"`
}

type learnResponse struct {
	Like    []string `json:"like"`
	Dislike []string `json:"dislike"`
}

func (s *Server) handleLearn(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "handleLearn")
	defer span.End()

	var req learnRequest
	if err := c.Bind(&req); err != nil {
		return &echo.HTTPError{Code: 400, Message: "invalid request body"}
	}

	if len(req.Like) > 0 {
		if err := s.prefs.AddLike(ctx, req.Like); err != nil {
			s.logger.Error("learn like failed", "err", err)
		}
	}
	if len(req.Dislike) > 0 {
		if err := s.prefs.AddDislike(ctx, req.Dislike); err != nil {
			s.logger.Error("learn dislike failed", "err", err)
		}
	}
	tokensLearned.Add(float64(len(req.Like) + len(req.Dislike)))

	like, dislike, err := s.prefs.Export(ctx)
	if err != nil {
		return &echo.HTTPError{Code: 500, Message: "exporting preferences failed"}
	}
	return c.JSON(200, learnResponse{Like: like, Dislike: dislike})
}

func (s *Server) handleLearnReset(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "handleLearnReset")
	defer span.End()

	// best-effort: a failed durable wipe still clears the in-memory sets
	if err := s.prefs.Reset(ctx); err != nil {
		s.logger.Error("preference reset persistence failed", "err", err)
	}
	like, dislike, err := s.prefs.Export(ctx)
	if err != nil {
		return &echo.HTTPError{Code: 500, Message: "exporting preferences failed"}
	}
	return c.JSON(200, learnResponse{Like: like, Dislike: dislike})
}

type dialectInfo struct {
	Key         string `json:"key"`
	Family      string `json:"family"`
	Description string `json:"description"`
}

type dialectsResponse struct {
	Styles []dialectInfo `json:"styles"`
}

func (s *Server) handleDialects(c echo.Context) error {
	out := dialectsResponse{}
	for _, p := range styles.List() {
		out.Styles = append(out.Styles, dialectInfo{
			Key:         p.SpecKey(),
			Family:      string(p.Family),
			Description: p.Description,
		})
	}
	return c.JSON(200, out)
}
