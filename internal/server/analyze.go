package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/tradeops/internal/pipeline"
	"github.com/mohammad-safakhou/tradeops/models"
)

const maxSectorLen = 50

// Analyze
//
//	@Summary		Sector analysis
//	@Description	Runs the search/plan/fetch/synthesize pipeline for a sector
//	@Tags			analyze
//	@Produce		text/markdown
//	@Param			sector	path	string	true	"Sector name (letters and spaces)"
//	@Success		200	{string}	string	"markdown report"
//	@Failure		400	{object}	HTTPError
//	@Failure		401	{object}	HTTPError
//	@Failure		429	{object}	HTTPError
//	@Failure		502	{object}	HTTPError
//	@Router			/analyze/{sector} [get]
func (s *Server) analyze(c echo.Context) error {
	if err := s.admit(c); err != nil {
		return err
	}

	sector, err := url.PathUnescape(c.Param("sector"))
	if err != nil || !validSector(sector) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid sector name")
	}

	rep, err := s.Pipeline.Analyze(c.Request().Context(), sector)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrNoResults),
			errors.Is(err, pipeline.ErrSearchProvider),
			errors.Is(err, pipeline.ErrSynthesisFailed):
			s.Metrics.AnalyzeRequest("upstream_error")
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		default:
			s.Metrics.AnalyzeRequest("error")
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	s.persistReport(sector, rep)
	s.Metrics.AnalyzeRequest("ok")
	return c.Blob(http.StatusOK, "text/markdown", []byte(rep.Markdown))
}

func validSector(sector string) bool {
	// the cap counts characters, not bytes: non-ASCII letters are legal
	if sector == "" || utf8.RuneCountInString(sector) > maxSectorLen {
		return false
	}
	for _, r := range sector {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// persistReport writes the report to disk when a reports dir is
// configured. Strictly best effort: a failed write is logged and the
// response proceeds untouched.
func (s *Server) persistReport(sector string, rep models.Report) {
	if s.ReportsDir == "" {
		return
	}
	name := fmt.Sprintf("report_%s_%d.md", strings.ReplaceAll(sector, " ", "_"), rep.GeneratedAt.Unix())
	path := filepath.Join(s.ReportsDir, name)
	if err := os.WriteFile(path, []byte(rep.Markdown), 0o644); err != nil && s.Logger != nil {
		s.Logger.Printf("failed to persist report %s: %v", path, err)
	}
}
