package server

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/koustreak/dbanalyser/internal/analyser"
	"github.com/koustreak/dbanalyser/internal/archive"
	"github.com/koustreak/dbanalyser/internal/errs"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// AnalysisResponse is the body of GET /analysis.
type AnalysisResponse struct {
	Database string                 `json:"database"`
	Archived *archive.Entry         `json:"archived,omitempty"`
	Info     *analyser.DatabaseInfo `json:"info"`
}

// ChangesResponse is the body of GET /changes.
type ChangesResponse struct {
	Database string            `json:"database"`
	Baseline archive.Entry     `json:"baseline"`
	Changes  []analyser.Change `json:"changes"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.DB.Ping(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: s.deps.Database})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.analysisContext(r.Context())
	defer cancel()

	info, err := s.deps.Analyser.RunFullAnalysis(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := AnalysisResponse{Database: s.deps.Database, Info: info}
	if s.deps.Archive != nil {
		entry, err := s.deps.Archive.Save(ctx, s.deps.Database, info)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Archived = &entry
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.analysisContext(r.Context())
	defer cancel()

	snap, err := s.deps.Analyser.GetFastSnapshot(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	if s.deps.Archive == nil {
		s.writeError(w, r, errArchiveDisabled)
		return
	}

	ctx, cancel := s.analysisContext(r.Context())
	defer cancel()

	// The archive and the database are separate backends; read both at once.
	var (
		baseline *archive.Record
		snap     *analyser.FastSnapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		baseline, err = s.deps.Archive.Latest(gctx, s.deps.Database)
		return err
	})
	g.Go(func() error {
		var err error
		snap, err = s.deps.Analyser.GetFastSnapshot(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, ChangesResponse{
		Database: s.deps.Database,
		Baseline: baseline.Entry,
		Changes:  analyser.Changes(baseline.Info, snap),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.Archive == nil {
		s.writeError(w, r, errArchiveDisabled)
		return
	}

	entries, err := s.deps.Archive.History(r.Context(), s.deps.Database)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, entries)
}

var errArchiveDisabled = errs.New(errs.ErrKindNotFound, "analysis archive is not configured")
