package frontend

import (
	"net/http"
	"strconv"
	"strings"

	"fflogs_phase_ranker/analysis"
	"fflogs_phase_ranker/dataset"
	"fflogs_phase_ranker/fflogs"
	"fflogs_phase_ranker/share"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const selectionPrefix = "dataset."

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps pipeline errors to a status. Remote and data errors keep their
// message; anything unexpected is reported and hidden.
func writeError(c *gin.Context, err error) {
	var (
		remoteErr *fflogs.RemoteError
		loadErr   *dataset.LoadError
		parseErr  *dataset.ParseError
	)

	status := http.StatusInternalServerError
	msg := http.StatusText(status)

	switch {
	case errors.As(err, &remoteErr):
		status, msg = http.StatusBadGateway, remoteErr.Message
	case errors.As(err, &loadErr), errors.As(err, &parseErr):
		status, msg = http.StatusBadGateway, err.Error()
	case errors.Is(err, analysis.ErrFightNotFound), errors.Is(err, analysis.ErrPhaseNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, errBadRequest),
		errors.Is(err, analysis.ErrUnknownDataset),
		errors.Is(err, fflogs.ErrMissingCredential),
		errors.Is(err, fflogs.ErrMissingReport):
		status, msg = http.StatusBadRequest, err.Error()
	default:
		share.CaptureError(err)
	}

	c.AbortWithStatusJSON(status, &errorResponse{Error: msg})
}

func badRequest(format string, args ...interface{}) error {
	return errors.Wrapf(errBadRequest, format, args...)
}

func intParam(s string, name string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, badRequest("%s: %q is not a number", name, s)
	}
	return v, nil
}

////////////////////////////////////////////////////////////////////////////////////////////////////

func (s *server) routeDatasets(c *gin.Context) {
	catalog, err := s.opt.Library.Catalog(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, catalog.Descriptors)
}

func (s *server) routeEncounters(c *gin.Context) {
	catalog, err := s.opt.Library.Catalog(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	type encounter struct {
		Name   string `json:"name"`
		Phases []int  `json:"phases"`
	}

	names := catalog.Encounters()
	resp := make([]encounter, len(names))
	for i, name := range names {
		resp[i] = encounter{
			Name:   name,
			Phases: catalog.Phases(name),
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *server) routeResolve(c *gin.Context) {
	encounter := c.Query("encounter")
	if encounter == "" {
		writeError(c, badRequest("encounter is required"))
		return
	}
	phase, err := intParam(c.Query("phase"), "phase")
	if err != nil {
		writeError(c, err)
		return
	}

	candidates, err := s.opt.Library.Resolve(c.Request.Context(), encounter, phase)
	if err != nil {
		writeError(c, err)
		return
	}
	if candidates == nil {
		candidates = []*dataset.Descriptor{}
	}

	c.JSON(http.StatusOK, candidates)
}

func (s *server) routeTable(c *gin.Context) {
	ref := c.Query("ref")
	if ref == "" {
		writeError(c, badRequest("ref is required"))
		return
	}

	table, err := s.opt.Library.Table(c.Request.Context(), ref)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, table)
}

////////////////////////////////////////////////////////////////////////////////////////////////////

// session returns the session of the report named in the path. The credential comes
// from the X-API-Key header or the apiKey query parameter.
func (s *server) session(c *gin.Context) (*analysis.Session, error) {
	code, _, ok := fflogs.ParseReportURL(c.Param("code"))
	if !ok {
		return nil, badRequest("report: %q", c.Param("code"))
	}

	credential := strings.TrimSpace(c.GetHeader("X-API-Key"))
	if credential == "" {
		credential = strings.TrimSpace(c.Query("apiKey"))
	}
	if credential == "" {
		return nil, errors.WithStack(fflogs.ErrMissingCredential)
	}

	return s.sessions.get(
		code,
		credential,
		func() *analysis.Session {
			return analysis.NewSession(s.opt.NewReporter(code, credential), s.opt.Library)
		},
	), nil
}

func (s *server) routeReport(c *gin.Context) {
	session, err := s.session(c)
	if err != nil {
		writeError(c, err)
		return
	}

	report, err := session.Report(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *server) routeFight(c *gin.Context) {
	fightID, err := intParam(c.Param("fight"), "fight")
	if err != nil {
		writeError(c, err)
		return
	}

	selection := make(map[int]string)
	for key, values := range c.Request.URL.Query() {
		if !strings.HasPrefix(key, selectionPrefix) || len(values) == 0 {
			continue
		}
		phaseID, err := intParam(strings.TrimPrefix(key, selectionPrefix), key)
		if err != nil {
			writeError(c, err)
			return
		}
		selection[phaseID] = values[0]
	}

	session, err := s.session(c)
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := session.RankFight(c.Request.Context(), fightID, selection, nil)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// routePhase ranks one phase again with the dataset named by the dataset query parameter.
func (s *server) routePhase(c *gin.Context) {
	fightID, err := intParam(c.Param("fight"), "fight")
	if err != nil {
		writeError(c, err)
		return
	}
	phaseID, err := intParam(c.Param("phase"), "phase")
	if err != nil {
		writeError(c, err)
		return
	}

	session, err := s.session(c)
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := session.Rerank(c.Request.Context(), fightID, phaseID, c.Query("dataset"))
	if err != nil {
		writeError(c, err)
		return
	}
	if errors.Is(res.Err, analysis.ErrUnknownDataset) {
		writeError(c, res.Err)
		return
	}

	c.JSON(http.StatusOK, res)
}
