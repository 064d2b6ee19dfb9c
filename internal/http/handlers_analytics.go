package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
)

func (s *Server) handleBudgetComparison(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePeriodParams(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	ResultResponse(s.dashboard.BudgetComparison(r.Context(), owner(r), p), http.StatusOK).Write(w)
}

func (s *Server) handleBudgetTotal(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePeriodParams(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	ResultResponse(s.dashboard.BudgetTotal(r.Context(), owner(r), p), http.StatusOK).Write(w)
}

func (s *Server) handleMethods(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePeriodParams(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	ResultResponse(s.dashboard.Methods(r.Context(), owner(r), p), http.StatusOK).Write(w)
}

// handleYearly serves the month by category series. type defaults to
// Expenditure.
func (s *Server) handleYearly(w http.ResponseWriter, r *http.Request) {
	year, err := ParseYearParam(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	typ := core.Expenditure
	if v := strings.TrimSpace(r.URL.Query().Get("type")); v != "" {
		typ = core.TransactionType(v)
		if !typ.Valid() {
			BadRequestError(core.ErrInvalidType.Error()).Write(w)
			return
		}
	}
	ResultResponse(s.dashboard.Yearly(r.Context(), owner(r), year, typ), http.StatusOK).Write(w)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	year, err := ParseYearParam(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	ResultResponse(s.dashboard.Monthly(r.Context(), owner(r), year), http.StatusOK).Write(w)
}

func (s *Server) handleAssetsTotal(w http.ResponseWriter, r *http.Request) {
	ResultResponse(s.dashboard.AssetsTotal(r.Context(), owner(r)), http.StatusOK).Write(w)
}
