package http

import (
	"errors"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/form"
	"fintrack/internal/services"
	"fintrack/internal/views"
)

// recordHandlers serves the CRUD routes of one entity.
type recordHandlers[T core.Record, F services.Validator] struct {
	gateway *services.Gateway[T, F]
	schema  form.Schema[F]
}

// registerRecords mounts /api/{name} and /api/{name}/{id}, plus
// /api/{name}/period when the entity belongs to a month.
func registerRecords[T core.Record, F services.Validator](mux *http.ServeMux, s *Server, name string, gw *services.Gateway[T, F], schema form.Schema[F], periodic bool) {
	h := &recordHandlers[T, F]{gateway: gw, schema: schema}
	base := "/api/" + name

	mux.Handle("GET "+base, s.requireSession(http.HandlerFunc(h.list)))
	mux.Handle("POST "+base, s.requireSession(http.HandlerFunc(h.create)))
	mux.Handle("PUT "+base+"/{id}", s.requireSession(http.HandlerFunc(h.update)))
	mux.Handle("DELETE "+base+"/{id}", s.requireSession(http.HandlerFunc(h.delete)))
	if periodic {
		mux.Handle("GET "+base+"/period", s.requireSession(http.HandlerFunc(h.listByPeriod)))
	}
}

func owner(r *http.Request) string {
	session, _ := auth.FromContext(r.Context())
	return session.UserID
}

func (h *recordHandlers[T, F]) list(w http.ResponseWriter, r *http.Request) {
	res := h.gateway.List(r.Context(), owner(r))
	writeList(w, r, res)
}

func (h *recordHandlers[T, F]) listByPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := ParsePeriodParams(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	res := h.gateway.ListByPeriod(r.Context(), owner(r), p)
	writeList(w, r, res)
}

// writeList applies the request's sort and search to a successful load.
func writeList[T core.Record](w http.ResponseWriter, r *http.Request, res core.Result[[]T]) {
	if res.Success {
		params := ParseListParams(r.URL.Query())
		res.Data = views.Apply(res.Data, params.Sort, params.Search)
		if res.Data == nil {
			res.Data = []T{}
		}
	}
	ResultResponse(res, http.StatusOK).Write(w)
}

func (h *recordHandlers[T, F]) create(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.parse(w, r)
	if !ok {
		return
	}
	ResultResponse(h.gateway.Create(r.Context(), fields, owner(r)), http.StatusCreated).Write(w)
}

func (h *recordHandlers[T, F]) update(w http.ResponseWriter, r *http.Request) {
	fields, ok := h.parse(w, r)
	if !ok {
		return
	}
	ResultResponse(h.gateway.Update(r.Context(), r.PathValue("id"), fields, owner(r)), http.StatusOK).Write(w)
}

func (h *recordHandlers[T, F]) delete(w http.ResponseWriter, r *http.Request) {
	ResultResponse(h.gateway.Delete(r.Context(), r.PathValue("id"), owner(r)), http.StatusOK).Write(w)
}

// parse runs the body through the entity schema. On failure it writes the
// response and returns false.
func (h *recordHandlers[T, F]) parse(w http.ResponseWriter, r *http.Request) (F, bool) {
	var zero F
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		if errors.Is(err, ErrBodyTooLarge) {
			ErrorResponse(http.StatusRequestEntityTooLarge, err.Error()).Write(w)
		} else {
			BadRequestError("Invalid request format").Write(w)
		}
		return zero, false
	}

	fields, errs, err := form.Parse(h.schema, p.Values())
	if err != nil {
		ValidationError(errs).Write(w)
		return zero, false
	}
	return fields, true
}
