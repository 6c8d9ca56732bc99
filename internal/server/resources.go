package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rpattn/fishql/internal/export"
	"github.com/rpattn/fishql/internal/filter"
	"github.com/rpattn/fishql/internal/middleware"
	"github.com/rpattn/fishql/internal/model"
	"github.com/rpattn/fishql/internal/referential"
	"github.com/rpattn/fishql/internal/store"
)

// Default page size when the request sets none.
const defaultPageSize = 100

// resource describes one entity collection served under path.
type resource[E model.Entity, F filter.Filter[E]] struct {
	path       string
	collection string
	from       func(model.Object) E
	filterFrom func(model.Object) F
	// columns enables the export routes when set.
	columns []export.Column[E]
}

// listResponse mirrors the data/total aliases of the GraphQL list queries.
type listResponse struct {
	Data  []model.Object `json:"data"`
	Total int            `json:"total"`
}

type exportResponse struct {
	FileName     string `json:"fileName"`
	MimeType     string `json:"mimeType"`
	RowsExported int    `json:"rowsExported"`
	BytesWritten int64  `json:"bytesWritten"`
	DownloadURL  string `json:"downloadUrl"`
}

func mountResource[E model.Entity, F filter.Filter[E]](s *Server, r chi.Router, res resource[E, F]) {
	ds := store.NewDataSource(s.deps.Store, res.collection, res.from)

	r.Route(res.path, func(sub chi.Router) {
		sub.Get("/", func(w http.ResponseWriter, r *http.Request) {
			f, err := readFilter(r, res.filterFrom)
			if err != nil {
				WriteError(w, err)
				return
			}
			page, err := s.readPage(r)
			if err != nil {
				WriteError(w, err)
				return
			}
			items, total, err := ds.Load(r.Context(), f, page)
			if err != nil {
				WriteError(w, err)
				return
			}
			WriteJSON(w, http.StatusOK, listResponse{Data: objects(items), Total: total})
		})

		sub.Post("/", func(w http.ResponseWriter, r *http.Request) {
			obj, err := readObject(r.Body)
			if err != nil {
				WriteError(w, err)
				return
			}
			saved, err := ds.Save(r.Context(), res.from(obj))
			if err != nil {
				WriteError(w, err)
				return
			}
			WriteJSON(w, http.StatusOK, saved.AsObject(model.AsObjectOptions{KeepTypename: true}))
		})

		if len(res.columns) > 0 && s.deps.Exports != nil {
			sub.Get("/export.{format}", func(w http.ResponseWriter, r *http.Request) {
				format, err := export.ParseFormat(chi.URLParam(r, "format"))
				if err != nil {
					WriteError(w, err)
					return
				}
				f, err := readFilter(r, res.filterFrom)
				if err != nil {
					WriteError(w, err)
					return
				}
				base := strings.TrimPrefix(res.path, "/")
				result, err := export.Export(r.Context(), s.deps.Exports, ds, f, res.columns, base, format)
				if err != nil {
					WriteError(w, err)
					return
				}
				WriteJSON(w, http.StatusOK, exportResponse{
					FileName:     result.FileName,
					MimeType:     result.MimeType,
					RowsExported: result.RowsExported,
					BytesWritten: result.BytesWritten,
					DownloadURL:  s.deps.Exports.BuildDownloadURL(result.FileName),
				})
			})
		}

		sub.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := readID(r)
			if err != nil {
				WriteError(w, err)
				return
			}
			e, err := ds.Get(r.Context(), id)
			if err != nil {
				WriteError(w, err)
				return
			}
			WriteJSON(w, http.StatusOK, e.AsObject(model.AsObjectOptions{KeepTypename: true}))
		})

		sub.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := readID(r)
			if err != nil {
				WriteError(w, err)
				return
			}
			if err := ds.Delete(r.Context(), id); err != nil {
				WriteError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
}

// handleGetEntity reads any stored entity through the registry.
func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	typename := chi.URLParam(r, "typename")
	if !s.deps.Registry.Knows(typename) {
		WriteError(w, fmt.Errorf("%w: %q", model.ErrUnknownTypename, typename))
		return
	}
	id, err := readID(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	obj, err := s.deps.Store.Get(r.Context(), typename, id)
	if err != nil {
		WriteError(w, err)
		return
	}
	e, err := s.deps.Registry.FromTypedObject(typename, obj)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, e.AsObject(model.AsObjectOptions{KeepTypename: true}))
}

func (s *Server) handleListReferentials(w http.ResponseWriter, r *http.Request) {
	entityName := chi.URLParam(r, "entityName")
	f, err := readFilter(r, filter.ReferentialFilterFromObject)
	if err != nil {
		WriteError(w, err)
		return
	}
	page, err := s.readPage(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	collection := store.ReferentialCollection(model.TypenameReferential, entityName)
	ds := store.NewDataSource(s.deps.Store, collection, storedRef)
	items, total, err := ds.Load(r.Context(), f, page)
	if err != nil {
		WriteError(w, err)
		return
	}
	for _, item := range items {
		item.EntityName = entityName
	}
	WriteJSON(w, http.StatusOK, listResponse{Data: objects(items), Total: total})
}

// storedRef reads a stored referential, whether its status and level were
// written nested or flat.
func storedRef(obj model.Object) *model.ReferentialRef {
	return model.ReferentialFromObject(obj).AsRef()
}

// handleGetReferential resolves one reference through the request loader,
// which falls back to the backend when the local store lacks it.
func (s *Server) handleGetReferential(w http.ResponseWriter, r *http.Request) {
	loader := middleware.ReferentialLoaderFromContext(r.Context())
	if loader == nil {
		WriteError(w, fmt.Errorf("%w: no referential loader configured", referential.ErrNotFound))
		return
	}
	id, err := readID(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	ref, err := loader.Load(r.Context(), chi.URLParam(r, "entityName"), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ref.AsObject(model.AsObjectOptions{KeepTypename: true}))
}

// readFilter parses the filter query parameter, a JSON object in the same
// form the GraphQL backend receives. A missing parameter gives an empty
// filter.
func readFilter[F any](r *http.Request, from func(model.Object) F) (F, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("filter"))
	if raw == "" {
		return from(model.Object{}), nil
	}
	obj, err := model.ParseObject([]byte(raw))
	if err != nil {
		var zero F
		return zero, badRequest{fmt.Errorf("invalid filter: %w", err)}
	}
	return from(obj), nil
}

func (s *Server) readPage(r *http.Request) (store.Page, error) {
	page := store.Page{Size: defaultPageSize}
	query := r.URL.Query()
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return page, badRequest{fmt.Errorf("invalid offset %q", raw)}
		}
		page.Offset = offset
	}
	if raw := query.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return page, badRequest{fmt.Errorf("invalid size %q", raw)}
		}
		page.Size = size
	}
	if page.Size > s.opts.MaxPageSize {
		page.Size = s.opts.MaxPageSize
	}
	page.SortBy = strings.TrimSpace(query.Get("sortBy"))
	page.SortDirection = store.ParseSortDirection(query.Get("sortDirection"))
	return page, nil
}

func readID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest{fmt.Errorf("invalid id %q", raw)}
	}
	return id, nil
}

func readObject(body io.Reader) (model.Object, error) {
	data, err := io.ReadAll(io.LimitReader(body, 4<<20))
	if err != nil {
		return nil, badRequest{fmt.Errorf("failed to read body: %w", err)}
	}
	if !json.Valid(data) {
		return nil, badRequest{fmt.Errorf("body is not a JSON object")}
	}
	obj, err := model.ParseObject(data)
	if err != nil {
		return nil, badRequest{err}
	}
	if len(obj) == 0 {
		return nil, badRequest{store.ErrEmptyEntity}
	}
	return obj, nil
}

func objects[E model.Entity](items []E) []model.Object {
	out := make([]model.Object, 0, len(items))
	for _, item := range items {
		out = append(out, item.AsObject(model.AsObjectOptions{KeepTypename: true}))
	}
	return out
}
