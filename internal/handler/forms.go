package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/notes/internal/domain"
)

// maxFormMemory is the part of a multipart form kept in memory.
// The total body is capped by middleware.NewMaxBodySizeHandler.
const maxFormMemory = 32 << 10

// noteForm describes the create/update form: the current values, any field
// errors and the choices for the category and tags selects.
type noteForm struct {
	Values     map[string][]string `json:"values"`
	Errors     map[string]string   `json:"errors,omitempty"`
	Categories []domain.Category   `json:"categories"`
	Tags       []domain.Tag        `json:"tags"`
}

type formResponse struct {
	pageContext
	Form noteForm     `json:"form"`
	Post *domain.Note `json:"post,omitempty"`
}

type deleteResponse struct {
	pageContext
	Post domain.Note `json:"post"`
}

// AddNoteForm handles GET /addpage.
func (s *Server) AddNoteForm(w http.ResponseWriter, r *http.Request) {
	s.renderForm(w, r, http.StatusOK, "Add note", map[string][]string{}, nil, nil)
}

// AddNote handles POST /addpage. The signed-in user becomes the author.
func (s *Server) AddNote(w http.ResponseWriter, r *http.Request) {
	form, ok := s.parseForm(w, r)
	if !ok {
		return
	}
	in, fieldErrs := bindNoteForm(form)
	if len(fieldErrs) > 0 {
		s.renderForm(w, r, http.StatusUnprocessableEntity, "Add note", form, fieldErrs, nil)
		return
	}

	if _, err := s.svc.Notes.Create(r.Context(), in, identity(r)); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.renderForm(w, r, http.StatusUnprocessableEntity, "Add note", form, verr.Fields, nil)
			return
		}
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// EditNoteForm handles GET /edit/{pk}. Drafts are editable.
func (s *Server) EditNoteForm(w http.ResponseWriter, r *http.Request) {
	pk, ok := s.bindPK(w, r)
	if !ok {
		return
	}
	note, err := s.svc.Notes.GetByID(r.Context(), pk)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.renderForm(w, r, http.StatusOK, "Edit note", noteValues(note), nil, &note)
}

// EditNote handles POST /edit/{pk}. The slug is never recomputed.
func (s *Server) EditNote(w http.ResponseWriter, r *http.Request) {
	pk, ok := s.bindPK(w, r)
	if !ok {
		return
	}
	form, ok := s.parseForm(w, r)
	if !ok {
		return
	}
	in, fieldErrs := bindNoteForm(form)
	if len(fieldErrs) > 0 {
		s.renderForm(w, r, http.StatusUnprocessableEntity, "Edit note", form, fieldErrs, nil)
		return
	}

	if _, err := s.svc.Notes.Update(r.Context(), pk, in); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.renderForm(w, r, http.StatusUnprocessableEntity, "Edit note", form, verr.Fields, nil)
			return
		}
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeleteNoteForm handles GET /delete/{pk} with a confirmation context.
func (s *Server) DeleteNoteForm(w http.ResponseWriter, r *http.Request) {
	pk, ok := s.bindPK(w, r)
	if !ok {
		return
	}
	note, err := s.svc.Notes.GetByID(r.Context(), pk)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	pc, err := s.pageContext(r, "Delete note", 0)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, deleteResponse{pageContext: pc, Post: note})
}

// DeleteNote handles POST /delete/{pk}.
func (s *Server) DeleteNote(w http.ResponseWriter, r *http.Request) {
	pk, ok := s.bindPK(w, r)
	if !ok {
		return
	}
	if err := s.svc.Notes.Delete(r.Context(), pk); err != nil {
		s.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, title string, values map[string][]string, fieldErrs map[string]string, note *domain.Note) {
	cats, err := s.svc.Categories.List(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	tags, err := s.svc.Tags.List(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	pc, err := s.pageContext(r, title, 0)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	if tags == nil {
		tags = []domain.Tag{}
	}

	s.writeJSON(w, r, status, formResponse{
		pageContext: pc,
		Form: noteForm{
			Values:     values,
			Errors:     fieldErrs,
			Categories: cats,
			Tags:       tags,
		},
		Post: note,
	})
}

// bindPK reads the {pk} path parameter. Anything but an integer is a 404,
// the same as a route that does not match.
func (s *Server) bindPK(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var pk int64
	err := runtime.BindStyledParameterWithOptions("simple", "pk", chi.URLParam(r, "pk"), &pk, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		s.notFound(w, r)
		return 0, false
	}
	return pk, true
}

// parseForm parses a urlencoded or multipart body and returns its fields.
// It writes 413 or 400 itself when parsing fails.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) (url.Values, bool) {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeJSON(w, r, http.StatusRequestEntityTooLarge, errorBody("too_large", "request body too large"))
			return nil, false
		}
		s.writeJSON(w, r, http.StatusBadRequest, errorBody("bad_request", "malformed form body"))
		return nil, false
	}
	return r.PostForm, true
}

// bindNoteForm converts submitted form fields into a NoteInput.
// Fields that cannot be parsed are reported by name; range and existence
// checks are left to the service.
func bindNoteForm(form url.Values) (domain.NoteInput, map[string]string) {
	errs := map[string]string{}
	in := domain.NoteInput{
		Title:   form.Get("title"),
		Content: form.Get("content"),
	}

	if img := strings.TrimSpace(form.Get("image")); img != "" {
		in.Image = &img
	}

	// An HTML checkbox submits "on" when ticked and nothing otherwise.
	switch v := form.Get("is_published"); v {
	case "":
	case "on":
		in.IsPublished = true
	default:
		if err := runtime.BindStringToObject(v, &in.IsPublished); err != nil {
			errs["is_published"] = "enter a valid boolean"
		}
	}

	if v := strings.TrimSpace(form.Get("category")); v != "" {
		if err := runtime.BindStringToObject(v, &in.CategoryID); err != nil {
			errs["category"] = "select a valid choice"
		}
	}

	for _, v := range form["tags"] {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		var id int64
		if err := runtime.BindStringToObject(v, &id); err != nil {
			errs["tags"] = "select a valid choice"
			continue
		}
		in.TagIDs = append(in.TagIDs, id)
	}

	return in, errs
}

// noteValues renders a note as form values, for the edit page.
func noteValues(n domain.Note) map[string][]string {
	v := map[string][]string{
		"title":        {n.Title},
		"content":      {n.Content},
		"is_published": {strconv.FormatBool(n.IsPublished)},
		"category":     {strconv.FormatInt(n.Category.ID, 10)},
	}
	if n.Image != nil {
		v["image"] = []string{*n.Image}
	}
	for _, t := range n.Tags {
		v["tags"] = append(v["tags"], strconv.FormatInt(t.ID, 10))
	}
	return v
}
