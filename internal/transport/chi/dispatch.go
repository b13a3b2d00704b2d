package chi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/kbase-cloud/kbsearch/internal/domain"
	articleuc "github.com/kbase-cloud/kbsearch/internal/usecase/article"
)

// dispatchRequest is the envelope shape: a minimal internal RPC carried over
// a single HTTP endpoint.
type dispatchRequest struct {
	Method string          `json:"method"`
	Path   string          `json:"path"`
	Params map[string]any  `json:"params"`
	Body   json.RawMessage `json:"body"`
}

type articleBody struct {
	Slug        *string   `json:"slug"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Content     *string   `json:"content"`
	Status      *string   `json:"status"`
	Tags        *[]string `json:"tags"`
}

type tagBody struct {
	Name string `json:"name"`
}

type searchBody struct {
	Query               string   `json:"query"`
	Limit               *int     `json:"limit"`
	SimilarityThreshold *float64 `json:"similarityThreshold"`
}

// Dispatch handles POST /api/v1/dispatch. The envelope's method and path
// select the operation; writes require an editor key, reads are open but
// limited to published articles for anonymous callers.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	editor := s.auth.IsEditor(r)
	method := strings.ToUpper(req.Method)

	parts := strings.Split(strings.Trim(req.Path, "/"), "/")
	resource := parts[0]

	// Search is open to anonymous callers (it only ranks published
	// articles); every other non-GET operation is a write and needs an
	// editor key.
	if resource != "search" && method != http.MethodGet && !editor {
		writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		return
	}
	id, sub := "", ""
	if len(parts) > 1 {
		id = parts[1]
	}
	if len(parts) > 2 {
		sub = parts[2]
	}

	switch {
	case resource == "articles" && sub == "":
		s.dispatchArticles(w, r, method, id, req, editor)
	case resource == "articles" && sub == "tags" && method == http.MethodPut:
		s.replaceArticleTags(w, r, id, req.Body)
	case resource == "tags" && id == "":
		s.dispatchTags(w, r, method, req.Body)
	case resource == "search" && method == http.MethodPost:
		s.dispatchSearch(w, r, req.Body)
	default:
		writeError(w, http.StatusNotFound, "unknown route: "+method+" "+req.Path)
	}
}

func (s *Server) dispatchArticles(
	w http.ResponseWriter, r *http.Request, method, id string, req dispatchRequest, editor bool,
) {
	switch method {
	case http.MethodGet:
		if id == "" {
			s.listArticles(w, r, req.Params, editor)
			return
		}
		a, err := s.articles.Get(r.Context(), id, editor)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, articleToResponse(&a))

	case http.MethodPost:
		if id != "" {
			writeError(w, http.StatusBadRequest, "POST does not take an article id")
			return
		}
		s.createArticle(w, r, req.Body)

	case http.MethodPut:
		if id == "" {
			writeError(w, http.StatusBadRequest, "article id is required")
			return
		}
		s.updateArticle(w, r, id, req.Body)

	case http.MethodDelete:
		if id == "" {
			writeError(w, http.StatusBadRequest, "article id is required")
			return
		}
		if err := s.articles.Delete(r.Context(), id); err != nil {
			s.handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})

	default:
		writeError(w, http.StatusNotFound, "unknown method for articles: "+method)
	}
}

func (s *Server) listArticles(w http.ResponseWriter, r *http.Request, params map[string]any, editor bool) {
	page := intParam(params, "page", 1)
	limit := intParam(params, "limit", 0)

	articles, err := s.articles.List(r.Context(), page, limit, editor)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]articleResponse, len(articles))
	for i := range articles {
		items[i] = articleToResponse(&articles[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"page":  page,
	})
}

func (s *Server) createArticle(w http.ResponseWriter, r *http.Request, body json.RawMessage) {
	var b articleBody
	if err := unmarshalBody(body, &b); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid article body: "+err.Error())
		return
	}

	in := articleuc.CreateInput{
		Slug:        deref(b.Slug),
		Title:       deref(b.Title),
		Description: deref(b.Description),
		Content:     deref(b.Content),
		Status:      domain.Status(deref(b.Status)),
	}
	if b.Tags != nil {
		in.TagNames = *b.Tags
	}

	a, err := s.articles.Create(r.Context(), in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, articleToResponse(&a))
}

func (s *Server) updateArticle(w http.ResponseWriter, r *http.Request, id string, body json.RawMessage) {
	var b articleBody
	if err := unmarshalBody(body, &b); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid article body: "+err.Error())
		return
	}

	in := articleuc.UpdateInput{
		Slug:        b.Slug,
		Title:       b.Title,
		Description: b.Description,
		Content:     b.Content,
		TagNames:    b.Tags,
	}
	if b.Status != nil {
		st := domain.Status(*b.Status)
		in.Status = &st
	}

	a, err := s.articles.Update(r.Context(), id, in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articleToResponse(&a))
}

func (s *Server) replaceArticleTags(w http.ResponseWriter, r *http.Request, id string, body json.RawMessage) {
	var b struct {
		Tags []string `json:"tags"`
	}
	if err := unmarshalBody(body, &b); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tags body: "+err.Error())
		return
	}

	a, err := s.articles.ReplaceTags(r.Context(), id, b.Tags)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articleToResponse(&a))
}

func (s *Server) dispatchTags(w http.ResponseWriter, r *http.Request, method string, body json.RawMessage) {
	switch method {
	case http.MethodGet:
		tags, err := s.tags.List(r.Context())
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		items := make([]tagResponse, len(tags))
		for i, t := range tags {
			items[i] = tagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug, Color: t.Color}
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})

	case http.MethodPost:
		var b tagBody
		if err := unmarshalBody(body, &b); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid tag body: "+err.Error())
			return
		}
		t, err := s.tags.Create(r.Context(), b.Name)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, tagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug, Color: t.Color})

	default:
		writeError(w, http.StatusNotFound, "unknown method for tags: "+method)
	}
}

func (s *Server) dispatchSearch(w http.ResponseWriter, r *http.Request, body json.RawMessage) {
	var b searchBody
	if err := unmarshalBody(body, &b); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid search body: "+err.Error())
		return
	}
	if strings.TrimSpace(b.Query) == "" {
		writeError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	limit := s.defaults.Limit
	if b.Limit != nil && *b.Limit > 0 {
		limit = *b.Limit
	}
	threshold := s.defaults.Threshold
	if b.SimilarityThreshold != nil {
		threshold = *b.SimilarityThreshold
	}

	results, err := s.search.Search(r.Context(), b.Query, limit, threshold)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]searchResultResponse, len(results))
	for i, res := range results {
		items[i] = searchResultResponse{
			ArticleID:  res.ArticleID,
			Title:      res.Title,
			Content:    res.Content,
			Similarity: res.Similarity,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type articleResponse struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content"`
	Status      string   `json:"status"`
	TagIDs      []string `json:"tag_ids,omitempty"`
	Indexed     bool     `json:"indexed"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
}

type tagResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color"`
}

type searchResultResponse struct {
	ArticleID  string  `json:"article_id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// articleToResponse maps a domain article to its wire shape. Vectors never
// leave the service; Indexed tells clients whether the article is currently
// findable by search.
func articleToResponse(a *domain.Article) articleResponse {
	return articleResponse{
		ID:          a.ID,
		Slug:        a.Slug,
		Title:       a.Title,
		Description: a.Description,
		Content:     a.Content,
		Status:      string(a.Status),
		TagIDs:      a.TagIDs,
		Indexed:     a.Searchable(),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func unmarshalBody(body json.RawMessage, v any) error {
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// intParam reads an integer from the envelope params, tolerating JSON
// numbers and numeric strings.
func intParam(params map[string]any, key string, fallback int) int {
	v, ok := params[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return fallback
}
