package api

import (
	"net/http"

	"github.com/roach88/teamkit/internal/render"
)

type promptListResponse struct {
	Prompts    []render.Prompt        `json:"prompts"`
	Categories []render.Category      `json:"categories"`
	Counts     map[string]int         `json:"counts"`
	Contexts   []render.PromptContext `json:"contexts"`
}

type promptResponse struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, render.Templates())
}

func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, promptListResponse{
		Prompts: s.prompts.Find(render.PromptFilter{
			Category:   q.Get("category"),
			Difficulty: q.Get("difficulty"),
			Search:     q.Get("q"),
		}),
		Categories: render.Categories,
		Counts:     s.prompts.CategoryCounts(),
		Contexts:   render.PromptContexts,
	})
}

func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	p, ok := s.prompts.Get(r.PathValue("id"))
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "prompt not found", "")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleFillPrompt(w http.ResponseWriter, r *http.Request) {
	p, ok := s.prompts.Get(r.PathValue("id"))
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "prompt not found", "")
		return
	}

	var req render.FillRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, promptResponse{Prompt: render.Fill(p, req)})
}

func (s *Server) handleComposePrompt(w http.ResponseWriter, r *http.Request) {
	var req render.FillRequest
	if err := decodeJSON(w, r, maxJSONBody, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, promptResponse{Prompt: render.Compose(req)})
}
