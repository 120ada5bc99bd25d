package api

import (
	"net/http"

	"github.com/dmitrijs2005/agenda/internal/models"
	"github.com/gorilla/mux"
)

type contactResponse struct {
	*models.Contact
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	list, err := s.contacts.List(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGroupedContacts(w http.ResponseWriter, r *http.Request) {
	groups, err := s.contacts.Grouped(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if groups == nil {
		groups = []models.ContactGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := sessionFrom(ctx)
	id := mux.Vars(r)["id"]

	c, err := s.contacts.Get(ctx, sess, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := contactResponse{Contact: c}
	if resp.ProfileImageURL, err = s.contacts.ProfileImageURL(ctx, sess, id); err != nil {
		s.logger.Warn(ctx, "profile image url failed", "id", id, "error", err)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var c models.Contact
	if err := decodeJSON(r, &c); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.contacts.Create(r.Context(), sessionFrom(r.Context()), &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var c models.Contact
	if err := decodeJSON(r, &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	c.ID = mux.Vars(r)["id"]
	ctx := r.Context()
	sess := sessionFrom(ctx)

	if err := s.contacts.Update(ctx, sess, &c); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.contacts.Get(ctx, sess, c.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := s.contacts.Delete(r.Context(), sessionFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
