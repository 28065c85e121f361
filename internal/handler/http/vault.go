package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/passvault-io/passvault/internal/app"
	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/internal/utils"
	"github.com/passvault-io/passvault/models"
)

func (h *Handler) vaultPush(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user ID in request context")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.VaultPushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg(app.MsgInvalidJSON)
		http.Error(w, app.MsgInvalidJSON, http.StatusBadRequest)
		return
	}

	revision, err := h.services.VaultService.Push(ctx, userID, req)
	if err != nil {
		log.Err(err).Int64("basedOn", req.BasedOnRevision).Msg("vault push failed")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	utils.WriteJSON(w, models.VaultPushResponse{Revision: revision}, http.StatusOK)
}

func (h *Handler) vaultPull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user ID in request context")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	rev, err := h.services.VaultService.Pull(ctx, userID)
	if err != nil {
		log.Err(err).Msg("vault pull failed")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	utils.WriteJSON(w, rev, http.StatusOK)
}

// vaultRevisions returns the revisions strictly newer than the "since" query
// parameter (0 when absent), oldest first.
func (h *Handler) vaultRevisions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user ID in request context")
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var since int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Err(err).Str("since", raw).Msg(app.MsgMalformedSinceParameter)
			http.Error(w, app.MsgMalformedSinceParameter, http.StatusBadRequest)
			return
		}
		since = parsed
	}

	revs, err := h.services.VaultService.PullSince(ctx, userID, since)
	if err != nil {
		log.Err(err).Int64("since", since).Msg("vault history pull failed")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	utils.WriteJSON(w, revs, http.StatusOK)
}
