package server

import (
	"context"
	"net/http"

	"github.com/sinema-chat/sinema/src/chatapi"
	"github.com/sinema-chat/sinema/src/lingo"
	"github.com/sinema-chat/sinema/src/memory"
)

// handleChat runs one chat turn end to end: validate, load memory, classify
// tone, call upstream, sanitize, persist, respond.
//
// Failure policy: upstream failures propagate as mapped error responses; the
// service never substitutes a fallback reply. The record with the appended
// user turn is still persisted on failure, so the user's side of the
// conversation survives a flaky upstream.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   err.Error(),
			Example: &exampleRequest,
		})
		return
	}

	logger := s.logger.With("user_id", req.UserID)

	// Configuration errors are detected before any storage or network work.
	if s.cfg.Upstream.APIKey == "" {
		logger.Error("upstream API key is not configured")
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error: "server configuration error: upstream API key is not set",
		})
		return
	}

	ctx := r.Context()
	record := s.loadRecord(ctx, req.UserID)

	if req.Project != "" {
		record.LastProject = req.Project
	}
	record.LastTask = req.Prompt
	record.Append(chatapi.RoleUser, req.Prompt)

	register := lingo.Classify(req.Prompt)
	logger.Debug("classified prompt", "register", register.String())

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout())
	defer cancel()

	resp, err := s.chat.CreateChatCompletion(callCtx, &chatapi.ChatCompletionRequest{
		Model:       s.cfg.Upstream.Model,
		Messages:    record.Messages(register.ToneInstruction()),
		Temperature: &s.cfg.Upstream.Temperature,
		MaxTokens:   &s.cfg.Upstream.MaxTokens,
		User:        req.UserID,
	})
	if err != nil {
		// The user turn is kept even when the reply never arrived.
		s.persistRecord(ctx, record)
		status, message := statusForUpstreamError(err)
		logger.Error("upstream call failed", "status", status, "error", err)
		body := errorBody{Error: message}
		if s.cfg.Server.DevMode {
			body.Detail = err.Error()
		}
		writeJSON(w, status, body)
		return
	}

	reply := SanitizeReply(chatapi.ReplyText(resp))
	record.Append(chatapi.RoleAssistant, reply)
	s.persistRecord(ctx, record)

	writeJSON(w, http.StatusOK, ChatResponse{
		Reply: reply,
		Memory: MemoryMeta{
			LastProject:        record.LastProject,
			ConversationLength: len(record.Conversation),
			UserID:             record.UserID,
		},
	})
}

// loadRecord fetches the user's record, degrading any storage failure to a
// fresh default. Storage problems never fail the request.
func (s *Server) loadRecord(ctx context.Context, userID string) *memory.ConversationRecord {
	record, source, err := s.store.Load(ctx, userID)
	if err != nil {
		s.logger.Warn("memory load failed, using default record", "user_id", userID, "error", err)
		return memory.NewRecord(userID)
	}
	if source != memory.SourceStored {
		s.logger.Info("initialized default record", "user_id", userID, "source", source.String())
	}
	return record
}

// persistRecord truncates and saves; save failures are logged and swallowed
// because the response (or error) is already decided.
func (s *Server) persistRecord(ctx context.Context, record *memory.ConversationRecord) {
	record.Truncate()
	if err := s.store.Save(ctx, record); err != nil {
		s.logger.Warn("memory save failed", "user_id", record.UserID, "error", err)
	}
}
