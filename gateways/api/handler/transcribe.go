package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joeleesuh/delegate-ai/pkg/json"
)

// maxUploadBytes caps direct transcription uploads at 100 MB.
const maxUploadBytes = 100 << 20

// Transcribe accepts a media upload and returns its transcript without
// persisting anything.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	h.log.Info("transcribe request received", slog.String("remote_addr", r.RemoteAddr))

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.log.Warn("failed to parse multipart form", slog.String("error", err.Error()))
		json.WriteError(w, http.StatusBadRequest, errors.New("no audio file provided"))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		h.log.Warn("no audio file attached", slog.String("error", err.Error()))
		json.WriteError(w, http.StatusBadRequest, errors.New("no audio file provided"))
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		h.log.Error("failed to create temp file", slog.String("error", err.Error()))
		json.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		h.log.Error("failed to save upload", slog.String("error", err.Error()))
		json.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	if err := tmp.Close(); err != nil {
		h.log.Error("failed to close temp file", slog.String("error", err.Error()))
		json.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	h.log.Debug("upload saved",
		slog.String("filename", header.Filename),
		slog.String("tmp_path", tmpPath))

	transcript, err := h.usecase.TranscribeFile(r.Context(), tmpPath)
	if err != nil {
		h.log.Error("transcription failed", slog.String("error", err.Error()))
		json.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	h.log.Info("transcription complete", slog.Int("length", len(transcript)))

	json.WriteJSON(w, http.StatusOK, TranscribeResponse{Transcript: transcript})
}
