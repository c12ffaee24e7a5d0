package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"mime"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/gorilla/mux"

	"github.com/Bizimana-jeanluc/moviesBox/services/transfer"
)

const proxyBufferSize = 256 * 1024

type transferService interface {
	Synthetic(kind transfer.Kind, slug string) transfer.Payload
	Open(ctx context.Context, id string) (*transfer.Download, error)
}

var _ transferService = (*transfer.Service)(nil)

type TransferHandler struct {
	Service transferService
}

func NewTransferHandler(s transferService) *TransferHandler {
	return &TransferHandler{Service: s}
}

func (h *TransferHandler) Stream(w http.ResponseWriter, r *http.Request) {
	h.serveSynthetic(w, r, transfer.KindStream)
}

func (h *TransferHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.serveSynthetic(w, r, transfer.KindDownload)
}

func (h *TransferHandler) serveSynthetic(w http.ResponseWriter, r *http.Request, kind transfer.Kind) {
	slug := mux.Vars(r)["slug"]
	payload := h.Service.Synthetic(kind, slug)
	defer payload.Body.Close()

	for key, values := range payload.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, payload.Body); err != nil && !isClientGone(err) {
		log.Printf("[transfer] %s %q write failed: %v", kind, slug, err)
	}
}

// ProxyDownload relays the title's external file to the client as an attachment.
func (h *TransferHandler) ProxyDownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	dl, err := h.Service.Open(r.Context(), id)
	if err != nil {
		log.Printf("[transfer] download %q failed: %v", id, err)
		status := http.StatusBadGateway
		message := "The download could not be started. Please try again later."
		if errors.Is(err, transfer.ErrNotAvailable) {
			status = http.StatusNotFound
			message = "This movie is not available for download."
		}
		renderPage(w, status, "download_failed.html", PageData{Title: "Download Failed", Message: message})
		return
	}
	defer dl.Close()

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}))
	w.Header().Set("Cache-Control", "no-cache")
	if dl.ContentLength >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(dl.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	buf := make([]byte, proxyBufferSize)
	written, err := io.CopyBuffer(w, dl.Body, buf)
	if err != nil {
		if isClientGone(err) {
			log.Printf("[transfer] client left download %q after %d bytes", id, written)
			return
		}
		// Headers are already out, so the client just sees a truncated body.
		log.Printf("[transfer] proxy transfer failed for %q after %d bytes: %v", id, written, err)
		return
	}
	log.Printf("[transfer] download %q complete (%d bytes)", id, written)
}

func isClientGone(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) && netErr.Err != nil {
		if errors.Is(netErr.Err, syscall.EPIPE) || errors.Is(netErr.Err, syscall.ECONNRESET) || errors.Is(netErr.Err, os.ErrClosed) {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset")
}
