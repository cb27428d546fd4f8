package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/awantoch/formrelay/constants"
	"github.com/awantoch/formrelay/core"
	"github.com/awantoch/formrelay/forms"
	"github.com/awantoch/formrelay/ingest"
	"github.com/awantoch/formrelay/logger"
)

// maxBodyBytes caps inbound request bodies.
const maxBodyBytes = 1 << 20

type ipnResponse struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message"`
	PaymentID   string             `json:"payment_id"`
	Status      string             `json:"status"`
	ProcessedAt string             `json:"processed_at"`
	Diagnostics ingest.Diagnostics `json:"diagnostics"`
}

type subscribeResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Type      int    `json:"type"`
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
}

type unsubscribeDiagnostics struct {
	Notification ingest.Outcome `json:"notification"`
	Archive      ingest.Outcome `json:"archive"`
}

type unsubscribeResponse struct {
	Success     bool                   `json:"success"`
	Message     string                 `json:"message"`
	Email       string                 `json:"email"`
	Timestamp   string                 `json:"timestamp"`
	Diagnostics unsubscribeDiagnostics `json:"diagnostics"`
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, constants.ResponseInvalidRequestBody)
		return nil, false
	}
	return body, true
}

// writeRequestError renders a request-fatal error from any handler.
func writeRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var ie *ingest.Error
	var de *forms.DeliveryError
	switch {
	case errors.As(err, &ie):
		if ie.Kind == ingest.KindInternal {
			logger.ErrorCtx(r.Context(), "request failed", "error", err)
			writeInternalError(w, err.Error())
			return
		}
		writeJSON(w, ie.Kind.HTTPStatus(), errorResponse{Message: ie.Message, Missing: ie.Missing})
	case errors.As(err, &de):
		var detail any
		if de.Detail != "" {
			detail = de.Detail
		}
		writeJSON(w, de.Status, errorResponse{Message: de.Message, Error: detail})
	default:
		logger.ErrorCtx(r.Context(), "request failed", "error", err)
		writeInternalError(w, err.Error())
	}
}

func ipnHandler(svc *core.Services) http.HandlerFunc {
	header := svc.Config.IPN.SignatureHeader
	if header == "" {
		header = constants.DefaultSignatureHeader
	}
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		res, err := svc.Ingestor.Process(r.Context(), ingest.Request{
			Body:      body,
			Signature: r.Header.Get(header),
		})
		if err != nil {
			writeRequestError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ipnResponse{
			Success:     true,
			Message:     constants.ResponseIPNProcessed,
			PaymentID:   res.PaymentID,
			Status:      res.Status,
			ProcessedAt: timestamp(res.ProcessedAt),
			Diagnostics: res.Diagnostics,
		})
	}
}

func subscribeHandler(svc *core.Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		res, err := svc.Forms.Subscribe(r.Context(), body)
		if err != nil {
			writeRequestError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, subscribeResponse{
			Success:   true,
			Message:   res.Message,
			Type:      res.Type,
			Email:     res.Email,
			Timestamp: timestamp(res.Timestamp),
		})
	}
}

func unsubscribeHandler(svc *core.Services) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		res, err := svc.Forms.Unsubscribe(r.Context(), body)
		if err != nil {
			writeRequestError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, unsubscribeResponse{
			Success:   true,
			Message:   constants.ResponseUnsubscribed,
			Email:     res.Email,
			Timestamp: timestamp(res.Timestamp),
			Diagnostics: unsubscribeDiagnostics{
				Notification: res.Notification,
				Archive:      res.Archive,
			},
		})
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	if _, err := w.Write([]byte(`{"status":"healthy"}`)); err != nil {
		logger.Error(constants.LogFailedWriteHealthCheck, err)
	}
}
