package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/onestaff/onestaff-os/internal/domain/payroll"
	"github.com/onestaff/onestaff-os/internal/handler/http/middleware"
	"github.com/onestaff/onestaff-os/internal/handler/http/response"
	"github.com/onestaff/onestaff-os/internal/pkg/jwt"
	"github.com/onestaff/onestaff-os/internal/pkg/sse"
	payrollservice "github.com/onestaff/onestaff-os/internal/service/payroll"
)

const keepaliveInterval = 30 * time.Second

// PayrollEventsHandler streams run lifecycle events over SSE
type PayrollEventsHandler interface {
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type payrollEventsHandlerImpl struct {
	hub        *sse.Hub
	jwtService jwt.Service
}

func NewPayrollEventsHandler(hub *sse.Hub, jwtService jwt.Service) PayrollEventsHandler {
	return &payrollEventsHandlerImpl{
		hub:        hub,
		jwtService: jwtService,
	}
}

// GetSSEToken generates a short-lived token for SSE connections
func (h *payrollEventsHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(principal.UserID)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, payroll.SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream handles SSE connection for run events
func (h *payrollEventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send headers, so the token arrives in the query
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	userID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(payrollservice.RunEventsTopic)
	defer cleanup()
	slog.InfoContext(r.Context(), "Run event stream opened",
		"user_id", userID, "subscribers", h.hub.SubscriberCount(payrollservice.RunEventsTopic))

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"user_id\":%q}\n\n", userID)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
