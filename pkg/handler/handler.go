package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/echobridge/relay-backend/pkg/service"

	log "github.com/echobridge/relay-backend/pkg/logger"
)

// Handler exposes the relay's inbound HTTP surface: the platform webhook
// and the registration callback from the skill backend.
type Handler struct {
	service service.Service
	// pipelineTimeout bounds one webhook invocation end to end.
	pipelineTimeout time.Duration
}

func NewHandler(s service.Service, pipelineTimeout time.Duration) *Handler {
	return &Handler{
		service:         s,
		pipelineTimeout: pipelineTimeout,
	}
}

// update is the platform message payload delivered to the webhook.
type update struct {
	Message struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text  string `json:"text"`
		Voice struct {
			FileID string `json:"file_id"`
		} `json:"voice"`
	} `json:"message"`
}

// registration is the payload posted by the skill backend after account
// linking completes. chat_id arrives as a number or a string depending on
// the caller, so it is normalized before use.
type registration struct {
	ChatID       json.RawMessage `json:"chat_id"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
}

func (r registration) chatID() string {
	return strings.Trim(string(r.ChatID), `"`)
}

// Webhook processes one platform update. It always acknowledges with 200 so
// the platform never redelivers an update that has already been answered
// with a user-facing message.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.pipelineTimeout)
	defer cancel()

	logger, _ := log.GetZapLogger(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn("cannot read webhook body", zap.Error(err))
		writeOK(w)
		return
	}

	var u update
	if err := json.Unmarshal(body, &u); err != nil {
		logger.Warn("cannot parse webhook body", zap.Error(err))
		writeOK(w)
		return
	}

	if u.Message.Chat.ID == 0 {
		writeOK(w)
		return
	}
	chatID := strconv.FormatInt(u.Message.Chat.ID, 10)

	switch {
	case u.Message.Voice.FileID != "":
		h.service.HandleVoiceMessage(ctx, chatID, u.Message.Voice.FileID)
	case u.Message.Text != "":
		h.service.HandleTextMessage(ctx, chatID, u.Message.Text)
	default:
		h.service.HandleUnsupportedMessage(ctx, chatID)
	}

	writeOK(w)
}

// Register stores the credentials delivered by the skill backend once the
// user finishes account linking.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger, _ := log.GetZapLogger(ctx)

	var reg registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status": "error", "message": "Malformed request body.",
		})
		return
	}

	chatID := reg.chatID()
	if chatID == "" || reg.AccessToken == "" || reg.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status": "error", "message": "Missing required fields.",
		})
		return
	}

	if err := h.service.RegisterUser(ctx, chatID, reg.AccessToken, reg.RefreshToken); err != nil {
		logger.Error("user registration failed", zap.String("chatID", chatID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "error", "message": "Internal server error.",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func writeOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
