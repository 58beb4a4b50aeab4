package discord

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/dalbodeule/calbot/internal/bot"
	appLog "github.com/dalbodeule/calbot/internal/log"
)

// Server terminates the Discord interactions webhook. Slash commands arrive
// as Ed25519-signed POSTs on /interactions; command handling is delegated
// to the bot handler and the outcome is returned inline as a channel
// message response.
type Server struct {
	handler *bot.Handler
	rest    *Client // may be nil; used for overflow chunks beyond the inline response
	pubKey  ed25519.PublicKey
	mux     *http.ServeMux
}

// NewServer constructs a Server. publicKeyHex is the application's
// hex-encoded Ed25519 verification key. rest may be nil.
func NewServer(handler *bot.Handler, rest *Client, publicKeyHex string) (*Server, error) {
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, errors.New("discord: public key is not valid hex")
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, errors.New("discord: public key has wrong length")
	}

	s := &Server{
		handler: handler,
		rest:    rest,
		pubKey:  ed25519.PublicKey(key),
		mux:     http.NewServeMux(),
	}
	s.registerRoutes()
	return s, nil
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/interactions", s.handleInteractions)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleInteractions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}

	if !s.verifySignature(r, body) {
		// Discord probes the endpoint with bad signatures during setup and
		// requires a 401 here.
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var in Interaction
	if err := json.Unmarshal(body, &in); err != nil {
		http.Error(w, "malformed interaction", http.StatusBadRequest)
		return
	}

	switch in.Type {
	case interactionPing:
		writeResponse(w, interactionResponse{Type: responsePong})
	case interactionApplicationCommand:
		content := s.dispatch(r.Context(), &in)
		s.respondWithContent(r.Context(), w, &in, content)
	default:
		http.Error(w, "unsupported interaction type", http.StatusBadRequest)
	}
}

// verifySignature checks the Ed25519 signature over timestamp||body.
func (s *Server) verifySignature(r *http.Request, body []byte) bool {
	sig, err := hex.DecodeString(r.Header.Get("X-Signature-Ed25519"))
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	ts := r.Header.Get("X-Signature-Timestamp")
	if ts == "" {
		return false
	}
	return ed25519.Verify(s.pubKey, append([]byte(ts), body...), sig)
}

// dispatch routes an application command to the bot handler and returns the
// outcome text.
func (s *Server) dispatch(ctx context.Context, in *Interaction) string {
	reqID := uuid.NewString()
	requester := in.requesterID()

	if in.Data == nil || requester == "" {
		appLog.Warn("interaction missing data or requester", "request_id", reqID)
		return "Sorry, I could not understand that command."
	}

	appLog.Info("command received",
		"request_id", reqID,
		"command", in.Data.Name,
		"requester_id", requester,
	)

	switch in.Data.Name {
	case "schedule":
		sub := subcommand(in.Data.Options)
		if sub == nil {
			return s.handler.ScheduleHelp()
		}
		switch sub.Name {
		case "view":
			return s.handler.ScheduleView(ctx, requester, stringOption(sub.Options, "day"))
		case "add":
			return s.handler.ScheduleAdd(ctx, requester,
				stringOption(sub.Options, "title"),
				stringOption(sub.Options, "time"),
				intOption(sub.Options, "duration", 0),
			)
		case "remove":
			return s.handler.ScheduleRemove(ctx, requester, intOption(sub.Options, "id", 0))
		default:
			return s.handler.ScheduleHelp()
		}
	case "search":
		return s.handler.Search(ctx, stringOption(in.Data.Options, "query"))
	default:
		appLog.Warn("unknown command", "request_id", reqID, "command", in.Data.Name)
		return "Sorry, I don't know that command."
	}
}

// respondWithContent answers the interaction inline. Content beyond the
// message limit is split; the first chunk rides the interaction response
// and the rest are delivered to the channel over REST when possible.
func (s *Server) respondWithContent(ctx context.Context, w http.ResponseWriter, in *Interaction, content string) {
	chunks := SplitMessage(content, MaxMessageLen)
	if len(chunks) == 0 {
		chunks = []string{"Done."}
	}

	writeResponse(w, interactionResponse{
		Type: responseChannelMessage,
		Data: &interactionResponseData{Content: chunks[0]},
	})

	if len(chunks) == 1 {
		return
	}
	if s.rest == nil || in.ChannelID == "" {
		appLog.Warn("dropping overflow chunks, no REST client or channel", "chunks", len(chunks)-1)
		return
	}
	for _, chunk := range chunks[1:] {
		if err := s.rest.sendMessage(ctx, in.ChannelID, chunk); err != nil {
			appLog.Error("overflow chunk delivery failed", err, "channel_id", in.ChannelID)
			return
		}
	}
}

func writeResponse(w http.ResponseWriter, resp interactionResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		appLog.Error("writing interaction response failed", err)
	}
}
