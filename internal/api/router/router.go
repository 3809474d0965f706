package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sayhiafrica/ticketing-platform/internal/conversation"
	"github.com/sayhiafrica/ticketing-platform/internal/http/handlers"
	httpmiddleware "github.com/sayhiafrica/ticketing-platform/internal/http/middleware"
	"github.com/sayhiafrica/ticketing-platform/internal/messaging"
	"github.com/sayhiafrica/ticketing-platform/internal/payments"
	"github.com/sayhiafrica/ticketing-platform/internal/simulator"
	"github.com/sayhiafrica/ticketing-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	ConversationHandler *conversation.Handler
	WhatsAppWebhook     *messaging.WebhookHandler
	PayFastNotify       *payments.NotifyHandler
	Simulator           *simulator.Handler
	Admin               *handlers.AdminHandler
	AdminAuthSecret     string
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)

		if cfg.ConversationHandler != nil {
			public.Post("/conversations/turn", cfg.ConversationHandler.Turn)
		}
		if cfg.WhatsAppWebhook != nil {
			public.Get("/webhooks/whatsapp", cfg.WhatsAppWebhook.Verify)
			public.Post("/webhooks/whatsapp", cfg.WhatsAppWebhook.Receive)
		}
		if cfg.PayFastNotify != nil {
			public.Post("/webhooks/payfast", cfg.PayFastNotify.Handle)
		}
		if cfg.Simulator != nil {
			public.Route("/simulator", func(sim chi.Router) {
				sim.Get("/ws", cfg.Simulator.HandleWebSocket)
				sim.Post("/turn", cfg.Simulator.HandleTurn)
				sim.Get("/history", cfg.Simulator.HandleHistory)
			})
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	if cfg.Admin != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/events", cfg.Admin.ListEvents)
			admin.Get("/orders", cfg.Admin.ListOrders)
			admin.Get("/stats", cfg.Admin.GetStats)
			admin.Get("/transcripts", cfg.Admin.ListTranscript)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
