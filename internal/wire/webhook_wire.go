package wire

import (
	"sportify-backoffice/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireWebhook(r chi.Router, webhookHandler *adaptor.WebhookHandler) {
	// The handler answers non-POST methods itself with 405 and the callback envelope.
	r.HandleFunc("/api/webhooks/billplz", webhookHandler.BillplzCallback)

	// Callback URL registered with the gateway
	r.HandleFunc("/billplzCallback", webhookHandler.BillplzCallback)
}
