package webhooks

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereadylab/readylab-api/api/types"
	"github.com/thereadylab/readylab-api/internal/services/lessons"
	"github.com/thereadylab/readylab-api/internal/services/subscriptions"
	"github.com/thereadylab/readylab-api/internal/services/videostream"
	"github.com/thereadylab/readylab-api/pkg/signature"
)

// SignatureHeader carries the timestamped HMAC of the raw request body
const SignatureHeader = "ReadyLab-Signature"

// maxBodySize caps webhook payloads at 1 MiB
const maxBodySize = 1 << 20

// paymentEvent is the payload shape of the payment provider's webhooks
type paymentEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		SubscriptionID uint  `json:"subscription_id"`
		PeriodEnd      int64 `json:"period_end"`
	} `json:"data"`
}

// readAndVerify reads the raw body and checks its signature. It writes the
// error response itself when verification fails.
func readAndVerify(c *gin.Context, secret string) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize))
	if err != nil {
		types.SendBadRequest(c, "Failed to read request body")
		return nil, false
	}

	if err := signature.Verify(c.GetHeader(SignatureHeader), secret, body, 0); err != nil {
		log.Printf("[WARN] Webhook signature rejected: %v", err)
		types.SendUnauthorized(c, "Invalid signature")
		return nil, false
	}
	return body, true
}

// Video handles webhooks from the video provider
// @Summary Video provider webhook
// @Tags webhooks
// @Accept json
// @Produce json
// @Param ReadyLab-Signature header string true "Timestamped HMAC signature"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} types.ErrorResponse "Invalid signature"
// @Router /webhooks/video [post]
func Video(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, ok := readAndVerify(c, deps.VideoWebhookSecret)
		if !ok {
			return
		}

		var event videostream.WebhookEvent
		if err := json.Unmarshal(body, &event); err != nil {
			types.SendBadRequest(c, "Malformed event payload")
			return
		}
		if event.ID == "" || event.Type == "" {
			types.SendBadRequest(c, "Event id and type are required")
			return
		}

		// Redelivered events are acknowledged without reprocessing.
		processed, err := deps.CaptionService.IsEventProcessed(c.Request.Context(), event.ID)
		if err != nil {
			types.SendInternalError(c, "Failed to check event")
			return
		}
		if processed {
			log.Printf("[DEBUG] Skipping already processed webhook event %s", event.ID)
			c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "duplicate": true})
			return
		}

		if err := dispatchVideoEvent(c, deps, event); err != nil {
			log.Printf("[ERROR] Failed to process webhook event %s (%s): %v", event.ID, event.Type, err)
			types.SendInternalError(c, "Failed to process event")
			return
		}

		if err := deps.CaptionService.RecordEvent(c.Request.Context(), event.ID, event.Type, event.Data.ID); err != nil {
			log.Printf("[WARN] Failed to record webhook event %s: %v", event.ID, err)
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK})
	}
}

func dispatchVideoEvent(c *gin.Context, deps *types.Dependencies, event videostream.WebhookEvent) error {
	ctx := c.Request.Context()

	switch event.Type {
	case videostream.EventAssetReady:
		playbackID := ""
		if len(event.Data.PlaybackIDs) > 0 {
			playbackID = event.Data.PlaybackIDs[0].ID
		}
		lesson, err := deps.LessonService.MarkAssetReady(ctx, event.Data.ID, playbackID, event.Data.Duration)
		if err != nil {
			// An asset we never heard of is not an error worth retrying.
			if errors.Is(err, lessons.ErrLessonNotFound) {
				log.Printf("[DEBUG] Webhook for unknown asset %s", event.Data.ID)
				return nil
			}
			return err
		}
		if len(deps.CaptionLanguages) > 0 {
			if err := deps.CaptionService.RequestCaptionsForAsset(ctx, lesson.ID, event.Data.ID, deps.CaptionLanguages); err != nil {
				log.Printf("[WARN] Failed to request captions for asset %s: %v", event.Data.ID, err)
			}
		}
		return nil

	case videostream.EventAssetErrored:
		if err := deps.LessonService.MarkAssetErrored(ctx, event.Data.ID); err != nil {
			if errors.Is(err, lessons.ErrLessonNotFound) {
				return nil
			}
			return err
		}
		return nil

	case videostream.EventLiveStreamActive:
		return deps.EventService.MarkStreamActive(ctx, event.Data.ID)

	case videostream.EventLiveStreamIdle:
		return deps.EventService.MarkStreamIdle(ctx, event.Data.ID)

	default:
		log.Printf("[DEBUG] Ignoring webhook event type %s", event.Type)
		return nil
	}
}

// Payments handles webhooks from the payment provider
// @Summary Payment provider webhook
// @Tags webhooks
// @Accept json
// @Produce json
// @Param ReadyLab-Signature header string true "Timestamped HMAC signature"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} types.ErrorResponse "Invalid signature"
// @Router /webhooks/payments [post]
func Payments(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, ok := readAndVerify(c, deps.PaymentWebhookSecret)
		if !ok {
			return
		}

		var event paymentEvent
		if err := json.Unmarshal(body, &event); err != nil {
			types.SendBadRequest(c, "Malformed event payload")
			return
		}
		if event.ID == "" || event.Type == "" {
			types.SendBadRequest(c, "Event id and type are required")
			return
		}

		err := deps.SubscriptionService.ProcessPaymentEvent(c.Request.Context(), subscriptions.PaymentEventInput{
			ProviderEventID: event.ID,
			Type:            event.Type,
			SubscriptionID:  event.Data.SubscriptionID,
			PeriodEnd:       event.Data.PeriodEnd,
		})
		if err != nil {
			// The provider retries anything but a 2xx, so acknowledge events
			// for subscriptions we do not track instead of erroring forever.
			if errors.Is(err, subscriptions.ErrSubscriptionNotFound) {
				log.Printf("[DEBUG] Ignoring payment event %s for unknown subscription %d",
					event.ID, event.Data.SubscriptionID)
				c.JSON(http.StatusOK, gin.H{"status": types.StatusOK, "ignored": true})
				return
			}
			log.Printf("[ERROR] Failed to process payment event %s (%s): %v", event.ID, event.Type, err)
			types.SendInternalError(c, "Failed to process event")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": types.StatusOK})
	}
}
