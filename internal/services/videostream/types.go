package videostream

// Asset is a provider video asset.
type Asset struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"` // preparing, ready, errored
	Duration    float64      `json:"duration"`
	PlaybackIDs []PlaybackID `json:"playback_ids"`
	Tracks      []Track      `json:"tracks"`
}

// PlaybackID identifies a playback endpoint for an asset or live stream.
type PlaybackID struct {
	ID     string `json:"id"`
	Policy string `json:"policy"`
}

// Track is a text track on an asset. Auto-generated subtitle tracks carry
// TextSource "generated_vod".
type Track struct {
	ID           string `json:"id"`
	Type         string `json:"type"` // video, audio, text
	TextType     string `json:"text_type,omitempty"`
	TextSource   string `json:"text_source,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	Name         string `json:"name,omitempty"`
	Status       string `json:"status,omitempty"` // preparing, ready, errored
}

// TextTrackParams describes a subtitle track to attach to an asset. The
// provider ingests the file from URL.
type TextTrackParams struct {
	URL            string `json:"url"`
	Type           string `json:"type"`
	TextType       string `json:"text_type"`
	LanguageCode   string `json:"language_code"`
	Name           string `json:"name,omitempty"`
	ClosedCaptions bool   `json:"closed_captions,omitempty"`
}

// LiveStream is a provider live stream with its ingest key.
type LiveStream struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"` // idle, active, disabled
	StreamKey   string       `json:"stream_key"`
	PlaybackIDs []PlaybackID `json:"playback_ids"`
}

// WebhookEvent is the envelope the provider posts to our webhook endpoint.
type WebhookEvent struct {
	ID   string           `json:"id"`
	Type string           `json:"type"`
	Data WebhookEventData `json:"data"`
}

// WebhookEventData carries the object the event refers to. Which fields are
// set depends on the event type.
type WebhookEventData struct {
	ID          string       `json:"id"`
	Status      string       `json:"status,omitempty"`
	Duration    float64      `json:"duration,omitempty"`
	PlaybackIDs []PlaybackID `json:"playback_ids,omitempty"`
}

// Event types the platform reacts to.
const (
	EventAssetReady       = "video.asset.ready"
	EventAssetErrored     = "video.asset.errored"
	EventLiveStreamActive = "video.live_stream.active"
	EventLiveStreamIdle   = "video.live_stream.idle"
)

// assetEnvelope and friends unwrap the provider's {"data": ...} responses.
type assetEnvelope struct {
	Data Asset `json:"data"`
}

type trackEnvelope struct {
	Data Track `json:"data"`
}

type liveStreamEnvelope struct {
	Data LiveStream `json:"data"`
}
