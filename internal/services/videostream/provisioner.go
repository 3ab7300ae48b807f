package videostream

import (
	"context"
	"fmt"

	"github.com/thereadylab/readylab-api/internal/services/events"
)

// Provisioner adapts the client to the live-event stream provisioning
// interface.
type Provisioner struct {
	client *Client
}

func NewProvisioner(client *Client) *Provisioner {
	return &Provisioner{client: client}
}

func (p *Provisioner) CreateLiveStream(ctx context.Context) (*events.ProvisionedStream, error) {
	stream, err := p.client.CreateLiveStream(ctx)
	if err != nil {
		return nil, err
	}
	if len(stream.PlaybackIDs) == 0 {
		return nil, fmt.Errorf("live stream %s has no playback ID", stream.ID)
	}
	return &events.ProvisionedStream{
		StreamID:   stream.ID,
		StreamKey:  stream.StreamKey,
		PlaybackID: stream.PlaybackIDs[0].ID,
	}, nil
}

func (p *Provisioner) DeleteLiveStream(ctx context.Context, streamID string) error {
	return p.client.DeleteLiveStream(ctx, streamID)
}
