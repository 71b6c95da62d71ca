package sam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/pangeans/unprompted/internal/domain/entity"
	"github.com/pangeans/unprompted/internal/domain/port"
)

type initStateRequest struct {
	FramesDir string `json:"frames_dir"`
	Device    string `json:"device"`
}

type initStateResponse struct {
	StateID string `json:"state_id"`
}

type stateRequest struct {
	StateID string `json:"state_id"`
}

type addPointsRequest struct {
	StateID    string         `json:"state_id"`
	FrameIndex int            `json:"frame_index"`
	ObjectID   int            `json:"object_id"`
	Points     []entity.Point `json:"points"`
	Labels     []int          `json:"labels"`
}

type addPointsResponse struct {
	Mask wireMask `json:"mask"`
}

// propagateFrame is one element of the propagation stream: the masks for
// every tracked object in one frame, keyed by object ID.
type propagateFrame struct {
	FrameIndex int                 `json:"frame_index"`
	Masks      map[string]wireMask `json:"masks"`
}

// InitState creates a video inference state over the extracted frame
// directory. Must be called once before AddPoints or Propagate.
func (c *Client) InitState(ctx context.Context, framesDir string) error {
	var resp initStateResponse
	req := initStateRequest{FramesDir: framesDir, Device: c.device}
	if err := c.post(ctx, "/video/init_state", req, &resp); err != nil {
		return fmt.Errorf("init state: %w", err)
	}
	if resp.StateID == "" {
		return errors.New("init state: server returned empty state id")
	}
	c.stateID = resp.StateID
	c.logger.Debug("video inference state initialized",
		zap.String("state_id", resp.StateID),
		zap.String("frames_dir", framesDir),
	)
	return nil
}

// ResetState clears all accumulated points and objects from the inference
// state.
func (c *Client) ResetState(ctx context.Context) error {
	if c.stateID == "" {
		return errors.New("reset state: no inference state initialized")
	}
	if err := c.post(ctx, "/video/reset_state", stateRequest{StateID: c.stateID}, nil); err != nil {
		return fmt.Errorf("reset state: %w", err)
	}
	return nil
}

// AddPoints submits the full accumulated point list for one object on one
// frame and returns the resulting candidate mask. Points accumulate in
// the server-side inference state per object.
func (c *Client) AddPoints(ctx context.Context, frameIndex, objectID int, points []entity.Point, labels []int) (entity.Mask, error) {
	if c.stateID == "" {
		return entity.Mask{}, errors.New("add points: no inference state initialized")
	}
	var resp addPointsResponse
	req := addPointsRequest{
		StateID:    c.stateID,
		FrameIndex: frameIndex,
		ObjectID:   objectID,
		Points:     points,
		Labels:     labels,
	}
	if err := c.post(ctx, "/video/add_points", req, &resp); err != nil {
		return entity.Mask{}, fmt.Errorf("add points: %w", err)
	}
	return resp.Mask.decode()
}

// Propagate tracks every finalized object across all frames. The server
// streams one JSON object per frame; fn is invoked in frame order.
func (c *Client) Propagate(ctx context.Context, fn port.PropagationFunc) error {
	if c.stateID == "" {
		return errors.New("propagate: no inference state initialized")
	}

	return c.stream(ctx, "/video/propagate", stateRequest{StateID: c.stateID}, func(body io.Reader) error {
		dec := json.NewDecoder(body)
		for {
			var frame propagateFrame
			if err := dec.Decode(&frame); err == io.EOF {
				return nil
			} else if err != nil {
				return fmt.Errorf("decode propagation stream: %w", err)
			}

			masks := make(map[int]entity.Mask, len(frame.Masks))
			for idStr, wm := range frame.Masks {
				objID, err := strconv.Atoi(idStr)
				if err != nil {
					return fmt.Errorf("propagation frame %d: bad object id %q", frame.FrameIndex, idStr)
				}
				mask, err := wm.decode()
				if err != nil {
					return fmt.Errorf("propagation frame %d object %d: %w", frame.FrameIndex, objID, err)
				}
				masks[objID] = mask
			}

			if err := fn(frame.FrameIndex, masks); err != nil {
				return err
			}
		}
	})
}
