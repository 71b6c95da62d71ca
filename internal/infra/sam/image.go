package sam

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pangeans/unprompted/internal/domain/entity"
)

type setImageRequest struct {
	ImagePath string `json:"image_path"`
	Device    string `json:"device"`
}

type predictRequest struct {
	Points []entity.Point `json:"points"`
	Labels []int          `json:"labels"`
}

type predictResponse struct {
	Mask wireMask `json:"mask"`
}

// SetImage loads the still image into the model. Must be called once
// before Predict.
func (c *Client) SetImage(ctx context.Context, imagePath string) error {
	req := setImageRequest{ImagePath: imagePath, Device: c.device}
	if err := c.post(ctx, "/image/set_image", req, nil); err != nil {
		return fmt.Errorf("set image: %w", err)
	}
	c.logger.Debug("image set on segmentation server", zap.String("path", imagePath))
	return nil
}

// Predict runs a prediction over the full accumulated point set. The call
// is stateless with respect to previous point sets.
func (c *Client) Predict(ctx context.Context, points []entity.Point, labels []int) (entity.Mask, error) {
	var resp predictResponse
	req := predictRequest{Points: points, Labels: labels}
	if err := c.post(ctx, "/image/predict", req, &resp); err != nil {
		return entity.Mask{}, fmt.Errorf("predict: %w", err)
	}
	return resp.Mask.decode()
}
