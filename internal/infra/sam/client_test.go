package sam

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pangeans/unprompted/internal/domain/entity"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{
		BaseURL: srv.URL,
		Device:  "cpu",
		Timeout: 5 * time.Second,
	}, zap.NewNop())
}

func encodeMask(width, height int, inside ...[2]int) wireMask {
	bits := make([]byte, width*height)
	for _, p := range inside {
		bits[p[1]*width+p[0]] = 1
	}
	return wireMask{
		Height: height,
		Width:  width,
		Data:   base64.StdEncoding.EncodeToString(bits),
	}
}

func TestSetImageSendsPathAndDevice(t *testing.T) {
	var got setImageRequest
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/image/set_image", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, client.SetImage(context.Background(), "/data/photo.png"))
	assert.Equal(t, "/data/photo.png", got.ImagePath)
	assert.Equal(t, "cpu", got.Device)
}

func TestPredictDecodesMask(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/image/predict", r.URL.Path)

		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []entity.Point{{X: 3, Y: 1}}, req.Points)
		assert.Equal(t, []int{1}, req.Labels)

		json.NewEncoder(w).Encode(predictResponse{Mask: encodeMask(4, 2, [2]int{3, 1})})
	}))

	mask, err := client.Predict(context.Background(), []entity.Point{{X: 3, Y: 1}}, []int{1})
	require.NoError(t, err)
	assert.Equal(t, 4, mask.Width)
	assert.Equal(t, 2, mask.Height)
	assert.True(t, mask.At(3, 1))
	assert.Equal(t, 1, mask.Count())
}

func TestPredictServerErrorIncludesBody(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))

	_, err := client.Predict(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestPredictRejectsTruncatedMask(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mask := wireMask{
			Height: 4,
			Width:  4,
			Data:   base64.StdEncoding.EncodeToString(make([]byte, 3)),
		}
		json.NewEncoder(w).Encode(predictResponse{Mask: mask})
	}))

	_, err := client.Predict(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestInitStateStoresStateID(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/video/init_state", r.URL.Path)
		json.NewEncoder(w).Encode(initStateResponse{StateID: "abc123"})
	}))

	require.NoError(t, client.InitState(context.Background(), "video_frames"))
	assert.Equal(t, "abc123", client.stateID)
}

func TestInitStateRejectsEmptyStateID(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(initStateResponse{})
	}))

	assert.Error(t, client.InitState(context.Background(), "video_frames"))
}

func TestVideoCallsRequireInitState(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should reach the server")
	}))

	assert.Error(t, client.ResetState(context.Background()))
	_, err := client.AddPoints(context.Background(), 0, 1, nil, nil)
	assert.Error(t, err)
	assert.Error(t, client.Propagate(context.Background(), func(int, map[int]entity.Mask) error { return nil }))
}

func TestAddPointsCarriesStateAndObject(t *testing.T) {
	var got addPointsRequest
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/video/init_state":
			json.NewEncoder(w).Encode(initStateResponse{StateID: "s1"})
		case "/video/add_points":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			json.NewEncoder(w).Encode(addPointsResponse{Mask: encodeMask(2, 2)})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))

	require.NoError(t, client.InitState(context.Background(), "video_frames"))
	_, err := client.AddPoints(context.Background(), 0, 2, []entity.Point{{X: 1, Y: 1}}, []int{1})
	require.NoError(t, err)

	assert.Equal(t, "s1", got.StateID)
	assert.Equal(t, 0, got.FrameIndex)
	assert.Equal(t, 2, got.ObjectID)
}

func TestPropagateDecodesStreamInFrameOrder(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/video/init_state":
			json.NewEncoder(w).Encode(initStateResponse{StateID: "s1"})
		case "/video/propagate":
			enc := json.NewEncoder(w)
			for i := 0; i < 3; i++ {
				enc.Encode(propagateFrame{
					FrameIndex: i,
					Masks: map[string]wireMask{
						"1": encodeMask(2, 2, [2]int{0, 0}),
						"2": encodeMask(2, 2),
					},
				})
			}
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))

	require.NoError(t, client.InitState(context.Background(), "video_frames"))

	var frames []int
	err := client.Propagate(context.Background(), func(frameIndex int, masks map[int]entity.Mask) error {
		frames = append(frames, frameIndex)
		require.Len(t, masks, 2)
		assert.True(t, masks[1].At(0, 0))
		assert.Zero(t, masks[2].Count())
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, frames)
}

func TestPropagateRejectsBadObjectID(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/video/init_state":
			json.NewEncoder(w).Encode(initStateResponse{StateID: "s1"})
		case "/video/propagate":
			fmt.Fprintln(w, `{"frame_index":0,"masks":{"not_a_number":{"height":1,"width":1,"data":"AA=="}}}`)
		}
	}))

	require.NoError(t, client.InitState(context.Background(), "video_frames"))
	err := client.Propagate(context.Background(), func(int, map[int]entity.Mask) error { return nil })
	assert.Error(t, err)
}

func TestPropagateCallbackErrorAborts(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/video/init_state":
			json.NewEncoder(w).Encode(initStateResponse{StateID: "s1"})
		case "/video/propagate":
			enc := json.NewEncoder(w)
			for i := 0; i < 5; i++ {
				enc.Encode(propagateFrame{FrameIndex: i, Masks: map[string]wireMask{"1": encodeMask(1, 1)}})
			}
		}
	}))

	require.NoError(t, client.InitState(context.Background(), "video_frames"))

	calls := 0
	err := client.Propagate(context.Background(), func(int, map[int]entity.Mask) error {
		calls++
		return fmt.Errorf("stop at %d", calls)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
