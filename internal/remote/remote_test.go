package remote

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"motionline/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timeline() model.Timeline {
	return model.Timeline{
		Layers: []model.Track{{Identifier: model.TrackIdentifier{TrackID: "base", TrackType: model.TrackTypeLayer, ParentTrackNumber: model.NoParent}}},
		Properties: []model.Track{
			{
				Identifier: model.TrackIdentifier{TrackNumber: 0, TrackID: "hips.position", TrackType: model.TrackTypeProperty, PropertyKind: model.PropertyPosition},
				Keyframes: []model.Keyframe{
					{Time: 0, Value: json.RawMessage(`1`), IsDeleted: true},
					{Time: 5, Value: json.RawMessage(`2`)},
				},
			},
			{
				Identifier: model.TrackIdentifier{TrackNumber: 1, TrackID: "hips.rotation", TrackType: model.TrackTypeProperty, PropertyKind: model.PropertyRotation},
				Keyframes:  []model.Keyframe{{Time: 3, Value: json.RawMessage(`0.5`)}},
			},
		},
	}
}

func TestPayloadFor_DropsTombstones(t *testing.T) {
	p := PayloadFor("walk", timeline(), []int{0})
	assert.Equal(t, "walk", p.AnimationID)
	assert.Equal(t, "base", p.LayerID)
	require.Len(t, p.Tracks, 1)
	assert.Equal(t, []Key{{Time: 5, Value: json.RawMessage(`2`)}}, p.Tracks[0].Keyframes)

	assert.Len(t, PayloadFor("walk", timeline(), nil).Tracks, 2)
	assert.True(t, PayloadFor("walk", timeline(), []int{}).Empty())
}

func TestRedisPublisher_WritesOneKeyPerTrack(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	pub, err := NewRedisPublisher(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })

	require.NoError(t, pub.Publish(ctx, PayloadFor("walk", timeline(), nil)))

	raw, err := mr.Get("motionline:walk:base:hips.position")
	require.NoError(t, err)
	assert.JSONEq(t, `{"trackId":"hips.position","kind":"position","keyframes":[{"time":5,"value":2}]}`, raw)

	got, err := pub.Fetch(ctx, "walk", "base", "hips.rotation")
	require.NoError(t, err)
	assert.Equal(t, model.PropertyRotation, got.Kind)

	_, err = pub.Fetch(ctx, "walk", "base", "spine.scale")
	assert.Error(t, err)
}

func TestTrackKey(t *testing.T) {
	assert.Equal(t, "motionline:walk:base:hips.position", TrackKey("walk", "base", "hips.position"))

	mr := miniredis.RunT(t)
	ctx := context.Background()
	pub := NewRedisPublisherWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = pub.Close() })

	require.NoError(t, pub.Publish(ctx, PayloadFor("walk", timeline(), []int{1})))
	assert.True(t, mr.Exists(TrackKey("walk", "base", "hips.rotation")))
	assert.False(t, mr.Exists(TrackKey("walk", "base", "hips.position")))

	got, err := pub.Fetch(ctx, "walk", "base", "hips.rotation")
	require.NoError(t, err)
	assert.Equal(t, []Key{{Time: 3, Value: json.RawMessage(`0.5`)}}, got.Keyframes)
}

func TestRedisPublisher_ConnectFailure(t *testing.T) {
	_, err := NewRedisPublisher(context.Background(), "not a url")
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	pub := NewRedisPublisherWithClient(client)
	mr.Close()
	assert.Error(t, pub.Publish(context.Background(), PayloadFor("walk", timeline(), nil)))
}

type fakePublisher struct {
	mu    sync.Mutex
	calls []Payload
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, p Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, p)
	return f.err
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestDebounced_CoalescesBursts(t *testing.T) {
	fake := &fakePublisher{}
	d := NewDebounced(DebouncedOpts{Publisher: fake, Debounce: 20 * time.Millisecond})

	tl := timeline()
	d.Notify(PayloadFor("walk", tl, []int{0}))
	d.Notify(PayloadFor("walk", tl, []int{1}))
	d.Notify(PayloadFor("walk", tl, []int{0}))

	require.Eventually(t, func() bool { return fake.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, fake.count())

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.calls[0].Tracks, 2)
	assert.Equal(t, "hips.position", fake.calls[0].Tracks[0].TrackID)
	assert.Equal(t, "hips.rotation", fake.calls[0].Tracks[1].TrackID)
}

func TestDebounced_ReportsFailures(t *testing.T) {
	fake := &fakePublisher{err: errors.New("connection refused")}
	errs := make(chan error, 1)
	d := NewDebounced(DebouncedOpts{Publisher: fake, Debounce: 10 * time.Millisecond, OnError: func(err error) { errs <- err }})

	d.Notify(PayloadFor("walk", timeline(), nil))

	select {
	case err := <-errs:
		assert.EqualError(t, err, "connection refused")
	case <-time.After(time.Second):
		t.Fatal("expected OnError to be called")
	}
}

func TestDebounced_FlushPublishesImmediately(t *testing.T) {
	fake := &fakePublisher{}
	d := NewDebounced(DebouncedOpts{Publisher: fake, Debounce: time.Hour})

	d.Notify(PayloadFor("walk", timeline(), nil))
	require.NoError(t, d.Flush(context.Background()))
	assert.Equal(t, 1, fake.count())

	require.NoError(t, d.Flush(context.Background()))
	assert.Equal(t, 1, fake.count())
}
