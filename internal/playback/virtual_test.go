package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestVirtualMedia_AdvancesWhilePlaying(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	v := NewVirtualMedia(20*time.Second, WithClock(clock.Now))

	require.NoError(t, v.Play())
	clock.Advance(5 * time.Second)
	assert.Equal(t, 5*time.Second, v.Position())

	require.NoError(t, v.Pause())
	clock.Advance(5 * time.Second)
	assert.Equal(t, 5*time.Second, v.Position(), "paused media does not advance")
}

func TestVirtualMedia_Loops(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	v := NewVirtualMedia(10*time.Second, WithClock(clock.Now))

	require.NoError(t, v.Play())
	clock.Advance(13 * time.Second)

	assert.Equal(t, 3*time.Second, v.Position())
}

func TestVirtualMedia_AutoplayPolicy(t *testing.T) {
	v := NewVirtualMedia(10*time.Second, WithAutoplayPolicy())

	assert.ErrorIs(t, v.Play(), ErrAutoplayBlocked)

	v.SetMuted(true)
	assert.NoError(t, v.Play())
	assert.False(t, v.Paused())
}

func TestVirtualMedia_MetadataPending(t *testing.T) {
	v := NewVirtualMedia(10*time.Second, WithMetadataPending())

	_, known := v.Duration()
	assert.False(t, known)

	v.LoadMetadata()
	d, known := v.Duration()
	assert.True(t, known)
	assert.Equal(t, 10*time.Second, d)
}

func TestController_WithVirtualMedia_SeekClamp(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	v := NewVirtualMedia(30*time.Second, WithClock(clock.Now))
	c := NewController()
	c.Mount("c0", v)

	require.NoError(t, c.Activate("c0"))
	clock.Advance(3 * time.Second)
	require.NoError(t, c.TogglePlayback("c0"))

	require.NoError(t, c.Seek("c0", -10*time.Second))
	assert.Equal(t, time.Duration(0), v.Position())

	require.NoError(t, c.Seek("c0", 45*time.Second))
	assert.Equal(t, 30*time.Second, v.Position())
}

func TestController_WithVirtualMedia_AutoplayFallback(t *testing.T) {
	v := NewVirtualMedia(30*time.Second, WithAutoplayPolicy())
	c := NewController()
	c.Mount("c0", v)

	require.NoError(t, c.Activate("c0"))

	assert.True(t, v.Muted())
	assert.Equal(t, Playing, c.State("c0"))
}
